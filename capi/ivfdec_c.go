package main

/*
#include <stdlib.h>
#include <stdbool.h>

typedef enum IVFDEC_STATUS {
    IVFDEC_OK = 0,
    IVFDEC_ERR_MALFORMED_HEADER = 1,
    IVFDEC_ERR_FRAME_TOO_LARGE = 2,
    IVFDEC_ERR_TRUNCATED_STREAM = 3,
    IVFDEC_ERR_CODEC_INIT = 4,
    IVFDEC_ERR_CODEC_SUBMISSION = 5,
    IVFDEC_ERR_NO_SOURCE = 6,
    IVFDEC_ERR_OTHER = 7,
    IVFDEC_ERR_INVALID_HANDLE = -1,
    IVFDEC_ERR_INVALID_ARGUMENT = -2,
    IVFDEC_ERR_WRONG_SOURCE = -3,
    IVFDEC_ERR_SOURCE_WRITE = -4,
} IVFDEC_STATUS;
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/hakobera/go-ivf-decoder/decoder"
	_ "github.com/hakobera/go-ivf-decoder/decoder/aom"
	_ "github.com/hakobera/go-ivf-decoder/decoder/raw"
	"github.com/hakobera/go-ivf-decoder/decoder/source"
	pointer "github.com/mattn/go-pointer"
	"github.com/sirupsen/logrus"
)

func main() {} // Required for c-shared build mode

// handle is the Go side of a decoder handle.
type handle struct {
	mu     sync.Mutex
	dec    *decoder.Decoder
	cfg    decoder.Config
	stream *source.Stream
	rtp    *source.RTP
	frame  unsafe.Pointer // go-pointer key of the frame last returned
}

// cframe is a frame whose pixels live in C memory.
type cframe struct {
	time float64
	buf  unsafe.Pointer
	size int
}

func newHandle(cfg decoder.Config) unsafe.Pointer {
	h := &handle{
		dec: decoder.New(cfg),
		cfg: cfg,
	}
	return pointer.Save(h)
}

// lookup returns the handle stored under p.
func lookup(p unsafe.Pointer) (*handle, bool) {
	if p == nil {
		return nil, false
	}
	h, ok := pointer.Restore(p).(*handle)
	return h, ok
}

func lookupFrame(p unsafe.Pointer) (*cframe, bool) {
	if p == nil {
		return nil, false
	}
	f, ok := pointer.Restore(p).(*cframe)
	return f, ok
}

// releaseFrame frees the frame last handed to C.
func (h *handle) releaseFrame() {
	if h.frame == nil {
		return
	}
	if f, ok := lookupFrame(h.frame); ok {
		C.free(f.buf)
	}
	pointer.Unref(h.frame)
	h.frame = nil
}

func (h *handle) setSource(src source.Source) {
	h.releaseFrame()
	h.stream = nil
	h.rtp = nil
	h.dec.SetSource(src)
}

func newWithConfig(path string) unsafe.Pointer {
	cfg, err := decoder.LoadConfig(path)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "ivfdec_new_with_config",
			"path":     path,
			"error":    err.Error(),
		}).Error("Failed to load configuration")
		return nil
	}
	if err := decoder.ConfigureLogging(cfg); err != nil {
		return nil
	}
	return newHandle(cfg)
}

func openFile(p unsafe.Pointer, path string) int {
	h, ok := lookup(p)
	if !ok {
		return statusInvalidHandle
	}

	src, err := source.Open(path)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "ivfdec_open_file",
			"path":     path,
			"error":    err.Error(),
		}).Error("Failed to open file")
		return statusNoSource
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.setSource(src)
	return statusOK
}

// goBytes copies size bytes at data into Go memory.
func goBytes(data unsafe.Pointer, size int) ([]byte, bool) {
	if size < 0 || (data == nil && size > 0) {
		return nil, false
	}
	if size == 0 {
		return []byte{}, true
	}
	return append([]byte(nil), unsafe.Slice((*byte)(data), size)...), true
}

// ivfdec_new creates a decoder with the default configuration.
//
//export ivfdec_new
func ivfdec_new() unsafe.Pointer {
	return newHandle(decoder.DefaultConfig())
}

// ivfdec_new_with_config creates a decoder configured by the YAML file at
// path. It returns NULL when the file cannot be loaded.
//
//export ivfdec_new_with_config
func ivfdec_new_with_config(path *C.char) unsafe.Pointer {
	if path == nil {
		return nil
	}
	return newWithConfig(C.GoString(path))
}

// ivfdec_destroy releases the decoder, its source and every frame.
//
//export ivfdec_destroy
func ivfdec_destroy(dec unsafe.Pointer) {
	h, ok := lookup(dec)
	if !ok {
		return
	}

	h.mu.Lock()
	h.releaseFrame()
	if err := h.dec.Close(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "ivfdec_destroy",
			"error":    err.Error(),
		}).Warn("Error while closing decoder")
	}
	h.mu.Unlock()

	pointer.Unref(dec)
}

// ivfdec_set_blob decodes a complete IVF file held in memory. The bytes are
// copied.
//
//export ivfdec_set_blob
func ivfdec_set_blob(dec unsafe.Pointer, data unsafe.Pointer, size int) int {
	h, ok := lookup(dec)
	if !ok {
		return statusInvalidHandle
	}
	buf, ok := goBytes(data, size)
	if !ok {
		return statusInvalidArgument
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.setSource(source.NewMemory(buf))
	return statusOK
}

// ivfdec_open_file decodes the IVF file at path.
//
//export ivfdec_open_file
func ivfdec_open_file(dec unsafe.Pointer, path *C.char) int {
	if path == nil {
		return statusInvalidArgument
	}
	return openFile(dec, C.GoString(path))
}

// ivfdec_open_stream attaches an empty byte stream fed by ivfdec_push_bytes.
//
//export ivfdec_open_stream
func ivfdec_open_stream(dec unsafe.Pointer) int {
	h, ok := lookup(dec)
	if !ok {
		return statusInvalidHandle
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	s := source.NewStream()
	h.setSource(s)
	h.stream = s
	return statusOK
}

// ivfdec_push_bytes appends size bytes to the stream opened with
// ivfdec_open_stream.
//
//export ivfdec_push_bytes
func ivfdec_push_bytes(dec unsafe.Pointer, data unsafe.Pointer, size int) int {
	h, ok := lookup(dec)
	if !ok {
		return statusInvalidHandle
	}
	buf, ok := goBytes(data, size)
	if !ok {
		return statusInvalidArgument
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stream == nil {
		return statusWrongSourceKind
	}
	if _, err := h.stream.Write(buf); err != nil {
		return statusSourceWriteFailed
	}
	return statusOK
}

// ivfdec_end_stream marks the end of the pushed bytes.
//
//export ivfdec_end_stream
func ivfdec_end_stream(dec unsafe.Pointer) int {
	h, ok := lookup(dec)
	if !ok {
		return statusInvalidHandle
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stream == nil {
		return statusWrongSourceKind
	}
	h.stream.CloseWrite()
	return statusOK
}

// ivfdec_open_rtp attaches an RTP source fed by ivfdec_push_rtp. Packets are
// reordered within the configured rtp.max_late window.
//
//export ivfdec_open_rtp
func ivfdec_open_rtp(dec unsafe.Pointer) int {
	h, ok := lookup(dec)
	if !ok {
		return statusInvalidHandle
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	r := source.NewRTP(h.cfg.RTP.MaxLate)
	h.setSource(r)
	h.rtp = r
	return statusOK
}

// ivfdec_push_rtp hands one marshalled RTP packet to the RTP source.
//
//export ivfdec_push_rtp
func ivfdec_push_rtp(dec unsafe.Pointer, data unsafe.Pointer, size int) int {
	h, ok := lookup(dec)
	if !ok {
		return statusInvalidHandle
	}
	buf, ok := goBytes(data, size)
	if !ok {
		return statusInvalidArgument
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rtp == nil {
		return statusWrongSourceKind
	}
	if err := h.rtp.PushRaw(buf); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "ivfdec_push_rtp",
			"size":     size,
			"error":    err.Error(),
		}).Debug("Dropping RTP packet")
		return statusSourceWriteFailed
	}
	return statusOK
}

// ivfdec_end_rtp marks the end of the RTP session. Missing packets are
// skipped.
//
//export ivfdec_end_rtp
func ivfdec_end_rtp(dec unsafe.Pointer) int {
	h, ok := lookup(dec)
	if !ok {
		return statusInvalidHandle
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rtp == nil {
		return statusWrongSourceKind
	}
	if err := h.rtp.CloseWrite(); err != nil {
		return statusSourceWriteFailed
	}
	return statusOK
}

// ivfdec_run performs one decoding step and returns an IVFDEC_* status.
//
//export ivfdec_run
func ivfdec_run(dec unsafe.Pointer) int {
	h, ok := lookup(dec)
	if !ok {
		return statusInvalidHandle
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return statusOf(h.dec.Advance())
}

// ivfdec_get_frame returns the oldest decoded frame, or NULL when none is
// buffered. The previous frame returned for dec is freed.
//
//export ivfdec_get_frame
func ivfdec_get_frame(dec unsafe.Pointer) unsafe.Pointer {
	h, ok := lookup(dec)
	if !ok {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.releaseFrame()

	f := h.dec.Pull()
	if f == nil {
		return nil
	}

	size := f.Size()
	buf := C.malloc(C.size_t(max(size, 1)))
	if buf == nil {
		f.Release()
		return nil
	}
	copy(unsafe.Slice((*byte)(buf), size), f.Buffer())
	cf := &cframe{time: f.Time(), buf: buf, size: size}
	f.Release()

	h.frame = pointer.Save(cf)
	return h.frame
}

// ivfdec_video_finished reports whether the source has been read completely.
// Buffered frames can still be retrieved with ivfdec_get_frame.
//
//export ivfdec_video_finished
func ivfdec_video_finished(dec unsafe.Pointer) C.bool {
	h, ok := lookup(dec)
	if !ok {
		return C.bool(true)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return C.bool(h.dec.Finished())
}

// ivfdec_get_width returns the frame width from the header, or 0 before the
// header has been parsed.
//
//export ivfdec_get_width
func ivfdec_get_width(dec unsafe.Pointer) int {
	h, ok := lookup(dec)
	if !ok {
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dec.Width()
}

// ivfdec_get_height returns the frame height from the header, or 0 before the
// header has been parsed.
//
//export ivfdec_get_height
func ivfdec_get_height(dec unsafe.Pointer) int {
	h, ok := lookup(dec)
	if !ok {
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dec.Height()
}

// ivfdec_frame_get_time returns the presentation time in seconds.
//
//export ivfdec_frame_get_time
func ivfdec_frame_get_time(frame unsafe.Pointer) C.double {
	f, ok := lookupFrame(frame)
	if !ok {
		return 0
	}
	return C.double(f.time)
}

// ivfdec_frame_get_buffer returns the packed planes of frame.
//
//export ivfdec_frame_get_buffer
func ivfdec_frame_get_buffer(frame unsafe.Pointer) unsafe.Pointer {
	f, ok := lookupFrame(frame)
	if !ok {
		return nil
	}
	return f.buf
}

// ivfdec_frame_get_size returns the number of bytes in the frame buffer.
//
//export ivfdec_frame_get_size
func ivfdec_frame_get_size(frame unsafe.Pointer) int {
	f, ok := lookupFrame(frame)
	if !ok {
		return 0
	}
	return f.size
}
