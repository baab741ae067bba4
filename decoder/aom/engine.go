package aom

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/hakobera/go-ivf-decoder/decoder"
	"github.com/hakobera/go-ivf-decoder/decoder/ivf"
	"github.com/sirupsen/logrus"
)

// Engine decodes AV1 frames with libaom.
type Engine struct {
	// Heap allocated and never moved; libaom keeps its state behind ctx.priv.
	ctx  *codecCtx
	cfg  *decCfg
	iter uintptr
	img  image
	log  *logrus.Entry
}

// New initializes a libaom AV1 decoder for info.
func New(info ivf.StreamInfo, cfg decoder.Config) (*Engine, error) {
	if err := loadLibrary(cfg.AOM.LibraryPath); err != nil {
		return nil, err
	}

	e := &Engine{
		ctx: &codecCtx{},
		cfg: &decCfg{
			threads:          uint32(cfg.AOM.Threads),
			w:                uint32(info.Width),
			h:                uint32(info.Height),
			allowLowbitdepth: 1,
		},
		log: logrus.WithField("fourcc", info.FourCC.String()),
	}

	res := aomCodecDecInitVer(e.ctxPtr(), aomCodecAV1Dx(), uintptr(unsafe.Pointer(e.cfg)), 0, int32(cfg.AOM.ABIVersion))
	runtime.KeepAlive(e.cfg)
	if res != codecOK {
		return nil, fmt.Errorf("aom_codec_dec_init_ver (abi %d): %s", cfg.AOM.ABIVersion, e.lastError())
	}

	e.log.WithFields(logrus.Fields{
		"function": "New",
		"threads":  cfg.AOM.Threads,
		"width":    info.Width,
		"height":   info.Height,
	}).Debug("libaom decoder initialized")
	return e, nil
}

func (e *Engine) ctxPtr() uintptr {
	return uintptr(unsafe.Pointer(e.ctx))
}

func (e *Engine) lastError() string {
	msg := aomCodecError(e.ctxPtr())
	if detail := aomCodecErrorDetail(e.ctxPtr()); detail != "" {
		msg += ": " + detail
	}
	return msg
}

// Decode submits one temporal unit. The images it produces are returned by
// NextImage until the next call to Decode.
func (e *Engine) Decode(data []byte) error {
	if e.ctx == nil {
		return ErrClosed
	}

	var ptr uintptr
	if len(data) > 0 {
		ptr = uintptr(unsafe.Pointer(&data[0]))
	}
	res := aomCodecDecode(e.ctxPtr(), ptr, uint64(len(data)), 0)
	runtime.KeepAlive(data)
	e.iter = 0

	if res != codecOK {
		return fmt.Errorf("%w: %s", ErrDecode, e.lastError())
	}
	return nil
}

// NextImage returns the next decoded image, or nil when libaom has none
// ready. The image is overwritten by the following call.
func (e *Engine) NextImage() decoder.DecodedImage {
	if e.ctx == nil {
		return nil
	}

	p := aomCodecGetFrame(e.ctxPtr(), uintptr(unsafe.Pointer(&e.iter)))
	if p == 0 {
		return nil
	}
	e.img.load((*aomImage)(unsafe.Pointer(p)))
	return &e.img
}

// Close destroys the libaom decoder.
func (e *Engine) Close() error {
	if e.ctx == nil {
		return nil
	}

	res := aomCodecDestroy(e.ctxPtr())
	e.ctx = nil
	e.img = image{}
	if res != codecOK {
		return fmt.Errorf("aom_codec_destroy: error %d", res)
	}

	e.log.WithField("function", "Close").Debug("libaom decoder destroyed")
	return nil
}

// image views the planes of an aom_image_t owned by libaom.
type image struct {
	width, height  int
	shiftX, shiftY uint
	highBitDepth   bool
	planes         [3][]byte
	stride         [3]int
	numPlanes      int
}

func (img *image) load(raw *aomImage) {
	img.width = int(raw.dw)
	img.height = int(raw.dh)
	img.shiftX = uint(raw.xChromaShift)
	img.shiftY = uint(raw.yChromaShift)
	img.highBitDepth = raw.fmt&imgFmtHighBitDepth != 0

	img.numPlanes = 3
	if raw.monochrome != 0 {
		img.numPlanes = 1
	}

	bytesPerSample := 1
	if img.highBitDepth {
		bytesPerSample = 2
	}

	for n := 0; n < 3; n++ {
		img.planes[n] = nil
		img.stride[n] = int(raw.stride[n])
		if n >= img.numPlanes || raw.planes[n] == 0 {
			continue
		}

		w, h := img.width, img.height
		if n > 0 {
			w, h = subsample(w, img.shiftX), subsample(h, img.shiftY)
		}
		size := planeLen(h, img.stride[n], w*bytesPerSample)
		if size == 0 {
			continue
		}
		img.planes[n] = unsafe.Slice((*byte)(unsafe.Pointer(raw.planes[n])), size)
	}
}

func (img *image) Width() int               { return img.width }
func (img *image) Height() int              { return img.height }
func (img *image) NumPlanes() int           { return img.numPlanes }
func (img *image) Plane(n int) []byte       { return img.planes[n] }
func (img *image) Stride(n int) int         { return img.stride[n] }
func (img *image) ChromaShift() (x, y uint) { return img.shiftX, img.shiftY }
func (img *image) HighBitDepth() bool       { return img.highBitDepth }
