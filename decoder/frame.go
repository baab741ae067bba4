package decoder

import (
	"fmt"
	"sync"
)

// Frame is a decoded picture with its planes packed into one buffer, plane
// after plane, without row padding. The caller of Decoder.Pull owns it.
type Frame struct {
	// Timestamp is the presentation time in seconds.
	Timestamp    float64
	PTS          uint64
	Width        int
	Height       int
	HighBitDepth bool
	Data         []byte
}

// Time returns the presentation time in seconds.
func (f *Frame) Time() float64 {
	if f == nil {
		return 0
	}
	return f.Timestamp
}

// Buffer returns the packed planes.
func (f *Frame) Buffer() []byte {
	if f == nil {
		return nil
	}
	return f.Data
}

// Size returns the number of bytes in Buffer.
func (f *Frame) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Data)
}

// Release hands the buffer back for reuse by later frames. The frame must not
// be used afterwards.
func (f *Frame) Release() {
	if f == nil || f.Data == nil {
		return
	}
	buf := f.Data[:0]
	f.Data = nil
	framePool.Put(&buf)
}

var framePool = sync.Pool{}

func getBuffer(size int) []byte {
	if v, ok := framePool.Get().(*[]byte); ok && cap(*v) >= size {
		return (*v)[:size]
	}
	return make([]byte, size)
}

// planeSize returns the visible width in bytes and the height of plane n.
func planeSize(img DecodedImage, n int) (rowBytes, rows int) {
	w, h := img.Width(), img.Height()
	if n > 0 {
		xs, ys := img.ChromaShift()
		w = (w + (1 << xs) - 1) >> xs
		h = (h + (1 << ys) - 1) >> ys
	}
	if img.HighBitDepth() {
		w *= 2
	}
	return w, h
}

// packImage copies every plane of img row by row into one contiguous buffer.
func packImage(img DecodedImage) ([]byte, error) {
	size := 0
	for n := 0; n < img.NumPlanes(); n++ {
		rowBytes, rows := planeSize(img, n)
		size += rowBytes * rows
	}

	buf := getBuffer(size)
	off := 0
	for n := 0; n < img.NumPlanes(); n++ {
		rowBytes, rows := planeSize(img, n)
		if rows == 0 || rowBytes == 0 {
			continue
		}
		src, stride := img.Plane(n), img.Stride(n)
		if stride < rowBytes || len(src) < (rows-1)*stride+rowBytes {
			return nil, fmt.Errorf("%w: plane %d has %d bytes with stride %d, need %d rows of %d",
				ErrInvalidImage, n, len(src), stride, rows, rowBytes)
		}
		for y := 0; y < rows; y++ {
			off += copy(buf[off:off+rowBytes], src[y*stride:y*stride+rowBytes])
		}
	}
	return buf, nil
}
