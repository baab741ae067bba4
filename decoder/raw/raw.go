// Package raw implements a passthrough engine for IVF streams carrying
// uncompressed planar frames.
package raw

import (
	"errors"
	"fmt"

	"github.com/hakobera/go-ivf-decoder/decoder"
	"github.com/hakobera/go-ivf-decoder/decoder/ivf"
	"github.com/sirupsen/logrus"
)

// ErrSizeMismatch indicates a payload that is not exactly one frame.
var ErrSizeMismatch = errors.New("raw: payload size does not match frame geometry")

// ErrUnsupportedFormat indicates a codec identifier this package cannot handle.
var ErrUnsupportedFormat = errors.New("raw: unsupported format")

// Format describes a planar 8-bit layout.
type Format struct {
	FourCC ivf.FourCC
	// ShiftX and ShiftY are the log2 chroma subsampling factors.
	ShiftX, ShiftY uint
}

var formats = map[ivf.FourCC]Format{
	ivf.FourCCI420: {FourCC: ivf.FourCCI420, ShiftX: 1, ShiftY: 1},
	ivf.FourCCI444: {FourCC: ivf.FourCCI444},
}

func init() {
	for fourcc := range formats {
		decoder.RegisterEngine(fourcc, New)
	}
}

// PlaneSize returns the byte size of plane n for a width x height frame.
func (f Format) PlaneSize(n, width, height int) int {
	if n == 0 {
		return width * height
	}
	w := (width + (1 << f.ShiftX) - 1) >> f.ShiftX
	h := (height + (1 << f.ShiftY) - 1) >> f.ShiftY
	return w * h
}

// FrameSize returns the byte size of a whole frame.
func (f Format) FrameSize(width, height int) int {
	return f.PlaneSize(0, width, height) + 2*f.PlaneSize(1, width, height)
}

// Engine stages one raw frame per Decode and hands it out once.
type Engine struct {
	format Format
	width  int
	height int
	staged []byte
	ready  bool
}

// New creates an engine for info.FourCC.
func New(info ivf.StreamInfo, _ decoder.Config) (decoder.Engine, error) {
	format, ok := formats[info.FourCC]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, info.FourCC)
	}

	logrus.WithFields(logrus.Fields{
		"function": "raw.New",
		"fourcc":   info.FourCC.String(),
		"width":    info.Width,
		"height":   info.Height,
	}).Debug("Creating raw engine")

	return &Engine{
		format: format,
		width:  int(info.Width),
		height: int(info.Height),
	}, nil
}

// Decode copies data, which must hold exactly one frame.
func (e *Engine) Decode(data []byte) error {
	want := e.format.FrameSize(e.width, e.height)
	if len(data) != want {
		return fmt.Errorf("%w: got %d bytes, want %d for %dx%d %s",
			ErrSizeMismatch, len(data), want, e.width, e.height, e.format.FourCC)
	}
	e.staged = append(e.staged[:0], data...)
	e.ready = true
	return nil
}

// NextImage returns the staged frame once.
func (e *Engine) NextImage() decoder.DecodedImage {
	if !e.ready {
		return nil
	}
	e.ready = false
	return &image{engine: e}
}

// Close implements decoder.Engine.
func (e *Engine) Close() error {
	e.staged = nil
	e.ready = false
	return nil
}

type image struct {
	engine *Engine
}

func (i *image) Width() int  { return i.engine.width }
func (i *image) Height() int { return i.engine.height }
func (i *image) NumPlanes() int {
	return 3
}

func (i *image) Plane(n int) []byte {
	e := i.engine
	off := 0
	for p := 0; p < n; p++ {
		off += e.format.PlaneSize(p, e.width, e.height)
	}
	return e.staged[off : off+e.format.PlaneSize(n, e.width, e.height)]
}

func (i *image) Stride(n int) int {
	if n == 0 {
		return i.engine.width
	}
	return (i.engine.width + (1 << i.engine.format.ShiftX) - 1) >> i.engine.format.ShiftX
}

func (i *image) ChromaShift() (x, y uint) {
	return i.engine.format.ShiftX, i.engine.format.ShiftY
}

func (i *image) HighBitDepth() bool { return false }
