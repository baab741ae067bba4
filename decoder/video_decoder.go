package decoder

import (
	"fmt"
	"sync"

	"github.com/hakobera/go-ivf-decoder/decoder/ivf"
)

// DecodedImage defines interface for planar images produced by an Engine.
// An image is only valid until the next call into the engine that produced it.
type DecodedImage interface {
	Width() int
	Height() int
	NumPlanes() int
	Plane(n int) []byte
	Stride(n int) int
	// ChromaShift returns the log2 horizontal and vertical subsampling of
	// the chroma planes.
	ChromaShift() (x, y uint)
	// HighBitDepth reports two bytes per sample.
	HighBitDepth() bool
}

// Engine defines interfaces for the external bitstream decoder. A single
// Decode may make zero, one or several images available through NextImage.
type Engine interface {
	Decode(data []byte) error
	// NextImage returns the next available image, or nil when there is none.
	NextImage() DecodedImage
	Close() error
}

// EngineFactory initializes an Engine for a stream.
type EngineFactory func(info ivf.StreamInfo, cfg Config) (Engine, error)

var (
	enginesMu sync.RWMutex
	engines   = make(map[ivf.FourCC]EngineFactory)
)

// RegisterEngine makes an engine available for streams with the given codec
// identifier. Engine packages call it from init.
func RegisterEngine(fourcc ivf.FourCC, factory EngineFactory) {
	enginesMu.Lock()
	defer enginesMu.Unlock()
	engines[fourcc] = factory
}

// LookupEngine returns the factory registered for fourcc.
func LookupEngine(fourcc ivf.FourCC) (EngineFactory, bool) {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	f, ok := engines[fourcc]
	return f, ok
}

func openEngine(factory EngineFactory, info ivf.StreamInfo, cfg Config) (Engine, error) {
	if factory == nil {
		var ok bool
		if factory, ok = LookupEngine(info.FourCC); !ok {
			return nil, fmt.Errorf("%w: no engine registered for %s", ErrCodecInit, info.FourCC)
		}
	}
	e, err := factory(info, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCodecInit, info.FourCC, err)
	}
	return e, nil
}
