// Package ivf reads and writes IVF containers: a 32-byte file header followed
// by size-prefixed frame records.
//
//	header: "DKIF" version[2] headerSize[2] fourcc[4] width[2] height[2]
//	        timeBaseNum[4] timeBaseDen[4] frameCount[4] unused[4]
//	record: payloadSize[4] pts[8] payload[payloadSize]
//
// All integers are little-endian.
package ivf

import (
	"errors"
	"fmt"
)

const (
	// HeaderSize is the size of the file header.
	HeaderSize = 32
	// FrameHeaderSize is the size of the header preceding every payload.
	FrameHeaderSize = 12
	// DefaultMaxFrameSize bounds the declared payload size of a record.
	DefaultMaxFrameSize = 256 * 1024 * 1024
)

// Signature is the magic at the start of every IVF file.
const Signature = "DKIF"

// Parser errors.
var (
	// ErrInsufficientData means the source has no more bytes right now. It is
	// not a failure: retry once more data has arrived.
	ErrInsufficientData = errors.New("ivf: insufficient data")

	// ErrMalformedHeader indicates a bad signature, a non-zero version or a
	// stream that ended inside the file header.
	ErrMalformedHeader = errors.New("ivf: malformed header")

	// ErrFrameTooLarge indicates a record whose declared size exceeds the
	// configured ceiling.
	ErrFrameTooLarge = errors.New("ivf: frame too large")

	// ErrTruncatedStream indicates the source ended inside a frame record.
	ErrTruncatedStream = errors.New("ivf: truncated stream")

	// ErrNotStreaming is returned by NextFrame before MarkStreaming.
	ErrNotStreaming = errors.New("ivf: parser is not streaming")
)

// FourCC identifies the codec of the stream.
type FourCC [4]byte

// Known codec identifiers.
var (
	FourCCAV1  = FourCC{'A', 'V', '0', '1'}
	FourCCVP8  = FourCC{'V', 'P', '8', '0'}
	FourCCVP9  = FourCC{'V', 'P', '9', '0'}
	FourCCI420 = FourCC{'I', '4', '2', '0'}
	FourCCI444 = FourCC{'I', '4', '4', '4'}
)

// ParseFourCC converts a four character string. Shorter strings are padded
// with spaces.
func ParseFourCC(s string) (FourCC, error) {
	if len(s) > 4 {
		return FourCC{}, fmt.Errorf("ivf: invalid fourcc %q", s)
	}
	f := FourCC{' ', ' ', ' ', ' '}
	copy(f[:], s)
	return f, nil
}

func (f FourCC) String() string {
	return string(f[:])
}

// StreamInfo is the metadata carried by the file header.
type StreamInfo struct {
	FourCC              FourCC
	Width               uint16
	Height              uint16
	TimeBaseNumerator   uint32
	TimeBaseDenominator uint32
	// FrameCount is informational; writers often leave it at zero.
	FrameCount uint32
}

// Seconds converts a presentation timestamp into seconds using the time base.
func (i StreamInfo) Seconds(pts uint64) float64 {
	if i.TimeBaseDenominator == 0 {
		return 0
	}
	return float64(pts) * float64(i.TimeBaseNumerator) / float64(i.TimeBaseDenominator)
}

// FrameHeader precedes each payload.
type FrameHeader struct {
	Size uint32
	PTS  uint64
}

// Packet is one compressed frame.
type Packet struct {
	Header FrameHeader
	Data   []byte
}
