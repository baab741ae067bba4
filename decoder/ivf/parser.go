package ivf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hakobera/go-ivf-decoder/decoder/source"
	"github.com/sirupsen/logrus"
)

// State is the parser position in the container.
type State int

const (
	// StateUnparsed means the file header has not been validated yet.
	StateUnparsed State = iota
	// StateHeaderValidated means StreamInfo is available.
	StateHeaderValidated
	// StateStreaming means frame records are being extracted.
	StateStreaming
)

func (s State) String() string {
	switch s {
	case StateUnparsed:
		return "unparsed"
	case StateHeaderValidated:
		return "header-validated"
	case StateStreaming:
		return "streaming"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// minScratch is the first allocation of the payload buffer.
const minScratch = 4096

// Parser extracts the header and frame records from a source whose bytes may
// arrive over several calls. Partially read headers and payloads are kept
// between calls, so ErrInsufficientData can always be retried.
type Parser struct {
	src          source.Source
	state        State
	info         StreamInfo
	maxFrameSize uint32
	err          error

	header  [HeaderSize]byte
	headerN int

	record  [FrameHeaderSize]byte
	recordN int

	pending bool
	current FrameHeader
	scratch []byte
	staged  int
	frames  uint64
}

// NewParser returns a parser reading from src. A zero maxFrameSize selects
// DefaultMaxFrameSize.
func NewParser(src source.Source, maxFrameSize uint32) *Parser {
	if maxFrameSize == 0 {
		maxFrameSize = DefaultMaxFrameSize
	}
	return &Parser{src: src, maxFrameSize: maxFrameSize}
}

// State returns the current parser state.
func (p *Parser) State() State {
	return p.state
}

// Info returns the parsed stream information. ok is false before the header
// has been validated.
func (p *Parser) Info() (info StreamInfo, ok bool) {
	return p.info, p.state != StateUnparsed
}

// Frames returns the number of complete records extracted so far.
func (p *Parser) Frames() uint64 {
	return p.frames
}

// ScratchCap returns the capacity of the payload buffer.
func (p *Parser) ScratchCap() int {
	return cap(p.scratch)
}

// ParseHeader reads and validates the file header. It returns
// ErrInsufficientData until all 32 bytes are available.
func (p *Parser) ParseHeader() (StreamInfo, error) {
	if p.err != nil {
		return StreamInfo{}, p.err
	}
	if p.state != StateUnparsed {
		return p.info, nil
	}

	var err error
	if p.headerN, err = p.fill(p.header[:], p.headerN); err != nil {
		return StreamInfo{}, p.fail(err)
	}
	if p.headerN < HeaderSize {
		if p.src.Exhausted() {
			return StreamInfo{}, p.fail(fmt.Errorf("%w: stream ended after %d of %d header bytes",
				ErrMalformedHeader, p.headerN, HeaderSize))
		}
		return StreamInfo{}, ErrInsufficientData
	}

	info, err := decodeHeader(p.header[:])
	if err != nil {
		return StreamInfo{}, p.fail(err)
	}
	p.info = info
	p.state = StateHeaderValidated

	logrus.WithFields(logrus.Fields{
		"function":    "Parser.ParseHeader",
		"fourcc":      info.FourCC.String(),
		"width":       info.Width,
		"height":      info.Height,
		"time_base":   fmt.Sprintf("%d/%d", info.TimeBaseNumerator, info.TimeBaseDenominator),
		"frame_count": info.FrameCount,
	}).Info("IVF header parsed")

	return info, nil
}

// MarkStreaming moves a validated parser into the streaming state. It is
// called once the codec engine for the stream has been initialized.
func (p *Parser) MarkStreaming() {
	if p.state == StateHeaderValidated {
		p.state = StateStreaming
	}
}

// NextFrame extracts the next frame record. It returns ErrInsufficientData
// while the record is incomplete and io.EOF when the source ended cleanly on a
// record boundary. The returned Data aliases an internal buffer that is reused
// by the next call.
func (p *Parser) NextFrame() (Packet, error) {
	if p.err != nil {
		return Packet{}, p.err
	}
	if p.state != StateStreaming {
		return Packet{}, ErrNotStreaming
	}

	var err error
	if !p.pending {
		if p.recordN, err = p.fill(p.record[:], p.recordN); err != nil {
			return Packet{}, p.fail(err)
		}
		if p.recordN < FrameHeaderSize {
			return Packet{}, p.short()
		}

		hdr := FrameHeader{
			Size: binary.LittleEndian.Uint32(p.record[0:4]),
			PTS:  binary.LittleEndian.Uint64(p.record[4:12]),
		}
		if hdr.Size > p.maxFrameSize {
			return Packet{}, p.fail(fmt.Errorf("%w: record %d declares %d bytes, limit is %d",
				ErrFrameTooLarge, p.frames, hdr.Size, p.maxFrameSize))
		}
		p.current = hdr
		p.pending = true
		p.staged = 0
		p.grow(int(hdr.Size))
	}

	size := int(p.current.Size)
	if p.staged < size {
		if p.staged, err = p.fill(p.scratch[:size], p.staged); err != nil {
			return Packet{}, p.fail(err)
		}
		if p.staged < size {
			return Packet{}, p.short()
		}
	}

	pkt := Packet{Header: p.current, Data: p.scratch[:size]}
	p.pending = false
	p.recordN = 0
	p.staged = 0
	p.frames++
	return pkt, nil
}

// fill reads into dst[have:] and returns the new fill level. io.EOF is not an
// error here; exhaustion is checked by the caller.
func (p *Parser) fill(dst []byte, have int) (int, error) {
	if have >= len(dst) {
		return have, nil
	}
	n, err := p.src.Read(dst[have:])
	have += n
	if err != nil && !errors.Is(err, io.EOF) {
		return have, fmt.Errorf("ivf: read: %w", err)
	}
	return have, nil
}

// short classifies an incomplete read.
func (p *Parser) short() error {
	if !p.src.Exhausted() {
		return ErrInsufficientData
	}
	if p.recordN == 0 && !p.pending {
		return io.EOF
	}
	if p.pending {
		return p.fail(fmt.Errorf("%w: record %d has %d of %d payload bytes",
			ErrTruncatedStream, p.frames, p.staged, p.current.Size))
	}
	return p.fail(fmt.Errorf("%w: record %d has %d of %d header bytes",
		ErrTruncatedStream, p.frames, p.recordN, FrameHeaderSize))
}

// grow makes sure the scratch buffer can hold size bytes. Capacity only
// grows, doubling the current capacity.
func (p *Parser) grow(size int) {
	if cap(p.scratch) >= size {
		return
	}
	c := cap(p.scratch)
	if c < minScratch {
		c = minScratch
	}
	for c < size {
		c *= 2
	}

	logrus.WithFields(logrus.Fields{
		"function": "Parser.grow",
		"old_cap":  cap(p.scratch),
		"new_cap":  c,
		"request":  size,
	}).Debug("Growing payload buffer")

	p.scratch = make([]byte, c)
}

func (p *Parser) fail(err error) error {
	p.err = err
	logrus.WithFields(logrus.Fields{
		"function": "Parser.fail",
		"state":    p.state.String(),
		"frames":   p.frames,
		"error":    err.Error(),
	}).Error("IVF parsing failed")
	return err
}

func decodeHeader(b []byte) (StreamInfo, error) {
	if string(b[0:4]) != Signature {
		return StreamInfo{}, fmt.Errorf("%w: bad signature %q", ErrMalformedHeader, b[0:4])
	}
	if v := binary.LittleEndian.Uint16(b[4:6]); v != 0 {
		return StreamInfo{}, fmt.Errorf("%w: unsupported version %d", ErrMalformedHeader, v)
	}

	var info StreamInfo
	copy(info.FourCC[:], b[8:12])
	info.Width = binary.LittleEndian.Uint16(b[12:14])
	info.Height = binary.LittleEndian.Uint16(b[14:16])
	info.TimeBaseNumerator = binary.LittleEndian.Uint32(b[16:20])
	info.TimeBaseDenominator = binary.LittleEndian.Uint32(b[20:24])
	info.FrameCount = binary.LittleEndian.Uint32(b[24:28])
	return info, nil
}
