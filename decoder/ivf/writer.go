package ivf

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Writer produces an IVF container.
type Writer struct {
	w      io.Writer
	frames uint32
}

// NewWriter writes the file header for info to w and returns a writer for the
// frame records.
func NewWriter(w io.Writer, info StreamInfo) (*Writer, error) {
	var hdr [HeaderSize]byte
	copy(hdr[0:4], Signature)
	binary.LittleEndian.PutUint16(hdr[4:6], 0)
	binary.LittleEndian.PutUint16(hdr[6:8], HeaderSize)
	copy(hdr[8:12], info.FourCC[:])
	binary.LittleEndian.PutUint16(hdr[12:14], info.Width)
	binary.LittleEndian.PutUint16(hdr[14:16], info.Height)
	binary.LittleEndian.PutUint32(hdr[16:20], info.TimeBaseNumerator)
	binary.LittleEndian.PutUint32(hdr[20:24], info.TimeBaseDenominator)
	binary.LittleEndian.PutUint32(hdr[24:28], info.FrameCount)

	if _, err := w.Write(hdr[:]); err != nil {
		return nil, fmt.Errorf("ivf: write header: %w", err)
	}
	return &Writer{w: w}, nil
}

// WriteFrame appends one frame record.
func (w *Writer) WriteFrame(payload []byte, pts uint64) error {
	var hdr [FrameHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(len(payload)))
	binary.LittleEndian.PutUint64(hdr[4:12], pts)

	if _, err := w.w.Write(hdr[:]); err != nil {
		return fmt.Errorf("ivf: write frame header: %w", err)
	}
	if _, err := w.w.Write(payload); err != nil {
		return fmt.Errorf("ivf: write frame payload: %w", err)
	}
	w.frames++
	return nil
}

// Frames returns the number of records written.
func (w *Writer) Frames() uint32 {
	return w.frames
}
