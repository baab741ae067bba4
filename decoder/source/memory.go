package source

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Memory reads from a byte slice supplied by the caller. The caller keeps
// ownership of the slice and must not modify it while the source is in use.
type Memory struct {
	buf    []byte
	pos    int
	closed bool
}

// NewMemory wraps buf. The read position starts at zero.
func NewMemory(buf []byte) *Memory {
	return &Memory{buf: buf}
}

// Read implements Source.
func (m *Memory) Read(p []byte) (int, error) {
	if m.closed {
		return 0, ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	if m.Exhausted() {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += n
	return n, nil
}

// Exhausted implements Source.
func (m *Memory) Exhausted() bool {
	return m.pos >= len(m.buf)
}

// Remaining returns the number of unread bytes.
func (m *Memory) Remaining() int {
	return len(m.buf) - m.pos
}

// Close drops the reference to the wrapped slice. The slice itself is left
// untouched.
func (m *Memory) Close() error {
	if m.closed {
		return nil
	}
	logrus.WithFields(logrus.Fields{
		"function": "Memory.Close",
		"length":   len(m.buf),
		"position": m.pos,
	}).Debug("Closing memory source")

	m.closed = true
	m.buf = nil
	m.pos = 0
	return nil
}
