package source

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Stream is a source fed by a producer while the decoder reads from it. Data
// written with Write becomes readable immediately; CloseWrite marks the end of
// the stream. Write and Read may be called from different goroutines.
type Stream struct {
	mu      sync.Mutex
	buf     []byte
	eos     bool
	closed  bool
	written uint64
	read    uint64
}

// NewStream returns an empty stream.
func NewStream() *Stream {
	return &Stream{}
}

// Write appends p to the stream. It implements io.Writer.
func (s *Stream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	if s.eos {
		return 0, ErrEndOfStream
	}
	s.buf = append(s.buf, p...)
	s.written += uint64(len(p))
	return len(p), nil
}

// CloseWrite marks the end of the stream. Bytes already written stay
// readable.
func (s *Stream) CloseWrite() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.eos {
		return
	}
	s.eos = true

	logrus.WithFields(logrus.Fields{
		"function": "Stream.CloseWrite",
		"written":  s.written,
		"pending":  len(s.buf),
	}).Debug("Stream end marked")
}

// Read implements Source.
func (s *Stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	if len(s.buf) == 0 {
		if s.eos {
			return 0, io.EOF
		}
		return 0, nil
	}

	n := copy(p, s.buf)
	if n == len(s.buf) {
		s.buf = s.buf[:0]
	} else {
		s.buf = s.buf[n:]
	}
	s.read += uint64(n)
	return n, nil
}

// Exhausted implements Source.
func (s *Stream) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed || (s.eos && len(s.buf) == 0)
}

// Buffered returns the number of written but unread bytes.
func (s *Stream) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}

// Close discards unread data. Later writes and reads fail with ErrClosed.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.eos = true
	s.buf = nil

	logrus.WithFields(logrus.Fields{
		"function": "Stream.Close",
		"written":  s.written,
		"read":     s.read,
	}).Debug("Closing stream source")
	return nil
}
