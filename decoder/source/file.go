package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// File reads from an owned io.ReadCloser, typically an *os.File. Exhaustion
// follows the end-of-file signal of the underlying reader, so it is reported
// only after a read has hit the end.
//
// The wrapped reader must not block: regular files and in-memory readers are
// fine, pipes and sockets belong in a Stream.
type File struct {
	name   string
	r      io.ReadCloser
	eof    bool
	err    error
	closed bool
}

// Open opens the file at path for reading.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source %s: %w", path, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "source.Open",
		"path":     path,
	}).Debug("Opened file source")

	return &File{name: path, r: f}, nil
}

// NewReader wraps rc. The returned source owns rc and closes it on Close.
func NewReader(rc io.ReadCloser) *File {
	return &File{name: "reader", r: rc}
}

// Read implements Source. It keeps reading until p is full or the reader
// reports end-of-file.
func (f *File) Read(p []byte) (int, error) {
	if f.closed {
		return 0, ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	if f.err != nil {
		return 0, f.err
	}
	if f.eof {
		return 0, io.EOF
	}

	n := 0
	for n < len(p) {
		m, err := f.r.Read(p[n:])
		n += m
		if errors.Is(err, io.EOF) {
			f.eof = true
			break
		}
		if err != nil {
			// A failed reader will not produce more data.
			f.eof = true
			f.err = fmt.Errorf("read %s: %w", f.name, err)
			return n, f.err
		}
		if m == 0 {
			break
		}
	}
	return n, nil
}

// Exhausted implements Source.
func (f *File) Exhausted() bool {
	return f.eof || f.closed
}

// Close closes the underlying reader.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	logrus.WithFields(logrus.Fields{
		"function": "File.Close",
		"name":     f.name,
		"eof":      f.eof,
	}).Debug("Closing file source")

	if err := f.r.Close(); err != nil {
		return fmt.Errorf("close %s: %w", f.name, err)
	}
	return nil
}
