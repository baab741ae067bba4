// Package source provides pull-based, non-blocking byte sources that feed the
// IVF parser.
//
// Every backend satisfies Source. A Read never waits for data: when nothing is
// available yet it returns a short (possibly zero) read and the caller retries
// on a later step. Once a source reports Exhausted it stays exhausted.
//
// Backends:
//   - Memory: a caller-owned byte slice.
//   - File: an owned file or io.ReadCloser, exhausted on end-of-file.
//   - Stream: a push-fed buffer for incrementally arriving data.
//   - RTP: a Stream fed by RTP packets, reordered by sequence number.
package source

import "errors"

// ErrClosed is returned by Read and Write on a closed source.
var ErrClosed = errors.New("source: closed")

// ErrEndOfStream is returned by Write after the writer has marked the end of
// the stream.
var ErrEndOfStream = errors.New("source: write after end of stream")

// Source is a pull-based byte cursor.
type Source interface {
	// Read copies at most len(p) bytes into p and never blocks. It returns
	// (0, nil) when no data is available yet, io.EOF once the source is
	// exhausted and ErrClosed after Close.
	Read(p []byte) (int, error)
	// Exhausted reports whether every byte of the source has been consumed.
	// It never goes back from true to false.
	Exhausted() bool
	// Close releases what the source owns.
	Close() error
}
