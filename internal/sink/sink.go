// Package sink provides the ordered, append-only byte channel that feeds a
// subprocess's standard input.
//
// A Sink buffers writes and only pushes them to the underlying stream on
// Flush or Close. It has no notion of messages; callers that need a
// directive and its payload to stay together write them in one call.
package sink

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// ErrClosed is returned by writes attempted after Close.
var ErrClosed = errors.New("sink: write after close")

// Sink wraps a one-directional byte stream.
type Sink struct {
	mu      sync.Mutex
	w       *bufio.Writer
	c       io.Closer
	closed  bool
	written int64
}

// New wraps w. The Sink takes ownership: closing the Sink closes w.
func New(w io.WriteCloser) *Sink {
	return &Sink{
		w: bufio.NewWriter(w),
		c: w,
	}
}

// Write appends p. A short write from the underlying stream is reported
// as an error and never retried.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	n, err := s.w.Write(p)
	s.written += int64(n)
	return n, err
}

// WriteString appends str.
func (s *Sink) WriteString(str string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	n, err := s.w.WriteString(str)
	s.written += int64(n)
	return n, err
}

// Flush pushes buffered bytes to the underlying stream.
func (s *Sink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.w.Flush()
}

// Close flushes pending bytes and closes the underlying stream, which the
// subprocess sees as end of input. Calling Close again is a no-op.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	flushErr := s.w.Flush()
	closeErr := s.c.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// Closed reports whether Close has been called.
func (s *Sink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Written returns the number of bytes accepted so far.
func (s *Sink) Written() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}
