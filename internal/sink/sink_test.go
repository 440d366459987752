package sink

import (
	"bytes"
	"errors"
	"testing"
)

// captureCloser records writes and counts Close calls.
type captureCloser struct {
	bytes.Buffer
	closes int
}

func (c *captureCloser) Close() error {
	c.closes++
	return nil
}

// shortWriter accepts at most limit bytes per call.
type shortWriter struct {
	limit int
}

func (w *shortWriter) Write(p []byte) (int, error) {
	if len(p) > w.limit {
		return w.limit, nil
	}
	return len(p), nil
}

func (w *shortWriter) Close() error { return nil }

func TestSink_BuffersUntilFlush(t *testing.T) {
	c := &captureCloser{}
	s := New(c)

	if _, err := s.WriteString("set title 'x'\n"); err != nil {
		t.Fatalf("WriteString() error: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("expected nothing on the wire before Flush, got %q", c.String())
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}
	if c.String() != "set title 'x'\n" {
		t.Errorf("got %q", c.String())
	}
	if s.Written() != int64(len("set title 'x'\n")) {
		t.Errorf("Written() = %d", s.Written())
	}
}

func TestSink_CloseIsIdempotent(t *testing.T) {
	c := &captureCloser{}
	s := New(c)
	_, _ = s.Write([]byte("abc"))

	if err := s.Close(); err != nil {
		t.Fatalf("first Close() error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
	if c.closes != 1 {
		t.Errorf("underlying Close called %d times, want 1", c.closes)
	}
	if c.String() != "abc" {
		t.Errorf("got %q, want pending bytes flushed on close", c.String())
	}
	if !s.Closed() {
		t.Error("Closed() = false after Close")
	}
}

func TestSink_WriteAfterClose(t *testing.T) {
	c := &captureCloser{}
	s := New(c)
	_ = s.Close()

	if _, err := s.Write([]byte("x")); !errors.Is(err, ErrClosed) {
		t.Errorf("Write after close: got %v, want ErrClosed", err)
	}
	if _, err := s.WriteString("x"); !errors.Is(err, ErrClosed) {
		t.Errorf("WriteString after close: got %v, want ErrClosed", err)
	}
	if err := s.Flush(); !errors.Is(err, ErrClosed) {
		t.Errorf("Flush after close: got %v, want ErrClosed", err)
	}
	if c.Len() != 0 {
		t.Errorf("expected no bytes after close, got %q", c.String())
	}
}

func TestSink_ShortWriteSurfaces(t *testing.T) {
	s := New(&shortWriter{limit: 2})
	_, _ = s.WriteString("hello")
	if err := s.Flush(); err == nil {
		t.Fatal("expected short write error from Flush")
	}
}
