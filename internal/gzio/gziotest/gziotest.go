// Package gziotest provides stream helpers for tests that exercise
// encode/decode failure paths.
package gziotest

import (
	"errors"
	"io"
)

// ErrInjected is returned by LimitedWriter once its budget is spent.
var ErrInjected = errors.New("injected stream failure")

// LimitedWriter accepts N bytes and fails every write after that.
type LimitedWriter struct {
	N       int
	written int
}

// Write implements io.Writer.
func (lw *LimitedWriter) Write(p []byte) (int, error) {
	if lw.written+len(p) > lw.N {
		return 0, ErrInjected
	}
	lw.written += len(p)
	return len(p), nil
}

// Truncated returns a reader over the first n bytes of data.
func Truncated(data []byte, n int) io.Reader {
	if n > len(data) {
		n = len(data)
	}
	return &sliceReader{data: data[:n]}
}

type sliceReader struct {
	data []byte
	off  int
}

func (sr *sliceReader) Read(p []byte) (int, error) {
	if sr.off >= len(sr.data) {
		return 0, io.EOF
	}
	n := copy(p, sr.data[sr.off:])
	sr.off += n
	return n, nil
}
