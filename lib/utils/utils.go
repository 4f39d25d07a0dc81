// Package utils holds small helpers shared by the recorder packages.
package utils

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

// Sleep for d or until ctx is done, returns false if ctx is done first
func Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// LineWriter calls log for each line written to it.
// Useful to redirect the output of a subprocess to a logger.
func LineWriter(log func(string)) io.Writer {
	return &lineWriter{log: log}
}

type lineWriter struct {
	lock sync.Mutex
	log  func(string)
	buf  []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.buf = append(w.buf, p...)

	// ffmpeg uses \r to refresh its progress line
	w.buf = bytes.ReplaceAll(w.buf, []byte("\r"), []byte("\n"))

	i := bytes.LastIndexByte(w.buf, '\n')
	if i < 0 {
		return len(p), nil
	}

	for _, line := range bytes.Split(w.buf[:i], []byte("\n")) {
		if len(line) > 0 {
			w.log(string(line))
		}
	}

	w.buf = append(w.buf[:0], w.buf[i+1:]...)
	return len(p), nil
}
