package encoder

import "time"

// Frame is a single JPEG image captured from the page
type Frame struct {
	Data      []byte
	Timestamp time.Time
}

// pacer converts frames that arrive at irregular intervals into a constant
// frame rate. The screencast only emits a frame when the page changes, so the
// previous frame has to be repeated to fill the gap until the next one.
type pacer struct {
	fps   int
	limit int // max output frames, 0 means no limit

	prev    *Frame
	carry   float64 // fractional frames not emitted yet
	written int
}

// next returns the frame to output and how many times, for the gap between
// the previous frame and a frame at time t.
func (p *pacer) next(t time.Time) (*Frame, int) {
	if p.prev == nil {
		return nil, 0
	}

	elapsed := t.Sub(p.prev.Timestamp).Seconds()
	if elapsed < 0 {
		return p.prev, 0
	}

	count := elapsed*float64(p.fps) + p.carry
	n := int(count)
	p.carry = count - float64(n)

	if p.limit > 0 && p.written+n > p.limit {
		n = p.limit - p.written
	}
	p.written += n

	return p.prev, n
}

// push a frame, it returns false if the frame is older than the previous one
func (p *pacer) push(f Frame) bool {
	if p.prev != nil && f.Timestamp.Before(p.prev.Timestamp) {
		return false
	}
	p.prev = &f
	return true
}

func (p *pacer) full() bool {
	return p.limit > 0 && p.written >= p.limit
}
