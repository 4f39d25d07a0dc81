package encoder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPacer(t *testing.T) {
	t0 := time.Unix(0, 0)
	at := func(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }

	p := &pacer{fps: 10}

	f, n := p.next(at(0))
	assert.Nil(t, f)
	assert.Equal(t, 0, n)
	assert.True(t, p.push(Frame{Data: []byte("a"), Timestamp: at(0)}))

	f, n = p.next(at(100))
	assert.Equal(t, "a", string(f.Data))
	assert.Equal(t, 1, n)
	p.push(Frame{Data: []byte("b"), Timestamp: at(100)})

	// 1.5 frames, the half is carried
	f, n = p.next(at(250))
	assert.Equal(t, "b", string(f.Data))
	assert.Equal(t, 1, n)
	p.push(Frame{Data: []byte("c"), Timestamp: at(250)})

	f, n = p.next(at(300))
	assert.Equal(t, "c", string(f.Data))
	assert.Equal(t, 1, n)

	assert.Equal(t, 3, p.written)
}

func TestPacerDropsOlderFrames(t *testing.T) {
	t0 := time.Unix(10, 0)
	p := &pacer{fps: 25}

	p.push(Frame{Data: []byte("a"), Timestamp: t0})

	f, n := p.next(t0.Add(-time.Second))
	assert.Equal(t, "a", string(f.Data))
	assert.Equal(t, 0, n)
	assert.False(t, p.push(Frame{Data: []byte("old"), Timestamp: t0.Add(-time.Second)}))
	assert.Equal(t, "a", string(p.prev.Data))
}

func TestPacerLimit(t *testing.T) {
	t0 := time.Unix(0, 0)
	p := &pacer{fps: 10, limit: 15}

	p.push(Frame{Data: []byte("a"), Timestamp: t0})

	_, n := p.next(t0.Add(time.Second))
	assert.Equal(t, 10, n)
	assert.False(t, p.full())

	p.push(Frame{Data: []byte("b"), Timestamp: t0.Add(time.Second)})
	_, n = p.next(t0.Add(3 * time.Second))
	assert.Equal(t, 5, n)
	assert.True(t, p.full())

	_, n = p.next(t0.Add(4 * time.Second))
	assert.Equal(t, 0, n)
}
