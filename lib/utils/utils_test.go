package utils_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-rod/recorder/lib/utils"
	"github.com/stretchr/testify/assert"
)

func TestSleep(t *testing.T) {
	assert.True(t, utils.Sleep(context.Background(), 0))
	assert.True(t, utils.Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	assert.False(t, utils.Sleep(ctx, time.Hour))
	assert.Less(t, time.Since(start), time.Minute)

	assert.False(t, utils.Sleep(ctx, 0))
}

func TestLineWriter(t *testing.T) {
	lines := []string{}
	w := utils.LineWriter(func(l string) { lines = append(lines, l) })

	fmt.Fprint(w, "a")
	assert.Empty(t, lines)

	fmt.Fprint(w, "b\nc\r")
	assert.Equal(t, []string{"ab", "c"}, lines)

	fmt.Fprint(w, "\n\nd")
	assert.Equal(t, []string{"ab", "c"}, lines)

	fmt.Fprint(w, "\n")
	assert.Equal(t, []string{"ab", "c", "d"}, lines)
}
