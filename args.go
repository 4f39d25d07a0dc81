package recorder

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Params of a recording, resolved from the command line
type Params struct {
	URL             string
	DurationSeconds int
}

// maxDurationSeconds is the longest duration a time.Duration can hold
const maxDurationSeconds = math.MaxInt64 / int64(time.Second)

// Duration of the recording, it saturates instead of overflowing
func (p Params) Duration() time.Duration {
	if int64(p.DurationSeconds) > maxDurationSeconds {
		return math.MaxInt64
	}
	return time.Duration(p.DurationSeconds) * time.Second
}

// Resolve the url and the duration from the positional arguments, the program
// name must not be included. Arguments after the second one are ignored.
// The duration must be a non-negative integer that fits in a time.Duration,
// anything else is rejected instead of being treated as zero.
func Resolve(args []string) (Params, error) {
	if len(args) < 1 || args[0] == "" {
		return Params{}, newError(ErrMissingArgument, "url", nil)
	}

	if len(args) < 2 || strings.TrimSpace(args[1]) == "" {
		return Params{}, newError(ErrMissingArgument, "duration", nil)
	}

	d, err := strconv.Atoi(strings.TrimSpace(args[1]))
	if err != nil {
		return Params{}, newError(ErrInvalidDuration, args[1], err)
	}
	if d < 0 || int64(d) > maxDurationSeconds {
		return Params{}, newError(ErrInvalidDuration, args[1], nil)
	}

	return Params{URL: args[0], DurationSeconds: d}, nil
}
