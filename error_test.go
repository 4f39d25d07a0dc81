package recorder_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-rod/recorder"
	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	cause := errors.New("net::ERR_NAME_NOT_RESOLVED")
	err := &recorder.Error{Code: recorder.ErrNavigation, Details: "https://a.test", Err: cause}

	assert.Equal(t, "[recorder] navigation failed: https://a.test: net::ERR_NAME_NOT_RESOLVED", err.Error())
	assert.Equal(t, "[recorder] missing argument: url", (&recorder.Error{Code: recorder.ErrMissingArgument, Details: "url"}).Error())
	assert.Equal(t, "[recorder] capture stop failed", (&recorder.Error{Code: recorder.ErrCaptureStop}).Error())

	wrapped := fmt.Errorf("run: %w", err)

	assert.ErrorIs(t, wrapped, cause)
	assert.ErrorIs(t, wrapped, &recorder.Error{Code: recorder.ErrNavigation})
	assert.NotErrorIs(t, wrapped, &recorder.Error{Code: recorder.ErrCaptureStart})

	assert.True(t, recorder.IsError(wrapped, recorder.ErrNavigation))
	assert.False(t, recorder.IsError(wrapped, recorder.ErrBrowserLaunch))
	assert.False(t, recorder.IsError(nil, recorder.ErrNavigation))
	assert.False(t, recorder.IsError(cause, recorder.ErrNavigation))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unstarted", recorder.StateUnstarted.String())
	assert.Equal(t, "capturing", recorder.StateCapturing.String())
	assert.Equal(t, "closed", recorder.StateClosed.String())
	assert.Equal(t, "unknown", recorder.State(100).String())
}
