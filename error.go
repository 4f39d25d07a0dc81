package recorder

import (
	"errors"
	"fmt"
)

// ErrCode identifies the stage that failed
type ErrCode string

const (
	// ErrMissingArgument error code
	ErrMissingArgument ErrCode = "missing argument"
	// ErrInvalidDuration error code
	ErrInvalidDuration ErrCode = "invalid duration"
	// ErrInvalidConfig error code
	ErrInvalidConfig ErrCode = "invalid config"
	// ErrBrowserLaunch error code
	ErrBrowserLaunch ErrCode = "browser launch failed"
	// ErrPageCreation error code
	ErrPageCreation ErrCode = "page creation failed"
	// ErrNavigation error code
	ErrNavigation ErrCode = "navigation failed"
	// ErrViewport error code
	ErrViewport ErrCode = "set viewport failed"
	// ErrCaptureStart error code
	ErrCaptureStart ErrCode = "capture start failed"
	// ErrCaptureStop error code
	ErrCaptureStop ErrCode = "capture stop failed"
	// ErrBrowserClose error code
	ErrBrowserClose ErrCode = "browser close failed"
)

// Error of the recorder, Details holds the argument name, the url, or the
// config field related to the failure.
type Error struct {
	Err     error
	Code    ErrCode
	Details interface{}
}

func newError(code ErrCode, details interface{}, err error) *Error {
	return &Error{Err: err, Code: code, Details: details}
}

// Error ...
func (e *Error) Error() string {
	msg := "[recorder] " + string(e.Code)
	if e.Details != nil {
		msg += fmt.Sprintf(": %v", e.Details)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap ...
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors with the same code, so errors.Is(err, &Error{Code: ErrNavigation}) works
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// IsError type matches
func IsError(err error, code ErrCode) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	return e.Code == code
}
