package usecase

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrorConfigurationMissing ErrorCode = "CONFIGURATION_MISSING"
	ErrorRemoteFailure        ErrorCode = "REMOTE_FAILURE"
	ErrorDeviceUnavailable    ErrorCode = "DEVICE_UNAVAILABLE"
	ErrorPrecondition         ErrorCode = "PRECONDITION_VIOLATION"
	ErrorInvalidInput         ErrorCode = "INVALID_INPUT"
	ErrorInternal             ErrorCode = "INTERNAL_ERROR"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// CodeOf returns the code carried by err, or ErrorInternal when err is not a
// usecase error.
func CodeOf(err error) ErrorCode {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Code
	}
	return ErrorInternal
}
