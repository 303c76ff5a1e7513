// Package media captures camera stills and dictation for the composer.
// Device handles are scoped to a single call and are always released.
package media

import (
	"errors"
	"fmt"
)

var (
	// ErrDeviceUnavailable matches every *DeviceError.
	ErrDeviceUnavailable = errors.New("media: device unavailable")
	// ErrUnsupported is returned by capabilities the host does not provide.
	ErrUnsupported = errors.New("media: unsupported")
)

// DeviceError reports a failed device operation. It never reaches the
// conversation; callers surface it as a notice.
type DeviceError struct {
	Device string
	Op     string
	Err    error
}

func (e *DeviceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("media: %s %s: device unavailable", e.Device, e.Op)
	}
	return fmt.Sprintf("media: %s %s: %v", e.Device, e.Op, e.Err)
}

func (e *DeviceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDeviceUnavailable}
	}
	return []error{ErrDeviceUnavailable, e.Err}
}

func deviceErr(device, op string, err error) error {
	return &DeviceError{Device: device, Op: op, Err: err}
}
