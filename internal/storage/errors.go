package storage

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies mount-layer failures.
type ErrorKind string

const (
	// KindTimeout indicates the device did not answer within the driver's deadline.
	KindTimeout ErrorKind = "timeout"
	// KindDeviceAbsent indicates no removable device is present (or the mount
	// point does not exist).
	KindDeviceAbsent ErrorKind = "device_absent"
	// KindRetriesExhausted indicates the bounded mount attempt budget was spent.
	KindRetriesExhausted ErrorKind = "retries_exhausted"
	// KindRateLimited indicates a read was rejected to preserve the minimum
	// spacing between storage operations (or the post-mount settling window).
	KindRateLimited ErrorKind = "rate_limited"
)

// Error is a typed mount-layer error.
type Error struct {
	Kind ErrorKind
	// RetryAfter is set on rate-limited rejections: how long the caller
	// should wait before the read would be admitted.
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("storage: %s", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the ErrorKind of err, or "" if err is not a mount-layer error.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// IsRateLimited reports whether err is a rate-limit rejection.
func IsRateLimited(err error) bool {
	return KindOf(err) == KindRateLimited
}
