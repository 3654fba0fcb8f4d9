package engine

import (
	"errors"
	"fmt"
)

// FailureReason classifies per-track playback failures.
type FailureReason string

const (
	// ReasonNotFound means the track's file no longer exists.
	ReasonNotFound FailureReason = "not_found"
	// ReasonUnsupportedFormat means no decoder handles the track's format.
	ReasonUnsupportedFormat FailureReason = "unsupported_format"
	// ReasonIOFault means the storage layer failed while opening the track.
	ReasonIOFault FailureReason = "io_fault"
	// ReasonDecodeFault means the decoder rejected the stream.
	ReasonDecodeFault FailureReason = "decode_fault"
	// ReasonAlreadyPlaying means a play call arrived while a session was
	// already in flight.
	ReasonAlreadyPlaying FailureReason = "already_playing"
)

// Error is a typed per-track playback failure.
type Error struct {
	Reason FailureReason
	Track  string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("playback %q: %s: %v", e.Track, e.Reason, e.Err)
	}
	return fmt.Sprintf("playback %q: %s", e.Track, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ReasonOf returns the failure reason of err, or "" for untyped errors.
func ReasonOf(err error) FailureReason {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Reason
	}
	return ""
}
