package capture

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a record or upload operation is already running.
	ErrBusy = errors.New("capture session is busy")
	// ErrUploadInFlight is returned by Cancel while the upload is running.
	ErrUploadInFlight = errors.New("upload in progress, session cannot be cancelled")
	// ErrCancelled is returned by StopRecording when the session was
	// cancelled while the recording was being saved.
	ErrCancelled = errors.New("capture session was cancelled")
)

// PermissionDeniedError means a device capability was refused. It is terminal
// for the session.
type PermissionDeniedError struct {
	Capability string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("%s permission is required to record videos", e.Capability)
}

// ValidationError reports a classification value outside the allowed set.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// IOError wraps a failure creating directories or moving the recording.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// TransportError wraps a failed upload. Its message is the transport's,
// unchanged.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// TransitionError is returned when an operation is not valid in the current
// state.
type TransitionError struct {
	Op   string
	From State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Op, e.From)
}
