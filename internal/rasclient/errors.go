package rasclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotConfigured means the connection settings are incomplete. It is a
	// precondition, surfaced before any request is attempted.
	ErrNotConfigured = errors.New("server settings must be configured to continue")
	// ErrInvalidConfig means the settings do not form a usable server URL.
	ErrInvalidConfig = errors.New("invalid server URL")
	// ErrTransport wraps connection, DNS and timeout failures.
	ErrTransport = errors.New("request failed")
	// ErrUnexpectedStatus matches any *StatusError.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrDecode means the response body did not match the expected JSON shape.
	ErrDecode = errors.New("malformed response")
)

// StatusError is returned when the server responds with a status code outside
// the expected set for the call.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: server returned status code %d (%s)",
		e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is makes errors.Is(err, ErrUnexpectedStatus) true for any StatusError.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// StatusCode extracts the HTTP status from err, or 0 if err is not a StatusError.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// OpError ties a failure to the user-facing operation it interrupted.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return "failed to " + e.Op + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Message renders the failure the way it is shown to an operator, for example
// "Failed to add user: Server returned status code: 409".
func (e *OpError) Message() string {
	return "Failed to " + e.Op + ": " + describeCause(e.Err)
}

// Fail wraps err in an OpError unless it is nil.
func Fail(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}
