package rasclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ashureev/rasman/internal/domain"
)

// ConnectionStatus is the outcome of a connection test.
type ConnectionStatus struct {
	OK         bool
	StatusCode int
	Message    string
}

// Ping performs a GET /user and reports whether the server answered 200.
// Failures are reported in the status rather than returned.
func (c *Client) Ping(ctx context.Context) ConnectionStatus {
	_, err := c.Do(ctx, http.MethodGet, "/user", nil, http.StatusOK)
	if err != nil {
		return ConnectionStatus{StatusCode: StatusCode(err), Message: Describe(err)}
	}
	return ConnectionStatus{OK: true, StatusCode: http.StatusOK, Message: "Successfully connected to the server."}
}

// Describe renders err as a single human-readable line.
func Describe(err error) string {
	var op *OpError
	if errors.As(err, &op) && !errors.Is(err, ErrNotConfigured) {
		return op.Message()
	}
	return describeCause(err)
}

func describeCause(err error) string {
	var se *StatusError
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, ErrNotConfigured):
		return "Server settings must be configured to continue."
	case errors.Is(err, ErrInvalidConfig):
		return "Invalid server URL."
	case errors.As(err, &se):
		return fmt.Sprintf("Server returned status code: %d", se.StatusCode)
	default:
		return err.Error()
	}
}
