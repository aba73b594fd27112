// Package store provides local persistence for connection settings and the
// impersonation send history.
package store

import (
	"context"
	"errors"

	"github.com/ashureev/rasman/internal/domain"
)

var (
	// ErrMessageNotFound is returned when a sent message ID has no row.
	ErrMessageNotFound = errors.New("sent message not found")
	// ErrMessageResolved is returned when a resolved record is transitioned again.
	ErrMessageResolved = errors.New("sent message already resolved")
)

// Repository defines the interface for persisting client-side state.
type Repository interface {
	// GetSettings returns the connection settings, or nil if none exist yet.
	GetSettings(ctx context.Context) (*domain.ServerSettings, error)

	// EnsureSettings creates the settings row from seed if it does not exist
	// and returns the stored settings.
	EnsureSettings(ctx context.Context, seed domain.ServerSettings) (*domain.ServerSettings, error)

	// SaveSettings overwrites the single settings row.
	SaveSettings(ctx context.Context, settings *domain.ServerSettings) error

	// InsertSentMessage appends a record to the send history.
	InsertSentMessage(ctx context.Context, msg *domain.SentMessage) error

	// ResolveSentMessage moves a pending record to a terminal state.
	ResolveSentMessage(ctx context.Context, id string, state domain.SendState, result string) error

	// GetSentMessage retrieves a record by its ID.
	GetSentMessage(ctx context.Context, id string) (*domain.SentMessage, error)

	// ListSentMessages returns up to limit of the most recent records in
	// insertion order. A limit <= 0 returns all records.
	ListSentMessages(ctx context.Context, limit int) ([]*domain.SentMessage, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
