// Package impersonation sends instant messages on behalf of arbitrary users
// and keeps a local history of every attempt.
package impersonation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ashureev/rasman/internal/domain"
	"github.com/ashureev/rasman/internal/rasclient"
)

const instantMessagePath = "/instant-message"

// API is the subset of the management client used by this package.
type API interface {
	PostJSON(ctx context.Context, path string, body any, want ...int) error
}

// History persists send attempts.
type History interface {
	InsertSentMessage(ctx context.Context, msg *domain.SentMessage) error
	ResolveSentMessage(ctx context.Context, id string, state domain.SendState, result string) error
	ListSentMessages(ctx context.Context, limit int) ([]*domain.SentMessage, error)
}

// MessageForm holds the fields of the impersonation form.
type MessageForm struct {
	From string
	To   string
	Text string
}

// Reset clears every field.
func (f *MessageForm) Reset() {
	*f = MessageForm{}
}

// Log sends impersonated messages and records them. It is safe for
// concurrent use; each send resolves only its own record.
type Log struct {
	api     API
	history History
	logger  *slog.Logger
}

// NewLog creates an impersonation log.
func NewLog(api API, history History, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{api: api, history: history, logger: logger}
}

// Send records a pending entry, posts the message and then resolves that same
// entry to succeeded or failed. The returned record reflects the final state.
// On success the form is reset; on failure it is left as-is.
func (l *Log) Send(ctx context.Context, form *MessageForm) (*domain.SentMessage, error) {
	if form.From == "" || form.To == "" || form.Text == "" {
		return nil, domain.Invalid("All fields are required.")
	}

	msg := domain.NewPendingMessage(form.From, form.To, form.Text)
	if err := l.history.InsertSentMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("record message: %w", err)
	}
	l.logger.Debug("Message recorded", "id", msg.ID, "from", msg.From, "to", msg.To)

	req := domain.InstantMessageRequest{From: msg.From, To: msg.To, Text: msg.Message}
	sendErr := l.api.PostJSON(ctx, instantMessagePath, req, http.StatusOK)

	state, result := domain.SendSucceeded, domain.ResultSent
	if sendErr != nil {
		sendErr = rasclient.Fail("send message", sendErr)
		state, result = domain.SendFailed, rasclient.Describe(sendErr)
	}

	// The outcome is persisted even if the caller's context was cancelled.
	if err := l.history.ResolveSentMessage(context.WithoutCancel(ctx), msg.ID, state, result); err != nil {
		l.logger.Error("Failed to update message result", "id", msg.ID, "error", err)
		return msg, errors.Join(sendErr, fmt.Errorf("update message %s: %w", msg.ID, err))
	}
	msg.State, msg.Result = state, result

	if sendErr != nil {
		l.logger.Warn("Failed to send message", "id", msg.ID, "to", msg.To, "error", sendErr)
		return msg, sendErr
	}

	l.logger.Info("Message sent", "id", msg.ID, "from", msg.From, "to", msg.To)
	form.Reset()
	return msg, nil
}

// Entries returns up to limit of the most recent attempts in insertion order.
func (l *Log) Entries(ctx context.Context, limit int) ([]*domain.SentMessage, error) {
	msgs, err := l.history.ListSentMessages(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list sent messages: %w", err)
	}
	return msgs, nil
}
