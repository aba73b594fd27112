// Package sessions reports the sessions currently active on the remote server.
package sessions

import (
	"context"
	"log/slog"

	"github.com/ashureev/rasman/internal/domain"
	"github.com/ashureev/rasman/internal/rasclient"
)

const sessionPath = "/session"

// API is the subset of the management client used by this package.
type API interface {
	GetJSON(ctx context.Context, path string, out any) error
}

// Monitor lists active sessions. It has no mutation path.
type Monitor struct {
	api    API
	logger *slog.Logger
}

// NewMonitor creates a session monitor.
func NewMonitor(api API, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{api: api, logger: logger}
}

// ListActiveSessions fetches the active session envelope.
func (m *Monitor) ListActiveSessions(ctx context.Context) (domain.SessionList, error) {
	var list domain.SessionList
	if err := m.api.GetJSON(ctx, sessionPath, &list); err != nil {
		m.logger.Warn("Error fetching sessions", "error", err)
		return domain.SessionList{}, rasclient.Fail("load sessions", err)
	}
	return list, nil
}
