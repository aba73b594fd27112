// Package settings manages the persisted connection settings for the remote
// server and builds API clients from them.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ashureev/rasman/internal/config"
	"github.com/ashureev/rasman/internal/domain"
	"github.com/ashureev/rasman/internal/rasclient"
	"github.com/ashureev/rasman/internal/store"
)

// Service reads and writes the singleton ServerSettings row.
type Service struct {
	repo   store.Repository
	logger *slog.Logger
}

// NewService creates a settings service.
func NewService(repo store.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Load returns the stored settings, creating the row from seed on first launch.
func (s *Service) Load(ctx context.Context, seed config.ServerSeed) (*domain.ServerSettings, error) {
	settings, err := s.repo.EnsureSettings(ctx, domain.ServerSettings{
		BaseURL: strings.TrimSpace(seed.BaseURL),
		Port:    strings.TrimSpace(seed.Port),
	})
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

// Update overwrites the stored base URL and port.
func (s *Service) Update(ctx context.Context, baseURL, port string) (*domain.ServerSettings, error) {
	settings := &domain.ServerSettings{
		BaseURL: strings.TrimSpace(baseURL),
		Port:    strings.TrimSpace(port),
	}
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}
	s.logger.Info("Server settings saved", "base_url", settings.BaseURL, "port", settings.Port)
	return settings, nil
}

// Client builds an API client from the stored settings. It returns
// rasclient.ErrNotConfigured when either field is missing.
func (s *Service) Client(ctx context.Context, opts ...rasclient.Option) (*rasclient.Client, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if !settings.Configured() {
		return nil, rasclient.ErrNotConfigured
	}
	client := rasclient.New(*settings, append([]rasclient.Option{rasclient.WithLogger(s.logger)}, opts...)...)
	if err := client.Ready(); err != nil {
		return nil, err
	}
	return client, nil
}

// TestConnection checks the stored settings against the live server.
func (s *Service) TestConnection(ctx context.Context, opts ...rasclient.Option) rasclient.ConnectionStatus {
	client, err := s.Client(ctx, opts...)
	if err != nil {
		return rasclient.ConnectionStatus{Message: rasclient.Describe(err)}
	}
	status := client.Ping(ctx)
	s.logger.Debug("Connection test finished", "ok", status.OK, "status", status.StatusCode)
	return status
}
