package settings

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/ashureev/rasman/internal/config"
	"github.com/ashureev/rasman/internal/rasclient"
	"github.com/ashureev/rasman/internal/rastest"
	"github.com/ashureev/rasman/internal/store"
)

func newService(t *testing.T) *Service {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "rasman.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return NewService(repo, nil)
}

func TestLoadCreatesEmptySettings(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	settings, err := svc.Load(ctx, config.ServerSeed{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.Configured() {
		t.Fatalf("expected unconfigured settings, got %+v", settings)
	}

	if _, err := svc.Client(ctx); !errors.Is(err, rasclient.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestLoadSeedsOnlyOnce(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.Load(ctx, config.ServerSeed{BaseURL: " http://localhost ", Port: "8080"}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := svc.Update(ctx, "http://ras.example", "9000"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	settings, err := svc.Load(ctx, config.ServerSeed{BaseURL: "http://localhost", Port: "8080"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.BaseURL != "http://ras.example" || settings.Port != "9000" {
		t.Errorf("seed overwrote saved settings: %+v", settings)
	}
}

func TestClientRejectsInvalidURL(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.Update(ctx, "localhost", "8080"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if _, err := svc.Client(ctx); !errors.Is(err, rasclient.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestTestConnection(t *testing.T) {
	srv := rastest.New(t)
	svc := newService(t)
	ctx := context.Background()

	status := svc.TestConnection(ctx)
	if status.OK || status.Message != "Server settings must be configured to continue." {
		t.Fatalf("unexpected status before configuring: %+v", status)
	}

	addr := srv.Settings()
	if _, err := svc.Update(ctx, addr.BaseURL, addr.Port); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if status := svc.TestConnection(ctx); !status.OK {
		t.Fatalf("expected successful connection, got %+v", status)
	}

	srv.Fail(http.MethodGet, "/user", http.StatusUnauthorized)
	if status := svc.TestConnection(ctx); status.OK || status.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 status, got %+v", status)
	}
}
