// rasman - management client for a retro AIM server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ashureev/rasman/internal/config"
	"github.com/ashureev/rasman/internal/domain"
	"github.com/ashureev/rasman/internal/rasclient"
	"github.com/ashureev/rasman/internal/settings"
	"github.com/ashureev/rasman/internal/store"
	"github.com/joho/godotenv"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "rasman: failed to read .env:", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "rasman:", err)
		os.Exit(exitUsage)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(runMain(ctx, cfg, logger, os.Args[1:], os.Stdin, os.Stdout))
}

// runMain opens local state and dispatches one command. It returns the
// process exit code.
func runMain(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string, in io.Reader, out io.Writer) int {
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		logger.Error("Failed to initialize local store", "path", cfg.DBPath, "error", err)
		fmt.Fprintln(out, "Could not open local data store:", err)
		return exitFailed
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			logger.Error("Failed to close local store", "error", closeErr)
		}
	}()

	a := &app{
		cfg:      cfg,
		repo:     repo,
		settings: settings.NewService(repo, logger),
		logger:   logger,
		in:       in,
		out:      out,
		styles:   newStyles(cfg.NoColor),
	}

	if _, err := a.settings.Load(ctx, cfg.Seed); err != nil {
		logger.Error("Failed to load server settings", "error", err)
		fmt.Fprintln(out, "Could not load server settings:", err)
		return exitFailed
	}

	err = a.run(ctx, args)
	if err == nil {
		return exitOK
	}

	var usage *usageError
	switch {
	case errors.Is(err, errReported):
		return exitFailed
	case errors.As(err, &usage):
		fmt.Fprintln(out, usage.Error())
		fmt.Fprint(out, usageText)
		return exitUsage
	case errors.Is(err, domain.ErrValidation), errors.Is(err, rasclient.ErrNotConfigured), errors.Is(err, rasclient.ErrInvalidConfig):
		fmt.Fprintln(out, a.styles.fail.Render(rasclient.Describe(err)))
		return exitUsage
	default:
		fmt.Fprintln(out, a.styles.fail.Render(rasclient.Describe(err)))
		return exitFailed
	}
}
