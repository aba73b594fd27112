// Package rasclient issues JSON requests against the chat server's
// management API.
package rasclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/ashureev/rasman/internal/domain"
)

const maxResponseBytes = 8 << 20

// Client is a thin wrapper over http.Client bound to one server's settings.
type Client struct {
	settings domain.ServerSettings
	http     *http.Client
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the given settings. The settings are copied; a
// client never observes later edits.
func New(settings domain.ServerSettings, opts ...Option) *Client {
	c := &Client{
		settings: settings,
		http:     &http.Client{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Settings returns the settings the client was built with.
func (c *Client) Settings() domain.ServerSettings {
	return c.settings
}

// Ready reports whether requests can be issued at all.
func (c *Client) Ready() error {
	if !c.settings.Configured() {
		return ErrNotConfigured
	}
	_, err := c.endpoint("")
	return err
}

// endpoint concatenates baseURL, ":", port and path verbatim.
func (c *Client) endpoint(path string) (string, error) {
	if !c.settings.Configured() {
		return "", ErrNotConfigured
	}
	raw := c.settings.Origin() + path
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidConfig, raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidConfig, raw)
	}
	return raw, nil
}

// Do sends a request and returns the response body. body, if non-nil, is
// encoded as JSON. When want is empty any status is accepted; otherwise a
// status outside want yields a *StatusError.
func (c *Client) Do(ctx context.Context, method, path string, body any, want ...int) ([]byte, error) {
	target, err := c.endpoint(path)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "url", target, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("failed to close response body", "error", closeErr)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrTransport, err)
	}

	c.logger.Debug("request completed",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if len(want) > 0 && !slices.Contains(want, resp.StatusCode) {
		return data, &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       string(bytes.TrimSpace(data)),
		}
	}
	return data, nil
}

// GetJSON issues a GET expecting 200 and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	data, err := c.Do(ctx, http.MethodGet, path, nil, http.StatusOK)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: GET %s: %w", ErrDecode, path, err)
	}
	return nil
}

// PostJSON issues a POST with a JSON body.
func (c *Client) PostJSON(ctx context.Context, path string, body any, want ...int) error {
	_, err := c.Do(ctx, http.MethodPost, path, body, want...)
	return err
}

// PutJSON issues a PUT with a JSON body.
func (c *Client) PutJSON(ctx context.Context, path string, body any, want ...int) error {
	_, err := c.Do(ctx, http.MethodPut, path, body, want...)
	return err
}

// DeleteJSON issues a DELETE with a JSON body.
func (c *Client) DeleteJSON(ctx context.Context, path string, body any, want ...int) error {
	_, err := c.Do(ctx, http.MethodDelete, path, body, want...)
	return err
}
