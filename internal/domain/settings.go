package domain

import "time"

// ServerSettings is the locally persisted connection configuration for the
// single remote server. At most one row exists.
type ServerSettings struct {
	BaseURL   string
	Port      string
	UpdatedAt time.Time
}

// Configured returns true when both the base URL and port are set.
func (s *ServerSettings) Configured() bool {
	return s != nil && s.BaseURL != "" && s.Port != ""
}

// Origin returns "{baseURL}:{port}" without any normalization.
func (s *ServerSettings) Origin() string {
	return s.BaseURL + ":" + s.Port
}
