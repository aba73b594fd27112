package domain

import "testing"

func TestNewPendingMessage(t *testing.T) {
	a := NewPendingMessage("alice", "bob", "hi")
	b := NewPendingMessage("alice", "bob", "hi")

	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct generated ids, got %q and %q", a.ID, b.ID)
	}
	if a.Result != ResultSending || a.State != SendPending {
		t.Errorf("unexpected initial state: %q %q", a.Result, a.State)
	}
	if a.Terminal() {
		t.Error("pending message must not be terminal")
	}
}

func TestServerSettingsConfigured(t *testing.T) {
	var nilSettings *ServerSettings
	if nilSettings.Configured() {
		t.Error("nil settings must not be configured")
	}
	s := &ServerSettings{BaseURL: "http://localhost"}
	if s.Configured() {
		t.Error("settings without port must not be configured")
	}
	s.Port = "8080"
	if !s.Configured() {
		t.Error("expected settings to be configured")
	}
	if s.Origin() != "http://localhost:8080" {
		t.Errorf("unexpected origin %q", s.Origin())
	}
}
