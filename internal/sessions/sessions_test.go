package sessions

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/ashureev/rasman/internal/rasclient"
	"github.com/ashureev/rasman/internal/rastest"
)

func TestListActiveSessions(t *testing.T) {
	srv := rastest.New(t)
	srv.AddSession("alice")
	srv.AddSession("bob")
	m := NewMonitor(rasclient.New(srv.Settings()), nil)

	list, err := m.ListActiveSessions(context.Background())
	if err != nil {
		t.Fatalf("ListActiveSessions failed: %v", err)
	}
	if list.Count != 2 || len(list.Sessions) != 2 {
		t.Fatalf("unexpected envelope: %+v", list)
	}
	if list.Sessions[1].ScreenName != "bob" {
		t.Errorf("unexpected session: %+v", list.Sessions[1])
	}
}

func TestListActiveSessionsFailure(t *testing.T) {
	srv := rastest.New(t)
	srv.Fail(http.MethodGet, "/session", http.StatusInternalServerError)
	m := NewMonitor(rasclient.New(srv.Settings()), nil)

	_, err := m.ListActiveSessions(context.Background())
	if !errors.Is(err, rasclient.ErrUnexpectedStatus) {
		t.Fatalf("expected ErrUnexpectedStatus, got %v", err)
	}
	if got := rasclient.Describe(err); got != "Failed to load sessions: Server returned status code: 500" {
		t.Errorf("unexpected message %q", got)
	}
}
