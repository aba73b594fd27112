package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ashureev/rasman/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "nested", "rasman.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSettingsSingleton(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t)

	got, err := repo.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no settings on a fresh store, got %+v", got)
	}

	got, err = repo.EnsureSettings(ctx, domain.ServerSettings{})
	if err != nil {
		t.Fatalf("EnsureSettings failed: %v", err)
	}
	if got == nil || got.Configured() {
		t.Fatalf("expected empty settings row, got %+v", got)
	}

	if err := repo.SaveSettings(ctx, &domain.ServerSettings{BaseURL: "http://localhost", Port: "8080"}); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	// A second ensure must not clobber saved values.
	got, err = repo.EnsureSettings(ctx, domain.ServerSettings{BaseURL: "http://other", Port: "1"})
	if err != nil {
		t.Fatalf("EnsureSettings failed: %v", err)
	}
	if got.BaseURL != "http://localhost" || got.Port != "8080" {
		t.Errorf("expected saved settings to survive, got %+v", got)
	}
}

func TestSentMessageLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t)

	msg := domain.NewPendingMessage("alice", "bob", "hello")
	if err := repo.InsertSentMessage(ctx, msg); err != nil {
		t.Fatalf("InsertSentMessage failed: %v", err)
	}

	got, err := repo.GetSentMessage(ctx, msg.ID)
	if err != nil || got == nil {
		t.Fatalf("GetSentMessage failed: %v", err)
	}
	if got.Result != domain.ResultSending || got.State != domain.SendPending {
		t.Errorf("unexpected stored record: %+v", got)
	}

	if err := repo.ResolveSentMessage(ctx, msg.ID, domain.SendSucceeded, domain.ResultSent); err != nil {
		t.Fatalf("ResolveSentMessage failed: %v", err)
	}

	err = repo.ResolveSentMessage(ctx, msg.ID, domain.SendFailed, "Failed to send message: late")
	if !errors.Is(err, ErrMessageResolved) {
		t.Fatalf("expected ErrMessageResolved, got %v", err)
	}

	got, _ = repo.GetSentMessage(ctx, msg.ID)
	if got.Result != domain.ResultSent || got.State != domain.SendSucceeded {
		t.Errorf("terminal record was modified: %+v", got)
	}

	all, err := repo.ListSentMessages(ctx, 0)
	if err != nil {
		t.Fatalf("ListSentMessages failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one history entry, got %d", len(all))
	}
}

func TestResolveUnknownMessage(t *testing.T) {
	repo := newTestStore(t)
	err := repo.ResolveSentMessage(context.Background(), "missing", domain.SendFailed, "x")
	if !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
}

func TestListSentMessagesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t)

	for i := 0; i < 5; i++ {
		msg := domain.NewPendingMessage("alice", "bob", fmt.Sprintf("msg-%d", i))
		if err := repo.InsertSentMessage(ctx, msg); err != nil {
			t.Fatalf("InsertSentMessage failed: %v", err)
		}
	}

	all, err := repo.ListSentMessages(ctx, 0)
	if err != nil {
		t.Fatalf("ListSentMessages failed: %v", err)
	}
	for i, msg := range all {
		if want := fmt.Sprintf("msg-%d", i); msg.Message != want {
			t.Errorf("position %d: expected %q, got %q", i, want, msg.Message)
		}
	}

	recent, err := repo.ListSentMessages(ctx, 2)
	if err != nil {
		t.Fatalf("ListSentMessages failed: %v", err)
	}
	if len(recent) != 2 || recent[0].Message != "msg-3" || recent[1].Message != "msg-4" {
		t.Errorf("unexpected limited history: %+v", recent)
	}
}

func TestConcurrentResolveKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t)

	msgs := make([]*domain.SentMessage, 10)
	for i := range msgs {
		msgs[i] = domain.NewPendingMessage("alice", "bob", fmt.Sprintf("msg-%d", i))
		if err := repo.InsertSentMessage(ctx, msgs[i]); err != nil {
			t.Fatalf("InsertSentMessage failed: %v", err)
		}
	}

	var wg sync.WaitGroup
	for i, msg := range msgs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			if err := repo.ResolveSentMessage(ctx, id, domain.SendFailed, fmt.Sprintf("result-%d", i)); err != nil {
				t.Errorf("ResolveSentMessage(%d) failed: %v", i, err)
			}
		}(i, msg.ID)
	}
	wg.Wait()

	all, err := repo.ListSentMessages(ctx, 0)
	if err != nil {
		t.Fatalf("ListSentMessages failed: %v", err)
	}
	for i, msg := range all {
		if want := fmt.Sprintf("result-%d", i); msg.Result != want {
			t.Errorf("record %d resolved with %q, want %q", i, msg.Result, want)
		}
	}
}
