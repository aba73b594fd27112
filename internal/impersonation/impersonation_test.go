package impersonation

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ashureev/rasman/internal/domain"
	"github.com/ashureev/rasman/internal/rasclient"
	"github.com/ashureev/rasman/internal/rastest"
	"github.com/ashureev/rasman/internal/store"
)

func newTestLog(t *testing.T) (*Log, *rastest.Server, store.Repository) {
	t.Helper()
	srv := rastest.New(t)
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "rasman.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return NewLog(rasclient.New(srv.Settings()), repo, nil), srv, repo
}

func TestSendValidationHasNoSideEffects(t *testing.T) {
	log, srv, repo := newTestLog(t)

	form := &MessageForm{From: "alice", To: "", Text: "hi"}
	_, err := log.Send(context.Background(), form)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(srv.Requests()) != 0 {
		t.Error("expected no requests")
	}
	msgs, _ := repo.ListSentMessages(context.Background(), 0)
	if len(msgs) != 0 {
		t.Errorf("expected no history, got %d entries", len(msgs))
	}
}

func TestSendSuccess(t *testing.T) {
	log, srv, _ := newTestLog(t)
	form := &MessageForm{From: "alice", To: "bob", Text: "hello"}

	msg, err := log.Send(context.Background(), form)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if msg.State != domain.SendSucceeded || msg.Result != domain.ResultSent {
		t.Errorf("unexpected record: %+v", msg)
	}
	if *form != (MessageForm{}) {
		t.Errorf("expected form reset, got %+v", form)
	}

	got := srv.Messages()
	if len(got) != 1 || got[0] != (domain.InstantMessageRequest{From: "alice", To: "bob", Text: "hello"}) {
		t.Errorf("unexpected messages at server: %+v", got)
	}

	entries, err := log.Entries(context.Background(), 0)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != msg.ID || entries[0].Result != domain.ResultSent {
		t.Errorf("unexpected history: %+v", entries)
	}
}

func TestSendFailureMarksRecord(t *testing.T) {
	log, srv, _ := newTestLog(t)
	srv.Fail(http.MethodPost, "/instant-message", http.StatusBadGateway)
	form := &MessageForm{From: "alice", To: "bob", Text: "hello"}

	msg, err := log.Send(context.Background(), form)
	if !errors.Is(err, rasclient.ErrUnexpectedStatus) {
		t.Fatalf("expected ErrUnexpectedStatus, got %v", err)
	}
	if msg.State != domain.SendFailed {
		t.Errorf("expected failed state, got %q", msg.State)
	}
	if msg.Result != "Failed to send message: Server returned status code: 502" {
		t.Errorf("unexpected result %q", msg.Result)
	}
	if form.From != "alice" || form.To != "bob" || form.Text != "hello" {
		t.Errorf("form changed on failure: %+v", form)
	}

	entries, _ := log.Entries(context.Background(), 0)
	if len(entries) != 1 || entries[0].Result != msg.Result {
		t.Errorf("expected one failed entry, got %+v", entries)
	}
}

func TestSendTransportFailureNeverStaysPending(t *testing.T) {
	srv := rastest.New(t)
	settings := srv.Settings()
	srv.Close()

	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "rasman.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	defer func() { _ = repo.Close() }()
	log := NewLog(rasclient.New(settings), repo, nil)

	msg, err := log.Send(context.Background(), &MessageForm{From: "a", To: "b", Text: "c"})
	if !errors.Is(err, rasclient.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}

	entries, _ := log.Entries(context.Background(), 0)
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].Result == domain.ResultSending || entries[0].State != domain.SendFailed {
		t.Errorf("record left unresolved: %+v", entries[0])
	}
	if entries[0].ID != msg.ID {
		t.Errorf("resolved a different record")
	}
}

func TestConcurrentSendsResolveIndependently(t *testing.T) {
	log, srv, _ := newTestLog(t)
	srv.RejectRecipient("ghost")

	forms := []*MessageForm{
		{From: "alice", To: "bob", Text: "one"},
		{From: "alice", To: "ghost", Text: "two"},
	}
	results := make([]*domain.SentMessage, len(forms))

	var wg sync.WaitGroup
	for i, form := range forms {
		wg.Add(1)
		go func(i int, form *MessageForm) {
			defer wg.Done()
			msg, _ := log.Send(context.Background(), form)
			results[i] = msg
		}(i, form)
	}
	wg.Wait()

	if results[0].ID == results[1].ID {
		t.Fatal("expected distinct records")
	}

	entries, err := log.Entries(context.Background(), 0)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected two entries, got %d", len(entries))
	}
	for _, e := range entries {
		switch e.Message {
		case "one":
			if e.State != domain.SendSucceeded {
				t.Errorf("message to bob should succeed: %+v", e)
			}
		case "two":
			if e.State != domain.SendFailed {
				t.Errorf("message to ghost should fail: %+v", e)
			}
		default:
			t.Errorf("unexpected entry %+v", e)
		}
	}
}
