// Package chatrooms browses and creates chat rooms on the remote server.
package chatrooms

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ashureev/rasman/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// API is the subset of the management client used by this package.
type API interface {
	GetJSON(ctx context.Context, path string, out any) error
	PostJSON(ctx context.Context, path string, body any, want ...int) error
}

// Browser holds the last fetched public and private room lists. List failures
// are logged and leave the previous slice in place.
type Browser struct {
	api    API
	logger *slog.Logger

	mu      sync.RWMutex
	public  []domain.ChatRoom
	private []domain.ChatRoom
}

// NewBrowser creates a room browser.
func NewBrowser(api API, logger *slog.Logger) *Browser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Browser{api: api, logger: logger}
}

// PublicRooms returns a copy of the last public room listing.
func (b *Browser) PublicRooms() []domain.ChatRoom {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]domain.ChatRoom(nil), b.public...)
}

// PrivateRooms returns a copy of the last private room listing.
func (b *Browser) PrivateRooms() []domain.ChatRoom {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]domain.ChatRoom(nil), b.private...)
}

// ListPublicRooms fetches the public rooms.
func (b *Browser) ListPublicRooms(ctx context.Context) []domain.ChatRoom {
	return b.list(ctx, domain.RoomPublic)
}

// ListPrivateRooms fetches the private rooms.
func (b *Browser) ListPrivateRooms(ctx context.Context) []domain.ChatRoom {
	return b.list(ctx, domain.RoomPrivate)
}

func (b *Browser) list(ctx context.Context, kind domain.RoomKind) []domain.ChatRoom {
	var rooms []domain.ChatRoom
	if err := b.api.GetJSON(ctx, kind.Path(), &rooms); err != nil {
		b.logger.Warn("Failed to fetch chat rooms", "kind", kind, "error", err)
		if kind == domain.RoomPrivate {
			return b.PrivateRooms()
		}
		return b.PublicRooms()
	}

	for i := range rooms {
		rooms[i].LocalID = uuid.NewString()
	}

	b.mu.Lock()
	if kind == domain.RoomPrivate {
		b.private = rooms
	} else {
		b.public = rooms
	}
	b.mu.Unlock()

	b.logger.Debug("Fetched chat rooms", "kind", kind, "count", len(rooms))
	return append([]domain.ChatRoom(nil), rooms...)
}

// Refresh fetches both listings concurrently.
func (b *Browser) Refresh(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error {
		b.ListPublicRooms(ctx)
		return nil
	})
	g.Go(func() error {
		b.ListPrivateRooms(ctx)
		return nil
	})
	_ = g.Wait()
}

// CreateRoom posts a new room of the given kind and refreshes both listings
// whatever the outcome. The response status is not checked.
func (b *Browser) CreateRoom(ctx context.Context, name string, kind domain.RoomKind) error {
	if name == "" {
		return domain.Invalid("Chat room name cannot be empty.")
	}
	if kind != domain.RoomPublic && kind != domain.RoomPrivate {
		return domain.Invalid("Chat room type must be Public or Private.")
	}

	if err := b.api.PostJSON(ctx, kind.Path(), domain.NewRoomRequest{Name: name}); err != nil {
		b.logger.Warn("Error creating chat room", "name", name, "kind", kind, "error", err)
	} else {
		b.logger.Info("Chat room created", "name", name, "kind", kind)
	}

	b.Refresh(ctx)
	return nil
}

// FindRoom looks a room up by name in the last listing of the given kind.
func (b *Browser) FindRoom(name string, kind domain.RoomKind) (domain.ChatRoom, bool) {
	rooms := b.PublicRooms()
	if kind == domain.RoomPrivate {
		rooms = b.PrivateRooms()
	}
	for _, r := range rooms {
		if r.Name == name {
			return r, true
		}
	}
	return domain.ChatRoom{}, false
}
