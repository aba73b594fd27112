package domain

import (
	"fmt"
	"strings"
)

// RoomKind selects the public or private room endpoints.
type RoomKind string

const (
	RoomPublic  RoomKind = "Public"
	RoomPrivate RoomKind = "Private"
)

// ParseRoomKind accepts "Public" or "Private", case-insensitively.
func ParseRoomKind(s string) (RoomKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return RoomPublic, nil
	case "private":
		return RoomPrivate, nil
	default:
		return "", fmt.Errorf("unknown room kind %q", s)
	}
}

// Path returns the management API path for rooms of this kind.
func (k RoomKind) Path() string {
	if k == RoomPrivate {
		return "/chat/room/private"
	}
	return "/chat/room/public"
}

// ChatRoom is a server-side chat room as returned by the room list endpoints.
// LocalID is assigned on every fetch and must not be used as a durable key.
type ChatRoom struct {
	LocalID      string        `json:"-"`
	Name         string        `json:"name"`
	CreateTime   string        `json:"create_time"`
	CreatorID    *string       `json:"creator_id"`
	URL          *string       `json:"url"`
	Participants []Participant `json:"participants"`
}

// ParticipantCount returns the number of participants, zero when absent.
func (r *ChatRoom) ParticipantCount() int {
	return len(r.Participants)
}

// Participant is a user currently joined to a chat room.
type Participant struct {
	ID         string `json:"id"`
	ScreenName string `json:"screen_name"`
}

// NewRoomRequest is the body of POST /chat/room/{public,private}.
type NewRoomRequest struct {
	Name string `json:"name"`
}
