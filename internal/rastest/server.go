// Package rastest provides an in-memory fake of the chat server's management
// API for tests.
package rastest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ashureev/rasman/internal/domain"
	"github.com/go-chi/chi/v5"
)

// Request is a call observed by the fake server.
type Request struct {
	Method string
	Path   string
	Body   string
}

// Server is a fake management API backed by in-memory state.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	users      []domain.User
	passwords  map[string]string
	icq        map[string]bool
	public     []domain.ChatRoom
	private    []domain.ChatRoom
	sessions   []domain.UserSession
	messages   []domain.InstantMessageRequest
	rejectTo   map[string]bool
	failures   map[string]int
	requests   []Request
	nextUserID int
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		passwords: make(map[string]string),
		icq:       make(map[string]bool),
		rejectTo:  make(map[string]bool),
		failures:  make(map[string]int),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(s.injectFailures)

	r.Get("/user", s.listUsers)
	r.Post("/user", s.createUser)
	r.Delete("/user", s.deleteUser)
	r.Put("/user/password", s.changePassword)
	r.Post("/instant-message", s.sendInstantMessage)
	r.Get("/chat/room/public", s.listRooms(domain.RoomPublic))
	r.Get("/chat/room/private", s.listRooms(domain.RoomPrivate))
	r.Post("/chat/room/public", s.createRoom(domain.RoomPublic))
	r.Post("/chat/room/private", s.createRoom(domain.RoomPrivate))
	r.Get("/session", s.listSessions)
	return r
}

// Settings returns connection settings pointing at the fake server.
func (s *Server) Settings() domain.ServerSettings {
	i := strings.LastIndex(s.URL, ":")
	return domain.ServerSettings{BaseURL: s.URL[:i], Port: s.URL[i+1:]}
}

// Fail makes every subsequent method+path request answer with status.
// A status of 0 removes the override.
func (s *Server) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	if status == 0 {
		delete(s.failures, key)
		return
	}
	s.failures[key] = status
}

// RejectRecipient makes instant messages to screenName fail with 404.
func (s *Server) RejectRecipient(screenName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectTo[screenName] = true
}

// AddUser seeds a user account.
func (s *Server) AddUser(screenName, password string) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(screenName, password)
}

// AddRoom seeds a chat room.
func (s *Server) AddRoom(kind domain.RoomKind, room domain.ChatRoom) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == domain.RoomPrivate {
		s.private = append(s.private, room)
		return
	}
	s.public = append(s.public, room)
}

// AddSession seeds an active session.
func (s *Server) AddSession(screenName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, domain.UserSession{
		ID:         fmt.Sprintf("sess-%d", len(s.sessions)+1),
		ScreenName: screenName,
	})
}

// Password returns the stored password for screenName.
func (s *Server) Password(screenName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passwords[screenName]
}

// IsICQ reports whether screenName was created as an ICQ account.
func (s *Server) IsICQ(screenName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.icq[screenName]
}

// Messages returns the instant messages accepted so far.
func (s *Server) Messages() []domain.InstantMessageRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.InstantMessageRequest(nil), s.messages...)
}

// Requests returns every request observed so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// CountRequests returns the number of observed requests for method and path.
func (s *Server) CountRequests(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) addUserLocked(screenName, password string) domain.User {
	s.nextUserID++
	u := domain.User{ID: fmt.Sprintf("%d", s.nextUserID), ScreenName: screenName}
	s.users = append(s.users, u)
	s.passwords[screenName] = password
	return u
}

func (s *Server) findUserLocked(screenName string) int {
	for i, u := range s.users {
		if u.ScreenName == screenName {
			return i
		}
	}
	return -1
}
