package rastest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/ashureev/rasman/internal/domain"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Body: string(body)})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status, ok := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()
		if ok {
			writeError(w, status, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func decode(r *http.Request, v any) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

func (s *Server) listUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	users := append([]domain.User{}, s.users...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req domain.NewUserRequest
	if !decode(r, &req) || req.ScreenName == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "malformed input")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findUserLocked(req.ScreenName) >= 0 {
		writeError(w, http.StatusConflict, "user already exists")
		return
	}
	s.addUserLocked(req.ScreenName, req.Password)
	s.icq[req.ScreenName] = req.IsICQ
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	var req domain.DeleteUserRequest
	if !decode(r, &req) {
		writeError(w, http.StatusBadRequest, "malformed input")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findUserLocked(req.ScreenName)
	if i < 0 {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	s.users = append(s.users[:i], s.users[i+1:]...)
	delete(s.passwords, req.ScreenName)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordChangeRequest
	if !decode(r, &req) || req.Password == "" {
		writeError(w, http.StatusBadRequest, "malformed input")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findUserLocked(req.ScreenName) < 0 {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	s.passwords[req.ScreenName] = req.Password
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sendInstantMessage(w http.ResponseWriter, r *http.Request) {
	var req domain.InstantMessageRequest
	if !decode(r, &req) || req.From == "" || req.To == "" || req.Text == "" {
		writeError(w, http.StatusBadRequest, "malformed input")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rejectTo[req.To] {
		writeError(w, http.StatusNotFound, "recipient is not online")
		return
	}
	s.messages = append(s.messages, req)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listRooms(kind domain.RoomKind) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		rooms := append([]domain.ChatRoom{}, s.public...)
		if kind == domain.RoomPrivate {
			rooms = append([]domain.ChatRoom{}, s.private...)
		}
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, rooms)
	}
}

func (s *Server) createRoom(kind domain.RoomKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.NewRoomRequest
		if !decode(r, &req) || req.Name == "" {
			writeError(w, http.StatusBadRequest, "malformed input")
			return
		}

		room := domain.ChatRoom{Name: req.Name, CreateTime: "2024-08-16T00:00:00Z"}
		s.mu.Lock()
		if kind == domain.RoomPrivate {
			s.private = append(s.private, room)
		} else {
			s.public = append(s.public, room)
		}
		s.mu.Unlock()
		writeJSON(w, http.StatusCreated, room)
	}
}

func (s *Server) listSessions(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	sessions := append([]domain.UserSession{}, s.sessions...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, domain.SessionList{Count: len(sessions), Sessions: sessions})
}
