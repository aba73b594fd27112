// Package accounts administers user accounts on the remote server.
package accounts

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/ashureev/rasman/internal/domain"
	"github.com/ashureev/rasman/internal/rasclient"
)

const (
	usersPath    = "/user"
	passwordPath = "/user/password"

	// MsgUserAdded is reported after a successful AddUser.
	MsgUserAdded = "User added successfully."
)

// API is the subset of the management client used by this package.
type API interface {
	GetJSON(ctx context.Context, path string, out any) error
	PostJSON(ctx context.Context, path string, body any, want ...int) error
	PutJSON(ctx context.Context, path string, body any, want ...int) error
	DeleteJSON(ctx context.Context, path string, body any, want ...int) error
}

// Ensure the real client satisfies API.
var _ API = (*rasclient.Client)(nil)

// AddUserForm holds the fields of the add-user form.
type AddUserForm struct {
	ScreenName string
	Password   string
	IsICQ      bool
}

// Reset clears every field.
func (f *AddUserForm) Reset() {
	*f = AddUserForm{}
}

// ChangePasswordForm holds the fields of the change-password form.
type ChangePasswordForm struct {
	ScreenName      string
	NewPassword     string
	ConfirmPassword string
}

// Service lists and mutates user accounts. The last successful listing is
// cached and only replaced by another successful listing.
type Service struct {
	api    API
	logger *slog.Logger

	mu    sync.RWMutex
	users []domain.User
}

// NewService creates an accounts service.
func NewService(api API, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: api, logger: logger}
}

// Users returns a copy of the cached user list.
func (s *Service) Users() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.User(nil), s.users...)
}

// ListUsers fetches all users and replaces the cache on success.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := s.api.GetJSON(ctx, usersPath, &users); err != nil {
		s.logger.Warn("Failed to load users", "error", err)
		return s.Users(), rasclient.Fail("load users", err)
	}

	s.mu.Lock()
	s.users = users
	s.mu.Unlock()

	return append([]domain.User(nil), users...), nil
}

// AddUser creates an account. The form is reset only when the server
// confirms creation.
func (s *Service) AddUser(ctx context.Context, form *AddUserForm) (string, error) {
	if form.ScreenName == "" || form.Password == "" {
		return "", domain.Invalid("Screen Name and Password cannot be empty.")
	}

	req := domain.NewUserRequest{
		ScreenName: form.ScreenName,
		Password:   form.Password,
		IsICQ:      form.IsICQ,
	}
	if err := s.api.PostJSON(ctx, usersPath, req, http.StatusCreated); err != nil {
		s.logger.Warn("Failed to add user", "screen_name", form.ScreenName, "error", err)
		return "", rasclient.Fail("add user", err)
	}

	s.logger.Info("User added", "screen_name", form.ScreenName, "is_icq", form.IsICQ)
	form.Reset()
	return MsgUserAdded, nil
}

// DeleteUser removes an account and refreshes the user list.
func (s *Service) DeleteUser(ctx context.Context, screenName string) ([]domain.User, error) {
	if err := s.deleteOne(ctx, screenName); err != nil {
		return s.Users(), err
	}
	return s.ListUsers(ctx)
}

// DeleteAllUsers deletes every user in the cached listing, stopping at the
// first failure, then refreshes the list. It returns how many were deleted.
func (s *Service) DeleteAllUsers(ctx context.Context) (int, error) {
	deleted := 0
	for _, u := range s.Users() {
		if err := s.deleteOne(ctx, u.ScreenName); err != nil {
			if _, refreshErr := s.ListUsers(ctx); refreshErr != nil {
				s.logger.Debug("Refresh after partial delete failed", "error", refreshErr)
			}
			return deleted, err
		}
		deleted++
	}
	_, err := s.ListUsers(ctx)
	return deleted, err
}

func (s *Service) deleteOne(ctx context.Context, screenName string) error {
	if screenName == "" {
		return domain.Invalid("Screen Name cannot be empty.")
	}
	req := domain.DeleteUserRequest{ScreenName: screenName}
	if err := s.api.DeleteJSON(ctx, usersPath, req, http.StatusNoContent); err != nil {
		s.logger.Warn("Failed to delete user", "screen_name", screenName, "error", err)
		return rasclient.Fail("delete user", err)
	}
	s.logger.Info("User deleted", "screen_name", screenName)
	return nil
}

// ChangePassword sets a new password for form.ScreenName. A nil error means
// the form can be closed.
func (s *Service) ChangePassword(ctx context.Context, form *ChangePasswordForm) error {
	if form.ScreenName == "" {
		return domain.Invalid("Screen Name cannot be empty.")
	}
	if form.NewPassword == "" || form.NewPassword != form.ConfirmPassword {
		return domain.Invalid("Passwords must match and cannot be empty.")
	}

	req := domain.PasswordChangeRequest{ScreenName: form.ScreenName, Password: form.NewPassword}
	if err := s.api.PutJSON(ctx, passwordPath, req, http.StatusNoContent); err != nil {
		s.logger.Warn("Failed to change password", "screen_name", form.ScreenName, "error", err)
		return rasclient.Fail("change password", err)
	}

	s.logger.Info("Password changed", "screen_name", form.ScreenName)
	return nil
}
