// Package domain contains core domain types for the rasman client.
package domain

// User is an account on the remote server.
type User struct {
	ID         string `json:"id"`
	ScreenName string `json:"screen_name"`
}

// NewUserRequest is the body of POST /user.
type NewUserRequest struct {
	ScreenName string `json:"screen_name"`
	Password   string `json:"password"`
	IsICQ      bool   `json:"is_icq"`
}

// DeleteUserRequest is the body of DELETE /user.
type DeleteUserRequest struct {
	ScreenName string `json:"screen_name"`
}

// PasswordChangeRequest is the body of PUT /user/password.
type PasswordChangeRequest struct {
	ScreenName string `json:"screen_name"`
	Password   string `json:"password"`
}
