// Package model defines domain entities for the application.
package model

import "time"

// MaxUsernameLength matches the users.username column width.
const MaxUsernameLength = 80

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never serialize
	CreatedAt    time.Time `json:"created_at"`
}

// Principal identifies the caller of an authenticated request.
// It is injected into the request context by the auth middleware.
type Principal struct {
	UserID string
}
