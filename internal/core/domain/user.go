package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrDuplicateUser = errors.New("username or email already taken")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrInvalidInput = errors.New("invalid input")

// User is one registered account. Username is fixed at registration; email,
// full name and bio are editable by the owner. Emails are stored lowercase.
type User struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NormalizeEmail trims surrounding whitespace and lowercases the address so
// that uniqueness checks and logins are case-insensitive on the email side.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername trims surrounding whitespace only; usernames stay
// case-sensitive.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}
