package models

import (
	"strings"
	"time"
)

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName is the public form of a user's name: first name plus last
// initial, as shown on leaderboards and discussions.
func (u User) DisplayName() string {
	parts := strings.Fields(strings.TrimSpace(u.Name))
	if len(parts) <= 1 {
		return u.Name
	}
	first := parts[0]
	last := []rune(parts[len(parts)-1])
	if len(last) == 0 {
		return first
	}
	return first + " " + string(last[0]) + "."
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
