package model

import "time"

// User represents a user in the database.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	PasswordSalt string
	CreatedAt    time.Time
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents user data safe for API responses (no credential fields).
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthResponse is the data payload of register, login and me.
type AuthResponse struct {
	User UserResponse `json:"user"`
}

// ClientMeta is audit-only request metadata stored alongside a session.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}
