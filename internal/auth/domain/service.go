package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrSessionNotFound    = errors.New("session_not_found")
	ErrSessionExpired     = errors.New("session_expired")
)

// LoginRequest carries credentials from the login form.
type LoginRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	UserAgent string `json:"-"`
	IPAddress string `json:"-"`
}

// LoginResult is returned on successful authentication. Token is the raw
// session token handed to the cookie layer, never persisted.
type LoginResult struct {
	Token   string
	Session *Session
	User    *User
}

// Service authenticates users and manages their sessions.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	ResolveSession(ctx context.Context, token string) (*User, *Session, error)
	Logout(ctx context.Context, token string) error
}
