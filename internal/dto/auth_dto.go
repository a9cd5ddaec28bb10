package dto

import (
	"time"

	"sheetpos/internal/session"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=150"`
	Password string `json:"password" validate:"required,min=4"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SessionResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	DisplayName string    `json:"display_name"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// NewSessionResponse maps a session to its API shape.
func NewSessionResponse(s session.Session) SessionResponse {
	return SessionResponse{
		ID:          s.ID,
		Username:    s.Username,
		Role:        s.Role,
		DisplayName: s.DisplayName,
		ExpiresAt:   s.ExpiresAt,
	}
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"` // seconds
	Session     SessionResponse `json:"session"`
}
