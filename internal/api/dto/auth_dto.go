package dto

import "time"

// AgentLoginRequest payload for agent login.
type AgentLoginRequest struct {
	AgentID  string `json:"agent_id"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
