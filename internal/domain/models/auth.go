package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the subset of access token claims the data room relies on.
// Supabase tokens and locally signed HS256 tokens share this shape.
type Claims struct {
	jwt.RegisteredClaims
	Email       string `json:"email"`
	Role        string `json:"role"` // "authenticated" or "anon"
	SessionID   string `json:"session_id,omitempty"`
	IsAnonymous bool   `json:"is_anonymous,omitempty"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *Claims) GetUserID() string {
	return c.Subject
}
