// Package transport holds the auth request and response shapes.
// Tokens are minted by the external identity provider; the API only reports
// whether the caller presents a valid one.
package transport

import "github.com/google/uuid"

// Session describes the caller as seen by the API.
type Session struct {
	Authenticated bool
	UserID        uuid.UUID
	Roles         []string
}

// SessionResponse is returned by GET /auth/session.
type SessionResponse struct {
	Authenticated bool     `json:"authenticated"`
	UserID        string   `json:"userId,omitempty"`
	Roles         []string `json:"roles,omitempty"`
}

// ToSessionResponse renders a session; anonymous callers only get the flag.
func ToSessionResponse(s Session) SessionResponse {
	if !s.Authenticated {
		return SessionResponse{Authenticated: false}
	}
	return SessionResponse{
		Authenticated: true,
		UserID:        s.UserID.String(),
		Roles:         s.Roles,
	}
}
