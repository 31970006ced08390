package models

// Session holds the authenticated identity, persisted so it survives
// process restarts. A zero UserID means signed out.
type Session struct {
	// UserID is the identity provider's user identifier.
	UserID string `json:"userId"`

	// Email is the address the user signed in with.
	Email string `json:"email"`

	// IDToken is the bearer token attached to remote-store requests.
	// It is never exposed via JSON.
	IDToken string `json:"-"`
}

// Authenticated reports whether the session identifies a signed-in user.
func (s Session) Authenticated() bool {
	return s.UserID != ""
}

// AuthResult is the structured outcome of a sign-up or sign-in attempt.
// Authentication errors are classified and rendered as a human-readable
// message rather than propagated as opaque failures.
type AuthResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
