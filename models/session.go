package models

import "time"

// Session is the ephemeral authenticated-identity blob held in the session
// store, never in the relational database. A session is valid only while it
// carries both a non-zero user id and a known role slug; anything partial is
// destroyed rather than repaired.
type Session struct {
	// SessionID is the opaque identifier under which the blob is stored.
	// It travels to the client in the session cookie.
	SessionID string `json:"-"`

	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`

	// RoleSlug is the role identifier resolved at login time. Role-scoped
	// routing and permission resolution key off this value.
	RoleSlug string `json:"role_slug"`

	// LoggedIn is the explicit authenticated flag. A stored session with
	// LoggedIn=false is treated as corrupt.
	LoggedIn bool `json:"is_logged_in"`

	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// Valid reports whether the session carries every field required to admit a
// request: a user id, a role slug, and the logged-in flag.
func (s Session) Valid() bool {
	return s.UserID > 0 && s.RoleSlug != "" && s.LoggedIn
}
