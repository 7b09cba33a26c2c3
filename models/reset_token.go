package models

import "time"

// PasswordResetToken is the persisted half of a password-reset credential.
// Only the SHA-256 hash of the random token is stored; the plaintext is
// handed to the notification collaborator exactly once and discarded.
//
// At most one active (unused, unexpired) token exists per email: creating a
// new token deletes all prior tokens for that address in the same
// transaction. Consumption is single-use and atomic — marking used_at and
// reading the row happen in one statement.
type PasswordResetToken struct {
	TokenID   int64      `json:"-"`
	Email     string     `json:"email"`
	TokenHash string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"-"`
	CreatedAt time.Time  `json:"-"`
}

// TableName returns the name of the database table
// associated with the PasswordResetToken model.
func (t PasswordResetToken) TableName() string {
	return "password_resets"
}

// Usable reports whether the token may still be consumed at the given
// instant: never used and not yet expired.
func (t PasswordResetToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && t.ExpiresAt.After(now)
}
