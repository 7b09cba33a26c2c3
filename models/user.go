package models

import "time"

// User represents an account entity used for authentication and authorization.
// It contains identity attributes, credential data, and lockout state.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// UserID is the internal unique identifier of the user.
	// It is assigned by the database and immutable afterwards.
	UserID int64 `json:"id"`

	// Username is the unique login identifier, matched case-sensitively.
	Username string `json:"username"`

	// Email is the unique contact address, normalized to lower case at the
	// persistence boundary.
	Email string `json:"email"`

	// Name is the display name of the user.
	// It is non-sensitive and may be shown in UI.
	Name string `json:"name"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This value MUST be a derived value, never plaintext, and is never
	// serialized to JSON.
	PasswordHash string `json:"-"`

	// RoleID references the user's single primary role.
	RoleID int64 `json:"role_id"`

	// RoleSlug is the resolved machine identifier of the user's role
	// (e.g. "admin", "technician"). Populated by joined lookups; not a
	// column on the users table.
	RoleSlug string `json:"role_slug"`

	// AdditionalPermissions is an optional set of permission slugs granted
	// directly to this user on top of the role's grants (additive override).
	AdditionalPermissions []string `json:"additional_permissions,omitempty"`

	// IsActive reports whether the account may authenticate.
	IsActive bool `json:"is_active"`

	// LoginAttempts counts consecutive failed logins since the last success.
	LoginAttempts int `json:"-"`

	// LockedUntil is set when failed logins escalated to an account lock.
	// A zero time means the account is not locked.
	LockedUntil *time.Time `json:"-"`

	// LastLogin is the timestamp of the most recent successful login.
	LastLogin *time.Time `json:"last_login,omitempty"`

	// LastActivity is a best-effort timestamp touched on authenticated
	// requests. Failures updating it never block a request.
	LastActivity *time.Time `json:"last_activity,omitempty"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at"`

	// DeletedAt marks a soft-deleted (tombstoned) account. Soft-deleted
	// users are excluded from all lookups.
	DeletedAt *time.Time `json:"-"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// IsLocked reports whether the account is locked out at the given instant.
func (u User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// HasDirectPermission reports whether slug appears in the user's
// AdditionalPermissions set.
func (u User) HasDirectPermission(slug string) bool {
	for _, p := range u.AdditionalPermissions {
		if p == slug {
			return true
		}
	}
	return false
}

// UserUpdate describes a partial update of a user record. Nil fields are
// left untouched; the persistence layer builds the UPDATE statement from
// the populated fields only.
type UserUpdate struct {
	UserID int64

	Username              *string
	Email                 *string
	Name                  *string
	PasswordHash          *string
	RoleID                *int64
	AdditionalPermissions *[]string
	IsActive              *bool
}

// Empty reports whether the update carries no field changes at all.
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.Name == nil &&
		u.PasswordHash == nil && u.RoleID == nil &&
		u.AdditionalPermissions == nil && u.IsActive == nil
}
