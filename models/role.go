package models

import "time"

// Well-known role slugs seeded at bootstrap. RoleSlugAdmin doubles as the
// super-role marker checked by [Role.IsSuperRole].
const (
	RoleSlugAdmin      = "admin"
	RoleSlugManager    = "manager"
	RoleSlugTechnician = "technician"
	RoleSlugSupport    = "support"
	RoleSlugCustomer   = "customer"
)

// Role represents a named group of permissions assignable to users.
type Role struct {
	// RoleID is the unique identifier of the role.
	RoleID int64 `json:"id"`

	// Name is the unique human-readable name (e.g. "Administrator").
	Name string `json:"name"`

	// Slug is the unique stable machine identifier (e.g. "admin"),
	// used in sessions and route requirements instead of the display name.
	Slug string `json:"slug"`

	// Level is an informational authority indicator; higher means more
	// authority. No privilege is ever derived from it automatically.
	Level int `json:"level"`

	// IsActive reports whether the role may be assigned or matched.
	IsActive bool `json:"is_active"`

	// IsDefault marks the role assigned to new registrants when none is
	// specified. At most one role is default at any time; the invariant is
	// maintained by [SetAsDefault]'s unset-all-then-set-one transaction.
	IsDefault bool `json:"is_default"`

	// Permissions holds the role's granted, active permissions when the
	// role was loaded through the catalog. Nil on bare lookups.
	Permissions []Permission `json:"permissions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the Role model.
func (r Role) TableName() string {
	return "roles"
}

// IsSuperRole reports whether the role bypasses explicit permission checks.
// This is a deliberate, auditable special case for the "admin" slug, not a
// property derived from Level.
func (r Role) IsSuperRole() bool {
	return r.Slug == RoleSlugAdmin
}
