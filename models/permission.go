package models

import (
	"fmt"
	"strings"
	"time"
)

// Permission actions form a fixed enumeration; slugs referencing any other
// action are rejected at validation time and by a database CHECK constraint.
const (
	ActionCreate  = "create"
	ActionRead    = "read"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionManage  = "manage"
	ActionView    = "view"
	ActionEdit    = "edit"
	ActionAssign  = "assign"
	ActionApprove = "approve"
	ActionExport  = "export"
)

// ValidActions is the closed set of permission actions.
var ValidActions = map[string]bool{
	ActionCreate:  true,
	ActionRead:    true,
	ActionUpdate:  true,
	ActionDelete:  true,
	ActionManage:  true,
	ActionView:    true,
	ActionEdit:    true,
	ActionAssign:  true,
	ActionApprove: true,
	ActionExport:  true,
}

// Permission represents a single grantable capability identified by a dotted
// slug of the form `module.action[.resource]` (e.g. "orders.manage.assigned").
type Permission struct {
	// PermissionID is the unique identifier of the permission.
	PermissionID int64 `json:"id"`

	// Name is the unique human-readable name.
	Name string `json:"name"`

	// Slug is the unique dotted identifier, always equal to
	// Module + "." + Action [+ "." + Resource].
	Slug string `json:"slug"`

	// Module is the owning feature area (e.g. "orders", "users").
	Module string `json:"module"`

	// Action is one of the fixed action enumeration values.
	Action string `json:"action"`

	// Resource optionally scopes the action (own/all/assigned/department).
	Resource string `json:"resource,omitempty"`

	// IsActive reports whether the permission participates in resolution.
	// Inactive permissions are filtered out of role grant lookups.
	IsActive bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the Permission model.
func (p Permission) TableName() string {
	return "permissions"
}

// BuildSlug assembles the canonical dotted slug from the permission's parts.
func (p Permission) BuildSlug() string {
	if p.Resource != "" {
		return p.Module + "." + p.Action + "." + p.Resource
	}
	return p.Module + "." + p.Action
}

// Validate checks the structural invariants of the permission: non-empty
// module, an action from the fixed enumeration, and a slug consistent with
// its parts.
func (p Permission) Validate() error {
	if strings.TrimSpace(p.Module) == "" {
		return fmt.Errorf("permission %q: empty module", p.Slug)
	}
	if !ValidActions[p.Action] {
		return fmt.Errorf("permission %q: unknown action %q", p.Slug, p.Action)
	}
	if p.Slug != "" && p.Slug != p.BuildSlug() {
		return fmt.Errorf("permission slug %q does not match module/action/resource", p.Slug)
	}
	return nil
}

// RolePermission is the grant edge between a role and a permission.
// (RoleID, PermissionID) appears at most once.
type RolePermission struct {
	RoleID       int64 `json:"role_id"`
	PermissionID int64 `json:"permission_id"`

	// Granted is true for an explicit allow. The schema also admits false as
	// an explicit deny, but resolution currently treats deny rows as inert:
	// only granted=true rows are loaded. Kept in the model so a deny rule
	// can be introduced without a schema change.
	Granted bool `json:"granted"`
}

// TableName returns the name of the database table
// associated with the RolePermission model.
func (rp RolePermission) TableName() string {
	return "role_permissions"
}
