package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-access-gate/models"
)

// UserRepository is the persistence contract of the credential store.
// Soft-deleted users are invisible to every lookup.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByIdentifier(ctx context.Context, identifier string) (models.User, error)
	FindUserByID(ctx context.Context, userID int64) (models.User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]models.User, error)
	UpdateUser(ctx context.Context, update models.UserUpdate) error
	SoftDeleteUser(ctx context.Context, userID int64) error

	// UpdateLastActivity is best-effort: callers log but never propagate
	// its errors.
	UpdateLastActivity(ctx context.Context, userID int64) error

	RecordLoginSuccess(ctx context.Context, userID int64) error
	RecordLoginFailure(ctx context.Context, userID int64, maxAttempts int, lockFor time.Duration) error
}

// UserFilter narrows ListUsers results. Zero values mean "no constraint".
type UserFilter struct {
	RoleID   int64
	IsActive *bool
	Search   string
	Limit    uint64
	Offset   uint64
}

// RoleRepository is the persistence contract for roles and their grants.
type RoleRepository interface {
	CreateRole(ctx context.Context, role models.Role) (models.Role, error)
	FindRoleByID(ctx context.Context, roleID int64) (models.Role, error)
	FindRoleBySlug(ctx context.Context, slug string) (models.Role, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	UpdateRole(ctx context.Context, role models.Role) error
	DeleteRole(ctx context.Context, roleID int64) error
	FindDefaultRole(ctx context.Context) (models.Role, error)

	// SetAsDefault unsets every role's default flag and sets roleID's, in
	// one transaction. Readers never observe more than one default role.
	SetAsDefault(ctx context.Context, roleID int64) error

	// GetRolePermissions returns the role's granted, active permissions.
	GetRolePermissions(ctx context.Context, roleID int64) ([]models.Permission, error)

	// AssignPermissions atomically replaces the role's grant set:
	// delete-all-then-batch-insert inside a single transaction.
	AssignPermissions(ctx context.Context, roleID int64, permissionIDs []int64) error
}

// PermissionRepository is the persistence contract for the permission catalog.
type PermissionRepository interface {
	CreatePermission(ctx context.Context, permission models.Permission) (models.Permission, error)
	FindPermissionByID(ctx context.Context, permissionID int64) (models.Permission, error)
	ListPermissions(ctx context.Context) ([]models.Permission, error)
	DeletePermission(ctx context.Context, permissionID int64) error
}

// ResetTokenRepository is the persistence contract for password-reset tokens.
// Only token hashes are stored; the plaintext never touches the database.
type ResetTokenRepository interface {
	// CreateResetToken deletes all prior tokens for the email and inserts
	// the new hash in the same transaction, keeping at most one active
	// token per address.
	CreateResetToken(ctx context.Context, email, tokenHash string, expiresAt time.Time) error

	// ConsumeResetToken atomically marks the token used and returns the
	// owning email. A token that is already used, expired, or unknown
	// yields ErrResetTokenInvalid.
	ConsumeResetToken(ctx context.Context, tokenHash string) (string, error)
}

// ErrorClassificator decides whether a failed database operation is worth
// retrying. See [PostgresErrorClassifier].
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
