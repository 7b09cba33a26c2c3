package service

import (
	"context"

	"github.com/MKhiriev/go-access-gate/internal/store"
	"github.com/MKhiriev/go-access-gate/models"
)

// AuthService handles registration, credential verification, and bearer
// token lifecycle.
type AuthService interface {
	// Register creates an account with the registration default role.
	Register(ctx context.Context, user models.User, password string) (models.User, error)

	// Login authenticates by username or email. Failed attempts count
	// toward the account lock; a successful login clears the counter.
	Login(ctx context.Context, identifier, password string) (models.User, error)

	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// CatalogService owns the role and permission catalog and answers every
// permission question in the system. Mutations that change what a role can
// do invalidate the in-process permission cache.
type CatalogService interface {
	// HasPermission decides whether the user may perform the operation
	// named by permissionSlug: super role, role grants, and the user's
	// additional permissions are all consulted.
	HasPermission(ctx context.Context, userID int64, permissionSlug string) (bool, error)

	CreateRole(ctx context.Context, role models.Role) (models.Role, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	GetRole(ctx context.Context, roleID int64) (models.Role, error)
	UpdateRole(ctx context.Context, role models.Role) error
	DeleteRole(ctx context.Context, roleID int64) error
	SetDefaultRole(ctx context.Context, roleID int64) error

	RolePermissions(ctx context.Context, roleID int64) ([]models.Permission, error)
	AssignPermissions(ctx context.Context, roleID int64, permissionIDs []int64) error

	CreatePermission(ctx context.Context, permission models.Permission) (models.Permission, error)
	ListPermissions(ctx context.Context) ([]models.Permission, error)
	DeletePermission(ctx context.Context, permissionID int64) error
}

// UserService covers user administration beyond self-service auth.
type UserService interface {
	GetUser(ctx context.Context, userID int64) (models.User, error)
	ListUsers(ctx context.Context, filter store.UserFilter) ([]models.User, error)
	UpdateUser(ctx context.Context, update models.UserUpdate) error
	DeleteUser(ctx context.Context, userID int64) error
	TouchActivity(ctx context.Context, userID int64)
}

// ResetService implements the password reset flow. Request never reveals
// whether the email belongs to an account.
type ResetService interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// ResetNotifier delivers a reset token to its owner. The production
// implementation would send email; the default logs the delivery so
// development setups work without a mail relay.
type ResetNotifier interface {
	SendResetToken(ctx context.Context, email, token string) error
}
