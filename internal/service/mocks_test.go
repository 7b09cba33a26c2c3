package service

import (
	"context"
	"errors"
	"time"

	"github.com/MKhiriev/go-access-gate/internal/store"
	"github.com/MKhiriev/go-access-gate/models"
)

var errStorage = errors.New("storage error")

// ─────────────────────────────────────────────
// Mock: store.UserRepository
// ─────────────────────────────────────────────

type mockUserRepository struct {
	createUserFn           func(ctx context.Context, user models.User) (models.User, error)
	findUserByIdentifierFn func(ctx context.Context, identifier string) (models.User, error)
	findUserByIDFn         func(ctx context.Context, userID int64) (models.User, error)
	listUsersFn            func(ctx context.Context, filter store.UserFilter) ([]models.User, error)
	updateUserFn           func(ctx context.Context, update models.UserUpdate) error
	softDeleteUserFn       func(ctx context.Context, userID int64) error
	updateLastActivityFn   func(ctx context.Context, userID int64) error
	recordLoginSuccessFn   func(ctx context.Context, userID int64) error
	recordLoginFailureFn   func(ctx context.Context, userID int64, maxAttempts int, lockFor time.Duration) error
}

func (m *mockUserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(ctx, user)
	}
	return user, nil
}

func (m *mockUserRepository) FindUserByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	if m.findUserByIdentifierFn != nil {
		return m.findUserByIdentifierFn(ctx, identifier)
	}
	return models.User{}, store.ErrUserNotFound
}

func (m *mockUserRepository) FindUserByID(ctx context.Context, userID int64) (models.User, error) {
	if m.findUserByIDFn != nil {
		return m.findUserByIDFn(ctx, userID)
	}
	return models.User{}, store.ErrUserNotFound
}

func (m *mockUserRepository) ListUsers(ctx context.Context, filter store.UserFilter) ([]models.User, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockUserRepository) UpdateUser(ctx context.Context, update models.UserUpdate) error {
	if m.updateUserFn != nil {
		return m.updateUserFn(ctx, update)
	}
	return nil
}

func (m *mockUserRepository) SoftDeleteUser(ctx context.Context, userID int64) error {
	if m.softDeleteUserFn != nil {
		return m.softDeleteUserFn(ctx, userID)
	}
	return nil
}

func (m *mockUserRepository) UpdateLastActivity(ctx context.Context, userID int64) error {
	if m.updateLastActivityFn != nil {
		return m.updateLastActivityFn(ctx, userID)
	}
	return nil
}

func (m *mockUserRepository) RecordLoginSuccess(ctx context.Context, userID int64) error {
	if m.recordLoginSuccessFn != nil {
		return m.recordLoginSuccessFn(ctx, userID)
	}
	return nil
}

func (m *mockUserRepository) RecordLoginFailure(ctx context.Context, userID int64, maxAttempts int, lockFor time.Duration) error {
	if m.recordLoginFailureFn != nil {
		return m.recordLoginFailureFn(ctx, userID, maxAttempts, lockFor)
	}
	return nil
}

// ─────────────────────────────────────────────
// Mock: store.RoleRepository
// ─────────────────────────────────────────────

type mockRoleRepository struct {
	createRoleFn         func(ctx context.Context, role models.Role) (models.Role, error)
	findRoleByIDFn       func(ctx context.Context, roleID int64) (models.Role, error)
	findRoleBySlugFn     func(ctx context.Context, slug string) (models.Role, error)
	listRolesFn          func(ctx context.Context) ([]models.Role, error)
	updateRoleFn         func(ctx context.Context, role models.Role) error
	deleteRoleFn         func(ctx context.Context, roleID int64) error
	findDefaultRoleFn    func(ctx context.Context) (models.Role, error)
	setAsDefaultFn       func(ctx context.Context, roleID int64) error
	getRolePermissionsFn func(ctx context.Context, roleID int64) ([]models.Permission, error)
	assignPermissionsFn  func(ctx context.Context, roleID int64, permissionIDs []int64) error
}

func (m *mockRoleRepository) CreateRole(ctx context.Context, role models.Role) (models.Role, error) {
	if m.createRoleFn != nil {
		return m.createRoleFn(ctx, role)
	}
	return role, nil
}

func (m *mockRoleRepository) FindRoleByID(ctx context.Context, roleID int64) (models.Role, error) {
	if m.findRoleByIDFn != nil {
		return m.findRoleByIDFn(ctx, roleID)
	}
	return models.Role{}, store.ErrRoleNotFound
}

func (m *mockRoleRepository) FindRoleBySlug(ctx context.Context, slug string) (models.Role, error) {
	if m.findRoleBySlugFn != nil {
		return m.findRoleBySlugFn(ctx, slug)
	}
	return models.Role{}, store.ErrRoleNotFound
}

func (m *mockRoleRepository) ListRoles(ctx context.Context) ([]models.Role, error) {
	if m.listRolesFn != nil {
		return m.listRolesFn(ctx)
	}
	return nil, nil
}

func (m *mockRoleRepository) UpdateRole(ctx context.Context, role models.Role) error {
	if m.updateRoleFn != nil {
		return m.updateRoleFn(ctx, role)
	}
	return nil
}

func (m *mockRoleRepository) DeleteRole(ctx context.Context, roleID int64) error {
	if m.deleteRoleFn != nil {
		return m.deleteRoleFn(ctx, roleID)
	}
	return nil
}

func (m *mockRoleRepository) FindDefaultRole(ctx context.Context) (models.Role, error) {
	if m.findDefaultRoleFn != nil {
		return m.findDefaultRoleFn(ctx)
	}
	return models.Role{}, store.ErrNoDefaultRole
}

func (m *mockRoleRepository) SetAsDefault(ctx context.Context, roleID int64) error {
	if m.setAsDefaultFn != nil {
		return m.setAsDefaultFn(ctx, roleID)
	}
	return nil
}

func (m *mockRoleRepository) GetRolePermissions(ctx context.Context, roleID int64) ([]models.Permission, error) {
	if m.getRolePermissionsFn != nil {
		return m.getRolePermissionsFn(ctx, roleID)
	}
	return nil, nil
}

func (m *mockRoleRepository) AssignPermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	if m.assignPermissionsFn != nil {
		return m.assignPermissionsFn(ctx, roleID, permissionIDs)
	}
	return nil
}

// ─────────────────────────────────────────────
// Mock: store.PermissionRepository
// ─────────────────────────────────────────────

type mockPermissionRepository struct {
	createPermissionFn   func(ctx context.Context, permission models.Permission) (models.Permission, error)
	findPermissionByIDFn func(ctx context.Context, permissionID int64) (models.Permission, error)
	listPermissionsFn    func(ctx context.Context) ([]models.Permission, error)
	deletePermissionFn   func(ctx context.Context, permissionID int64) error
}

func (m *mockPermissionRepository) CreatePermission(ctx context.Context, permission models.Permission) (models.Permission, error) {
	if m.createPermissionFn != nil {
		return m.createPermissionFn(ctx, permission)
	}
	return permission, nil
}

func (m *mockPermissionRepository) FindPermissionByID(ctx context.Context, permissionID int64) (models.Permission, error) {
	if m.findPermissionByIDFn != nil {
		return m.findPermissionByIDFn(ctx, permissionID)
	}
	return models.Permission{}, store.ErrPermissionNotFound
}

func (m *mockPermissionRepository) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	if m.listPermissionsFn != nil {
		return m.listPermissionsFn(ctx)
	}
	return nil, nil
}

func (m *mockPermissionRepository) DeletePermission(ctx context.Context, permissionID int64) error {
	if m.deletePermissionFn != nil {
		return m.deletePermissionFn(ctx, permissionID)
	}
	return nil
}

// ─────────────────────────────────────────────
// Mock: store.ResetTokenRepository
// ─────────────────────────────────────────────

type mockResetTokenRepository struct {
	createResetTokenFn  func(ctx context.Context, email, tokenHash string, expiresAt time.Time) error
	consumeResetTokenFn func(ctx context.Context, tokenHash string) (string, error)
}

func (m *mockResetTokenRepository) CreateResetToken(ctx context.Context, email, tokenHash string, expiresAt time.Time) error {
	if m.createResetTokenFn != nil {
		return m.createResetTokenFn(ctx, email, tokenHash, expiresAt)
	}
	return nil
}

func (m *mockResetTokenRepository) ConsumeResetToken(ctx context.Context, tokenHash string) (string, error) {
	if m.consumeResetTokenFn != nil {
		return m.consumeResetTokenFn(ctx, tokenHash)
	}
	return "", store.ErrResetTokenInvalid
}
