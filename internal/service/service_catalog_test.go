package service

import (
	"context"
	"testing"

	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/internal/store"
	"github.com/MKhiriev/go-access-gate/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(users *mockUserRepository, roles *mockRoleRepository, permissions *mockPermissionRepository) CatalogService {
	return NewCatalogService(roles, permissions, users, logger.Nop())
}

func userWithRole(roleID int64, additional ...string) *mockUserRepository {
	return &mockUserRepository{
		findUserByIDFn: func(_ context.Context, userID int64) (models.User, error) {
			return models.User{UserID: userID, RoleID: roleID, AdditionalPermissions: additional}, nil
		},
	}
}

func roleWithGrants(role models.Role, slugs ...string) *mockRoleRepository {
	permissions := make([]models.Permission, 0, len(slugs))
	for _, slug := range slugs {
		permissions = append(permissions, models.Permission{Slug: slug, IsActive: true})
	}
	return &mockRoleRepository{
		findRoleByIDFn: func(_ context.Context, _ int64) (models.Role, error) {
			return role, nil
		},
		getRolePermissionsFn: func(_ context.Context, _ int64) ([]models.Permission, error) {
			return permissions, nil
		},
	}
}

// ─────────────────────────────────────────────
// HasPermission
// ─────────────────────────────────────────────

func TestCatalog_HasPermission_RoleGrant(t *testing.T) {
	roles := roleWithGrants(models.Role{RoleID: 2, Slug: "manager", IsActive: true}, "users.view", "reports.export")
	catalog := newTestCatalog(userWithRole(2), roles, &mockPermissionRepository{})

	allowed, err := catalog.HasPermission(context.Background(), 7, "users.view")
	require.NoError(t, err)
	assert.True(t, allowed)

	denied, err := catalog.HasPermission(context.Background(), 7, "users.delete")
	require.NoError(t, err)
	assert.False(t, denied)
}

func TestCatalog_HasPermission_SuperRoleBypassesGrants(t *testing.T) {
	grantsQueried := false
	roles := &mockRoleRepository{
		findRoleByIDFn: func(_ context.Context, _ int64) (models.Role, error) {
			return models.Role{RoleID: 1, Slug: models.RoleSlugAdmin, IsActive: true}, nil
		},
		getRolePermissionsFn: func(_ context.Context, _ int64) ([]models.Permission, error) {
			grantsQueried = true
			return nil, nil
		},
	}
	catalog := newTestCatalog(userWithRole(1), roles, &mockPermissionRepository{})

	allowed, err := catalog.HasPermission(context.Background(), 7, "anything.at.all")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.False(t, grantsQueried, "super role must not consult grants")
}

func TestCatalog_HasPermission_AdditionalPermissions(t *testing.T) {
	roles := roleWithGrants(models.Role{RoleID: 4, Slug: "technician", IsActive: true}, "tickets.view")
	catalog := newTestCatalog(userWithRole(4, "reports.export"), roles, &mockPermissionRepository{})

	allowed, err := catalog.HasPermission(context.Background(), 7, "reports.export")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCatalog_HasPermission_InactiveRoleGrantsNothing(t *testing.T) {
	roles := roleWithGrants(models.Role{RoleID: 4, Slug: "technician", IsActive: false}, "tickets.view")
	catalog := newTestCatalog(userWithRole(4, "reports.export"), roles, &mockPermissionRepository{})

	denied, err := catalog.HasPermission(context.Background(), 7, "tickets.view")
	require.NoError(t, err)
	assert.False(t, denied)

	// additional permissions still apply
	allowed, err := catalog.HasPermission(context.Background(), 7, "reports.export")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCatalog_HasPermission_UnknownUserDenies(t *testing.T) {
	catalog := newTestCatalog(&mockUserRepository{}, &mockRoleRepository{}, &mockPermissionRepository{})

	allowed, err := catalog.HasPermission(context.Background(), 404, "users.view")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCatalog_HasPermission_EmptySlug(t *testing.T) {
	catalog := newTestCatalog(&mockUserRepository{}, &mockRoleRepository{}, &mockPermissionRepository{})

	_, err := catalog.HasPermission(context.Background(), 7, "")
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}

// ─────────────────────────────────────────────
// Cache behavior
// ─────────────────────────────────────────────

func TestCatalog_HasPermission_CachesRoleGrants(t *testing.T) {
	loads := 0
	roles := &mockRoleRepository{
		findRoleByIDFn: func(_ context.Context, _ int64) (models.Role, error) {
			return models.Role{RoleID: 2, Slug: "manager", IsActive: true}, nil
		},
		getRolePermissionsFn: func(_ context.Context, _ int64) ([]models.Permission, error) {
			loads++
			return []models.Permission{{Slug: "users.view", IsActive: true}}, nil
		},
	}
	catalog := newTestCatalog(userWithRole(2), roles, &mockPermissionRepository{})

	for i := 0; i < 5; i++ {
		allowed, err := catalog.HasPermission(context.Background(), 7, "users.view")
		require.NoError(t, err)
		require.True(t, allowed)
	}

	assert.Equal(t, 1, loads, "grants must be loaded once and served from cache")
}

func TestCatalog_AssignPermissions_InvalidatesCache(t *testing.T) {
	grants := []models.Permission{{Slug: "users.view", IsActive: true}}
	loads := 0
	roles := &mockRoleRepository{
		findRoleByIDFn: func(_ context.Context, _ int64) (models.Role, error) {
			return models.Role{RoleID: 2, Slug: "manager", IsActive: true}, nil
		},
		getRolePermissionsFn: func(_ context.Context, _ int64) ([]models.Permission, error) {
			loads++
			return grants, nil
		},
	}
	catalog := newTestCatalog(userWithRole(2), roles, &mockPermissionRepository{})

	allowed, err := catalog.HasPermission(context.Background(), 7, "users.view")
	require.NoError(t, err)
	require.True(t, allowed)

	grants = nil // grants revoked in storage
	require.NoError(t, catalog.AssignPermissions(context.Background(), 2, nil))

	denied, err := catalog.HasPermission(context.Background(), 7, "users.view")
	require.NoError(t, err)
	assert.False(t, denied, "revocation must be visible after invalidation")
	assert.Equal(t, 2, loads)
}

func TestCatalog_SetDefaultRole_InvalidatesCache(t *testing.T) {
	loads := 0
	roles := &mockRoleRepository{
		findRoleByIDFn: func(_ context.Context, _ int64) (models.Role, error) {
			return models.Role{RoleID: 2, Slug: "manager", IsActive: true}, nil
		},
		getRolePermissionsFn: func(_ context.Context, _ int64) ([]models.Permission, error) {
			loads++
			return []models.Permission{{Slug: "users.view", IsActive: true}}, nil
		},
	}
	catalog := newTestCatalog(userWithRole(2), roles, &mockPermissionRepository{})

	_, err := catalog.HasPermission(context.Background(), 7, "users.view")
	require.NoError(t, err)
	require.NoError(t, catalog.SetDefaultRole(context.Background(), 3))

	_, err = catalog.HasPermission(context.Background(), 7, "users.view")
	require.NoError(t, err)
	assert.Equal(t, 2, loads, "default switch must drop the cached grants")
}

// ─────────────────────────────────────────────
// Role and permission administration
// ─────────────────────────────────────────────

func TestCatalog_CreateRole_InvalidData(t *testing.T) {
	catalog := newTestCatalog(&mockUserRepository{}, &mockRoleRepository{}, &mockPermissionRepository{})

	_, err := catalog.CreateRole(context.Background(), models.Role{Name: "No Slug"})
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestCatalog_DeleteRole_PropagatesGuards(t *testing.T) {
	roles := &mockRoleRepository{
		deleteRoleFn: func(_ context.Context, _ int64) error {
			return store.ErrRoleInUse
		},
	}
	catalog := newTestCatalog(&mockUserRepository{}, roles, &mockPermissionRepository{})

	err := catalog.DeleteRole(context.Background(), 2)
	assert.ErrorIs(t, err, store.ErrRoleInUse)
}

func TestCatalog_CreatePermission_ValidatesSlug(t *testing.T) {
	catalog := newTestCatalog(&mockUserRepository{}, &mockRoleRepository{}, &mockPermissionRepository{})

	_, err := catalog.CreatePermission(context.Background(), models.Permission{
		Name:   "Bad action",
		Slug:   "users.frobnicate",
		Module: "users",
		Action: "frobnicate",
	})
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestCatalog_CreatePermission_Success(t *testing.T) {
	permissions := &mockPermissionRepository{
		createPermissionFn: func(_ context.Context, permission models.Permission) (models.Permission, error) {
			permission.PermissionID = 10
			return permission, nil
		},
	}
	catalog := newTestCatalog(&mockUserRepository{}, &mockRoleRepository{}, permissions)

	created, err := catalog.CreatePermission(context.Background(), models.Permission{
		Name:     "View users",
		Slug:     "users.view",
		Module:   "users",
		Action:   "view",
		IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), created.PermissionID)
}
