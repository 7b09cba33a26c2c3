// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/internal/store"
	"github.com/MKhiriev/go-access-gate/models"
)

// catalogService is the concrete implementation of CatalogService.
//
// Permission sets are cached in-process per role and rebuilt lazily after
// any mutation that can change them. Invalidation replaces the whole map
// under the write lock, so concurrent readers always see either the full
// old catalog or the full new one.
type catalogService struct {
	roleRepository       store.RoleRepository
	permissionRepository store.PermissionRepository
	userRepository       store.UserRepository
	logger               *logger.Logger

	mu                sync.RWMutex
	permissionsByRole map[int64]map[string]struct{}
}

// NewCatalogService constructs a CatalogService over the given repositories
// with an empty permission cache.
func NewCatalogService(roleRepository store.RoleRepository, permissionRepository store.PermissionRepository, userRepository store.UserRepository, logger *logger.Logger) CatalogService {
	return &catalogService{
		roleRepository:       roleRepository,
		permissionRepository: permissionRepository,
		userRepository:       userRepository,
		logger:               logger,
		permissionsByRole:    make(map[int64]map[string]struct{}),
	}
}

// HasPermission decides whether the user may perform the operation named by
// permissionSlug.
//
// Resolution order:
//  1. the super role passes every check without consulting grants;
//  2. the role's granted permission set (cached);
//  3. the user's own additional permissions.
//
// An inactive role contributes no grants, but additional permissions still
// apply. Unknown users resolve to a denied check, not an error.
func (c *catalogService) HasPermission(ctx context.Context, userID int64, permissionSlug string) (bool, error) {
	log := logger.FromContext(ctx)

	if permissionSlug == "" {
		return false, ErrInvalidDataProvided
	}

	user, err := c.userRepository.FindUserByID(ctx, userID)
	if err != nil {
		if err == store.ErrUserNotFound {
			return false, nil
		}
		return false, fmt.Errorf("user lookup failed: %w", err)
	}

	role, err := c.roleRepository.FindRoleByID(ctx, user.RoleID)
	if err != nil {
		if err == store.ErrRoleNotFound {
			log.Warn().Int64("user_id", userID).Int64("role_id", user.RoleID).Msg("user references missing role")
			return user.HasDirectPermission(permissionSlug), nil
		}
		return false, fmt.Errorf("role lookup failed: %w", err)
	}

	if role.IsSuperRole() {
		return true, nil
	}

	if role.IsActive {
		granted, err := c.rolePermissionSet(ctx, role.RoleID)
		if err != nil {
			return false, err
		}
		if _, ok := granted[permissionSlug]; ok {
			return true, nil
		}
	}

	return user.HasDirectPermission(permissionSlug), nil
}

// rolePermissionSet returns the role's granted slug set, loading and caching
// it on first use.
func (c *catalogService) rolePermissionSet(ctx context.Context, roleID int64) (map[string]struct{}, error) {
	c.mu.RLock()
	cached, ok := c.permissionsByRole[roleID]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	permissions, err := c.roleRepository.GetRolePermissions(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("role permissions lookup failed: %w", err)
	}

	set := make(map[string]struct{}, len(permissions))
	for _, permission := range permissions {
		set[permission.Slug] = struct{}{}
	}

	c.mu.Lock()
	c.permissionsByRole[roleID] = set
	c.mu.Unlock()

	return set, nil
}

// invalidate drops the whole permission cache. The next check per role
// reloads from the database.
func (c *catalogService) invalidate() {
	c.mu.Lock()
	c.permissionsByRole = make(map[int64]map[string]struct{})
	c.mu.Unlock()
}

func (c *catalogService) CreateRole(ctx context.Context, role models.Role) (models.Role, error) {
	log := logger.FromContext(ctx)

	if role.Name == "" || role.Slug == "" {
		return models.Role{}, ErrInvalidDataProvided
	}

	created, err := c.roleRepository.CreateRole(ctx, role)
	if err != nil {
		log.Err(err).Str("slug", role.Slug).Msg("role creation ended with error")
		return models.Role{}, fmt.Errorf("role creation ended with error: %w", err)
	}

	return created, nil
}

func (c *catalogService) ListRoles(ctx context.Context) ([]models.Role, error) {
	return c.roleRepository.ListRoles(ctx)
}

func (c *catalogService) GetRole(ctx context.Context, roleID int64) (models.Role, error) {
	return c.roleRepository.FindRoleByID(ctx, roleID)
}

func (c *catalogService) UpdateRole(ctx context.Context, role models.Role) error {
	if role.RoleID <= 0 || role.Name == "" {
		return ErrInvalidDataProvided
	}

	if err := c.roleRepository.UpdateRole(ctx, role); err != nil {
		return err
	}

	// deactivating a role changes what its holders may do
	c.invalidate()
	return nil
}

func (c *catalogService) DeleteRole(ctx context.Context, roleID int64) error {
	if err := c.roleRepository.DeleteRole(ctx, roleID); err != nil {
		return err
	}

	c.invalidate()
	return nil
}

func (c *catalogService) SetDefaultRole(ctx context.Context, roleID int64) error {
	if err := c.roleRepository.SetAsDefault(ctx, roleID); err != nil {
		return err
	}

	// every role mutation drops the cache, even ones that leave the
	// cached permission sets untouched
	c.invalidate()
	return nil
}

func (c *catalogService) RolePermissions(ctx context.Context, roleID int64) ([]models.Permission, error) {
	if _, err := c.roleRepository.FindRoleByID(ctx, roleID); err != nil {
		return nil, err
	}
	return c.roleRepository.GetRolePermissions(ctx, roleID)
}

func (c *catalogService) AssignPermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	log := logger.FromContext(ctx)

	if err := c.roleRepository.AssignPermissions(ctx, roleID, permissionIDs); err != nil {
		log.Err(err).Int64("role_id", roleID).Msg("permission assignment ended with error")
		return err
	}

	c.invalidate()
	return nil
}

func (c *catalogService) CreatePermission(ctx context.Context, permission models.Permission) (models.Permission, error) {
	log := logger.FromContext(ctx)

	if err := permission.Validate(); err != nil {
		return models.Permission{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	created, err := c.permissionRepository.CreatePermission(ctx, permission)
	if err != nil {
		log.Err(err).Str("slug", permission.Slug).Msg("permission creation ended with error")
		return models.Permission{}, fmt.Errorf("permission creation ended with error: %w", err)
	}

	return created, nil
}

func (c *catalogService) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	return c.permissionRepository.ListPermissions(ctx)
}

func (c *catalogService) DeletePermission(ctx context.Context, permissionID int64) error {
	if err := c.permissionRepository.DeletePermission(ctx, permissionID); err != nil {
		return err
	}

	c.invalidate()
	return nil
}
