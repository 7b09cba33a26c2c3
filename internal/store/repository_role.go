// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/models"
	"github.com/jackc/pgerrcode"
)

// roleRepository is the PostgreSQL-backed implementation of [RoleRepository].
//
// Transactional invariants maintained here:
//   - at most one role is marked as the registration default, enforced by
//     SetAsDefault clearing all default flags and setting one inside a
//     single transaction;
//   - a role's grant set is replaced atomically by AssignPermissions, so a
//     concurrent reader never observes a partially rewritten set.
type roleRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewRoleRepository constructs a [RoleRepository] backed by the provided
// database connection and logger.
func NewRoleRepository(db *DB, logger *logger.Logger) RoleRepository {
	logger.Debug().Msg("creating role repository")
	return &roleRepository{
		db:     db,
		logger: logger,
	}
}

// CreateRole persists a new role and returns it with server-assigned fields.
// A duplicate slug yields [ErrRoleSlugTaken].
func (r *roleRepository) CreateRole(ctx context.Context, role models.Role) (models.Role, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createRole, role.Name, role.Slug, role.Level, role.IsActive)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*roleRepository.CreateRole").Msg("error: row is nil")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.Role{}, ErrRoleSlugTaken
		default:
			return models.Role{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	var created models.Role
	err := row.Scan(&created.RoleID, &created.Name, &created.Slug, &created.Level, &created.IsActive, &created.IsDefault, &created.CreatedAt)
	if err != nil {
		log.Err(err).Str("func", "*roleRepository.CreateRole").Msg("error: scanning error")

		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.Role{}, ErrRoleSlugTaken
		}
		return models.Role{}, err
	}

	return created, nil
}

// FindRoleByID retrieves a role by primary key.
// Returns [ErrRoleNotFound] when no row matches.
func (r *roleRepository) FindRoleByID(ctx context.Context, roleID int64) (models.Role, error) {
	return r.findRole(ctx, findRoleByID, roleID)
}

// FindRoleBySlug retrieves a role by its unique slug.
// Returns [ErrRoleNotFound] when no row matches.
func (r *roleRepository) FindRoleBySlug(ctx context.Context, slug string) (models.Role, error) {
	return r.findRole(ctx, findRoleBySlug, slug)
}

// FindDefaultRole retrieves the active role marked as the registration
// default. Returns [ErrNoDefaultRole] when none is configured.
func (r *roleRepository) FindDefaultRole(ctx context.Context) (models.Role, error) {
	role, err := r.findRole(ctx, findDefaultRole)
	if err == ErrRoleNotFound {
		return models.Role{}, ErrNoDefaultRole
	}
	return role, err
}

func (r *roleRepository) findRole(ctx context.Context, query string, args ...any) (models.Role, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, query, args...)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*roleRepository.findRole").Msg("error: row is nil")
		return models.Role{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	var role models.Role
	err := row.Scan(&role.RoleID, &role.Name, &role.Slug, &role.Level, &role.IsActive, &role.IsDefault, &role.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Role{}, ErrRoleNotFound
		}
		log.Err(err).Str("func", "*roleRepository.findRole").Msg("error: scanning error")
		return models.Role{}, err
	}

	return role, nil
}

// ListRoles returns all roles ordered by level descending, then name.
func (r *roleRepository) ListRoles(ctx context.Context) ([]models.Role, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, listRoles)
	if err != nil {
		log.Err(err).Str("func", "*roleRepository.ListRoles").Msg("error: executing query")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.RoleID, &role.Name, &role.Slug, &role.Level, &role.IsActive, &role.IsDefault, &role.CreatedAt); err != nil {
			log.Err(err).Str("func", "*roleRepository.ListRoles").Msg("error: scanning error")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return roles, nil
}

// UpdateRole rewrites the role's name, level, and active flag.
// The slug and default flag are immutable here: slugs are referenced by
// sessions and config, and the default flag only changes through
// SetAsDefault. Returns [ErrRoleNotFound] when no row matches.
func (r *roleRepository) UpdateRole(ctx context.Context, role models.Role) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, updateRole, role.RoleID, role.Name, role.Level, role.IsActive)
	if err != nil {
		log.Err(err).Str("func", "*roleRepository.UpdateRole").Msg("error: executing statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrRoleNotFound
	}

	return nil
}

// DeleteRole removes a role after checking the delete guards:
// a role that still has users returns [ErrRoleInUse], the registration
// default returns [ErrRoleIsDefault]. Grant edges are removed by the
// ON DELETE CASCADE on role_permissions.
func (r *roleRepository) DeleteRole(ctx context.Context, roleID int64) error {
	log := logger.FromContext(ctx)

	role, err := r.FindRoleByID(ctx, roleID)
	if err != nil {
		return err
	}
	if role.IsDefault {
		return ErrRoleIsDefault
	}

	var userCount int64
	row := r.db.QueryRowContext(ctx, countUsersWithRole, roleID)
	if err := row.Scan(&userCount); err != nil {
		log.Err(err).Str("func", "*roleRepository.DeleteRole").Msg("error: counting users")
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if userCount > 0 {
		return ErrRoleInUse
	}

	result, err := r.db.ExecContext(ctx, deleteRole, roleID)
	if err != nil {
		log.Err(err).Str("func", "*roleRepository.DeleteRole").Msg("error: executing statement")

		// lost the race with a user assignment between the count and the delete
		if postgresError(err) == pgerrcode.ForeignKeyViolation {
			return ErrRoleInUse
		}
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrRoleNotFound
	}

	return nil
}

// SetAsDefault marks the given role as the registration default.
// All default flags are cleared and exactly one is set inside a single
// transaction, so the single-default invariant holds under concurrency.
// Returns [ErrRoleNotFound] when the role does not exist or is inactive.
func (r *roleRepository) SetAsDefault(ctx context.Context, roleID int64) error {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*roleRepository.SetAsDefault").Msg("error: beginning transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, unsetDefaultRoles); err != nil {
		log.Err(err).Str("func", "*roleRepository.SetAsDefault").Msg("error: clearing default flags")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	result, err := tx.ExecContext(ctx, setDefaultRole, roleID)
	if err != nil {
		log.Err(err).Str("func", "*roleRepository.SetAsDefault").Msg("error: setting default flag")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrRoleNotFound
	}

	if err := tx.Commit(); err != nil {
		log.Err(err).Str("func", "*roleRepository.SetAsDefault").Msg("error: committing transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return nil
}

// GetRolePermissions returns the active permissions granted to the role,
// ordered by slug. Revoked (granted=FALSE) edges and inactive permissions
// are excluded.
func (r *roleRepository) GetRolePermissions(ctx context.Context, roleID int64) ([]models.Permission, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, getRolePermissions, roleID)
	if err != nil {
		log.Err(err).Str("func", "*roleRepository.GetRolePermissions").Msg("error: executing query")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	var permissions []models.Permission
	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.PermissionID, &p.Name, &p.Slug, &p.Module, &p.Action, &p.Resource, &p.IsActive, &p.CreatedAt); err != nil {
			log.Err(err).Str("func", "*roleRepository.GetRolePermissions").Msg("error: scanning error")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		permissions = append(permissions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return permissions, nil
}

// AssignPermissions replaces the role's grant set with permissionIDs.
// The old edges are deleted and the new ones inserted in one transaction:
// either the full new set becomes visible or nothing changes. An empty
// permissionIDs revokes everything.
//
// An unknown permission ID surfaces as [ErrPermissionNotFound] via the
// foreign key on role_permissions.
func (r *roleRepository) AssignPermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	log := logger.FromContext(ctx)

	if _, err := r.FindRoleByID(ctx, roleID); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*roleRepository.AssignPermissions").Msg("error: beginning transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteRolePermissions, roleID); err != nil {
		log.Err(err).Str("func", "*roleRepository.AssignPermissions").Msg("error: deleting old grants")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if len(permissionIDs) > 0 {
		builder := sq.Insert("role_permissions").
			Columns("role_id", "permission_id", "granted").
			PlaceholderFormat(sq.Dollar)
		for _, permissionID := range permissionIDs {
			builder = builder.Values(roleID, permissionID, true)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			log.Err(err).Str("func", "*roleRepository.AssignPermissions").Msg("error: building query")
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.Err(err).Str("func", "*roleRepository.AssignPermissions").Msg("error: inserting grants")

			if postgresError(err) == pgerrcode.ForeignKeyViolation {
				return ErrPermissionNotFound
			}
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Err(err).Str("func", "*roleRepository.AssignPermissions").Msg("error: committing transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return nil
}
