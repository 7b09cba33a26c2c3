package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/models"
	"github.com/jackc/pgerrcode"
)

// permissionRepository is the PostgreSQL-backed implementation of
// [PermissionRepository]. Permission slugs are unique and validated by the
// service layer before they reach this repository; the database enforces the
// action enum with a CHECK constraint as a second line.
type permissionRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewPermissionRepository constructs a [PermissionRepository] backed by the
// provided database connection and logger.
func NewPermissionRepository(db *DB, logger *logger.Logger) PermissionRepository {
	logger.Debug().Msg("creating permission repository")
	return &permissionRepository{
		db:     db,
		logger: logger,
	}
}

// CreatePermission persists a new permission and returns it with
// server-assigned fields. A duplicate slug yields [ErrPermissionSlugTaken].
func (r *permissionRepository) CreatePermission(ctx context.Context, permission models.Permission) (models.Permission, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createPermission,
		permission.Name, permission.Slug, permission.Module, permission.Action, permission.Resource, permission.IsActive)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*permissionRepository.CreatePermission").Msg("error: row is nil")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.Permission{}, ErrPermissionSlugTaken
		default:
			return models.Permission{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	var created models.Permission
	err := row.Scan(&created.PermissionID, &created.Name, &created.Slug, &created.Module, &created.Action, &created.Resource, &created.IsActive, &created.CreatedAt)
	if err != nil {
		log.Err(err).Str("func", "*permissionRepository.CreatePermission").Msg("error: scanning error")

		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.Permission{}, ErrPermissionSlugTaken
		}
		return models.Permission{}, err
	}

	return created, nil
}

// FindPermissionByID retrieves a permission by primary key.
// Returns [ErrPermissionNotFound] when no row matches.
func (r *permissionRepository) FindPermissionByID(ctx context.Context, permissionID int64) (models.Permission, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, findPermissionByID, permissionID)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*permissionRepository.FindPermissionByID").Msg("error: row is nil")
		return models.Permission{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	var found models.Permission
	err := row.Scan(&found.PermissionID, &found.Name, &found.Slug, &found.Module, &found.Action, &found.Resource, &found.IsActive, &found.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Permission{}, ErrPermissionNotFound
		}
		log.Err(err).Str("func", "*permissionRepository.FindPermissionByID").Msg("error: scanning error")
		return models.Permission{}, err
	}

	return found, nil
}

// ListPermissions returns all permissions ordered by module, then slug.
func (r *permissionRepository) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, listPermissions)
	if err != nil {
		log.Err(err).Str("func", "*permissionRepository.ListPermissions").Msg("error: executing query")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	var permissions []models.Permission
	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.PermissionID, &p.Name, &p.Slug, &p.Module, &p.Action, &p.Resource, &p.IsActive, &p.CreatedAt); err != nil {
			log.Err(err).Str("func", "*permissionRepository.ListPermissions").Msg("error: scanning error")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		permissions = append(permissions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return permissions, nil
}

// DeletePermission removes a permission after checking that no role still
// holds a grant on it ([ErrPermissionInUse] otherwise).
// Returns [ErrPermissionNotFound] when no row matches.
func (r *permissionRepository) DeletePermission(ctx context.Context, permissionID int64) error {
	log := logger.FromContext(ctx)

	var grantCount int64
	row := r.db.QueryRowContext(ctx, countGrantsWithPermission, permissionID)
	if err := row.Scan(&grantCount); err != nil {
		log.Err(err).Str("func", "*permissionRepository.DeletePermission").Msg("error: counting grants")
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if grantCount > 0 {
		return ErrPermissionInUse
	}

	result, err := r.db.ExecContext(ctx, deletePermission, permissionID)
	if err != nil {
		log.Err(err).Str("func", "*permissionRepository.DeletePermission").Msg("error: executing statement")

		if postgresError(err) == pgerrcode.ForeignKeyViolation {
			return ErrPermissionInUse
		}
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrPermissionNotFound
	}

	return nil
}
