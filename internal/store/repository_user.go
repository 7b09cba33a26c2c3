package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/models"
	"github.com/jackc/pgerrcode"
)

// userRepository is the PostgreSQL-backed implementation of [UserRepository].
// It handles user account creation, lookup, and login bookkeeping against
// the "users" table. Soft-deleted rows are excluded from every query.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
//
// A debug-level log message is emitted at construction time to aid
// application startup diagnostics.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// userRow mirrors the scan targets of the shared user column list.
type userRow struct {
	additionalPermissions []byte
	lockedUntil           sql.NullTime
	lastLogin             sql.NullTime
	lastActivity          sql.NullTime
}

// scanUser reads the shared user column list (optionally followed by the
// joined role slug) into a [models.User].
func scanUser(scan func(dest ...any) error, withRoleSlug bool) (models.User, error) {
	var user models.User
	var row userRow

	dest := []any{
		&user.UserID, &user.Username, &user.Email, &user.Name, &user.PasswordHash,
		&user.RoleID, &row.additionalPermissions, &user.IsActive, &user.LoginAttempts,
		&row.lockedUntil, &row.lastLogin, &row.lastActivity, &user.CreatedAt,
	}
	if withRoleSlug {
		dest = append(dest, &user.RoleSlug)
	}

	if err := scan(dest...); err != nil {
		return models.User{}, err
	}

	if len(row.additionalPermissions) > 0 {
		if err := json.Unmarshal(row.additionalPermissions, &user.AdditionalPermissions); err != nil {
			return models.User{}, fmt.Errorf("error decoding additional permissions: %w", err)
		}
	}
	if row.lockedUntil.Valid {
		user.LockedUntil = &row.lockedUntil.Time
	}
	if row.lastLogin.Valid {
		user.LastLogin = &row.lastLogin.Time
	}
	if row.lastActivity.Valid {
		user.LastActivity = &row.lastActivity.Time
	}

	return user, nil
}

// CreateUser persists a new user record and returns the fully populated
// [models.User] with server-assigned fields (UserID, CreatedAt).
//
// The INSERT uses the [createUser] prepared query which returns all columns
// via a RETURNING clause, so the caller receives the canonical database
// representation of the newly created account. Email is normalized to lower
// case by the statement itself.
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrUsernameTaken] or
//     [ErrEmailTaken], told apart by the violated constraint name.
//   - Any other driver-level error → wrapped as "unexpected DB error".
//   - Scan failure → returned directly.
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	permissions, err := json.Marshal(user.AdditionalPermissions)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: encoding additional permissions")
		return models.User{}, fmt.Errorf("error encoding additional permissions: %w", err)
	}

	row := r.db.QueryRowContext(ctx, createUser, user.Username, user.Email, user.Name, user.PasswordHash, user.RoleID, permissions)

	// create user in db
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: row is nil")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.User{}, uniqueUserError(err)
		default:
			return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	// scan saved user from db
	created, err := scanUser(row.Scan, false)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: scanning error")

		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.User{}, uniqueUserError(err)
		}
		return models.User{}, err
	}
	created.RoleSlug = user.RoleSlug

	return created, nil
}

// FindUserByIdentifier retrieves the non-deleted user whose username matches
// identifier exactly or whose email matches it case-insensitively, together
// with the joined role slug.
//
// Error handling:
//   - No matching row → [ErrUserNotFound].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *userRepository) FindUserByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, findUserByIdentifier, identifier)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.FindUserByIdentifier").Msg("error: row is nil")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	foundUser, err := scanUser(row.Scan, true)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrUserNotFound
		}
		log.Err(err).Str("func", "*userRepository.FindUserByIdentifier").Msg("error: scanning error")
		return models.User{}, err
	}

	return foundUser, nil
}

// FindUserByID retrieves a non-deleted user by primary key, together with
// the joined role slug. Returns [ErrUserNotFound] when no row matches.
func (r *userRepository) FindUserByID(ctx context.Context, userID int64) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, findUserByID, userID)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.FindUserByID").Msg("error: row is nil")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	foundUser, err := scanUser(row.Scan, true)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrUserNotFound
		}
		log.Err(err).Str("func", "*userRepository.FindUserByID").Msg("error: scanning error")
		return models.User{}, err
	}

	return foundUser, nil
}

// ListUsers returns non-deleted users matching the filter, newest first.
// The query is built dynamically with squirrel from the populated filter
// fields only.
func (r *userRepository) ListUsers(ctx context.Context, filter UserFilter) ([]models.User, error) {
	log := logger.FromContext(ctx)

	builder := sq.Select(
		"u.user_id", "u.username", "u.email", "u.name", "u.password_hash",
		"u.role_id", "u.additional_permissions", "u.is_active", "u.login_attempts",
		"u.locked_until", "u.last_login", "u.last_activity", "u.created_at", "r.slug",
	).
		From("users u").
		Join("roles r ON r.role_id = u.role_id").
		Where("u.deleted_at IS NULL").
		OrderBy("u.created_at DESC").
		PlaceholderFormat(sq.Dollar)

	if filter.RoleID > 0 {
		builder = builder.Where(sq.Eq{"u.role_id": filter.RoleID})
	}
	if filter.IsActive != nil {
		builder = builder.Where(sq.Eq{"u.is_active": *filter.IsActive})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"u.username": pattern},
			sq.ILike{"u.email": pattern},
			sq.ILike{"u.name": pattern},
		})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		builder = builder.Offset(filter.Offset)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		log.Err(err).Str("func", "*userRepository.ListUsers").Msg("error: building query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.ListUsers").Msg("error: executing query")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows.Scan, true)
		if err != nil {
			log.Err(err).Str("func", "*userRepository.ListUsers").Msg("error: scanning error")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return users, nil
}

// UpdateUser applies a partial update built with squirrel from the populated
// fields of update. An empty update is a no-op.
//
// Error handling:
//   - unique_violation → [ErrUsernameTaken] / [ErrEmailTaken].
//   - No affected rows → [ErrUserNotFound].
func (r *userRepository) UpdateUser(ctx context.Context, update models.UserUpdate) error {
	log := logger.FromContext(ctx)

	if update.Empty() {
		return nil
	}

	builder := sq.Update("users").
		Where(sq.Eq{"user_id": update.UserID}).
		Where("deleted_at IS NULL").
		PlaceholderFormat(sq.Dollar)

	if update.Username != nil {
		builder = builder.Set("username", *update.Username)
	}
	if update.Email != nil {
		builder = builder.Set("email", sq.Expr("lower(?)", *update.Email))
	}
	if update.Name != nil {
		builder = builder.Set("name", *update.Name)
	}
	if update.PasswordHash != nil {
		builder = builder.Set("password_hash", *update.PasswordHash)
	}
	if update.RoleID != nil {
		builder = builder.Set("role_id", *update.RoleID)
	}
	if update.AdditionalPermissions != nil {
		permissions, err := json.Marshal(*update.AdditionalPermissions)
		if err != nil {
			return fmt.Errorf("error encoding additional permissions: %w", err)
		}
		builder = builder.Set("additional_permissions", permissions)
	}
	if update.IsActive != nil {
		builder = builder.Set("is_active", *update.IsActive)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		log.Err(err).Str("func", "*userRepository.UpdateUser").Msg("error: building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.UpdateUser").Msg("error: executing statement")
		if postgresError(err) == pgerrcode.UniqueViolation {
			return uniqueUserError(err)
		}
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// SoftDeleteUser tombstones the user: the row stays for referential
// integrity but disappears from every lookup. Returns [ErrUserNotFound]
// if the user does not exist or is already deleted.
func (r *userRepository) SoftDeleteUser(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, softDeleteUser, userID)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.SoftDeleteUser").Msg("error: executing statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// UpdateLastActivity touches the user's last_activity timestamp.
// The operation is best-effort: errors are classified for the log (so a
// transient connection loss can be told from a real fault) and returned,
// but callers are expected to log and continue, never to fail the request.
func (r *userRepository) UpdateLastActivity(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, updateLastActivity, userID); err != nil {
		log.Warn().
			Err(err).
			Int64("user_id", userID).
			Bool("retryable", r.db.errorClassificator.Classify(err) == Retryable).
			Msg("last activity touch failed")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// RecordLoginSuccess resets the failure counter, clears any account lock,
// and stamps last_login.
func (r *userRepository) RecordLoginSuccess(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, recordLoginSuccess, userID); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*userRepository.RecordLoginSuccess").Msg("error: executing statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// RecordLoginFailure increments the failure counter and, when the counter
// reaches maxAttempts, locks the account for lockFor. The increment and the
// escalation decision execute in one statement so concurrent failures cannot
// skip the lock.
func (r *userRepository) RecordLoginFailure(ctx context.Context, userID int64, maxAttempts int, lockFor time.Duration) error {
	if _, err := r.db.ExecContext(ctx, recordLoginFailure, userID, maxAttempts, lockFor.Seconds()); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*userRepository.RecordLoginFailure").Msg("error: executing statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// uniqueUserError maps a unique_violation on the users table to the
// field-specific sentinel using the violated constraint name.
func uniqueUserError(err error) error {
	switch postgresConstraint(err) {
	case "users_email_key":
		return ErrEmailTaken
	default:
		return ErrUsernameTaken
	}
}
