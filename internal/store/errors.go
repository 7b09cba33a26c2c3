package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrUsernameTaken is returned when an insert or update violates the
	// users.username uniqueness constraint.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrEmailTaken is returned when an insert or update violates the
	// users.email uniqueness constraint.
	ErrEmailTaken = errors.New("email already exists")

	// ErrUserNotFound is returned when a lookup matches no non-deleted user.
	ErrUserNotFound = errors.New("no user was found")

	// ErrRoleNotFound is returned when a role lookup produces no row.
	ErrRoleNotFound = errors.New("no role was found")

	// ErrRoleSlugTaken is returned when a role insert or update violates the
	// roles.slug or roles.name uniqueness constraint.
	ErrRoleSlugTaken = errors.New("role name or slug already exists")

	// ErrRoleInUse is returned when deleting a role still referenced by at
	// least one non-deleted user.
	ErrRoleInUse = errors.New("role is referenced by existing users")

	// ErrRoleIsDefault is returned when attempting to delete the default role.
	ErrRoleIsDefault = errors.New("default role cannot be deleted")

	// ErrNoDefaultRole is returned when no role carries the default flag;
	// registration without an explicit role cannot proceed in that state.
	ErrNoDefaultRole = errors.New("no default role is configured")

	// ErrPermissionNotFound is returned when a permission lookup produces
	// no row.
	ErrPermissionNotFound = errors.New("no permission was found")

	// ErrPermissionSlugTaken is returned when a permission insert violates
	// the permissions.slug or permissions.name uniqueness constraint.
	ErrPermissionSlugTaken = errors.New("permission name or slug already exists")

	// ErrPermissionInUse is returned when deleting a permission still
	// referenced by at least one role grant.
	ErrPermissionInUse = errors.New("permission is referenced by role grants")

	// ErrResetTokenInvalid is returned when consuming a password-reset token
	// that is unknown, already used, or expired. The three cases are
	// deliberately indistinguishable to the caller.
	ErrResetTokenInvalid = errors.New("password reset token is invalid or expired")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
