package store

const (
	createUser = `INSERT INTO users (username, email, name, password_hash, role_id, additional_permissions)
    VALUES ($1, lower($2), $3, $4, $5, $6)
    RETURNING user_id, username, email, name, password_hash, role_id, additional_permissions, is_active, login_attempts, locked_until, last_login, last_activity, created_at;`

	findUserByIdentifier = `SELECT u.user_id, u.username, u.email, u.name, u.password_hash, u.role_id, u.additional_permissions, u.is_active, u.login_attempts, u.locked_until, u.last_login, u.last_activity, u.created_at, r.slug
    FROM users u
    JOIN roles r ON r.role_id = u.role_id
    WHERE (u.username = $1 OR u.email = lower($1)) AND u.deleted_at IS NULL;`

	findUserByID = `SELECT u.user_id, u.username, u.email, u.name, u.password_hash, u.role_id, u.additional_permissions, u.is_active, u.login_attempts, u.locked_until, u.last_login, u.last_activity, u.created_at, r.slug
    FROM users u
    JOIN roles r ON r.role_id = u.role_id
    WHERE u.user_id = $1 AND u.deleted_at IS NULL;`

	softDeleteUser = `UPDATE users SET deleted_at = now()
    WHERE user_id = $1 AND deleted_at IS NULL;`

	updateLastActivity = `UPDATE users SET last_activity = now()
    WHERE user_id = $1 AND deleted_at IS NULL;`

	recordLoginSuccess = `UPDATE users
    SET login_attempts = 0, locked_until = NULL, last_login = now()
    WHERE user_id = $1 AND deleted_at IS NULL;`

	// The lock threshold and duration are caller-supplied so that the
	// increment and the escalation decision happen in one statement.
	recordLoginFailure = `UPDATE users
    SET login_attempts = login_attempts + 1,
        locked_until = CASE
            WHEN login_attempts + 1 >= $2 THEN now() + make_interval(secs => $3)
            ELSE locked_until
        END
    WHERE user_id = $1 AND deleted_at IS NULL;`

	createRole = `INSERT INTO roles (name, slug, level, is_active, is_default)
    VALUES ($1, $2, $3, $4, FALSE)
    RETURNING role_id, name, slug, level, is_active, is_default, created_at;`

	findRoleByID = `SELECT role_id, name, slug, level, is_active, is_default, created_at
    FROM roles
    WHERE role_id = $1;`

	findRoleBySlug = `SELECT role_id, name, slug, level, is_active, is_default, created_at
    FROM roles
    WHERE slug = $1;`

	findDefaultRole = `SELECT role_id, name, slug, level, is_active, is_default, created_at
    FROM roles
    WHERE is_default = TRUE;`

	listRoles = `SELECT role_id, name, slug, level, is_active, is_default, created_at
    FROM roles
    ORDER BY level DESC, slug;`

	// The slug and the default flag are immutable here: slugs are referenced
	// by sessions and route requirements, and the default changes only
	// through the unset-then-set transaction.
	updateRole = `UPDATE roles SET name = $2, level = $3, is_active = $4
    WHERE role_id = $1;`

	deleteRole = `DELETE FROM roles WHERE role_id = $1;`

	countUsersWithRole = `SELECT COUNT(*) FROM users
    WHERE role_id = $1 AND deleted_at IS NULL;`

	unsetDefaultRoles = `UPDATE roles SET is_default = FALSE WHERE is_default = TRUE;`

	setDefaultRole = `UPDATE roles SET is_default = TRUE WHERE role_id = $1;`

	// Deny rows (granted = FALSE) are deliberately filtered out here:
	// resolution treats them as inert until a deny-precedence rule lands.
	getRolePermissions = `SELECT p.permission_id, p.name, p.slug, p.module, p.action, p.resource, p.is_active, p.created_at
    FROM permissions p
    JOIN role_permissions rp ON rp.permission_id = p.permission_id
    WHERE rp.role_id = $1 AND rp.granted = TRUE AND p.is_active = TRUE
    ORDER BY p.slug;`

	deleteRolePermissions = `DELETE FROM role_permissions WHERE role_id = $1;`

	createPermission = `INSERT INTO permissions (name, slug, module, action, resource, is_active)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING permission_id, name, slug, module, action, resource, is_active, created_at;`

	findPermissionByID = `SELECT permission_id, name, slug, module, action, resource, is_active, created_at
    FROM permissions
    WHERE permission_id = $1;`

	listPermissions = `SELECT permission_id, name, slug, module, action, resource, is_active, created_at
    FROM permissions
    ORDER BY slug;`

	deletePermission = `DELETE FROM permissions WHERE permission_id = $1;`

	countGrantsWithPermission = `SELECT COUNT(*) FROM role_permissions
    WHERE permission_id = $1;`

	deleteResetTokensForEmail = `DELETE FROM password_resets WHERE email = lower($1);`

	createResetToken = `INSERT INTO password_resets (email, token_hash, expires_at)
    VALUES (lower($1), $2, $3);`

	// Single-use is enforced by the statement itself: the used_at mark and
	// the validity predicate execute atomically.
	consumeResetToken = `UPDATE password_resets SET used_at = now()
    WHERE token_hash = $1 AND used_at IS NULL AND expires_at > now()
    RETURNING email;`
)
