package http

import (
	"context"
	"errors"
	"time"

	"github.com/MKhiriev/go-access-gate/internal/cache"
	"github.com/MKhiriev/go-access-gate/internal/config"
	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/internal/ratelimit"
	"github.com/MKhiriev/go-access-gate/internal/service"
	"github.com/MKhiriev/go-access-gate/internal/session"
	"github.com/MKhiriev/go-access-gate/internal/store"
	"github.com/MKhiriev/go-access-gate/models"
)

var errBackend = errors.New("backend failure")

// ─────────────────────────────────────────────
// Mock AuthService
// ─────────────────────────────────────────────

// mockAuthService implements service.AuthService for unit tests.
// Each method field can be overridden per test case.
type mockAuthService struct {
	registerFn    func(ctx context.Context, user models.User, password string) (models.User, error)
	loginFn       func(ctx context.Context, identifier, password string) (models.User, error)
	createTokenFn func(ctx context.Context, user models.User) (models.Token, error)
	parseTokenFn  func(ctx context.Context, tokenString string) (models.Token, error)
}

func (m *mockAuthService) Register(ctx context.Context, user models.User, password string) (models.User, error) {
	if m.registerFn == nil {
		return models.User{}, service.ErrInvalidDataProvided
	}
	return m.registerFn(ctx, user, password)
}

func (m *mockAuthService) Login(ctx context.Context, identifier, password string) (models.User, error) {
	if m.loginFn == nil {
		return models.User{}, service.ErrInvalidCredentials
	}
	return m.loginFn(ctx, identifier, password)
}

func (m *mockAuthService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	if m.createTokenFn == nil {
		return models.Token{SignedString: "stub.jwt.token", UserID: user.UserID}, nil
	}
	return m.createTokenFn(ctx, user)
}

func (m *mockAuthService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	if m.parseTokenFn == nil {
		return models.Token{}, service.ErrTokenIsExpiredOrInvalid
	}
	return m.parseTokenFn(ctx, tokenString)
}

// ─────────────────────────────────────────────
// Mock CatalogService
// ─────────────────────────────────────────────

type mockCatalogService struct {
	hasPermissionFn     func(ctx context.Context, userID int64, permissionSlug string) (bool, error)
	createRoleFn        func(ctx context.Context, role models.Role) (models.Role, error)
	listRolesFn         func(ctx context.Context) ([]models.Role, error)
	getRoleFn           func(ctx context.Context, roleID int64) (models.Role, error)
	updateRoleFn        func(ctx context.Context, role models.Role) error
	deleteRoleFn        func(ctx context.Context, roleID int64) error
	setDefaultRoleFn    func(ctx context.Context, roleID int64) error
	rolePermissionsFn   func(ctx context.Context, roleID int64) ([]models.Permission, error)
	assignPermissionsFn func(ctx context.Context, roleID int64, permissionIDs []int64) error
	createPermissionFn  func(ctx context.Context, permission models.Permission) (models.Permission, error)
	listPermissionsFn   func(ctx context.Context) ([]models.Permission, error)
	deletePermissionFn  func(ctx context.Context, permissionID int64) error
}

func (m *mockCatalogService) HasPermission(ctx context.Context, userID int64, permissionSlug string) (bool, error) {
	if m.hasPermissionFn == nil {
		return false, nil
	}
	return m.hasPermissionFn(ctx, userID, permissionSlug)
}

func (m *mockCatalogService) CreateRole(ctx context.Context, role models.Role) (models.Role, error) {
	if m.createRoleFn == nil {
		return role, nil
	}
	return m.createRoleFn(ctx, role)
}

func (m *mockCatalogService) ListRoles(ctx context.Context) ([]models.Role, error) {
	if m.listRolesFn == nil {
		return nil, nil
	}
	return m.listRolesFn(ctx)
}

func (m *mockCatalogService) GetRole(ctx context.Context, roleID int64) (models.Role, error) {
	if m.getRoleFn == nil {
		return models.Role{}, store.ErrRoleNotFound
	}
	return m.getRoleFn(ctx, roleID)
}

func (m *mockCatalogService) UpdateRole(ctx context.Context, role models.Role) error {
	if m.updateRoleFn == nil {
		return nil
	}
	return m.updateRoleFn(ctx, role)
}

func (m *mockCatalogService) DeleteRole(ctx context.Context, roleID int64) error {
	if m.deleteRoleFn == nil {
		return nil
	}
	return m.deleteRoleFn(ctx, roleID)
}

func (m *mockCatalogService) SetDefaultRole(ctx context.Context, roleID int64) error {
	if m.setDefaultRoleFn == nil {
		return nil
	}
	return m.setDefaultRoleFn(ctx, roleID)
}

func (m *mockCatalogService) RolePermissions(ctx context.Context, roleID int64) ([]models.Permission, error) {
	if m.rolePermissionsFn == nil {
		return nil, nil
	}
	return m.rolePermissionsFn(ctx, roleID)
}

func (m *mockCatalogService) AssignPermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	if m.assignPermissionsFn == nil {
		return nil
	}
	return m.assignPermissionsFn(ctx, roleID, permissionIDs)
}

func (m *mockCatalogService) CreatePermission(ctx context.Context, permission models.Permission) (models.Permission, error) {
	if m.createPermissionFn == nil {
		return permission, nil
	}
	return m.createPermissionFn(ctx, permission)
}

func (m *mockCatalogService) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	if m.listPermissionsFn == nil {
		return nil, nil
	}
	return m.listPermissionsFn(ctx)
}

func (m *mockCatalogService) DeletePermission(ctx context.Context, permissionID int64) error {
	if m.deletePermissionFn == nil {
		return nil
	}
	return m.deletePermissionFn(ctx, permissionID)
}

// ─────────────────────────────────────────────
// Mock UserService
// ─────────────────────────────────────────────

type mockUserService struct {
	getUserFn       func(ctx context.Context, userID int64) (models.User, error)
	listUsersFn     func(ctx context.Context, filter store.UserFilter) ([]models.User, error)
	updateUserFn    func(ctx context.Context, update models.UserUpdate) error
	deleteUserFn    func(ctx context.Context, userID int64) error
	touchActivityFn func(ctx context.Context, userID int64)

	touched []int64
}

func (m *mockUserService) GetUser(ctx context.Context, userID int64) (models.User, error) {
	if m.getUserFn == nil {
		return models.User{}, store.ErrUserNotFound
	}
	return m.getUserFn(ctx, userID)
}

func (m *mockUserService) ListUsers(ctx context.Context, filter store.UserFilter) ([]models.User, error) {
	if m.listUsersFn == nil {
		return nil, nil
	}
	return m.listUsersFn(ctx, filter)
}

func (m *mockUserService) UpdateUser(ctx context.Context, update models.UserUpdate) error {
	if m.updateUserFn == nil {
		return nil
	}
	return m.updateUserFn(ctx, update)
}

func (m *mockUserService) DeleteUser(ctx context.Context, userID int64) error {
	if m.deleteUserFn == nil {
		return nil
	}
	return m.deleteUserFn(ctx, userID)
}

func (m *mockUserService) TouchActivity(ctx context.Context, userID int64) {
	m.touched = append(m.touched, userID)
	if m.touchActivityFn != nil {
		m.touchActivityFn(ctx, userID)
	}
}

// ─────────────────────────────────────────────
// Mock ResetService
// ─────────────────────────────────────────────

type mockResetService struct {
	requestResetFn  func(ctx context.Context, email string) error
	resetPasswordFn func(ctx context.Context, token, newPassword string) error
}

func (m *mockResetService) RequestReset(ctx context.Context, email string) error {
	if m.requestResetFn == nil {
		return nil
	}
	return m.requestResetFn(ctx, email)
}

func (m *mockResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if m.resetPasswordFn == nil {
		return service.ErrResetTokenInvalid
	}
	return m.resetPasswordFn(ctx, token, newPassword)
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

// testFixture bundles a Handler with its backing fakes so tests can reach
// into the session store and limiter directly.
type testFixture struct {
	handler  *Handler
	sessions *session.Manager
	cache    *cache.MemoryCache
	users    *mockUserService
}

func testGateConfig() config.StructuredConfig {
	return config.StructuredConfig{
		Auth: config.Auth{SessionTTL: 30 * time.Minute},
		RateLimit: config.RateLimit{
			General:       config.Bucket{Max: 100, Window: time.Minute},
			Login:         config.Bucket{Max: 3, Window: 15 * time.Minute, Lockout: 15 * time.Minute},
			Register:      config.Bucket{Max: 5, Window: time.Hour},
			PasswordReset: config.Bucket{Max: 3, Window: time.Hour},
			API:           config.Bucket{Max: 50, Window: time.Minute},
		},
		Gate: config.Gate{
			ProtectedPrefixes:  []string{"/api/dashboard", "/api/admin", "/api/auth/logout", "/api/auth/session"},
			CSRFExemptPrefixes: []string{"/webhooks/"},
		},
	}
}

// newTestHandler builds a Handler over in-memory state and the given service
// mocks. Nil mocks fall back to safe defaults.
func newTestHandler(services *service.Services) *testFixture {
	if services.AuthService == nil {
		services.AuthService = &mockAuthService{}
	}
	if services.CatalogService == nil {
		services.CatalogService = &mockCatalogService{}
	}
	users, _ := services.UserService.(*mockUserService)
	if services.UserService == nil {
		users = &mockUserService{}
		services.UserService = users
	}
	if services.ResetService == nil {
		services.ResetService = &mockResetService{}
	}

	log := logger.Nop()
	cfg := testGateConfig()
	mem := cache.NewMemoryCache()
	sessions := session.NewManager(mem, cfg.Auth.SessionTTL, log)
	limiter := ratelimit.NewLimiter(cfg.RateLimit, mem, log)

	return &testFixture{
		handler:  NewHandler(services, sessions, limiter, cfg, HealthChecks{}, log),
		sessions: sessions,
		cache:    mem,
		users:    users,
	}
}

// activeUser is a convenience fixture used across multiple tests.
var activeUser = models.User{
	UserID:   7,
	Username: "alice",
	Email:    "alice@example.com",
	Name:     "Alice",
	RoleID:   2,
	RoleSlug: models.RoleSlugManager,
	IsActive: true,
}
