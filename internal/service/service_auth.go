package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-access-gate/internal/config"
	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/internal/store"
	"github.com/MKhiriev/go-access-gate/internal/utils"
	"github.com/MKhiriev/go-access-gate/models"
	"golang.org/x/crypto/bcrypt"
)

// minPasswordLength is the floor for new passwords at registration and reset.
const minPasswordLength = 8

// authService is the concrete implementation of AuthService.
// It handles account registration, credential verification with failure
// escalation, and JWT bearer token lifecycle. Passwords are stored as bcrypt
// hashes; the work factor comes from configuration.
type authService struct {
	// userRepository is the data-access layer used to create and look up users.
	userRepository store.UserRepository

	// roleRepository resolves the registration default role.
	roleRepository store.RoleRepository

	// bcryptCost is the bcrypt work factor applied to new password hashes.
	bcryptCost int

	// maxLoginAttempts is the failure count at which an account locks.
	maxLoginAttempts int

	// accountLockDuration is how long a locked account stays locked.
	accountLockDuration time.Duration

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	// Tokens whose issuer does not match this value are rejected during parsing.
	tokenIssuer string

	// tokenDuration controls how long a newly issued JWT remains valid.
	tokenDuration time.Duration

	// logger is the structured logger used for diagnostic and error output.
	logger *logger.Logger
}

// NewAuthService constructs a new AuthService wired to the given repositories
// and populated with security parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only after
// construction.
func NewAuthService(userRepository store.UserRepository, roleRepository store.RoleRepository, cfg config.Auth, logger *logger.Logger) AuthService {
	return &authService{
		userRepository:      userRepository,
		roleRepository:      roleRepository,
		bcryptCost:          cfg.BcryptCost,
		maxLoginAttempts:    cfg.MaxLoginAttempts,
		accountLockDuration: cfg.AccountLockDuration,
		tokenSignKey:        cfg.TokenSignKey,
		tokenIssuer:         cfg.TokenIssuer,
		tokenDuration:       cfg.TokenDuration,
		logger:              logger,
	}
}

// Register creates a new user account carrying the registration default role.
//
// It validates the identity fields and password strength, hashes the password
// with bcrypt, and delegates persistence to the UserRepository. The caller
// never chooses a role here: whatever role is marked as default is assigned.
//
// Returns the persisted user (with a server-assigned UserID) or:
//   - ErrInvalidDataProvided if username, email, or name is unusable.
//   - ErrPasswordTooWeak if the password is below the minimum length.
//   - store.ErrNoDefaultRole if no registration role is configured.
//   - A wrapped storage error if the repository call fails (e.g. username
//     already taken — see store.ErrUsernameTaken, store.ErrEmailTaken).
func (a *authService) Register(ctx context.Context, user models.User, password string) (models.User, error) {
	log := logger.FromContext(ctx)

	user.Username = strings.TrimSpace(user.Username)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Name = strings.TrimSpace(user.Name)

	if user.Username == "" || user.Name == "" || !strings.Contains(user.Email, "@") {
		log.Error().Str("username", user.Username).Str("email", user.Email).Msg("invalid user data provided")
		return models.User{}, ErrInvalidDataProvided
	}
	if len(password) < minPasswordLength {
		return models.User{}, ErrPasswordTooWeak
	}

	defaultRole, err := a.roleRepository.FindDefaultRole(ctx)
	if err != nil {
		log.Err(err).Msg("default role lookup failed")
		return models.User{}, fmt.Errorf("default role lookup failed: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if err != nil {
		log.Err(err).Msg("password hashing failed")
		return models.User{}, fmt.Errorf("password hashing failed: %w", err)
	}

	user.PasswordHash = string(hash)
	user.RoleID = defaultRole.RoleID
	user.RoleSlug = defaultRole.Slug
	user.IsActive = true

	registeredUser, err := a.userRepository.CreateUser(ctx, user)
	if err != nil {
		log.Err(err).Str("username", user.Username).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	return registeredUser, nil
}

// Login authenticates an existing user by username or email.
//
// Lock state and the active flag are checked before the password so that a
// locked or disabled account rejects even correct credentials. A failed
// password comparison counts toward the account lock; a successful login
// clears the counter and stamps last_login.
//
// Returns the authenticated user record or:
//   - ErrInvalidDataProvided if identifier or password is empty.
//   - ErrInvalidCredentials for an unknown identifier or wrong password.
//   - ErrAccountLocked while the failure lock is in effect.
//   - ErrAccountDisabled for deactivated accounts.
func (a *authService) Login(ctx context.Context, identifier, password string) (models.User, error) {
	log := logger.FromContext(ctx)

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return models.User{}, ErrInvalidDataProvided
	}

	foundUser, err := a.userRepository.FindUserByIdentifier(ctx, identifier)
	if err != nil {
		if err == store.ErrUserNotFound {
			return models.User{}, ErrInvalidCredentials
		}
		log.Err(err).Msg("user search by identifier failed")
		return models.User{}, fmt.Errorf("user search by identifier failed: %w", err)
	}

	if foundUser.IsLocked(time.Now()) {
		log.Warn().Int64("user_id", foundUser.UserID).Msg("login attempt on locked account")
		return models.User{}, ErrAccountLocked
	}
	if !foundUser.IsActive {
		log.Warn().Int64("user_id", foundUser.UserID).Msg("login attempt on disabled account")
		return models.User{}, ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(foundUser.PasswordHash), []byte(password)); err != nil {
		if recordErr := a.userRepository.RecordLoginFailure(ctx, foundUser.UserID, a.maxLoginAttempts, a.accountLockDuration); recordErr != nil {
			log.Err(recordErr).Int64("user_id", foundUser.UserID).Msg("recording login failure failed")
		}
		log.Warn().Int64("user_id", foundUser.UserID).Msg("wrong password")
		return models.User{}, ErrInvalidCredentials
	}

	if err := a.userRepository.RecordLoginSuccess(ctx, foundUser.UserID); err != nil {
		log.Err(err).Int64("user_id", foundUser.UserID).Msg("recording login success failed")
	}

	return foundUser, nil
}

// CreateToken issues a signed JWT for the given user.
//
// The token is signed with the configured tokenSignKey, carries the configured
// tokenIssuer as the "iss" claim and the user's role slug as the "role" claim,
// and expires after tokenDuration.
//
// Returns the token model on success or a wrapped error if JWT generation fails.
func (a *authService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	token, err := utils.GenerateJWTToken(a.tokenIssuer, user.UserID, user.RoleSlug, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken validates and parses a raw JWT string.
//
// It delegates to utils.ValidateAndParseJWTToken, verifying the signature and
// the issuer claim. Any validation failure (expired, wrong issuer, malformed)
// is normalised to ErrTokenIsExpiredOrInvalid so that callers do not need to
// inspect low-level JWT errors.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}
