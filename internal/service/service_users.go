package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/internal/store"
	"github.com/MKhiriev/go-access-gate/models"
	"golang.org/x/crypto/bcrypt"
)

// userService is the concrete implementation of UserService, covering the
// administrative user operations behind the users.* permissions.
type userService struct {
	userRepository store.UserRepository
	roleRepository store.RoleRepository
	bcryptCost     int
	logger         *logger.Logger
}

// NewUserService constructs a UserService over the given repositories.
func NewUserService(userRepository store.UserRepository, roleRepository store.RoleRepository, bcryptCost int, logger *logger.Logger) UserService {
	return &userService{
		userRepository: userRepository,
		roleRepository: roleRepository,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

func (u *userService) GetUser(ctx context.Context, userID int64) (models.User, error) {
	return u.userRepository.FindUserByID(ctx, userID)
}

func (u *userService) ListUsers(ctx context.Context, filter store.UserFilter) ([]models.User, error) {
	return u.userRepository.ListUsers(ctx, filter)
}

// UpdateUser applies a partial administrative update. Identity fields are
// normalized the same way registration normalizes them, role changes are
// checked against the catalog, and a new password is bcrypt-hashed before
// it replaces the plaintext in the update.
func (u *userService) UpdateUser(ctx context.Context, update models.UserUpdate) error {
	log := logger.FromContext(ctx)

	if update.UserID <= 0 {
		return ErrInvalidDataProvided
	}

	if update.Username != nil {
		trimmed := strings.TrimSpace(*update.Username)
		if trimmed == "" {
			return ErrInvalidDataProvided
		}
		update.Username = &trimmed
	}
	if update.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*update.Email))
		if !strings.Contains(normalized, "@") {
			return ErrInvalidDataProvided
		}
		update.Email = &normalized
	}
	if update.RoleID != nil {
		if _, err := u.roleRepository.FindRoleByID(ctx, *update.RoleID); err != nil {
			return err
		}
	}
	if update.PasswordHash != nil {
		if len(*update.PasswordHash) < minPasswordLength {
			return ErrPasswordTooWeak
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*update.PasswordHash), u.bcryptCost)
		if err != nil {
			log.Err(err).Msg("password hashing failed")
			return fmt.Errorf("password hashing failed: %w", err)
		}
		hashed := string(hash)
		update.PasswordHash = &hashed
	}

	if err := u.userRepository.UpdateUser(ctx, update); err != nil {
		log.Err(err).Int64("user_id", update.UserID).Msg("user update ended with error")
		return err
	}

	return nil
}

func (u *userService) DeleteUser(ctx context.Context, userID int64) error {
	return u.userRepository.SoftDeleteUser(ctx, userID)
}

// TouchActivity stamps the user's last activity. Failures are logged inside
// the repository and never surface to the request.
func (u *userService) TouchActivity(ctx context.Context, userID int64) {
	_ = u.userRepository.UpdateLastActivity(ctx, userID)
}
