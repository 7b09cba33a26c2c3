package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/internal/store"
	"github.com/MKhiriev/go-access-gate/internal/utils"
	"github.com/MKhiriev/go-access-gate/models"
	"golang.org/x/crypto/bcrypt"
)

// resetService is the concrete implementation of ResetService.
//
// The flow stores only SHA-256 digests of tokens, keeps at most one active
// token per email, and consumes tokens atomically so a token can never
// authorize two resets.
type resetService struct {
	userRepository       store.UserRepository
	resetTokenRepository store.ResetTokenRepository
	notifier             ResetNotifier
	tokenTTL             time.Duration
	bcryptCost           int
	logger               *logger.Logger
}

// NewResetService constructs a ResetService. A nil notifier falls back to
// the logging notifier.
func NewResetService(userRepository store.UserRepository, resetTokenRepository store.ResetTokenRepository, notifier ResetNotifier, tokenTTL time.Duration, bcryptCost int, logger *logger.Logger) ResetService {
	if notifier == nil {
		notifier = &logNotifier{logger: logger}
	}
	return &resetService{
		userRepository:       userRepository,
		resetTokenRepository: resetTokenRepository,
		notifier:             notifier,
		tokenTTL:             tokenTTL,
		bcryptCost:           bcryptCost,
		logger:               logger,
	}
}

// RequestReset issues a reset token for the account behind email.
//
// The outcome is identical for known and unknown addresses: nil either way,
// so responses cannot be used to enumerate accounts. For a known address the
// previous token (if any) is invalidated, the new token's hash is stored,
// and the plaintext goes to the notifier.
func (r *resetService) RequestReset(ctx context.Context, email string) error {
	log := logger.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return ErrInvalidDataProvided
	}

	user, err := r.userRepository.FindUserByIdentifier(ctx, email)
	if err != nil {
		if err == store.ErrUserNotFound {
			log.Info().Msg("reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("user search by email failed: %w", err)
	}

	token, tokenHash, err := utils.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("reset token generation failed: %w", err)
	}

	expiresAt := time.Now().Add(r.tokenTTL)
	if err := r.resetTokenRepository.CreateResetToken(ctx, user.Email, tokenHash, expiresAt); err != nil {
		log.Err(err).Msg("reset token storage failed")
		return fmt.Errorf("reset token storage failed: %w", err)
	}

	if err := r.notifier.SendResetToken(ctx, user.Email, token); err != nil {
		log.Err(err).Msg("reset token delivery failed")
		return fmt.Errorf("reset token delivery failed: %w", err)
	}

	return nil
}

// ResetPassword consumes the token and replaces the account password.
//
// Returns:
//   - ErrPasswordTooWeak if the new password is below the minimum length.
//   - ErrResetTokenInvalid for an unknown, expired, or already used token.
func (r *resetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	log := logger.FromContext(ctx)

	if token == "" {
		return ErrResetTokenInvalid
	}
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooWeak
	}

	email, err := r.resetTokenRepository.ConsumeResetToken(ctx, utils.HashToken(token))
	if err != nil {
		if err == store.ErrResetTokenInvalid {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("reset token consumption failed: %w", err)
	}

	user, err := r.userRepository.FindUserByIdentifier(ctx, email)
	if err != nil {
		log.Err(err).Msg("user lookup after token consumption failed")
		return fmt.Errorf("user lookup after token consumption failed: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), r.bcryptCost)
	if err != nil {
		return fmt.Errorf("password hashing failed: %w", err)
	}
	hashed := string(hash)

	update := models.UserUpdate{UserID: user.UserID, PasswordHash: &hashed}
	if err := r.userRepository.UpdateUser(ctx, update); err != nil {
		log.Err(err).Int64("user_id", user.UserID).Msg("password update ended with error")
		return fmt.Errorf("password update ended with error: %w", err)
	}

	// a successful reset also ends any failure lockout
	if err := r.userRepository.RecordLoginSuccess(ctx, user.UserID); err != nil {
		log.Warn().Err(err).Int64("user_id", user.UserID).Msg("clearing login failures after reset failed")
	}

	return nil
}

// logNotifier writes the reset token to the application log. It stands in
// for a mail integration in development and test environments.
type logNotifier struct {
	logger *logger.Logger
}

func (n *logNotifier) SendResetToken(_ context.Context, email, token string) error {
	n.logger.Info().Str("email", email).Str("token", token).Msg("password reset token issued")
	return nil
}
