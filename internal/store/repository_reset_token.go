package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MKhiriev/go-access-gate/internal/logger"
)

// resetTokenRepository is the PostgreSQL-backed implementation of
// [ResetTokenRepository]. Only the SHA-256 hash of a token is ever stored;
// the plaintext exists solely in the email sent to the user.
type resetTokenRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewResetTokenRepository constructs a [ResetTokenRepository] backed by the
// provided database connection and logger.
func NewResetTokenRepository(db *DB, logger *logger.Logger) ResetTokenRepository {
	logger.Debug().Msg("creating reset token repository")
	return &resetTokenRepository{
		db:     db,
		logger: logger,
	}
}

// CreateResetToken stores a new reset token hash for email, invalidating any
// earlier token for the same address. Delete and insert run in one
// transaction so the address always has at most one usable token.
func (r *resetTokenRepository) CreateResetToken(ctx context.Context, email, tokenHash string, expiresAt time.Time) error {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*resetTokenRepository.CreateResetToken").Msg("error: beginning transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteResetTokensForEmail, email); err != nil {
		log.Err(err).Str("func", "*resetTokenRepository.CreateResetToken").Msg("error: deleting previous tokens")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if _, err := tx.ExecContext(ctx, createResetToken, email, tokenHash, expiresAt); err != nil {
		log.Err(err).Str("func", "*resetTokenRepository.CreateResetToken").Msg("error: inserting token")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if err := tx.Commit(); err != nil {
		log.Err(err).Str("func", "*resetTokenRepository.CreateResetToken").Msg("error: committing transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return nil
}

// ConsumeResetToken atomically marks the token matching tokenHash as used
// and returns the email it belongs to. The UPDATE's WHERE clause checks
// existence, expiry, and prior use in one statement, so two concurrent
// consumers cannot both succeed.
//
// Any miss, whether the token is unknown, expired, or already used, yields
// the same [ErrResetTokenInvalid] so callers cannot probe which case it was.
func (r *resetTokenRepository) ConsumeResetToken(ctx context.Context, tokenHash string) (string, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, consumeResetToken, tokenHash)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*resetTokenRepository.ConsumeResetToken").Msg("error: row is nil")
		return "", fmt.Errorf("unexpected DB error: %w", err)
	}

	var email string
	if err := row.Scan(&email); err != nil {
		if err == sql.ErrNoRows {
			return "", ErrResetTokenInvalid
		}
		log.Err(err).Str("func", "*resetTokenRepository.ConsumeResetToken").Msg("error: scanning error")
		return "", err
	}

	return email, nil
}
