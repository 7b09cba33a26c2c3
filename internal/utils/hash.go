package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateResetToken produces a random password-reset token and its SHA-256
// digest. The plaintext goes into the email sent to the user; only the
// digest is ever persisted, so a database leak exposes nothing usable.
//
// Returns:
//
//	token - 32 random bytes, hex-encoded (64 characters)
//	hash  - hex-encoded SHA-256 digest of the token
func GenerateResetToken() (token string, hash string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("error generating reset token: %w", err)
	}

	token = hex.EncodeToString(raw)
	return token, HashToken(token), nil
}

// HashToken computes the hex-encoded SHA-256 digest of a token string.
// Applied to a submitted reset token before the database lookup, so the
// comparison always runs hash-to-hash.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
