package models

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Token wraps a JWT bearer token used by API clients as an alternative to
// the browser session cookie. Both paths resolve to the same identity and
// role context inside the gate.
//
// SignedString holds the compact serialized form of the token
// (header.payload.signature) ready to be transmitted in HTTP headers.
//
// UserID and RoleSlug are parsed copies of the "sub" claim and the private
// "role" claim, populated during token construction or validation so that
// downstream code does not re-parse claims.
type Token struct {
	// Token is the underlying JWT token used for signing and claim
	// inspection. Excluded from JSON serialization because only the compact
	// string form is meaningful outside the server process.
	*jwt.Token `json:"-"`

	// TokenClaims provides access to the claim set carried by the token.
	TokenClaims `json:"-"`

	// SignedString is the compact JWS representation of the token.
	SignedString string `json:"-"`

	// UserID is the owner identifier extracted from the "sub" claim.
	UserID int64 `json:"-"`
}

// TokenClaims is the claim set embedded in every issued bearer token:
// the registered claims plus the owner's role slug.
type TokenClaims struct {
	jwt.RegisteredClaims

	// RoleSlug mirrors the role resolved at issue time. The gate still
	// re-checks permissions against the catalog on every request; the claim
	// only spares a user lookup for role-prefix checks.
	RoleSlug string `json:"role"`
}

// GetUserID extracts the user identifier from the token's "sub" claim,
// parses it as a base-10 int64, and returns the result.
func (t *Token) GetUserID() (int64, error) {
	userIDString, err := t.TokenClaims.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("error extracting UserID from token: %w", err)
	}

	userID, err := strconv.ParseInt(userIDString, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error converting UserID from token to int64: %w", err)
	}

	return userID, nil
}

// String returns the compact JWS serialization of the token.
// It implements the [fmt.Stringer] interface.
func (t *Token) String() string {
	return t.SignedString
}
