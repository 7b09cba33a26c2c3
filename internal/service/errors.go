package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrInvalidCredentials covers both unknown identifier and wrong
	// password, so a caller cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrAccountLocked   = errors.New("account is temporarily locked")
	ErrAccountDisabled = errors.New("account is disabled")

	ErrPasswordTooWeak = errors.New("password does not meet minimum requirements")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	ErrResetTokenInvalid = errors.New("reset token is expired or invalid")
)
