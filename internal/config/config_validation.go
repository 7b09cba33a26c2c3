// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "golang.org/x/crypto/bcrypt"

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.RequestTimeout <= 0 {
		return ErrInvalidServerConfigs
	}

	if cfg.Auth.TokenSignKey == "" || cfg.Auth.SessionTTL <= 0 {
		return ErrInvalidAuthConfigs
	}

	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		return ErrInvalidAuthConfigs
	}

	for _, bucket := range []Bucket{
		cfg.RateLimit.General,
		cfg.RateLimit.Login,
		cfg.RateLimit.Register,
		cfg.RateLimit.PasswordReset,
		cfg.RateLimit.API,
	} {
		if bucket.Max < 1 || bucket.Window <= 0 {
			return ErrInvalidRateLimitConfigs
		}
	}

	return nil
}
