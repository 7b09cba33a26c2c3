package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] for the JSON file source.
// Durations are declared through the [Duration] wrapper so the file can
// carry human-readable values like "30m" alongside raw nanosecond numbers.
type StructuredJSONConfig struct {
	Auth struct {
		BcryptCost          int      `json:"bcrypt_cost"`
		SessionTTL          Duration `json:"session_ttl"`
		TokenSignKey        string   `json:"token_sign_key"`
		TokenIssuer         string   `json:"token_issuer"`
		TokenDuration       Duration `json:"token_duration"`
		ResetTokenTTL       Duration `json:"reset_token_ttl"`
		MaxLoginAttempts    int      `json:"max_login_attempts"`
		AccountLockDuration Duration `json:"account_lock_duration"`
	} `json:"auth,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`

		Cache struct {
			Addr     string `json:"addr"`
			Password string `json:"password"`
			DB       int    `json:"db"`
		} `json:"cache,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	RateLimit struct {
		General       JSONBucket `json:"general,omitempty"`
		Login         JSONBucket `json:"login,omitempty"`
		Register      JSONBucket `json:"register,omitempty"`
		PasswordReset JSONBucket `json:"password_reset,omitempty"`
		API           JSONBucket `json:"api,omitempty"`
	} `json:"rate_limit,omitempty"`

	Gate struct {
		ProtectedPrefixes  []string `json:"protected_prefixes"`
		CSRFExemptPrefixes []string `json:"csrf_exempt_prefixes"`
	} `json:"gate,omitempty"`
}

// JSONBucket is the JSON-file representation of a rate-limit [Bucket].
type JSONBucket struct {
	Max     int      `json:"max"`
	Window  Duration `json:"window"`
	Lockout Duration `json:"lockout"`
}

func (b JSONBucket) toBucket() Bucket {
	return Bucket{
		Max:     b.Max,
		Window:  time.Duration(b.Window),
		Lockout: time.Duration(b.Lockout),
	}
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Auth: Auth{
			BcryptCost:          jsonCfg.Auth.BcryptCost,
			SessionTTL:          time.Duration(jsonCfg.Auth.SessionTTL),
			TokenSignKey:        jsonCfg.Auth.TokenSignKey,
			TokenIssuer:         jsonCfg.Auth.TokenIssuer,
			TokenDuration:       time.Duration(jsonCfg.Auth.TokenDuration),
			ResetTokenTTL:       time.Duration(jsonCfg.Auth.ResetTokenTTL),
			MaxLoginAttempts:    jsonCfg.Auth.MaxLoginAttempts,
			AccountLockDuration: time.Duration(jsonCfg.Auth.AccountLockDuration),
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
			Cache: Cache{
				Addr:     jsonCfg.Storage.Cache.Addr,
				Password: jsonCfg.Storage.Cache.Password,
				DB:       jsonCfg.Storage.Cache.DB,
			},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		RateLimit: RateLimit{
			General:       jsonCfg.RateLimit.General.toBucket(),
			Login:         jsonCfg.RateLimit.Login.toBucket(),
			Register:      jsonCfg.RateLimit.Register.toBucket(),
			PasswordReset: jsonCfg.RateLimit.PasswordReset.toBucket(),
			API:           jsonCfg.RateLimit.API.toBucket(),
		},
		Gate: Gate{
			ProtectedPrefixes:  jsonCfg.Gate.ProtectedPrefixes,
			CSRFExemptPrefixes: jsonCfg.Gate.CSRFExemptPrefixes,
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s" as well as raw nanosecond numbers.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return errors.New("invalid duration value")
	}
}
