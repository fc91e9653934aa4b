// Package config loads and validates application configuration from the
// environment and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	// EnvDevelopment is the only environment where missing token secrets are
	// tolerated (ephemeral ones are generated at startup instead).
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// AppName is used for the startup banner and logger context.
	AppName string `mapstructure:"APP_NAME"`
	// Addr is the address the HTTP server listens on (e.g. :8080).
	Addr string `mapstructure:"ADDR"`
	// Env is the application environment ("development", "staging", "production").
	Env string `mapstructure:"APP_ENV"`
	// DatabaseURL is the Postgres DSN for the session and user stores.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// AccessTokenSecret signs access tokens. Never shared with refresh tokens.
	AccessTokenSecret string `mapstructure:"ACCESS_TOKEN_SECRET"`
	// RefreshTokenSecret signs refresh tokens.
	RefreshTokenSecret string `mapstructure:"REFRESH_TOKEN_SECRET"`
	// AccessTokenTTL is the access token lifetime (e.g. "15m").
	AccessTokenTTL time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	// RefreshTokenTTL is the refresh token and session lifetime (e.g. "168h").
	RefreshTokenTTL time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`

	// BcryptCost is the bcrypt cost factor used when hashing passwords.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment. Env vars override .env. A missing .env is ignored (e.g. in CI).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("APP_NAME", "Civic Auth")
	v.SetDefault("ADDR", ":8080")
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("DATABASE_URL", "")
	// Secrets have no real default; registering the keys lets AutomaticEnv
	// surface them through Unmarshal.
	v.SetDefault("ACCESS_TOKEN_SECRET", "")
	v.SetDefault("REFRESH_TOKEN_SECRET", "")
	v.SetDefault("ACCESS_TOKEN_TTL", "15m")
	v.SetDefault("REFRESH_TOKEN_TTL", "168h") // 7d
	v.SetDefault("BCRYPT_COST", 12)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate enforces invariants that must hold before the server starts.
// Token secrets are never defaulted in code: outside development a missing
// secret is a startup failure, not a silent fallback.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("config: ADDR must be set")
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("config: ACCESS_TOKEN_TTL must be positive")
	}
	if c.RefreshTokenTTL <= c.AccessTokenTTL {
		return errors.New("config: REFRESH_TOKEN_TTL must exceed ACCESS_TOKEN_TTL")
	}
	if !c.IsDevelopment() {
		if c.AccessTokenSecret == "" {
			return errors.New("config: ACCESS_TOKEN_SECRET must be set outside development")
		}
		if c.RefreshTokenSecret == "" {
			return errors.New("config: REFRESH_TOKEN_SECRET must be set outside development")
		}
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL must be set outside development")
		}
	}
	if c.AccessTokenSecret != "" && c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("config: access and refresh token secrets must differ")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	return nil
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction reports whether the service runs in the production environment.
// Cookie Secure and SameSite=Strict attributes key off this.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}
