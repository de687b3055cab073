package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds all configuration for the auth module.
type Config struct {
	// MongoDB Configuration. The auth collections live in the deployment's
	// metadata database next to the project entries.
	MongoDBURI   string `env:"MONGODB_URI"`
	DatabaseName string `env:"METADATA_DATABASE" envDefault:"recordstore_meta"`

	// JWT Configuration
	JWTSecretKey    string        `env:"JWT_SECRET_KEY"`
	JWTIssuer       string        `env:"JWT_ISSUER" envDefault:"recordstore-auth"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	// BcryptCost controls password hashing strength.
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
}

// LoadConfig loads configuration from environment variables and applies
// defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load auth configuration from environment: " + err.Error())
	}
	if cfg.MongoDBURI == "" {
		return nil, errors.New("MONGODB_URI environment variable is not set")
	}
	if cfg.JWTSecretKey == "" {
		return nil, errors.New("JWT_SECRET_KEY environment variable is not set")
	}
	return cfg, nil
}
