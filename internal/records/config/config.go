package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v6"
)

// RealtimeConfig holds configuration specific to the realtime change feed.
type RealtimeConfig struct {
	// WebSocketPath is the endpoint path for WebSocket connections.
	WebSocketPath string `env:"WEBSOCKET_PATH" envDefault:"/api/v1/ws/listen"`

	// ClientSendChannelBuffer is the buffer size for channels delivering
	// events to WebSocket clients. A slow client drops events instead of
	// blocking the dispatcher.
	ClientSendChannelBuffer int `env:"CLIENT_SEND_CHANNEL_BUFFER" envDefault:"10"`
}

// Config holds all configuration for the records module.
type Config struct {
	MongoDBURI string `env:"MONGODB_URI"`

	// MetadataDatabase is the deployment-wide database holding projects,
	// users and API tokens.
	MetadataDatabase string `env:"METADATA_DATABASE" envDefault:"recordstore_meta"`

	// ProjectDBPrefix namespaces the per-project container databases.
	ProjectDBPrefix string `env:"PROJECT_DB_PREFIX" envDefault:"rs_"`

	// WriteLockTimeout bounds how long an operation waits for a collection's
	// write lock before failing with LOCK_TIMEOUT.
	WriteLockTimeout time.Duration `env:"WRITE_LOCK_TIMEOUT" envDefault:"10s"`

	// ChangeLogMaxLength caps the retained change events per collection
	// stream.
	ChangeLogMaxLength int64 `env:"CHANGE_LOG_MAX_LENGTH" envDefault:"10000"`

	Realtime RealtimeConfig
}

// LoadConfig loads configuration from environment variables and applies
// defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load records configuration from environment: " + err.Error())
	}
	if err := env.Parse(&cfg.Realtime); err != nil {
		return nil, errors.New("failed to load realtime configuration from environment: " + err.Error())
	}

	if cfg.MongoDBURI == "" {
		return nil, errors.New("MONGODB_URI environment variable is not set")
	}
	if cfg.Realtime.ClientSendChannelBuffer <= 0 {
		cfg.Realtime.ClientSendChannelBuffer = 10
	}
	return cfg, nil
}

// DefaultConfig returns a Config with local-development defaults.
func DefaultConfig() *Config {
	return &Config{
		MongoDBURI:         "mongodb://localhost:27017",
		MetadataDatabase:   "recordstore_meta",
		ProjectDBPrefix:    "rs_",
		WriteLockTimeout:   10 * time.Second,
		ChangeLogMaxLength: 10000,
		Realtime: RealtimeConfig{
			WebSocketPath:           "/api/v1/ws/listen",
			ClientSendChannelBuffer: 10,
		},
	}
}
