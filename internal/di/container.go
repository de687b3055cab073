package di

import (
	"context"
	"fmt"
	"sync"

	"recordstore/internal/auth"
	authconfig "recordstore/internal/auth/config"
	"recordstore/internal/records"
	"recordstore/internal/records/adapter/authclient"
	"recordstore/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container owns the application's modules and shared connections and tears
// them down in reverse order of initialization.
type Container struct {
	mu sync.RWMutex

	AuthModule    *auth.Module
	RecordsModule *records.Module

	MongoClient *mongo.Client
	RedisClient *redis.Client

	AuthConfig *authconfig.Config
	Logger     logger.Logger
}

// NewContainer creates an empty container.
func NewContainer(log logger.Logger) *Container {
	return &Container{Logger: log}
}

// InitializeAuth wires the auth module over the metadata database. Must run
// before InitializeRecords.
func (c *Container) InitializeAuth(mongoClient *mongo.Client, cfg *authconfig.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.MongoClient = mongoClient
	c.AuthConfig = cfg

	module, err := auth.NewModule(mongoClient.Database(cfg.DatabaseName), cfg, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}
	c.AuthModule = module
	return nil
}

// InitializeRecords wires the records module over the shared connections and
// the auth module's usecase.
func (c *Container) InitializeRecords(redisClient *redis.Client) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.AuthModule == nil {
		return fmt.Errorf("auth module must be initialized before the records module")
	}
	if c.MongoClient == nil {
		return fmt.Errorf("MongoDB must be connected before the records module")
	}

	c.RedisClient = redisClient
	authClient := authclient.NewAdapter(c.AuthModule.Usecase)

	module, err := records.NewModule(authClient, c.MongoClient, redisClient, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create records module: %w", err)
	}
	c.RecordsModule = module
	return nil
}

// HealthCheck pings the shared connections.
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoClient != nil {
		if err := c.MongoClient.Ping(ctx, nil); err != nil {
			return fmt.Errorf("mongodb health check failed: %w", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis health check failed: %w", err)
		}
	}
	return nil
}

// Close shuts modules and connections down in reverse order.
func (c *Container) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	if c.RecordsModule != nil {
		c.RecordsModule.Stop()
		c.RecordsModule = nil
	}
	c.AuthModule = nil

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
		c.RedisClient = nil
	}
	if c.MongoClient != nil {
		if err := c.MongoClient.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to disconnect mongodb: %w", err))
		}
		c.MongoClient = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}
	return nil
}
