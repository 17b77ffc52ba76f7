package cache

import (
	"context"
	"os"
	"time"

	"contact-book/config"

	"github.com/redis/go-redis/v9"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// InitializeCache connects to the configured Redis server.
// It returns nil when no address is configured; an unreachable server exits the process.
func InitializeCache(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		logger.Info("No Redis address configured, sessions are kept in memory")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("Failed to initialize cache:", zap.Error(err), zap.String("addr", cfg.RedisAddr))
		client.Close()
		os.Exit(1)
	}

	logger.Info("Cache initialized successfully", zap.String("addr", cfg.RedisAddr))
	return client
}
