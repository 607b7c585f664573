package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/amyangfei/redlock-go/v3/redlock"
	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/selivandex/catalog-ranker/internal/adapters/config"
	"github.com/selivandex/catalog-ranker/pkg/logger"
)

const (
	lockRetryCount       = 1
	lockRetryDelayMillis = 50
)

// Client holds the redlock manager plus a plain client for health checks
type Client struct {
	lockManager *redlock.RedLock
	conn        *redis.Client
	lockTTL     time.Duration
}

// New connects to Redis
func New(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Single instance; a redlock quorum would list several addresses here
	redisAddrs := []string{"tcp://" + cfg.GetAddr()}

	lockManager, err := redlock.NewRedLock(ctx, redisAddrs)
	if err != nil {
		return nil, fmt.Errorf("failed to create redlock manager: %w", err)
	}
	// single attempt; a refused lock serves the stored score
	lockManager.SetRetryCount(lockRetryCount)
	lockManager.SetRetryDelay(lockRetryDelayMillis)

	conn := redis.NewClient(&redis.Options{
		Addr:         cfg.GetAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     4,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("redis lock manager initialized",
		zap.String("address", cfg.GetAddr()),
		zap.Duration("lock_ttl", cfg.LockTTL),
	)

	return &Client{lockManager: lockManager, conn: conn, lockTTL: cfg.LockTTL}, nil
}

// LockFactory returns a factory for per-item score locks
func (c *Client) LockFactory() LockFactory {
	return NewRedisLockFactory(c.lockManager, c.lockTTL, c.Ping)
}

// Ping checks the connection within ctx
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.conn.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Health pings redis
func (c *Client) Health() error {
	if err := c.Ping(context.Background()); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// Close closes redis connections
func (c *Client) Close() error {
	logger.Info("closing redis client")
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("failed to close redis: %w", err)
	}
	return nil
}
