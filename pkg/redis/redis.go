package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kasbino/kasbino-backend/config"
	"github.com/kasbino/kasbino-backend/pkg/logger"
)

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established", nil)
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

// BlacklistToken adds a token to the blacklist
func BlacklistToken(ctx context.Context, token string, expiry time.Duration) error {
	key := fmt.Sprintf("blacklist:%s", token)
	err := client.Set(ctx, key, "revoked", expiry).Err()
	if err != nil {
		logger.Error("Failed to blacklist token", err, nil)
		return err
	}
	return nil
}

// IsTokenBlacklisted checks if a token is in the blacklist
func IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	key := fmt.Sprintf("blacklist:%s", token)
	val, err := client.Get(ctx, key).Result()

	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to check token blacklist", err, nil)
		return false, err
	}

	return val == "revoked", nil
}

// IncrementBusinessViews counts one page view. The counters live in
// Redis until the scheduler flushes them into the businesses table.
func IncrementBusinessViews(ctx context.Context, businessID uint) error {
	key := fmt.Sprintf("views:business:%d", businessID)
	return client.Incr(ctx, key).Err()
}

// DrainBusinessViews atomically collects and resets all pending view
// counters, returning businessID -> accumulated views.
func DrainBusinessViews(ctx context.Context) (map[uint]uint64, error) {
	counts := make(map[uint]uint64)

	var cursor uint64
	for {
		keys, next, err := client.Scan(ctx, cursor, "views:business:*", 100).Result()
		if err != nil {
			return nil, err
		}

		for _, key := range keys {
			val, err := client.GetDel(ctx, key).Result()
			if err == redis.Nil {
				continue
			}
			if err != nil {
				return nil, err
			}

			var businessID uint64
			if _, err := fmt.Sscanf(key, "views:business:%d", &businessID); err != nil {
				continue
			}
			count, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				continue
			}
			counts[uint(businessID)] += count
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return counts, nil
}
