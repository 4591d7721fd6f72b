// Package redis provides a Redis-backed implementation of tokencache.Cache,
// letting many client processes share one access token.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ggoodman/payments-go/tokencache"
	"github.com/joeshaw/envdecode"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "payments:tokens:"

// Config contains configuration options for the Redis cache.
type Config struct {
	// Client is the Redis client instance.
	Client *redis.Client

	// KeyPrefix is the prefix for all Redis keys.
	// Default: "payments:tokens:"
	KeyPrefix string
}

// EnvConfig is the environment-driven counterpart of Config.
type EnvConfig struct {
	// RedisAddr like "localhost:6379". ENV: REDIS_ADDR
	RedisAddr string `env:"REDIS_ADDR,default=localhost:6379"`
	// KeyPrefix for all keys. ENV: PAYMENTS_TOKEN_CACHE_PREFIX
	KeyPrefix string `env:"PAYMENTS_TOKEN_CACHE_PREFIX,default=payments:tokens:"`
}

// Cache implements tokencache.Cache using Redis.
type Cache struct {
	client    *redis.Client
	keyPrefix string
	now       func() time.Time
}

// New creates a Redis-backed cache.
func New(config Config) (*Cache, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = defaultKeyPrefix
	}
	return &Cache{client: config.Client, keyPrefix: config.KeyPrefix, now: time.Now}, nil
}

// NewFromEnv builds a Cache from REDIS_ADDR and PAYMENTS_TOKEN_CACHE_PREFIX
// and checks connectivity.
func NewFromEnv(ctx context.Context) (*Cache, error) {
	var cfg EnvConfig
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode redis env config: %w", err)
	}
	cl := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := cl.Ping(ctx).Err(); err != nil {
		_ = cl.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(Config{Client: cl, KeyPrefix: cfg.KeyPrefix})
}

func (c *Cache) Get(ctx context.Context, key string) (*tokencache.Item, error) {
	redisKey := c.keyPrefix + key
	val, err := c.client.Get(ctx, redisKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get key %s: %w", redisKey, err)
	}

	var item tokencache.Item
	if err := json.Unmarshal(val, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached item: %w", err)
	}
	if item.IsExpired(c.now()) {
		// Redis expiry normally removes it first; clean up a straggler.
		c.client.Del(ctx, redisKey)
		return nil, nil
	}
	return &item, nil
}

func (c *Cache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	redisKey := c.keyPrefix + key
	itemData, err := json.Marshal(tokencache.NewItem(data, c.now(), ttl))
	if err != nil {
		return fmt.Errorf("failed to marshal cached item: %w", err)
	}
	if err := c.client.Set(ctx, redisKey, itemData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", redisKey, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	redisKey := c.keyPrefix + key
	if err := c.client.Del(ctx, redisKey).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", redisKey, err)
	}
	return nil
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Compile-time interface check
var _ tokencache.Cache = (*Cache)(nil)
