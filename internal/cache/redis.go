package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a short code is not cached.
var ErrCacheMiss = errors.New("cache miss")

const keyPrefix = "url:"

// Cache maps short codes to original URLs for the redirect path.
type Cache interface {
	GetURL(ctx context.Context, shortCode string) (string, error)
	SetURL(ctx context.Context, shortCode, originalURL string) error
	Close() error
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a new Redis cache client
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		// Fall back to a bare host:port
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisCache{client: client, ttl: ttl}, nil
}

// GetURL retrieves the original URL for a short code
func (r *redisCache) GetURL(ctx context.Context, shortCode string) (string, error) {
	val, err := r.client.Get(ctx, keyPrefix+shortCode).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("failed to read cache: %w", err)
	}
	return val, nil
}

// SetURL stores the original URL for a short code
func (r *redisCache) SetURL(ctx context.Context, shortCode, originalURL string) error {
	if err := r.client.Set(ctx, keyPrefix+shortCode, originalURL, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
