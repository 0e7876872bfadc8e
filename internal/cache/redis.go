// Package cache keeps hot audio records in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eartalk/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout = 5 * time.Second
	defaultTTL     = 10 * time.Minute
)

// Config captures the settings for establishing a Redis connection.
type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect initialises a Redis client and validates connectivity with a ping.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// AudioCache stores audio records by identifier.
// Key format: audio:<identifier>
type AudioCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewAudioCache wraps client. A non-positive ttl falls back to ten minutes.
func NewAudioCache(client redis.Cmdable, ttl time.Duration) *AudioCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &AudioCache{client: client, ttl: ttl}
}

// Get returns the cached record, or nil on a miss.
func (c *AudioCache) Get(ctx context.Context, identifier string) (*models.Audio, error) {
	raw, err := c.client.Get(ctx, key(identifier)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("audio cache get: %w", err)
	}

	var audio models.Audio
	if err := json.Unmarshal(raw, &audio); err != nil {
		return nil, fmt.Errorf("audio cache decode: %w", err)
	}
	return &audio, nil
}

// Set stores audio until the TTL expires.
func (c *AudioCache) Set(ctx context.Context, audio *models.Audio) error {
	raw, err := json.Marshal(audio)
	if err != nil {
		return fmt.Errorf("audio cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key(audio.Identifier), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("audio cache set: %w", err)
	}
	return nil
}

func key(identifier string) string {
	return "audio:" + identifier
}
