// Package redis opens the connection shared by the supply ledger and the
// pending attestation store.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"mintguard/internal/platform/config"
)

// Client wraps the go-redis client so callers can probe connection health.
type Client struct {
	*redis.Client
}

// New connects using cfg and verifies the connection with a bounded ping.
// An empty URL means Redis is not configured; the engine then falls back to
// its in-memory stores and New returns a nil client.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health reports whether the connection still answers.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
