package pending

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mintguard/internal/intake"
)

const keyPrefix = "intake:pending:"

// RedisStore tracks pending oracle requests in Redis with a retention TTL in
// place of a fixed capacity: entries expire whether or not they resolve,
// which bounds tracked state across restarts and replicas.
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedis creates a Redis-backed pending store. retention caps how long an
// unresolved or fulfilled request stays visible.
func NewRedis(client *redis.Client, retention time.Duration) *RedisStore {
	if retention <= 0 {
		retention = time.Hour
	}
	return &RedisStore{client: client, retention: retention}
}

func pendingKey(requestID string) string {
	return keyPrefix + requestID
}

func (s *RedisStore) Register(ctx context.Context, req intake.PendingRequest) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode pending request: %w", err)
	}
	ok, err := s.client.SetNX(ctx, pendingKey(req.ID), raw, s.retention).Result()
	if err != nil {
		return fmt.Errorf("register pending request: %w", err)
	}
	if !ok {
		return fmt.Errorf("request %s is already registered", req.ID)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, requestID string) (intake.PendingRequest, error) {
	raw, err := s.client.Get(ctx, pendingKey(requestID)).Bytes()
	if err == redis.Nil {
		return intake.PendingRequest{}, fmt.Errorf("%w: %s", intake.ErrUnknownRequest, requestID)
	}
	if err != nil {
		return intake.PendingRequest{}, fmt.Errorf("read pending request: %w", err)
	}

	var req intake.PendingRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return intake.PendingRequest{}, fmt.Errorf("decode pending request: %w", err)
	}
	return req, nil
}

func (s *RedisStore) MarkFulfilled(ctx context.Context, requestID string) error {
	key := pendingKey(requestID)
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return fmt.Errorf("%w: %s", intake.ErrUnknownRequest, requestID)
		}
		if err != nil {
			return fmt.Errorf("read pending request: %w", err)
		}

		var req intake.PendingRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return fmt.Errorf("decode pending request: %w", err)
		}
		if req.Fulfilled {
			return fmt.Errorf("%w: %s", intake.ErrRequestFulfilled, requestID)
		}
		req.Fulfilled = true

		updated, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("encode pending request: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, redis.KeepTTL)
			return nil
		})
		return err
	}, key)
}

func (s *RedisStore) Remove(ctx context.Context, requestID string) error {
	if err := s.client.Del(ctx, pendingKey(requestID)).Err(); err != nil {
		return fmt.Errorf("remove pending request: %w", err)
	}
	return nil
}
