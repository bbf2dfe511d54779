package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps JSON encoded sessions in Redis under prefix+userID with a sliding TTL.
type RedisStore[S Session[S]] struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore constructs a Redis backed store. ttl <= 0 stores keys without expiry.
func NewRedisStore[S Session[S]](client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore[S] {
	if prefix == "" {
		prefix = "session:"
	}
	return &RedisStore[S]{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStore[S]) key(userID int64) string {
	return r.prefix + strconv.FormatInt(userID, 10)
}

// Load fetches and decodes the session.
func (r *RedisStore[S]) Load(ctx context.Context, userID int64) (S, error) {
	var s S
	data, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return s, ErrNotFound
	}
	if err != nil {
		return s, fmt.Errorf("state: redis get: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("state: decode session: %w", err)
	}
	return s, nil
}

// Save encodes the session and refreshes its TTL.
func (r *RedisStore[S]) Save(ctx context.Context, userID int64, s S) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("state: encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("state: redis set: %w", err)
	}
	return nil
}

// Clear deletes the session key.
func (r *RedisStore[S]) Clear(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("state: redis del: %w", err)
	}
	return nil
}
