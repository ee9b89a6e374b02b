package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prperemyshlev/easyped-service/internal/domain"
	"github.com/prperemyshlev/easyped-service/pkg/database"
	"github.com/redis/go-redis/v9"
)

const publicViewKeyPrefix = "patient:public:"

// tombstone is the stored form of a withdrawn view
var tombstone = []byte(`{"deleted":true}`)

// refreshView replaces a cached view unless the key holds a tombstone.
// KEYS[1] view key, ARGV[1] encoded view, ARGV[2] tombstone, ARGV[3] ttl in ms.
var refreshView = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[2] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
else
	redis.call("SET", KEYS[1], ARGV[1])
end
return 1
`)

// cachedView is the stored form of a cache entry; Deleted marks a tombstone
type cachedView struct {
	Deleted bool                  `json:"deleted,omitempty"`
	Patient *domain.PublicPatient `json:"patient,omitempty"`
}

// RedisPublicViewCache handles public view caching in Redis
type RedisPublicViewCache struct {
	redis *database.Redis
	ttl   time.Duration
}

// NewRedisPublicViewCache creates a new Redis backed public view cache
func NewRedisPublicViewCache(redis *database.Redis, ttl time.Duration) *RedisPublicViewCache {
	return &RedisPublicViewCache{redis: redis, ttl: ttl}
}

func publicViewKey(qrToken string) string {
	return publicViewKeyPrefix + qrToken
}

// Get returns the cached view for qrToken. found is false on a miss.
func (c *RedisPublicViewCache) Get(ctx context.Context, qrToken string) (*domain.PublicPatient, bool, error) {
	raw, err := c.redis.Client.Get(ctx, publicViewKey(qrToken)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read public view: %w", err)
	}

	var entry cachedView
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("failed to decode public view: %w", err)
	}
	if entry.Deleted {
		return nil, true, nil
	}
	return entry.Patient, true, nil
}

// Fill stores view only if no entry exists, so a slow reader never overwrites a newer write
func (c *RedisPublicViewCache) Fill(ctx context.Context, qrToken string, view *domain.PublicPatient) error {
	raw, err := json.Marshal(cachedView{Patient: view})
	if err != nil {
		return fmt.Errorf("failed to encode public view: %w", err)
	}
	if err := c.redis.Client.SetNX(ctx, publicViewKey(qrToken), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to fill public view: %w", err)
	}
	return nil
}

// Put replaces the entry for qrToken after a write. A tombstone is never overwritten,
// so a refresh racing a delete cannot bring the view back.
func (c *RedisPublicViewCache) Put(ctx context.Context, qrToken string, view *domain.PublicPatient) error {
	raw, err := json.Marshal(cachedView{Patient: view})
	if err != nil {
		return fmt.Errorf("failed to encode public view: %w", err)
	}

	err = refreshView.Run(ctx, c.redis.Client,
		[]string{publicViewKey(qrToken)},
		raw, tombstone, c.ttl.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to refresh public view: %w", err)
	}
	return nil
}

// Forget replaces the entry for qrToken with a tombstone. If the tombstone cannot be
// written the entry is deleted instead; the error is returned only when both fail.
func (c *RedisPublicViewCache) Forget(ctx context.Context, qrToken string) error {
	key := publicViewKey(qrToken)

	setErr := c.redis.Client.Set(ctx, key, tombstone, c.ttl).Err()
	if setErr == nil {
		return nil
	}

	if err := c.redis.Client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to withdraw public view: %w", errors.Join(setErr, err))
	}
	return nil
}
