package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Irisfrogy/data-visulization/models"
)

// RedisCache stores computed dashboard views as JSON. Keys are namespaced
// by the dataset fingerprint so views of another snapshot are never served.
type RedisCache struct {
	client    *redis.Client
	ttl       time.Duration
	namespace string
}

// NewRedisCache wraps client. A zero ttl keeps entries until evicted.
func NewRedisCache(client *redis.Client, ttl time.Duration, fingerprint string) *RedisCache {
	return &RedisCache{
		client:    client,
		ttl:       ttl,
		namespace: "dashboard:" + fingerprint + ":view:",
	}
}

func (r *RedisCache) key(k string) string {
	return r.namespace + k
}

// Get returns the cached view for key, or (nil, nil) when absent.
func (r *RedisCache) Get(ctx context.Context, key string) (*models.View, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get view: %w", err)
	}

	var view models.View
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("failed to unmarshal view: %w", err)
	}
	return &view, nil
}

// Set stores view under key.
func (r *RedisCache) Set(ctx context.Context, key string, view *models.View) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to marshal view: %w", err)
	}
	if err := r.client.Set(ctx, r.key(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set view: %w", err)
	}
	return nil
}

// Len counts the cached views of this dataset.
func (r *RedisCache) Len(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.namespace+"*", 500).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to scan keys: %w", err)
		}
		total += len(keys)
		cursor = next
		if cursor == 0 {
			return total, nil
		}
	}
}

// Ping checks the connection.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
