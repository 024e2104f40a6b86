package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps cache entries in Redis. The key TTL is the stale window,
// not the fresh TTL: freshness is decided from the timestamps embedded in
// the entry, so stale reads stay possible until Redis expires the key.
type RedisStore struct {
	client      *redis.Client
	staleWindow time.Duration
}

// NewRedisStore connects to Redis.
func NewRedisStore(addr string, staleWindow time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client, staleWindow: staleWindow}, nil
}

func redisKey(ingredientKey, locationKey string) string {
	return "price:" + ingredientKey + ":" + locationKey
}

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context, ingredientKey, locationKey string) (*Entry, error) {
	data, err := r.client.Get(ctx, redisKey(ingredientKey, locationKey)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return &entry, nil
}

// Upsert implements Store.
func (r *RedisStore) Upsert(ctx context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	ttl := entry.CachedAt.Add(r.staleWindow).Sub(time.Now())
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, redisKey(entry.IngredientKey, entry.LocationKey), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// DeleteBefore implements Store. Redis expires keys natively, so there is
// nothing to purge.
func (r *RedisStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}

// Close implements Store.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

var _ Store = (*RedisStore)(nil)
