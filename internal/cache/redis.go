package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps dataset snapshots in Redis instead of local files, for
// deployments where the process has no durable disk. Keys expire at the
// family TTL; freshness is still re-checked against fetched_at at load time.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed snapshot store and verifies the
// connection.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{
		client: client,
	}, nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// HealthCheck pings Redis to verify connection
func (s *RedisStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func snapshotKey(family Family) string {
	return fmt.Sprintf("courtside:snapshot:%s", family)
}

// Load retrieves a family's snapshot; an expired or absent key is a miss.
func (s *RedisStore) Load(ctx context.Context, family Family) (*Snapshot, error) {
	raw, err := s.client.Get(ctx, snapshotKey(family)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", family, err)
	}
	return &snap, nil
}

// Save stores a family's snapshot with the family TTL as key expiry.
func (s *RedisStore) Save(ctx context.Context, family Family, snap *Snapshot, ttl time.Duration) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot %s: %w", family, err)
	}
	return s.client.Set(ctx, snapshotKey(family), raw, ttl).Err()
}

// Delete removes a family's snapshot key.
func (s *RedisStore) Delete(ctx context.Context, family Family) error {
	return s.client.Del(ctx, snapshotKey(family)).Err()
}
