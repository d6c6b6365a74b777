// Package cache tracks which files have been chunked: a JSON manifest next to
// the output, and an optional Redis hash store shared between machines.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps file content hashes and a per-repository run version in
// Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redis connection failed: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// GetHash returns the stored hash for a file. Returns empty string if unknown.
func (s *RedisStore) GetHash(ctx context.Context, repo, rel string) (string, error) {
	val, err := s.client.Get(ctx, HashKey(repo, rel)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// SetHash stores the hash for a file.
func (s *RedisStore) SetHash(ctx context.Context, repo, rel, hash string) error {
	return s.client.Set(ctx, HashKey(repo, rel), hash, 0).Err()
}

// DeleteHash forgets a file.
func (s *RedisStore) DeleteHash(ctx context.Context, repo, rel string) error {
	return s.client.Del(ctx, HashKey(repo, rel)).Err()
}

// ClearRepo removes every stored hash for repo.
func (s *RedisStore) ClearRepo(ctx context.Context, repo string) error {
	iter := s.client.Scan(ctx, 0, HashKey(repo, "*"), 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// GetRunVersion retrieves the current run version for a repo.
func (s *RedisStore) GetRunVersion(ctx context.Context, repo string) (int64, error) {
	val, err := s.client.Get(ctx, versionKey(repo)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}

// IncrRunVersion increments the run version.
func (s *RedisStore) IncrRunVersion(ctx context.Context, repo string) (int64, error) {
	return s.client.Incr(ctx, versionKey(repo)).Result()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// HashKey generates the key holding a file's content hash.
func HashKey(repo, rel string) string {
	return fmt.Sprintf("chunk:hash:%s:%s", repo, rel)
}

func versionKey(repo string) string {
	return "chunk:version:" + repo
}
