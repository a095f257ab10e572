package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists entries as plain Redis strings.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a Redis-backed Store.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("kv get: %w", err)
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("kv set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("kv delete: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, prefix string) (map[string]string, error) {
	entries := make(map[string]string)

	iter := s.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		val, err := s.rdb.Get(ctx, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // Deleted between scan and get
			}
			return nil, fmt.Errorf("kv list get: %w", err)
		}
		entries[key] = val
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("kv list scan: %w", err)
	}
	return entries, nil
}
