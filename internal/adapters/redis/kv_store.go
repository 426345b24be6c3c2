// Package redis provides the Redis-backed session storage.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/alertautec/alertautec/internal/ports"
)

// DefaultKeyPrefix namespaces every key this store writes.
const DefaultKeyPrefix = "alertautec:session:"

var _ ports.KeyValueStore = (*KeyValueStore)(nil)

// KeyValueStore keeps session values in Redis without expiry. The session
// lives until it is cleared, matching the browser storage it replaces.
type KeyValueStore struct {
	client redis.UniversalClient
	prefix string
}

// NewKeyValueStore creates a Redis-backed store with the default key prefix.
func NewKeyValueStore(client redis.UniversalClient) *KeyValueStore {
	return &KeyValueStore{
		client: client,
		prefix: DefaultKeyPrefix,
	}
}

// NewKeyValueStoreWithPrefix creates a Redis-backed store with a custom key prefix.
func NewKeyValueStoreWithPrefix(client redis.UniversalClient, prefix string) *KeyValueStore {
	return &KeyValueStore{
		client: client,
		prefix: prefix,
	}
}

func (s *KeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, nil
	}

	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

func (s *KeyValueStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes keys one command at a time. A cluster rejects a multi-key
// DEL whose keys hash to different slots.
func (s *KeyValueStore) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if k == "" {
			continue
		}
		if err := s.client.Del(ctx, s.prefix+k).Err(); err != nil {
			return fmt.Errorf("redis del %s: %w", k, err)
		}
	}
	return nil
}
