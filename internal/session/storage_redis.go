// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/safar/internal/platform/constants"
)

// RedisStorage implements Storage with plain Redis string keys.
//
// Every process that uses the same namespace sees the same session. Writes
// race the way two browser tabs do: the last one wins.
type RedisStorage struct {
	client    *redis.Client
	namespace string
}

// NewRedisStorage creates a RedisStorage scoped to namespace.
func NewRedisStorage(client *redis.Client, namespace string) *RedisStorage {
	return &RedisStorage{client: client, namespace: namespace}
}

func (storage *RedisStorage) key(name string) string {
	return constants.RedisPrefixStorage + storage.namespace + ":" + name
}

/*
Get retrieves a value from Redis.

Parameters:
  - context: context.Context
  - key: string

Returns:
  - string: Stored value
  - bool: false when the key is absent
  - error: Connectivity errors
*/
func (storage *RedisStorage) Get(context context.Context, key string) (string, bool, error) {
	value, err := storage.client.Get(context, storage.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis_storage_get_failed: %w", err)
	}

	return value, true, nil
}

/*
Set stores a value without expiry.

Parameters:
  - context: context.Context
  - key: string
  - value: string

Returns:
  - error: Connectivity errors
*/
func (storage *RedisStorage) Set(context context.Context, key, value string) error {
	if err := storage.client.Set(context, storage.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis_storage_set_failed: %w", err)
	}
	return nil
}

// Remove deletes all keys in a single command.
func (storage *RedisStorage) Remove(context context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = storage.key(key)
	}

	if err := storage.client.Del(context, names...).Err(); err != nil {
		return fmt.Errorf("redis_storage_remove_failed: %w", err)
	}
	return nil
}
