// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"sync"
)

// Storage is a durable string key/value store scoped to one client profile.
//
// # Implementations
//
//   - [FileStorage]: a JSON document in the user's config directory.
//   - [RedisStorage]: keys shared by every process pointed at the same namespace.
//   - [MemoryStorage]: an in-process map, used by tests and ephemeral runs.
type Storage interface {
	// Get returns the value of key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes keys. Missing keys are ignored.
	Remove(ctx context.Context, keys ...string) error
}

// MemoryStorage implements Storage with a map. It is safe for concurrent use.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

// Get implements Storage.
func (storage *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	storage.mu.RLock()
	defer storage.mu.RUnlock()

	value, ok := storage.values[key]
	return value, ok, nil
}

// Set implements Storage.
func (storage *MemoryStorage) Set(_ context.Context, key, value string) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()

	storage.values[key] = value
	return nil
}

// Remove implements Storage.
func (storage *MemoryStorage) Remove(_ context.Context, keys ...string) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()

	for _, key := range keys {
		delete(storage.values, key)
	}
	return nil
}

// Len reports how many keys are stored.
func (storage *MemoryStorage) Len() int {
	storage.mu.RLock()
	defer storage.mu.RUnlock()
	return len(storage.values)
}
