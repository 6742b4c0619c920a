// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

// FileStorage implements Storage as a single JSON object on disk.
//
// Every write rewrites the whole document through a temporary file and a
// rename, so a crash never leaves a half-written session behind.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage creates a FileStorage at path. The file is created lazily.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the backing file.
func (storage *FileStorage) Path() string {
	return storage.path
}

/*
Get reads key from the document.

Parameters:
  - context: context.Context (unused; file I/O is not cancellable)
  - key: string

Returns:
  - string: Stored value
  - bool: Whether the key exists
  - error: Read or decode failures
*/
func (storage *FileStorage) Get(_ context.Context, key string) (string, bool, error) {
	storage.mu.Lock()
	defer storage.mu.Unlock()

	values, err := storage.load()
	if err != nil {
		return "", false, err
	}

	value, ok := values[key]
	return value, ok, nil
}

// Set implements Storage.
func (storage *FileStorage) Set(_ context.Context, key, value string) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()

	values, err := storage.load()
	if err != nil {
		return err
	}

	values[key] = value
	return storage.save(values)
}

// Remove implements Storage.
func (storage *FileStorage) Remove(_ context.Context, keys ...string) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()

	values, err := storage.load()
	if err != nil {
		return err
	}

	changed := false
	for _, key := range keys {
		if _, ok := values[key]; ok {
			delete(values, key)
			changed = true
		}
	}
	if !changed {
		return nil
	}

	return storage.save(values)
}

func (storage *FileStorage) load() (map[string]string, error) {
	data, err := os.ReadFile(storage.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("file_storage_read_failed: %w", err)
	}

	values := make(map[string]string)
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("file_storage_decode_failed: %w", err)
	}

	return values, nil
}

func (storage *FileStorage) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(storage.path), dirMode); err != nil {
		return fmt.Errorf("file_storage_mkdir_failed: %w", err)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("file_storage_encode_failed: %w", err)
	}

	temp, err := os.CreateTemp(filepath.Dir(storage.path), ".storage-*.json")
	if err != nil {
		return fmt.Errorf("file_storage_temp_failed: %w", err)
	}
	tempPath := temp.Name()
	defer os.Remove(tempPath)

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		return fmt.Errorf("file_storage_write_failed: %w", err)
	}
	if err := temp.Chmod(fileMode); err != nil {
		_ = temp.Close()
		return fmt.Errorf("file_storage_chmod_failed: %w", err)
	}
	if err := temp.Close(); err != nil {
		return fmt.Errorf("file_storage_close_failed: %w", err)
	}

	if err := os.Rename(tempPath, storage.path); err != nil {
		return fmt.Errorf("file_storage_rename_failed: %w", err)
	}

	return nil
}
