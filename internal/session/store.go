// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session persists the signed-in principal between runs.

A session is three keys in a [Storage]: the bearer token, the serialized
principal and a logged-in marker. They are written together after a
successful sign-in and removed together on logout. Readers treat any
missing or corrupt key as "not signed in".
*/
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taibuivan/safar/internal/identity"
	"github.com/taibuivan/safar/internal/platform/constants"
)

// ErrNotAuthenticated is returned by [Guard] when no session exists.
var ErrNotAuthenticated = errors.New("session: not authenticated")

const loggedInValue = "true"

var errIncompleteCredentials = errors.New("session_write_failed: token and user are required")

// Record is a restored session.
type Record struct {
	Token string
	User  *identity.Principal
}

// Store reads and writes the session record. It is safe for concurrent use
// when its Storage is.
type Store struct {
	storage Storage
	logger  *slog.Logger
}

// NewStore creates a Store over storage.
func NewStore(storage Storage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{storage: storage, logger: logger}
}

/*
Write replaces the current session with token and user.

Previous keys are removed first so a partially failed write never mixes two
principals.

Parameters:
  - ctx: context.Context
  - token: string
  - user: *identity.Principal

Returns:
  - error: Encoding or storage failures
*/
func (store *Store) Write(ctx context.Context, token string, user *identity.Principal) error {
	if token == "" || user == nil {
		return errIncompleteCredentials
	}

	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session_encode_failed: %w", err)
	}

	if err := store.Clear(ctx); err != nil {
		return err
	}

	if err := store.storage.Set(ctx, constants.StorageKeyToken, token); err != nil {
		return fmt.Errorf("session_write_token_failed: %w", err)
	}
	if err := store.storage.Set(ctx, constants.StorageKeyUserData, string(payload)); err != nil {
		return fmt.Errorf("session_write_user_failed: %w", err)
	}
	if err := store.storage.Set(ctx, constants.StorageKeyIsLoggedIn, loggedInValue); err != nil {
		return fmt.Errorf("session_write_marker_failed: %w", err)
	}

	store.logger.DebugContext(ctx, "session_written", slog.String("user_id", string(user.ID)))
	return nil
}

// Read restores the session. It returns nil without error when no complete
// session exists; an unparsable principal is removed from storage.
func (store *Store) Read(ctx context.Context) (*Record, error) {
	marker, ok, err := store.storage.Get(ctx, constants.StorageKeyIsLoggedIn)
	if err != nil {
		return nil, fmt.Errorf("session_read_marker_failed: %w", err)
	}
	if !ok || marker != loggedInValue {
		return nil, nil
	}

	userData, ok, err := store.storage.Get(ctx, constants.StorageKeyUserData)
	if err != nil {
		return nil, fmt.Errorf("session_read_user_failed: %w", err)
	}
	if !ok {
		return nil, nil
	}

	token, ok, err := store.storage.Get(ctx, constants.StorageKeyToken)
	if err != nil {
		return nil, fmt.Errorf("session_read_token_failed: %w", err)
	}
	if !ok || token == "" {
		return nil, nil
	}

	var user identity.Principal
	if err := json.Unmarshal([]byte(userData), &user); err != nil {
		store.logger.WarnContext(ctx, "session_user_corrupt", slog.Any("error", err))
		if err := store.storage.Remove(ctx, constants.StorageKeyUserData, constants.StorageKeyIsLoggedIn); err != nil {
			return nil, fmt.Errorf("session_discard_corrupt_failed: %w", err)
		}
		return nil, nil
	}

	return &Record{Token: token, User: &user}, nil
}

// Clear removes the session keys. First-login markers survive a logout.
func (store *Store) Clear(ctx context.Context) error {
	err := store.storage.Remove(ctx,
		constants.StorageKeyToken,
		constants.StorageKeyUserData,
		constants.StorageKeyIsLoggedIn,
	)
	if err != nil {
		return fmt.Errorf("session_clear_failed: %w", err)
	}
	return nil
}

/*
MarkFirstLogin records that userID has signed in on this storage.

Returns:
  - bool: true when this is the first sign-in seen for userID
  - error: Storage failures
*/
func (store *Store) MarkFirstLogin(ctx context.Context, userID identity.ID) (bool, error) {
	key := constants.StorageKeyFirstLoginPrefix + string(userID)

	_, seen, err := store.storage.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("session_first_login_read_failed: %w", err)
	}
	if seen {
		return false, nil
	}

	if err := store.storage.Set(ctx, key, loggedInValue); err != nil {
		return false, fmt.Errorf("session_first_login_write_failed: %w", err)
	}
	return true, nil
}

// Guard returns the current session or [ErrNotAuthenticated].
// Protected commands call it instead of reading storage keys directly.
func Guard(ctx context.Context, store *Store) (*Record, error) {
	record, err := store.Read(ctx)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotAuthenticated
	}
	return record, nil
}
