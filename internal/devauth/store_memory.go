// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package devauth

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/safar/internal/platform/apperr"
	"github.com/taibuivan/safar/internal/platform/sec"
)

// # Accounts

// MemoryAccountRepository keeps accounts in a map. Data is lost on restart.
type MemoryAccountRepository struct {
	mu       sync.RWMutex
	byMobile map[string]*Account
}

// NewMemoryAccountRepository creates an empty repository.
func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{byMobile: make(map[string]*Account)}
}

// FindByMobile implements AccountRepository. It returns a copy.
func (repository *MemoryAccountRepository) FindByMobile(_ context.Context, mobile string) (*Account, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	account, ok := repository.byMobile[mobile]
	if !ok {
		return nil, apperr.NotFound("Account not found")
	}

	clone := *account
	return &clone, nil
}

// Create implements AccountRepository.
func (repository *MemoryAccountRepository) Create(_ context.Context, account *Account) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, exists := repository.byMobile[account.Mobile]; exists {
		return apperr.Conflict("Resource already exists")
	}

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	clone := *account
	repository.byMobile[account.Mobile] = &clone
	return nil
}

// MarkVerified implements AccountRepository.
func (repository *MemoryAccountRepository) MarkVerified(_ context.Context, id string) error {
	return repository.update(id, func(account *Account) { account.IsVerified = true })
}

// UpdatePassword implements AccountRepository.
func (repository *MemoryAccountRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return repository.update(id, func(account *Account) { account.PasswordHash = passwordHash })
}

// SetInitialPassword implements AccountRepository.
func (repository *MemoryAccountRepository) SetInitialPassword(_ context.Context, id, passwordHash string) error {
	var conflict bool
	err := repository.update(id, func(account *Account) {
		if account.HasPassword() {
			conflict = true
			return
		}
		account.PasswordHash = passwordHash
	})
	if err == nil && conflict {
		return apperr.Conflict("Password already set")
	}
	return err
}

// CompleteProfile implements AccountRepository.
func (repository *MemoryAccountRepository) CompleteProfile(_ context.Context, id string, profile Profile) error {
	return repository.update(id, func(account *Account) { profile.applyTo(account) })
}

func (repository *MemoryAccountRepository) update(id string, apply func(*Account)) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, account := range repository.byMobile {
		if account.ID == id {
			apply(account)
			account.UpdatedAt = time.Now()
			return nil
		}
	}
	return apperr.NotFound("Account not found")
}

// # Codes

type pendingCode struct {
	hash      string
	expiresAt time.Time
}

// MemoryCodeRepository keeps code hashes in a map and expires them lazily.
type MemoryCodeRepository struct {
	mu    sync.Mutex
	codes map[string]pendingCode
	now   func() time.Time
}

// NewMemoryCodeRepository creates an empty repository.
func NewMemoryCodeRepository() *MemoryCodeRepository {
	return &MemoryCodeRepository{codes: make(map[string]pendingCode), now: time.Now}
}

// Set implements CodeRepository.
func (repository *MemoryCodeRepository) Set(_ context.Context, mobile, codeHash string, ttl time.Duration) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.codes[mobile] = pendingCode{hash: codeHash, expiresAt: repository.now().Add(ttl)}
	return nil
}

// Redeem implements CodeRepository.
func (repository *MemoryCodeRepository) Redeem(_ context.Context, mobile, codeHash string) (bool, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	pending, ok := repository.codes[mobile]
	if !ok || !repository.now().Before(pending.expiresAt) {
		delete(repository.codes, mobile)
		return false, apperr.NotFound("Verification code is invalid or expired")
	}

	if !sec.DigestsMatch(codeHash, pending.hash) {
		return false, nil
	}
	delete(repository.codes, mobile)
	return true, nil
}
