// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package devauth

import (
	"context"
	"time"
)

// AccountRepository defines the data access contract for traveller accounts.
//
// # Implementations
//
// PostgreSQL when DATABASE_URL is set, otherwise an in-memory map.
type AccountRepository interface {
	// FindByMobile returns the account registered under a standardized mobile.
	//
	// Returns [apperr.NotFound] if no account exists.
	FindByMobile(ctx context.Context, mobile string) (*Account, error)

	// Create persists a brand-new account.
	//
	// Returns [apperr.Conflict] if the mobile is already registered.
	Create(ctx context.Context, account *Account) error

	// MarkVerified records that the account proved ownership of its mobile.
	MarkVerified(ctx context.Context, id string) error

	// UpdatePassword replaces only the password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// SetInitialPassword stores the first password hash of an account that
	// has none, in one step.
	//
	// Returns [apperr.Conflict] if a password is already set and
	// [apperr.NotFound] if the account does not exist.
	SetInitialPassword(ctx context.Context, id, passwordHash string) error

	// CompleteProfile replaces the traveller-editable profile fields and
	// promotes a guest account to a regular one.
	CompleteProfile(ctx context.Context, id string, profile Profile) error
}

// CodeRepository stores hashed one-time codes with a TTL.
type CodeRepository interface {
	// Set stores the code hash for mobile, replacing any pending code.
	Set(ctx context.Context, mobile, codeHash string, ttl time.Duration) error

	// Redeem consumes the pending code for mobile if its hash equals
	// codeHash. Checking and removal are one atomic step, so a code is
	// redeemed at most once. A mismatch leaves the code pending.
	//
	// Returns [apperr.NotFound] if no code is pending or it expired.
	Redeem(ctx context.Context, mobile, codeHash string) (bool, error)
}
