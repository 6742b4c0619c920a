// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package devauth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/safar/internal/platform/apperr"
	"github.com/taibuivan/safar/internal/platform/dberr"
)

// PostgresAccountRepository implements AccountRepository using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a PostgreSQL implementation of AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

const accountColumns = `
	id, mobile, countrycode, mobilenumber, role, passwordhash,
	firstname, lastname, profileimage, nationalcode, passportnumber, address,
	usertype, isverified, createdat, updatedat`

/*
FindByMobile retrieves an account by its standardized mobile.

Parameters:
  - context: context.Context
  - mobile: string

Returns:
  - *Account: The account if found
  - error: apperr.NotFound or wrapped driver errors
*/
func (repository *PostgresAccountRepository) FindByMobile(context context.Context, mobile string) (*Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM auth.account WHERE mobile = $1`

	account := &Account{}
	err := repository.pool.QueryRow(context, query, mobile).Scan(
		&account.ID,
		&account.Mobile,
		&account.CountryCode,
		&account.MobileNumber,
		&account.Role,
		&account.PasswordHash,
		&account.FirstName,
		&account.LastName,
		&account.ProfileImage,
		&account.NationalCode,
		&account.PassportNumber,
		&account.Address,
		&account.UserType,
		&account.IsVerified,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_account_find_by_mobile_failed", "Account not found")
	}

	return account, nil
}

/*
Create persists a new account into auth.account.

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - error: apperr.Conflict on a duplicate mobile, wrapped driver errors otherwise
*/
func (repository *PostgresAccountRepository) Create(context context.Context, account *Account) error {
	const query = `
		INSERT INTO auth.account (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		account.ID,
		account.Mobile,
		account.CountryCode,
		account.MobileNumber,
		account.Role,
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		account.ProfileImage,
		account.NationalCode,
		account.PassportNumber,
		account.Address,
		account.UserType,
		account.IsVerified,
		account.CreatedAt,
		account.UpdatedAt,
	)

	return dberr.Wrap(err, "postgres_account_create_failed", "Account not found")
}

// MarkVerified sets isverified for the account.
func (repository *PostgresAccountRepository) MarkVerified(context context.Context, id string) error {
	const query = `UPDATE auth.account SET isverified = TRUE, updatedat = $2 WHERE id = $1`
	return repository.execUpdate(context, query, "postgres_account_mark_verified_failed", id, time.Now())
}

// UpdatePassword replaces only the password hash.
func (repository *PostgresAccountRepository) UpdatePassword(context context.Context, id, passwordHash string) error {
	const query = `UPDATE auth.account SET passwordhash = $2, updatedat = $3 WHERE id = $1`
	return repository.execUpdate(context, query, "postgres_account_update_password_failed", id, passwordHash, time.Now())
}

/*
SetInitialPassword stores the first password hash of an account.

Description: The empty-hash condition is part of the UPDATE, so two racing
requests cannot both set a password.

Returns:
  - error: apperr.Conflict if a password exists, apperr.NotFound if the account does not
*/
func (repository *PostgresAccountRepository) SetInitialPassword(context context.Context, id, passwordHash string) error {
	const query = `UPDATE auth.account SET passwordhash = $2, updatedat = $3 WHERE id = $1 AND passwordhash = ''`

	tag, err := repository.pool.Exec(context, query, id, passwordHash, time.Now())
	if err != nil {
		return dberr.Wrap(err, "postgres_account_set_initial_password_failed", "Account not found")
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := repository.pool.QueryRow(context, `SELECT EXISTS (SELECT 1 FROM auth.account WHERE id = $1)`, id).Scan(&exists); err != nil {
		return dberr.Wrap(err, "postgres_account_exists_failed", "Account not found")
	}
	if exists {
		return apperr.Conflict("Password already set")
	}
	return apperr.NotFound("Account not found")
}

// CompleteProfile overwrites the non-empty profile fields.
func (repository *PostgresAccountRepository) CompleteProfile(context context.Context, id string, profile Profile) error {
	const query = `
		UPDATE auth.account SET
			firstname      = COALESCE(NULLIF($2, ''), firstname),
			lastname       = COALESCE(NULLIF($3, ''), lastname),
			nationalcode   = COALESCE(NULLIF($4, ''), nationalcode),
			passportnumber = COALESCE(NULLIF($5, ''), passportnumber),
			address        = COALESCE(NULLIF($6, ''), address),
			updatedat      = $7
		WHERE id = $1`

	return repository.execUpdate(context, query, "postgres_account_complete_profile_failed",
		id,
		profile.FirstName,
		profile.LastName,
		profile.NationalCode,
		profile.PassportNumber,
		profile.Address,
		time.Now(),
	)
}

func (repository *PostgresAccountRepository) execUpdate(context context.Context, query, action string, args ...any) error {
	tag, err := repository.pool.Exec(context, query, args...)
	if err != nil {
		return dberr.Wrap(err, action, "Account not found")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account not found")
	}
	return nil
}
