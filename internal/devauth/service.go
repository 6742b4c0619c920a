// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package devauth is a development implementation of the mobile sign-in backend.

It serves the endpoints the sign-in client consumes so the client can be
exercised end to end without the production backend.

Architecture:

  - Accounts: PostgreSQL through pgx, or an in-memory map.
  - Codes: hashed one-time codes in Redis with a TTL, or an in-memory map.
  - Limits: per-mobile token buckets for code dispatch and sign-in attempts.
  - Tokens: RS256 access tokens from the platform token service.

Business rejections are returned as client-side [apperr.AppError] values with
localized messages; the HTTP layer turns them into success=false answers.
*/
package devauth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taibuivan/safar/internal/i18n"
	"github.com/taibuivan/safar/internal/identity"
	"github.com/taibuivan/safar/internal/platform/apperr"
	"github.com/taibuivan/safar/internal/platform/constants"
	"github.com/taibuivan/safar/internal/platform/ratelimit"
	"github.com/taibuivan/safar/internal/platform/sec"
	"github.com/taibuivan/safar/internal/platform/validate"
)

// # Dependencies

// TokenProvider issues signed access tokens.
type TokenProvider interface {
	GenerateAccessToken(userID, mobile, role string, timeToLive time.Duration) (string, error)
}

// CodeSender delivers a one-time code out of band.
type CodeSender interface {
	Send(ctx context.Context, mobile, code string) error
}

// LogSender stands in for an SMS gateway. With echo enabled the code itself
// is logged so a developer can read it from the console.
type LogSender struct {
	Logger *slog.Logger
	Echo   bool
}

// Send implements CodeSender.
func (sender LogSender) Send(ctx context.Context, mobile, code string) error {
	attrs := []any{slog.String("mobile", mobile)}
	if sender.Echo {
		attrs = append(attrs, slog.String("code", code))
	}
	sender.Logger.InfoContext(ctx, "devauth_code_dispatched", attrs...)
	return nil
}

// # Results

// InitResult answers whether an account exists.
type InitResult struct {
	UserExists  bool
	HasPassword bool
	Message     string
}

// Credentials is the outcome of a successful sign-in.
type Credentials struct {
	Token   string
	User    *identity.Principal
	Message string
}

// Column widths of the profile fields in auth.account.
const (
	maxNameLength         = 100
	maxNationalCodeLength = 16
	maxPassportLength     = 32
)

// # Service

// Service implements the mobile sign-in use cases.
type Service struct {
	accounts     AccountRepository
	codes        CodeRepository
	tokens       TokenProvider
	sender       CodeSender
	translator   *i18n.Translator
	logger       *slog.Logger
	codeLimiter  *ratelimit.Keyed
	loginLimiter *ratelimit.Keyed
}

// NewService constructs a Service. The rate limiters stop their cleanup when
// context is cancelled.
func NewService(
	context context.Context,
	accounts AccountRepository,
	codes CodeRepository,
	tokens TokenProvider,
	sender CodeSender,
	translator *i18n.Translator,
	logger *slog.Logger,
) *Service {
	return &Service{
		accounts:     accounts,
		codes:        codes,
		tokens:       tokens,
		sender:       sender,
		translator:   translator,
		logger:       logger,
		codeLimiter:  ratelimit.PerMinute(context, constants.OTPRequestsPerMinute),
		loginLimiter: ratelimit.PerMinute(context, constants.LoginRequestsPerMinute),
	}
}

// standardize validates a submitted mobile and returns its stored form.
func (service *Service) standardize(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", apperr.ValidationError(service.translator.T(i18n.ServerMobileRequired))
	}

	mobile := StandardizeMobile(raw)
	if _, _, ok := SplitMobile(mobile); !ok {
		return "", apperr.ValidationError(service.translator.T(i18n.ServerInvalidMobile))
	}
	return mobile, nil
}

/*
InitLogin reports whether an account exists for mobile.

Parameters:
  - context: context.Context
  - rawMobile: string

Returns:
  - InitResult: Existence and password flags
  - error: apperr.ValidationError for a malformed number
*/
func (service *Service) InitLogin(context context.Context, rawMobile string) (InitResult, error) {
	mobile, err := service.standardize(rawMobile)
	if err != nil {
		return InitResult{}, err
	}

	account, err := service.accounts.FindByMobile(context, mobile)
	if err != nil {
		if apperr.IsNotFound(err) {
			return InitResult{Message: service.translator.T(i18n.ServerNewUser)}, nil
		}
		return InitResult{}, fmt.Errorf("devauth_init_login_failed: %w", err)
	}

	return InitResult{
		UserExists:  true,
		HasPassword: account.HasPassword(),
		Message:     service.translator.T(i18n.ServerUserExists),
	}, nil
}

/*
SendVerification issues a fresh one-time code for mobile.

A pending code is replaced. Dispatch is limited per mobile.

Returns:
  - string: Localized confirmation
  - error: Validation, rate limit or storage failures
*/
func (service *Service) SendVerification(context context.Context, rawMobile string) (string, error) {
	mobile, err := service.standardize(rawMobile)
	if err != nil {
		return "", err
	}

	if !service.codeLimiter.Allow(mobile) {
		return "", apperr.RateLimited(service.translator.T(i18n.ServerSendRateLimited))
	}

	code, err := sec.GenerateNumericCode(constants.VerificationCodeLength)
	if err != nil {
		return "", fmt.Errorf("devauth_generate_code_failed: %w", err)
	}

	if err := service.codes.Set(context, mobile, sec.HashCode(code), constants.VerificationCodeTTL); err != nil {
		return "", fmt.Errorf("devauth_store_code_failed: %w", err)
	}

	if err := service.sender.Send(context, mobile, code); err != nil {
		return "", fmt.Errorf("devauth_send_code_failed: %w", err)
	}

	return service.translator.T(i18n.ServerCodeSent), nil
}

/*
VerifyCode redeems a one-time code and signs the traveller in.

An unknown mobile gets its account on the first successful verification.

Returns:
  - *Credentials: Token and profile
  - error: Validation, rate limit, invalid code or storage failures
*/
func (service *Service) VerifyCode(context context.Context, rawMobile, code string) (*Credentials, error) {
	required := (&validate.Validator{}).
		Required(constants.FieldMobile, rawMobile).
		Required(constants.FieldCode, code)
	if err := required.ErrWithMessage(service.translator.T(i18n.ServerMobileCodeRequired)); err != nil {
		return nil, err
	}

	mobile, err := service.standardize(rawMobile)
	if err != nil {
		return nil, err
	}

	if !service.loginLimiter.Allow(mobile) {
		return nil, apperr.RateLimited(service.translator.T(i18n.ServerVerifyRateLimited))
	}

	// ── 1. Code Redemption ────────────────────────────────────────────────

	redeemed, err := service.codes.Redeem(context, mobile, sec.HashCode(code))
	if err != nil && !apperr.IsNotFound(err) {
		return nil, fmt.Errorf("devauth_redeem_code_failed: %w", err)
	}
	if !redeemed {
		return nil, apperr.Unauthorized(service.translator.T(i18n.ServerInvalidCode))
	}

	// ── 2. Account Resolution ─────────────────────────────────────────────

	account, err := service.accounts.FindByMobile(context, mobile)
	switch {
	case err == nil:
	case apperr.IsNotFound(err):
		account, err = service.register(context, mobile)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("devauth_find_account_failed: %w", err)
	}

	if !account.IsVerified {
		if err := service.accounts.MarkVerified(context, account.ID); err != nil {
			return nil, fmt.Errorf("devauth_mark_verified_failed: %w", err)
		}
		account.IsVerified = true
	}

	// ── 3. Token Issuance ─────────────────────────────────────────────────

	return service.issue(context, account)
}

/*
LoginWithPassword signs an existing account in by password.

Returns:
  - *Credentials: Token and profile
  - error: Validation, rate limit, unknown account or wrong password
*/
func (service *Service) LoginWithPassword(context context.Context, rawMobile, password string) (*Credentials, error) {
	required := (&validate.Validator{}).
		Required(constants.FieldMobile, rawMobile).
		Required(constants.FieldPassword, password)
	if err := required.ErrWithMessage(service.translator.T(i18n.ServerMobilePassRequired)); err != nil {
		return nil, err
	}

	mobile, err := service.standardize(rawMobile)
	if err != nil {
		return nil, err
	}

	if !service.loginLimiter.Allow(mobile) {
		return nil, apperr.RateLimited(service.translator.T(i18n.ServerLoginRateLimited))
	}

	account, err := service.accounts.FindByMobile(context, mobile)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound(service.translator.T(i18n.ServerAccountNotFound))
		}
		return nil, fmt.Errorf("devauth_find_account_failed: %w", err)
	}

	if !account.HasPassword() {
		return nil, apperr.Unauthorized(service.translator.T(i18n.ServerPasswordNotConfigured))
	}

	if !sec.CheckPasswordHash(password, account.PasswordHash) {
		return nil, apperr.Unauthorized(service.translator.T(i18n.ServerInvalidPassword))
	}

	return service.issue(context, account)
}

/*
SetInitialPassword defines the first password of the signed-in account.

The mobile in the request must be the signed-in account's own. An account
that already has a password is refused; changing it is a different use case.

Parameters:
  - context: context.Context
  - accountID: string (from the verified token)
  - rawMobile: string
  - newPassword: string

Returns:
  - string: Localized confirmation
  - error: Validation, unknown account, foreign mobile or existing password
*/
func (service *Service) SetInitialPassword(context context.Context, accountID, rawMobile, newPassword string) (string, error) {
	required := (&validate.Validator{}).
		Required(constants.FieldMobile, rawMobile).
		Required(constants.FieldNewPassword, newPassword)
	if err := required.ErrWithMessage(service.translator.T(i18n.ServerNewPasswordRequired)); err != nil {
		return "", err
	}

	length := (&validate.Validator{}).MinLen(constants.FieldNewPassword, newPassword, constants.MinPasswordLength)
	if err := length.ErrWithMessage(service.translator.T(i18n.PasswordMinLength)); err != nil {
		return "", err
	}

	account, err := service.owned(context, accountID, rawMobile)
	if err != nil {
		return "", err
	}

	hash, err := sec.HashPassword(newPassword)
	if err != nil {
		return "", fmt.Errorf("devauth_hash_password_failed: %w", err)
	}

	if err := service.accounts.SetInitialPassword(context, account.ID, hash); err != nil {
		if appError := apperr.As(err); appError != nil && appError.Code == apperr.CodeConflict {
			return "", apperr.Conflict(service.translator.T(i18n.ServerPasswordAlreadySet))
		}
		return "", fmt.Errorf("devauth_set_initial_password_failed: %w", err)
	}

	service.logger.InfoContext(context, "devauth_initial_password_set", slog.String("user_id", account.ID))
	return service.translator.T(i18n.ServerPasswordSet), nil
}

/*
CompleteRegistration fills in the profile of the signed-in account.

Returns:
  - *identity.Principal: The updated profile
  - string: Localized confirmation
  - error: Validation, unknown account or foreign mobile
*/
func (service *Service) CompleteRegistration(context context.Context, accountID, rawMobile string, profile Profile) (*identity.Principal, string, error) {
	limits := (&validate.Validator{}).
		MaxLen("firstName", profile.FirstName, maxNameLength).
		MaxLen("lastName", profile.LastName, maxNameLength).
		MaxLen("nationalCode", profile.NationalCode, maxNationalCodeLength).
		Digits("nationalCode", profile.NationalCode).
		MaxLen("passportNumber", profile.PassportNumber, maxPassportLength)
	if err := limits.ErrWithMessage(service.translator.T(i18n.ServerProfileInvalid)); err != nil {
		return nil, "", err
	}

	account, err := service.owned(context, accountID, rawMobile)
	if err != nil {
		return nil, "", err
	}

	if !profile.IsEmpty() {
		if err := service.accounts.CompleteProfile(context, account.ID, profile); err != nil {
			return nil, "", fmt.Errorf("devauth_complete_profile_failed: %w", err)
		}
		profile.applyTo(account)
	}

	service.logger.InfoContext(context, "devauth_registration_completed", slog.String("user_id", account.ID))
	return account.Principal(), service.translator.T(i18n.ServerRegistrationComplete), nil
}

// Profile returns the account signed in as mobile.
func (service *Service) Profile(context context.Context, mobile string) (*identity.Principal, error) {
	account, err := service.accounts.FindByMobile(context, mobile)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound(service.translator.T(i18n.ServerAccountNotFound))
		}
		return nil, fmt.Errorf("devauth_profile_failed: %w", err)
	}
	return account.Principal(), nil
}

// SeedAccount makes sure mobile exists with password, for local testing of
// the password track.
func (service *Service) SeedAccount(context context.Context, rawMobile, password string) error {
	mobile, err := service.standardize(rawMobile)
	if err != nil {
		return err
	}

	hash, err := sec.HashPassword(password)
	if err != nil {
		return fmt.Errorf("devauth_seed_hash_failed: %w", err)
	}

	account, err := service.accounts.FindByMobile(context, mobile)
	switch {
	case err == nil:
	case apperr.IsNotFound(err):
		account, err = service.register(context, mobile)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("devauth_seed_find_failed: %w", err)
	}

	if err := service.accounts.UpdatePassword(context, account.ID, hash); err != nil {
		return fmt.Errorf("devauth_seed_password_failed: %w", err)
	}

	service.logger.InfoContext(context, "devauth_account_seeded", slog.String("user_id", account.ID))
	return nil
}

// # Internals

// owned resolves rawMobile and checks it belongs to accountID. A number owned
// by someone else is reported like an unknown one.
func (service *Service) owned(context context.Context, accountID, rawMobile string) (*Account, error) {
	mobile, err := service.standardize(rawMobile)
	if err != nil {
		return nil, err
	}

	account, err := service.accounts.FindByMobile(context, mobile)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound(service.translator.T(i18n.ServerAccountNotFound))
		}
		return nil, fmt.Errorf("devauth_find_account_failed: %w", err)
	}

	if account.ID != accountID {
		service.logger.WarnContext(context, "devauth_foreign_mobile", slog.String("user_id", accountID))
		return nil, apperr.NotFound(service.translator.T(i18n.ServerAccountNotFound))
	}
	return account, nil
}

func (service *Service) register(context context.Context, mobile string) (*Account, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("devauth_generate_id_failed: %w", err)
	}

	dialCode, national, _ := SplitMobile(mobile)
	account := &Account{
		ID:           id.String(),
		Mobile:       mobile,
		CountryCode:  dialCode,
		MobileNumber: national,
		Role:         sec.RoleUser,
		UserType:     UserTypeGuest,
	}

	if err := service.accounts.Create(context, account); err != nil {
		return nil, fmt.Errorf("devauth_create_account_failed: %w", err)
	}

	service.logger.InfoContext(context, "devauth_account_created", slog.String("user_id", account.ID))
	return account, nil
}

func (service *Service) issue(context context.Context, account *Account) (*Credentials, error) {
	token, err := service.tokens.GenerateAccessToken(account.ID, account.Mobile, string(account.Role), constants.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("devauth_token_generation_failed: %w", err)
	}

	service.logger.InfoContext(context, "devauth_signed_in", slog.String("user_id", account.ID))

	return &Credentials{
		Token:   token,
		User:    account.Principal(),
		Message: service.translator.T(i18n.ServerLoginSuccess),
	}, nil
}
