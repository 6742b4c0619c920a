// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate plans, storage keys, and header names that are
shared between the sign-in client and the development auth backend.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName       = "safar"
	StubName      = "safar-authstub"
	AppVersion    = "0.1.0-dev"
	UserAgentName = "safar-cli/" + AppVersion

	// DefaultLanguage is used when no language is configured.
	DefaultLanguage = "en"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 30.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 60

	// RateLimitCleanupInterval is how often old entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute

	// OTPRequestsPerMinute bounds code dispatch and verification per mobile number.
	OTPRequestsPerMinute = 10

	// LoginRequestsPerMinute bounds password attempts per mobile number.
	LoginRequestsPerMinute = 5
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "safar.app"

	// AccessTokenTTL is the lifetime of tokens issued by the development backend.
	AccessTokenTTL = 24 * time.Hour

	// MinPasswordLength applies to passwords chosen by the traveller.
	MinPasswordLength = 6

	// VerificationCodeLength is the number of digits in a one-time code.
	VerificationCodeLength = 6

	// VerificationCodeTTL is how long a dispatched code stays redeemable.
	VerificationCodeTTL = 2 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"
	HeaderUserAgent     = "User-Agent"
	HeaderAuthorization = "Authorization"

	// BearerPrefix precedes the token in the Authorization header.
	BearerPrefix = "Bearer "

	MIMEApplicationJSON = "application/json"
)

// # JSON Field Identifiers

const (
	FieldSuccess  = "success"
	FieldMessage  = "message"
	FieldCode     = "code"
	FieldStatus   = "status"
	FieldChecks   = "checks"
	FieldMobile   = "mobile"
	FieldPassword = "password"

	FieldNewPassword = "newPassword"
)

// # Client Storage Keys

const (
	StorageKeyToken      = "token"
	StorageKeyUserData   = "userData"
	StorageKeyIsLoggedIn = "isLoggedIn"

	// StorageKeyFirstLoginPrefix is suffixed with the principal ID.
	StorageKeyFirstLoginPrefix = "hasLoggedInBefore_"
)

// # Database Schemas

const (
	SchemaAuth = "auth"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixOTP     = "auth:otp:"
	RedisPrefixStorage = "safar:storage:"
)
