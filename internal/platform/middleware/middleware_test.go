// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/taibuivan/safar/internal/platform/ctxutil"
	"github.com/taibuivan/safar/internal/platform/middleware"
	"github.com/taibuivan/safar/internal/platform/ratelimit"
	"github.com/taibuivan/safar/internal/platform/sec"
)

type devConfig bool

func (c devConfig) IsDevelopment() bool { return bool(c) }

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

/*
TestRequestID_AdoptsAndGenerates verifies header propagation.
*/
func TestRequestID_AdoptsAndGenerates(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	// 1. Client-provided ID is kept
	request := httptest.NewRequest(http.MethodPost, "/api/auth/init-login", nil)
	request.Header.Set("X-Request-ID", "client-id")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, "client-id", seen)
	assert.Equal(t, "client-id", recorder.Header().Get("X-Request-ID"))

	// 2. Missing ID is generated
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get("X-Request-ID"))
}

/*
TestRateLimit_BlocksAfterBurst exhausts a bucket of one.
*/
func TestRateLimit_BlocksAfterBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := ratelimit.NewKeyed(ctx, rate.Limit(0.0001), 1)
	handler := middleware.RateLimit(limiter)(okHandler)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.JSONEq(t, `{"success":false,"message":"Rate limit exceeded"}`, second.Body.String())
}

/*
TestPanicRecovery converts a panic into a 500 with the flat body.
*/
func TestPanicRecovery(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	handler := middleware.PanicRecovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"success":false`)
}

/*
TestCORS checks origin allow-listing outside development.
*/
func TestCORS(t *testing.T) {
	tests := []struct {
		name    string
		dev     bool
		origin  string
		allowed bool
	}{
		{"dev_any_origin", true, "http://localhost:5173", true},
		{"prod_listed_origin", false, "https://safar.app", true},
		{"prod_unlisted_origin", false, "https://evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.CORS(devConfig(tt.dev), "https://safar.app, https://admin.safar.app")(okHandler)

			request := httptest.NewRequest(http.MethodOptions, "/api/auth/init-login", nil)
			request.Header.Set("Origin", tt.origin)
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusNoContent, recorder.Code)
			if tt.allowed {
				assert.Equal(t, tt.origin, recorder.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

/*
TestRealIP prefers proxy headers over the socket address.
*/
func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", middleware.RealIP(request))

	request.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", middleware.RealIP(request))

	request.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", middleware.RealIP(request))
}

type staticVerifier map[string]*sec.AuthClaims

func (verifier staticVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	claims, ok := verifier[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return claims, nil
}

/*
TestAuthenticate covers anonymous, malformed, rejected and accepted headers.
*/
func TestAuthenticate(t *testing.T) {
	verifier := staticVerifier{"good": {UserID: "u1", Mobile: "989123456789"}}

	var seen *sec.AuthClaims
	protected := middleware.Authenticate(verifier)(middleware.RequireAuth(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = middleware.Claims(request.Context())
	})))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"wrong_scheme", "Basic abc", http.StatusUnauthorized},
		{"missing_token", "Bearer ", http.StatusUnauthorized},
		{"unknown_token", "Bearer bad", http.StatusUnauthorized},
		{"accepted", "bearer good", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			request := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()
			protected.ServeHTTP(recorder, request)

			assert.Equal(t, tt.status, recorder.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "u1", seen.UserID)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}
