// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/safar/internal/gateway"
	"github.com/taibuivan/safar/internal/i18n"
	"github.com/taibuivan/safar/internal/identity"
	"github.com/taibuivan/safar/internal/platform/ctxutil"
)

var (
	translator = i18n.New("en")
	generic    = translator.T(i18n.ServerConnection)
	quietLog   = slog.New(slog.NewJSONHandler(io.Discard, nil))
)

type capturedRequest struct {
	path      string
	body      map[string]string
	requestID string
	mediaType string
	bearer    string
}

// newBackend serves a fixed status and body and records what it received.
func newBackend(t *testing.T, status int, body string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if captured != nil {
			captured.path = request.URL.Path
			captured.requestID = request.Header.Get("X-Request-ID")
			captured.mediaType = request.Header.Get("Content-Type")
			captured.bearer = request.Header.Get("Authorization")
			_ = json.NewDecoder(request.Body).Decode(&captured.body)
		}
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)
		_, _ = io.WriteString(writer, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func newClient(baseURL string, opts ...gateway.Option) *gateway.Client {
	return gateway.New(baseURL+"/api/auth", translator, append([]gateway.Option{gateway.WithLogger(quietLog)}, opts...)...)
}

/*
TestClient_RequestShapes verifies paths and bodies of every intent.
*/
func TestClient_RequestShapes(t *testing.T) {
	tests := []struct {
		name     string
		call     func(client *gateway.Client) gateway.Result
		path     string
		expected map[string]string
	}{
		{
			name:     "init_login",
			call:     func(c *gateway.Client) gateway.Result { return c.InitLogin(context.Background(), "989123456789") },
			path:     "/api/auth/init-login",
			expected: map[string]string{"mobile": "989123456789"},
		},
		{
			name:     "send_verification",
			call:     func(c *gateway.Client) gateway.Result { return c.SendVerificationCode(context.Background(), "989123456789") },
			path:     "/api/auth/send-verification",
			expected: map[string]string{"mobile": "989123456789"},
		},
		{
			name:     "verify_code",
			call:     func(c *gateway.Client) gateway.Result { return c.VerifyCode(context.Background(), "989123456789", "123456") },
			path:     "/api/auth/verify-code",
			expected: map[string]string{"mobile": "989123456789", "code": "123456"},
		},
		{
			name:     "login_password",
			call:     func(c *gateway.Client) gateway.Result { return c.LoginWithPassword(context.Background(), "989123456789", "pw") },
			path:     "/api/auth/login-password",
			expected: map[string]string{"mobile": "989123456789", "password": "pw"},
		},
		{
			name: "set_initial_password",
			call: func(c *gateway.Client) gateway.Result {
				return c.SetInitialPassword(context.Background(), "tok", "989123456789", "secret1")
			},
			path:     "/api/auth/set-initial-password",
			expected: map[string]string{"mobile": "989123456789", "newPassword": "secret1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captured := &capturedRequest{}
			server := newBackend(t, http.StatusOK, `{"success":false,"message":"nope"}`, captured)

			result := tt.call(newClient(server.URL))

			assert.Equal(t, tt.path, captured.path)
			assert.Equal(t, tt.expected, captured.body)
			assert.Equal(t, "application/json", captured.mediaType)
			assert.NotEmpty(t, captured.requestID)
			assert.False(t, result.Success)
			assert.Equal(t, "nope", result.Message)
		})
	}
}

/*
TestClient_PropagatesRequestID reuses the caller's correlation ID.
*/
func TestClient_PropagatesRequestID(t *testing.T) {
	captured := &capturedRequest{}
	server := newBackend(t, http.StatusOK, `{"success":true,"userExists":true}`, captured)

	ctx := ctxutil.WithRequestID(context.Background(), "trace-42")
	newClient(server.URL).InitLogin(ctx, "989123456789")

	assert.Equal(t, "trace-42", captured.requestID)
}

/*
TestClient_InitLogin normalizes the existence flags.
*/
func TestClient_InitLogin(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		success     bool
		userExists  bool
		hasPassword bool
	}{
		{"existing_with_password", `{"success":true,"userExists":true,"hasPassword":true}`, true, true, true},
		{"new_account", `{"success":true,"userExists":false}`, true, false, false},
		{"missing_flag_means_new", `{"success":true}`, true, false, false},
		{"rejected", `{"success":false,"message":"invalid"}`, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newBackend(t, http.StatusOK, tt.body, nil)
			result := newClient(server.URL).InitLogin(context.Background(), "989123456789")

			assert.Equal(t, tt.success, result.Success)
			assert.Equal(t, tt.userExists, result.UserExists)
			assert.Equal(t, tt.hasPassword, result.HasPassword)
		})
	}
}

/*
TestClient_GenericFailures maps every untrusted answer to the connectivity message.
*/
func TestClient_GenericFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"bad_request", http.StatusBadRequest, `{"success":false,"message":"شماره موبایل معتبر نیست"}`},
		{"too_many_requests", http.StatusTooManyRequests, `{"success":false,"message":"slow down"}`},
		{"server_error", http.StatusInternalServerError, `{"success":false}`},
		{"not_json", http.StatusOK, `<html>proxy error</html>`},
		{"empty_body", http.StatusOK, ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newBackend(t, tt.status, tt.body, nil)
			result := newClient(server.URL).InitLogin(context.Background(), "989123456789")

			assert.False(t, result.Success)
			assert.Equal(t, generic, result.Message)
		})
	}
}

/*
TestClient_TransportFailure covers an unreachable backend.
*/
func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	result := newClient(baseURL).SendVerificationCode(context.Background(), "989123456789")

	assert.False(t, result.Success)
	assert.Equal(t, generic, result.Message)
}

/*
TestClient_Timeout turns a slow backend into a generic failure.
*/
func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		select {
		case <-release:
		case <-request.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	result := newClient(server.URL, gateway.WithTimeout(50*time.Millisecond)).InitLogin(context.Background(), "989123456789")

	assert.False(t, result.Success)
	assert.Equal(t, generic, result.Message)
}

/*
TestClient_Credentials enforces token and user on terminal successes.
*/
func TestClient_Credentials(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		success bool
		message string
	}{
		{"complete", `{"success":true,"message":"ok","token":"t","user":{"id":1,"mobile":"989123456789","role":"USER"}}`, true, "ok"},
		{"missing_token", `{"success":true,"user":{"id":1}}`, false, generic},
		{"missing_user", `{"success":true,"token":"t"}`, false, generic},
		{"rejected_with_token", `{"success":false,"message":"invalid password","token":"leak","user":{"id":1}}`, false, "invalid password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newBackend(t, http.StatusOK, tt.body, nil)
			client := newClient(server.URL)

			for _, result := range []gateway.Result{
				client.VerifyCode(context.Background(), "989123456789", "123456"),
				client.LoginWithPassword(context.Background(), "989123456789", "pw"),
			} {
				assert.Equal(t, tt.success, result.Success)
				assert.Equal(t, tt.message, result.Message)

				if tt.success {
					assert.Equal(t, "t", result.Token)
					require.NotNil(t, result.User)
					assert.Equal(t, identity.ID("1"), result.User.ID)
				} else {
					assert.Empty(t, result.Token)
					assert.Nil(t, result.User)
				}
			}
		})
	}
}

/*
TestClient_CircuitOpens stops calling a failing backend.
*/
func TestClient_CircuitOpens(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		hits.Add(1)
		writer.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newClient(server.URL, gateway.WithBreaker(2, time.Minute))

	for i := 0; i < 4; i++ {
		result := client.InitLogin(context.Background(), "989123456789")
		assert.False(t, result.Success)
		assert.Equal(t, generic, result.Message)
	}

	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, gobreaker.StateOpen, client.State())
}

/*
TestClient_ClientErrorsKeepCircuitClosed shows 4xx answers are not faults.
*/
func TestClient_ClientErrorsKeepCircuitClosed(t *testing.T) {
	server := newBackend(t, http.StatusBadRequest, `{"success":false}`, nil)
	client := newClient(server.URL, gateway.WithBreaker(1, time.Minute))

	for i := 0; i < 3; i++ {
		client.InitLogin(context.Background(), "989123456789")
	}

	assert.Equal(t, gobreaker.StateClosed, client.State())
}

/*
TestClient_SetInitialPassword sends the session token as a bearer header and
only there.
*/
func TestClient_SetInitialPassword(t *testing.T) {
	captured := &capturedRequest{}
	server := newBackend(t, http.StatusOK, `{"success":true,"message":"Password set successfully."}`, captured)
	client := newClient(server.URL)

	result := client.SetInitialPassword(context.Background(), "tok-1", "989123456789", "secret1")

	assert.True(t, result.Success)
	assert.Equal(t, "Password set successfully.", result.Message)
	assert.Equal(t, "Bearer tok-1", captured.bearer)

	client.InitLogin(context.Background(), "989123456789")
	assert.Empty(t, captured.bearer)
}

/*
TestClient_SetInitialPasswordFailures keeps rejections and collapses faults.
*/
func TestClient_SetInitialPasswordFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"already_set", http.StatusOK, `{"success":false,"message":"A password is already set for this account."}`, "A password is already set for this account."},
		{"unauthorized", http.StatusUnauthorized, `{"success":false,"message":"unauthorized"}`, generic},
		{"server_fault", http.StatusInternalServerError, `{}`, generic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newBackend(t, tt.status, tt.body, nil)

			result := newClient(server.URL).SetInitialPassword(context.Background(), "tok", "989123456789", "secret1")

			assert.False(t, result.Success)
			assert.Equal(t, tt.message, result.Message)
		})
	}
}

/*
TestClient_KeepsUnknownUserMembers passes backend profile fields through.
*/
func TestClient_KeepsUnknownUserMembers(t *testing.T) {
	server := newBackend(t, http.StatusOK,
		`{"success":true,"token":"t","user":{"id":1,"mobile":"989123456789","role":"USER","walletBalance":1200}}`, nil)

	result := newClient(server.URL).VerifyCode(context.Background(), "989123456789", "123456")

	require.True(t, result.Success)
	require.NotNil(t, result.User)
	assert.JSONEq(t, `1200`, string(result.User.Extra["walletBalance"]))
}
