// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package gateway is the HTTP client of the authentication backend.

It turns the sign-in intents into JSON POSTs and normalizes every answer
into a [Result]. No method returns an error: transport failures, non-2xx
statuses, undecodable bodies and an open circuit all collapse into a failed
Result carrying the generic connectivity message.

Architecture:

  - Transport: net/http with a per-request timeout.
  - Protection: a sony/gobreaker circuit that fails fast after repeated
    transport or 5xx failures. Nothing is ever retried automatically.
  - Tracing: every request carries an X-Request-ID from the context.
  - Auth: post-sign-in intents send the session token as a bearer header.
*/
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/taibuivan/safar/internal/i18n"
	"github.com/taibuivan/safar/internal/identity"
	"github.com/taibuivan/safar/internal/platform/constants"
	"github.com/taibuivan/safar/internal/platform/ctxutil"
)

// # Endpoints

const (
	PathInitLogin        = "/init-login"
	PathSendVerification = "/send-verification"
	PathVerifyCode       = "/verify-code"
	PathLoginPassword    = "/login-password"
	PathSetPassword      = "/set-initial-password"
)

// Defaults for the transport and circuit.
const (
	defaultTimeout          = 10 * time.Second
	defaultMaxFailures      = 5
	defaultOpenTimeout      = 30 * time.Second
	maxResponseBodyBytes    = 1 << 20
	breakerName             = "auth-gateway"
	breakerHalfOpenRequests = 1
)

// errServerFault marks 5xx answers so the circuit counts them.
var errServerFault = errors.New("gateway: server fault")

// # Result

// Result is the normalized answer of every gateway call.
//
// A successful verify call always carries Token and User; a failed call never does.
type Result struct {
	Success     bool
	Message     string
	UserExists  bool
	HasPassword bool
	Token       string
	User        *identity.Principal
}

// wireResponse is the flat JSON body shared by every endpoint.
type wireResponse struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message"`
	UserExists  *bool               `json:"userExists"`
	HasPassword *bool               `json:"hasPassword"`
	Token       string              `json:"token"`
	User        *identity.Principal `json:"user"`
}

// # Client

// Client calls the authentication backend. It is safe for concurrent use.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	maxFailures uint32
	openTimeout time.Duration
	breaker     *gobreaker.CircuitBreaker
	translator  *i18n.Translator
	logger      *slog.Logger
}

// Option customizes a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(client *Client) { client.httpClient = httpClient }
}

// WithTimeout bounds each request, including reading the body.
func WithTimeout(timeout time.Duration) Option {
	return func(client *Client) { client.timeout = timeout }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(client *Client) { client.logger = logger }
}

// WithBreaker tunes the circuit: it opens after maxFailures consecutive
// faults and half-opens again after openTimeout.
func WithBreaker(maxFailures uint32, openTimeout time.Duration) Option {
	return func(client *Client) {
		client.maxFailures = maxFailures
		client.openTimeout = openTimeout
	}
}

// New creates a Client for baseURL, e.g. "http://localhost:8080/api/auth".
func New(baseURL string, translator *i18n.Translator, opts ...Option) *Client {
	client := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  http.DefaultClient,
		timeout:     defaultTimeout,
		maxFailures: defaultMaxFailures,
		openTimeout: defaultOpenTimeout,
		translator:  translator,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(client)
	}

	client.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: breakerHalfOpenRequests,
		Timeout:     client.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= client.maxFailures
		},
		// A caller abandoning its own request says nothing about backend health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			client.logger.Warn("gateway_circuit_state_changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return client
}

// # Intents

// InitLogin asks whether an account exists for mobile.
func (client *Client) InitLogin(ctx context.Context, mobile string) Result {
	wire, ok := client.post(ctx, PathInitLogin, "", map[string]string{
		constants.FieldMobile: mobile,
	})
	if !ok {
		return client.connectivityFailure()
	}
	if !wire.Success {
		return Result{Message: wire.Message}
	}

	return Result{
		Success:     true,
		Message:     wire.Message,
		UserExists:  wire.UserExists != nil && *wire.UserExists,
		HasPassword: wire.HasPassword != nil && *wire.HasPassword,
	}
}

// SendVerificationCode asks the backend to dispatch a one-time code to mobile.
func (client *Client) SendVerificationCode(ctx context.Context, mobile string) Result {
	wire, ok := client.post(ctx, PathSendVerification, "", map[string]string{
		constants.FieldMobile: mobile,
	})
	if !ok {
		return client.connectivityFailure()
	}
	return Result{Success: wire.Success, Message: wire.Message}
}

// VerifyCode redeems a one-time code. Success carries the session credentials.
func (client *Client) VerifyCode(ctx context.Context, mobile, code string) Result {
	wire, ok := client.post(ctx, PathVerifyCode, "", map[string]string{
		constants.FieldMobile: mobile,
		constants.FieldCode:   code,
	})
	if !ok {
		return client.connectivityFailure()
	}
	return client.credentials(ctx, PathVerifyCode, wire)
}

// LoginWithPassword authenticates an existing account by password.
func (client *Client) LoginWithPassword(ctx context.Context, mobile, password string) Result {
	wire, ok := client.post(ctx, PathLoginPassword, "", map[string]string{
		constants.FieldMobile:   mobile,
		constants.FieldPassword: password,
	})
	if !ok {
		return client.connectivityFailure()
	}
	return client.credentials(ctx, PathLoginPassword, wire)
}

// SetInitialPassword defines the first password of the account signed in
// with token. The backend refuses when the account already has one.
func (client *Client) SetInitialPassword(ctx context.Context, token, mobile, newPassword string) Result {
	wire, ok := client.post(ctx, PathSetPassword, token, map[string]string{
		constants.FieldMobile:      mobile,
		constants.FieldNewPassword: newPassword,
	})
	if !ok {
		return client.connectivityFailure()
	}
	return Result{Success: wire.Success, Message: wire.Message}
}

// # Normalization

// credentials enforces that a terminal success carries both token and user.
func (client *Client) credentials(ctx context.Context, path string, wire wireResponse) Result {
	if !wire.Success {
		return Result{Message: wire.Message}
	}

	if wire.Token == "" || wire.User == nil {
		client.logger.WarnContext(ctx, "gateway_incomplete_credentials",
			slog.String("path", path),
			slog.Bool("has_token", wire.Token != ""),
			slog.Bool("has_user", wire.User != nil),
		)
		return client.connectivityFailure()
	}

	return Result{
		Success: true,
		Message: wire.Message,
		Token:   wire.Token,
		User:    wire.User,
	}
}

func (client *Client) connectivityFailure() Result {
	return Result{Message: client.translator.T(i18n.ServerConnection)}
}

// # Transport

// exchange is what a breaker-protected round trip yields.
type exchange struct {
	status int
	body   []byte
}

// post sends payload to path and decodes the answer. A non-empty token is
// sent as a bearer credential. ok is false whenever the answer cannot be
// trusted: transport error, open circuit, non-2xx or bad JSON.
func (client *Client) post(ctx context.Context, path, token string, payload map[string]string) (wireResponse, bool) {
	ctx, requestID := ctxutil.EnsureRequestID(ctx)
	logger := client.logger.With(slog.String("path", path), slog.String("request_id", requestID))
	startTime := time.Now()

	body, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorContext(ctx, "gateway_encode_failed", slog.Any("error", err))
		return wireResponse{}, false
	}

	outcome, err := client.breaker.Execute(func() (interface{}, error) {
		return client.roundTrip(ctx, path, requestID, token, body)
	})
	if err != nil {
		logger.WarnContext(ctx, "gateway_request_failed",
			slog.Any("error", err),
			slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
		)
		return wireResponse{}, false
	}

	answer := outcome.(exchange)
	if answer.status < 200 || answer.status > 299 {
		logger.WarnContext(ctx, "gateway_unexpected_status", slog.Int("status", answer.status))
		return wireResponse{}, false
	}

	var wire wireResponse
	if err := json.Unmarshal(answer.body, &wire); err != nil {
		logger.WarnContext(ctx, "gateway_decode_failed", slog.Any("error", err))
		return wireResponse{}, false
	}

	logger.DebugContext(ctx, "gateway_request_finished",
		slog.Int("status", answer.status),
		slog.Bool("success", wire.Success),
		slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
	)

	return wire, true
}

// roundTrip performs one HTTP exchange. 5xx answers are reported as errors
// so the circuit counts them; 4xx answers are returned as data.
func (client *Client) roundTrip(ctx context.Context, path, requestID, token string, body []byte) (exchange, error) {
	ctx, cancel := context.WithTimeout(ctx, client.timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, client.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return exchange{}, fmt.Errorf("gateway_build_request_failed: %w", err)
	}
	request.Header.Set(constants.HeaderContentType, constants.MIMEApplicationJSON)
	request.Header.Set(constants.HeaderAccept, constants.MIMEApplicationJSON)
	request.Header.Set(constants.HeaderXRequestID, requestID)
	request.Header.Set(constants.HeaderUserAgent, constants.UserAgentName)
	if token != "" {
		request.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+token)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return exchange{}, fmt.Errorf("gateway_transport_failed: %w", err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBodyBytes))
	if err != nil {
		return exchange{}, fmt.Errorf("gateway_read_body_failed: %w", err)
	}

	if response.StatusCode >= 500 {
		return exchange{status: response.StatusCode}, fmt.Errorf("%w: status %d", errServerFault, response.StatusCode)
	}

	return exchange{status: response.StatusCode, body: payload}, nil
}

// State reports the circuit state, e.g. for diagnostics.
func (client *Client) State() gobreaker.State {
	return client.breaker.State()
}
