// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package console_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/safar/internal/authflow"
	"github.com/taibuivan/safar/internal/console"
	"github.com/taibuivan/safar/internal/country"
	"github.com/taibuivan/safar/internal/devauth"
	"github.com/taibuivan/safar/internal/gateway"
	"github.com/taibuivan/safar/internal/i18n"
	"github.com/taibuivan/safar/internal/identity"
	"github.com/taibuivan/safar/internal/mobile"
	"github.com/taibuivan/safar/internal/platform/constants"
	"github.com/taibuivan/safar/internal/platform/sec"
	"github.com/taibuivan/safar/internal/session"
)

var (
	translator = i18n.New("en")
	quietLog   = slog.New(slog.NewJSONHandler(io.Discard, nil))
)

// codeGateway accepts 123456 for every number and knows no passwords.
type codeGateway struct {
	sent []string
}

func (gw *codeGateway) InitLogin(context.Context, string) gateway.Result {
	return gateway.Result{Success: true}
}

func (gw *codeGateway) SendVerificationCode(_ context.Context, mobile string) gateway.Result {
	gw.sent = append(gw.sent, mobile)
	return gateway.Result{Success: true}
}

func (gw *codeGateway) VerifyCode(_ context.Context, mobile, code string) gateway.Result {
	if code != "123456" {
		return gateway.Result{Message: "wrong code"}
	}
	return gateway.Result{
		Success: true,
		Token:   "token",
		User:    &identity.Principal{ID: "7", Mobile: mobile, FirstName: "Sara"},
	}
}

func (gw *codeGateway) LoginWithPassword(context.Context, string, string) gateway.Result {
	return gateway.Result{Message: "no password"}
}

type harness struct {
	console *console.Console
	flow    *authflow.Controller
	store   *session.Store
	out     *bytes.Buffer
}

func newHarness(t *testing.T, gw authflow.Gateway, input string) *harness {
	t.Helper()

	h := &harness{
		out:   &bytes.Buffer{},
		store: session.NewStore(session.NewMemoryStorage(), quietLog),
	}
	h.console = console.New(strings.NewReader(input), h.out)
	h.flow = authflow.New(gw, h.store, mobile.NewValidator(translator), country.NewSelector(),
		authflow.WithLogger(quietLog),
		authflow.WithTranslator(translator),
		authflow.OnAuthenticated(h.console.Authenticated),
	)
	return h
}

/*
TestRun_CodeFlow signs a new number in with a one-time code.
*/
func TestRun_CodeFlow(t *testing.T) {
	gw := &codeGateway{}
	h := newHarness(t, gw, "912\n9123456789\n12345\n999999\n123456\n")

	result, err := h.console.Run(context.Background(), h.flow)
	require.NoError(t, err)

	assert.Equal(t, "token", result.Token)
	assert.True(t, result.FirstLogin)
	assert.Equal(t, []string{"989123456789"}, gw.sent)

	output := h.out.String()
	assert.Contains(t, output, translator.T(i18n.InvalidIranMobile))
	assert.Contains(t, output, translator.T(i18n.VerificationCodeLength))
	assert.Contains(t, output, "wrong code")
	assert.Contains(t, output, "Code sent to +98 912 345 6789")
	assert.Contains(t, output, "Welcome to Safar, Sara.")

	record, err := h.store.Read(context.Background())
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "token", record.Token)
}

/*
TestRun_Commands covers country switching, back and cancel.
*/
func TestRun_Commands(t *testing.T) {
	gw := &codeGateway{}
	h := newHarness(t, gw, ":country zz\n:country TR\n5321234567\n:code\n:back\n:help\n:cancel\n")

	result, err := h.console.Run(context.Background(), h.flow)
	assert.ErrorIs(t, err, console.ErrAbandoned)
	assert.Nil(t, result)

	assert.Equal(t, []string{"905321234567"}, gw.sent)

	output := h.out.String()
	assert.Contains(t, output, `unknown country "zz"`)
	assert.Contains(t, output, "tr +90 mobile: ")
	assert.Contains(t, output, ":code is available at the password prompt")
	assert.Contains(t, output, ":country <iso>")

	state := h.flow.State()
	assert.Equal(t, authflow.StepMobileEntry, state.Step)
	assert.Empty(t, state.Mobile)
}

/*
TestRun_EndOfInput abandons the flow.
*/
func TestRun_EndOfInput(t *testing.T) {
	h := newHarness(t, &codeGateway{}, "9123456789\n")

	_, err := h.console.Run(context.Background(), h.flow)
	assert.ErrorIs(t, err, console.ErrAbandoned)
	assert.Equal(t, authflow.StepMobileEntry, h.flow.State().Step)
}

/*
TestRun_PasswordAgainstBackend signs a seeded account in through the
development backend, reading the password through the secret reader.
*/
func TestRun_PasswordAgainstBackend(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tokens, err := sec.NewEphemeralTokenService(constants.AuthIssuer)
	require.NoError(t, err)

	service := devauth.NewService(ctx, devauth.NewMemoryAccountRepository(), devauth.NewMemoryCodeRepository(),
		tokens, devauth.LogSender{Logger: quietLog}, translator, quietLog)
	require.NoError(t, service.SeedAccount(ctx, "989123456789", "secret"))

	router := chi.NewRouter()
	router.Mount("/api/auth", devauth.NewHandler(service, tokens).Routes())
	server := httptest.NewServer(router)
	defer server.Close()

	secrets := []string{"wrong", "secret"}
	out := &bytes.Buffer{}
	store := session.NewStore(session.NewMemoryStorage(), quietLog)

	terminal := console.New(strings.NewReader("9123456789\n"), out, console.WithSecretReader(func() (string, error) {
		secret := secrets[0]
		secrets = secrets[1:]
		return secret, nil
	}))
	flow := authflow.New(gateway.New(server.URL+"/api/auth", translator), store,
		mobile.NewValidator(translator), country.NewSelector(),
		authflow.WithLogger(quietLog),
		authflow.WithTranslator(translator),
		authflow.OnAuthenticated(terminal.Authenticated),
	)

	result, err := terminal.Run(ctx, flow)
	require.NoError(t, err)
	require.NotNil(t, result.User)
	assert.True(t, result.User.HasPassword)

	assert.Contains(t, out.String(), translator.T(i18n.ServerInvalidPassword))
	assert.Contains(t, out.String(), "Welcome to Safar, 989123456789.")

	claims, err := tokens.VerifyToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "989123456789", claims.Mobile)
}

// # Initial Password

// passwordGateway is a codeGateway that also records initial passwords.
type passwordGateway struct {
	codeGateway
	answers []gateway.Result
	set     []string
}

func (gw *passwordGateway) SetInitialPassword(_ context.Context, token, mobile, password string) gateway.Result {
	gw.set = append(gw.set, token+"|"+mobile+"|"+password)
	answer := gw.answers[0]
	gw.answers = gw.answers[1:]
	return answer
}

// scriptedSecrets returns the given answers in order, then io.EOF.
func scriptedSecrets(answers ...string) console.SecretReader {
	return func() (string, error) {
		if len(answers) == 0 {
			return "", io.EOF
		}
		answer := answers[0]
		answers = answers[1:]
		return answer, nil
	}
}

func newPasswordHarness(t *testing.T, gw *passwordGateway, secrets console.SecretReader) *harness {
	t.Helper()

	h := &harness{
		out:   &bytes.Buffer{},
		store: session.NewStore(session.NewMemoryStorage(), quietLog),
	}
	h.console = console.New(strings.NewReader("9123456789\n123456\n"), h.out,
		console.WithSecretReader(secrets),
		console.WithInitialPassword(gw, h.store, translator),
	)
	h.flow = authflow.New(gw, h.store, mobile.NewValidator(translator), country.NewSelector(),
		authflow.WithLogger(quietLog),
		authflow.WithTranslator(translator),
		authflow.OnAuthenticated(h.console.Authenticated),
	)
	return h
}

/*
TestRun_InitialPassword checks length and confirmation locally before
calling the backend, then records the password in the session.
*/
func TestRun_InitialPassword(t *testing.T) {
	gw := &passwordGateway{answers: []gateway.Result{
		{Message: "backend busy"},
		{Success: true, Message: "Password set successfully."},
	}}
	h := newPasswordHarness(t, gw, scriptedSecrets(
		"12345", "12345",
		"secret1", "secret2",
		"secret1", "secret1",
		"secret1", "secret1",
	))

	result, err := h.console.Run(context.Background(), h.flow)
	require.NoError(t, err)
	assert.True(t, result.User.HasPassword)

	assert.Equal(t, []string{
		"token|989123456789|secret1",
		"token|989123456789|secret1",
	}, gw.set)

	output := h.out.String()
	assert.Contains(t, output, translator.T(i18n.PasswordMinLength))
	assert.Contains(t, output, translator.T(i18n.PasswordsNotMatch))
	assert.Contains(t, output, "backend busy")
	assert.Contains(t, output, "Password set successfully.")

	record, err := h.store.Read(context.Background())
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.True(t, record.User.HasPassword)
	assert.Equal(t, "token", record.Token)
}

/*
TestRun_InitialPasswordSkipped never calls the backend on an empty answer.
*/
func TestRun_InitialPasswordSkipped(t *testing.T) {
	tests := []struct {
		name    string
		secrets console.SecretReader
	}{
		{"empty_answer", scriptedSecrets("")},
		{"end_of_input", scriptedSecrets()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &passwordGateway{}
			h := newPasswordHarness(t, gw, tt.secrets)

			result, err := h.console.Run(context.Background(), h.flow)
			require.NoError(t, err)
			assert.False(t, result.User.HasPassword)
			assert.Empty(t, gw.set)
		})
	}
}

/*
TestRun_InitialPasswordOnlyFirstTime skips returning accounts.
*/
func TestRun_InitialPasswordOnlyFirstTime(t *testing.T) {
	gw := &passwordGateway{}
	h := newPasswordHarness(t, gw, scriptedSecrets("secret1", "secret1"))

	_, err := h.store.MarkFirstLogin(context.Background(), "7")
	require.NoError(t, err)

	result, err := h.console.Run(context.Background(), h.flow)
	require.NoError(t, err)
	assert.False(t, result.FirstLogin)
	assert.Empty(t, gw.set)
	assert.NotContains(t, h.out.String(), "Set a password")
}

// codeChannel is a CodeSender that hands every dispatched code to the test.
type codeChannel chan string

func (codes codeChannel) Send(_ context.Context, _, code string) error {
	codes <- code
	return nil
}

/*
TestRun_InitialPasswordAgainstBackend registers by code, defines a password
through the development backend and signs in with it afterwards.
*/
func TestRun_InitialPasswordAgainstBackend(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tokens, err := sec.NewEphemeralTokenService(constants.AuthIssuer)
	require.NoError(t, err)

	codes := make(codeChannel, 1)
	service := devauth.NewService(ctx, devauth.NewMemoryAccountRepository(), devauth.NewMemoryCodeRepository(),
		tokens, codes, translator, quietLog)

	router := chi.NewRouter()
	router.Mount("/api/auth", devauth.NewHandler(service, tokens).Routes())
	server := httptest.NewServer(router)
	defer server.Close()

	client := gateway.New(server.URL+"/api/auth", translator, gateway.WithLogger(quietLog))
	store := session.NewStore(session.NewMemoryStorage(), quietLog)

	reader, writer := io.Pipe()
	go func() {
		_, _ = io.WriteString(writer, "9123456789\n")
		_, _ = io.WriteString(writer, <-codes+"\n")
	}()

	out := &bytes.Buffer{}
	terminal := console.New(reader, out,
		console.WithSecretReader(scriptedSecrets("secret1", "secret1")),
		console.WithInitialPassword(client, store, translator),
	)
	flow := authflow.New(client, store, mobile.NewValidator(translator), country.NewSelector(),
		authflow.WithLogger(quietLog),
		authflow.WithTranslator(translator),
		authflow.OnAuthenticated(terminal.Authenticated),
	)

	result, err := terminal.Run(ctx, flow)
	require.NoError(t, err)
	assert.True(t, result.User.HasPassword)
	assert.Contains(t, out.String(), translator.T(i18n.ServerPasswordSet))

	init := client.InitLogin(ctx, "989123456789")
	assert.True(t, init.HasPassword)
	assert.True(t, client.LoginWithPassword(ctx, "989123456789", "secret1").Success)
}
