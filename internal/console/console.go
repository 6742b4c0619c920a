// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package console drives the sign-in flow from a terminal.

It renders each step as a prompt, feeds typed lines into the flow and reports
failures next to the step they belong to. Lines starting with ':' are
commands rather than input:

	:country <iso>   switch the calling code
	:code            sign in with a one-time code instead of the password
	:back            leave code verification
	:cancel          abandon sign-in
	:help            list the commands

A first sign-in of an account without a password can be followed by an
offer to define one; see [WithInitialPassword].
*/
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"

	"github.com/taibuivan/safar/internal/authflow"
	"github.com/taibuivan/safar/internal/country"
	"github.com/taibuivan/safar/internal/gateway"
	"github.com/taibuivan/safar/internal/i18n"
	"github.com/taibuivan/safar/internal/mobile"
	"github.com/taibuivan/safar/internal/platform/constants"
)

// ErrAbandoned is returned when the user cancels or input ends before sign-in.
var ErrAbandoned = errors.New("console: sign-in abandoned")

// Flow is the part of the sign-in controller the console drives.
type Flow interface {
	State() authflow.State
	SetMobile(raw string)
	SetPassword(password string)
	SetCode(raw string)
	ChangeCountry(iso string) authflow.State
	Submit(ctx context.Context) authflow.State
	RequestCode(ctx context.Context) authflow.State
	Back() authflow.State
	Cancel() authflow.State
}

// PasswordSetter defines the first password of a signed-in account.
type PasswordSetter interface {
	SetInitialPassword(ctx context.Context, token, mobile, newPassword string) gateway.Result
}

// SecretReader reads one line without echoing it.
type SecretReader func() (string, error)

// Console is an interactive sign-in session over a reader and a writer.
type Console struct {
	in          *bufio.Reader
	out         io.Writer
	readSecret  SecretReader
	completions chan authflow.Authenticated

	passwords  PasswordSetter
	sessions   authflow.SessionWriter
	translator *i18n.Translator
}

// Option customizes a [Console].
type Option func(*Console)

// WithSecretReader replaces line input for the password step.
func WithSecretReader(reader SecretReader) Option {
	return func(console *Console) { console.readSecret = reader }
}

// WithInitialPassword offers first-time accounts without a password to
// define one through setter. The stored session is rewritten on success.
func WithInitialPassword(setter PasswordSetter, sessions authflow.SessionWriter, translator *i18n.Translator) Option {
	return func(console *Console) {
		console.passwords = setter
		console.sessions = sessions
		console.translator = translator
	}
}

// New creates a Console. Without [WithSecretReader] passwords are read as
// ordinary lines.
func New(in io.Reader, out io.Writer, opts ...Option) *Console {
	console := &Console{
		in:          bufio.NewReader(in),
		out:         out,
		completions: make(chan authflow.Authenticated, 1),
	}
	console.readSecret = console.readLine

	for _, opt := range opts {
		opt(console)
	}
	return console
}

// TerminalSecrets reads from the terminal fd with echo disabled. It returns
// nil when fd is not a terminal.
func TerminalSecrets(fd int, out io.Writer) SecretReader {
	if !term.IsTerminal(fd) {
		return nil
	}
	return func() (string, error) {
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("console_read_secret_failed: %w", err)
		}
		return string(secret), nil
	}
}

// Authenticated is the completion callback to register on the controller.
func (console *Console) Authenticated(result authflow.Authenticated) {
	select {
	case console.completions <- result:
	default:
	}
}

// Run prompts until the flow authenticates, the user abandons it or ctx ends.
func (console *Console) Run(ctx context.Context, flow Flow) (*authflow.Authenticated, error) {
	console.printf("Sign in with your mobile number. Type :help for commands.\n")

	for {
		if err := ctx.Err(); err != nil {
			flow.Cancel()
			return nil, err
		}

		state := flow.State()
		console.prompt(state)

		var (
			line string
			err  error
		)
		if state.Step == authflow.StepPasswordEntry {
			line, err = console.readSecret()
		} else {
			line, err = console.readLine()
		}
		if err != nil {
			flow.Cancel()
			if errors.Is(err, io.EOF) {
				return nil, ErrAbandoned
			}
			return nil, err
		}

		if strings.HasPrefix(strings.TrimSpace(line), ":") {
			state, err = console.command(ctx, flow, state, strings.TrimSpace(line))
			if err != nil {
				return nil, err
			}
		} else {
			state = console.submit(ctx, flow, state, line)
		}

		select {
		case result := <-console.completions:
			console.welcome(result)
			console.offerPassword(ctx, &result)
			return &result, nil
		default:
		}

		if message := state.Error(); message != "" {
			console.printf("  ! %s\n", message)
		}
	}
}

// # Input

func (console *Console) submit(ctx context.Context, flow Flow, state authflow.State, line string) authflow.State {
	switch state.Step {
	case authflow.StepMobileEntry:
		flow.SetMobile(line)
	case authflow.StepPasswordEntry:
		flow.SetPassword(line)
	case authflow.StepCodeVerification:
		flow.SetCode(line)
	}
	return flow.Submit(ctx)
}

func (console *Console) command(ctx context.Context, flow Flow, state authflow.State, line string) (authflow.State, error) {
	fields := strings.Fields(line)

	switch fields[0] {
	case ":country":
		if len(fields) != 2 {
			console.printf("  usage: :country <iso>\n")
			return state, nil
		}
		iso := strings.ToLower(fields[1])
		if _, ok := country.Lookup(iso); !ok {
			console.printf("  unknown country %q\n", fields[1])
			return state, nil
		}
		return flow.ChangeCountry(iso), nil

	case ":code":
		if state.Step != authflow.StepPasswordEntry {
			console.printf("  :code is available at the password prompt\n")
			return state, nil
		}
		return flow.RequestCode(ctx), nil

	case ":back":
		if state.Step != authflow.StepCodeVerification {
			console.printf("  :back is available at the code prompt\n")
			return state, nil
		}
		return flow.Back(), nil

	case ":cancel":
		flow.Cancel()
		return state, ErrAbandoned

	case ":help":
		console.help()
		return state, nil

	default:
		console.printf("  unknown command %s (try :help)\n", fields[0])
		return state, nil
	}
}

func (console *Console) readLine() (string, error) {
	line, err := console.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// # Output

func (console *Console) prompt(state authflow.State) {
	dial := "+" + state.Country.DialCode

	switch state.Step {
	case authflow.StepMobileEntry:
		console.printf("%s %s mobile: ", state.Country.ISOCode, dial)
	case authflow.StepPasswordEntry:
		console.printf("Password for %s (:code to use a one-time code): ", mobile.Format(state.Country.DialCode, state.Mobile))
	case authflow.StepCodeVerification:
		console.printf("Code sent to %s: ", mobile.Format(state.Country.DialCode, state.Mobile))
	}
}

func (console *Console) welcome(result authflow.Authenticated) {
	name := ""
	if result.User != nil {
		name = result.User.DisplayName()
	}

	if result.FirstLogin {
		console.printf("Welcome to Safar, %s.\n", name)
		return
	}
	console.printf("Welcome back, %s.\n", name)
}

// # Initial Password

// offerPassword asks a first-time account without a password to define one.
// An empty answer or the end of input skips the offer.
func (console *Console) offerPassword(ctx context.Context, result *authflow.Authenticated) {
	if console.passwords == nil || !result.FirstLogin || result.User == nil || result.User.HasPassword {
		return
	}

	console.printf("Set a password for faster sign-in next time (leave empty to skip).\n")

	for ctx.Err() == nil {
		console.printf("New password: ")
		password, err := console.readSecret()
		if err != nil || password == "" {
			return
		}

		console.printf("Repeat password: ")
		confirmation, err := console.readSecret()
		if err != nil {
			return
		}

		if message := console.checkPassword(password, confirmation); message != "" {
			console.printf("  ! %s\n", message)
			continue
		}

		answer := console.passwords.SetInitialPassword(ctx, result.Token, result.User.Mobile, password)
		if !answer.Success {
			message := answer.Message
			if message == "" {
				message = console.translator.T(i18n.PasswordSetError)
			}
			console.printf("  ! %s\n", message)
			continue
		}

		result.User.HasPassword = true
		if err := console.sessions.Write(ctx, result.Token, result.User); err != nil {
			console.printf("  ! %s\n", console.translator.T(i18n.SessionSave))
		}
		console.printf("%s\n", answer.Message)
		return
	}
}

func (console *Console) checkPassword(password, confirmation string) string {
	switch {
	case len([]rune(password)) < constants.MinPasswordLength:
		return console.translator.T(i18n.PasswordMinLength)
	case password != confirmation:
		return console.translator.T(i18n.PasswordsNotMatch)
	default:
		return ""
	}
}

func (console *Console) help() {
	console.printf("  :country <iso>  switch calling code (%s)\n", strings.Join(isoCodes(), ", "))
	console.printf("  :code           use a one-time code instead of the password\n")
	console.printf("  :back           return to mobile entry from the code prompt\n")
	console.printf("  :cancel         abandon sign-in\n")
}

func (console *Console) printf(format string, args ...any) {
	fmt.Fprintf(console.out, format, args...)
}

func isoCodes() []string {
	catalog := country.Catalog()
	codes := make([]string, 0, len(catalog))
	for _, entry := range catalog {
		codes = append(codes, entry.ISOCode)
	}
	return codes
}
