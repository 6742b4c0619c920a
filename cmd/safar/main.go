// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command safar is the console sign-in client.
//
// # Usage
//
//	safar login [-country iso]
//	safar whoami
//	safar logout
//	safar countries
//
// Configuration comes from the environment (see platform/config.Client).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/taibuivan/safar/internal/authflow"
	"github.com/taibuivan/safar/internal/console"
	"github.com/taibuivan/safar/internal/country"
	"github.com/taibuivan/safar/internal/gateway"
	"github.com/taibuivan/safar/internal/i18n"
	"github.com/taibuivan/safar/internal/mobile"
	"github.com/taibuivan/safar/internal/platform/config"
	"github.com/taibuivan/safar/internal/platform/constants"
	redisstore "github.com/taibuivan/safar/internal/platform/redis"
	"github.com/taibuivan/safar/internal/platform/sec"
	"github.com/taibuivan/safar/internal/session"
)

// Exit codes.
const (
	exitOK        = 0
	exitFailure   = 1
	exitUsage     = 2
	exitAbandoned = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:]))
}

func run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		usage(os.Stderr)
		return exitUsage
	}

	if args[0] == "countries" {
		printCountries(os.Stdout)
		return exitOK
	}

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}

	log := newLogger(cfg.Debug)
	slog.SetDefault(log)

	storage, closeStorage, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Error("session_storage_unavailable", slog.Any("error", err))
		fmt.Fprintln(os.Stderr, "session storage unavailable:", err)
		return exitFailure
	}
	defer closeStorage()

	store := session.NewStore(storage, log)

	switch args[0] {
	case "login":
		return login(ctx, cfg, store, log, args[1:])
	case "whoami":
		return whoami(ctx, store, os.Stdout)
	case "logout":
		if err := store.Clear(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "logout failed:", err)
			return exitFailure
		}
		fmt.Fprintln(os.Stdout, "Signed out.")
		return exitOK
	default:
		usage(os.Stderr)
		return exitUsage
	}
}

// # Subcommands

func login(ctx context.Context, cfg *config.Client, store *session.Store, log *slog.Logger, args []string) int {
	flags := flag.NewFlagSet("login", flag.ContinueOnError)
	iso := flags.String("country", cfg.DefaultCountry, "ISO code of the initial calling code")
	if err := flags.Parse(args); err != nil {
		return exitUsage
	}

	translator := i18n.New(cfg.Language)
	client := gateway.New(cfg.AuthBaseURL, translator,
		gateway.WithTimeout(cfg.AuthTimeout),
		gateway.WithLogger(log),
	)

	opts := []console.Option{console.WithInitialPassword(client, store, translator)}
	if secrets := console.TerminalSecrets(int(os.Stdin.Fd()), os.Stdout); secrets != nil {
		opts = append(opts, console.WithSecretReader(secrets))
	}
	terminal := console.New(os.Stdin, os.Stdout, opts...)

	flow := authflow.New(client, store, mobile.NewValidator(translator), country.NewSelectorFor(*iso),
		authflow.WithLogger(log),
		authflow.WithTranslator(translator),
		authflow.OnAuthenticated(terminal.Authenticated),
	)

	if _, err := terminal.Run(ctx, flow); err != nil {
		if errors.Is(err, console.ErrAbandoned) || errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stdout, "Sign-in cancelled.")
			return exitAbandoned
		}
		fmt.Fprintln(os.Stderr, "sign-in failed:", err)
		return exitFailure
	}
	return exitOK
}

func whoami(ctx context.Context, store *session.Store, out io.Writer) int {
	record, err := session.Guard(ctx, store)
	if err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			fmt.Fprintln(out, "Not signed in. Run: safar login")
			return exitFailure
		}
		fmt.Fprintln(os.Stderr, "session unreadable:", err)
		return exitFailure
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Name\t%s\n", record.User.DisplayName())
	fmt.Fprintf(writer, "Mobile\t%s\n", record.User.Mobile)
	fmt.Fprintf(writer, "Role\t%s\n", record.User.Role)

	// Display only: the client holds no verification key
	if claims, err := sec.PeekClaims(record.Token); err == nil && claims.ExpiresAt != nil {
		expiry := claims.ExpiresAt.Time
		state := "valid"
		if time.Now().After(expiry) {
			state = "expired"
		}
		fmt.Fprintf(writer, "Token\t%s until %s\n", state, expiry.Local().Format(time.RFC1123))
	}
	_ = writer.Flush()
	return exitOK
}

func printCountries(out io.Writer) {
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ISO\tDIAL\tNAME")
	for _, entry := range country.Catalog() {
		fmt.Fprintf(writer, "%s\t+%s\t%s\n", entry.ISOCode, entry.DialCode, entry.DisplayName)
	}
	_ = writer.Flush()
}

// # Wiring

// openStorage selects the durable backend named by SESSION_BACKEND.
func openStorage(ctx context.Context, cfg *config.Client, log *slog.Logger) (session.Storage, func(), error) {
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		client, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			return nil, nil, err
		}
		closeClient := func() {
			if err := client.Close(); err != nil {
				log.Warn("redis_close_error", slog.Any("error", err))
			}
		}
		return session.NewRedisStorage(client, cfg.SessionNamespace), closeClient, nil

	case config.SessionBackendMemory:
		return session.NewMemoryStorage(), func() {}, nil

	default:
		return session.NewFileStorage(cfg.SessionFile), func() {}, nil
	}
}

// newLogger writes JSON to stderr so it never interleaves with prompts.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

func usage(out io.Writer) {
	fmt.Fprintf(out, "%s %s\n\n", constants.AppName, constants.AppVersion)
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  safar login [-country iso]   sign in with your mobile number")
	fmt.Fprintln(out, "  safar whoami                 show the signed-in account")
	fmt.Fprintln(out, "  safar logout                 forget the session on this device")
	fmt.Fprintln(out, "  safar countries              list supported calling codes")
}
