// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into strongly-typed
Go structs, providing early validation and default values. A local '.env' file
is loaded first when present; variables already set in the process win.

Usage:

	cfg, err := config.LoadClient()
	if err != nil {
	    log.Fatal(err)
	}

Two schemas live here: [Client] for the console sign-in client and [Server]
for the development authentication backend.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Session Backends

const (
	SessionBackendFile   = "file"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

// # Client Schema

// Client holds the runtime configuration for the sign-in client.
type Client struct {

	// Authentication backend
	AuthBaseURL string        `env:"AUTH_BASE_URL" envDefault:"http://localhost:8080/api/auth"`
	AuthTimeout time.Duration `env:"AUTH_TIMEOUT"  envDefault:"10s"`

	// Presentation
	Language       string `env:"LANGUAGE"        envDefault:"en"`
	DefaultCountry string `env:"DEFAULT_COUNTRY" envDefault:"ir"`
	Debug          bool   `env:"DEBUG"           envDefault:"false"`

	// Durable session storage
	SessionBackend   string `env:"SESSION_BACKEND"   envDefault:"file"`
	SessionFile      string `env:"SESSION_FILE"`
	SessionNamespace string `env:"SESSION_NAMESPACE" envDefault:"default"`
	RedisURL         string `env:"REDIS_URL"`
}

// # Server Schema

// Server holds the runtime configuration for the development auth backend.
type Server struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`
	Language    string `env:"LANGUAGE"     envDefault:"fa"`

	// Relational Database (PostgreSQL). Empty keeps accounts in memory.
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis). Empty keeps verification codes in memory.
	RedisURL string `env:"REDIS_URL"`

	// Token signing keys. Empty paths generate an ephemeral key pair.
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH"`

	// OTPDevEcho logs issued verification codes. Refused in production.
	OTPDevEcho bool `env:"OTP_DEV_ECHO" envDefault:"false"`

	// Seed account with a password, created at startup when both are set.
	SeedMobile   string `env:"SEED_MOBILE"`
	SeedPassword string `env:"SEED_PASSWORD"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// LoadClient parses environment variables into a [Client] struct.
func LoadClient() (*Client, error) {
	cfg := &Client{}
	if err := parse(cfg); err != nil {
		return nil, err
	}

	switch cfg.SessionBackend {
	case SessionBackendFile, SessionBackendMemory:
	case SessionBackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("config: SESSION_BACKEND=redis requires REDIS_URL")
		}
	default:
		return nil, fmt.Errorf("config: unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}

	if cfg.SessionFile == "" {
		cfg.SessionFile = defaultSessionFile()
	}

	return cfg, nil
}

// LoadServer parses environment variables into a [Server] struct.
func LoadServer() (*Server, error) {
	cfg := &Server{}
	if err := parse(cfg); err != nil {
		return nil, err
	}

	if cfg.OTPDevEcho && cfg.IsProduction() {
		return nil, fmt.Errorf("config: OTP_DEV_ECHO must not be enabled in production")
	}

	if (cfg.JWTPrivKeyPath == "") != (cfg.JWTPubKeyPath == "") {
		return nil, fmt.Errorf("config: JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH must be set together")
	}

	if (cfg.SeedMobile == "") != (cfg.SeedPassword == "") {
		return nil, fmt.Errorf("config: SEED_MOBILE and SEED_PASSWORD must be set together")
	}

	return cfg, nil
}

// parse loads an optional .env file and maps the environment onto target.
func parse(target any) error {

	// A missing .env is the normal case outside local development
	_ = godotenv.Load()

	if err := env.Parse(target); err != nil {
		return fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return nil
}

// defaultSessionFile resolves $XDG_CONFIG_HOME/safar/storage.json.
func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "safar", "storage.json")
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Server) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Server) IsProduction() bool {
	return c.Environment == "production"
}

// HasDatabase reports whether accounts are stored in PostgreSQL.
func (c *Server) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// HasRedis reports whether verification codes are stored in Redis.
func (c *Server) HasRedis() bool {
	return c.RedisURL != ""
}

// HasSeedAccount reports whether a password account should be seeded.
func (c *Server) HasSeedAccount() bool {
	return c.SeedMobile != "" && c.SeedPassword != ""
}
