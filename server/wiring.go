package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/devilmonastery/chirp/internal/auth"
	"github.com/devilmonastery/chirp/internal/auth/oidc"
	"github.com/devilmonastery/chirp/internal/config"
	"github.com/devilmonastery/chirp/internal/domain/repositories"
	"github.com/devilmonastery/chirp/internal/infrastructure/database"
	"github.com/devilmonastery/chirp/internal/infrastructure/identity/backendapi"
	"github.com/devilmonastery/chirp/internal/infrastructure/identity/memory"
	"github.com/devilmonastery/chirp/migrations"
)

// buildIdentityProvider constructs the provider selected by identity.mode.
// The returned cleanup func releases any connections it opened.
func buildIdentityProvider(ctx context.Context, cfg *config.Config) (repositories.IdentityProvider, func(), error) {
	log := slog.Default().With("component", "server")
	noop := func() {}

	switch cfg.Identity.Mode {
	case config.IdentityModeBackendAPI:
		client, err := backendapi.New(backendapi.Config{
			BaseURL:   cfg.Identity.BaseURL,
			SecretKey: cfg.Identity.SecretKey,
			Timeout:   cfg.Identity.Timeout,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create identity provider client: %w", err)
		}
		log.Info("using hosted identity provider", "base_url", cfg.Identity.BaseURL)
		return client, noop, nil

	case config.IdentityModeMemory:
		log.Warn("using in-memory identity provider; users are lost on restart")
		return memory.NewStore(), noop, nil

	default:
		conn, err := connectWithRetry(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		if err := conn.RunMigrations(migrations.FS); err != nil {
			conn.Close()
			return nil, noop, fmt.Errorf("failed to run migrations: %w", err)
		}
		return database.NewUserStore(conn.DB), func() { conn.Close() }, nil
	}
}

// openUserStore opens the local identity store for admin commands
func openUserStore(ctx context.Context, cfg *config.Config) (repositories.UserStore, func(), error) {
	if cfg.Identity.Mode != config.IdentityModeLocal {
		return nil, func() {}, fmt.Errorf("user administration needs identity.mode %q (configured: %q)",
			config.IdentityModeLocal, cfg.Identity.Mode)
	}

	provider, cleanup, err := buildIdentityProvider(ctx, cfg)
	if err != nil {
		return nil, cleanup, err
	}
	return provider.(repositories.UserStore), cleanup, nil
}

// connectWithRetry opens the database, retrying with exponential backoff
// while it starts up
func connectWithRetry(ctx context.Context, cfg *config.Config) (*database.Connection, error) {
	log := slog.Default().With("component", "server")
	log.Info("connecting to database", "driver", cfg.Database.Driver)

	maxRetries := 10
	retryDelay := 2 * time.Second
	if cfg.Database.Driver == database.DriverSQLite {
		maxRetries = 1
	}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		conn, err := database.NewConnection(cfg.Database.Driver, cfg.Database.DSN())
		if err == nil {
			log.Info("connected to database", "driver", cfg.Database.Driver)
			return conn, nil
		}
		lastErr = err

		if i < maxRetries-1 {
			log.Warn("failed to connect to database",
				"attempt", i+1,
				"max_retries", maxRetries,
				"error", err,
				"retry_delay", retryDelay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
			retryDelay = min(retryDelay*2, 30*time.Second)
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, lastErr)
}

// forceMigration sets the schema version and exits
func forceMigration(cfg *config.Config, version int) error {
	conn, err := database.NewConnection(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer conn.Close()

	slog.Info("force setting migration version", "version", version)
	if err := conn.ForceMigrationVersion(migrations.FS, version); err != nil {
		return fmt.Errorf("failed to force migration version: %w", err)
	}
	slog.Info("migration version forced, exiting", "version", version)
	return nil
}

// buildTokenVerifier picks RS256/JWKS verification when an OIDC issuer is
// configured and the local HS256 key otherwise
func buildTokenVerifier(cfg *config.Config) (auth.TokenVerifier, error) {
	if cfg.Auth.UsesOIDC() {
		slog.Info("verifying session tokens against provider JWKS",
			"issuer", cfg.Auth.OIDC.Issuer,
			"jwks_url", cfg.Auth.OIDC.JWKSURL)
		return oidc.NewJWKSVerifier(cfg.Auth.OIDC.Issuer, cfg.Auth.OIDC.JWKSURL, cfg.Auth.OIDC.CacheTTL, nil), nil
	}

	if cfg.Auth.JWT.SigningKey == "" {
		return nil, fmt.Errorf("auth.jwt.signing_key is not configured")
	}
	return newJWTManager(cfg), nil
}

func newJWTManager(cfg *config.Config) *auth.JWTManager {
	return auth.NewJWTManager(cfg.Auth.JWT.SigningKey, cfg.Auth.JWT.Lifetime, cfg.Auth.JWT.Issuer)
}
