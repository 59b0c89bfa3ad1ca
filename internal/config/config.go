package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// Identity provider modes
const (
	IdentityModeLocal      = "local"       // users live in our own database
	IdentityModeMemory     = "memory"      // in-process store, for demos and tests
	IdentityModeBackendAPI = "backend_api" // hosted provider over its Backend API
)

// Config represents the server configuration
type Config struct {
	Database    DatabaseConfig  `yaml:"database"`
	GRPC        GRPCConfig      `yaml:"grpc"`
	Admin       AdminConfig     `yaml:"admin"`
	Identity    IdentityConfig  `yaml:"identity"`
	Auth        AuthConfig      `yaml:"auth"`
	RateLimit   RateLimitConfig `yaml:"ratelimit"`
	Environment string          `yaml:"environment"` // local, dev, prod
}

// DatabaseConfig holds database configuration for the local identity store
type DatabaseConfig struct {
	Driver   string         `yaml:"driver"` // postgres or sqlite
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
}

// PostgresConfig holds PostgreSQL-specific configuration
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"` // disable, require, verify-ca, verify-full
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// GRPCConfig holds gRPC server configuration
type GRPCConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// AdminConfig holds the health and metrics listener
type AdminConfig struct {
	Port int `yaml:"port"`
}

// IdentityConfig selects and configures the identity provider
type IdentityConfig struct {
	Mode          string        `yaml:"mode"`
	BaseURL       string        `yaml:"base_url"`   // backend_api only
	SecretKey     string        `yaml:"secret_key"` // backend_api only
	Timeout       time.Duration `yaml:"timeout"`
	AvatarBaseURL string        `yaml:"avatar_base_url"` // stock avatars for locally created users
}

// AuthConfig holds session token verification settings
type AuthConfig struct {
	JWT  JWTConfig  `yaml:"jwt"`
	OIDC OIDCConfig `yaml:"oidc"`
}

// JWTConfig configures locally signed HS256 session tokens
type JWTConfig struct {
	SigningKey string        `yaml:"signing_key"`
	Lifetime   time.Duration `yaml:"lifetime"`
	Issuer     string        `yaml:"issuer"`
}

// OIDCConfig configures RS256 session tokens from a hosted provider. When
// Issuer is set, tokens are verified against the issuer's JWKS.
type OIDCConfig struct {
	Issuer   string        `yaml:"issuer"`
	JWKSURL  string        `yaml:"jwks_url"` // optional, discovered from the issuer when empty
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// RateLimitConfig limits profile writes per user. Disabled when RedisAddr is empty.
type RateLimitConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	Limit         int           `yaml:"limit"`
	Window        time.Duration `yaml:"window"`
}

// Enabled reports whether a Redis server is configured
func (r RateLimitConfig) Enabled() bool {
	return r.RedisAddr != ""
}

// ConnectionString returns the PostgreSQL connection string
func (p *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// DSN returns the data source name for the configured driver
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return filepath.Clean(d.SQLite.Path)
	}
	return d.Postgres.ConnectionString()
}

// UsesOIDC reports whether session tokens come from a hosted provider
func (a *AuthConfig) UsesOIDC() bool {
	return a.OIDC.Issuer != "" || a.OIDC.JWKSURL != ""
}
