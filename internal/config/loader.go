package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}

// DefaultConfigPaths defines the default locations to search for configuration files
var DefaultConfigPaths = []string{
	"./config.yaml",
	"./config.yml",
	"./configs/config.yaml",
	"./configs/config.yml",
	"/etc/chirp/config.yaml",
	"/etc/chirp/config.yml",
}

// DefaultEnvFile is loaded, when present, before the config file is expanded
const DefaultEnvFile = ".env"

// Defaults returns the configuration used when no file overrides a value
func Defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "chirp",
				User:     "postgres",
				SSLMode:  "disable",
			},
			SQLite: SQLiteConfig{
				Path: "chirp.db",
			},
		},
		GRPC: GRPCConfig{
			Host: "localhost",
			Port: 9091,
		},
		Admin: AdminConfig{
			Port: 6060,
		},
		Identity: IdentityConfig{
			Mode:    IdentityModeLocal,
			Timeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			JWT: JWTConfig{
				Lifetime: 168 * time.Hour,
				Issuer:   "chirp",
			},
			OIDC: OIDCConfig{
				CacheTTL: time.Hour,
			},
		},
		RateLimit: RateLimitConfig{
			Limit:  10,
			Window: time.Minute,
		},
		Environment: "local",
	}
}

// Load loads the configuration from the specified file or default locations.
// Variables from a .env file in the working directory are added to the
// environment first; variables already set win.
func Load(configPath string) (*Config, error) {
	if fileExists(DefaultEnvFile) {
		if err := godotenv.Load(DefaultEnvFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", DefaultEnvFile, err)
		}
	}

	config := Defaults()

	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" && fileExists(configPath) {
		slog.Info("loading config", "path", configPath)
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(expandEnvVars(data), config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if configPath != "" {
		return nil, fmt.Errorf("config file %s not found", configPath)
	} else {
		slog.Info("no config file found, using defaults")
	}

	if err := validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// findConfigFile searches for a configuration file in default locations
func findConfigFile() string {
	for _, path := range DefaultConfigPaths {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// validate performs basic validation on the configuration
func validate(config *Config) error {
	switch config.Identity.Mode {
	case IdentityModeLocal:
		if err := validateDatabase(&config.Database); err != nil {
			return err
		}
	case IdentityModeMemory:
	case IdentityModeBackendAPI:
		if config.Identity.BaseURL == "" {
			return fmt.Errorf("identity.base_url is required for backend_api mode")
		}
		if config.Identity.SecretKey == "" {
			return fmt.Errorf("identity.secret_key is required for backend_api mode")
		}
		if !config.Auth.UsesOIDC() {
			return fmt.Errorf("auth.oidc.issuer or auth.oidc.jwks_url is required for backend_api mode")
		}
	default:
		return fmt.Errorf("identity.mode must be one of local, memory, backend_api (got %q)", config.Identity.Mode)
	}

	if !config.Auth.UsesOIDC() && config.Auth.JWT.SigningKey == "" {
		return fmt.Errorf("auth.jwt.signing_key is required unless auth.oidc is configured")
	}
	if config.Auth.JWT.Lifetime <= 0 {
		return fmt.Errorf("auth.jwt.lifetime must be positive")
	}

	if config.GRPC.Port < 1 || config.GRPC.Port > 65535 {
		return fmt.Errorf("grpc.port must be between 1 and 65535")
	}
	if config.Admin.Port < 0 || config.Admin.Port > 65535 {
		return fmt.Errorf("admin.port must be between 0 and 65535")
	}

	if config.RateLimit.Enabled() {
		if config.RateLimit.Limit < 1 {
			return fmt.Errorf("ratelimit.limit must be at least 1")
		}
		if config.RateLimit.Window <= 0 {
			return fmt.Errorf("ratelimit.window must be positive")
		}
	}

	return nil
}

func validateDatabase(db *DatabaseConfig) error {
	switch db.Driver {
	case "postgres":
		if db.Postgres.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
		if db.Postgres.Database == "" {
			return fmt.Errorf("postgres database name is required")
		}
		if db.Postgres.User == "" {
			return fmt.Errorf("postgres user is required")
		}
	case "sqlite":
		if db.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite (got %q)", db.Driver)
	}
	return nil
}
