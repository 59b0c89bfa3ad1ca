package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}

// WebServerConfig represents the web gateway configuration
type WebServerConfig struct {
	Server  HTTPServer    `yaml:"server"`
	GRPC    GRPCTarget    `yaml:"grpc"`
	Session SessionConfig `yaml:"session"`
	Logging LoggingConfig `yaml:"logging"`
}

// HTTPServer holds HTTP server configuration
type HTTPServer struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"` // 0 means Port+10
}

// MetricsAddr returns the listen address for the metrics endpoint
func (s HTTPServer) MetricsAddr() string {
	port := s.MetricsPort
	if port == 0 {
		port = s.Port + 10
	}
	return fmt.Sprintf(":%d", port)
}

// GRPCTarget holds gRPC backend connection info
type GRPCTarget struct {
	Address    string `yaml:"address"`
	ServerName string `yaml:"server_name"` // TLS server name override
}

// SessionConfig holds session cookie configuration
type SessionConfig struct {
	Secret string `yaml:"secret"` // 32-byte base64-encoded key
	Secure bool   `yaml:"secure"` // mark the cookie Secure (HTTPS only)
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfigPaths defines the default locations to search for web configuration files
var DefaultConfigPaths = []string{
	"./web.yaml",
	"./web.yml",
	"./configs/web.yaml",
	"./configs/web.yml",
	"/etc/chirp/web.yaml",
}

// Defaults returns the configuration used when no file overrides a value
func Defaults() *WebServerConfig {
	return &WebServerConfig{
		Server: HTTPServer{
			Host: "localhost",
			Port: 8080,
		},
		GRPC: GRPCTarget{
			Address: "localhost:9091",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads the web gateway configuration from the specified file or default locations
func Load(configPath string) (*WebServerConfig, error) {
	config := Defaults()

	if configPath == "" {
		configPath = findConfigFile()
	} else if !fileExists(configPath) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		data = expandEnvVars(data)

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Environment variables take precedence
	if grpcAddr := os.Getenv("GRPC_ADDRESS"); grpcAddr != "" {
		config.GRPC.Address = grpcAddr
	}
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		config.Session.Secret = secret
	}

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
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

// validate performs basic validation on the web configuration
func validate(config *WebServerConfig) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	if config.Server.MetricsPort < 0 || config.Server.MetricsPort > 65535 {
		return fmt.Errorf("server.metrics_port must be between 0 and 65535")
	}

	if config.GRPC.Address == "" {
		return fmt.Errorf("grpc.address cannot be empty")
	}

	return nil
}
