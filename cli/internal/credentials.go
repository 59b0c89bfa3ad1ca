package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devilmonastery/chirp/internal/client"
)

// errNotLoggedIn is returned when no credentials file exists for the context
var errNotLoggedIn = errors.New("not logged in")

// Credentials stores the session token and what it says about the user
type Credentials struct {
	AccessToken string    `json:"access_token"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username,omitempty"`
	ExpiresAt   time.Time `json:"expires_at,omitzero"`
}

// IsExpired checks if the token is expired. Tokens without expiry never are.
func (c *Credentials) IsExpired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}

// sessionClaims mirrors the claims of a chirp session token
type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// credentialsFromToken reads user details out of a session token. The
// signature is not checked here; the server verifies it on every call.
func credentialsFromToken(token string) (*Credentials, error) {
	claims := &sessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("not a session token: %w", err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("session token has no subject")
	}

	creds := &Credentials{
		AccessToken: token,
		UserID:      claims.Subject,
		Username:    claims.Username,
	}
	if claims.ExpiresAt != nil {
		creds.ExpiresAt = claims.ExpiresAt.Time
	}
	return creds, nil
}

// FileCredentials implements client.TokenSource using the credentials file
type FileCredentials struct{}

var _ client.TokenSource = FileCredentials{}

// GetToken returns the stored session token, or client.ErrNoToken when
// logged out so calls proceed anonymously
func (FileCredentials) GetToken() (string, error) {
	creds, err := LoadCredentials()
	if errors.Is(err, errNotLoggedIn) {
		return "", client.ErrNoToken
	}
	if err != nil {
		slog.Debug("failed to load credentials",
			slog.String("component", "cli-token"),
			slog.String("error", err.Error()))
		return "", err
	}
	return creds.AccessToken, nil
}

// credentialsPath returns the path to the credentials file for the current context
func credentialsPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	config, err := LoadConfig()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "chirp")
	filename := fmt.Sprintf("credentials-%s.json", config.CurrentContext)
	return filepath.Join(configDir, filename), nil
}

// SaveCredentials saves credentials to disk
func SaveCredentials(creds *Credentials) error {
	path, err := credentialsPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	// Owner read/write only
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	return nil
}

// LoadCredentials loads credentials from disk
func LoadCredentials() (*Credentials, error) {
	path, err := credentialsPath()
	if err != nil {
		return nil, err
	}
	slog.Debug("loading credentials from file",
		slog.String("component", "cli-creds"),
		slog.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errNotLoggedIn
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	return &creds, nil
}

// RemoveCredentials removes the credentials file
func RemoveCredentials() error {
	path, err := credentialsPath()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}

	return nil
}
