// Package backendapi is a client for a hosted identity provider's Backend
// API. It implements repositories.IdentityProvider over REST.
package backendapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/devilmonastery/chirp/internal/domain/entities"
	"github.com/devilmonastery/chirp/internal/domain/repositories"
	"github.com/devilmonastery/chirp/internal/pkg/logger"
)

// DefaultTimeout bounds a single provider call when Config.Timeout is zero
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of an error response we read
const maxErrorBody = 64 << 10

// Config configures the client
type Config struct {
	BaseURL   string // e.g. https://api.clerk.com
	SecretKey string
	Timeout   time.Duration

	// Transport is the base transport below auth and metrics. Tests inject
	// an httptest transport here.
	Transport http.RoundTripper
}

// Client talks to the provider's Backend API. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	log        *slog.Logger
}

var _ repositories.IdentityProvider = (*Client)(nil)

// New creates a client. Requests carry the secret key as a bearer token.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("identity provider base URL is required")
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("identity provider secret key is required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid identity provider base URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// oauth2 picks up the instrumented client from the context and layers
	// the bearer token on top of its transport
	instrumented := &http.Client{Transport: NewMetricsTransport(cfg.Transport)}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, instrumented)
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.SecretKey,
		TokenType:   "Bearer",
	}))
	httpClient.Timeout = timeout

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		log:        logger.WithComponent(slog.Default(), "identity_backend_api"),
	}, nil
}

// userDTO is the provider's user representation
type userDTO struct {
	ID             string         `json:"id"`
	Username       *string        `json:"username"`
	ImageURL       string         `json:"image_url"`
	PublicMetadata map[string]any `json:"public_metadata"`
	CreatedAt      int64          `json:"created_at"` // unix ms
	UpdatedAt      int64          `json:"updated_at"` // unix ms
}

func (d *userDTO) toEntity() *entities.UserProfile {
	u := &entities.UserProfile{
		ID:              d.ID,
		ProfileImageURL: d.ImageURL,
		PublicMetadata:  d.PublicMetadata,
		CreatedAt:       time.UnixMilli(d.CreatedAt).UTC(),
		UpdatedAt:       time.UnixMilli(d.UpdatedAt).UTC(),
	}
	if d.Username != nil {
		u.Username = *d.Username
	}
	if u.PublicMetadata == nil {
		u.PublicMetadata = map[string]any{}
	}
	return u
}

// GetUserList implements repositories.IdentityProvider
func (c *Client) GetUserList(ctx context.Context, filter repositories.UserListFilter) ([]*entities.UserProfile, error) {
	q := url.Values{}
	for _, username := range filter.Usernames {
		q.Add("username", username)
	}
	for _, id := range filter.UserIDs {
		q.Add("user_id", id)
	}
	q.Set("limit", strconv.Itoa(filter.EffectiveLimit()))

	var dtos []userDTO
	if err := c.do(ctx, http.MethodGet, "/v1/users", q, nil, &dtos); err != nil {
		return nil, err
	}

	users := make([]*entities.UserProfile, 0, len(dtos))
	for i := range dtos {
		users = append(users, dtos[i].toEntity())
	}
	return users, nil
}

// UpdateUser implements repositories.IdentityProvider. The provider replaces
// public_metadata wholesale with the supplied map.
func (c *Client) UpdateUser(ctx context.Context, userID string, params repositories.UpdateUserParams) (*entities.UserProfile, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	metadata := params.PublicMetadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	body := map[string]any{"public_metadata": metadata}

	var dto userDTO
	if err := c.do(ctx, http.MethodPatch, "/v1/users/"+url.PathEscape(userID), nil, body, &dto); err != nil {
		return nil, err
	}
	return dto.toEntity(), nil
}

// do sends one request and decodes a JSON response into out
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug("identity provider call",
		"method", method,
		"route", normalizeRoute(path),
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return parseAPIError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode identity provider response: %w", err)
	}
	return nil
}
