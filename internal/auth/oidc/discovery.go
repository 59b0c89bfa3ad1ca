package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/devilmonastery/chirp/internal/pkg/urlutil"
)

// DiscoveryDocument is the subset of the OIDC discovery document we use
type DiscoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	JWKSURI               string `json:"jwks_uri"`
}

// cachedDiscovery holds a discovery document with its expiration time
type cachedDiscovery struct {
	doc       *DiscoveryDocument
	expiresAt time.Time
}

// DiscoveryCache caches OIDC discovery documents per issuer
type DiscoveryCache struct {
	cache      map[string]*cachedDiscovery
	mu         sync.RWMutex
	ttl        time.Duration
	httpClient *http.Client
}

// NewDiscoveryCache creates a new discovery cache with the specified TTL.
// A nil httpClient uses http.DefaultClient.
func NewDiscoveryCache(ttl time.Duration, httpClient *http.Client) *DiscoveryCache {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &DiscoveryCache{
		cache:      make(map[string]*cachedDiscovery),
		ttl:        ttl,
		httpClient: httpClient,
	}
}

// GetDiscovery fetches or retrieves from cache the OIDC discovery document
func (c *DiscoveryCache) GetDiscovery(ctx context.Context, issuer string) (*DiscoveryDocument, error) {
	issuer = strings.TrimRight(issuer, "/")

	c.mu.RLock()
	cached, exists := c.cache[issuer]
	c.mu.RUnlock()

	if exists && time.Now().Before(cached.expiresAt) {
		return cached.doc, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock (another goroutine might have updated)
	cached, exists = c.cache[issuer]
	if exists && time.Now().Before(cached.expiresAt) {
		return cached.doc, nil
	}

	discoveryURL := urlutil.OIDCDiscoveryURL(issuer)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discovery document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var doc DiscoveryDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode discovery document: %w", err)
	}

	// We only verify tokens, so the JWKS endpoint is the one field we cannot do without
	if doc.Issuer == "" || doc.JWKSURI == "" {
		return nil, fmt.Errorf("incomplete discovery document from %s", issuer)
	}

	c.cache[issuer] = &cachedDiscovery{
		doc:       &doc,
		expiresAt: time.Now().Add(c.ttl),
	}

	return &doc, nil
}
