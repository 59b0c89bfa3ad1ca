package oidc

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"
)

// defaultMinRefetch bounds how often an unknown kid can force a fetch
const defaultMinRefetch = 10 * time.Second

// JWKSCache caches the provider's RSA signing keys by kid. Lookups only take
// a read lock, so a slow refresh never blocks verification against keys that
// are already cached.
type JWKSCache struct {
	url        string
	ttl        time.Duration
	minRefetch time.Duration
	httpClient *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time

	// refreshMu allows one fetch at a time
	refreshMu sync.Mutex
}

// NewJWKSCache creates a new JWKS cache
func NewJWKSCache(url string, ttl time.Duration) *JWKSCache {
	return &JWKSCache{
		url:        url,
		ttl:        ttl,
		minRefetch: defaultMinRefetch,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetKey returns the public key for kid. Expired key sets are refetched, and
// an unknown kid triggers a refetch in case the provider rotated keys.
func (j *JWKSCache) GetKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	key, fetchedAt := j.lookup(kid)
	if key != nil && time.Since(fetchedAt) <= j.ttl {
		return key, nil
	}
	if key == nil && !fetchedAt.IsZero() && time.Since(fetchedAt) < j.minRefetch {
		return nil, fmt.Errorf("key not found: %s", kid)
	}

	if err := j.refresh(ctx, fetchedAt); err != nil {
		return nil, err
	}

	if key, _ = j.lookup(kid); key == nil {
		return nil, fmt.Errorf("key not found: %s", kid)
	}
	return key, nil
}

func (j *JWKSCache) lookup(kid string) (*rsa.PublicKey, time.Time) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.keys[kid], j.fetchedAt
}

// refresh fetches the key set unless another caller already replaced the
// set observed at seen.
func (j *JWKSCache) refresh(ctx context.Context, seen time.Time) error {
	j.refreshMu.Lock()
	defer j.refreshMu.Unlock()

	j.mu.RLock()
	done := j.fetchedAt.After(seen)
	j.mu.RUnlock()
	if done {
		return nil
	}

	keys, err := j.fetch(ctx)
	if err != nil {
		return err
	}

	j.mu.Lock()
	j.keys = keys
	j.fetchedAt = time.Now()
	j.mu.Unlock()
	return nil
}

type jsonWebKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (j *JWKSCache) fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := j.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected JWKS status code: %d", resp.StatusCode)
	}

	var set struct {
		Keys []jsonWebKey `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to decode JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, jwk := range set.Keys {
		if jwk.Kty != "RSA" {
			continue
		}
		key, err := jwk.rsaPublicKey()
		if err != nil {
			continue
		}
		keys[jwk.Kid] = key
	}

	if len(keys) == 0 {
		return nil, errors.New("no valid keys found in JWKS")
	}
	return keys, nil
}

func (k jsonWebKey) rsaPublicKey() (*rsa.PublicKey, error) {
	n, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("modulus: %w", err)
	}
	e, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("exponent: %w", err)
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(n),
		E: int(new(big.Int).SetBytes(e).Int64()),
	}, nil
}
