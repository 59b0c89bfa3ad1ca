package oidc

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devilmonastery/chirp/internal/auth"
)

// JWKSVerifier validates RS256 session tokens issued by a hosted identity provider
type JWKSVerifier struct {
	issuer    string
	jwksURL   string
	discovery *DiscoveryCache
	cacheTTL  time.Duration

	mu   sync.Mutex
	jwks *JWKSCache
}

var _ auth.TokenVerifier = (*JWKSVerifier)(nil)

// NewJWKSVerifier creates a verifier. When jwksURL is empty it is discovered
// from the issuer's openid-configuration on first use.
func NewJWKSVerifier(issuer, jwksURL string, cacheTTL time.Duration, httpClient *http.Client) *JWKSVerifier {
	return &JWKSVerifier{
		issuer:    issuer,
		jwksURL:   jwksURL,
		discovery: NewDiscoveryCache(cacheTTL, httpClient),
		cacheTTL:  cacheTTL,
	}
}

// Verify implements auth.TokenVerifier
func (v *JWKSVerifier) Verify(ctx context.Context, tokenString string) (*auth.Claims, error) {
	keys, err := v.keySet(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing keys: %w", err)
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &auth.Claims{}, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token has no kid header")
		}
		return keys.GetKey(ctx, kid)
	}, opts...)
	if err != nil {
		return nil, auth.ParseError(err)
	}

	return auth.ClaimsFromToken(token)
}

// keySet returns the JWKS cache, resolving its URL through discovery once
func (v *JWKSVerifier) keySet(ctx context.Context) (*JWKSCache, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.jwks != nil {
		return v.jwks, nil
	}

	url := v.jwksURL
	if url == "" {
		doc, err := v.discovery.GetDiscovery(ctx, v.issuer)
		if err != nil {
			return nil, err
		}
		url = doc.JWKSURI
	}

	v.jwks = NewJWKSCache(url, v.cacheTTL)
	return v.jwks, nil
}
