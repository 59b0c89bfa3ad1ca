package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims represents the session token claims. The subject is the identity
// provider's user ID.
type Claims struct {
	Username  string `json:"username,omitempty"`
	SessionID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier validates a session token and returns its claims
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// JWTManager issues and validates HS256 session tokens for the local identity provider
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	issuer        string
}

var _ TokenVerifier = (*JWTManager)(nil)

// NewJWTManager creates a new JWT manager
func NewJWTManager(secretKey string, tokenDuration time.Duration, issuer string) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		issuer:        issuer,
	}
}

// IssueSessionToken creates a signed session token for a user
func (m *JWTManager) IssueSessionToken(userID, username string) (string, time.Time, error) {
	sessionID, err := GenerateSessionID()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(m.tokenDuration)

	claims := Claims{
		Username:  username,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Verify implements TokenVerifier
func (m *JWTManager) Verify(_ context.Context, tokenString string) (*Claims, error) {
	return m.ValidateToken(tokenString)
}

// ValidateToken validates a JWT token and returns the claims
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secretKey, nil
	}, opts...)
	if err != nil {
		return nil, ParseError(err)
	}

	return ClaimsFromToken(token)
}

// ParseError maps jwt parse failures onto our sentinel errors
func ParseError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrExpiredToken
	}
	return fmt.Errorf("%w: %v", ErrInvalidToken, err)
}

// ClaimsFromToken extracts our claims from a parsed token and enforces a subject
func ClaimsFromToken(token *jwt.Token) (*Claims, error) {
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}

// GenerateSessionID creates a random session ID
func GenerateSessionID() (string, error) {
	b := make([]byte, 18)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return "sess_" + base64.RawURLEncoding.EncodeToString(b), nil
}
