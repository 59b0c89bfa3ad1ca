package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken is returned when no token is found in the session
	ErrNoToken = errors.New("no token in session")

	// ErrInvalidToken is returned when the token cannot be parsed
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrMissingSubject is returned when the token has no sub claim
	ErrMissingSubject = errors.New("token missing sub claim")
)

// User is what the gateway can tell about a session without asking the
// backend. The backend verifies the signature on every call.
type User struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

type sessionClaims struct {
	Username  string `json:"username"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// ParseUser extracts the user from a session token without verifying it
func ParseUser(tokenString string) (*User, error) {
	if tokenString == "" {
		return nil, ErrNoToken
	}

	claims := &sessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrInvalidToken
	}

	user := &User{
		UserID:    claims.Subject,
		Username:  claims.Username,
		SessionID: claims.SessionID,
	}
	if claims.ExpiresAt != nil {
		user.ExpiresAt = claims.ExpiresAt.Time
		if time.Now().After(user.ExpiresAt) {
			return nil, ErrTokenExpired
		}
	}

	if user.UserID == "" {
		return nil, ErrMissingSubject
	}

	return user, nil
}
