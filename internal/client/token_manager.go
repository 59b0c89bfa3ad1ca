package client

import (
	"context"
	"errors"
)

// ErrNoToken is returned by a TokenSource that has no session token. Calls
// then proceed anonymously.
var ErrNoToken = errors.New("no session token")

// TokenSource supplies the session token attached to outgoing calls
type TokenSource interface {
	GetToken() (string, error)
}

// StaticToken is a TokenSource for a fixed token
type StaticToken string

// GetToken implements TokenSource
func (s StaticToken) GetToken() (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

type tokenKey struct{}

// WithToken attaches a session token to ctx. It takes precedence over the
// client's TokenSource for calls made with ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
