package auth

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UserContext contains authenticated user information
type UserContext struct {
	UserID    string
	Username  string
	SessionID string
}

// contextKey is the key for storing user info in context
type contextKey string

const userContextKey contextKey = "user"

// GetUserFromContext extracts the authenticated user from the context
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	if !ok || user == nil || user.UserID == "" {
		return nil, status.Error(codes.Unauthenticated, "no authenticated user in context")
	}
	return user, nil
}

// SetUserInContext stores the authenticated user in the context
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromClaims builds the context user for validated session claims
func UserFromClaims(claims *Claims) *UserContext {
	return &UserContext{
		UserID:    claims.Subject,
		Username:  claims.Username,
		SessionID: claims.SessionID,
	}
}
