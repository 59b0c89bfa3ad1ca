package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/devilmonastery/chirp/internal/client"
	"github.com/devilmonastery/chirp/web/internal/session"
)

type contextKey string

const (
	tokenContextKey contextKey = "token"
	userContextKey  contextKey = "user"
)

// AuthMiddleware resolves the caller's session token for each request. The
// gateway never verifies tokens itself; the backend does on every call.
type AuthMiddleware struct {
	sessionManager *session.Manager
	log            *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(sessionManager *session.Manager, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		sessionManager: sessionManager,
		log:            logger.With(slog.String("component", "auth_middleware")),
	}
}

// Authenticate attaches the session token, if any, to the request context.
// A bearer Authorization header takes precedence over the session cookie.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			token, _ = m.sessionManager.GetToken(r)
		}
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), tokenContextKey, token)
		ctx = client.WithToken(ctx, token)
		if user, err := session.ParseUser(token); err == nil {
			ctx = context.WithValue(ctx, userContextKey, user)
		} else {
			m.log.Debug("session token not parseable", slog.String("error", err.Error()))
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects requests that carry no session token
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if TokenFromContext(r.Context()) == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TokenFromContext returns the session token resolved by Authenticate
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// UserFromContext returns the unverified session user resolved by Authenticate
func UserFromContext(ctx context.Context) *session.User {
	user, _ := ctx.Value(userContextKey).(*session.User)
	return user
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
