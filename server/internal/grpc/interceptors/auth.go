package interceptors

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/devilmonastery/chirp/api/profilev1"
	"github.com/devilmonastery/chirp/internal/auth"
)

// AuthInterceptor handles authentication for gRPC requests
type AuthInterceptor struct {
	verifier auth.TokenVerifier
	log      *slog.Logger
	// Methods that don't require authentication
	publicMethods map[string]bool
	// Method prefixes that don't require authentication (e.g., "/grpc." for infrastructure)
	publicPrefixes []string
}

// NewAuthInterceptor creates a new auth interceptor
func NewAuthInterceptor(verifier auth.TokenVerifier) *AuthInterceptor {
	return &AuthInterceptor{
		verifier: verifier,
		log:      slog.Default().With("component", "auth_interceptor"),
		publicMethods: map[string]bool{
			profilev1.ProfileService_GetUserByUsername_FullMethodName:    true,
			profilev1.ProfileService_GetProfilesByUserIDs_FullMethodName: true,
		},
		publicPrefixes: []string{
			"/grpc.", // health, reflection
		},
	}
}

// isPublicMethod checks if a method is publicly accessible
func (i *AuthInterceptor) isPublicMethod(method string) bool {
	if i.publicMethods[method] {
		return true
	}
	for _, prefix := range i.publicPrefixes {
		if strings.HasPrefix(method, prefix) {
			return true
		}
	}
	return false
}

// Unary returns a server interceptor for unary RPCs. Public methods still
// see the caller when a valid token is sent; a bad token on a public method
// is ignored rather than rejected.
func (i *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		user, err := i.authenticate(ctx)
		if err != nil {
			if !i.isPublicMethod(info.FullMethod) {
				return nil, err
			}
			return handler(ctx, req)
		}

		return handler(auth.SetUserInContext(ctx, user), req)
	}
}

// Stream returns a server interceptor for streaming RPCs
func (i *AuthInterceptor) Stream() grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		stream grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if i.isPublicMethod(info.FullMethod) {
			return handler(srv, stream)
		}

		user, err := i.authenticate(stream.Context())
		if err != nil {
			return err
		}

		return handler(srv, &authenticatedStream{
			ServerStream: stream,
			ctx:          auth.SetUserInContext(stream.Context(), user),
		})
	}
}

// authenticate extracts and validates the bearer session token
func (i *AuthInterceptor) authenticate(ctx context.Context) (*auth.UserContext, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing metadata")
	}

	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing authorization token")
	}

	authHeader := values[0]
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, status.Error(codes.Unauthenticated, "invalid authorization format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := i.verifier.Verify(ctx, token)
	if err != nil {
		i.log.Debug("token validation failed", "error", err)
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, status.Error(codes.Unauthenticated, "token expired")
		}
		if errors.Is(err, auth.ErrInvalidToken) {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		// Signing keys could not be fetched
		i.log.Error("token verification unavailable", "error", err)
		return nil, status.Error(codes.Unavailable, "token verification unavailable")
	}

	return auth.UserFromClaims(claims), nil
}

// authenticatedStream wraps a grpc.ServerStream with an authenticated context
type authenticatedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authenticatedStream) Context() context.Context {
	return s.ctx
}
