package client

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// RequestIDHeader propagates the caller's request ID to the server
const RequestIDHeader = "x-request-id"

type requestIDKey struct{}

// WithRequestID tags outgoing calls made with ctx with a request ID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// AuthInterceptor attaches the session token to outgoing calls
type AuthInterceptor struct {
	tokens TokenSource
}

// NewAuthInterceptor creates a new auth interceptor. tokens may be nil.
func NewAuthInterceptor(tokens TokenSource) *AuthInterceptor {
	return &AuthInterceptor{tokens: tokens}
}

// Unary returns a gRPC unary client interceptor
func (a *AuthInterceptor) Unary() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		ctx, err := a.decorate(ctx)
		if err != nil {
			return err
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// Stream returns a gRPC stream client interceptor
func (a *AuthInterceptor) Stream() grpc.StreamClientInterceptor {
	return func(
		ctx context.Context,
		desc *grpc.StreamDesc,
		cc *grpc.ClientConn,
		method string,
		streamer grpc.Streamer,
		opts ...grpc.CallOption,
	) (grpc.ClientStream, error) {
		ctx, err := a.decorate(ctx)
		if err != nil {
			return nil, err
		}
		return streamer(ctx, desc, cc, method, opts...)
	}
}

// decorate adds authorization and request ID metadata
func (a *AuthInterceptor) decorate(ctx context.Context) (context.Context, error) {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, RequestIDHeader, id)
	}

	token := tokenFromContext(ctx)
	if token == "" && a.tokens != nil {
		t, err := a.tokens.GetToken()
		switch {
		case errors.Is(err, ErrNoToken):
		case err != nil:
			return ctx, err
		default:
			token = t
		}
	}

	if token == "" {
		slog.Debug("calling without session token")
		return ctx, nil
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token), nil
}
