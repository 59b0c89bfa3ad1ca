package cli

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// errorHintInterceptor turns auth and availability failures into messages
// that tell the user what to do next
func errorHintInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		err := invoker(ctx, method, req, reply, cc, opts...)
		return withHint(err)
	}
}

func withHint(err error) error {
	st, ok := status.FromError(err)
	if !ok || err == nil {
		return err
	}

	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("authentication failed: %s\n\nPlease run 'chirp auth login' to authenticate", st.Message())
	case codes.NotFound:
		return fmt.Errorf("not found: %s", st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("invalid request: %s", st.Message())
	case codes.ResourceExhausted:
		return fmt.Errorf("rate limited: %s", st.Message())
	case codes.Unavailable:
		return fmt.Errorf("service unavailable: %s", st.Message())
	default:
		return err
	}
}
