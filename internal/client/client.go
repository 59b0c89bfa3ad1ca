package client

import (
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"

	"github.com/devilmonastery/chirp/api/profilev1"
)

// Client wraps the chirp gRPC clients
type Client struct {
	conn          *grpc.ClientConn
	profileClient profilev1.ProfileServiceClient
}

// NewClient creates a new gRPC client. tokens may be nil, in which case only
// tokens attached with WithToken are sent. If serverName is not empty, it is
// used as the remote peer name.
func NewClient(serverAddress string, serverName string, tokens TokenSource, extra ...grpc.DialOption) (*Client, error) {
	opts := []grpc.DialOption{
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                10 * time.Second,
			Timeout:             3 * time.Second,
			PermitWithoutStream: true,
		}),
	}

	// Use TLS for real hosts, plaintext for localhost and cluster-internal names
	if isLocalhost(serverAddress) {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	} else {
		if serverName == "" {
			serverName = serverAddress
			if idx := strings.LastIndex(serverAddress, ":"); idx != -1 {
				serverName = serverAddress[:idx]
			}
		}

		creds := credentials.NewTLS(&tls.Config{
			ServerName: serverName,
			MinVersion: tls.VersionTLS12,
		})
		opts = append(opts, grpc.WithTransportCredentials(creds))
	}

	interceptor := NewAuthInterceptor(tokens)
	opts = append(opts,
		grpc.WithUnaryInterceptor(interceptor.Unary()),
		grpc.WithStreamInterceptor(interceptor.Stream()),
	)
	opts = append(opts, extra...)

	conn, err := grpc.NewClient(serverAddress, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to gRPC server: %w", err)
	}

	return &Client{
		conn:          conn,
		profileClient: profilev1.NewProfileServiceClient(conn),
	}, nil
}

// isLocalhost checks if an address is localhost/127.0.0.1 or a cluster-internal address
func isLocalhost(address string) bool {
	lower := strings.ToLower(address)
	return strings.Contains(lower, "localhost") ||
		strings.Contains(lower, "127.0.0.1") ||
		strings.HasPrefix(lower, "::1") ||
		strings.HasPrefix(lower, "[::1]") ||
		strings.HasPrefix(lower, "passthrough:") ||
		// Kubernetes service names (no dots = internal)
		!strings.Contains(address, ".")
}

// Close closes the gRPC connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// ProfileClient returns the profile service client
func (c *Client) ProfileClient() profilev1.ProfileServiceClient {
	return c.profileClient
}

// Conn returns the underlying gRPC connection
func (c *Client) Conn() *grpc.ClientConn {
	return c.conn
}
