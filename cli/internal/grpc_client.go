package cli

import (
	"fmt"

	"google.golang.org/grpc"

	"github.com/devilmonastery/chirp/internal/client"
)

// NewGRPCClient creates a client for the current context that sends the
// stored session token, if any
func NewGRPCClient() (*client.Client, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	serverAddress, err := config.ServerAddress()
	if err != nil {
		return nil, fmt.Errorf("failed to get server address: %w", err)
	}

	serverName, err := config.ServerName()
	if err != nil {
		return nil, fmt.Errorf("failed to get server name: %w", err)
	}

	grpcClient, err := client.NewClient(serverAddress, serverName, FileCredentials{},
		grpc.WithChainUnaryInterceptor(errorHintInterceptor()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC client: %w", err)
	}

	return grpcClient, nil
}
