package idgen

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

// UserIDPrefix marks identifiers minted by the local identity provider
const UserIDPrefix = "user_"

var (
	mu   sync.Mutex
	node *snowflake.Node
)

// Initialize sets up the Snowflake ID generator with a node ID. It may be
// called again to switch nodes, which tests rely on.
func Initialize(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("invalid snowflake node %d: %w", nodeID, err)
	}

	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

// GenerateID generates a new Snowflake ID as a string
func GenerateID() string {
	mu.Lock()
	defer mu.Unlock()

	if node == nil {
		// Node 1 is always valid
		node, _ = snowflake.NewNode(1)
	}
	return node.Generate().String()
}

// NewUserID returns a prefixed user identifier such as user_1790011223344556677
func NewUserID() string {
	return UserIDPrefix + GenerateID()
}
