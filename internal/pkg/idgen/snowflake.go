package idgen

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	mu   sync.Mutex
)

// Initialize sets up the Snowflake ID generator with a node ID
func Initialize(nodeID int64) error {
	mu.Lock()
	defer mu.Unlock()
	if node != nil {
		return nil
	}
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("failed to create snowflake node %d: %w", nodeID, err)
	}
	node = n
	return nil
}

func current() *snowflake.Node {
	mu.Lock()
	defer mu.Unlock()
	if node == nil {
		node, _ = snowflake.NewNode(1)
	}
	return node
}

// NewRequestID returns a Snowflake ID encoded in base32, short enough for response headers
func NewRequestID() string {
	return current().Generate().Base32()
}
