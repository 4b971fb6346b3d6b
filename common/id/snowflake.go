package id

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID.
// The server, worker and CLI use distinct node IDs so debate IDs never collide.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a new time-ordered debate ID.
func New() int64 {
	return node.Generate().Int64()
}

// Parse validates a debate ID received as a path parameter.
func Parse(s string) (int64, error) {
	parsed, err := snowflake.ParseString(s)
	if err != nil {
		return 0, fmt.Errorf("parsing id %q: %w", s, err)
	}
	if parsed.Int64() <= 0 {
		return 0, fmt.Errorf("parsing id %q: must be positive", s)
	}
	return parsed.Int64(), nil
}
