// Package idgen produces unique numeric account ids.
package idgen

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
)

// Generator hands out snowflake ids from a single node.
type Generator struct {
	node *snowflake.Node
}

// New constructs a Generator for the given node id (0..1023).
func New(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}
	return &Generator{node: node}, nil
}

// NewFromEnv constructs a Generator using SNOWFLAKE_NODE, defaulting to node 1.
func NewFromEnv() (*Generator, error) {
	nodeID := int64(1)
	if v := os.Getenv("SNOWFLAKE_NODE"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			nodeID = parsed
		}
	}
	return New(nodeID)
}

// NextID returns the next unique id.
func (g *Generator) NextID() int64 {
	return g.node.Generate().Int64()
}
