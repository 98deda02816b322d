// Package storage defines the node cache that holds the most recently aligned
// batch of memory nodes.
package storage

import (
	"context"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/memory"
)

// Driver persists aligned memory nodes keyed by their upstream id.
// Implementations must be safe for concurrent use.
type Driver interface {
	// Put stores a node, replacing any previous node with the same id.
	// The latest write wins; fields are never merged.
	Put(ctx context.Context, node memory.MemoryNode) error

	// Get retrieves a node by id. Returns NotFoundError when absent.
	Get(ctx context.Context, id string) (memory.MemoryNode, error)

	// List returns every cached node in no particular order.
	List(ctx context.Context) ([]memory.MemoryNode, error)

	// Len returns the number of cached nodes.
	Len(ctx context.Context) (int, error)

	// Close releases any resources held by the driver.
	Close() error
}
