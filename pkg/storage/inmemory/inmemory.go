// Package inmemory provides a map-backed storage.Driver.
package inmemory

import (
	"context"
	"sync"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/memory"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu guards nodes
	mu sync.RWMutex

	// nodes maps upstream record id -> latest aligned node
	nodes map[string]memory.MemoryNode
}

// NewDriver creates a new in-memory node cache.
func NewDriver() *Driver {
	return &Driver{
		nodes: make(map[string]memory.MemoryNode),
	}
}

// Put stores a copy of node, replacing any previous entry for its id.
func (s *Driver) Put(_ context.Context, node memory.MemoryNode) error {
	if node.ID == "" {
		return storage.ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes[node.ID] = node.Clone()
	return nil
}

// Get retrieves a copy of the node stored under id.
func (s *Driver) Get(_ context.Context, id string) (memory.MemoryNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.nodes[id]
	if !ok {
		return memory.MemoryNode{}, storage.NotFoundError{ID: id}
	}

	return node.Clone(), nil
}

// List returns copies of all cached nodes.
func (s *Driver) List(_ context.Context) ([]memory.MemoryNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]memory.MemoryNode, 0, len(s.nodes))
	for _, node := range s.nodes {
		nodes = append(nodes, node.Clone())
	}

	return nodes, nil
}

// Len returns the number of cached nodes.
func (s *Driver) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.nodes), nil
}

// Close is a no-op for the in-memory driver.
func (s *Driver) Close() error {
	return nil
}
