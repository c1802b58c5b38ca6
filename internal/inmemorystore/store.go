package inmemorystore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/specialistvlad/circles/internal/node"
	"github.com/specialistvlad/circles/internal/nodeid"
	"github.com/specialistvlad/circles/internal/nodestore"
)

// Store is an in-memory implementation of nodestore.Store. A map gives O(1)
// lookup and a handle slice keeps insertion order.
type Store struct {
	mu    sync.RWMutex
	nodes map[nodeid.Handle]*node.Node
	order []nodeid.Handle
}

// New creates a new, empty in-memory node store.
func New() nodestore.Store {
	return &Store{
		nodes: make(map[nodeid.Handle]*node.Node),
	}
}

// Add inserts a node at the end of the insertion order.
func (s *Store) Add(ctx context.Context, n *node.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[n.Handle]; exists {
		return fmt.Errorf("%w: %s", nodestore.ErrDuplicate, n.Handle)
	}
	s.nodes[n.Handle] = n
	s.order = append(s.order, n.Handle)
	return nil
}

// Get looks up a node by handle.
func (s *Store) Get(ctx context.Context, h nodeid.Handle) (*node.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[h]
	return n, ok
}

// Has reports whether every handle names a stored node.
func (s *Store) Has(ctx context.Context, hs ...nodeid.Handle) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, h := range hs {
		if _, ok := s.nodes[h]; !ok {
			return false
		}
	}
	return true
}

// Remove deletes the given nodes and returns how many were present.
func (s *Store) Remove(ctx context.Context, hs ...nodeid.Handle) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, h := range hs {
		if _, ok := s.nodes[h]; ok {
			delete(s.nodes, h)
			removed++
		}
	}
	if removed > 0 {
		s.order = slices.DeleteFunc(s.order, func(h nodeid.Handle) bool {
			_, ok := s.nodes[h]
			return !ok
		})
	}
	return removed
}

// All returns every node in insertion order.
func (s *Store) All(ctx context.Context) []*node.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*node.Node, 0, len(s.order))
	for _, h := range s.order {
		nodes = append(nodes, s.nodes[h])
	}
	return nodes
}

// Dirty returns the nodes whose fragment needs a rebuild.
func (s *Store) Dirty(ctx context.Context) []*node.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var dirty []*node.Node
	for _, h := range s.order {
		if n := s.nodes[h]; n.Dirty {
			dirty = append(dirty, n)
		}
	}
	return dirty
}

// Len returns the number of stored nodes.
func (s *Store) Len(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.nodes)
}
