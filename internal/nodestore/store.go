// Package nodestore defines the interface for storing node records.
//
// # Why Node Store Exists
//
// The node store owns every node record: operation tag, parameters, derived
// fragment, rank and dirty flag. It knows nothing about links; those belong
// to topologystore. The graph package composes the two and is the only
// writer of structural changes.
//
// # Ordering
//
// Records are kept in insertion order. Nodes with equal rank are composed in
// that order, so implementations MUST preserve it across removals.
package nodestore

import (
	"context"
	"errors"

	"github.com/specialistvlad/circles/internal/node"
	"github.com/specialistvlad/circles/internal/nodeid"
)

// ErrNotFound is returned when a handle does not name a stored node.
var ErrNotFound = errors.New("node not found")

// ErrDuplicate is returned when a handle is added twice.
var ErrDuplicate = errors.New("node already stored")

// Store is the interface for managing node records.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent calls. The records themselves
// are handed out by pointer and are mutated only inside a serialized edit
// cycle; the store guards its own indices, not the record fields.
type Store interface {
	// Add inserts a node at the end of the insertion order.
	//
	// Returns ErrDuplicate if the handle is already stored.
	Add(ctx context.Context, n *node.Node) error

	// Get looks up a node by handle.
	Get(ctx context.Context, h nodeid.Handle) (*node.Node, bool)

	// Has reports whether every handle names a stored node.
	Has(ctx context.Context, hs ...nodeid.Handle) bool

	// Remove deletes the given nodes and returns how many were present.
	Remove(ctx context.Context, hs ...nodeid.Handle) int

	// All returns every node in insertion order.
	All(ctx context.Context) []*node.Node

	// Dirty returns the nodes whose fragment needs a rebuild, in insertion order.
	Dirty(ctx context.Context) []*node.Node

	// Len returns the number of stored nodes.
	Len(ctx context.Context) int
}
