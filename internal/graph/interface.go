// Package graph provides the structural command surface over the node store,
// the link model and the order ledger.
//
// # Why Graph Package Exists
//
// A structural command usually touches more than one store: connecting two
// nodes creates an endpoint pair in the topology store and appends slot
// descriptors to both node records. The Manager performs such a command as
// one unit, validating everything before it mutates anything, so a rejected
// command leaves the graph unchanged.
//
// # Concurrency
//
// The Manager does not serialize callers. Edit cycles are serialized by
// session.Session; the stores only guard their own indices.
package graph

import (
	"context"
	"errors"

	"github.com/specialistvlad/circles/internal/nodeid"
	"github.com/specialistvlad/circles/internal/topologystore"
)

// ErrInvalidEndpoint is returned when a command names an absent node or link,
// or a negative slot. The graph is left unchanged.
var ErrInvalidEndpoint = errors.New("invalid endpoint")

// Editor is the set of structural commands an editing collaborator may issue.
//
// Every command is atomic: it either applies completely or returns an error
// and changes nothing.
type Editor interface {
	// CreateNode places a new node with rank 0. Its fragment is the zero
	// fragment until the next rebuild.
	CreateNode(ctx context.Context, operation string, scalar float32, array []float32) (nodeid.Handle, error)

	// DeleteNodes removes a batch of nodes and every link touching them.
	// If any handle is absent the whole batch is rejected.
	DeleteNodes(ctx context.Context, hs ...nodeid.Handle) (*topologystore.Cascade, error)

	// SetOperation changes the operation tag and marks the node dirty. The
	// fragment is not touched until the next rebuild.
	SetOperation(ctx context.Context, h nodeid.Handle, operation string) error

	// SetScalar stores the scalar and pushes it into the live inputs when the
	// built fragment is scalar-bound. It reports whether the value was pushed.
	SetScalar(ctx context.Context, h nodeid.Handle, v float32) (bool, error)

	// SetArray stores the array and pushes it into the live inputs when the
	// built fragment is array-bound with matching length. A length change on
	// an array-bound node marks it dirty instead.
	SetArray(ctx context.Context, h nodeid.Handle, arr []float32) (bool, error)

	// Connect links an output slot of source to an input slot of sink.
	Connect(ctx context.Context, source nodeid.Handle, sourceSlot int, sink nodeid.Handle, sinkSlot int) (nodeid.LinkID, error)

	// Disconnect removes a link. Removing an absent link is a no-op.
	Disconnect(ctx context.Context, id nodeid.LinkID) error

	// Retype stores new link-type codes. Compatibility is not checked.
	Retype(ctx context.Context, id nodeid.LinkID, types topologystore.Types) error

	// SetOpen sets the link's open flag.
	SetOpen(ctx context.Context, id nodeid.LinkID, open bool) error

	// BumpRank moves a node's rank by +1 or -1, clamped at 0.
	BumpRank(ctx context.Context, h nodeid.Handle, delta int) (int, error)

	// SetRank assigns a rank directly.
	SetRank(ctx context.Context, h nodeid.Handle, rank int) error

	// Repair runs one pass of the one-hop rank repair and returns the number
	// of nodes lifted.
	Repair(ctx context.Context) int

	// Snapshot returns a read-only copy of the nodes and links.
	Snapshot(ctx context.Context) *Snapshot
}

var _ Editor = (*Manager)(nil)
