// Package topologystore defines the interface for the link model: directed
// links between node slots, each represented by a mirrored pair of endpoint
// records.
//
// # Why Topology Store Exists
//
// Each link must be reachable from both of its nodes so that deleting either
// one can find and remove the whole link. The store is the sole owner of both
// endpoint records; nodes refer to links only by id. This keeps ownership a
// tree even though the two endpoints reference each other.
//
// # Endpoints
//
// A link from upstream node U to downstream node D has:
//   - an inlet, attached under D, which carries the link-type codes, the
//     open flag and the retyped flag, and names U as its mirror owner
//   - an outlet, attached under U, which names D as its mirror owner
//
// The two always resolve to each other. Between any two calls either both
// exist or neither does.
//
// # Dirty Tracking
//
// Every mutation records the surviving nodes whose link set or link types
// changed. The rebuild pipeline drains that set with TakeDirty.
package topologystore

import (
	"context"
	"errors"

	"github.com/specialistvlad/circles/internal/nodeid"
)

// ErrOrphanMirror signals an endpoint whose mirror has disappeared. It is an
// internal invariant violation and is raised with panic, never returned.
var ErrOrphanMirror = errors.New("orphan mirror endpoint")

// ErrUnknownLink is returned when a link id does not name a live link.
var ErrUnknownLink = errors.New("unknown link")

// Role says which side of a link an endpoint is.
type Role int

const (
	// Inlet is attached under the downstream node.
	Inlet Role = iota
	// Outlet is attached under the upstream node.
	Outlet
)

func (r Role) String() string {
	if r == Outlet {
		return "outlet"
	}
	return "inlet"
}

// Types holds the link-type codes chosen by the editor.
type Types struct {
	Source int `json:"source" yaml:"source"`
	Sink   int `json:"sink" yaml:"sink"`
}

// Endpoint is one side of a link.
type Endpoint struct {
	ID     nodeid.EndpointID
	Role   Role
	Link   nodeid.LinkID
	Owner  nodeid.Handle
	Mirror nodeid.EndpointID
	// MirrorOwner is the node the mirror is attached under.
	MirrorOwner nodeid.Handle

	// Inlet only.
	Types   Types
	Open    bool
	Retyped bool
}

// Link is the shared edge artifact of one endpoint pair.
type Link struct {
	ID         nodeid.LinkID
	Source     nodeid.Handle
	SourceSlot int
	Sink       nodeid.Handle
	SinkSlot   int
	Inlet      nodeid.EndpointID
	Outlet     nodeid.EndpointID
}

// Cascade reports what a node deletion removed from the link model.
type Cascade struct {
	// Nodes are the deleted nodes, in request order.
	Nodes []nodeid.Handle
	// Links are the removed edge artifacts, each exactly once.
	Links []Link
	// Endpoints counts removed endpoint records, both sides included.
	Endpoints int
}

// Store is the interface for the link model.
//
// The store does not know which nodes exist. Callers check node existence
// before Connect and pass the complete batch to Cascade.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent calls. Every method is atomic:
// readers never observe one endpoint of a pair without the other.
type Store interface {
	// Connect creates a link with its endpoint pair and attaches the inlet
	// under sink and the outlet under source. A node may be linked to
	// itself; both endpoints are then attached under it.
	Connect(ctx context.Context, source nodeid.Handle, sourceSlot int, sink nodeid.Handle, sinkSlot int) (Link, error)

	// Disconnect removes a link and both endpoints. It is idempotent: the
	// boolean is false when the link was already gone.
	Disconnect(ctx context.Context, id nodeid.LinkID) (Link, bool)

	// Retype stores new type codes on the link's inlet and sets Retyped.
	// Compatibility of the codes is not checked.
	Retype(ctx context.Context, id nodeid.LinkID, types Types) error

	// ClearRetyped resets the inlet's Retyped flag.
	ClearRetyped(ctx context.Context, id nodeid.LinkID)

	// SetOpen sets the inlet's open flag.
	SetOpen(ctx context.Context, id nodeid.LinkID, open bool) error

	// Link looks up a link by id.
	Link(ctx context.Context, id nodeid.LinkID) (Link, bool)

	// Links returns every link in creation order.
	Links(ctx context.Context) []Link

	// Endpoint looks up an endpoint by id.
	Endpoint(ctx context.Context, id nodeid.EndpointID) (Endpoint, bool)

	// Attached returns the endpoints attached under a node, in attach order.
	Attached(ctx context.Context, h nodeid.Handle) []Endpoint

	// Inlets returns the inlets attached under a node whose mirror is live.
	Inlets(ctx context.Context, h nodeid.Handle) []Endpoint

	// Cascade removes every link touching the given nodes. An inlet whose
	// mirror owner is also in the batch is left to the outlet side, so each
	// link is removed exactly once. The plan is checked before anything is
	// removed; a missing mirror panics with ErrOrphanMirror.
	Cascade(ctx context.Context, hs ...nodeid.Handle) *Cascade

	// TakeDirty returns and clears the nodes whose links changed since the
	// last call, in the order they were first marked.
	TakeDirty(ctx context.Context) []nodeid.Handle
}
