package graph

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/circles/internal/ctxlog"
	"github.com/specialistvlad/circles/internal/fragment"
	"github.com/specialistvlad/circles/internal/ledger"
	"github.com/specialistvlad/circles/internal/node"
	"github.com/specialistvlad/circles/internal/nodeid"
	"github.com/specialistvlad/circles/internal/nodestore"
	"github.com/specialistvlad/circles/internal/topologystore"
)

// Manager composes the node store, the link model and the order ledger.
type Manager struct {
	nodes  nodestore.Store
	links  topologystore.Store
	ledger *ledger.Ledger
	ids    nodeid.Sequence
}

// New creates a new graph manager.
func New(links topologystore.Store, nodes nodestore.Store) *Manager {
	return &Manager{
		nodes:  nodes,
		links:  links,
		ledger: ledger.New(nodes, links),
	}
}

// Nodes exposes the node store for readers such as the rebuild pipeline.
func (m *Manager) Nodes() nodestore.Store { return m.nodes }

// Links exposes the link model for readers such as the rebuild pipeline.
func (m *Manager) Links() topologystore.Store { return m.links }

// Ledger exposes the order ledger.
func (m *Manager) Ledger() *ledger.Ledger { return m.ledger }

// Node looks up a node by handle.
func (m *Manager) Node(ctx context.Context, h nodeid.Handle) (*node.Node, bool) {
	return m.nodes.Get(ctx, h)
}

// CreateNode places a new node.
func (m *Manager) CreateNode(ctx context.Context, operation string, scalar float32, array []float32) (nodeid.Handle, error) {
	n := node.New(nodeid.Handle(m.ids.Next()), operation, scalar, array)
	if err := m.nodes.Add(ctx, n); err != nil {
		return nodeid.None, fmt.Errorf("failed to store new node: %w", err)
	}
	m.ledger.Raise()
	ctxlog.FromContext(ctx).Debug("Node created.", "node", n.Handle, "operation", operation)
	return n.Handle, nil
}

// DeleteNodes removes a batch of nodes and every link touching them.
func (m *Manager) DeleteNodes(ctx context.Context, hs ...nodeid.Handle) (*topologystore.Cascade, error) {
	batch := dedupe(hs)
	for _, h := range batch {
		if !m.nodes.Has(ctx, h) {
			return nil, fmt.Errorf("%w: cannot delete %s", ErrInvalidEndpoint, h)
		}
	}
	if len(batch) == 0 {
		return &topologystore.Cascade{}, nil
	}

	cascade := m.links.Cascade(ctx, batch...)
	for _, link := range cascade.Links {
		for _, owner := range []nodeid.Handle{link.Source, link.Sink} {
			if n, ok := m.nodes.Get(ctx, owner); ok {
				n.RemoveDescriptors(link.ID)
			}
		}
	}
	m.nodes.Remove(ctx, batch...)
	m.ledger.Raise()

	ctxlog.FromContext(ctx).Debug("Nodes deleted.", "nodes", len(batch), "links", len(cascade.Links), "endpoints", cascade.Endpoints)
	return cascade, nil
}

// SetOperation changes a node's operation tag and marks it dirty.
func (m *Manager) SetOperation(ctx context.Context, h nodeid.Handle, operation string) error {
	n, err := m.node(ctx, h)
	if err != nil {
		return err
	}
	n.Operation = operation
	n.Dirty = true
	return nil
}

// SetScalar stores a node's scalar and pushes it into a built fragment.
func (m *Manager) SetScalar(ctx context.Context, h nodeid.Handle, v float32) (bool, error) {
	n, err := m.node(ctx, h)
	if err != nil {
		return false, err
	}
	n.Scalar = v
	if n.Dirty {
		return false, nil
	}
	return n.Built().PushScalar(v), nil
}

// SetArray stores a node's array and pushes it into a built fragment.
func (m *Manager) SetArray(ctx context.Context, h nodeid.Handle, arr []float32) (bool, error) {
	n, err := m.node(ctx, h)
	if err != nil {
		return false, err
	}
	n.Array = slices.Clone(arr)
	if n.Dirty {
		return false, nil
	}
	if n.Built().PushArray(arr) {
		return true, nil
	}
	if n.Binding == fragment.BindArray {
		n.Dirty = true
	}
	return false, nil
}

// Connect links an output slot of source to an input slot of sink.
func (m *Manager) Connect(ctx context.Context, source nodeid.Handle, sourceSlot int, sink nodeid.Handle, sinkSlot int) (nodeid.LinkID, error) {
	src, err := m.node(ctx, source)
	if err != nil {
		return nodeid.None, err
	}
	dst, err := m.node(ctx, sink)
	if err != nil {
		return nodeid.None, err
	}
	if sourceSlot < 0 || sinkSlot < 0 {
		return nodeid.None, fmt.Errorf("%w: negative slot", ErrInvalidEndpoint)
	}

	link, err := m.links.Connect(ctx, source, sourceSlot, sink, sinkSlot)
	if err != nil {
		return nodeid.None, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	src.Outputs = append(src.Outputs, node.Descriptor{Link: link.ID, Slot: sourceSlot})
	dst.Inputs = append(dst.Inputs, node.Descriptor{Link: link.ID, Slot: sinkSlot})

	ctxlog.FromContext(ctx).Debug("Nodes connected.", "link", link.ID, "source", source, "sink", sink)
	return link.ID, nil
}

// Disconnect removes a link and its slot descriptors.
func (m *Manager) Disconnect(ctx context.Context, id nodeid.LinkID) error {
	link, ok := m.links.Disconnect(ctx, id)
	if !ok {
		return nil
	}
	for _, owner := range []nodeid.Handle{link.Source, link.Sink} {
		if n, ok := m.nodes.Get(ctx, owner); ok {
			n.RemoveDescriptors(link.ID)
		}
	}
	ctxlog.FromContext(ctx).Debug("Link removed.", "link", id)
	return nil
}

// Retype stores new link-type codes.
func (m *Manager) Retype(ctx context.Context, id nodeid.LinkID, types topologystore.Types) error {
	if err := m.links.Retype(ctx, id, types); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	return nil
}

// SetOpen sets the link's open flag.
func (m *Manager) SetOpen(ctx context.Context, id nodeid.LinkID, open bool) error {
	if err := m.links.SetOpen(ctx, id, open); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	return nil
}

// BumpRank moves a node's rank by one.
func (m *Manager) BumpRank(ctx context.Context, h nodeid.Handle, delta int) (int, error) {
	rank, err := m.ledger.Bump(ctx, h, delta)
	return rank, translate(err)
}

// SetRank assigns a rank directly.
func (m *Manager) SetRank(ctx context.Context, h nodeid.Handle, rank int) error {
	return translate(m.ledger.Set(ctx, h, rank))
}

// Repair runs one pass of rank repair.
func (m *Manager) Repair(ctx context.Context) int {
	return m.ledger.Repair(ctx)
}

func (m *Manager) node(ctx context.Context, h nodeid.Handle) (*node.Node, error) {
	n, ok := m.nodes.Get(ctx, h)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not exist", ErrInvalidEndpoint, h)
	}
	return n, nil
}

func translate(err error) error {
	if errors.Is(err, nodestore.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	return err
}

func dedupe(hs []nodeid.Handle) []nodeid.Handle {
	seen := make(map[nodeid.Handle]struct{}, len(hs))
	out := make([]nodeid.Handle, 0, len(hs))
	for _, h := range hs {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}
