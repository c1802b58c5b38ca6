package ledger

import (
	"context"
	"fmt"

	"github.com/specialistvlad/circles/internal/ctxlog"
	"github.com/specialistvlad/circles/internal/nodeid"
	"github.com/specialistvlad/circles/internal/nodestore"
	"github.com/specialistvlad/circles/internal/topologystore"
)

// Ledger adjusts node ranks and reports when the order changed.
type Ledger struct {
	nodes   nodestore.Store
	links   topologystore.Store
	changed chan struct{}
}

// New creates a ledger over the given stores.
func New(nodes nodestore.Store, links topologystore.Store) *Ledger {
	return &Ledger{
		nodes:   nodes,
		links:   links,
		changed: make(chan struct{}, 1),
	}
}

// Bump moves a node's rank by delta, which must be +1 or -1. A decrement at
// rank 0 is a no-op. The new rank is returned.
func (l *Ledger) Bump(ctx context.Context, h nodeid.Handle, delta int) (int, error) {
	if delta != 1 && delta != -1 {
		return 0, fmt.Errorf("rank bump must be +1 or -1, got %d", delta)
	}
	n, ok := l.nodes.Get(ctx, h)
	if !ok {
		return 0, fmt.Errorf("%w: %s", nodestore.ErrNotFound, h)
	}

	rank := max(n.Rank+delta, 0)
	if rank != n.Rank {
		ctxlog.FromContext(ctx).Debug("Rank bumped.", "node", h, "from", n.Rank, "to", rank)
		n.Rank = rank
		l.Raise()
	}
	return rank, nil
}

// Set assigns a rank directly. Patch loading uses it to restore saved ranks.
func (l *Ledger) Set(ctx context.Context, h nodeid.Handle, rank int) error {
	if rank < 0 {
		return fmt.Errorf("rank must not be negative, got %d", rank)
	}
	n, ok := l.nodes.Get(ctx, h)
	if !ok {
		return fmt.Errorf("%w: %s", nodestore.ErrNotFound, h)
	}
	if n.Rank != rank {
		n.Rank = rank
		l.Raise()
	}
	return nil
}

// Repair lifts every node whose rank is not above all of its direct parents
// to one more than the highest such parent. Parent ranks are read from a
// snapshot taken before the pass, so a lift does not cascade within one call.
// It returns the number of nodes adjusted.
func (l *Ledger) Repair(ctx context.Context) int {
	logger := ctxlog.FromContext(ctx)
	nodes := l.nodes.All(ctx)

	snapshot := make(map[nodeid.Handle]int, len(nodes))
	for _, n := range nodes {
		snapshot[n.Handle] = n.Rank
	}

	adjusted := 0
	for _, n := range nodes {
		highest, found := 0, false
		for _, inlet := range l.links.Inlets(ctx, n.Handle) {
			parent, ok := snapshot[inlet.MirrorOwner]
			if !ok {
				continue
			}
			if !found || parent > highest {
				highest, found = parent, true
			}
		}
		if !found || snapshot[n.Handle] > highest {
			continue
		}
		logger.Debug("Rank repaired.", "node", n.Handle, "from", n.Rank, "to", highest+1)
		n.Rank = highest + 1
		adjusted++
	}

	if adjusted > 0 {
		l.Raise()
	}
	return adjusted
}

// Raise marks the order as changed. Node creation and deletion raise it too,
// since either changes the sequence.
func (l *Ledger) Raise() {
	select {
	case l.changed <- struct{}{}:
	default:
	}
}

// Consume reports whether the order changed since the last call and clears
// the notification.
func (l *Ledger) Consume() bool {
	select {
	case <-l.changed:
		return true
	default:
		return false
	}
}

// Pending reports whether a notification is waiting, without clearing it.
func (l *Ledger) Pending() bool {
	return len(l.changed) > 0
}

// Changed exposes the notification channel for callers that want to select
// on it. Receiving from it consumes the notification.
func (l *Ledger) Changed() <-chan struct{} {
	return l.changed
}
