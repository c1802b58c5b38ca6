package graph

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/circles/internal/nodeid"
	"github.com/specialistvlad/circles/internal/topologystore"
)

// Snapshot is a read-only copy of the graph for visualization collaborators.
type Snapshot struct {
	Nodes []NodeView `json:"nodes" yaml:"nodes"`
	Links []LinkView `json:"links" yaml:"links"`
}

// NodeView carries what a label or highlight needs to show for one node.
type NodeView struct {
	Handle    nodeid.Handle `json:"handle" yaml:"handle"`
	Operation string        `json:"operation" yaml:"operation"`
	Scalar    float32       `json:"scalar" yaml:"scalar"`
	Array     []float32     `json:"array,omitempty" yaml:"array,omitempty,flow"`
	Rank      int           `json:"rank" yaml:"rank"`
	Dirty     bool          `json:"dirty" yaml:"dirty"`
	Inputs    int           `json:"inputs" yaml:"inputs"`
	Outputs   int           `json:"outputs" yaml:"outputs"`
}

// LinkView is one link as seen from outside the link model.
type LinkView struct {
	ID         nodeid.LinkID       `json:"id" yaml:"id"`
	Source     nodeid.Handle       `json:"source" yaml:"source"`
	SourceSlot int                 `json:"source_slot" yaml:"source_slot"`
	Sink       nodeid.Handle       `json:"sink" yaml:"sink"`
	SinkSlot   int                 `json:"sink_slot" yaml:"sink_slot"`
	Types      topologystore.Types `json:"types" yaml:"types"`
	Open       bool                `json:"open" yaml:"open"`
}

// Snapshot copies the current nodes and links in insertion order.
func (m *Manager) Snapshot(ctx context.Context) *Snapshot {
	snap := &Snapshot{}
	for _, n := range m.nodes.All(ctx) {
		view := NodeView{
			Handle:    n.Handle,
			Operation: n.Operation,
			Scalar:    n.Scalar,
			Array:     slices.Clone(n.Array),
			Rank:      n.Rank,
			Dirty:     n.Dirty,
		}
		if n.Fragment != nil {
			view.Inputs = n.Fragment.Inputs()
			view.Outputs = n.Fragment.Outputs()
		}
		snap.Nodes = append(snap.Nodes, view)
	}
	for _, l := range m.links.Links(ctx) {
		view := LinkView{
			ID:         l.ID,
			Source:     l.Source,
			SourceSlot: l.SourceSlot,
			Sink:       l.Sink,
			SinkSlot:   l.SinkSlot,
		}
		if inlet, ok := m.links.Endpoint(ctx, l.Inlet); ok {
			view.Types = inlet.Types
			view.Open = inlet.Open
		}
		snap.Links = append(snap.Links, view)
	}
	return snap
}

// Label returns the text an on-screen label shows for a node: its handle,
// rank, operation and scalar, one per line.
func (v NodeView) Label() string {
	return fmt.Sprintf("%s\norder: %d\n%s\n%g", v.Handle, v.Rank, v.Operation, v.Scalar)
}
