package pipeline

import (
	"github.com/google/uuid"
	"github.com/specialistvlad/circles/internal/fragment"
	"github.com/specialistvlad/circles/internal/nodeid"
	"github.com/specialistvlad/circles/internal/topologystore"
)

// Binding wires one output slot of Source to an input slot of the entry that
// holds it.
type Binding struct {
	Link       nodeid.LinkID       `json:"link" yaml:"link"`
	SinkSlot   int                 `json:"sink_slot" yaml:"sink_slot"`
	Source     nodeid.Handle       `json:"source" yaml:"source"`
	SourceSlot int                 `json:"source_slot" yaml:"source_slot"`
	Types      topologystore.Types `json:"types" yaml:"types"`
	Open       bool                `json:"open" yaml:"open"`
}

// Entry is one node in the composed sequence.
type Entry struct {
	Handle    nodeid.Handle     `json:"handle" yaml:"handle"`
	Rank      int               `json:"rank" yaml:"rank"`
	Operation string            `json:"operation" yaml:"operation"`
	Inputs    int               `json:"inputs" yaml:"inputs"`
	Outputs   int               `json:"outputs" yaml:"outputs"`
	Bindings  []Binding         `json:"bindings,omitempty" yaml:"bindings,omitempty"`
	Fragment  fragment.Fragment `json:"-" yaml:"-"`
}

// Composed is the rank-ordered, link-resolved graph for one edit cycle.
type Composed struct {
	Session  uuid.UUID `json:"session" yaml:"session"`
	Revision uint64    `json:"revision" yaml:"revision"`
	Entries  []Entry   `json:"entries" yaml:"entries"`
}

// Handles returns the entry handles in sequence order.
func (c *Composed) Handles() []nodeid.Handle {
	hs := make([]nodeid.Handle, len(c.Entries))
	for i, e := range c.Entries {
		hs[i] = e.Handle
	}
	return hs
}

// Entry looks up an entry by handle.
func (c *Composed) Entry(h nodeid.Handle) (Entry, bool) {
	for _, e := range c.Entries {
		if e.Handle == h {
			return e, true
		}
	}
	return Entry{}, false
}
