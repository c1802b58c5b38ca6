// Package node defines the record held for every circle in the graph.
package node

import (
	"slices"

	"github.com/specialistvlad/circles/internal/fragment"
	"github.com/specialistvlad/circles/internal/nodeid"
)

// Descriptor describes one link slot on a node. SourceType and SinkType stay
// zero until the link is retyped and the next rebuild copies the codes in.
type Descriptor struct {
	Link       nodeid.LinkID `json:"link" yaml:"link"`
	Slot       int           `json:"slot" yaml:"slot"`
	SourceType int           `json:"source_type" yaml:"source_type"`
	SinkType   int           `json:"sink_type" yaml:"sink_type"`
}

// Node is a single vertex in the graph.
type Node struct {
	Handle    nodeid.Handle
	Operation string
	Scalar    float32
	Array     []float32

	// Fragment, LiveInputs and Binding are derived from Operation and the
	// parameters. Only the rebuild pipeline writes them, through Install.
	Fragment   fragment.Fragment
	LiveInputs []*fragment.Cell
	Binding    fragment.Binding

	// Rank is the node's position in the composition order.
	Rank int
	// Dirty is set whenever the fragment must be rebuilt.
	Dirty bool

	Inputs  []Descriptor
	Outputs []Descriptor
}

// New returns a node as placed by the user: rank 0, dirty, holding the zero
// fragment until its first rebuild.
func New(h nodeid.Handle, operation string, scalar float32, array []float32) *Node {
	return &Node{
		Handle:    h,
		Operation: operation,
		Scalar:    scalar,
		Array:     slices.Clone(array),
		Fragment:  fragment.Zero{},
		Dirty:     true,
	}
}

// Params returns the parameters a constructor reads.
func (n *Node) Params() fragment.Params {
	return fragment.Params{Scalar: n.Scalar, Array: slices.Clone(n.Array)}
}

// Built returns the currently installed fragment and its live inputs.
func (n *Node) Built() fragment.Built {
	return fragment.Built{Fragment: n.Fragment, Live: n.LiveInputs, Binding: n.Binding}
}

// Install replaces the fragment and live inputs and clears Dirty.
func (n *Node) Install(b fragment.Built) {
	n.Fragment = b.Fragment
	n.LiveInputs = b.Live
	n.Binding = b.Binding
	n.Dirty = false
}

// RemoveDescriptors drops every descriptor referring to link from both lists.
// A list that becomes empty is set to nil.
func (n *Node) RemoveDescriptors(link nodeid.LinkID) {
	n.Inputs = removeLink(n.Inputs, link)
	n.Outputs = removeLink(n.Outputs, link)
}

// SetTypes writes the link-type codes into every descriptor for link.
func (n *Node) SetTypes(link nodeid.LinkID, source, sink int) {
	for _, list := range [][]Descriptor{n.Inputs, n.Outputs} {
		for i := range list {
			if list[i].Link == link {
				list[i].SourceType = source
				list[i].SinkType = sink
			}
		}
	}
}

func removeLink(list []Descriptor, link nodeid.LinkID) []Descriptor {
	list = slices.DeleteFunc(list, func(d Descriptor) bool { return d.Link == link })
	if len(list) == 0 {
		return nil
	}
	return list
}
