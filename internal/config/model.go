package config

// DefaultArray is the array a node gets when its patch entry sets none.
var DefaultArray = []float32{42, 105, 420, 1729}

// Model is the unified representation of a patch.
type Model struct {
	Nodes []*Node
	Links []*Link
}

// Node is the format-agnostic representation of a `node` block.
type Node struct {
	Name      string
	Operation string
	Scalar    float32
	Array     []float32
	Rank      int
	// Origin names the file the node was declared in, for error messages.
	Origin string
}

// Link is the format-agnostic representation of a `link` block.
type Link struct {
	From     string
	FromSlot int
	To       string
	ToSlot   int
	// Types is nil when the patch leaves the link untyped.
	Types *Types
	Open  bool
}

// Types holds link-type codes.
type Types struct {
	Source int
	Sink   int
}

// Node looks up a node by name.
func (m *Model) Node(name string) (*Node, bool) {
	for _, n := range m.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}
