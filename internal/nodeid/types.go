// internal/nodeid/types.go
package nodeid

import "sync/atomic"

// Kind names the identifier space an id belongs to.
type Kind string

const (
	KindNode     Kind = "node"
	KindLink     Kind = "link"
	KindEndpoint Kind = "endpoint"
)

// Handle identifies a node for its whole lifetime.
type Handle uint64

// LinkID identifies a link, i.e. one mirrored endpoint pair and its edge artifact.
type LinkID uint64

// EndpointID identifies one side of a link.
type EndpointID uint64

// None is the zero identifier. It never refers to a live entity.
const None = 0

// Sequence hands out strictly increasing identifiers starting at 1.
// It is safe for concurrent use.
type Sequence struct {
	last atomic.Uint64
}

// Next returns the next identifier in the sequence.
func (s *Sequence) Next() uint64 {
	return s.last.Add(1)
}

// Last returns the most recently issued identifier, or 0 if none was issued.
func (s *Sequence) Last() uint64 {
	return s.last.Load()
}
