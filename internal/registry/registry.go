package registry

import (
	"fmt"
	"sort"

	"github.com/specialistvlad/circles/internal/fragment"
)

// Module is the interface that all operation modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Constructor builds a fresh fragment and its live inputs from node parameters.
// It must be pure: the same params always give an equivalent fragment.
type Constructor func(p fragment.Params) fragment.Built

// Operation describes one registered operation tag.
type Operation struct {
	Tag     string
	Inputs  int
	Outputs int
	New     Constructor
}

// Matcher resolves a family of tags. It returns false for tags it does not serve.
type Matcher func(tag string) (*Operation, bool)

type namedMatcher struct {
	name  string
	match Matcher
}

// Registry holds all the registered operations for a single application instance.
type Registry struct {
	operations map[string]*Operation
	matchers   []namedMatcher
}

// New creates and initializes a new Registry instance.
func New(modules ...Module) *Registry {
	r := &Registry{
		operations: make(map[string]*Operation),
	}
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// Lookup resolves a tag to its operation.
func (r *Registry) Lookup(tag string) (*Operation, bool) {
	if op, ok := r.operations[tag]; ok {
		return op, true
	}
	for _, m := range r.matchers {
		if op, ok := m.match(tag); ok {
			return op, true
		}
	}
	return nil, false
}

// Build constructs the fragment for tag. An unknown tag yields the zero
// fallback together with an error wrapping fragment.ErrUnknownOperation;
// callers are expected to install the fallback and carry on.
func (r *Registry) Build(tag string, p fragment.Params) (fragment.Built, error) {
	op, ok := r.Lookup(tag)
	if !ok {
		return fragment.Fallback(), fmt.Errorf("%w: %q", fragment.ErrUnknownOperation, tag)
	}
	return op.New(p), nil
}

// Tags returns the exact-match tags in sorted order.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.operations))
	for tag := range r.operations {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
