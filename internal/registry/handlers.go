package registry

import (
	"fmt"
	"log/slog"
)

// RegisterOperation registers a constructor under an exact tag.
func (r *Registry) RegisterOperation(op *Operation) {
	if op == nil || op.New == nil {
		panic("operation must have a constructor")
	}
	if _, exists := r.operations[op.Tag]; exists {
		panic(fmt.Sprintf("operation with tag '%s' already registered", op.Tag))
	}
	slog.Debug("Registering operation.", "tag", op.Tag, "inputs", op.Inputs, "outputs", op.Outputs)
	r.operations[op.Tag] = op
}

// RegisterMatcher registers a resolver for a family of tags.
func (r *Registry) RegisterMatcher(name string, m Matcher) {
	for _, existing := range r.matchers {
		if existing.name == name {
			panic(fmt.Sprintf("matcher with name '%s' already registered", name))
		}
	}
	slog.Debug("Registering operation matcher.", "name", name)
	r.matchers = append(r.matchers, namedMatcher{name: name, match: m})
}
