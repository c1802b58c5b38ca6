package testutil

import (
	"github.com/specialistvlad/circles/internal/fragment"
	"github.com/specialistvlad/circles/internal/registry"
)

// SimpleModule is a test helper for easily creating a mock module that
// registers a single silent operation with the given arity.
type SimpleModule struct {
	Tag     string
	Inputs  int
	Outputs int
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	in, out := m.Inputs, m.Outputs
	r.RegisterOperation(&registry.Operation{
		Tag:     m.Tag,
		Inputs:  in,
		Outputs: out,
		New: func(fragment.Params) fragment.Built {
			return fragment.Built{Fragment: fragment.Placeholder{In: in, Out: out}}
		},
	})
}
