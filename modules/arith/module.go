// Package arith provides two-input arithmetic operations.
package arith

import (
	"github.com/specialistvlad/circles/internal/fragment"
	"github.com/specialistvlad/circles/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Binary applies fn to its two inputs.
type Binary struct {
	fn func(a, b float32) float32
}

func (Binary) Inputs() int          { return 2 }
func (Binary) Outputs() int         { return 1 }
func (Binary) Init(fragment.Config) {}

func (b Binary) Tick(in, out []float32) {
	out[0] = b.fn(in[0], in[1])
}

func binary(fn func(a, b float32) float32) registry.Constructor {
	return func(fragment.Params) fragment.Built {
		return fragment.Built{Fragment: Binary{fn: fn}}
	}
}

// Register registers the operations with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterOperation(&registry.Operation{
		Tag: "Add", Inputs: 2, Outputs: 1,
		New: binary(func(a, b float32) float32 { return a + b }),
	})
	r.RegisterOperation(&registry.Operation{
		Tag: "Mul", Inputs: 2, Outputs: 1,
		New: binary(func(a, b float32) float32 { return a * b }),
	})
}
