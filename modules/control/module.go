// Package control provides operations whose output is driven directly by
// node parameters.
package control

import (
	"github.com/specialistvlad/circles/internal/fragment"
	"github.com/specialistvlad/circles/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Var emits the node's scalar.
type Var struct {
	value *fragment.Cell
}

func (*Var) Inputs() int          { return 0 }
func (*Var) Outputs() int         { return 1 }
func (*Var) Init(fragment.Config) {}

func (v *Var) Tick(_, out []float32) {
	out[0] = v.value.Value()
}

// NewVar builds a Var bound to the node scalar.
func NewVar(p fragment.Params) fragment.Built {
	cell := fragment.NewCell(p.Scalar)
	return fragment.Built{
		Fragment: &Var{value: cell},
		Live:     []*fragment.Cell{cell},
		Binding:  fragment.BindScalar,
	}
}

// Table looks up the node's array with its single input as index. The index
// is truncated and wrapped, so any signal selects some element.
type Table struct {
	entries []*fragment.Cell
}

func (*Table) Inputs() int          { return 1 }
func (*Table) Outputs() int         { return 1 }
func (*Table) Init(fragment.Config) {}

func (t *Table) Tick(in, out []float32) {
	n := len(t.entries)
	if n == 0 {
		out[0] = 0
		return
	}
	i := int(in[0]) % n
	if i < 0 {
		i += n
	}
	out[0] = t.entries[i].Value()
}

// NewTable builds a Table bound to the node array.
func NewTable(p fragment.Params) fragment.Built {
	cells := fragment.Cells(p.Array)
	return fragment.Built{
		Fragment: &Table{entries: cells},
		Live:     cells,
		Binding:  fragment.BindArray,
	}
}

// Register registers the operations with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterOperation(&registry.Operation{Tag: "Var", Inputs: 0, Outputs: 1, New: NewVar})
	r.RegisterOperation(&registry.Operation{Tag: "Table", Inputs: 1, Outputs: 1, New: NewTable})
}
