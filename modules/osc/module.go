// Package osc provides oscillator operations.
package osc

import (
	"math"

	"github.com/specialistvlad/circles/internal/fragment"
	"github.com/specialistvlad/circles/internal/registry"
)

const defaultSampleRate = 44100

// Module implements the registry.Module interface for this package.
type Module struct{}

// Sine is a sine oscillator whose frequency is the node scalar.
type Sine struct {
	freq       *fragment.Cell
	sampleRate float64
	phase      float64
}

func (*Sine) Inputs() int  { return 0 }
func (*Sine) Outputs() int { return 1 }

func (s *Sine) Init(c fragment.Config) {
	s.sampleRate = float64(c.SampleRate)
	if s.sampleRate <= 0 {
		s.sampleRate = defaultSampleRate
	}
}

func (s *Sine) Tick(_, out []float32) {
	if s.sampleRate == 0 {
		s.sampleRate = defaultSampleRate
	}
	out[0] = float32(math.Sin(2 * math.Pi * s.phase))
	_, s.phase = math.Modf(s.phase + float64(s.freq.Value())/s.sampleRate)
}

// NewSine builds a Sine bound to the node scalar.
func NewSine(p fragment.Params) fragment.Built {
	cell := fragment.NewCell(p.Scalar)
	return fragment.Built{
		Fragment: &Sine{freq: cell},
		Live:     []*fragment.Cell{cell},
		Binding:  fragment.BindScalar,
	}
}

// Register registers the operations with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterOperation(&registry.Operation{Tag: "Sine", Inputs: 0, Outputs: 1, New: NewSine})
}
