package fragment

// Zero emits silence on a single output and reads nothing. It is what a node
// holds before its first rebuild and what unknown operations fall back to.
type Zero struct{}

func (Zero) Inputs() int  { return 0 }
func (Zero) Outputs() int { return 1 }
func (Zero) Init(Config)  {}

func (Zero) Tick(_, out []float32) {
	out[0] = 0
}

// Placeholder has a declared shape and no signal. It lets graph structure be
// exercised without DSP semantics.
type Placeholder struct {
	In, Out int
}

func (p Placeholder) Inputs() int  { return p.In }
func (p Placeholder) Outputs() int { return p.Out }
func (Placeholder) Init(Config)    {}

func (Placeholder) Tick(_, out []float32) {
	for i := range out {
		out[i] = 0
	}
}

// Fallback is the Built value used for unknown operations.
func Fallback() Built {
	return Built{Fragment: Zero{}}
}
