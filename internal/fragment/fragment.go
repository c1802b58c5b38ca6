package fragment

import "errors"

// ErrUnknownOperation is returned alongside a fallback fragment when an
// operation tag has no registered constructor.
var ErrUnknownOperation = errors.New("unknown operation")

// Config carries the engine settings a fragment needs before it can run.
type Config struct {
	SampleRate float32
}

// Fragment is one node's piece of the composed signal network.
type Fragment interface {
	// Inputs is the number of signal inputs the fragment reads per tick.
	Inputs() int
	// Outputs is the number of signal outputs the fragment writes per tick.
	Outputs() int
	// Init prepares the fragment for the given engine settings.
	Init(Config)
	// Tick processes one frame. len(in) == Inputs(), len(out) == Outputs().
	Tick(in, out []float32)
}

// Params are the user-editable values a constructor may read.
type Params struct {
	Scalar float32
	Array  []float32
}

// Binding says which node parameter feeds a fragment's live inputs.
type Binding int

const (
	// BindNone means edits to scalar/array do not reach the fragment.
	BindNone Binding = iota
	// BindScalar routes the node scalar into live input 0.
	BindScalar
	// BindArray routes array element i into live input i.
	BindArray
)

func (b Binding) String() string {
	switch b {
	case BindScalar:
		return "scalar"
	case BindArray:
		return "array"
	default:
		return "none"
	}
}

// Built is the result of constructing a fragment for an operation.
type Built struct {
	Fragment Fragment
	Live     []*Cell
	Binding  Binding
}

// PushScalar writes v into the live inputs when they are scalar-bound.
// It reports whether the value reached the fragment.
func (b Built) PushScalar(v float32) bool {
	if b.Binding != BindScalar || len(b.Live) == 0 {
		return false
	}
	b.Live[0].Set(v)
	return true
}

// PushArray writes arr element-wise into array-bound live inputs. It returns
// false without writing anything when the lengths differ, since the fragment
// has to be rebuilt to change its shape.
func (b Built) PushArray(arr []float32) bool {
	if b.Binding != BindArray || len(b.Live) != len(arr) {
		return false
	}
	for i, v := range arr {
		b.Live[i].Set(v)
	}
	return true
}
