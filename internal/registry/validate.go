package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/circles/internal/ctxlog"
	"github.com/specialistvlad/circles/internal/fragment"
)

// ValidateRegistry performs a parity check between each operation's declared
// arity and the fragment its constructor actually builds, for empty params
// and for a representative set of params.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	samples := []fragment.Params{
		{},
		{Scalar: 1, Array: []float32{1, 2, 3}},
	}

	for _, tag := range r.Tags() {
		op := r.operations[tag]
		for _, p := range samples {
			built := op.New(p)
			if built.Fragment == nil {
				errs = append(errs, fmt.Sprintf("operation '%s': constructor returned no fragment", tag))
				break
			}
			if in := built.Fragment.Inputs(); in != op.Inputs {
				errs = append(errs, fmt.Sprintf("operation '%s': declares %d inputs but builds %d", tag, op.Inputs, in))
			}
			if out := built.Fragment.Outputs(); out != op.Outputs {
				errs = append(errs, fmt.Sprintf("operation '%s': declares %d outputs but builds %d", tag, op.Outputs, out))
			}
			if built.Binding == fragment.BindScalar && len(built.Live) != 1 {
				errs = append(errs, fmt.Sprintf("operation '%s': scalar binding needs exactly one live input, got %d", tag, len(built.Live)))
			}
			if built.Binding == fragment.BindArray && len(built.Live) != len(p.Array) {
				errs = append(errs, fmt.Sprintf("operation '%s': array binding needs one live input per element", tag))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	logger.Debug("Registry validation passed.", "operations", len(r.operations), "matchers", len(r.matchers))
	return nil
}
