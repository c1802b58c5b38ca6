// Package placeholder resolves `Nouts` tags to structural fragments with N
// outputs, no inputs and no signal.
package placeholder

import (
	"regexp"
	"strconv"

	"github.com/specialistvlad/circles/internal/fragment"
	"github.com/specialistvlad/circles/internal/registry"
)

// MaxOutputs caps N in `Nouts`.
const MaxOutputs = 64

var outsPattern = regexp.MustCompile(`^(\d+)outs$`)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Match resolves tags of the form `Nouts`.
func Match(tag string) (*registry.Operation, bool) {
	m := outsPattern.FindStringSubmatch(tag)
	if m == nil {
		return nil, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > MaxOutputs {
		return nil, false
	}
	return &registry.Operation{
		Tag:     tag,
		Outputs: n,
		New: func(fragment.Params) fragment.Built {
			return fragment.Built{Fragment: fragment.Placeholder{Out: n}}
		},
	}, true
}

// Register registers the matcher with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterMatcher("outs", Match)
}
