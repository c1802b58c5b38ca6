package system

import (
	"testing"

	"github.com/specialistvlad/circles/internal/app"
	"github.com/specialistvlad/circles/internal/testutil"
	"github.com/specialistvlad/circles/modules/control"
	"github.com/stretchr/testify/assert"
)

// Test for: a module registered at startup serves its tag without any
// change to the graph.
func TestModuleContract_CustomOperation(t *testing.T) {
	t.Parallel()

	patch := `
node "in" { operation = "Var" }
node "fx" { operation = "Chorus" }
link "in" "fx" {}
`
	result := testutil.RunPatchTest(t, map[string]string{"main.hcl": patch}, app.Config{Repair: true},
		&control.Module{},
		&testutil.SimpleModule{Tag: "Chorus", Inputs: 1, Outputs: 2},
	)

	entry := testutil.Entry(t, result, "fx")
	assert.Equal(t, 1, entry.Inputs)
	assert.Equal(t, 2, entry.Outputs)
	assert.Len(t, entry.Bindings, 1)
	testutil.AssertOrder(t, result, "in", "fx")
}

// Test for: `Nouts` tags resolve to placeholders with N outputs.
func TestModuleContract_Placeholders(t *testing.T) {
	t.Parallel()

	patch := `node "bus" { operation = "6outs" }`
	result := testutil.RunPatchTest(t, map[string]string{"main.hcl": patch}, app.Config{})

	entry := testutil.Entry(t, result, "bus")
	assert.Equal(t, 0, entry.Inputs)
	assert.Equal(t, 6, entry.Outputs)
}
