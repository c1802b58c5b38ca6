package system

import (
	"testing"

	"github.com/specialistvlad/circles/internal/app"
	"github.com/specialistvlad/circles/internal/config"
	"github.com/specialistvlad/circles/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test for: every patch file below a directory is merged, and links may
// name nodes from other files.
func TestPatchLoading_MergesDirectory(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"a_sources.hcl":      `node "freq" { operation = "Var" }`,
		"voices/b_lead.hcl":  `node "lead" { operation = "Sine" }`,
		"voices/c_links.hcl": `link "freq" "lead" {}`,
		"README.md":          "not a patch file",
	}
	result := testutil.RunPatchTest(t, files, app.Config{})

	require.NoError(t, result.Err)
	assert.Len(t, result.Report.Names, 2)
	assert.Len(t, result.Report.Snapshot.Links, 1)
}

// Test for: omitted optional attributes take their defaults.
func TestPatchLoading_OptionalDefaults(t *testing.T) {
	t.Parallel()

	patch := `
node "lookup" { operation = "Table" }
node "idx" {}
link "idx" "lookup" {}
`
	result := testutil.RunPatchTest(t, map[string]string{"main.hcl": patch}, app.Config{})
	require.NoError(t, result.Err)

	snap := result.Report.Snapshot
	require.Len(t, snap.Nodes, 2)
	assert.Equal(t, config.DefaultArray, snap.Nodes[0].Array)
	assert.Equal(t, float32(0), snap.Nodes[1].Scalar)
	assert.Equal(t, "", snap.Nodes[1].Operation)

	require.Len(t, snap.Links, 1)
	assert.True(t, snap.Links[0].Open)
	assert.Zero(t, snap.Links[0].Types)
}

// Test for: link types and the open flag reach the composed bindings.
func TestPatchLoading_TypedClosedLink(t *testing.T) {
	t.Parallel()

	patch := `
node "a" { operation = "Var" }
node "t" { operation = "Table" }
link "a" "t" {
  types = [3, 4]
  open  = false
}
`
	result := testutil.RunPatchTest(t, map[string]string{"main.hcl": patch}, app.Config{})

	entry := testutil.Entry(t, result, "t")
	require.Len(t, entry.Bindings, 1)
	assert.Equal(t, 3, entry.Bindings[0].Types.Source)
	assert.Equal(t, 4, entry.Bindings[0].Types.Sink)
	assert.False(t, entry.Bindings[0].Open)
}
