package testutil

import (
	"testing"

	"github.com/specialistvlad/circles/internal/nodeid"
	"github.com/specialistvlad/circles/internal/pipeline"
	"github.com/stretchr/testify/require"
)

// Entry returns the composed entry of the named patch node.
func Entry(t *testing.T, result *HarnessResult, name string) pipeline.Entry {
	t.Helper()
	require.NoError(t, result.Err)

	h, ok := result.Report.Names[name]
	require.True(t, ok, "patch node %q was not created", name)
	entry, ok := result.Report.Composed.Entry(h)
	require.True(t, ok, "patch node %q is missing from the composed graph", name)
	return entry
}

// AssertOrder checks that the named patch nodes appear in the composed
// sequence in the given relative order. Other nodes may sit in between.
func AssertOrder(t *testing.T, result *HarnessResult, names ...string) {
	t.Helper()
	require.NoError(t, result.Err)

	position := make(map[nodeid.Handle]int)
	for i, h := range result.Report.Composed.Handles() {
		position[h] = i
	}

	last := -1
	for _, name := range names {
		h, ok := result.Report.Names[name]
		require.True(t, ok, "patch node %q was not created", name)
		pos, ok := position[h]
		require.True(t, ok, "patch node %q is missing from the composed graph", name)
		require.Greater(t, pos, last, "patch node %q is out of order", name)
		last = pos
	}
}
