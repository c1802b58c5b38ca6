package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/circles/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writePatch writes content to name inside dir and returns the full path.
func writePatch(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_NodesAndLinks(t *testing.T) {
	dir := t.TempDir()
	path := writePatch(t, dir, "patch.hcl", `
node "freq" {
  operation = "Var"
  scalar    = 220
}

node "osc" {
  operation = "Sine"
  rank      = 1
  array     = []
}

node "lookup" {
  operation = "Table"
  array     = [1, 2.5, 3]
}

link "freq" "osc" {}

link "osc" "lookup" {
  from_slot = 0
  to_slot   = 0
  types     = [2, 3]
  open      = false
}
`)

	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, model.Nodes, 3)
	require.Len(t, model.Links, 2)

	freq, ok := model.Node("freq")
	require.True(t, ok)
	assert.Equal(t, "Var", freq.Operation)
	assert.Equal(t, float32(220), freq.Scalar)
	assert.Equal(t, config.DefaultArray, freq.Array)
	assert.Equal(t, 0, freq.Rank)
	assert.Equal(t, path, freq.Origin)

	osc, _ := model.Node("osc")
	assert.Equal(t, 1, osc.Rank)
	assert.Empty(t, osc.Array)

	lookup, _ := model.Node("lookup")
	assert.Equal(t, []float32{1, 2.5, 3}, lookup.Array)

	assert.Equal(t, &config.Link{From: "freq", To: "osc", Open: true}, model.Links[0])
	assert.Equal(t, &config.Link{
		From: "osc", To: "lookup", Open: false,
		Types: &config.Types{Source: 2, Sink: 3},
	}, model.Links[1])
}

func TestLoad_DirectoryInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	writePatch(t, dir, "b.hcl", `node "second" { operation = "Add" }`)
	writePatch(t, dir, "a.hcl", `node "first" { operation = "Var" }`)
	writePatch(t, dir, "nested/c.hcl", `link "first" "second" { to_slot = 1 }`)
	writePatch(t, dir, "notes.txt", `not a patch`)

	model, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, model.Nodes, 2)
	assert.Equal(t, "first", model.Nodes[0].Name)
	assert.Equal(t, "second", model.Nodes[1].Name)
	require.Len(t, model.Links, 1)
	assert.Equal(t, 1, model.Links[0].ToSlot)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"syntax", `node "a" {`, "failed to parse"},
		{"unknown block", `circle "a" {}`, "failed to decode"},
		{"duplicate node", "node \"a\" {}\nnode \"a\" {}", "already declared"},
		{"undeclared link end", "node \"a\" {}\nlink \"a\" \"b\" {}", "undeclared node \"b\""},
		{"bad array", `node "a" { array = ["x"] }`, "invalid array"},
		{"types arity", "node \"a\" {}\nnode \"b\" {}\nlink \"a\" \"b\" { types = [1] }", "types must be [source, sink]"},
		{"negative rank", `node "a" { rank = -1 }`, "rank must not be negative"},
		{"negative slot", "node \"a\" {}\nnode \"b\" {}\nlink \"a\" \"b\" { to_slot = -2 }", "slots must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writePatch(t, t.TempDir(), "patch.hcl", tt.content)
			_, err := NewLoader().Load(context.Background(), path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_BadPaths(t *testing.T) {
	dir := t.TempDir()

	_, err := NewLoader().Load(context.Background(), filepath.Join(dir, "missing.hcl"))
	assert.Error(t, err)

	txt := writePatch(t, dir, "patch.txt", "")
	_, err = NewLoader().Load(context.Background(), txt)
	assert.Error(t, err)
}
