package app

import (
	"context"
	"encoding/json"
	"maps"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/specialistvlad/circles/internal/config"
	"github.com/specialistvlad/circles/internal/ctxlog"
	"github.com/specialistvlad/circles/internal/graph"
	"github.com/specialistvlad/circles/internal/hcl"
	"github.com/specialistvlad/circles/internal/nodeid"
	"github.com/specialistvlad/circles/internal/pipeline"
	"github.com/specialistvlad/circles/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sumPatch = `
node "a" {
  operation = "Var"
  scalar    = 1
}

node "b" {
  operation = "Var"
  scalar    = 2
}

node "sum" {
  operation = "Add"
}

link "a" "sum" {}

link "b" "sum" {
  to_slot = 1
  types   = [1, 2]
}
`

func writePatch(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "patch.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestConfig(t *testing.T, cfg Config) *Config {
	t.Helper()
	c, err := NewConfig(cfg)
	require.NoError(t, err)
	return c
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(Config{PatchPath: "patch.hcl"})
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DumpYAML, cfg.Dump)
	assert.Equal(t, float32(DefaultSampleRate), cfg.SampleRate)

	testCases := []struct {
		name string
		cfg  Config
	}{
		{"missing path", Config{}},
		{"bad format", Config{PatchPath: "p", LogFormat: "xml"}},
		{"bad level", Config{PatchPath: "p", LogLevel: "trace"}},
		{"bad port", Config{PatchPath: "p", Port: 70000}},
		{"bad dump", Config{PatchPath: "p", Dump: "toml"}},
		{"bad monitor", Config{PatchPath: "p", Monitor: "not a url"}},
		{"watch without port", Config{PatchPath: "p", Watch: true}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(tc.cfg)
			assert.Error(t, err)
		})
	}
}

func TestRun_OneShotJSON(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, Config{PatchPath: writePatch(t, sumPatch), Dump: DumpJSON, Repair: true})
	a, out, _ := SetupAppTest(t, cfg, hcl.NewLoader())

	require.NoError(t, a.Run(context.Background()))

	var report Report
	require.NoError(t, json.Unmarshal([]byte(out.String()), &report))
	require.Len(t, report.Names, 3)
	require.NotNil(t, report.Composed)

	sum := report.Names["sum"]
	assert.Equal(t, []nodeid.Handle{report.Names["a"], report.Names["b"], sum}, report.Composed.Handles())

	entry, ok := report.Composed.Entry(sum)
	require.True(t, ok)
	assert.Equal(t, 1, entry.Rank, "repair lifts the sink above its parents")
	assert.Equal(t, "Add", entry.Operation)
	require.Len(t, entry.Bindings, 2)

	require.Len(t, report.Snapshot.Links, 2)
	for _, l := range report.Snapshot.Links {
		assert.True(t, l.Open)
		if l.Source == report.Names["b"] {
			assert.Equal(t, 1, l.SinkSlot)
			assert.Equal(t, 1, l.Types.Source)
			assert.Equal(t, 2, l.Types.Sink)
		}
	}
}

func TestRun_OneShotYAML(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, Config{PatchPath: writePatch(t, sumPatch)})
	a, out, logs := SetupAppTest(t, cfg, hcl.NewLoader())

	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "names:")
	assert.Contains(t, out.String(), "sum: node[")
	assert.Contains(t, out.String(), "revision: 1")
	assert.Contains(t, logs.String(), "Patch applied.")
}

func TestRun_DumpNone(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, Config{PatchPath: writePatch(t, sumPatch), Dump: DumpNone})
	a, out, _ := SetupAppTest(t, cfg, hcl.NewLoader())

	require.NoError(t, a.Run(context.Background()))
	assert.Empty(t, out.String())
}

func TestNewApp_PanicsOnBadPatch(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, Config{PatchPath: writePatch(t, `node "a" {`)})
	assert.Panics(t, func() {
		NewApp(&SafeBuffer{}, &SafeBuffer{}, cfg, hcl.NewLoader())
	})
}

func TestPatchEdit_ReplacesGraph(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, Config{PatchPath: writePatch(t, sumPatch)})
	a, _, logs := SetupAppTest(t, cfg, hcl.NewLoader())
	ctx := ctxlog.WithLogger(context.Background(), a.logger)

	sess, err := a.sessions.NewSession(ctx, a.registry, session.Discard{})
	require.NoError(t, err)

	names := Names{}
	_, err = sess.Cycle(ctx, patchEdit(a.patch, false, names))
	require.NoError(t, err)
	first := names["sum"]

	composed, err := sess.Cycle(ctx, patchEdit(a.patch, false, names))
	require.NoError(t, err)
	assert.NotEqual(t, first, names["sum"], "handles are never reused")
	assert.Len(t, composed.Entries, 3)
	assert.Len(t, sess.Snapshot(ctx).Links, 2)
	assert.Contains(t, logs.String(), "Cleared graph before applying patch.")
}

func TestReloader(t *testing.T) {
	t.Parallel()

	path := writePatch(t, sumPatch)
	cfg := newTestConfig(t, Config{PatchPath: path})
	a, _, logs := SetupAppTest(t, cfg, hcl.NewLoader())
	ctx := ctxlog.WithLogger(context.Background(), a.logger)

	sess, err := a.sessions.NewSession(ctx, a.registry, session.Discard{})
	require.NoError(t, err)
	names := Names{}
	_, err = sess.Cycle(ctx, patchEdit(a.patch, false, names))
	require.NoError(t, err)

	reload := a.reloader(sess, names)

	require.NoError(t, os.WriteFile(path, []byte(`node "solo" { operation = "Sine" }`), 0o644))
	reload(ctx, []string{path})
	snap := sess.Snapshot(ctx)
	require.Len(t, snap.Nodes, 1)
	assert.Equal(t, "Sine", snap.Nodes[0].Operation)
	assert.Contains(t, names, "solo")

	require.NoError(t, os.WriteFile(path, []byte(`node "solo" {`), 0o644))
	reload(ctx, []string{path})
	assert.Len(t, sess.Snapshot(ctx).Nodes, 1, "a broken patch keeps the current graph")
	assert.Contains(t, logs.String(), "Patch reload failed")
}

// countingPublisher counts published graphs.
type countingPublisher struct {
	session.Discard
	graphs atomic.Int32
}

func (p *countingPublisher) PublishGraph(context.Context, *pipeline.Composed) error {
	p.graphs.Add(1)
	return nil
}

// modelLoader hands out a fixed model, standing in for a loader whose output
// parses but may not apply.
type modelLoader struct{ model *config.Model }

func (l modelLoader) Load(context.Context, ...string) (*config.Model, error) { return l.model, nil }
func (modelLoader) Extension() string                                        { return ".hcl" }

// unappliable declares nodes fine but links one to a name that was never
// declared, which only fails once the links are connected.
func unappliable() *config.Model {
	return &config.Model{
		Nodes: []*config.Node{{Name: "x", Operation: "Var"}, {Name: "y", Operation: "Sine"}},
		Links: []*config.Link{
			{From: "x", To: "y", Open: true},
			{From: "x", To: "ghost", Open: true},
		},
	}
}

func TestPatchEdit_FailedApplyLeavesGraph(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, Config{PatchPath: writePatch(t, sumPatch)})
	a, _, _ := SetupAppTest(t, cfg, hcl.NewLoader())
	ctx := ctxlog.WithLogger(context.Background(), a.logger)

	sess, err := a.sessions.NewSession(ctx, a.registry, session.Discard{})
	require.NoError(t, err)
	names := Names{}
	_, err = sess.Cycle(ctx, patchEdit(a.patch, false, names))
	require.NoError(t, err)
	before := maps.Clone(names)

	_, err = sess.Cycle(ctx, patchEdit(unappliable(), false, names))
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrInvalidEndpoint)

	snap := sess.Snapshot(ctx)
	assert.Len(t, snap.Nodes, 3)
	assert.Len(t, snap.Links, 2)
	assert.Equal(t, before, names, "names survive a rejected patch")
}

func TestReloader_FailedApplyKeepsGraph(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, Config{PatchPath: writePatch(t, sumPatch)})
	a, _, logs := SetupAppTest(t, cfg, hcl.NewLoader())
	ctx := ctxlog.WithLogger(context.Background(), a.logger)

	pub := &countingPublisher{}
	sess, err := a.sessions.NewSession(ctx, a.registry, pub)
	require.NoError(t, err)
	names := Names{}
	_, err = sess.Cycle(ctx, patchEdit(a.patch, false, names))
	require.NoError(t, err)
	require.EqualValues(t, 1, pub.graphs.Load())

	a.loader = modelLoader{model: unappliable()}
	a.reloader(sess, names)(ctx, []string{cfg.PatchPath})

	snap := sess.Snapshot(ctx)
	assert.Len(t, snap.Nodes, 3)
	assert.Len(t, snap.Links, 2)
	assert.EqualValues(t, 1, pub.graphs.Load(), "a rejected patch publishes nothing")
	assert.Contains(t, logs.String(), "Applying reloaded patch failed.")
	assert.Contains(t, names, "sum")
}

func TestMux_HealthAndMetrics(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, Config{PatchPath: writePatch(t, sumPatch)})
	a, _, _ := SetupAppTest(t, cfg, hcl.NewLoader())
	mux := a.newMux(nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "circles_graph_nodes")
}
