package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/specialistvlad/circles/internal/graph"
	"github.com/specialistvlad/circles/internal/nodeid"
	"github.com/specialistvlad/circles/internal/pipeline"
	"github.com/specialistvlad/circles/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	scalars map[nodeid.Handle]float32
	arrays  map[nodeid.Handle][]float32
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		scalars: make(map[nodeid.Handle]float32),
		arrays:  make(map[nodeid.Handle][]float32),
	}
}

func (f *fakeSession) ID() uuid.UUID { return uuid.Nil }
func (f *fakeSession) Cycle(context.Context, session.EditFunc) (*pipeline.Composed, error) {
	return nil, nil
}
func (f *fakeSession) SetScalar(_ context.Context, h nodeid.Handle, v float32) error {
	if h == 404 {
		return graph.ErrInvalidEndpoint
	}
	f.scalars[h] = v
	return nil
}
func (f *fakeSession) SetArray(_ context.Context, h nodeid.Handle, arr []float32) error {
	f.arrays[h] = arr
	return nil
}
func (f *fakeSession) Composed() *pipeline.Composed { return nil }
func (f *fakeSession) Snapshot(context.Context) *graph.Snapshot {
	return &graph.Snapshot{Nodes: []graph.NodeView{{Handle: 1, Operation: "Var"}}}
}
func (f *fakeSession) Close(context.Context) error { return nil }

func newTestServer(t *testing.T, cacheSize int) *Server {
	t.Helper()
	s, err := NewServer(context.Background(), cacheSize)
	require.NoError(t, err)
	return s
}

func TestGraph_LatestAndCached(t *testing.T) {
	s := newTestServer(t, 2)
	ctx := context.Background()

	_, err := s.graph(nil)
	assert.Error(t, err, "nothing published yet")

	for rev := uint64(1); rev <= 3; rev++ {
		require.NoError(t, s.PublishGraph(ctx, &pipeline.Composed{Revision: rev}))
	}

	latest, err := s.graph(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), latest.(*pipeline.Composed).Revision)

	got, err := s.graph([]any{map[string]any{"revision": 2}})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.(*pipeline.Composed).Revision)

	_, err = s.graph([]any{map[string]any{"revision": 1}})
	assert.Error(t, err, "revision 1 was evicted")
}

func TestSetParam(t *testing.T) {
	s := newTestServer(t, 0)
	sess := newFakeSession()

	err := s.setParam([]any{map[string]any{"handle": "node[1]", "scalar": 2.5}})
	assert.True(t, errors.Is(err, ErrNoSession))

	s.Attach(sess)

	require.NoError(t, s.setParam([]any{map[string]any{"handle": "node[1]", "scalar": 2.5}}))
	assert.Equal(t, float32(2.5), sess.scalars[1])

	require.NoError(t, s.setParam([]any{map[string]any{"handle": "node[2]", "array": []any{1, 2}}}))
	assert.Equal(t, []float32{1, 2}, sess.arrays[2])

	err = s.setParam([]any{map[string]any{"handle": "node[404]", "scalar": 1}})
	assert.True(t, errors.Is(err, graph.ErrInvalidEndpoint))
}

func TestSetParam_Malformed(t *testing.T) {
	s := newTestServer(t, 0)
	s.Attach(newFakeSession())

	tests := []struct {
		name    string
		payload any
	}{
		{"no handle", map[string]any{"scalar": 1}},
		{"bad handle", map[string]any{"handle": "link[1]", "scalar": 1}},
		{"both values", map[string]any{"handle": "node[1]", "scalar": 1, "array": []any{1}}},
		{"neither value", map[string]any{"handle": "node[1]"}},
		{"wrong type", map[string]any{"handle": "node[1]", "scalar": "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, s.setParam([]any{tt.payload}))
		})
	}
}

func TestSnapshot(t *testing.T) {
	s := newTestServer(t, 0)
	_, err := s.snapshot(nil)
	assert.True(t, errors.Is(err, ErrNoSession))

	s.Attach(newFakeSession())
	out, err := s.snapshot(nil)
	require.NoError(t, err)
	assert.Len(t, out.(*graph.Snapshot).Nodes, 1)
}

func TestToWire(t *testing.T) {
	scalar := float32(0.5)
	wire, err := toWire(session.ParamUpdate{Handle: 3, Scalar: &scalar})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"session": "00000000-0000-0000-0000-000000000000",
		"handle":  "node[3]",
		"scalar":  0.5,
	}, wire)

	wire, err = toWire(&pipeline.Composed{Revision: 7, Entries: []pipeline.Entry{{Handle: 1, Operation: "Var", Outputs: 1}}})
	require.NoError(t, err)
	m := wire.(map[string]any)
	assert.Equal(t, float64(7), m["revision"])
	entry := m["entries"].([]any)[0].(map[string]any)
	assert.Equal(t, "node[1]", entry["handle"])
	assert.NotContains(t, entry, "Fragment")
}

func TestErrorPayload(t *testing.T) {
	assert.Equal(t,
		map[string]any{"request": EventParamSet, "message": "boom"},
		errorPayload(EventParamSet, errors.New("boom")),
	)
}

func TestMonitor_BadURL(t *testing.T) {
	err := Monitor(context.Background(), "not a url", func(string, any) {})
	assert.Error(t, err)
}
