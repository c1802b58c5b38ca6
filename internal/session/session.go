// Package session defines the core interfaces for running edit cycles
// against a graph and publishing the results to the synthesis engine.
//
// An edit cycle is the unit of consistency: structural commands, the rebuild
// pass and publication happen under one lock, so the engine never sees a
// composed graph from the middle of a cycle.
package session

import (
	"context"

	"github.com/google/uuid"
	"github.com/specialistvlad/circles/internal/graph"
	"github.com/specialistvlad/circles/internal/nodeid"
	"github.com/specialistvlad/circles/internal/pipeline"
	"github.com/specialistvlad/circles/internal/registry"
)

// ParamUpdate carries a parameter edit that reached a running fragment
// without a rebuild.
type ParamUpdate struct {
	Session uuid.UUID     `json:"session"`
	Handle  nodeid.Handle `json:"handle"`
	Scalar  *float32      `json:"scalar,omitempty"`
	Array   []float32     `json:"array,omitempty"`
}

// Publisher receives the results of edit cycles. It is the interface the
// synthesis engine, or a bridge to it, implements.
type Publisher interface {
	// PublishGraph is called once per cycle that changed the composed graph.
	PublishGraph(ctx context.Context, c *pipeline.Composed) error
	// PublishParams is called for each parameter edit pushed into live inputs.
	PublishParams(ctx context.Context, u ParamUpdate) error
}

// EditFunc applies structural commands inside a cycle.
type EditFunc func(ctx context.Context, g graph.Editor) error

// SessionFactory creates a Session.
type SessionFactory interface {
	NewSession(ctx context.Context, reg *registry.Registry, pub Publisher) (Session, error)
}

// Session owns one graph and serializes every edit made to it.
type Session interface {
	// ID identifies the session on every composed graph it publishes.
	ID() uuid.UUID

	// Cycle runs edit, then rebuilds and publishes if anything changed. The
	// rebuild runs even when edit fails, since commands that succeeded before
	// the failure are committed. The returned graph is always the current one.
	Cycle(ctx context.Context, edit EditFunc) (*pipeline.Composed, error)

	// SetScalar edits a node's scalar through the parameter path: it is
	// pushed into live inputs when possible and rebuilt otherwise.
	SetScalar(ctx context.Context, h nodeid.Handle, v float32) error

	// SetArray is SetScalar for the array parameter.
	SetArray(ctx context.Context, h nodeid.Handle, arr []float32) error

	// Composed returns the last composed graph, or nil before the first cycle.
	Composed() *pipeline.Composed

	// Snapshot returns a read-only copy of the graph for visualization.
	Snapshot(ctx context.Context) *graph.Snapshot

	// Close releases any resources held by the session.
	Close(ctx context.Context) error
}

// Discard is a Publisher that drops everything.
type Discard struct{}

func (Discard) PublishGraph(context.Context, *pipeline.Composed) error { return nil }
func (Discard) PublishParams(context.Context, ParamUpdate) error       { return nil }
