// Package localsession provides a concrete implementation of the session.Session
// and session.SessionFactory interfaces for a graph held in this process.
package localsession

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/circles/internal/ctxlog"
	"github.com/specialistvlad/circles/internal/fragment"
	"github.com/specialistvlad/circles/internal/graph"
	"github.com/specialistvlad/circles/internal/inmemorystore"
	"github.com/specialistvlad/circles/internal/inmemorytopology"
	"github.com/specialistvlad/circles/internal/metrics"
	"github.com/specialistvlad/circles/internal/nodeid"
	"github.com/specialistvlad/circles/internal/pipeline"
	"github.com/specialistvlad/circles/internal/registry"
	"github.com/specialistvlad/circles/internal/session"
)

// SessionFactory implements session.SessionFactory for in-process graphs.
type SessionFactory struct {
	// SampleRate is passed to every fragment on construction.
	SampleRate float32
}

// NewSession creates and wires a new local session.
func (f *SessionFactory) NewSession(ctx context.Context, reg *registry.Registry, pub session.Publisher) (session.Session, error) {
	if reg == nil {
		return nil, fmt.Errorf("session needs an operation registry")
	}
	if pub == nil {
		pub = session.Discard{}
	}

	id := uuid.New()
	g := graph.New(inmemorytopology.New(nil), inmemorystore.New())
	p := pipeline.New(g, reg, id, fragment.Config{SampleRate: f.SampleRate})

	ctxlog.FromContext(ctx).Debug("Session created.", "session", id, "sample_rate", f.SampleRate)
	return &Session{
		id:        id,
		graph:     g,
		pipeline:  p,
		publisher: pub,
	}, nil
}

// Session implements session.Session. Its mutex is the edit-cycle lock.
type Session struct {
	mu        sync.Mutex
	id        uuid.UUID
	graph     *graph.Manager
	pipeline  *pipeline.Pipeline
	publisher session.Publisher
	closed    bool
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Cycle runs one edit cycle.
func (s *Session) Cycle(ctx context.Context, edit session.EditFunc) (*pipeline.Composed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.pipeline.Last(), fmt.Errorf("session %s is closed", s.id)
	}
	ctx = ctxlog.With(ctx, "session", s.id.String())

	var editErr error
	if edit != nil {
		editErr = edit(ctx, s.graph)
	}

	composed, err := s.rebuildAndPublish(ctx)
	if editErr != nil {
		metrics.Cycles.WithLabelValues("error").Inc()
		return composed, editErr
	}
	if err != nil {
		metrics.Cycles.WithLabelValues("error").Inc()
		return composed, err
	}
	metrics.Cycles.WithLabelValues("ok").Inc()
	return composed, nil
}

// SetScalar edits a node's scalar through the parameter path.
func (s *Session) SetScalar(ctx context.Context, h nodeid.Handle, v float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pushed, err := s.graph.SetScalar(ctx, h, v)
	if err != nil {
		return err
	}
	if !pushed {
		_, err = s.rebuildAndPublish(ctx)
		return err
	}
	return s.publisher.PublishParams(ctx, session.ParamUpdate{Session: s.id, Handle: h, Scalar: &v})
}

// SetArray edits a node's array through the parameter path.
func (s *Session) SetArray(ctx context.Context, h nodeid.Handle, arr []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pushed, err := s.graph.SetArray(ctx, h, arr)
	if err != nil {
		return err
	}
	if !pushed {
		_, err = s.rebuildAndPublish(ctx)
		return err
	}
	return s.publisher.PublishParams(ctx, session.ParamUpdate{Session: s.id, Handle: h, Array: slices.Clone(arr)})
}

// Composed returns the last composed graph.
func (s *Session) Composed() *pipeline.Composed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipeline.Last()
}

// Snapshot returns a read-only copy of the graph.
func (s *Session) Snapshot(ctx context.Context) *graph.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Snapshot(ctx)
}

// Close marks the session closed. Later cycles are rejected.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	ctxlog.FromContext(ctx).Debug("Session closed.", "session", s.id)
	return nil
}

func (s *Session) rebuildAndPublish(ctx context.Context) (*pipeline.Composed, error) {
	composed, changed := s.pipeline.Rebuild(ctx)
	if !changed {
		return composed, nil
	}
	if err := s.publisher.PublishGraph(ctx, composed); err != nil {
		return composed, fmt.Errorf("failed to publish revision %d: %w", composed.Revision, err)
	}
	return composed, nil
}
