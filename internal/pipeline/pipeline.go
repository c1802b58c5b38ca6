package pipeline

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/circles/internal/ctxlog"
	"github.com/specialistvlad/circles/internal/fragment"
	"github.com/specialistvlad/circles/internal/graph"
	"github.com/specialistvlad/circles/internal/metrics"
	"github.com/specialistvlad/circles/internal/node"
	"github.com/specialistvlad/circles/internal/nodeid"
	"github.com/specialistvlad/circles/internal/registry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("circles.pipeline")

// Pipeline holds what carries over between rebuilds: the bindings per node,
// the last sequence and the last composed graph.
type Pipeline struct {
	graph    *graph.Manager
	registry *registry.Registry
	session  uuid.UUID
	config   fragment.Config

	bindings map[nodeid.Handle][]Binding
	sequence []nodeid.Handle
	revision uint64
	last     *Composed
}

// New creates a pipeline for one session.
func New(g *graph.Manager, r *registry.Registry, session uuid.UUID, cfg fragment.Config) *Pipeline {
	return &Pipeline{
		graph:    g,
		registry: r,
		session:  session,
		config:   cfg,
		bindings: make(map[nodeid.Handle][]Binding),
	}
}

// Last returns the most recent composed graph, or nil before the first rebuild.
func (p *Pipeline) Last() *Composed {
	return p.last
}

// Rebuild processes pending changes and returns the current composed graph.
// The boolean reports whether it differs from the previous one.
func (p *Pipeline) Rebuild(ctx context.Context) (*Composed, bool) {
	ctx, span := tracer.Start(ctx, "pipeline.Rebuild", trace.WithAttributes(
		attribute.String("session", p.session.String()),
	))
	defer span.End()
	start := time.Now()
	defer func() { metrics.RebuildDuration.Observe(time.Since(start).Seconds()) }()

	rebuilt := p.rebuildFragments(ctx)
	relinked := p.rebindLinks(ctx)
	resequenced := p.resequence(ctx)

	span.SetAttributes(
		attribute.Int("rebuilt", rebuilt),
		attribute.Int("relinked", relinked),
		attribute.Bool("resequenced", resequenced),
	)

	if p.last != nil && rebuilt == 0 && relinked == 0 && !resequenced {
		return p.last, false
	}

	p.revision++
	p.last = p.compose(ctx)
	span.SetAttributes(attribute.Int64("revision", int64(p.revision)))

	ctxlog.FromContext(ctx).Debug("Graph composed.",
		"revision", p.revision,
		"nodes", len(p.last.Entries),
		"rebuilt", rebuilt,
		"relinked", relinked,
		"resequenced", resequenced,
	)
	return p.last, true
}

// rebuildFragments builds every dirty node's fragment and clears its flag.
func (p *Pipeline) rebuildFragments(ctx context.Context) int {
	logger := ctxlog.FromContext(ctx)
	dirty := p.graph.Nodes().Dirty(ctx)
	for _, n := range dirty {
		built, err := p.registry.Build(n.Operation, n.Params())
		switch {
		case errors.Is(err, fragment.ErrUnknownOperation):
			logger.Warn("Unknown operation, using zero fragment.", "node", n.Handle, "operation", n.Operation)
			metrics.FragmentsBuilt.WithLabelValues("unknown_operation").Inc()
		case err != nil:
			logger.Error("Fragment construction failed.", "node", n.Handle, "error", err)
		default:
			metrics.FragmentsBuilt.WithLabelValues("ok").Inc()
		}
		built.Fragment.Init(p.config)
		n.Install(built)
	}
	return len(dirty)
}

// rebindLinks refreshes descriptors and bindings for nodes whose links changed.
func (p *Pipeline) rebindLinks(ctx context.Context) int {
	nodes := p.graph.Nodes()
	links := p.graph.Links()

	changed := links.TakeDirty(ctx)
	for _, h := range changed {
		n, ok := nodes.Get(ctx, h)
		if !ok {
			delete(p.bindings, h)
			continue
		}

		var bound []Binding
		for _, inlet := range links.Inlets(ctx, h) {
			link, ok := links.Link(ctx, inlet.Link)
			if !ok {
				continue
			}
			if inlet.Retyped {
				p.applyTypes(ctx, n, link.Source, inlet.Link, inlet.Types.Source, inlet.Types.Sink)
				links.ClearRetyped(ctx, inlet.Link)
			}
			bound = append(bound, Binding{
				Link:       link.ID,
				SinkSlot:   link.SinkSlot,
				Source:     link.Source,
				SourceSlot: link.SourceSlot,
				Types:      inlet.Types,
				Open:       inlet.Open,
			})
		}
		if bound == nil {
			delete(p.bindings, h)
		} else {
			p.bindings[h] = bound
		}
	}
	return len(changed)
}

func (p *Pipeline) applyTypes(ctx context.Context, sink *node.Node, source nodeid.Handle, link nodeid.LinkID, src, dst int) {
	sink.SetTypes(link, src, dst)
	if up, ok := p.graph.Nodes().Get(ctx, source); ok {
		up.SetTypes(link, src, dst)
	}
}

// resequence re-derives the rank-ascending order when the ledger says the
// order or the membership changed.
func (p *Pipeline) resequence(ctx context.Context) bool {
	if !p.graph.Ledger().Consume() && p.sequence != nil {
		return false
	}

	all := p.graph.Nodes().All(ctx)
	slices.SortStableFunc(all, func(a, b *node.Node) int {
		return cmp.Compare(a.Rank, b.Rank)
	})

	p.sequence = make([]nodeid.Handle, len(all))
	live := make(map[nodeid.Handle]struct{}, len(all))
	for i, n := range all {
		p.sequence[i] = n.Handle
		live[n.Handle] = struct{}{}
	}
	for h := range p.bindings {
		if _, ok := live[h]; !ok {
			delete(p.bindings, h)
		}
	}
	metrics.Resequences.Inc()
	return true
}

func (p *Pipeline) compose(ctx context.Context) *Composed {
	c := &Composed{
		Session:  p.session,
		Revision: p.revision,
		Entries:  make([]Entry, 0, len(p.sequence)),
	}
	total := 0
	for _, h := range p.sequence {
		n, ok := p.graph.Nodes().Get(ctx, h)
		if !ok {
			continue
		}
		// Rebuild clears every dirty flag before composing. A node still
		// dirty here has a fragment that does not match its operation, so it
		// is left out rather than exposed half-built.
		if n.Dirty {
			ctxlog.FromContext(ctx).Error("Dirty node reached compose, leaving it out.", "node", n.Handle)
			continue
		}
		bindings := slices.Clone(p.bindings[h])
		total += len(bindings)
		c.Entries = append(c.Entries, Entry{
			Handle:    n.Handle,
			Rank:      n.Rank,
			Operation: n.Operation,
			Inputs:    n.Fragment.Inputs(),
			Outputs:   n.Fragment.Outputs(),
			Bindings:  bindings,
			Fragment:  n.Fragment,
		})
	}
	metrics.GraphNodes.Set(float64(len(c.Entries)))
	metrics.GraphBindings.Set(float64(total))
	return c
}
