package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/circles/internal/config"
	"github.com/specialistvlad/circles/internal/ctxlog"
	"github.com/specialistvlad/circles/internal/graph"
	"github.com/specialistvlad/circles/internal/inmemorystore"
	"github.com/specialistvlad/circles/internal/inmemorytopology"
	"github.com/specialistvlad/circles/internal/nodeid"
	"github.com/specialistvlad/circles/internal/session"
	"github.com/specialistvlad/circles/internal/topologystore"
)

// Names maps patch node names to the handles they were created under.
type Names map[string]nodeid.Handle

// patchEdit returns an edit that replaces the whole graph with the patch.
// The patch is first applied to an empty scratch graph; only when that
// succeeds is every existing node deleted and the patch applied for real, so
// a patch that cannot be applied leaves the graph and names untouched.
func patchEdit(patch *config.Model, repair bool, names Names) session.EditFunc {
	return func(ctx context.Context, g graph.Editor) error {
		logger := ctxlog.FromContext(ctx)

		scratch := graph.New(inmemorytopology.New(nil), inmemorystore.New())
		quiet := ctxlog.WithLogger(ctx, slog.New(slog.DiscardHandler))
		if err := applyPatch(quiet, scratch, patch, false, Names{}); err != nil {
			return fmt.Errorf("patch rejected: %w", err)
		}

		if snap := g.Snapshot(ctx); len(snap.Nodes) > 0 {
			hs := make([]nodeid.Handle, 0, len(snap.Nodes))
			for _, n := range snap.Nodes {
				hs = append(hs, n.Handle)
			}
			cascade, err := g.DeleteNodes(ctx, hs...)
			if err != nil {
				return fmt.Errorf("failed to clear graph: %w", err)
			}
			logger.Debug("Cleared graph before applying patch.", "nodes", len(cascade.Nodes), "links", len(cascade.Links))
		}
		clear(names)

		if err := applyPatch(ctx, g, patch, repair, names); err != nil {
			return err
		}
		logger.Info("Patch applied.", "nodes", len(patch.Nodes), "links", len(patch.Links))
		return nil
	}
}

// applyPatch creates the patch's nodes and links in g, recording each node
// handle in names.
func applyPatch(ctx context.Context, g graph.Editor, patch *config.Model, repair bool, names Names) error {
	for _, n := range patch.Nodes {
		h, err := g.CreateNode(ctx, n.Operation, n.Scalar, n.Array)
		if err != nil {
			return fmt.Errorf("node %q: %w", n.Name, err)
		}
		names[n.Name] = h
		if n.Rank > 0 {
			if err := g.SetRank(ctx, h, n.Rank); err != nil {
				return fmt.Errorf("node %q: %w", n.Name, err)
			}
		}
	}

	for _, l := range patch.Links {
		id, err := g.Connect(ctx, names[l.From], l.FromSlot, names[l.To], l.ToSlot)
		if err != nil {
			return fmt.Errorf("link %q -> %q: %w", l.From, l.To, err)
		}
		if l.Types != nil {
			if err := g.Retype(ctx, id, topologystore.Types{Source: l.Types.Source, Sink: l.Types.Sink}); err != nil {
				return fmt.Errorf("link %q -> %q: %w", l.From, l.To, err)
			}
		}
		if !l.Open {
			if err := g.SetOpen(ctx, id, false); err != nil {
				return fmt.Errorf("link %q -> %q: %w", l.From, l.To, err)
			}
		}
	}

	if repair {
		lifted := g.Repair(ctx)
		ctxlog.FromContext(ctx).Debug("Rank repair pass finished.", "lifted", lifted)
	}
	return nil
}
