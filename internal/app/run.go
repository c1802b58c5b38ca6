package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/specialistvlad/circles/internal/bridge"
	"github.com/specialistvlad/circles/internal/ctxlog"
	"github.com/specialistvlad/circles/internal/session"
	"github.com/specialistvlad/circles/internal/watch"
	"golang.org/x/sync/errgroup"
)

// Run executes the main application logic based on the app's configuration.
// With no port it applies the patch once and writes a report; otherwise it
// serves the session until ctx ends.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.Port == 0 {
		return a.runOnce(ctx)
	}
	return a.runServer(ctx)
}

func (a *App) runOnce(ctx context.Context) error {
	sess, err := a.sessions.NewSession(ctx, a.registry, session.Discard{})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer sess.Close(ctx)

	names := Names{}
	composed, err := sess.Cycle(ctx, patchEdit(a.patch, a.config.Repair, names))
	if err != nil {
		return fmt.Errorf("failed to apply patch: %w", err)
	}
	a.logger.Info("Patch composed.", "entries", len(composed.Entries), "revision", composed.Revision)

	report := &Report{Names: names, Composed: composed, Snapshot: sess.Snapshot(ctx)}
	if err := writeReport(a.outW, a.config.Dump, report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) runServer(ctx context.Context) error {
	br, err := bridge.NewServer(ctx, a.config.CacheSize)
	if err != nil {
		return err
	}
	sess, err := a.sessions.NewSession(ctx, a.registry, br)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer sess.Close(ctx)
	br.Attach(sess)

	names := Names{}
	if _, err := sess.Cycle(ctx, patchEdit(a.patch, a.config.Repair, names)); err != nil {
		return fmt.Errorf("failed to apply patch: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           a.newMux(br),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var watcher *watch.Watcher
	if a.config.Watch {
		watcher, err = watch.New(a.loader.Extension(), watch.DefaultDebounce, a.reloader(sess, names), a.config.PatchPath)
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.serveHTTP(gctx, srv) })
	if watcher != nil {
		g.Go(func() error { return watcher.Run(gctx) })
	}

	if a.config.Monitor != "" {
		g.Go(func() error {
			err := bridge.Monitor(gctx, a.config.Monitor, func(event string, payload any) {
				a.logger.Info("Monitor event.", "event", event, "payload", payload)
			})
			if err != nil {
				a.logger.Warn("Monitor stopped.", "error", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// reloader returns a watch handler that reloads the patch and replaces the
// session's graph with it. A patch that fails to load or to apply leaves the
// graph as is and publishes nothing.
func (a *App) reloader(sess session.Session, names Names) watch.Handler {
	return func(ctx context.Context, changed []string) {
		logger := ctxlog.FromContext(ctx)
		logger.Info("Reloading patch.", "changed", changed)

		patch, err := a.loader.Load(ctx, a.config.PatchPath)
		if err != nil {
			logger.Error("Patch reload failed, keeping current graph.", "error", err)
			return
		}
		if _, err := sess.Cycle(ctx, patchEdit(patch, a.config.Repair, names)); err != nil {
			logger.Error("Applying reloaded patch failed.", "error", err)
		}
	}
}
