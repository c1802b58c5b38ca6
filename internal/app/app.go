package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/circles/internal/config"
	"github.com/specialistvlad/circles/internal/ctxlog"
	"github.com/specialistvlad/circles/internal/localsession"
	"github.com/specialistvlad/circles/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	loader   config.Loader
	registry *registry.Registry
	patch    *config.Model
	sessions *localsession.SessionFactory
}

// NewApp is the constructor for the main application. Logs go to logW and
// dumps to outW. The patch is loaded eagerly; a patch that fails to load or
// a registry that fails validation is a fatal startup error and panics.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.New(modules...)
	logger.Debug("All operation modules registered.", "count", len(modules), "tags", reg.Tags())

	if err := reg.ValidateRegistry(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	patch, err := loader.Load(ctx, cfg.PatchPath)
	if err != nil {
		panic(fmt.Errorf("failed to load patch: %w", err))
	}
	logger.Debug("Patch loaded.", "nodes", len(patch.Nodes), "links", len(patch.Links))

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		loader:   loader,
		registry: reg,
		patch:    patch,
		sessions: &localsession.SessionFactory{SampleRate: cfg.SampleRate},
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
