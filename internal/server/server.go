// Package server is the composition root: it turns a Config into the
// concrete engine locator, knowledge base, header index, completion
// resolver and action provider, and hands them to the protocol surfaces.
//
// No domain logic lives here, only wiring.
package server

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/HendryAvila/unreal-lsp/internal/actions"
	"github.com/HendryAvila/unreal-lsp/internal/completion"
	"github.com/HendryAvila/unreal-lsp/internal/config"
	"github.com/HendryAvila/unreal-lsp/internal/engine"
	"github.com/HendryAvila/unreal-lsp/internal/headerindex"
	"github.com/HendryAvila/unreal-lsp/internal/knowledge"
	"github.com/HendryAvila/unreal-lsp/internal/logging"
	"github.com/HendryAvila/unreal-lsp/internal/scancache"
	"github.com/HendryAvila/unreal-lsp/internal/session"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Options tune how components are built. Zero values use the real
// environment.
type Options struct {
	Logger *zap.Logger
	// Roots replaces the built-in engine search locations.
	Roots []string
	// Getenv replaces os.Getenv for engine discovery.
	Getenv func(string) string
}

// Components are the long-lived pieces shared by every surface.
type Components struct {
	Config    *config.Config
	Logger    *zap.Logger
	Locator   *engine.Locator
	Version   engine.Version
	Knowledge *knowledge.Base
	Index     *headerindex.Index
	Resolver  *completion.Resolver
	Actions   *actions.Provider
	// Cache is nil when caching is off or the database failed to open.
	Cache *scancache.Store
}

// New resolves the engine version for cfg.ProjectPath and builds every
// component for it.
//
// The returned cleanup closes the scan cache and must be called on
// shutdown. It is always non-nil and safe to call even if the cache
// failed to open.
func New(cfg *config.Config, opts Options) (*Components, func(), error) {
	if cfg == nil {
		return nil, noop, fmt.Errorf("server: nil config")
	}
	log := logging.OrNop(opts.Logger)

	loc := engine.NewLocator(engine.Config{
		Roots:      opts.Roots,
		ExtraRoots: cfg.ExtraEngineRoots,
		Getenv:     opts.Getenv,
		Logger:     log,
	})
	version := resolveVersion(loc, cfg)
	log.Info("engine resolved",
		zap.String("version", version.String()),
		zap.String("install", version.InstallPath),
		zap.String("project", cfg.ProjectPath),
	)

	kb := knowledge.Build()
	key := knowledge.KeyFor(version)

	c := &Components{
		Config:    cfg,
		Logger:    log,
		Locator:   loc,
		Version:   version,
		Knowledge: kb,
	}

	// The scan cache is optional: if it fails to open, indexing still
	// works, it just starts cold.
	cleanup := noop
	var cache headerindex.Cache
	if cfg.Index.Enabled && cfg.Index.Cache {
		store, err := scancache.New(scancache.DefaultConfig(cfg.DataDir))
		if err != nil {
			log.Warn("scan cache disabled", zap.Error(err))
		} else {
			c.Cache = store
			cache = store
			cleanup = func() {
				if err := store.Close(); err != nil {
					log.Warn("scan cache close", zap.Error(err))
				}
			}
		}
	}

	c.Index = headerindex.New(headerindex.Config{
		Version:      version,
		IncludeRoots: kb.IncludePaths(version),
		VersionKey:   string(key),
		Workers:      cfg.Index.Workers,
		Cache:        cache,
		Logger:       log,
	})
	c.Resolver = completion.NewResolver(version, kb, c.Index)
	c.Actions = actions.New(cfg.ProjectPath, version, log)

	return c, cleanup, nil
}

// noop is the cleanup returned when there is nothing to release.
func noop() {}

// resolveVersion picks the engine: an explicit EnginePath wins when it is
// a recognizable install; otherwise the project's association decides.
// An unrecognizable EnginePath still overrides the install path so
// headers are read from where the user pointed.
func resolveVersion(loc *engine.Locator, cfg *config.Config) engine.Version {
	if cfg.EnginePath == "" {
		return loc.ResolveForProject(cfg.ProjectPath)
	}
	if v := loc.DetectInstall(cfg.EnginePath); v.Valid() {
		return v
	}
	v := loc.ResolveForProject(cfg.ProjectPath)
	v.InstallPath = cfg.EnginePath
	return v
}

// StartIndex launches the background header scan when indexing is
// enabled. It returns immediately.
func (c *Components) StartIndex(ctx context.Context) {
	if !c.Config.Index.Enabled {
		c.Logger.Debug("header index disabled")
		return
	}
	c.Index.Start(ctx)
}

// NewSession builds a protocol session over in/out backed by c.
func (c *Components) NewSession(in io.Reader, out io.Writer) *session.Session {
	return session.New(in, out, session.Deps{
		Completer: c.Resolver,
		Actions:   c.Actions,
		Logger:    c.Logger,
		Version:   Version,
	}, session.WithStrictErrors(c.Config.Session.StrictErrors))
}

// ServeLSP starts the index and runs one session until the client exits
// or the input ends.
func (c *Components) ServeLSP(ctx context.Context, in io.Reader, out io.Writer) error {
	c.StartIndex(ctx)
	return c.NewSession(in, out).Run(ctx)
}
