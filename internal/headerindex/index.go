// Package headerindex scans an engine install's public headers in the
// background and answers "which methods does class X declare" from the
// result.
//
// The scan runs once per Index. Until it completes, lookups see whatever
// was loaded from the scan cache (or nothing); afterwards the table is
// replaced in one step and never changes again.
package headerindex

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HendryAvila/unreal-lsp/internal/engine"
	"github.com/HendryAvila/unreal-lsp/internal/scancache"
	"github.com/HendryAvila/unreal-lsp/internal/walk"
)

// HeaderExt is the only file extension scanned.
const HeaderExt = ".h"

// reasonMissingRoot tags include roots that do not exist in the install.
const reasonMissingRoot = "missing-root"

// Cache is the subset of scancache.Store the index uses for warm starts.
type Cache interface {
	LatestSnapshot(installPath, key string) (*scancache.Snapshot, error)
	SaveSnapshot(snap scancache.Snapshot) (string, error)
}

// Config configures an Index.
type Config struct {
	Version engine.Version
	// IncludeRoots are relative to Version.InstallPath.
	IncludeRoots []string
	// VersionKey scopes cached snapshots. Usually the knowledge key.
	VersionKey string
	Workers    int
	Cache      Cache
	Logger     *zap.Logger
}

// Stats summarizes the last scan.
type Stats struct {
	Files   int
	Classes int
	Skipped int
	Errored int
	// Problems holds every Errored outcome and every skipped include root.
	Problems []walk.Outcome
	// Warm is true when the table was seeded from the cache.
	Warm     bool
	Duration time.Duration
}

// Index is the header-derived class → methods table.
type Index struct {
	cfg Config
	log *zap.Logger

	mu      sync.RWMutex
	classes map[string][]string
	stats   Stats

	once sync.Once
	done chan struct{}
}

// New creates an idle index. Call Start to begin scanning.
func New(cfg Config) *Index {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Index{
		cfg:     cfg,
		log:     log.Named("headerindex"),
		classes: make(map[string][]string),
		done:    make(chan struct{}),
	}
}

// Start launches the background scan. Calls after the first are no-ops.
// Cancelling ctx abandons the scan; Done is still closed.
func (ix *Index) Start(ctx context.Context) {
	ix.once.Do(func() {
		if ix.cfg.Version.InstallPath == "" {
			ix.log.Debug("no install path, skipping header scan")
			close(ix.done)
			return
		}
		go func() {
			defer close(ix.done)
			ix.warmStart()
			if _, err := ix.Scan(ctx); err != nil {
				ix.log.Warn("header scan abandoned", zap.Error(err))
			}
		}()
	})
}

// Done is closed when the scan started by Start has finished.
func (ix *Index) Done() <-chan struct{} { return ix.done }

// Wait blocks until the scan finishes or ctx is done.
func (ix *Index) Wait(ctx context.Context) error {
	select {
	case <-ix.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready reports whether the scan has finished.
func (ix *Index) Ready() bool {
	select {
	case <-ix.done:
		return true
	default:
		return false
	}
}

// ClassMethods returns a copy of the methods recorded for class.
func (ix *Index) ClassMethods(class string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]string(nil), ix.classes[class]...)
}

// Classes returns the indexed class names, sorted.
func (ix *Index) Classes() []string {
	ix.mu.RLock()
	names := make([]string, 0, len(ix.classes))
	for name := range ix.classes {
		names = append(names, name)
	}
	ix.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Stats returns the statistics of the last completed scan.
func (ix *Index) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	s := ix.stats
	s.Problems = append([]walk.Outcome(nil), ix.stats.Problems...)
	return s
}

type rootResult struct {
	classes  map[string][]string
	files    int
	skipped  int
	problems []walk.Outcome
}

// Scan walks every include root and replaces the table with the result.
// Roots are scanned concurrently but merged in configuration order, so a
// class found under two roots keeps the later root's methods.
func (ix *Index) Scan(ctx context.Context) (Stats, error) {
	start := time.Now()
	install := ix.cfg.Version.InstallPath
	results := make([]rootResult, len(ix.cfg.IncludeRoots))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.cfg.Workers)
	for i, rel := range ix.cfg.IncludeRoots {
		dir := filepath.Join(install, rel)
		g.Go(func() error {
			res, err := scanRoot(gctx, dir)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	merged := make(map[string][]string)
	stats := Stats{Warm: ix.Stats().Warm}
	for _, res := range results {
		for class, methods := range res.classes {
			merged[class] = methods
		}
		stats.Files += res.files
		stats.Skipped += res.skipped
		stats.Problems = append(stats.Problems, res.problems...)
	}
	for _, p := range stats.Problems {
		if p.Kind == walk.Errored {
			stats.Errored++
		}
	}
	stats.Classes = len(merged)
	stats.Duration = time.Since(start)

	ix.mu.Lock()
	ix.classes = merged
	ix.stats = stats
	ix.mu.Unlock()

	ix.log.Info("header scan complete",
		zap.String("install", install),
		zap.Int("files", stats.Files),
		zap.Int("classes", stats.Classes),
		zap.Int("errored", stats.Errored),
		zap.Duration("took", stats.Duration),
	)
	ix.saveSnapshot(start, stats, merged)
	return stats, nil
}

func scanRoot(ctx context.Context, dir string) (rootResult, error) {
	res := rootResult{classes: make(map[string][]string)}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		res.skipped++
		res.problems = append(res.problems, walk.Outcome{Path: dir, Kind: walk.Skipped, Reason: reasonMissingRoot})
		return res, nil
	}

	walk.Files(dir, walk.HasExt(HeaderExt), func(o walk.Outcome) bool {
		if ctx.Err() != nil {
			return false
		}
		switch o.Kind {
		case walk.Skipped:
			res.skipped++
			return true
		case walk.Errored:
			res.problems = append(res.problems, o)
			return true
		}
		data, err := os.ReadFile(o.Path)
		if err != nil {
			res.problems = append(res.problems, walk.Outcome{Path: o.Path, Kind: walk.Errored, Err: err})
			return true
		}
		res.files++
		for class, methods := range ExtractSymbols(string(data)) {
			res.classes[class] = methods
		}
		return true
	})
	return res, ctx.Err()
}

func (ix *Index) warmStart() {
	if ix.cfg.Cache == nil {
		return
	}
	snap, err := ix.cfg.Cache.LatestSnapshot(ix.cfg.Version.InstallPath, ix.cfg.VersionKey)
	if err != nil {
		ix.log.Warn("scan cache read failed", zap.Error(err))
		return
	}
	if snap == nil {
		return
	}
	ix.mu.Lock()
	ix.classes = snap.Classes
	ix.stats = Stats{Files: snap.Files, Classes: len(snap.Classes), Warm: true}
	ix.mu.Unlock()
	ix.log.Debug("seeded from scan cache",
		zap.String("scan_id", snap.ID),
		zap.Int("classes", len(snap.Classes)),
	)
}

func (ix *Index) saveSnapshot(start time.Time, stats Stats, classes map[string][]string) {
	if ix.cfg.Cache == nil {
		return
	}
	id, err := ix.cfg.Cache.SaveSnapshot(scancache.Snapshot{
		InstallPath: ix.cfg.Version.InstallPath,
		VersionKey:  ix.cfg.VersionKey,
		StartedAt:   start,
		FinishedAt:  start.Add(stats.Duration),
		Files:       stats.Files,
		Classes:     classes,
	})
	if err != nil {
		ix.log.Warn("scan cache write failed", zap.Error(err))
		return
	}
	ix.log.Debug("scan cached", zap.String("scan_id", id))
}
