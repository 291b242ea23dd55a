package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/HendryAvila/unreal-lsp/internal/logging"
	"github.com/HendryAvila/unreal-lsp/internal/walk"
)

const (
	// ProjectExt is the project manifest extension.
	ProjectExt = ".uproject"
	// BuildVersionFile is the engine build manifest, relative to the install root.
	BuildVersionFile = "Engine/Build/Build.version"
	// engineMarker must exist inside a directory for it to count as an install.
	engineMarker = "Engine"
)

// EnvVars are probed in order. UE_ROOT is the primary variable; the rest
// are aliases used by older setups.
var EnvVars = []string{"UE_ROOT", "UE4_ROOT", "UE5_ROOT", "UNREAL_ENGINE_ROOT"}

// DefaultRoots returns the conventional macOS install locations plus the
// per-user variants under home. An empty home skips the per-user roots.
func DefaultRoots(home string) []string {
	roots := []string{
		"/Users/Shared/Epic Games",
		"/Applications/Epic Games",
		"/Applications/UnrealEngine",
	}
	for minor := 0; minor <= 5; minor++ {
		roots = append(roots, fmt.Sprintf("/Applications/UE_5.%d", minor))
	}
	if home == "" {
		return roots
	}
	for _, rel := range []string{
		"Library/Epic Games",
		"Epic Games",
		"UnrealEngine",
		"Applications/Epic Games",
		"Documents/Epic Games",
		"Documents/UnrealEngine",
	} {
		roots = append(roots, filepath.Join(home, rel))
	}
	for minor := 0; minor <= 5; minor++ {
		roots = append(roots, filepath.Join(home, "UnrealEngine", fmt.Sprintf("UE_5.%d", minor)))
	}
	return roots
}

// Config configures a Locator.
type Config struct {
	// Roots replaces DefaultRoots when non-nil.
	Roots []string
	// ExtraRoots are probed after Roots.
	ExtraRoots []string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	Logger *zap.Logger
}

// Locator finds engine installs. It is stateless between calls: every
// DiscoverAll probes the filesystem again.
type Locator struct {
	roots  []string
	getenv func(string) string
	log    *zap.Logger
}

// NewLocator creates a Locator.
func NewLocator(cfg Config) *Locator {
	roots := cfg.Roots
	if roots == nil {
		home, _ := os.UserHomeDir()
		roots = DefaultRoots(home)
	}
	roots = append(append([]string(nil), roots...), cfg.ExtraRoots...)

	getenv := cfg.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	return &Locator{roots: roots, getenv: getenv, log: logging.OrNop(cfg.Logger)}
}

// Roots returns the candidate roots in probe order.
func (l *Locator) Roots() []string {
	return append([]string(nil), l.roots...)
}

// DiscoverAll returns every install found, sorted strictly descending by
// version. When two installs share a version the one probed first wins:
// roots in order, then environment variables in EnvVars order.
func (l *Locator) DiscoverAll() []Version {
	var found []Version

	for _, root := range l.roots {
		if !isDir(root) {
			continue
		}
		if v := l.DetectInstall(root); v.Valid() {
			found = append(found, v)
			continue
		}
		for _, o := range walk.Dirs(root) {
			if o.Kind != walk.Found {
				if o.Kind == walk.Errored {
					l.log.Debug("engine root unreadable", zap.String("root", root), zap.Error(o.Err))
				}
				continue
			}
			if v := l.DetectInstall(o.Path); v.Valid() {
				found = append(found, v)
			}
		}
	}

	for _, name := range EnvVars {
		path := l.getenv(name)
		if path == "" {
			continue
		}
		if v := l.DetectInstall(path); v.Valid() {
			found = append(found, v)
		}
	}

	return sortAndDedupe(found)
}

func sortAndDedupe(vs []Version) []Version {
	sort.SliceStable(vs, func(i, j int) bool { return vs[i].Compare(vs[j]) > 0 })
	out := vs[:0]
	for _, v := range vs {
		if len(out) > 0 && out[len(out)-1].Equal(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

type buildVersion struct {
	MajorVersion int `json:"MajorVersion"`
	MinorVersion int `json:"MinorVersion"`
	PatchVersion int `json:"PatchVersion"`
}

// DetectInstall inspects one directory. It returns an invalid Version when
// the directory has no Engine subfolder or no version can be determined.
// The build manifest wins over a version embedded in the path.
func (l *Locator) DetectInstall(path string) Version {
	if !isDir(filepath.Join(path, engineMarker)) {
		return Version{InstallPath: path}
	}

	manifest := filepath.Join(path, filepath.FromSlash(BuildVersionFile))
	if data, err := os.ReadFile(manifest); err == nil {
		var bv buildVersion
		if err = json.Unmarshal(data, &bv); err == nil {
			return NewVersion(bv.MajorVersion, bv.MinorVersion, bv.PatchVersion, path)
		}
		l.log.Debug("malformed build manifest", zap.String("path", manifest), zap.Error(err))
	}

	return versionFromPath(path)
}

type projectManifest struct {
	EngineAssociation string `json:"EngineAssociation"`
}

// ResolveForProject returns the engine version associated with the project
// in dir. It never fails: when the association is missing or unparsable
// the highest discovered install is used, then DefaultVersion.
func (l *Locator) ResolveForProject(dir string) Version {
	discovered := l.DiscoverAll()

	if assoc, ok := l.projectAssociation(dir); ok {
		if want := ParseAssociation(assoc); want.Valid() {
			for _, v := range discovered {
				if v.Major == want.Major && v.Minor == want.Minor {
					want.InstallPath = v.InstallPath
					return want
				}
			}
			l.log.Debug("no install matches project association",
				zap.String("association", assoc))
		}
	}

	if len(discovered) > 0 {
		return discovered[0]
	}
	return DefaultVersion
}

// projectAssociation reads the EngineAssociation field from the first
// project manifest directly inside dir that has one.
func (l *Locator) projectAssociation(dir string) (string, bool) {
	if dir == "" {
		return "", false
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		l.log.Debug("project dir unreadable", zap.String("dir", dir), zap.Error(err))
		return "", false
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ProjectExt {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var pm projectManifest
		if err := json.Unmarshal(data, &pm); err != nil {
			l.log.Debug("malformed project manifest", zap.String("path", path), zap.Error(err))
			continue
		}
		if pm.EngineAssociation != "" {
			return pm.EngineAssociation, true
		}
	}
	return "", false
}

// Ready reports whether the install has built binaries.
func Ready(v Version) bool {
	return v.InstallPath != "" && isDir(filepath.Join(v.InstallPath, "Engine", "Binaries"))
}

// skipProjectDirs are never descended into when searching for projects.
var skipProjectDirs = map[string]bool{
	"Binaries":         true,
	"Intermediate":     true,
	"DerivedDataCache": true,
	"node_modules":     true,
}

// FindProjects returns directories under root (inclusive) that contain a
// project manifest, searching at most maxDepth levels below root. Hidden
// directories and build output folders are skipped.
func FindProjects(root string, maxDepth int) []string {
	var out []string
	var visit func(dir string, depth int)
	visit = func(dir string, depth int) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return
		}
		added := false
		for _, e := range entries {
			name := e.Name()
			if !e.IsDir() {
				if !added && filepath.Ext(name) == ProjectExt {
					out = append(out, dir)
					added = true
				}
				continue
			}
			if depth >= maxDepth || strings.HasPrefix(name, ".") || skipProjectDirs[name] {
				continue
			}
			visit(filepath.Join(dir, name), depth+1)
		}
	}
	visit(root, 0)
	sort.Strings(out)
	return out
}

// ProjectName returns the manifest base name for a project directory, or
// the directory name when no manifest is present.
func ProjectName(dir string) string {
	entries, err := os.ReadDir(dir)
	if err == nil {
		for _, e := range entries {
			if !e.IsDir() && filepath.Ext(e.Name()) == ProjectExt {
				return strings.TrimSuffix(e.Name(), ProjectExt)
			}
		}
	}
	return filepath.Base(dir)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
