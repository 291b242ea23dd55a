// Package walk is a best-effort directory walker that reports a tagged
// outcome for every entry it considers instead of silently dropping the
// ones it cannot use. A failure on one entry never stops the walk.
package walk

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Kind tags an Outcome.
type Kind int

const (
	Found Kind = iota
	Skipped
	Errored
)

func (k Kind) String() string {
	switch k {
	case Found:
		return "found"
	case Skipped:
		return "skipped"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Skip reasons.
const (
	ReasonNoMatch = "no-match"
	ReasonSymlink = "symlink"
	ReasonNotDir  = "not-a-directory"
)

// Outcome describes what happened to one filesystem entry.
type Outcome struct {
	Path   string
	Kind   Kind
	Reason string // set for Skipped
	Err    error  // set for Errored
}

// Matcher decides whether a regular file is interesting.
type Matcher func(path string, d fs.DirEntry) bool

// Files walks root recursively and calls fn for every outcome in lexical
// order. Directories themselves are not reported unless they fail to open.
// Symlinks are skipped. fn returning false stops the walk early.
func Files(root string, match Matcher, fn func(Outcome) bool) {
	stopped := false
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if stopped {
			return filepath.SkipAll
		}
		emit := func(o Outcome) error {
			if !fn(o) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		}
		if err != nil {
			if e := emit(Outcome{Path: path, Kind: Errored, Err: err}); e != nil {
				return e
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return emit(Outcome{Path: path, Kind: Skipped, Reason: ReasonSymlink})
		}
		if d.IsDir() {
			return nil
		}
		if match != nil && !match(path, d) {
			return emit(Outcome{Path: path, Kind: Skipped, Reason: ReasonNoMatch})
		}
		return emit(Outcome{Path: path, Kind: Found})
	})
}

// Collect is Files gathered into a slice.
func Collect(root string, match Matcher) []Outcome {
	var out []Outcome
	Files(root, match, func(o Outcome) bool {
		out = append(out, o)
		return true
	})
	return out
}

// Dirs lists the immediate subdirectories of root, sorted by name. A root
// that cannot be read yields a single Errored outcome.
func Dirs(root string) []Outcome {
	entries, err := os.ReadDir(root)
	if err != nil {
		return []Outcome{{Path: root, Kind: Errored, Err: err}}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	out := make([]Outcome, 0, len(entries))
	for _, e := range entries {
		path := filepath.Join(root, e.Name())
		switch {
		case e.IsDir():
			out = append(out, Outcome{Path: path, Kind: Found})
		case e.Type()&fs.ModeSymlink != 0:
			// Launcher installs are sometimes symlinked; follow them for dirs.
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				out = append(out, Outcome{Path: path, Kind: Found})
			} else {
				out = append(out, Outcome{Path: path, Kind: Skipped, Reason: ReasonSymlink})
			}
		default:
			out = append(out, Outcome{Path: path, Kind: Skipped, Reason: ReasonNotDir})
		}
	}
	return out
}

// Paths returns the paths of all Found outcomes.
func Paths(outcomes []Outcome) []string {
	var out []string
	for _, o := range outcomes {
		if o.Kind == Found {
			out = append(out, o.Path)
		}
	}
	return out
}

// HasExt returns a Matcher accepting files with the given extension.
func HasExt(ext string) Matcher {
	return func(path string, _ fs.DirEntry) bool {
		return filepath.Ext(path) == ext
	}
}
