// Package knowledge is the versioned table of engine API facts used for
// completion: class methods, macro skeletons and include roots.
//
// Profiles exist for a fixed set of release lines. The two base lines
// (4.27 and 5.0) are written out in full; every later line starts from a
// copy of the previous minor and applies an append-only Delta. A Base is
// built once and never mutated afterwards.
package knowledge

import (
	"github.com/HendryAvila/unreal-lsp/internal/engine"
)

// Key names a supported release line.
type Key string

const (
	Key427 Key = "4.27"
	Key50  Key = "5.0"
	Key51  Key = "5.1"
	Key52  Key = "5.2"
	Key53  Key = "5.3"
	Key54  Key = "5.4"
	Key55  Key = "5.5"

	// DefaultKey is used for versions outside the known major lines.
	DefaultKey = Key53
)

// Keys lists every key in ascending order. A key's index is its ordinal.
var Keys = []Key{Key427, Key50, Key51, Key52, Key53, Key54, Key55}

// Ordinal returns the position of k in Keys, or -1.
func (k Key) Ordinal() int {
	for i, key := range Keys {
		if key == k {
			return i
		}
	}
	return -1
}

// ue5Thresholds maps minimum 5.x minors to keys, highest first.
var ue5Thresholds = []struct {
	minMinor int
	key      Key
}{
	{5, Key55},
	{4, Key54},
	{3, Key53},
	{2, Key52},
	{1, Key51},
	{0, Key50},
}

// KeyFor maps a version to its release line. All of 4.x shares the 4.27
// profile; 5.x steps down to the highest known minor not above v.Minor.
func KeyFor(v engine.Version) Key {
	switch v.Major {
	case 4:
		return Key427
	case 5:
		for _, th := range ue5Thresholds {
			if v.Minor >= th.minMinor {
				return th.key
			}
		}
	}
	return DefaultKey
}

// MacroNames are the reflection macros offered for completion, in order.
var MacroNames = []string{"UCLASS", "USTRUCT", "UFUNCTION", "UPROPERTY", "UENUM"}

// Profile is the knowledge for one release line.
type Profile struct {
	Key          Key
	Classes      map[string][]string
	Macros       map[string]string
	IncludeRoots []string
}

// Clone returns a deep copy so a derived profile can grow without
// touching its parent.
func (p *Profile) Clone() *Profile {
	c := &Profile{
		Key:          p.Key,
		Classes:      make(map[string][]string, len(p.Classes)),
		Macros:       make(map[string]string, len(p.Macros)),
		IncludeRoots: append([]string(nil), p.IncludeRoots...),
	}
	for class, methods := range p.Classes {
		c.Classes[class] = append([]string(nil), methods...)
	}
	for name, tmpl := range p.Macros {
		c.Macros[name] = tmpl
	}
	return c
}

// Delta is the append-only difference between a release line and the one
// before it.
type Delta struct {
	Key          Key
	Methods      map[string][]string
	IncludeRoots []string
}

// apply derives the profile for d.Key from prev.
func (d Delta) apply(prev *Profile) *Profile {
	next := prev.Clone()
	next.Key = d.Key
	// Map iteration order does not matter: each class only ever appends
	// to its own list.
	for class, methods := range d.Methods {
		next.Classes[class] = append(next.Classes[class], methods...)
	}
	next.IncludeRoots = append(next.IncludeRoots, d.IncludeRoots...)
	return next
}
