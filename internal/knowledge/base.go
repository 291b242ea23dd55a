package knowledge

import (
	"github.com/HendryAvila/unreal-lsp/internal/engine"
)

// Base holds one profile per Key. It is safe for concurrent use because
// nothing mutates it after Build returns, and every accessor hands out
// copies.
type Base struct {
	profiles map[Key]*Profile
}

// Build constructs the two base profiles and derives the rest through the
// delta chain.
func Build() *Base {
	return BuildWith(base427(), base50(), deltas)
}

// BuildWith is Build with explicit inputs. The deltas are applied in order
// starting from ue5.
func BuildWith(ue4, ue5 *Profile, chain []Delta) *Base {
	b := &Base{profiles: make(map[Key]*Profile, len(chain)+2)}
	b.profiles[ue4.Key] = ue4.Clone()
	prev := ue5.Clone()
	b.profiles[prev.Key] = prev
	for _, d := range chain {
		next := d.apply(prev)
		b.profiles[next.Key] = next
		prev = next
	}
	return b
}

// Profile returns a copy of the profile for key.
func (b *Base) Profile(key Key) (*Profile, bool) {
	p, ok := b.profiles[key]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// ClassMethods returns the known methods of class for version v, in table
// order. Unknown classes fall back to a small default table, then nil.
func (b *Base) ClassMethods(class string, v engine.Version) []string {
	if p, ok := b.profiles[KeyFor(v)]; ok {
		if methods, ok := p.Classes[class]; ok {
			return append([]string(nil), methods...)
		}
	}
	return append([]string(nil), defaultClassMethods[class]...)
}

// MacroTemplate returns the code skeleton for macro at version v, or ""
// when the macro is unknown.
func (b *Base) MacroTemplate(macro string, v engine.Version) string {
	if p, ok := b.profiles[KeyFor(v)]; ok {
		if tmpl, ok := p.Macros[macro]; ok {
			return tmpl
		}
	}
	if v.IsUE4() {
		return defaultMacrosUE4[macro]
	}
	return defaultMacrosUE5[macro]
}

// IncludePaths returns the engine-relative include roots for version v.
func (b *Base) IncludePaths(v engine.Version) []string {
	if p, ok := b.profiles[KeyFor(v)]; ok && len(p.IncludeRoots) > 0 {
		return append([]string(nil), p.IncludeRoots...)
	}
	return defaultIncludePaths(v)
}

func defaultIncludePaths(v engine.Version) []string {
	paths := []string{includeCore, includeCoreUObject, includeEngine}
	if v.IsUE5() {
		paths = append(paths, includeClasses)
		if v.Minor >= 2 {
			paths = append(paths, includeUMG)
		}
	}
	return paths
}
