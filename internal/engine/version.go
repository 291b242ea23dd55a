// Package engine discovers installed Unreal Engine copies and resolves the
// engine version a project is associated with.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
)

// Version identifies one engine release and, optionally, where it is
// installed. A Major of 0 means invalid or unresolved.
type Version struct {
	Major       int    `json:"major"`
	Minor       int    `json:"minor"`
	Patch       int    `json:"patch"`
	Full        string `json:"full"`
	InstallPath string `json:"install_path,omitempty"`
}

// DefaultVersion is used when nothing else can be resolved.
var DefaultVersion = NewVersion(5, 3, 0, "")

// NewVersion builds a Version with its canonical string filled in.
func NewVersion(major, minor, patch int, installPath string) Version {
	v := Version{Major: major, Minor: minor, Patch: patch, InstallPath: installPath}
	v.Full = v.String()
	return v
}

// String renders major.minor.patch.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Valid reports whether the version was resolved.
func (v Version) Valid() bool { return v.Major > 0 }

// IsUE4 reports whether v belongs to the 4.x line.
func (v Version) IsUE4() bool { return v.Major == 4 }

// IsUE5 reports whether v belongs to the 5.x line or later.
func (v Version) IsUE5() bool { return v.Major >= 5 }

// Compare orders versions by (major, minor, patch). The install path is
// not considered.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return cmpInt(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmpInt(v.Minor, o.Minor)
	default:
		return cmpInt(v.Patch, o.Patch)
	}
}

// Equal reports whether v and o name the same release.
func (v Version) Equal(o Version) bool { return v.Compare(o) == 0 }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

var (
	// pathVersionRe tolerates the UE_/UE-/UnrealEngine prefixes used by
	// launcher and source-build install directories.
	pathVersionRe = regexp.MustCompile(`(?i)(?:UE[_-]?|UnrealEngine[_-]?)(\d+)\.(\d+)(?:\.(\d+))?`)
	// assocVersionRe accepts any embedded major.minor[.patch].
	assocVersionRe = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)
)

// ParseAssociation extracts a version from a free-form EngineAssociation
// string such as "5.2", "5.2.1-custom" or "UE_5.1". The result has no
// install path and is invalid when no version is present.
func ParseAssociation(s string) Version {
	return versionFromMatch(assocVersionRe.FindStringSubmatch(s), "")
}

// versionFromPath extracts a version from an install directory name.
func versionFromPath(path string) Version {
	return versionFromMatch(pathVersionRe.FindStringSubmatch(path), path)
}

func versionFromMatch(m []string, installPath string) Version {
	if m == nil {
		return Version{InstallPath: installPath}
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return Version{InstallPath: installPath}
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return Version{InstallPath: installPath}
	}
	patch := 0
	if m[3] != "" {
		if p, err := strconv.Atoi(m[3]); err == nil {
			patch = p
		}
	}
	return NewVersion(major, minor, patch, installPath)
}
