package engine

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helpers ---

// makeInstall creates an engine directory. A zero major skips the build
// manifest so the version must come from the path.
func makeInstall(t *testing.T, dir string, major, minor, patch int) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Engine", "Build"), 0o755))
	if major > 0 {
		data, err := json.Marshal(map[string]int{
			"MajorVersion": major,
			"MinorVersion": minor,
			"PatchVersion": patch,
		})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, filepath.FromSlash(BuildVersionFile)), data, 0o644))
	}
	return dir
}

func makeProject(t *testing.T, dir, association string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	data, err := json.Marshal(map[string]any{"FileVersion": 3, "EngineAssociation": association})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Game.uproject"), data, 0o644))
}

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func newTestLocator(roots []string, env map[string]string) *Locator {
	return NewLocator(Config{Roots: roots, Getenv: envFrom(env)})
}

func triples(vs []Version) [][3]int {
	out := make([][3]int, len(vs))
	for i, v := range vs {
		out[i] = [3]int{v.Major, v.Minor, v.Patch}
	}
	return out
}

// --- Version ---

func TestVersion_Compare(t *testing.T) {
	a := NewVersion(5, 2, 1, "/a")
	b := NewVersion(5, 3, 0, "/b")
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.True(t, a.Equal(NewVersion(5, 2, 1, "/elsewhere")), "equality ignores install path")
	assert.Equal(t, "5.2.1", a.Full)
}

func TestParseAssociation(t *testing.T) {
	tests := []struct {
		in   string
		want [3]int
		ok   bool
	}{
		{"5.2.1-custom", [3]int{5, 2, 1}, true},
		{"5.3", [3]int{5, 3, 0}, true},
		{"UE_4.27", [3]int{4, 27, 0}, true},
		{"{8D2A1A1E-4E3B-4C19-9C3B-ABCDEF012345}", [3]int{}, false},
		{"", [3]int{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v := ParseAssociation(tt.in)
			assert.Equal(t, tt.ok, v.Valid())
			if tt.ok {
				assert.Equal(t, tt.want, [3]int{v.Major, v.Minor, v.Patch})
			}
		})
	}
}

// --- DetectInstall ---

func TestDetectInstall_PrefersBuildManifest(t *testing.T) {
	dir := makeInstall(t, filepath.Join(t.TempDir(), "UE_5.0"), 5, 4, 2)
	v := newTestLocator(nil, nil).DetectInstall(dir)
	assert.Equal(t, [3]int{5, 4, 2}, [3]int{v.Major, v.Minor, v.Patch})
	assert.Equal(t, dir, v.InstallPath)
}

func TestDetectInstall_FallsBackToPath(t *testing.T) {
	dir := makeInstall(t, filepath.Join(t.TempDir(), "UnrealEngine-5.1.3"), 0, 0, 0)
	v := newTestLocator(nil, nil).DetectInstall(dir)
	assert.Equal(t, [3]int{5, 1, 3}, [3]int{v.Major, v.Minor, v.Patch})
}

func TestDetectInstall_MalformedManifestFallsBackToPath(t *testing.T) {
	dir := makeInstall(t, filepath.Join(t.TempDir(), "UE_5.2"), 0, 0, 0)
	require.NoError(t, os.WriteFile(filepath.Join(dir, filepath.FromSlash(BuildVersionFile)), []byte("{not json"), 0o644))
	v := newTestLocator(nil, nil).DetectInstall(dir)
	assert.Equal(t, [3]int{5, 2, 0}, [3]int{v.Major, v.Minor, v.Patch})
}

func TestDetectInstall_NoEngineFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "UE_5.2")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	assert.False(t, newTestLocator(nil, nil).DetectInstall(dir).Valid())
}

// --- DiscoverAll ---

func TestDiscoverAll_SortedDescendingAndDeduped(t *testing.T) {
	base := t.TempDir()
	launcher := filepath.Join(base, "Epic Games")
	first53 := makeInstall(t, filepath.Join(launcher, "UE_5.3"), 5, 3, 0)
	makeInstall(t, filepath.Join(launcher, "UE_5.1"), 5, 1, 0)
	makeInstall(t, filepath.Join(launcher, "UE_4.27"), 4, 27, 2)
	// Not an install: no Engine folder.
	require.NoError(t, os.MkdirAll(filepath.Join(launcher, "Launcher"), 0o755))

	// Root that is itself an install, duplicating 5.3.0.
	dup53 := makeInstall(t, filepath.Join(base, "Source53"), 5, 3, 0)
	envInstall := makeInstall(t, filepath.Join(base, "custom"), 5, 5, 0)

	loc := newTestLocator(
		[]string{launcher, dup53, filepath.Join(base, "missing")},
		map[string]string{"UE5_ROOT": envInstall},
	)
	got := loc.DiscoverAll()

	want := [][3]int{{5, 5, 0}, {5, 3, 0}, {5, 1, 0}, {4, 27, 2}}
	if diff := cmp.Diff(want, triples(got)); diff != "" {
		t.Fatalf("DiscoverAll mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, first53, got[1].InstallPath, "first-found install wins on duplicate versions")

	for i := 1; i < len(got); i++ {
		assert.Equal(t, 1, got[i-1].Compare(got[i]), "results must be strictly descending")
	}
}

func TestDiscoverAll_ZeroMajorDiscarded(t *testing.T) {
	base := t.TempDir()
	makeInstall(t, filepath.Join(base, "SomeEngine"), 0, 0, 0)
	assert.Empty(t, newTestLocator([]string{base}, nil).DiscoverAll())
}

// --- ResolveForProject ---

func TestResolveForProject_MatchesMajorMinor(t *testing.T) {
	base := t.TempDir()
	install := makeInstall(t, filepath.Join(base, "engines", "UE_5.2"), 5, 2, 0)
	makeInstall(t, filepath.Join(base, "engines", "UE_5.4"), 5, 4, 0)
	project := filepath.Join(base, "MyGame")
	makeProject(t, project, "5.2.1-custom")

	v := newTestLocator([]string{filepath.Join(base, "engines")}, nil).ResolveForProject(project)
	assert.Equal(t, 5, v.Major)
	assert.Equal(t, 2, v.Minor)
	assert.Equal(t, install, v.InstallPath)
}

func TestResolveForProject_FallsBackToHighest(t *testing.T) {
	base := t.TempDir()
	makeInstall(t, filepath.Join(base, "engines", "UE_5.1"), 5, 1, 0)
	highest := makeInstall(t, filepath.Join(base, "engines", "UE_5.4"), 5, 4, 1)
	project := filepath.Join(base, "MyGame")
	makeProject(t, project, "5.2.1-custom")

	v := newTestLocator([]string{filepath.Join(base, "engines")}, nil).ResolveForProject(project)
	assert.Equal(t, [3]int{5, 4, 1}, [3]int{v.Major, v.Minor, v.Patch})
	assert.Equal(t, highest, v.InstallPath)
}

func TestResolveForProject_FallsBackToDefault(t *testing.T) {
	project := filepath.Join(t.TempDir(), "MyGame")
	makeProject(t, project, "5.2.1-custom")

	v := newTestLocator([]string{}, nil).ResolveForProject(project)
	assert.Equal(t, DefaultVersion, v)
	assert.Empty(t, v.InstallPath)
}

func TestResolveForProject_MalformedManifest(t *testing.T) {
	project := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(project, "Broken.uproject"), []byte("{{"), 0o644))

	v := newTestLocator([]string{}, nil).ResolveForProject(project)
	assert.Equal(t, DefaultVersion, v)
}

func TestResolveForProject_MissingDir(t *testing.T) {
	v := newTestLocator([]string{}, nil).ResolveForProject(filepath.Join(t.TempDir(), "gone"))
	assert.Equal(t, DefaultVersion, v)
}

// --- Projects ---

func TestFindProjects(t *testing.T) {
	root := t.TempDir()
	makeProject(t, filepath.Join(root, "Games", "Shooter"), "5.3")
	makeProject(t, filepath.Join(root, "Games", "Shooter", "Intermediate", "Copy"), "5.3")
	makeProject(t, filepath.Join(root, ".hidden", "Secret"), "5.3")
	makeProject(t, filepath.Join(root, "a", "b", "c", "d", "TooDeep"), "5.3")

	got := FindProjects(root, 3)
	assert.Equal(t, []string{filepath.Join(root, "Games", "Shooter")}, got)
	assert.Equal(t, "Game", ProjectName(got[0]))
}

func TestReady(t *testing.T) {
	dir := makeInstall(t, filepath.Join(t.TempDir(), "UE_5.3"), 5, 3, 0)
	v := NewVersion(5, 3, 0, dir)
	assert.False(t, Ready(v))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Engine", "Binaries"), 0o755))
	assert.True(t, Ready(v))
}

func TestDefaultRoots_IncludesHomeVariants(t *testing.T) {
	roots := DefaultRoots("/home/dev")
	assert.Contains(t, roots, "/Users/Shared/Epic Games")
	assert.Contains(t, roots, filepath.Join("/home/dev", "UnrealEngine", "UE_5.5"))
	assert.NotContains(t, DefaultRoots(""), filepath.Join("UnrealEngine", "UE_5.5"))
}
