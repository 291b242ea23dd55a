package headerindex

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/HendryAvila/unreal-lsp/internal/engine"
	"github.com/HendryAvila/unreal-lsp/internal/scancache"
	"github.com/HendryAvila/unreal-lsp/internal/walk"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// fakeInstall lays out two include roots. AShared appears in both with
// different methods.
func fakeInstall(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Core/Public/Actor.h"), actorHeader)
	writeFile(t, filepath.Join(root, "Core/Public/Shared.h"),
		"class CORE_API AShared : public AActor\n{\n\tvoid FromCore();\n};\n")
	writeFile(t, filepath.Join(root, "Core/Public/notes.txt"),
		"class CORE_API ANotAHeader : public AActor { void Hidden(); };")
	writeFile(t, filepath.Join(root, "Engine/Public/Deep/Nested/Shared.h"),
		"class ENGINE_API AShared : public AActor\n{\n\tvoid FromEngine();\n};\n")
	return root
}

func newIndex(root string, roots ...string) *Index {
	return New(Config{
		Version:      engine.NewVersion(5, 3, 0, root),
		IncludeRoots: roots,
		VersionKey:   "5.3",
		Workers:      2,
	})
}

// --- Scan ---

func TestScan_BuildsTable(t *testing.T) {
	root := fakeInstall(t)
	ix := newIndex(root, "Core/Public", "Engine/Public")

	stats, err := ix.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"DoThing", "GetHealth", "Tick"}, ix.ClassMethods("AMyActor"))
	assert.Empty(t, ix.ClassMethods("ANotAHeader"))
	assert.Equal(t, 3, stats.Files)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, []string{"AMyActor", "AShared"}, ix.Classes())
}

func TestScan_LaterRootWins(t *testing.T) {
	root := fakeInstall(t)

	ix := newIndex(root, "Core/Public", "Engine/Public")
	_, err := ix.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"FromEngine"}, ix.ClassMethods("AShared"))

	reversed := newIndex(root, "Engine/Public", "Core/Public")
	_, err = reversed.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"FromCore"}, reversed.ClassMethods("AShared"))
}

func TestScan_MissingRootIsSkipped(t *testing.T) {
	root := fakeInstall(t)
	ix := newIndex(root, "Core/Public", "UMG/Public")

	stats, err := ix.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, stats.Problems, 1)
	assert.Equal(t, walk.Skipped, stats.Problems[0].Kind)
	assert.Equal(t, reasonMissingRoot, stats.Problems[0].Reason)
	assert.Zero(t, stats.Errored)
	assert.NotEmpty(t, ix.ClassMethods("AMyActor"))
}

func TestScan_Cancelled(t *testing.T) {
	root := fakeInstall(t)
	ix := newIndex(root, "Core/Public")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ix.Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ix.Classes())
}

func TestClassMethods_ReturnsCopy(t *testing.T) {
	root := fakeInstall(t)
	ix := newIndex(root, "Core/Public")
	_, err := ix.Scan(context.Background())
	require.NoError(t, err)

	got := ix.ClassMethods("AMyActor")
	got[0] = "Broken"
	assert.Equal(t, "DoThing", ix.ClassMethods("AMyActor")[0])
}

// --- Start / Done ---

func TestStart_CompletesAndIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := fakeInstall(t)
	ix := newIndex(root, "Core/Public", "Engine/Public")
	assert.False(t, ix.Ready())

	ix.Start(context.Background())
	ix.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, ix.Wait(ctx))
	assert.True(t, ix.Ready())
	assert.NotEmpty(t, ix.ClassMethods("AMyActor"))
}

func TestStart_EmptyInstallPathFinishesImmediately(t *testing.T) {
	defer goleak.VerifyNone(t)

	ix := New(Config{IncludeRoots: []string{"Core/Public"}})
	ix.Start(context.Background())

	select {
	case <-ix.Done():
	default:
		t.Fatal("Done not closed for empty install path")
	}
	assert.Empty(t, ix.Classes())
}

func TestConcurrentReadsDuringScan(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := fakeInstall(t)
	ix := newIndex(root, "Core/Public", "Engine/Public")
	ix.Start(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				methods := ix.ClassMethods("AMyActor")
				if len(methods) > 0 {
					assert.Equal(t, []string{"DoThing", "GetHealth", "Tick"}, methods)
				}
				if ix.Ready() {
					return
				}
			}
		}()
	}
	wg.Wait()
}

// --- Cache ---

type memCache struct {
	mu      sync.Mutex
	snap    *scancache.Snapshot
	saved   []scancache.Snapshot
	readErr error
}

func (c *memCache) LatestSnapshot(string, string) (*scancache.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap, c.readErr
}

func (c *memCache) SaveSnapshot(s scancache.Snapshot) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saved = append(c.saved, s)
	return "id", nil
}

func TestStart_SeedsFromCacheThenSaves(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := fakeInstall(t)
	cache := &memCache{snap: &scancache.Snapshot{
		ID:      "old",
		Classes: map[string][]string{"ACached": {"Old"}},
	}}
	ix := New(Config{
		Version:      engine.NewVersion(5, 3, 0, root),
		IncludeRoots: []string{"Core/Public"},
		VersionKey:   "5.3",
		Cache:        cache,
	})

	ix.warmStart()
	assert.Equal(t, []string{"Old"}, ix.ClassMethods("ACached"))
	assert.True(t, ix.Stats().Warm)

	_, err := ix.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ix.ClassMethods("ACached"), "fresh scan replaces the seeded table")
	assert.True(t, ix.Stats().Warm)

	require.Len(t, cache.saved, 1)
	assert.Equal(t, root, cache.saved[0].InstallPath)
	assert.Equal(t, "5.3", cache.saved[0].VersionKey)
	assert.Contains(t, cache.saved[0].Classes, "AMyActor")
}

func TestStart_CacheErrorsIgnored(t *testing.T) {
	root := fakeInstall(t)
	cache := &memCache{readErr: errors.New("disk gone")}
	ix := New(Config{
		Version:      engine.NewVersion(5, 3, 0, root),
		IncludeRoots: []string{"Core/Public"},
		Cache:        cache,
	})
	ix.Start(context.Background())
	<-ix.Done()
	assert.NotEmpty(t, ix.ClassMethods("AMyActor"))
}

func TestScan_WithSQLiteCache(t *testing.T) {
	root := fakeInstall(t)
	store, err := scancache.New(scancache.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	defer store.Close()

	first := New(Config{
		Version:      engine.NewVersion(5, 3, 0, root),
		IncludeRoots: []string{"Core/Public"},
		VersionKey:   "5.3",
		Cache:        store,
	})
	_, err = first.Scan(context.Background())
	require.NoError(t, err)

	second := New(Config{
		Version:      engine.NewVersion(5, 3, 0, root),
		IncludeRoots: []string{"Core/Public"},
		VersionKey:   "5.3",
		Cache:        store,
	})
	second.warmStart()
	assert.Equal(t, []string{"DoThing", "GetHealth", "Tick"}, second.ClassMethods("AMyActor"))
}
