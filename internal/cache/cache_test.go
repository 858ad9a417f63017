package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/estudio/internal/model"
)

// exercise runs the contract shared by every backend
func exercise(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	_, ok := c.Get(ctx, Key("1"))
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, Key("1"), []byte("one"), time.Hour))
	got, ok := c.Get(ctx, Key("1"))
	require.True(t, ok)
	assert.Equal(t, []byte("one"), got)

	require.NoError(t, c.Set(ctx, Key("1"), []byte("uno"), 0))
	got, ok = c.Get(ctx, Key("1"))
	require.True(t, ok)
	assert.Equal(t, []byte("uno"), got)

	require.NoError(t, c.Delete(ctx, Key("1")))
	_, ok = c.Get(ctx, Key("1"))
	assert.False(t, ok)
	require.NoError(t, c.Delete(ctx, Key("1")))

	require.NoError(t, c.Set(ctx, Key("2"), []byte("two"), time.Hour))
	require.NoError(t, c.Set(ctx, Key("3"), []byte("three"), time.Hour))
	require.NoError(t, c.Clear(ctx))
	_, ok = c.Get(ctx, Key("2"))
	assert.False(t, ok)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "estudio:v1:analysis:2468", Key("2468"))
}

func TestMemoryCache(t *testing.T) {
	exercise(t, NewMemoryCache(time.Hour, time.Minute))
}

func TestDiskCache(t *testing.T) {
	exercise(t, NewDiskCache(t.TempDir(), time.Hour))
}

func TestDiskCache_Expiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)
	ctx := context.Background()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	require.NoError(t, c.Set(ctx, Key("9"), []byte("x"), 0))

	files, err := filepath.Glob(filepath.Join(dir, "*.cache"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "estudio_v1_analysis_9.cache", filepath.Base(files[0]))

	now = now.Add(2 * time.Minute)
	_, ok := c.Get(ctx, Key("9"))
	assert.False(t, ok)
	_, err = os.Stat(files[0])
	assert.True(t, os.IsNotExist(err))
}

func TestDiskCache_ClearMissingDir(t *testing.T) {
	c := NewDiskCache(filepath.Join(t.TempDir(), "absent"), time.Hour)
	assert.NoError(t, c.Clear(context.Background()))
}

func TestLayeredCache(t *testing.T) {
	exercise(t, NewLayeredCache(time.Hour, t.TempDir(), time.Hour))
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	require.NoError(t, NewDiskCache(dir, time.Hour).Set(ctx, Key("5"), []byte("disk"), 0))

	c := NewLayeredCache(time.Hour, dir, time.Hour)
	got, ok := c.Get(ctx, Key("5"))
	require.True(t, ok)
	assert.Equal(t, []byte("disk"), got)

	mem, ok := c.memory.Get(ctx, Key("5"))
	require.True(t, ok)
	assert.Equal(t, []byte("disk"), mem)
}

func TestSQLiteCache(t *testing.T) {
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "nested", "cache.db"), time.Hour)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	exercise(t, c)
}

func TestSQLiteCache_ExpiryAndPurge(t *testing.T) {
	c, err := NewSQLiteCache(":memory:", time.Minute)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	require.NoError(t, c.Set(ctx, Key("1"), []byte("a"), 0))
	require.NoError(t, c.Set(ctx, Key("2"), []byte("b"), time.Hour))

	now = now.Add(2 * time.Minute)
	n, err := c.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok := c.Get(ctx, Key("1"))
	assert.False(t, ok)
	got, ok := c.Get(ctx, Key("2"))
	require.True(t, ok)
	assert.Equal(t, []byte("b"), got)
}

func TestJSONHelpers(t *testing.T) {
	c := NewMemoryCache(time.Hour, time.Minute)
	ctx := context.Background()

	in := model.AnalysisReport{MatchID: "77", Home: "A", Away: "B"}
	require.NoError(t, SetJSON(ctx, c, Key("77"), in, 0))

	var out model.AnalysisReport
	require.True(t, GetJSON(ctx, c, Key("77"), &out))
	assert.Equal(t, in.MatchID, out.MatchID)
	assert.Equal(t, in.Home, out.Home)

	require.NoError(t, c.Set(ctx, Key("bad"), []byte("{"), 0))
	assert.False(t, GetJSON(ctx, c, Key("bad"), &out))
	assert.False(t, GetJSON(ctx, c, Key("missing"), &out))
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	base := model.CacheConfig{Enabled: true, TTL: time.Hour, Dir: dir, SQLitePath: filepath.Join(dir, "c.db"), RedisAddr: "localhost:6379"}

	c, err := New(model.CacheConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, c)

	for backend, want := range map[string]any{
		"memory":  &MemoryCache{},
		"disk":    &DiskCache{},
		"layered": &LayeredCache{},
		"":        &LayeredCache{},
		"sqlite":  &SQLiteCache{},
		"redis":   &RedisCache{},
	} {
		cfg := base
		cfg.Backend = backend
		c, err := New(cfg)
		require.NoError(t, err, backend)
		assert.IsType(t, want, c, backend)
		if s, ok := c.(*SQLiteCache); ok {
			_ = s.Close()
		}
	}

	cfg := base
	cfg.Backend = "memcached"
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".estudio", "cache"), ExpandHome("~/.estudio/cache"))
	assert.Equal(t, "/tmp/x", ExpandHome("/tmp/x"))
}
