package hashcache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kozaktomas/photo-culler/internal/config"
)

func TestJSONStore_MissingFileIsEmpty(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "cache.json"))

	entries, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestJSONStore_FileShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.json")
	store := NewJSONStore(path)

	require.NoError(t, store.Save(context.Background(), map[string]Entry{
		"/photos/a.jpg": {LastModified: 1700000000000, Hash: "0110"},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "0110", raw["/photos/a.jpg"]["hash"])
	assert.EqualValues(t, 1700000000000, raw["/photos/a.jpg"]["lastModified"])

	_, err = os.Stat(path + ".tmp")
	assert.ErrorIs(t, err, os.ErrNotExist, "temporary file should be renamed away")
}

func TestJSONStore_ReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	content := `{"/photos/b.png": {"lastModified": 5, "hash": "10"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	entries, err := NewJSONStore(path).Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Entry{LastModified: 5, Hash: "10"}, entries["/photos/b.png"])
}

func TestJSONStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewJSONStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestJSONStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewJSONStore(path)
	require.NoError(t, store.Save(context.Background(), map[string]Entry{"/a.jpg": {Hash: "0"}}))

	require.NoError(t, store.Clear(context.Background()))
	require.NoError(t, store.Clear(context.Background()), "clearing twice is fine")

	entries, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQL(ctx, DriverSQLite, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(ctx, map[string]Entry{
		"/photos/a.jpg": {LastModified: 1, Hash: "0011"},
		"/photos/b.jpg": {LastModified: 2, Hash: "1100"},
	}))
	// Second save updates in place
	require.NoError(t, store.Save(ctx, map[string]Entry{
		"/photos/a.jpg": {LastModified: 3, Hash: "1111"},
	}))

	entries, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, Entry{LastModified: 3, Hash: "1111"}, entries["/photos/a.jpg"])

	require.NoError(t, store.Clear(ctx))
	entries, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, config.CacheConfig{Backend: "json", Path: filepath.Join(t.TempDir(), "c.json")})
	require.NoError(t, err)
	assert.IsType(t, &JSONStore{}, store)

	store, err = Open(ctx, config.CacheConfig{Backend: "SQLite", Path: filepath.Join(t.TempDir(), "c.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, store)
	require.NoError(t, store.Close())

	_, err = Open(ctx, config.CacheConfig{Backend: "etcd"})
	assert.Error(t, err)
}
