package vfs

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackends(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := backend.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, backend.Set(ctx, "k", []byte("v1")))
			require.NoError(t, backend.Set(ctx, "k", []byte("v2")))
			require.NoError(t, backend.Set(ctx, "a", []byte("x")))

			v, ok, err := backend.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte("v2"), v)

			keys, err := backend.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "k"}, keys)

			require.NoError(t, backend.Remove(ctx, "k"))
			require.NoError(t, backend.Remove(ctx, "k"))
			keys, _ = backend.Keys(ctx)
			assert.Equal(t, []string{"a"}, keys)

			require.NoError(t, backend.Clear(ctx))
			keys, _ = backend.Keys(ctx)
			assert.Empty(t, keys)
		})
	}
}

func TestMemoryBackendCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()

	value := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", value))
	value[0] = 'z'

	got, _, _ := m.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), got)
}

func TestSQLitePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.db")
	ctx := context.Background()

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "k", []byte("v")))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()

	v, ok, err := second.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}

func TestSQLiteCompressesLargeValues(t *testing.T) {
	backend, err := OpenSQLite(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	defer backend.Close()
	ctx := context.Background()

	large := bytes.Repeat([]byte("window "), CompressThreshold)
	require.NoError(t, backend.Set(ctx, "large", large))
	require.NoError(t, backend.Set(ctx, "small", []byte("tiny")))

	var stored []byte
	var codec int
	require.NoError(t, backend.db.QueryRowContext(ctx,
		"SELECT value, codec FROM kv WHERE key = ?", "large").Scan(&stored, &codec))
	assert.Equal(t, codecZstd, codec)
	assert.Less(t, len(stored), len(large))

	got, ok, err := backend.Get(ctx, "large")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, large, got)

	got, ok, err = backend.Get(ctx, "small")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("tiny"), got)

	// Overwriting with a small value resets the codec
	require.NoError(t, backend.Set(ctx, "large", []byte("short")))
	got, _, err = backend.Get(ctx, "large")
	require.NoError(t, err)
	assert.Equal(t, []byte("short"), got)
}
