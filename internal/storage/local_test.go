package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataroom/internal/domain"
)

func TestLocalStore_SaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	key, err := store.Save(ctx, []byte("hello"), "user-1", "room-1", "Report.PDF")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "user-1/room-1/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))

	r, err := store.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, r.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting twice is fine
	assert.NoError(t, store.Delete(ctx, key))
}

func TestLocalStore_KeysAreUnique(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	a, err := store.Save(ctx, []byte("a"), "u", "d", "same.txt")
	require.NoError(t, err)
	b, err := store.Save(ctx, []byte("b"), "u", "d", "same.txt")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestLocalStore_RejectsEscapingHandles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStore(filepath.Join(dir, "blobs"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret"), []byte("x"), 0o644))

	for _, key := range []string{"../secret", "/etc/passwd", "a//b", "", `a\..\secret`} {
		_, err := store.Open(ctx, key)
		assert.Error(t, err, key)
		assert.Error(t, store.Delete(ctx, key), key)
	}
}

func TestNewKey(t *testing.T) {
	key := NewKey("../evil", "room", "archive.tar.gz")
	parts := strings.Split(key, "/")
	require.Len(t, parts, 3)
	assert.Equal(t, "__evil", parts[0])
	assert.True(t, strings.HasSuffix(key, ".gz"))
	assert.NoError(t, validateKey(key))

	assert.False(t, strings.Contains(NewKey("u", "d", "noext"), "."))
}
