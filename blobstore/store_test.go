package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// testLifecycle exercises the full BlobStore contract against an
// implementation.
func testLifecycle(t *testing.T, store BlobStore) {
	t.Helper()
	ctx := context.Background()

	// Missing blob.
	_, err := store.Open(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	// Put + Open.
	require.NoError(t, store.Put(ctx, "snapshots/a.bin", []byte("hello world")))

	blob, err := store.Open(ctx, "snapshots/a.bin")
	require.NoError(t, err)
	require.Equal(t, int64(11), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, []byte("world"), buf)

	// Short read at the tail.
	n, err = blob.ReadAt(ctx, buf, 8)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, []byte("rld"), buf[:n])

	// Range read, clamped to blob size.
	rc, err := blob.ReadRange(ctx, 6, 100)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, []byte("world"), data)

	require.NoError(t, blob.Close())

	// Streaming create.
	w, err := store.Create(ctx, "snapshots/b.bin")
	require.NoError(t, err)
	_, err = w.Write([]byte("chunk1"))
	require.NoError(t, err)
	_, err = w.Write([]byte("chunk2"))
	require.NoError(t, err)
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())

	blob, err = store.Open(ctx, "snapshots/b.bin")
	require.NoError(t, err)
	got, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	require.Equal(t, []byte("chunk1chunk2"), got)
	require.NoError(t, blob.Close())

	// List.
	names, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	require.Equal(t, []string{"snapshots/a.bin", "snapshots/b.bin"}, names)

	names, err = store.List(ctx, "other/")
	require.NoError(t, err)
	require.Empty(t, names)

	// Delete, idempotent.
	require.NoError(t, store.Delete(ctx, "snapshots/a.bin"))
	require.NoError(t, store.Delete(ctx, "snapshots/a.bin"))

	_, err = store.Open(ctx, "snapshots/a.bin")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	testLifecycle(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	testLifecycle(t, NewLocalStore(t.TempDir()))
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	data := []byte("original")
	require.NoError(t, store.Put(ctx, "a", data))

	// Mutating the caller's slice must not affect the stored blob.
	data[0] = 'X'

	blob, err := store.Open(ctx, "a")
	require.NoError(t, err)
	got, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	require.Equal(t, []byte("original"), got)
}

func TestLocalStoreMappable(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())
	require.NoError(t, store.Put(ctx, "a.bin", []byte("mapped")))

	blob, err := store.Open(ctx, "a.bin")
	require.NoError(t, err)
	defer blob.Close()

	m, ok := blob.(Mappable)
	require.True(t, ok)
	b, err := m.Bytes()
	require.NoError(t, err)
	require.Equal(t, []byte("mapped"), b)
}
