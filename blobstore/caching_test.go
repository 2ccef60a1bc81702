package blobstore

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// countingStore wraps MemoryStore and counts backend ReadAt calls.
type countingStore struct {
	*MemoryStore
	reads atomic.Int64
}

func (s *countingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.MemoryStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &countingBlob{Blob: b, reads: &s.reads}, nil
}

type countingBlob struct {
	Blob
	reads *atomic.Int64
}

func (b *countingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	b.reads.Add(1)
	return b.Blob.ReadAt(ctx, p, off)
}

func testPattern(n int) []byte {
	r := rand.New(rand.NewSource(42))
	data := make([]byte, n)
	r.Read(data)
	return data
}

func TestCachingStoreReads(t *testing.T) {
	ctx := context.Background()
	data := testPattern(10_000)

	inner := &countingStore{MemoryStore: NewMemoryStore()}
	require.NoError(t, inner.Put(ctx, "a.bin", data))

	store := NewCachingStore(inner, NewLRUBlockCache(1<<20), func(o *CachingOptions) {
		o.BlockSize = 512
	})

	blob, err := store.Open(ctx, "a.bin")
	require.NoError(t, err)
	defer blob.Close()
	require.Equal(t, int64(len(data)), blob.Size())

	// Unaligned reads across block boundaries match the source.
	for _, tc := range []struct{ off, n int64 }{
		{0, 512},
		{100, 1000},
		{511, 2},
		{9_990, 10}, // tail
		{0, 10_000}, // whole blob
	} {
		buf := make([]byte, tc.n)
		n, err := blob.ReadAt(ctx, buf, tc.off)
		require.NoError(t, err)
		require.Equal(t, int(tc.n), n)
		require.Equal(t, data[tc.off:tc.off+tc.n], buf)
	}

	// A repeated read is served from cache.
	before := inner.reads.Load()
	buf := make([]byte, 1000)
	_, err = blob.ReadAt(ctx, buf, 100)
	require.NoError(t, err)
	require.Equal(t, before, inner.reads.Load())
}

func TestCachingStoreCoalescesRuns(t *testing.T) {
	ctx := context.Background()
	data := testPattern(8192)

	inner := &countingStore{MemoryStore: NewMemoryStore()}
	require.NoError(t, inner.Put(ctx, "a.bin", data))

	store := NewCachingStore(inner, NewLRUBlockCache(1<<20), func(o *CachingOptions) {
		o.BlockSize = 512
	})

	blob, err := store.Open(ctx, "a.bin")
	require.NoError(t, err)
	defer blob.Close()

	// 16 cold blocks, one contiguous run, one backend request.
	buf := make([]byte, 8192)
	_, err = blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	require.Equal(t, data, buf)
	require.Equal(t, int64(1), inner.reads.Load())
}

func TestCachingStoreReadRange(t *testing.T) {
	ctx := context.Background()
	data := testPattern(4096)

	store := NewCachingStore(NewMemoryStore(), NewLRUBlockCache(1<<20))
	require.NoError(t, store.Put(ctx, "a.bin", data))

	blob, err := store.Open(ctx, "a.bin")
	require.NoError(t, err)
	defer blob.Close()

	rc, err := blob.ReadRange(ctx, 1000, 2000)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, data[1000:3000], got)
}

func TestCachingStoreInvalidateOnPut(t *testing.T) {
	ctx := context.Background()
	store := NewCachingStore(NewMemoryStore(), NewLRUBlockCache(1<<20))

	require.NoError(t, store.Put(ctx, "a.bin", bytes.Repeat([]byte{1}, 256)))
	blob, err := store.Open(ctx, "a.bin")
	require.NoError(t, err)
	buf := make([]byte, 256)
	_, err = blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	require.NoError(t, blob.Close())

	// Overwrite drops the cached blocks.
	require.NoError(t, store.Put(ctx, "a.bin", bytes.Repeat([]byte{2}, 256)))

	blob, err = store.Open(ctx, "a.bin")
	require.NoError(t, err)
	defer blob.Close()
	_, err = blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	require.Equal(t, bytes.Repeat([]byte{2}, 256), buf)
}

func TestCachingStoreConcurrent(t *testing.T) {
	ctx := context.Background()
	data := testPattern(64 << 10)

	inner := NewMemoryStore()
	require.NoError(t, inner.Put(ctx, "a.bin", data))

	store := NewCachingStore(inner, NewLRUBlockCache(8<<10), func(o *CachingOptions) {
		o.BlockSize = 1024
		o.RateLimit = rate.NewLimiter(rate.Inf, 1)
	})

	blob, err := store.Open(ctx, "a.bin")
	require.NoError(t, err)
	defer blob.Close()

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(w)))
			for range 50 {
				off := r.Int63n(int64(len(data)) - 1)
				n := r.Int63n(min(4096, int64(len(data))-off)) + 1
				buf := make([]byte, n)
				got, err := blob.ReadAt(ctx, buf, off)
				if err != nil && err != io.EOF {
					t.Errorf("ReadAt(%d, %d): %v", off, n, err)
					return
				}
				if !bytes.Equal(buf[:got], data[off:off+int64(got)]) {
					t.Errorf("ReadAt(%d, %d): data mismatch", off, n)
					return
				}
			}
		}()
	}
	wg.Wait()
}
