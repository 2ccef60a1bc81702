package blobstore

import (
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// CachingOptions configures a CachingStore.
type CachingOptions struct {
	// BlockSize is the cache granularity in bytes. Defaults to 4KB.
	BlockSize int64
	// FetchConcurrency bounds parallel backend requests per read.
	// Defaults to 16.
	FetchConcurrency int
	// RateLimit throttles backend requests. Nil means unlimited. Useful
	// against rate-limited object stores.
	RateLimit *rate.Limiter
}

// DefaultCachingOptions returns the defaults used by NewCachingStore.
func DefaultCachingOptions() CachingOptions {
	return CachingOptions{
		BlockSize:        4096,
		FetchConcurrency: 16,
	}
}

// CachingStore wraps a BlobStore and adds block-level read caching. Writes
// pass through and invalidate any cached blocks of the written blob.
type CachingStore struct {
	inner BlobStore
	cache BlockCache
	opts  CachingOptions
}

// NewCachingStore creates a CachingStore over inner using the given cache.
func NewCachingStore(inner BlobStore, cache BlockCache, optFns ...func(*CachingOptions)) *CachingStore {
	opts := DefaultCachingOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.BlockSize <= 0 {
		opts.BlockSize = 4096
	}
	if opts.FetchConcurrency <= 0 {
		opts.FetchConcurrency = 16
	}
	return &CachingStore{
		inner: inner,
		cache: cache,
		opts:  opts,
	}
}

// Open opens a blob whose reads go through the block cache.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &cachingBlob{
		inner: b,
		cache: s.cache,
		name:  name,
		opts:  s.opts,
	}, nil
}

// Create passes through. Blobs are immutable once finalized, so fresh
// writes need no cache interaction.
func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	return s.inner.Create(ctx, name)
}

// Put passes through and drops cached blocks of the overwritten blob.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.cache.Invalidate(func(key BlockKey) bool {
		return key.Name == name
	})
	return s.inner.Put(ctx, name, data)
}

// Delete passes through and drops cached blocks of the deleted blob.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.cache.Invalidate(func(key BlockKey) bool {
		return key.Name == name
	})
	return s.inner.Delete(ctx, name)
}

// List passes through.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

type cachingBlob struct {
	inner Blob
	cache BlockCache
	name  string
	opts  CachingOptions
}

func (b *cachingBlob) Close() error {
	return b.inner.Close()
}

func (b *cachingBlob) Size() int64 {
	return b.inner.Size()
}

func (b *cachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if off >= b.Size() {
		return 0, io.EOF
	}

	blockSize := b.opts.BlockSize
	startBlock := off / blockSize
	endBlock := (off + int64(len(p)) - 1) / blockSize

	// Fetch all missing blocks up front, coalescing contiguous runs into
	// single backend requests.
	if err := b.fillCache(ctx, startBlock, endBlock); err != nil {
		return 0, err
	}

	totalRead := 0
	for blk := startBlock; blk <= endBlock; blk++ {
		blkStart := blk * blockSize

		// Intersection of this block with the requested range.
		intersectStart := max(blkStart, off)
		intersectEnd := min(blkStart+blockSize, off+int64(len(p)))
		if intersectEnd <= intersectStart {
			continue
		}

		blockData, err := b.fetchBlock(ctx, blk)
		if err != nil {
			return totalRead, err
		}

		srcOffset := intersectStart - blkStart
		copySize := intersectEnd - intersectStart
		if srcOffset+copySize > int64(len(blockData)) {
			// Short tail block.
			copySize = int64(len(blockData)) - srcOffset
		}
		if copySize > 0 {
			dstOffset := intersectStart - off
			totalRead += copy(p[dstOffset:dstOffset+copySize], blockData[srcOffset:])
		}
	}

	if totalRead < len(p) {
		return totalRead, io.EOF
	}
	return totalRead, nil
}

func (b *cachingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	return io.NopCloser(&contextSectionReader{blob: b, ctx: ctx, off: off, limit: off + length}), nil
}

// fillCache loads the missing blocks of [startBlock, endBlock] into the
// cache, fetching contiguous runs of misses with one backend request each.
func (b *cachingBlob) fillCache(ctx context.Context, startBlock, endBlock int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	type run struct {
		start, count int64
	}
	var missing []run

	runStart := int64(-1)
	runCount := int64(0)
	for blk := startBlock; blk <= endBlock; blk++ {
		if _, ok := b.cache.Get(BlockKey{Name: b.name, Block: blk}); !ok {
			if runStart == -1 {
				runStart = blk
			}
			runCount++
		} else if runStart != -1 {
			missing = append(missing, run{runStart, runCount})
			runStart, runCount = -1, 0
		}
	}
	if runStart != -1 {
		missing = append(missing, run{runStart, runCount})
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.FetchConcurrency)

	blockSize := b.opts.BlockSize
	for _, r := range missing {
		g.Go(func() error {
			if lim := b.opts.RateLimit; lim != nil {
				if err := lim.Wait(ctx); err != nil {
					return err
				}
			}

			byteStart := r.start * blockSize
			byteSize := r.count * blockSize
			fileSize := b.Size()
			if byteStart >= fileSize {
				return nil
			}
			if byteStart+byteSize > fileSize {
				byteSize = fileSize - byteStart
			}

			buf := make([]byte, byteSize)
			n, err := b.inner.ReadAt(ctx, buf, byteStart)
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			valid := buf[:n]

			for i := int64(0); i < r.count; i++ {
				lo := i * blockSize
				if lo >= int64(len(valid)) {
					break
				}
				hi := min(lo+blockSize, int64(len(valid)))

				// Copy per block so the run buffer isn't pinned by the
				// cache.
				block := make([]byte, hi-lo)
				copy(block, valid[lo:hi])
				b.cache.Set(BlockKey{Name: b.name, Block: r.start + i}, block)
			}
			return nil
		})
	}
	return g.Wait()
}

func (b *cachingBlob) fetchBlock(ctx context.Context, blk int64) ([]byte, error) {
	key := BlockKey{Name: b.name, Block: blk}
	if data, ok := b.cache.Get(key); ok {
		return data, nil
	}

	buf := make([]byte, b.opts.BlockSize)
	n, err := b.inner.ReadAt(ctx, buf, blk*b.opts.BlockSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	valid := buf[:n]
	if n > 0 {
		b.cache.Set(key, valid)
	}
	return valid, nil
}

// contextSectionReader adapts context-aware ReadAt to io.Reader.
type contextSectionReader struct {
	blob  *cachingBlob
	ctx   context.Context
	off   int64
	limit int64
}

func (r *contextSectionReader) Read(p []byte) (int, error) {
	if r.off >= r.limit {
		return 0, io.EOF
	}
	if remaining := r.limit - r.off; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := r.blob.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	if errors.Is(err, io.EOF) && r.off < r.limit {
		return n, io.EOF
	}
	if errors.Is(err, io.EOF) {
		err = nil
	}
	return n, err
}
