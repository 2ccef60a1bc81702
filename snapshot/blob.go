package snapshot

import (
	"bufio"
	"bytes"
	"context"
	"time"

	"github.com/hupe1980/csrgraph"
	"github.com/hupe1980/csrgraph/blobstore"
)

// SaveToStore streams a snapshot of g into store under name. The blob
// only becomes visible once the full snapshot is written.
func SaveToStore[EV, VV, GV any](ctx context.Context, store blobstore.BlobStore, name string, g *csrgraph.Graph[EV, VV, GV], optFns ...func(*Options)) (err error) {
	opts := applyOptions(optFns...)

	start := time.Now()
	cw := &countingWriter{}
	defer func() {
		opts.Metrics.RecordSnapshotSave(cw.n, time.Since(start), err)
		opts.Logger.LogSnapshotSave(name, cw.n, err)
	}()

	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}

	cw.w = w
	buf := bufio.NewWriterSize(cw, 256*1024)
	if err := Write(buf, g, optFns...); err != nil {
		_ = w.Close()
		return err
	}
	if err := buf.Flush(); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Sync(); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// LoadFromStore reads a snapshot from store. Memory-mapped blobs (local
// files) are decoded in place; remote blobs are fetched in one read.
func LoadFromStore[EV, VV, GV any](ctx context.Context, store blobstore.BlobStore, name string, optFns ...func(*Options)) (g *csrgraph.Graph[EV, VV, GV], err error) {
	opts := applyOptions(optFns...)

	start := time.Now()
	var size int64
	defer func() {
		opts.Metrics.RecordSnapshotLoad(size, time.Since(start), err)
		opts.Logger.LogSnapshotLoad(name, size, err)
	}()

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = blob.Close() }()

	var data []byte
	if m, ok := blob.(blobstore.Mappable); ok {
		data, err = m.Bytes()
	} else {
		data, err = blobstore.ReadAll(ctx, blob)
	}
	if err != nil {
		return nil, err
	}

	size = int64(len(data))
	return Read[EV, VV, GV](bytes.NewReader(data), opts.GraphOptions...)
}
