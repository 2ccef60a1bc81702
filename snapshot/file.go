package snapshot

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/hupe1980/csrgraph"
	"github.com/hupe1980/csrgraph/internal/mmap"
)

// SaveToFile writes a snapshot of g to path atomically. The snapshot is
// staged in a temp file in the same directory and renamed into place, so
// readers never observe a partial file.
func SaveToFile[EV, VV, GV any](path string, g *csrgraph.Graph[EV, VV, GV], optFns ...func(*Options)) (err error) {
	opts := applyOptions(optFns...)

	start := time.Now()
	cw := &countingWriter{}
	defer func() {
		opts.Metrics.RecordSnapshotSave(cw.n, time.Since(start), err)
		opts.Logger.LogSnapshotSave(path, cw.n, err)
	}()

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	_ = tmp.Chmod(0644)

	cw.w = tmp
	buf := bufio.NewWriterSize(cw, 256*1024)
	if err := Write(buf, g, optFns...); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	tmpName = "" // keep the final file
	return nil
}

// LoadFromFile reads a snapshot through a memory mapping. The mapping is
// released before returning; the graph owns its arrays.
func LoadFromFile[EV, VV, GV any](path string, optFns ...func(*Options)) (g *csrgraph.Graph[EV, VV, GV], err error) {
	opts := applyOptions(optFns...)

	start := time.Now()
	var size int64
	defer func() {
		opts.Metrics.RecordSnapshotLoad(size, time.Since(start), err)
		opts.Logger.LogSnapshotLoad(path, size, err)
	}()

	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = m.Close() }()

	_ = m.Advise(mmap.AccessSequential)

	data := m.Bytes()
	size = int64(len(data))
	return Read[EV, VV, GV](bytes.NewReader(data), opts.GraphOptions...)
}
