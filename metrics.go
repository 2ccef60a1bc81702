package csrgraph

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordLoadEdges is called after each edge load.
	// edges is the number of edges ingested, duration the total time taken,
	// err is nil if successful.
	RecordLoadEdges(edges int, duration time.Duration, err error)

	// RecordLoadVertices is called after each vertex value load.
	RecordLoadVertices(count int, duration time.Duration, err error)

	// RecordSnapshotSave is called after each snapshot write.
	// bytes is the encoded snapshot size.
	RecordSnapshotSave(bytes int64, duration time.Duration, err error)

	// RecordSnapshotLoad is called after each snapshot read.
	RecordSnapshotLoad(bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoadEdges(int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordLoadVertices(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordSnapshotSave(int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordSnapshotLoad(int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadEdgesCount      atomic.Int64
	LoadEdgesErrors     atomic.Int64
	LoadEdgesItems      atomic.Int64
	LoadEdgesTotalNanos atomic.Int64
	LoadVerticesCount   atomic.Int64
	LoadVerticesErrors  atomic.Int64
	LoadVerticesItems   atomic.Int64
	SnapshotSaveCount   atomic.Int64
	SnapshotSaveErrors  atomic.Int64
	SnapshotSaveBytes   atomic.Int64
	SnapshotLoadCount   atomic.Int64
	SnapshotLoadErrors  atomic.Int64
	SnapshotLoadBytes   atomic.Int64
}

// RecordLoadEdges implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoadEdges(edges int, duration time.Duration, err error) {
	b.LoadEdgesCount.Add(1)
	b.LoadEdgesItems.Add(int64(edges))
	b.LoadEdgesTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadEdgesErrors.Add(1)
	}
}

// RecordLoadVertices implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoadVertices(count int, duration time.Duration, err error) {
	b.LoadVerticesCount.Add(1)
	b.LoadVerticesItems.Add(int64(count))
	if err != nil {
		b.LoadVerticesErrors.Add(1)
	}
}

// RecordSnapshotSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshotSave(bytes int64, _ time.Duration, err error) {
	b.SnapshotSaveCount.Add(1)
	b.SnapshotSaveBytes.Add(bytes)
	if err != nil {
		b.SnapshotSaveErrors.Add(1)
	}
}

// RecordSnapshotLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshotLoad(bytes int64, _ time.Duration, err error) {
	b.SnapshotLoadCount.Add(1)
	b.SnapshotLoadBytes.Add(bytes)
	if err != nil {
		b.SnapshotLoadErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadEdgesCount:     b.LoadEdgesCount.Load(),
		LoadEdgesErrors:    b.LoadEdgesErrors.Load(),
		LoadEdgesItems:     b.LoadEdgesItems.Load(),
		LoadEdgesAvgNanos:  b.avgLoadEdgesNanos(),
		LoadVerticesCount:  b.LoadVerticesCount.Load(),
		LoadVerticesErrors: b.LoadVerticesErrors.Load(),
		LoadVerticesItems:  b.LoadVerticesItems.Load(),
		SnapshotSaveCount:  b.SnapshotSaveCount.Load(),
		SnapshotSaveErrors: b.SnapshotSaveErrors.Load(),
		SnapshotSaveBytes:  b.SnapshotSaveBytes.Load(),
		SnapshotLoadCount:  b.SnapshotLoadCount.Load(),
		SnapshotLoadErrors: b.SnapshotLoadErrors.Load(),
		SnapshotLoadBytes:  b.SnapshotLoadBytes.Load(),
	}
}

func (b *BasicMetricsCollector) avgLoadEdgesNanos() int64 {
	count := b.LoadEdgesCount.Load()
	if count == 0 {
		return 0
	}
	return b.LoadEdgesTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadEdgesCount     int64
	LoadEdgesErrors    int64
	LoadEdgesItems     int64
	LoadEdgesAvgNanos  int64
	LoadVerticesCount  int64
	LoadVerticesErrors int64
	LoadVerticesItems  int64
	SnapshotSaveCount  int64
	SnapshotSaveErrors int64
	SnapshotSaveBytes  int64
	SnapshotLoadCount  int64
	SnapshotLoadErrors int64
	SnapshotLoadBytes  int64
}
