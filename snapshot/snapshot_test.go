package snapshot

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/csrgraph"
	"github.com/hupe1980/csrgraph/blobstore"
	"github.com/hupe1980/csrgraph/codec"
)

type routeMeta struct {
	Name string `json:"name"`
}

func buildGraph(t *testing.T) *csrgraph.Graph[float64, string, routeMeta] {
	t.Helper()

	g := csrgraph.NewWithValue[float64, string, routeMeta](routeMeta{Name: "routes"})
	g.LoadEdges(csrgraph.EdgesOf([]csrgraph.EdgeRecord[float64]{
		{Source: 0, Target: 1, Value: 85.0},
		{Source: 0, Target: 2, Value: 217.0},
		{Source: 1, Target: 3, Value: 173.0},
		{Source: 2, Target: 3, Value: 103.0},
	}))
	g.LoadVertices(csrgraph.VerticesOf([]csrgraph.VertexRecord[string]{
		{ID: 0, Value: "Frankfurt"},
		{ID: 1, Value: "Mannheim"},
		{ID: 2, Value: "Würzburg"},
		{ID: 3, Value: "Stuttgart"},
	}))
	return g
}

func requireSameGraph(t *testing.T, want, got *csrgraph.Graph[float64, string, routeMeta]) {
	t.Helper()

	require.Equal(t, want.NumVertices(), got.NumVertices())
	require.Equal(t, want.NumEdges(), got.NumEdges())
	require.Equal(t, want.RowIndex(), got.RowIndex())
	require.Equal(t, want.ColIndex(), got.ColIndex())
	require.Equal(t, want.EdgeValues(), got.EdgeValues())
	require.Equal(t, want.VertexValues(), got.VertexValues())
	require.Equal(t, *want.Value(), *got.Value())
}

func TestRoundTrip(t *testing.T) {
	g := buildGraph(t)

	compressions := map[string]Compression{
		"none": CompressionNone,
		"lz4":  CompressionLZ4,
		"zstd": CompressionZSTD,
	}
	codecs := map[string]codec.Codec{
		"json":    codec.JSON{},
		"go-json": codec.GoJSON{},
	}

	for cname, ct := range compressions {
		for kname, c := range codecs {
			t.Run(fmt.Sprintf("%s/%s", cname, kname), func(t *testing.T) {
				var buf bytes.Buffer
				require.NoError(t, Write(&buf, g, WithCompression(ct), WithCodec(c)))

				got, err := Read[float64, string, routeMeta](&buf)
				require.NoError(t, err)
				requireSameGraph(t, g, got)
			})
		}
	}
}

func TestRoundTripEmptyGraph(t *testing.T) {
	g := csrgraph.New[float64, string, routeMeta]()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g))

	got, err := Read[float64, string, routeMeta](&buf)
	require.NoError(t, err)
	require.False(t, got.Loaded())
	require.Equal(t, 0, got.NumVertices())
	require.Equal(t, 0, got.NumEdges())
}

func TestRoundTripElidedValues(t *testing.T) {
	g := csrgraph.New[csrgraph.None, csrgraph.None, csrgraph.None]()
	g.LoadEdges(csrgraph.EdgesOf([]csrgraph.EdgeRecord[csrgraph.None]{
		{Source: 0, Target: 1},
		{Source: 1, Target: 0},
	}))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g))

	got, err := Read[csrgraph.None, csrgraph.None, csrgraph.None](&buf)
	require.NoError(t, err)
	require.Equal(t, 2, got.NumVertices())
	require.Equal(t, 2, got.NumEdges())
	require.False(t, got.HasEdgeValues())
	require.Equal(t, g.RowIndex(), got.RowIndex())
	require.Equal(t, g.ColIndex(), got.ColIndex())
}

func TestReadRejectsCorruption(t *testing.T) {
	g := buildGraph(t)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g))
	data := buf.Bytes()

	t.Run("bad magic", func(t *testing.T) {
		bad := bytes.Clone(data)
		bad[0] ^= 0xff
		_, err := Read[float64, string, routeMeta](bytes.NewReader(bad))
		require.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("bad version", func(t *testing.T) {
		bad := bytes.Clone(data)
		bad[4] ^= 0xff
		_, err := Read[float64, string, routeMeta](bytes.NewReader(bad))
		require.ErrorIs(t, err, ErrInvalidVersion)
	})

	t.Run("flipped payload byte", func(t *testing.T) {
		bad := bytes.Clone(data)
		bad[len(bad)-1] ^= 0xff
		_, err := Read[float64, string, routeMeta](bytes.NewReader(bad))
		var mismatch *ChecksumMismatchError
		require.ErrorAs(t, err, &mismatch)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := Read[float64, string, routeMeta](bytes.NewReader(data[:len(data)/2]))
		require.Error(t, err)
	})

	t.Run("unknown codec", func(t *testing.T) {
		bad := bytes.Clone(data)
		// Codec name starts right after the fixed header.
		bad[headerSize] ^= 0xff
		_, err := Read[float64, string, routeMeta](bytes.NewReader(bad))
		require.ErrorIs(t, err, ErrUnknownCodec)
	})

	t.Run("oversized section length", func(t *testing.T) {
		// Valid header and codec name, then a section frame declaring an
		// absurd length. Must error out before allocating.
		bad := append([]byte(nil), data[:headerSize+int(data[9])]...)
		var sec [12]byte
		binary.LittleEndian.PutUint64(sec[:], 1<<62)
		bad = append(bad, sec[:]...)
		_, err := Read[float64, string, routeMeta](bytes.NewReader(bad))
		require.ErrorIs(t, err, ErrSectionTooLarge)
	})

	t.Run("oversized block size", func(t *testing.T) {
		// Declared uncompressed size near the uint32 maximum, valid CRC.
		// The bounds check must not wrap.
		var raw bytes.Buffer
		require.NoError(t, Write(&raw, g, WithCompression(CompressionNone)))
		bad := raw.Bytes()

		sec := headerSize + int(bad[9])
		length := binary.LittleEndian.Uint64(bad[sec:])
		framed := bad[sec+12 : sec+12+int(length)]
		binary.LittleEndian.PutUint32(framed, 0xFFFFFFFC)
		binary.LittleEndian.PutUint32(bad[sec+8:], crc32.ChecksumIEEE(framed))

		_, err := Read[float64, string, routeMeta](bytes.NewReader(bad))
		require.ErrorContains(t, err, "block data too small")
	})
}

func TestDecompressBlockSizeOverflow(t *testing.T) {
	blk := make([]byte, blockHeaderSize+4)

	binary.LittleEndian.PutUint32(blk[0:], 0xFFFFFFFC)
	binary.LittleEndian.PutUint32(blk[4:], 0)
	_, err := decompressBlock(blk, CompressionNone)
	require.ErrorContains(t, err, "block data too small")

	binary.LittleEndian.PutUint32(blk[0:], 16)
	binary.LittleEndian.PutUint32(blk[4:], 0xFFFFFFFC)
	_, err = decompressBlock(blk, CompressionZSTD)
	require.ErrorContains(t, err, "compressed block data too small")
}

func TestSaveToFileLoadFromFile(t *testing.T) {
	g := buildGraph(t)
	path := filepath.Join(t.TempDir(), "routes.csg")

	require.NoError(t, SaveToFile(path, g))

	got, err := LoadFromFile[float64, string, routeMeta](path)
	require.NoError(t, err)
	requireSameGraph(t, g, got)

	// Overwrite is atomic; the second snapshot fully replaces the first.
	g2 := csrgraph.NewWithValue[float64, string, routeMeta](routeMeta{Name: "routes-v2"})
	g2.LoadEdges(csrgraph.EdgesOf([]csrgraph.EdgeRecord[float64]{
		{Source: 0, Target: 1, Value: 1.0},
	}))
	require.NoError(t, SaveToFile(path, g2))

	got2, err := LoadFromFile[float64, string, routeMeta](path)
	require.NoError(t, err)
	require.Equal(t, "routes-v2", got2.Value().Name)
	require.Equal(t, 1, got2.NumEdges())
}

func TestSaveLoadMetrics(t *testing.T) {
	g := buildGraph(t)
	path := filepath.Join(t.TempDir(), "routes.csg")

	metrics := &csrgraph.BasicMetricsCollector{}
	require.NoError(t, SaveToFile(path, g, WithMetrics(metrics)))

	_, err := LoadFromFile[float64, string, routeMeta](path, WithMetrics(metrics))
	require.NoError(t, err)

	stats := metrics.GetStats()
	require.Equal(t, int64(1), stats.SnapshotSaveCount)
	require.Zero(t, stats.SnapshotSaveErrors)
	require.Equal(t, int64(1), stats.SnapshotLoadCount)
	require.Zero(t, stats.SnapshotLoadErrors)
	require.Positive(t, stats.SnapshotSaveBytes)
	require.Equal(t, stats.SnapshotSaveBytes, stats.SnapshotLoadBytes)

	// Load failures are still counted.
	_, err = LoadFromFile[float64, string, routeMeta](
		filepath.Join(t.TempDir(), "missing.csg"), WithMetrics(metrics))
	require.Error(t, err)
	require.Equal(t, int64(1), metrics.GetStats().SnapshotLoadErrors)
}

func TestSaveToStoreLoadFromStore(t *testing.T) {
	ctx := context.Background()
	g := buildGraph(t)

	t.Run("memory", func(t *testing.T) {
		store := blobstore.NewMemoryStore()
		require.NoError(t, SaveToStore(ctx, store, "routes.csg", g))

		got, err := LoadFromStore[float64, string, routeMeta](ctx, store, "routes.csg")
		require.NoError(t, err)
		requireSameGraph(t, g, got)
	})

	t.Run("local mmap", func(t *testing.T) {
		store := blobstore.NewLocalStore(t.TempDir())
		require.NoError(t, SaveToStore(ctx, store, "routes.csg", g))

		got, err := LoadFromStore[float64, string, routeMeta](ctx, store, "routes.csg")
		require.NoError(t, err)
		requireSameGraph(t, g, got)
	})

	t.Run("missing blob", func(t *testing.T) {
		store := blobstore.NewMemoryStore()
		_, err := LoadFromStore[float64, string, routeMeta](ctx, store, "missing.csg")
		require.True(t, errors.Is(err, blobstore.ErrNotFound))
	})
}
