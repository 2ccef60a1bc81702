// Package snapshot serializes graphs to a sectioned binary format.
//
// A snapshot holds the two CSR index arrays as raw bytes plus the
// codec-encoded value sections, each independently compressed and
// checksummed. The format is designed for mmap-friendly loading: the
// index sections are plain uint32 arrays with no per-element encoding.
//
// Layout:
//
//	header:  magic, version, compression, codec name
//	section: row index (raw uint32)
//	section: column index (raw uint32)
//	section: edge values (codec-encoded)
//	section: vertex values (codec-encoded)
//	section: graph value (codec-encoded)
//
// Each section is framed as [length uint64][crc32 uint32][block], where
// block carries its own compression header.
package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"unsafe"

	"github.com/hupe1980/csrgraph"
	"github.com/hupe1980/csrgraph/codec"
)

const (
	// magicNumber identifies snapshot files (ASCII: "CSG1").
	magicNumber = 0x43534731
	// formatVersion is the current format version (v1.0).
	formatVersion = 0x00010000

	headerSize = 12

	// maxSectionSize bounds a single section frame. A corrupt header can
	// declare any uint64 length; the cap keeps that from turning into an
	// allocation of that size.
	maxSectionSize = 1 << 36
)

var (
	ErrInvalidMagic    = errors.New("invalid magic number")
	ErrInvalidVersion  = errors.New("unsupported snapshot version")
	ErrUnknownCodec    = errors.New("unknown codec")
	ErrSectionTooLarge = errors.New("section length exceeds limit")
)

// ChecksumMismatchError is returned when a section fails integrity
// verification.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

// Options configure snapshot saves and loads. Codec and Compression only
// affect saves; loads resolve both from the snapshot header.
type Options struct {
	// Codec encodes the value sections. Default: codec.Default.
	Codec codec.Codec

	// Compression is applied per section. Default: CompressionZSTD.
	Compression Compression

	// Logger receives save/load events. Default: csrgraph.NoopLogger().
	Logger *csrgraph.Logger

	// Metrics receives save/load measurements.
	// Default: csrgraph.NoopMetricsCollector.
	Metrics csrgraph.MetricsCollector

	// GraphOptions are applied to graphs restored by loads.
	GraphOptions []csrgraph.Option
}

func applyOptions(optFns ...func(*Options)) Options {
	opts := Options{
		Codec:       codec.Default,
		Compression: CompressionZSTD,
		Logger:      csrgraph.NoopLogger(),
		Metrics:     csrgraph.NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = csrgraph.NoopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = csrgraph.NoopMetricsCollector{}
	}
	return opts
}

// WithCodec sets the value codec.
func WithCodec(c codec.Codec) func(*Options) {
	return func(o *Options) {
		o.Codec = c
	}
}

// WithCompression sets the section compression algorithm.
func WithCompression(ct Compression) func(*Options) {
	return func(o *Options) {
		o.Compression = ct
	}
}

// WithLogger sets the logger for save/load operations.
func WithLogger(logger *csrgraph.Logger) func(*Options) {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithMetrics sets the metrics collector for save/load operations.
func WithMetrics(mc csrgraph.MetricsCollector) func(*Options) {
	return func(o *Options) {
		o.Metrics = mc
	}
}

// WithGraphOptions sets the construction options for restored graphs.
func WithGraphOptions(optFns ...csrgraph.Option) func(*Options) {
	return func(o *Options) {
		o.GraphOptions = optFns
	}
}

// Write serializes g to w.
func Write[EV, VV, GV any](w io.Writer, g *csrgraph.Graph[EV, VV, GV], optFns ...func(*Options)) error {
	opts := applyOptions(optFns...)

	name := opts.Codec.Name()
	if len(name) > 255 {
		return fmt.Errorf("codec name too long: %q", name)
	}

	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], magicNumber)
	binary.LittleEndian.PutUint32(hdr[4:], formatVersion)
	hdr[8] = byte(opts.Compression)
	hdr[9] = byte(len(name))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := io.WriteString(w, name); err != nil {
		return err
	}

	if err := writeSection(w, rowsToBytes(g.RowIndex()), opts.Compression); err != nil {
		return fmt.Errorf("write row index: %w", err)
	}
	if err := writeSection(w, colsToBytes(g.ColIndex()), opts.Compression); err != nil {
		return fmt.Errorf("write column index: %w", err)
	}

	var edgePayload []byte
	if vals := g.EdgeValues(); len(vals) > 0 {
		var err error
		edgePayload, err = opts.Codec.Marshal(vals)
		if err != nil {
			return fmt.Errorf("encode edge values: %w", err)
		}
	}
	if err := writeSection(w, edgePayload, opts.Compression); err != nil {
		return fmt.Errorf("write edge values: %w", err)
	}

	var vertPayload []byte
	if vals := g.VertexValues(); len(vals) > 0 {
		var err error
		vertPayload, err = opts.Codec.Marshal(vals)
		if err != nil {
			return fmt.Errorf("encode vertex values: %w", err)
		}
	}
	if err := writeSection(w, vertPayload, opts.Compression); err != nil {
		return fmt.Errorf("write vertex values: %w", err)
	}

	var graphPayload []byte
	var zeroGV GV
	if unsafe.Sizeof(zeroGV) > 0 {
		var err error
		graphPayload, err = opts.Codec.Marshal(g.Value())
		if err != nil {
			return fmt.Errorf("encode graph value: %w", err)
		}
	}
	if err := writeSection(w, graphPayload, opts.Compression); err != nil {
		return fmt.Errorf("write graph value: %w", err)
	}

	return nil
}

// Read deserializes a graph from r. The value codec is resolved from the
// snapshot header; optFns configure the restored graph.
func Read[EV, VV, GV any](r io.Reader, optFns ...csrgraph.Option) (*csrgraph.Graph[EV, VV, GV], error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	if magic := binary.LittleEndian.Uint32(hdr[0:]); magic != magicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, magic)
	}
	if version := binary.LittleEndian.Uint32(hdr[4:]); version != formatVersion {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, version)
	}
	compression := Compression(hdr[8])

	nameBuf := make([]byte, hdr[9])
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return nil, err
	}
	c, ok := codec.ByName(string(nameBuf))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, nameBuf)
	}

	rowBytes, err := readSection(r, compression)
	if err != nil {
		return nil, fmt.Errorf("read row index: %w", err)
	}
	rows, err := bytesToRows(rowBytes)
	if err != nil {
		return nil, err
	}

	colBytes, err := readSection(r, compression)
	if err != nil {
		return nil, fmt.Errorf("read column index: %w", err)
	}
	cols, err := bytesToCols(colBytes)
	if err != nil {
		return nil, err
	}

	edgePayload, err := readSection(r, compression)
	if err != nil {
		return nil, fmt.Errorf("read edge values: %w", err)
	}
	var edgeVals []EV
	if len(edgePayload) > 0 {
		if err := c.Unmarshal(edgePayload, &edgeVals); err != nil {
			return nil, fmt.Errorf("decode edge values: %w", err)
		}
	}

	vertPayload, err := readSection(r, compression)
	if err != nil {
		return nil, fmt.Errorf("read vertex values: %w", err)
	}
	var vertVals []VV
	if len(vertPayload) > 0 {
		if err := c.Unmarshal(vertPayload, &vertVals); err != nil {
			return nil, fmt.Errorf("decode vertex values: %w", err)
		}
	}

	graphPayload, err := readSection(r, compression)
	if err != nil {
		return nil, fmt.Errorf("read graph value: %w", err)
	}
	var graphVal GV
	if len(graphPayload) > 0 {
		if err := c.Unmarshal(graphPayload, &graphVal); err != nil {
			return nil, fmt.Errorf("decode graph value: %w", err)
		}
	}

	return csrgraph.Restore[EV, VV, GV](rows, cols, edgeVals, vertVals, graphVal, optFns...)
}

// writeSection frames payload as [length][crc32][block].
func writeSection(w io.Writer, payload []byte, ct Compression) error {
	framed, err := compressBlock(payload, ct)
	if err != nil {
		return err
	}

	var hdr [12]byte
	binary.LittleEndian.PutUint64(hdr[0:], uint64(len(framed)))
	binary.LittleEndian.PutUint32(hdr[8:], crc32.ChecksumIEEE(framed))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err = w.Write(framed)
	return err
}

func readSection(r io.Reader, ct Compression) ([]byte, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	length := binary.LittleEndian.Uint64(hdr[0:])
	want := binary.LittleEndian.Uint32(hdr[8:])
	if length > maxSectionSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrSectionTooLarge, length)
	}

	framed := make([]byte, length)
	if _, err := io.ReadFull(r, framed); err != nil {
		return nil, err
	}
	if got := crc32.ChecksumIEEE(framed); got != want {
		return nil, &ChecksumMismatchError{Expected: want, Actual: got}
	}
	return decompressBlock(framed, ct)
}

// countingWriter tracks the number of bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
