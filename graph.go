package csrgraph

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/hupe1980/csrgraph/internal/valuestore"
)

// ErrInvalidStructure is returned by Restore when the given arrays do not
// form a valid CSR structure.
var ErrInvalidStructure = errors.New("invalid graph structure")

// Graph is an immutable-after-load directed graph in compressed sparse row
// form, parameterized over the edge value type EV, the vertex value type VV
// and the graph value type GV. Use None for any slot that carries no value;
// such slots allocate nothing.
//
// A Graph is not safe for concurrent use during loading. Once loaded it is
// read-only and may be shared freely.
type Graph[EV, VV, GV any] struct {
	rowIndex []Row // one entry per vertex plus a trailing sentinel
	colIndex []Col
	edgeVals *valuestore.Store[EV]
	vertVals *valuestore.Store[VV]
	graphVal GV

	logger  *Logger
	metrics MetricsCollector
}

// New creates an empty graph. Call LoadEdges, LoadVertices or Load to
// populate it.
func New[EV, VV, GV any](optFns ...Option) *Graph[EV, VV, GV] {
	o := applyOptions(optFns)
	return &Graph[EV, VV, GV]{
		edgeVals: valuestore.New[EV](),
		vertVals: valuestore.New[VV](),
		logger:   o.logger,
		metrics:  o.metricsCollector,
	}
}

// NewWithValue creates an empty graph carrying a graph-level value.
func NewWithValue[EV, VV, GV any](graphVal GV, optFns ...Option) *Graph[EV, VV, GV] {
	g := New[EV, VV, GV](optFns...)
	g.graphVal = graphVal
	return g
}

// NewFromEdges creates a graph from a slice of edge records sorted by source
// id. The slice length and last element are used for exact pre-reservation.
func NewFromEdges[EV, VV, GV any](edges []EdgeRecord[EV], optFns ...Option) *Graph[EV, VV, GV] {
	g := New[EV, VV, GV](optFns...)
	lo := []LoadOption{WithEdgeCountHint(len(edges))}
	if n := len(edges); n > 0 {
		lo = append(lo, WithVertexCountHint(int(edges[n-1].Source)+1))
	}
	g.LoadEdges(EdgesOf(edges), lo...)
	return g
}

// NewFromEdgesAndVertices creates a graph from edge and vertex record slices.
func NewFromEdgesAndVertices[EV, VV, GV any](edges []EdgeRecord[EV], verts []VertexRecord[VV], optFns ...Option) *Graph[EV, VV, GV] {
	g := NewFromEdges[EV, VV, GV](edges, optFns...)
	g.LoadVertices(VerticesOf(verts), WithVertexCountHint(len(verts)))
	return g
}

// Loaded reports whether edges have been loaded. A graph whose edge load saw
// an empty stream counts as not loaded and may be loaded again.
func (g *Graph[EV, VV, GV]) Loaded() bool {
	return len(g.rowIndex) > 0
}

// NumVertices returns the number of vertices.
func (g *Graph[EV, VV, GV]) NumVertices() int {
	if len(g.rowIndex) == 0 {
		return 0
	}
	return len(g.rowIndex) - 1
}

// NumEdges returns the number of edges.
func (g *Graph[EV, VV, GV]) NumEdges() int {
	return len(g.colIndex)
}

// Vertices returns the vertex rows in id order, excluding the sentinel.
// The slice borrows the graph's storage.
func (g *Graph[EV, VV, GV]) Vertices() []Row {
	if len(g.rowIndex) == 0 {
		return nil
	}
	return g.rowIndex[:len(g.rowIndex)-1]
}

// At returns the row of the given vertex. Panics if id is out of range.
func (g *Graph[EV, VV, GV]) At(id VID) *Row {
	if int(id) >= g.NumVertices() {
		panic(fmt.Sprintf("csrgraph: vertex id %d out of range [0, %d)", id, g.NumVertices()))
	}
	return &g.rowIndex[id]
}

// FindVertex returns the row of the given vertex, or nil if id is out of
// range.
func (g *Graph[EV, VV, GV]) FindVertex(id VID) *Row {
	if int(id) >= g.NumVertices() {
		return nil
	}
	return &g.rowIndex[id]
}

// VertexID returns the id of a vertex given a reference into Vertices().
// Rows are contiguous, so the id is recovered from the pointer offset.
func (g *Graph[EV, VV, GV]) VertexID(u *Row) VID {
	base := unsafe.Pointer(unsafe.SliceData(g.rowIndex))
	return VID((uintptr(unsafe.Pointer(u)) - uintptr(base)) / unsafe.Sizeof(Row{}))
}

// OutEdges returns the outgoing edges of the given vertex as a borrowed
// subslice of the column index. Target-only vertices yield an empty slice.
func (g *Graph[EV, VV, GV]) OutEdges(id VID) []Col {
	return g.colIndex[g.rowIndex[id].Offset:g.rowIndex[id+1].Offset]
}

// OutEdgesOf is OutEdges addressed by vertex reference.
func (g *Graph[EV, VV, GV]) OutEdgesOf(u *Row) []Col {
	return g.OutEdges(g.VertexID(u))
}

// Degree returns the out-degree of the given vertex.
func (g *Graph[EV, VV, GV]) Degree(id VID) int {
	return int(g.rowIndex[id+1].Offset - g.rowIndex[id].Offset)
}

// EdgeIndex returns the position of an edge given a reference into the
// column index.
func (g *Graph[EV, VV, GV]) EdgeIndex(e *Col) EIndex {
	base := unsafe.Pointer(unsafe.SliceData(g.colIndex))
	return EIndex((uintptr(unsafe.Pointer(e)) - uintptr(base)) / unsafe.Sizeof(Col{}))
}

// TargetID returns the target vertex id of an edge.
func (g *Graph[EV, VV, GV]) TargetID(e *Col) VID {
	return e.Target
}

// Target returns the row of an edge's target vertex.
func (g *Graph[EV, VV, GV]) Target(e *Col) *Row {
	return &g.rowIndex[e.Target]
}

// VertexValue returns a pointer to the value of the given vertex, or nil if
// vertex values are elided or none have been loaded for that id.
func (g *Graph[EV, VV, GV]) VertexValue(id VID) *VV {
	if int(id) >= g.vertVals.Len() {
		return nil
	}
	return g.vertVals.At(int(id))
}

// VertexValueOf is VertexValue addressed by vertex reference.
func (g *Graph[EV, VV, GV]) VertexValueOf(u *Row) *VV {
	return g.VertexValue(g.VertexID(u))
}

// EdgeValue returns a pointer to the value of an edge, or nil if edge values
// are elided.
func (g *Graph[EV, VV, GV]) EdgeValue(e *Col) *EV {
	return g.EdgeValueAt(g.EdgeIndex(e))
}

// EdgeValueAt returns a pointer to the value of the edge at the given
// position, or nil if edge values are elided.
func (g *Graph[EV, VV, GV]) EdgeValueAt(i EIndex) *EV {
	if int(i) >= g.edgeVals.Len() {
		return nil
	}
	return g.edgeVals.At(int(i))
}

// VertexValues returns the vertex value slice, nil when elided. The slice
// borrows the graph's storage.
func (g *Graph[EV, VV, GV]) VertexValues() []VV {
	return g.vertVals.Values()
}

// EdgeValues returns the edge value slice, nil when elided.
func (g *Graph[EV, VV, GV]) EdgeValues() []EV {
	return g.edgeVals.Values()
}

// HasVertexValues reports whether the vertex value type occupies storage.
func (g *Graph[EV, VV, GV]) HasVertexValues() bool {
	return !g.vertVals.Elided()
}

// HasEdgeValues reports whether the edge value type occupies storage.
func (g *Graph[EV, VV, GV]) HasEdgeValues() bool {
	return !g.edgeVals.Elided()
}

// Value returns a pointer to the graph-level value.
func (g *Graph[EV, VV, GV]) Value() *GV {
	return &g.graphVal
}

// RowIndex returns the full row index including the trailing sentinel.
// Intended for persistence; the slice borrows the graph's storage.
func (g *Graph[EV, VV, GV]) RowIndex() []Row {
	return g.rowIndex
}

// ColIndex returns the full column index. Intended for persistence.
func (g *Graph[EV, VV, GV]) ColIndex() []Col {
	return g.colIndex
}

// Restore rebuilds a loaded graph from previously exported arrays, as
// produced by RowIndex, ColIndex, EdgeValues, VertexValues and Value. The
// arrays are validated and adopted without copying.
func Restore[EV, VV, GV any](rows []Row, cols []Col, edgeVals []EV, vertVals []VV, graphVal GV, optFns ...Option) (*Graph[EV, VV, GV], error) {
	if len(rows) > 0 {
		if rows[len(rows)-1].Offset != EIndex(len(cols)) {
			return nil, fmt.Errorf("%w: sentinel offset %d != edge count %d", ErrInvalidStructure, rows[len(rows)-1].Offset, len(cols))
		}
		n := VID(len(rows) - 1)
		for i := 1; i < len(rows); i++ {
			if rows[i].Offset < rows[i-1].Offset {
				return nil, fmt.Errorf("%w: row offsets decrease at vertex %d", ErrInvalidStructure, i)
			}
		}
		for i, c := range cols {
			if c.Target >= n {
				return nil, fmt.Errorf("%w: edge %d targets vertex %d out of range [0, %d)", ErrInvalidStructure, i, c.Target, n)
			}
		}
	} else if len(cols) > 0 {
		return nil, fmt.Errorf("%w: %d edges without row index", ErrInvalidStructure, len(cols))
	}

	g := NewWithValue[EV, VV, GV](graphVal, optFns...)
	if !g.edgeVals.Elided() && len(edgeVals) != 0 && len(edgeVals) != len(cols) {
		return nil, fmt.Errorf("%w: %d edge values for %d edges", ErrInvalidStructure, len(edgeVals), len(cols))
	}
	numVertices := max(len(rows)-1, 0)
	if !g.vertVals.Elided() && len(vertVals) > numVertices {
		return nil, fmt.Errorf("%w: %d vertex values for %d vertices", ErrInvalidStructure, len(vertVals), numVertices)
	}
	g.rowIndex = rows
	g.colIndex = cols
	g.edgeVals.Replace(edgeVals)
	g.vertVals.Replace(vertVals)
	return g, nil
}
