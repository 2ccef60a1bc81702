package csrgraph

import "iter"

// VID identifies a vertex. Ids are dense: a graph with n vertices uses
// exactly the ids 0..n-1.
type VID = uint32

// EIndex identifies an edge by its position in the column index.
type EIndex = uint32

// None is the value type for graphs that carry no value in a slot.
// Value storage instantiated with None (or any other zero-size type)
// allocates nothing.
type None = struct{}

// Row is a row-index entry: the offset of the vertex's first outgoing edge
// in the column index. The row index carries one trailing sentinel Row whose
// Offset equals the total edge count, so the edge range of vertex u is
// always [rows[u].Offset, rows[u+1].Offset).
type Row struct {
	Offset EIndex
}

// Col is a column-index entry: the target vertex id of one edge.
type Col struct {
	Target VID
}

// EdgeRecord is the canonical edge representation consumed by the loader.
type EdgeRecord[EV any] struct {
	Source VID
	Target VID
	Value  EV
}

// VertexRecord is the canonical vertex representation consumed by the loader.
type VertexRecord[VV any] struct {
	ID    VID
	Value VV
}

// ProjectEdges adapts a stream of arbitrary records into edge records by
// applying proj lazily, one element at a time. No intermediate slice is
// built; the result is restartable iff the input is.
func ProjectEdges[T, EV any](seq iter.Seq[T], proj func(T) EdgeRecord[EV]) iter.Seq[EdgeRecord[EV]] {
	return func(yield func(EdgeRecord[EV]) bool) {
		for v := range seq {
			if !yield(proj(v)) {
				return
			}
		}
	}
}

// ProjectVertices adapts a stream of arbitrary records into vertex records.
// See ProjectEdges.
func ProjectVertices[T, VV any](seq iter.Seq[T], proj func(T) VertexRecord[VV]) iter.Seq[VertexRecord[VV]] {
	return func(yield func(VertexRecord[VV]) bool) {
		for v := range seq {
			if !yield(proj(v)) {
				return
			}
		}
	}
}

// EdgesOf returns a restartable stream over a slice of edge records.
func EdgesOf[EV any](edges []EdgeRecord[EV]) iter.Seq[EdgeRecord[EV]] {
	return func(yield func(EdgeRecord[EV]) bool) {
		for _, e := range edges {
			if !yield(e) {
				return
			}
		}
	}
}

// VerticesOf returns a restartable stream over a slice of vertex records.
func VerticesOf[VV any](verts []VertexRecord[VV]) iter.Seq[VertexRecord[VV]] {
	return func(yield func(VertexRecord[VV]) bool) {
		for _, v := range verts {
			if !yield(v) {
				return
			}
		}
	}
}

// MaxVertexID scans an edge stream and returns the largest vertex id seen on
// either endpoint together with the edge count. Callers that can afford a
// second pass use it for exact pre-reservation via load hints.
func MaxVertexID[EV any](seq iter.Seq[EdgeRecord[EV]]) (maxID VID, edgeCount int) {
	for e := range seq {
		if e.Source > maxID {
			maxID = e.Source
		}
		if e.Target > maxID {
			maxID = e.Target
		}
		edgeCount++
	}
	return maxID, edgeCount
}
