// Package csrgraph provides a compact, load-once graph container in
// compressed sparse row (CSR) form.
//
// A Graph stores the out-edges of every vertex in two contiguous arrays: a
// row index holding, per vertex, the offset of its first outgoing edge, and
// a column index holding the target vertex ids. The edges of vertex u are
// the half-open range colIndex[rowIndex[u].Offset : rowIndex[u+1].Offset].
// Optional per-edge, per-vertex and whole-graph values live in parallel
// arrays alongside the structure; value slots instantiated with a zero-size
// type (such as None) cost no memory at all.
//
// Graphs are built in one shot from an edge stream sorted by source id and
// are immutable afterwards:
//
//	g := csrgraph.New[int, csrgraph.None, csrgraph.None]()
//	g.LoadEdges(csrgraph.EdgesOf([]csrgraph.EdgeRecord[int]{
//		{Source: 0, Target: 1, Value: 10},
//		{Source: 1, Target: 2, Value: 20},
//	}))
//
//	for _, e := range g.OutEdges(0) {
//		_ = e.Target
//	}
//
// Arbitrary caller record types are adapted with lazy projections
// (ProjectEdges, ProjectVertices), so a CSV row or a protobuf message can
// feed the loader without an intermediate slice.
//
// The view subpackage enumerates vertices as (id, reference) pairs, the
// vertexset subpackage provides bitmap vertex sets for external filtering,
// and the snapshot subpackage persists finalized graphs to files or blob
// stores.
package csrgraph
