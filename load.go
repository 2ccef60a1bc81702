package csrgraph

import (
	"iter"
	"time"
)

// LoadEdges populates the graph from an edge stream sorted by source id.
// The stream is consumed exactly once. Skipped source ids become vertices
// with empty edge ranges, and any vertex referenced only as a target still
// receives a valid range. An empty stream leaves the graph empty.
//
// Contract violations (loading twice, unsorted stream) panic. Use
// LoadEdgesChecked when the stream comes from an untrusted source.
func (g *Graph[EV, VV, GV]) LoadEdges(edges iter.Seq[EdgeRecord[EV]], optFns ...LoadOption) {
	if err := g.loadEdges(edges, applyLoadOptions(optFns)); err != nil {
		panic(err)
	}
}

// LoadEdgesChecked is LoadEdges returning an error instead of panicking:
// ErrAlreadyLoaded for a second load, *UnsortedEdgeError for an out-of-order
// stream. On error the graph is left partially built and must be discarded.
func (g *Graph[EV, VV, GV]) LoadEdgesChecked(edges iter.Seq[EdgeRecord[EV]], optFns ...LoadOption) error {
	return g.loadEdges(edges, applyLoadOptions(optFns))
}

func (g *Graph[EV, VV, GV]) loadEdges(edges iter.Seq[EdgeRecord[EV]], lo loadOptions) (err error) {
	start := time.Now()
	count := 0
	defer func() {
		g.metrics.RecordLoadEdges(count, time.Since(start), err)
		g.logger.LogLoadEdges(g.NumVertices(), count, err)
	}()

	if len(g.rowIndex) > 0 || len(g.colIndex) > 0 {
		return ErrAlreadyLoaded
	}

	if lo.vertexCountHint > 0 {
		g.rowIndex = make([]Row, 0, lo.vertexCountHint+1)
	}
	if lo.edgeCountHint > 0 {
		g.colIndex = make([]Col, 0, lo.edgeCountHint)
		g.edgeVals.Reserve(lo.edgeCountHint)
	}

	var lastUID, maxVID VID
	for e := range edges {
		if e.Source < lastUID {
			return &UnsortedEdgeError{Index: count, Source: e.Source, Prev: lastUID}
		}
		lastUID = e.Source
		if e.Target > maxVID {
			maxVID = e.Target
		}
		// Open rows up to and including this source. Skipped sources point
		// at the current tail, i.e. an empty edge range.
		for VID(len(g.rowIndex)) <= e.Source {
			g.rowIndex = append(g.rowIndex, Row{Offset: EIndex(len(g.colIndex))})
		}
		g.colIndex = append(g.colIndex, Col{Target: e.Target})
		g.edgeVals.Append(e.Value)
		count++
	}

	// An empty stream does not establish a vertex count.
	if count == 0 {
		g.rowIndex = nil
		g.colIndex = nil
		return nil
	}

	// The final vertex count covers every source row seen, the largest
	// target id and the caller's hint.
	vertexCount := len(g.rowIndex)
	if n := int(maxVID) + 1; n > vertexCount {
		vertexCount = n
	}
	if lo.vertexCountHint > vertexCount {
		vertexCount = lo.vertexCountHint
	}

	// Remaining rows plus the sentinel all point at the edge-list tail.
	for len(g.rowIndex) <= vertexCount {
		g.rowIndex = append(g.rowIndex, Row{Offset: EIndex(len(g.colIndex))})
	}

	// Vertex values loaded beforehand are extended to cover every vertex so
	// value lookups stay in bounds. Never shrunk.
	if n := g.vertVals.Len(); n > 0 && n < vertexCount {
		g.vertVals.Resize(vertexCount)
	}

	return nil
}

// LoadVertices populates vertex values from a stream of (id, value) records.
// May be called before or after LoadEdges; the value store grows to cover
// the largest id or hint and is never shrunk. When edges are already loaded,
// each id must lie inside the established vertex range.
//
// Contract violations panic; use LoadVerticesChecked for untrusted input.
func (g *Graph[EV, VV, GV]) LoadVertices(verts iter.Seq[VertexRecord[VV]], optFns ...LoadOption) {
	if err := g.loadVertices(verts, applyLoadOptions(optFns)); err != nil {
		panic(err)
	}
}

// LoadVerticesChecked is LoadVertices returning *IDOutOfRangeError instead
// of panicking.
func (g *Graph[EV, VV, GV]) LoadVerticesChecked(verts iter.Seq[VertexRecord[VV]], optFns ...LoadOption) error {
	return g.loadVertices(verts, applyLoadOptions(optFns))
}

func (g *Graph[EV, VV, GV]) loadVertices(verts iter.Seq[VertexRecord[VV]], lo loadOptions) (err error) {
	start := time.Now()
	count := 0
	defer func() {
		g.metrics.RecordLoadVertices(count, time.Since(start), err)
		g.logger.LogLoadVertices(count, err)
	}()

	if g.vertVals.Elided() {
		// Values occupy no storage; drain the stream so single-use inputs
		// behave the same either way.
		for range verts {
			count++
		}
		return nil
	}

	loaded := g.Loaded()
	if n := lo.vertexCountHint; n > g.vertVals.Len() {
		if loaded && n > g.NumVertices() {
			n = g.NumVertices()
		}
		g.vertVals.Resize(n)
	}

	for v := range verts {
		if int(v.ID) >= g.vertVals.Len() {
			if loaded && int(v.ID) >= g.NumVertices() {
				return &IDOutOfRangeError{ID: v.ID, Size: g.NumVertices()}
			}
			g.vertVals.Resize(int(v.ID) + 1)
		}
		g.vertVals.Set(int(v.ID), v.Value)
		count++
	}

	return nil
}

// Load populates the graph from both streams: edges first, then vertex
// values. Either stream may be nil.
func (g *Graph[EV, VV, GV]) Load(edges iter.Seq[EdgeRecord[EV]], verts iter.Seq[VertexRecord[VV]], optFns ...LoadOption) {
	if err := g.LoadChecked(edges, verts, optFns...); err != nil {
		panic(err)
	}
}

// LoadChecked is Load returning an error instead of panicking.
func (g *Graph[EV, VV, GV]) LoadChecked(edges iter.Seq[EdgeRecord[EV]], verts iter.Seq[VertexRecord[VV]], optFns ...LoadOption) error {
	lo := applyLoadOptions(optFns)
	if edges != nil {
		if err := g.loadEdges(edges, lo); err != nil {
			return err
		}
	}
	if verts != nil {
		if err := g.loadVertices(verts, lo); err != nil {
			return err
		}
	}
	return nil
}
