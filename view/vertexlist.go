// Package view provides lazy vertex enumerations over graph storage.
//
// A vertex enumeration yields (id, vertex) pairs in ascending id order. It
// works over any vertex storage held in a slice, which covers the row index
// of a csrgraph.Graph as well as its vertex value slice. Enumerations are
// pull-based iterators: nothing is materialized, and ranging over the same
// enumeration twice restarts it from the beginning.
package view

import "iter"

// Lister is satisfied by graph types that expose their vertex storage as a
// slice, such as *csrgraph.Graph via Vertices().
type Lister[V any] interface {
	Vertices() []V
}

// Refs enumerates vs as (id, reference) pairs. The references point into vs,
// so mutations through them are visible to the owner.
func Refs[V any](vs []V) iter.Seq2[uint32, *V] {
	return RefsFrom(vs, 0)
}

// RefsFrom is Refs with an explicit id for the first element. Use it to
// enumerate a sub-range of a larger storage without losing the original ids:
//
//	view.RefsFrom(g.Vertices()[2:5], 2)
func RefsFrom[V any](vs []V, startAt uint32) iter.Seq2[uint32, *V] {
	return func(yield func(uint32, *V) bool) {
		id := startAt
		for i := range vs {
			if !yield(id, &vs[i]) {
				return
			}
			id++
		}
	}
}

// Values enumerates vs as (id, copy) pairs. Use it when callers must not
// mutate the underlying storage.
func Values[V any](vs []V) iter.Seq2[uint32, V] {
	return ValuesFrom(vs, 0)
}

// ValuesFrom is Values with an explicit id for the first element.
func ValuesFrom[V any](vs []V, startAt uint32) iter.Seq2[uint32, V] {
	return func(yield func(uint32, V) bool) {
		id := startAt
		for i := range vs {
			if !yield(id, vs[i]) {
				return
			}
			id++
		}
	}
}

// Over enumerates the vertices of a whole graph.
func Over[V any](g Lister[V]) iter.Seq2[uint32, *V] {
	return Refs(g.Vertices())
}
