// Package vertexset provides compressed bitmap sets of vertex ids.
//
// Sets are the companion to the view package: algorithms and callers mark
// vertices of interest in a Set and then enumerate the graph's vertex
// storage filtered down to the members, with the original ids preserved.
package vertexset

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// Set is a set of vertex ids backed by a roaring bitmap.
// Not safe for concurrent mutation.
type Set struct {
	rb *roaring.Bitmap
}

// New creates an empty set.
func New() *Set {
	return &Set{rb: roaring.New()}
}

// Of creates a set holding the given ids.
func Of(ids ...uint32) *Set {
	return &Set{rb: roaring.BitmapOf(ids...)}
}

// FromSeq creates a set from an id stream.
func FromSeq(seq iter.Seq[uint32]) *Set {
	s := New()
	for id := range seq {
		s.rb.Add(id)
	}
	return s
}

// Add adds a vertex id to the set.
func (s *Set) Add(id uint32) {
	s.rb.Add(id)
}

// AddRange adds all ids in the half-open range [lo, hi).
func (s *Set) AddRange(lo, hi uint32) {
	s.rb.AddRange(uint64(lo), uint64(hi))
}

// Remove removes a vertex id from the set.
func (s *Set) Remove(id uint32) {
	s.rb.Remove(id)
}

// Contains checks whether a vertex id is in the set.
func (s *Set) Contains(id uint32) bool {
	return s.rb.Contains(id)
}

// Cardinality returns the number of ids in the set.
func (s *Set) Cardinality() uint64 {
	return s.rb.GetCardinality()
}

// IsEmpty checks whether the set is empty.
func (s *Set) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// Clone returns a deep copy of the set.
func (s *Set) Clone() *Set {
	return &Set{rb: s.rb.Clone()}
}

// And modifies the set to contain only ids present in both sets.
func (s *Set) And(other *Set) {
	s.rb.And(other.rb)
}

// Or modifies the set to contain ids present in either set.
func (s *Set) Or(other *Set) {
	s.rb.Or(other.rb)
}

// AndNot modifies the set to remove ids present in other.
func (s *Set) AndNot(other *Set) {
	s.rb.AndNot(other.rb)
}

// Clear removes all ids from the set.
func (s *Set) Clear() {
	s.rb.Clear()
}

// Iterator returns the ids in ascending order.
func (s *Set) Iterator() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// Filter enumerates vs restricted to the members of the set, as (id,
// reference) pairs with the original ids preserved. Ids at or beyond
// len(vs) are skipped.
func Filter[V any](vs []V, s *Set) iter.Seq2[uint32, *V] {
	return func(yield func(uint32, *V) bool) {
		it := s.rb.Iterator()
		for it.HasNext() {
			id := it.Next()
			if int(id) >= len(vs) {
				return
			}
			if !yield(id, &vs[id]) {
				return
			}
		}
	}
}
