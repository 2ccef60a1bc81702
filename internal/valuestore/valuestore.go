// Package valuestore provides the parallel value arrays that sit alongside a
// graph's structural indexes. A store instantiated with a zero-size element
// type is elided: it allocates nothing and every operation is a no-op, so
// value-less graphs pay only for their topology.
package valuestore

import "unsafe"

// Store holds values addressed by the same positions as a structural array
// (row positions for vertex values, column positions for edge values).
type Store[T any] struct {
	vals   []T
	elided bool
}

// New creates a store. Elision is decided once, from the element size.
func New[T any]() *Store[T] {
	var zero T
	return &Store[T]{elided: unsafe.Sizeof(zero) == 0}
}

// Elided reports whether the store holds no data because its element type is
// zero-size.
func (s *Store[T]) Elided() bool { return s.elided }

// Len returns the number of stored values. Always 0 when elided.
func (s *Store[T]) Len() int { return len(s.vals) }

// Cap returns the current capacity.
func (s *Store[T]) Cap() int { return cap(s.vals) }

// Empty reports whether the store holds no values.
func (s *Store[T]) Empty() bool { return len(s.vals) == 0 }

// Reserve grows capacity to at least n without changing Len.
func (s *Store[T]) Reserve(n int) {
	if s.elided || n <= cap(s.vals) {
		return
	}
	vals := make([]T, len(s.vals), n)
	copy(vals, s.vals)
	s.vals = vals
}

// Resize sets Len to n. Growth appends zero values; shrinking truncates.
func (s *Store[T]) Resize(n int) {
	if s.elided {
		return
	}
	switch {
	case n <= len(s.vals):
		s.vals = s.vals[:n]
	case n <= cap(s.vals):
		tail := s.vals[len(s.vals):n]
		var zero T
		for i := range tail {
			tail[i] = zero
		}
		s.vals = s.vals[:n]
	default:
		vals := make([]T, n)
		copy(vals, s.vals)
		s.vals = vals
	}
}

// Clear discards all values, keeping capacity.
func (s *Store[T]) Clear() {
	s.vals = s.vals[:0]
}

// Append adds a value at the end.
func (s *Store[T]) Append(v T) {
	if s.elided {
		return
	}
	s.vals = append(s.vals, v)
}

// At returns a pointer to the value at position i, or nil when elided.
// Out-of-range positions panic on non-elided stores.
func (s *Store[T]) At(i int) *T {
	if s.elided {
		return nil
	}
	return &s.vals[i]
}

// Set writes the value at position i. No-op when elided; out-of-range
// positions panic otherwise.
func (s *Store[T]) Set(i int, v T) {
	if s.elided {
		return
	}
	s.vals[i] = v
}

// Values returns the backing slice. Callers must not resize it.
func (s *Store[T]) Values() []T { return s.vals }

// Replace swaps in a fully built value slice. Used by snapshot restore.
func (s *Store[T]) Replace(vals []T) {
	if s.elided {
		return
	}
	s.vals = vals
}
