package vertexset

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetBasics(t *testing.T) {
	s := New()
	require.True(t, s.IsEmpty())

	s.Add(3)
	s.Add(1)
	s.Add(3)
	require.Equal(t, uint64(2), s.Cardinality())
	require.True(t, s.Contains(3))
	require.False(t, s.Contains(2))

	s.Remove(3)
	require.False(t, s.Contains(3))

	s.Clear()
	require.True(t, s.IsEmpty())
}

func TestSetOps(t *testing.T) {
	a := Of(1, 2, 3)
	b := Of(2, 3, 4)

	and := a.Clone()
	and.And(b)
	require.Equal(t, []uint32{2, 3}, slices.Collect(and.Iterator()))

	or := a.Clone()
	or.Or(b)
	require.Equal(t, []uint32{1, 2, 3, 4}, slices.Collect(or.Iterator()))

	diff := a.Clone()
	diff.AndNot(b)
	require.Equal(t, []uint32{1}, slices.Collect(diff.Iterator()))

	// Originals untouched.
	require.Equal(t, uint64(3), a.Cardinality())
}

func TestIteratorOrder(t *testing.T) {
	s := Of(9, 0, 5)
	require.Equal(t, []uint32{0, 5, 9}, slices.Collect(s.Iterator()))
}

func TestAddRange(t *testing.T) {
	s := New()
	s.AddRange(2, 5)
	require.Equal(t, []uint32{2, 3, 4}, slices.Collect(s.Iterator()))
}

func TestFromSeq(t *testing.T) {
	s := FromSeq(slices.Values([]uint32{4, 4, 1}))
	require.Equal(t, []uint32{1, 4}, slices.Collect(s.Iterator()))
}

func TestFilter(t *testing.T) {
	vs := []string{"a", "b", "c", "d"}
	s := Of(1, 3, 9) // 9 is outside the storage

	var ids []uint32
	var got []string
	for id, v := range Filter(vs, s) {
		ids = append(ids, id)
		got = append(got, *v)
		require.Same(t, &vs[id], v)
	}

	require.Equal(t, []uint32{1, 3}, ids)
	require.Equal(t, []string{"b", "d"}, got)
}
