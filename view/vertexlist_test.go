package view

import (
	"testing"

	"github.com/hupe1980/csrgraph"
	"github.com/stretchr/testify/require"
)

func TestRefs(t *testing.T) {
	vs := []string{"a", "b", "c"}

	var ids []uint32
	var got []string
	for id, v := range Refs(vs) {
		ids = append(ids, id)
		got = append(got, *v)
	}

	require.Equal(t, []uint32{0, 1, 2}, ids)
	require.Equal(t, []string{"a", "b", "c"}, got)
}

func TestRefsMutate(t *testing.T) {
	vs := []int{1, 2, 3}
	for _, v := range Refs(vs) {
		*v *= 10
	}
	require.Equal(t, []int{10, 20, 30}, vs)
}

func TestRefsFrom(t *testing.T) {
	vs := []string{"a", "b", "c", "d", "e"}

	var ids []uint32
	for id, v := range RefsFrom(vs[2:4], 2) {
		ids = append(ids, id)
		require.Same(t, &vs[id], v)
	}
	require.Equal(t, []uint32{2, 3}, ids)
}

func TestValues(t *testing.T) {
	vs := []int{1, 2}

	for _, v := range Values(vs) {
		v *= 10 // copies only
	}
	require.Equal(t, []int{1, 2}, vs)

	var ids []uint32
	for id := range ValuesFrom(vs[1:], 1) {
		ids = append(ids, id)
	}
	require.Equal(t, []uint32{1}, ids)
}

func TestRestartable(t *testing.T) {
	seq := Refs([]int{1, 2, 3})

	for range 2 {
		var ids []uint32
		for id := range seq {
			ids = append(ids, id)
		}
		require.Equal(t, []uint32{0, 1, 2}, ids)
	}
}

func TestEarlyStop(t *testing.T) {
	var ids []uint32
	for id := range Refs(make([]int, 100)) {
		ids = append(ids, id)
		if id == 1 {
			break
		}
	}
	require.Equal(t, []uint32{0, 1}, ids)
}

func TestEmpty(t *testing.T) {
	count := 0
	for range Refs[int](nil) {
		count++
	}
	require.Zero(t, count)
}

func TestOverGraph(t *testing.T) {
	g := csrgraph.NewFromEdges[csrgraph.None, csrgraph.None, csrgraph.None]([]csrgraph.EdgeRecord[csrgraph.None]{
		{Source: 0, Target: 1, Value: csrgraph.None{}},
		{Source: 1, Target: 2, Value: csrgraph.None{}},
	})

	var ids []uint32
	for id, u := range Over[csrgraph.Row](g) {
		ids = append(ids, id)
		require.Same(t, g.FindVertex(id), u)
	}
	require.Equal(t, []uint32{0, 1, 2}, ids)
}
