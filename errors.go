package csrgraph

import (
	"errors"
	"fmt"
)

// ErrAlreadyLoaded is returned (or carried by the panic) when edges are
// loaded into a graph that has already been finalized.
var ErrAlreadyLoaded = errors.New("graph already loaded")

// UnsortedEdgeError reports an edge whose source id is smaller than that of
// a preceding edge. The loader requires the edge stream to be sorted by
// source id; within one source id any target order is accepted and kept.
type UnsortedEdgeError struct {
	Index  int // position of the offending edge in the stream
	Source VID
	Prev   VID
}

func (e *UnsortedEdgeError) Error() string {
	return fmt.Sprintf("edge %d out of order: source %d after source %d", e.Index, e.Source, e.Prev)
}

// IDOutOfRangeError reports a vertex record whose id falls outside the
// vertex range established by a prior edge load.
type IDOutOfRangeError struct {
	ID   VID
	Size int
}

func (e *IDOutOfRangeError) Error() string {
	return fmt.Sprintf("vertex id %d out of range [0, %d)", e.ID, e.Size)
}
