package snapshot

import (
	"errors"
	"unsafe"

	"github.com/hupe1980/csrgraph"
)

// The index sections are raw native-endian uint32 arrays. Both Row and Col
// are 4-byte single-field structs, so the slices convert to bytes without
// per-element encoding.

func rowsToBytes(rows []csrgraph.Row) []byte {
	if len(rows) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(rows))), len(rows)*4)
}

func colsToBytes(cols []csrgraph.Col) []byte {
	if len(cols) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(cols))), len(cols)*4)
}

// bytesToRows copies the section payload into a fresh slice; the payload
// may alias a compression buffer or an mmap region.
func bytesToRows(data []byte) ([]csrgraph.Row, error) {
	if len(data)%4 != 0 {
		return nil, errors.New("row index section size not a multiple of 4")
	}
	if len(data) == 0 {
		return nil, nil
	}
	rows := make([]csrgraph.Row, len(data)/4)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(rows))), len(data)), data)
	return rows, nil
}

func bytesToCols(data []byte) ([]csrgraph.Col, error) {
	if len(data)%4 != 0 {
		return nil, errors.New("column index section size not a multiple of 4")
	}
	if len(data) == 0 {
		return nil, nil
	}
	cols := make([]csrgraph.Col, len(data)/4)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(cols))), len(data)), data)
	return cols, nil
}
