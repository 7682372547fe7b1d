// Copyright (C) The pathWAS Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package pathwas

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidArgument is wrapped by all errors caused by malformed or
// inconsistent caller input: unknown method names, shape mismatches,
// duplicate or missing labels.
var ErrInvalidArgument = errors.New("invalid argument")

// Frame is a dense real-valued matrix with row and column labels, samples
// in rows and features (genes, pathways, variants) in columns.
type Frame struct {
	rowIDs []string
	colIDs []string
	colIdx map[string]int
	data   *mat.Dense
}

// NewFrame builds a Frame from row-major data. Labels must be unique along
// each axis and len(data) must equal len(rowIDs)*len(colIDs).
func NewFrame(rowIDs, colIDs []string, data []float64) (*Frame, error) {
	if len(data) != len(rowIDs)*len(colIDs) {
		return nil, fmt.Errorf("%w: frame data length %d does not match %d rows x %d cols", ErrInvalidArgument, len(data), len(rowIDs), len(colIDs))
	}
	if dup := firstDuplicate(rowIDs); dup != "" {
		return nil, fmt.Errorf("%w: duplicate row label %q", ErrInvalidArgument, dup)
	}
	if dup := firstDuplicate(colIDs); dup != "" {
		return nil, fmt.Errorf("%w: duplicate column label %q", ErrInvalidArgument, dup)
	}
	f := &Frame{
		rowIDs: rowIDs,
		colIDs: colIDs,
		colIdx: make(map[string]int, len(colIDs)),
	}
	// mat.NewDense panics on zero-sized dimensions; an empty Frame (e.g.,
	// no pathway had any gene in the expression matrix) keeps data nil and
	// is only ever inspected via Dims and the label accessors.
	if len(rowIDs) > 0 && len(colIDs) > 0 {
		f.data = mat.NewDense(len(rowIDs), len(colIDs), data)
	}
	for i, id := range colIDs {
		f.colIdx[id] = i
	}
	return f, nil
}

func firstDuplicate(ids []string) string {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return id
		}
		seen[id] = true
	}
	return ""
}

func (f *Frame) Dims() (rows, cols int) { return len(f.rowIDs), len(f.colIDs) }

// RowIDs and ColIDs return the label slices without copying.
func (f *Frame) RowIDs() []string { return f.rowIDs }
func (f *Frame) ColIDs() []string { return f.colIDs }

func (f *Frame) HasCol(id string) bool {
	_, ok := f.colIdx[id]
	return ok
}

func (f *Frame) At(row, col int) float64 { return f.data.At(row, col) }

// Col copies the column with the given label.
func (f *Frame) Col(id string) ([]float64, error) {
	j, ok := f.colIdx[id]
	if !ok {
		return nil, fmt.Errorf("%w: no column %q", ErrInvalidArgument, id)
	}
	out := make([]float64, len(f.rowIDs))
	mat.Col(out, j, f.data)
	return out, nil
}

// SelectCols returns a new Frame with the given columns, in the given
// order, sharing row labels with f.
func (f *Frame) SelectCols(ids []string) (*Frame, error) {
	nrow := len(f.rowIDs)
	data := make([]float64, nrow*len(ids))
	for k, id := range ids {
		j, ok := f.colIdx[id]
		if !ok {
			return nil, fmt.Errorf("%w: no column %q", ErrInvalidArgument, id)
		}
		for i := 0; i < nrow; i++ {
			data[i*len(ids)+k] = f.data.At(i, j)
		}
	}
	return NewFrame(f.rowIDs, ids, data)
}

// Dense returns the underlying matrix. Mutating it mutates the Frame.
func (f *Frame) Dense() *mat.Dense { return f.data }

// hcat concatenates frames column-wise. All frames must share the same row
// labels in the same order.
func hcat(frames ...*Frame) (*Frame, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames to concatenate", ErrInvalidArgument)
	}
	rowIDs := frames[0].rowIDs
	var colIDs []string
	for _, f := range frames {
		if len(f.rowIDs) != len(rowIDs) {
			return nil, fmt.Errorf("%w: frames have different row counts", ErrInvalidArgument)
		}
		for i, id := range f.rowIDs {
			if id != rowIDs[i] {
				return nil, fmt.Errorf("%w: frames have different row labels (%q vs %q)", ErrInvalidArgument, id, rowIDs[i])
			}
		}
		colIDs = append(colIDs, f.colIDs...)
	}
	data := make([]float64, len(rowIDs)*len(colIDs))
	off := 0
	for _, f := range frames {
		for i := range rowIDs {
			for j := range f.colIDs {
				data[i*len(colIDs)+off+j] = f.data.At(i, j)
			}
		}
		off += len(f.colIDs)
	}
	return NewFrame(rowIDs, colIDs, data)
}

// Vector is an ordered set of labeled values. The key order is significant:
// it is the canonical alignment used by PathwayTWAS. The Vector takes
// ownership of the slices passed to NewVector.
type Vector struct {
	keys []string
	idx  map[string]int
	vals []float64
}

func NewVector(keys []string, vals []float64) (*Vector, error) {
	if len(keys) != len(vals) {
		return nil, fmt.Errorf("%w: %d keys but %d values", ErrInvalidArgument, len(keys), len(vals))
	}
	if dup := firstDuplicate(keys); dup != "" {
		return nil, fmt.Errorf("%w: duplicate key %q", ErrInvalidArgument, dup)
	}
	v := &Vector{keys: keys, idx: make(map[string]int, len(keys)), vals: vals}
	for i, k := range keys {
		v.idx[k] = i
	}
	return v, nil
}

func (v *Vector) Len() int          { return len(v.keys) }
func (v *Vector) Keys() []string    { return v.keys }
func (v *Vector) Values() []float64 { return v.vals }

func (v *Vector) Get(key string) (float64, bool) {
	i, ok := v.idx[key]
	if !ok {
		return 0, false
	}
	return v.vals[i], true
}

// Reindex returns a new Vector with the given key order. Any key absent
// from v is an error, never a silent intersection.
func (v *Vector) Reindex(keys []string) (*Vector, error) {
	vals := make([]float64, len(keys))
	for i, k := range keys {
		j, ok := v.idx[k]
		if !ok {
			return nil, fmt.Errorf("%w: key %q not found", ErrInvalidArgument, k)
		}
		vals[i] = v.vals[j]
	}
	out := make([]string, len(keys))
	copy(out, keys)
	return NewVector(out, vals)
}

func (v *Vector) equalKeys(keys []string) bool {
	if len(v.keys) != len(keys) {
		return false
	}
	for i, k := range keys {
		if v.keys[i] != k {
			return false
		}
	}
	return true
}
