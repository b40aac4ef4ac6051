// SPDX-License-Identifier: MIT

// Package matrix - CDense storage (row-major, complex128).
//
// Purpose:
//   - Carry per-q structure-factor, phase and transfer matrices of the
//     Drits–Tchoubar intensity synthesis.
//   - Same contract as Dense: safe At/Set, flat row-major buffer, deterministic kernels.
//
// AI-Hints:
//   - Hot loops in the engine reuse buffers through CMulInto and AddScaled to
//     avoid one allocation per matrix power.

package matrix

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

// cdenseErrorf wraps an error with a uniform CDense context and callsite indices.
func cdenseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("CDense.%s(%d,%d): %w", method, row, col, err)
}

// CDense is a concrete row-major matrix of complex128 values.
type CDense struct {
	r, c int          // row and column counts (>0)
	data []complex128 // contiguous row-major storage (len == r*c)
}

var _ fmt.Stringer = (*CDense)(nil)

// NewCDense creates an r×c complex zero matrix.
//
// Errors:
//   - ErrInvalidDimensions when rows<=0 or cols<=0.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewCDense(rows, cols int) (*CDense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &CDense{r: rows, c: cols, data: make([]complex128, rows*cols)}, nil
}

// NewCIdentity returns I_n as a complex matrix.
// Complexity: O(n^2) zeroing + O(n) diagonal writes.
func NewCIdentity(n int) (*CDense, error) {
	I, err := NewCDense(n, n)
	if err != nil {
		return nil, matrixErrorf("NewCIdentity", err)
	}
	var i int
	for i = 0; i < n; i++ {
		I.data[i*n+i] = 1
	}

	return I, nil
}

// Rows returns the row count. Complexity: O(1).
func (m *CDense) Rows() int { return m.r }

// Cols returns the column count. Complexity: O(1).
func (m *CDense) Cols() int { return m.c }

// At returns the value at (row, col) or ErrOutOfRange.
func (m *CDense) At(row, col int) (complex128, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, cdenseErrorf(ctxAt, row, col, ErrOutOfRange)
	}

	return m.data[row*m.c+col], nil
}

// Set stores v at (row, col).
//
// Errors:
//   - ErrOutOfRange for bounds; ErrNaNInf when either part is NaN or ±Inf.
func (m *CDense) Set(row, col int, v complex128) error {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return cdenseErrorf(ctxSet, row, col, ErrOutOfRange)
	}
	if cmplx.IsNaN(v) || math.IsInf(real(v), 0) || math.IsInf(imag(v), 0) {
		return cdenseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[row*m.c+col] = v

	return nil
}

// Clone returns a deep copy.
func (m *CDense) Clone() *CDense {
	cp := make([]complex128, len(m.data))
	copy(cp, m.data)

	return &CDense{r: m.r, c: m.c, data: cp}
}

// Zero resets every element to 0 in place.
func (m *CDense) Zero() {
	for i := range m.data {
		m.data[i] = 0
	}
}

// String renders the rows as comma-separated lines; intended for diagnostics.
func (m *CDense) String() string {
	var b strings.Builder
	var i, j, base int
	for i = 0; i < m.r; i++ {
		b.WriteString(_fmtRowOpen)
		base = i * m.c
		for j = 0; j < m.c; j++ {
			b.WriteString(fmt.Sprintf("%g", m.data[base+j]))
			if j+1 < m.c {
				b.WriteString(_fmtSep)
			}
		}
		b.WriteString(_fmtRowClose)
	}

	return b.String()
}
