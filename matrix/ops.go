// SPDX-License-Identifier: MIT

// Package matrix - linear algebra kernels over Dense and CDense.
//
// Determinism & Policy:
//   - Shapes are validated once per call through validators.go.
//   - Multiplication runs i→k→j over flat slices, skipping zero left operands.
//   - Kernels returning a fresh matrix never mutate their inputs; *Into / AddScaled
//     variants write only into their receiver / destination.

package matrix

// Operation tags used when wrapping sentinel errors.
const (
	opMul      = "Mul"
	opCMul     = "CMul"
	opCMulInto = "CMulInto"
	opHadamard = "CHadamard"
	opAddScale = "AddScaled"
	opRepeat   = "CRepeat"
	opTrace    = "CTrace"
)

// Mul returns the real matrix product a × b.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (a.Cols != b.Rows).
//
// Complexity: O(r*n*c).
func Mul(a, b *Dense) (*Dense, error) {
	if a == nil || b == nil {
		return nil, matrixErrorf(opMul, ErrNilMatrix)
	}
	if a.c != b.r {
		return nil, matrixErrorf(opMul, ErrDimensionMismatch)
	}
	res, err := NewDense(a.r, b.c)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	var (
		i, j, k                            int
		av                                 float64
		rowOffsetA, rowOffsetB, rowOffsetR int
	)
	for i = 0; i < a.r; i++ {
		rowOffsetA = i * a.c
		rowOffsetR = i * b.c
		for k = 0; k < a.c; k++ {
			av = a.data[rowOffsetA+k]
			if av == 0 {
				continue // skip zero for performance
			}
			rowOffsetB = k * b.c
			for j = 0; j < b.c; j++ {
				res.data[rowOffsetR+j] += av * b.data[rowOffsetB+j]
			}
		}
	}

	return res, nil
}

// CMul returns the complex matrix product a × b in a fresh matrix.
// Complexity: O(r*n*c).
func CMul(a, b *CDense) (*CDense, error) {
	if err := validateCMul(a, b); err != nil {
		return nil, matrixErrorf(opCMul, err)
	}
	res, err := NewCDense(a.r, b.c)
	if err != nil {
		return nil, matrixErrorf(opCMul, err)
	}
	cmulKernel(res, a, b)

	return res, nil
}

// CMulInto writes a × b into dst, overwriting its contents.
// dst must have shape a.Rows × b.Cols and must not share storage with a or b.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch, ErrAliasing.
func CMulInto(dst, a, b *CDense) error {
	if err := validateCMul(a, b); err != nil {
		return matrixErrorf(opCMulInto, err)
	}
	if dst == nil {
		return matrixErrorf(opCMulInto, ErrNilMatrix)
	}
	if dst.r != a.r || dst.c != b.c {
		return matrixErrorf(opCMulInto, ErrDimensionMismatch)
	}
	if dst == a || dst == b {
		return matrixErrorf(opCMulInto, ErrAliasing)
	}
	dst.Zero()
	cmulKernel(dst, a, b)

	return nil
}

// cmulKernel accumulates a × b into res (assumed zeroed and conformable).
func cmulKernel(res, a, b *CDense) {
	var (
		i, j, k                            int
		av                                 complex128
		rowOffsetA, rowOffsetB, rowOffsetR int
	)
	for i = 0; i < a.r; i++ {
		rowOffsetA = i * a.c
		rowOffsetR = i * b.c
		for k = 0; k < a.c; k++ {
			av = a.data[rowOffsetA+k]
			if av == 0 {
				continue
			}
			rowOffsetB = k * b.c
			for j = 0; j < b.c; j++ {
				res.data[rowOffsetR+j] += av * b.data[rowOffsetB+j]
			}
		}
	}
}

// CHadamard returns the element-wise product a ⊙ b.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch.
//
// Complexity: O(r*c).
func CHadamard(a, b *CDense) (*CDense, error) {
	if err := validateCSameShape(a, b); err != nil {
		return nil, matrixErrorf(opHadamard, err)
	}
	res := &CDense{r: a.r, c: a.c, data: make([]complex128, len(a.data))}
	var idx int
	for idx = 0; idx < len(a.data); idx++ {
		res.data[idx] = a.data[idx] * b.data[idx]
	}

	return res, nil
}

// AddScaled performs m += alpha*b in place.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch.
//
// Complexity: O(r*c).
func (m *CDense) AddScaled(alpha complex128, b *CDense) error {
	if err := validateCSameShape(m, b); err != nil {
		return matrixErrorf(opAddScale, err)
	}
	if alpha == 0 {
		return nil
	}
	var idx int
	for idx = 0; idx < len(m.data); idx++ {
		m.data[idx] += alpha * b.data[idx]
	}

	return nil
}

// CRepeat expands every element of m into a reps×reps block, mirroring
// numpy's repeat along both axes: out[i][j] = m[i/reps][j/reps].
//
// Errors:
//   - ErrNilMatrix; ErrInvalidDimensions when reps<=0.
//
// Complexity: O(r*c*reps^2).
func CRepeat(m *CDense, reps int) (*CDense, error) {
	if m == nil {
		return nil, matrixErrorf(opRepeat, ErrNilMatrix)
	}
	if reps <= 0 {
		return nil, matrixErrorf(opRepeat, ErrInvalidDimensions)
	}
	if reps == 1 {
		return m.Clone(), nil
	}
	out, err := NewCDense(m.r*reps, m.c*reps)
	if err != nil {
		return nil, matrixErrorf(opRepeat, err)
	}
	var i, j int
	for i = 0; i < out.r; i++ {
		src := (i / reps) * m.c
		dst := i * out.c
		for j = 0; j < out.c; j++ {
			out.data[dst+j] = m.data[src+j/reps]
		}
	}

	return out, nil
}

// CTrace returns the sum of the diagonal of a square complex matrix.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare.
//
// Complexity: O(n).
func CTrace(m *CDense) (complex128, error) {
	if err := validateCSquare(m); err != nil {
		return 0, matrixErrorf(opTrace, err)
	}
	var (
		s complex128
		i int
	)
	for i = 0; i < m.r; i++ {
		s += m.data[i*m.c+i]
	}

	return s, nil
}
