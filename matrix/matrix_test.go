// Package matrix_test contains unit tests for the Dense and CDense kernels.
package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/lvxrd/matrix"
	"github.com/stretchr/testify/require"
)

// TestNewDenseInvalidDimensions ensures that constructors reject non-positive dimensions.
func TestNewDenseInvalidDimensions(t *testing.T) {
	_, err := matrix.NewDense(0, 5)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)

	_, err = matrix.NewCDense(5, 0)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

// TestAtSetOutOfRange ensures At() and Set() return ErrOutOfRange on invalid access.
func TestAtSetOutOfRange(t *testing.T) {
	m, err := matrix.NewDense(2, 2)
	require.NoError(t, err)

	_, err = m.At(-1, 0)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	require.ErrorIs(t, m.Set(2, 0, 1.0), matrix.ErrOutOfRange)
	require.ErrorIs(t, m.Set(0, 0, math.NaN()), matrix.ErrNaNInf)

	c, err := matrix.NewCDense(2, 2)
	require.NoError(t, err)
	_, err = c.At(0, 2)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	require.ErrorIs(t, c.Set(0, 0, complex(math.Inf(1), 0)), matrix.ErrNaNInf)
}

// TestCloneIndependence ensures Clone() returns a deep copy.
func TestCloneIndependence(t *testing.T) {
	m, _ := matrix.NewDense(2, 2)
	_ = m.Set(0, 0, 1.0)
	cl := m.Clone()
	_ = cl.Set(0, 0, 3.0)

	v, err := m.At(0, 0)
	require.NoError(t, err)
	require.Equal(t, 1.0, v)
}

// TestMulAndDiag checks the real product against a hand-computed result.
func TestMulAndDiag(t *testing.T) {
	d, err := matrix.NewDiag([]float64{0.25, 0.75})
	require.NoError(t, err)
	p, _ := matrix.NewDense(2, 2)
	_ = p.Set(0, 0, 0.5)
	_ = p.Set(0, 1, 0.5)
	_ = p.Set(1, 0, 1.0/6.0)
	_ = p.Set(1, 1, 5.0/6.0)

	ww, err := matrix.Mul(d, p)
	require.NoError(t, err)
	v, _ := ww.At(1, 0)
	require.InDelta(t, 0.125, v, 1e-12)
	s, err := ww.RowSum(0)
	require.NoError(t, err)
	require.InDelta(t, 0.25, s, 1e-12)

	_, err = matrix.Mul(d, nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
	wide, _ := matrix.NewDense(3, 1)
	_, err = matrix.Mul(d, wide)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

// TestComplexKernels covers CMul, CMulInto aliasing, Hadamard, AddScaled and Trace.
func TestComplexKernels(t *testing.T) {
	a, _ := matrix.NewCDense(2, 2)
	_ = a.Set(0, 0, 1i)
	_ = a.Set(0, 1, 2)
	_ = a.Set(1, 0, 0)
	_ = a.Set(1, 1, 1-1i)
	I, err := matrix.NewCIdentity(2)
	require.NoError(t, err)

	p, err := matrix.CMul(a, I)
	require.NoError(t, err)
	v, _ := p.At(1, 1)
	require.Equal(t, 1-1i, v)

	require.ErrorIs(t, matrix.CMulInto(a, a, I), matrix.ErrAliasing)
	dst, _ := matrix.NewCDense(2, 2)
	require.NoError(t, matrix.CMulInto(dst, a, a))
	v, _ = dst.At(0, 0)
	require.Equal(t, complex(-1, 0), v) // i*i + 2*0

	h, err := matrix.CHadamard(a, I)
	require.NoError(t, err)
	tr, err := matrix.CTrace(h)
	require.NoError(t, err)
	require.Equal(t, 1+0i, tr) // i + (1-i)

	require.NoError(t, h.AddScaled(2, I))
	tr, _ = matrix.CTrace(h)
	require.Equal(t, 5+0i, tr)

	wide, _ := matrix.NewCDense(2, 3)
	_, err = matrix.CTrace(wide)
	require.ErrorIs(t, err, matrix.ErrNonSquare)
	require.ErrorIs(t, h.AddScaled(1, wide), matrix.ErrDimensionMismatch)
}

// TestCRepeatBlocks verifies the numpy-like block expansion.
func TestCRepeatBlocks(t *testing.T) {
	m, _ := matrix.NewCDense(2, 2)
	_ = m.Set(0, 1, 7)
	_ = m.Set(1, 0, 3)

	r, err := matrix.CRepeat(m, 2)
	require.NoError(t, err)
	require.Equal(t, 4, r.Rows())
	v, _ := r.At(1, 3)
	require.Equal(t, complex(7, 0), v)
	v, _ = r.At(3, 1)
	require.Equal(t, complex(3, 0), v)
	v, _ = r.At(2, 2)
	require.Equal(t, complex(0, 0), v)

	_, err = matrix.CRepeat(m, 0)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

// BenchmarkCMulInto measures the in-place complex product on a 16×16 matrix (R2G4-sized).
func BenchmarkCMulInto(b *testing.B) {
	a, _ := matrix.NewCDense(16, 16)
	for i := 0; i < 16; i++ {
		for j := 0; j < 16; j++ {
			_ = a.Set(i, j, complex(float64(i+1), float64(j)))
		}
	}
	dst, _ := matrix.NewCDense(16, 16)
	other := a.Clone()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		_ = matrix.CMulInto(dst, a, other)
	}
}
