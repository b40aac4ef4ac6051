package probability_test

import (
	"fmt"
	"testing"

	"github.com/katalvlaran/lvxrd/probability"
	"github.com/stretchr/testify/require"
)

// tuple decodes a flat index into k layer types, first most significant.
func tuple(g, k, idx int) []int {
	out := make([]int, k)
	for i := k - 1; i >= 0; i-- {
		out[i] = idx % g
		idx /= g
	}
	return out
}

func pow(g, k int) int {
	n := 1
	for ; k > 0; k-- {
		n *= g
	}
	return n
}

// requireStochastic asserts the structural properties of a valid model.
func requireStochastic(t *testing.T, m *probability.Matrices, tol float64) {
	t.Helper()
	g, r := m.G(), m.Order()
	for k := 1; k <= r; k++ {
		var wsum float64
		for s := 0; s < pow(g, k); s++ {
			seq := tuple(g, k, s)
			w, err := m.W(seq...)
			require.NoError(t, err)
			require.GreaterOrEqual(t, w, -tol)
			require.LessOrEqual(t, w, 1+tol)
			wsum += w
			var row float64
			for j := 0; j < g; j++ {
				p, err := m.P(append(append([]int(nil), seq...), j)...)
				require.NoError(t, err)
				require.GreaterOrEqual(t, p, -tol)
				require.LessOrEqual(t, p, 1+tol)
				row += p
			}
			if w > 0 {
				require.InDelta(t, 1, row, tol, "order %d row %v", k, seq)
			}
		}
		require.InDelta(t, 1, wsum, tol, "order %d", k)
	}
}

func TestIndexFirstMostSignificant(t *testing.T) {
	require.Equal(t, 0, probability.Index(2, []int{0, 0, 0}))
	require.Equal(t, 4, probability.Index(2, []int{1, 0, 0}))
	require.Equal(t, 1*9+2*3+1, probability.Index(3, []int{1, 2, 1}))
}

func TestNewMatricesBounds(t *testing.T) {
	_, err := probability.NewMatrices(0, 1)
	require.ErrorIs(t, err, probability.ErrInvalidComponents)
	_, err = probability.NewMatrices(2, 4)
	require.ErrorIs(t, err, probability.ErrInvalidReichweite)

	m, err := probability.NewMatrices(3, 0)
	require.NoError(t, err)
	require.Equal(t, 1, m.Order())
	require.Equal(t, 3, m.Rank())

	_, err = m.W(0, 0, 0)
	require.ErrorIs(t, err, probability.ErrIndexCount)
	_, err = m.P(0)
	require.ErrorIs(t, err, probability.ErrIndexCount)
	require.ErrorIs(t, m.SetW(1, 3), probability.ErrIndexRange)
}

// TestSolveZeroDenominator pins P = 0 for sequences with zero abundance.
func TestSolveZeroDenominator(t *testing.T) {
	m, err := probability.NewMatrices(2, 2)
	require.NoError(t, err)
	require.NoError(t, m.SetW(1, 0, 0)) // only AA occurs
	require.NoError(t, m.SetP(1, 0, 0, 0))
	m.Solve()

	w, _ := m.W(0)
	require.Equal(t, 1.0, w)
	w, _ = m.W(1)
	require.Equal(t, 0.0, w)
	p, _ := m.P(1, 0)
	require.Equal(t, 0.0, p)
	p, _ = m.P(1, 1)
	require.Equal(t, 0.0, p)
	p, _ = m.P(0, 0)
	require.Equal(t, 1.0, p)
	require.True(t, m.Validate(probability.DefaultTolerance))
}

// TestR1G2Scenario checks W1=0.25, P11_or_P22=0.5.
func TestR1G2Scenario(t *testing.T) {
	m, err := probability.NewR1(2)
	require.NoError(t, err)
	require.NoError(t, m.SetParam("W1", 0.25))
	require.NoError(t, m.SetParam("P11_or_P22", 0.5))
	require.True(t, m.Update())

	mx := m.Matrices()
	w, _ := mx.W(1)
	require.InDelta(t, 0.75, w, 1e-12)
	p00, _ := mx.P(0, 0)
	p01, _ := mx.P(0, 1)
	p10, _ := mx.P(1, 0)
	p11, _ := mx.P(1, 1)
	require.InDelta(t, 1, p00+p01, 1e-12)
	require.InDelta(t, 1, p10+p11, 1e-12)
	require.InDelta(t, 0.5, p00, 1e-12)
	require.InDelta(t, 1.0/6.0, p10, 1e-12)
	requireStochastic(t, mx, 1e-9)
}

func TestR1G2ParameterSwitchesRow(t *testing.T) {
	m, _ := probability.NewR1(2)
	_ = m.SetParam("W1", 0.7)
	_ = m.SetParam("P11_or_P22", 0.2)
	require.True(t, m.Update())
	p22, _ := m.Matrices().P(1, 1)
	require.InDelta(t, 0.2, p22, 1e-12)
	requireStochastic(t, m.Matrices(), 1e-9)
}

func TestR0Fractions(t *testing.T) {
	for g := 1; g <= probability.MaxComponents; g++ {
		m, err := probability.NewR0(g)
		require.NoError(t, err)
		require.True(t, m.Valid(), "R0G%d", g)
		for _, f := range m.Matrices().Fractions() {
			require.InDelta(t, 1/float64(g), f, 1e-12)
		}
		requireStochastic(t, m.Matrices(), 1e-9)
	}

	m, _ := probability.NewR0(3)
	_ = m.SetParam("W1", 0.5)
	_ = m.SetParam("F2", 0.2)
	m.Update()
	require.InDeltaSlice(t, []float64{0.5, 0.1, 0.4}, m.Matrices().Fractions(), 1e-12)
	p, _ := m.Matrices().P(0, 2)
	require.InDelta(t, 0.4, p, 1e-12)
}

func TestR1GridStationary(t *testing.T) {
	for g := 2; g <= 4; g++ {
		m, err := probability.NewR1(g)
		require.NoError(t, err)
		require.True(t, m.Valid(), "default R1G%d", g)

		valid := 0
		for _, w1 := range []float64{0.1, 0.3, 0.5, 0.8} {
			for _, rp := range []float64{0.05, 0.4, 0.9} {
				_ = m.SetParam("W1", w1)
				for _, p := range m.Params()[g-1:] {
					_ = m.SetParam(p.Name, rp)
				}
				if m.Update() {
					valid++
					requireStochastic(t, m.Matrices(), 1e-9)
				}
			}
		}
		require.Positive(t, valid, "R1G%d", g)
	}
}

func TestR2G2Stationary(t *testing.T) {
	m, err := probability.NewR2G2()
	require.NoError(t, err)
	require.True(t, m.Valid())

	for _, w1 := range []float64{0.2, 0.5, 0.7} {
		for _, p := range []float64{0.1, 0.6} {
			for _, p3 := range []float64{0.3, 0.9} {
				_ = m.SetParam("W1", w1)
				_ = m.SetParam("P11_or_P22", p)
				_ = m.SetParam("P111_or_P211", p3)
				_ = m.SetParam("P122_or_P222", p3)
				if !m.Update() {
					continue
				}
				mx := m.Matrices()
				requireStochastic(t, mx, 1e-9)
				w, _ := mx.W(0)
				require.InDelta(t, w1, w, 1e-9)
			}
		}
	}
}

func TestR3G2MaximumOrdering(t *testing.T) {
	m, err := probability.NewR3G2()
	require.NoError(t, err)

	for _, w1 := range []float64{2.0 / 3.0, 0.7, 0.75, 0.9, 1} {
		_ = m.SetParam("W1", w1)
		_ = m.SetParam("P1111_or_P2111", 0.4)
		require.True(t, m.Update(), "W1=%v", w1)
		mx := m.Matrices()
		requireStochastic(t, mx, probability.R3G2Tolerance)

		bb, _ := mx.W(1, 1)
		require.Zero(t, bb)
		w, _ := mx.W(0)
		require.InDelta(t, w1, w, 1e-9)
	}

	_ = m.SetParam("W1", 0.1) // clamped to 2/3
	v, _ := m.Param("W1")
	require.InDelta(t, 2.0/3.0, v, 1e-12)
}

// TestR3G2Tolerance pins the 1e-4 validation tolerance.
func TestR3G2Tolerance(t *testing.T) {
	m, _ := probability.NewR3G2()
	require.Equal(t, probability.R3G2Tolerance, m.Tolerance())

	mx := m.Matrices()
	p, _ := mx.P(0, 0, 0, 0)

	require.NoError(t, mx.SetP(p+1e-5, 0, 0, 0, 0))
	require.True(t, mx.Validate(m.Tolerance()))

	require.NoError(t, mx.SetP(p+1e-3, 0, 0, 0, 0))
	require.False(t, mx.Validate(m.Tolerance()))
	require.False(t, mx.OrderValid(3))
	require.True(t, mx.OrderValid(1))
	require.Equal(t, []int{1, 1}, mx.Mask(3)[0:2])

	m.Update()
	require.True(t, m.Valid())
}

func TestForcedRowSumInvalidates(t *testing.T) {
	m, _ := probability.NewR1(2)
	mx := m.Matrices()
	require.NoError(t, mx.SetP(1, 0, 0))
	require.NoError(t, mx.SetP(1, 0, 1))
	require.False(t, mx.Validate(probability.DefaultTolerance))
	require.False(t, m.Valid())
}

func TestModelParamsAndClone(t *testing.T) {
	m, err := probability.New(1, 3)
	require.NoError(t, err)
	require.Equal(t, "R1G3", m.Name())
	require.Len(t, m.Params(), 2+4)

	require.ErrorIs(t, m.SetParam("nope", 1), probability.ErrUnknownParam)
	_, err = m.Param("nope")
	require.ErrorIs(t, err, probability.ErrUnknownParam)

	require.NoError(t, m.SetParam("W1", 3))
	v, _ := m.Param("W1")
	require.Equal(t, 1.0, v)

	cl := m.Clone()
	_ = cl.SetParam("W1", 0.2)
	cl.Update()
	v, _ = m.Param("W1")
	require.Equal(t, 1.0, v)
	require.NotEqual(t, m.Fingerprint(), cl.Fingerprint())

	_, err = probability.New(2, 3)
	require.ErrorIs(t, err, probability.ErrUnsupported)
	_, err = probability.New(5, 2)
	require.ErrorIs(t, err, probability.ErrInvalidReichweite)
}

func TestMatrixForms(t *testing.T) {
	m, _ := probability.NewR2G2()
	mx := m.Matrices()

	p, err := mx.ProbabilityMatrix()
	require.NoError(t, err)
	require.Equal(t, 4, p.Rows())
	for s := 0; s < 4; s++ {
		sum, _ := p.RowSum(s)
		require.InDelta(t, 1, sum, 1e-12)
	}
	// AB can only move to BA or BB.
	v, _ := p.At(1, 0)
	require.Zero(t, v)

	ww, err := mx.JointMatrix()
	require.NoError(t, err)
	var total float64
	for s := 0; s < 4; s++ {
		rs, _ := ww.RowSum(s)
		total += rs
	}
	require.InDelta(t, 1, total, 1e-12)
}

func ExampleNewR1() {
	m, _ := probability.NewR1(2)
	_ = m.SetParam("W1", 0.25)
	_ = m.SetParam("P11_or_P22", 0.5)
	m.Update()
	w, _ := m.Matrices().W(1)
	p, _ := m.Matrices().P(1, 0)
	fmt.Printf("W2=%.2f P21=%.4f valid=%t\n", w, p, m.Valid())
	// Output: W2=0.75 P21=0.1667 valid=true
}
