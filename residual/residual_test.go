package residual_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/lvxrd/residual"
	"github.com/stretchr/testify/require"
)

func TestRp(t *testing.T) {
	obs := []float64{10, 20, 30, 40}
	calc := []float64{12, 18, 30, 40}
	v, err := residual.Rp(obs, calc, nil)
	require.NoError(t, err)
	require.InDelta(t, 4.0/100*100, v, 1e-12)

	v, _ = residual.Rp(obs, calc, []bool{true, true, false, false})
	require.Zero(t, v)

	v, _ = residual.Rp(obs, obs, nil)
	require.Zero(t, v)
}

func TestRwp(t *testing.T) {
	obs := []float64{4, 0, 16}
	calc := []float64{2, 5, 16}
	v, err := residual.Rwp(obs, calc, nil)
	require.NoError(t, err)
	// w = 1/4 and 1/16; zero observation carries no weight.
	want := math.Sqrt((0.25*4)/(0.25*16+16)) * 100
	require.InDelta(t, want, v, 1e-12)
}

func TestRpDerivative(t *testing.T) {
	obs := []float64{1, 2, 3, 4}
	shifted := []float64{11, 12, 13, 14}
	v, err := residual.RpDerivative(obs, shifted, nil)
	require.NoError(t, err)
	require.Zero(t, v, "a constant offset has the same derivative")

	require.Equal(t, []float64{1, 1, 1, 1}, residual.Derivative(obs))
	require.Equal(t, []float64{0}, residual.Derivative([]float64{5}))
}

func TestZeroDenominator(t *testing.T) {
	z := []float64{0, 0}
	for _, m := range []residual.Metric{residual.MetricRp, residual.MetricRwp, residual.MetricRpDerivative} {
		v, err := m.Compute(z, []float64{1, 2}, nil)
		require.NoError(t, err)
		require.Zero(t, v, m.String())
	}
}

func TestLengthMismatch(t *testing.T) {
	_, err := residual.Rp([]float64{1}, []float64{1, 2}, nil)
	require.ErrorIs(t, err, residual.ErrLengthMismatch)
	_, err = residual.Rwp([]float64{1, 2}, []float64{1, 2}, []bool{true})
	require.ErrorIs(t, err, residual.ErrLengthMismatch)
}

func TestParseMetric(t *testing.T) {
	for in, want := range map[string]residual.Metric{
		"rp": residual.MetricRp, "RWP": residual.MetricRwp, "rpder": residual.MetricRpDerivative, "": residual.MetricRp,
	} {
		got, err := residual.ParseMetric(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := residual.ParseMetric("chi2")
	require.ErrorIs(t, err, residual.ErrUnknownMetric)
}
