package csds_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/katalvlaran/lvxrd/csds"
	"github.com/stretchr/testify/require"
)

func dritsTen() csds.Parameters {
	return csds.Parameters{
		Average: 10, Minimum: 1, Maximum: 50,
		AlphaScale: 0.9485, AlphaOffset: 0.017, BetaScale: 0.1032, BetaOffset: 0.0034,
	}
}

func TestComputeDritsAverageTen(t *testing.T) {
	d := csds.Compute(dritsTen())
	require.Len(t, d.Weights, 51)
	require.Zero(t, d.Weights[0])

	var sum float64
	for _, w := range d.Weights {
		require.GreaterOrEqual(t, w, 0.0)
		sum += w
	}
	require.InDelta(t, 1, sum, 1e-6)
	require.GreaterOrEqual(t, d.Mean, 1.0)
	require.LessOrEqual(t, d.Mean, 50.0)
	require.InDelta(t, 10, d.Mean, 2)
	require.Equal(t, 1, d.Min())
	require.Equal(t, 50, d.Max())
}

func TestComputeRespectsMinimum(t *testing.T) {
	p := dritsTen()
	p.Minimum = 5
	d := csds.Compute(p)
	for i := 0; i < 5; i++ {
		require.Zero(t, d.Weights[i])
	}
	require.Equal(t, 5, d.Min())
	require.GreaterOrEqual(t, d.Mean, 5.0)
}

func TestComputeDegenerate(t *testing.T) {
	p := dritsTen()
	p.BetaScale, p.BetaOffset = -1, -1 // NaN width
	d := csds.Compute(p)
	require.Len(t, d.Weights, 51)
	require.Equal(t, 1.0, d.Weights[10])
	require.Equal(t, 10.0, d.Mean)

	p = dritsTen()
	p.Average = 0
	d = csds.Compute(p)
	require.Equal(t, 1.0, d.Weights[1])

	p = dritsTen()
	p.Maximum = 0
	d = csds.Compute(p)
	require.Len(t, d.Weights, 2)
	require.Equal(t, 1.0, d.Mean)
}

func TestDritsParameters(t *testing.T) {
	p := csds.DritsParameters(10)
	require.Equal(t, 1, p.Minimum)
	a := 0.9485*math.Log(10) + 0.017
	b := math.Sqrt(0.1032*math.Log(10) + 0.0034)
	require.Equal(t, int(math.Ceil(math.Exp(a+3*b))), p.Maximum)

	d := csds.Compute(p)
	require.InDelta(t, 10, d.Mean, 2)
}

func ExampleCompute() {
	d := csds.Compute(csds.DritsParameters(5))
	fmt.Printf("mean %.0f\n", d.Mean)
	// Output: mean 5
}
