package scattering_test

import (
	"fmt"
	"math"
	"math/cmplx"
	"testing"

	"github.com/katalvlaran/lvxrd/scattering"
	"github.com/stretchr/testify/require"
)

// TestASFAtZeroEqualsElectronCount checks f(0) ≈ Z for every tabulated type.
func TestASFAtZeroEqualsElectronCount(t *testing.T) {
	for _, at := range scattering.DefaultTable() {
		at := at
		f := scattering.ASF([]float64{0}, &at)
		require.InDelta(t, float64(at.AtomicNumber), f[0], 0.05, at.Name)
	}
}

func TestASFDecreasesWithQ(t *testing.T) {
	si := scattering.MustLookup("si")
	f := scattering.ASF([]float64{0, 2, 5, 10}, si)
	for i := 1; i < len(f); i++ {
		require.Less(t, f[i], f[i-1])
	}

	damped := *si
	damped.Debye = 1.0
	g := scattering.ASF([]float64{0, 5}, &damped)
	require.InDelta(t, f[0], g[0], 1e-12)
	require.InDelta(t, f[2]*math.Exp(-0.0625), g[1], 1e-12)
}

func TestStructureFactorPhase(t *testing.T) {
	o := scattering.MustLookup("O")
	a := &scattering.Atom{Name: "O1", Type: o, Pn: 2, Z: 0.25}
	q := []float64{0, 1, 2}
	sf := scattering.StructureFactor(q, a)
	asf := scattering.ASF(q, o)

	require.InDelta(t, 2*asf[0], real(sf[0]), 1e-12)
	// z·q = 0.25 → a quarter turn.
	require.InDelta(t, 0, real(sf[1]), 1e-9)
	require.InDelta(t, 2*asf[1], imag(sf[1]), 1e-9)
	require.InDelta(t, 2*asf[2], cmplx.Abs(sf[2]), 1e-9)

	dst := make([]complex128, len(q))
	scattering.AccumulateStructureFactor(dst, q, a)
	scattering.AccumulateStructureFactor(dst, q, a)
	require.InDelta(t, 2*real(sf[0]), real(dst[0]), 1e-12)
}

func TestAbsentContributorIsZero(t *testing.T) {
	q := []float64{0.5, 1, 1.5}
	require.Equal(t, make([]complex128, 3), scattering.StructureFactor(q, nil))
	require.Equal(t, make([]complex128, 3), scattering.StructureFactor(q, &scattering.Atom{Pn: 1}))
	require.Equal(t, make([]float64, 3), scattering.ASF(q, nil))
}

func TestLookupUnknown(t *testing.T) {
	_, err := scattering.Lookup("Xx")
	require.ErrorIs(t, err, scattering.ErrUnknownAtomType)

	a, err := scattering.Lookup("fe")
	require.NoError(t, err)
	a.Weight = 0
	b, _ := scattering.Lookup("Fe")
	require.NotZero(t, b.Weight, "Lookup must hand out copies")
}

func ExampleASF() {
	k := scattering.MustLookup("K")
	f := scattering.ASF([]float64{0}, k)
	fmt.Printf("%.1f\n", f[0])
	// Output: 19.0
}
