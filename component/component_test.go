package component_test

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/katalvlaran/lvxrd/component"
	"github.com/katalvlaran/lvxrd/scattering"
	"github.com/stretchr/testify/require"
)

func smectite() *component.Component {
	ca := scattering.MustLookup("Ca")
	si := scattering.MustLookup("Si")
	return &component.Component{
		Name:            "Ca-smectite",
		LayerAtoms:      []scattering.Atom{{Name: "Si", Type: si, Pn: 4, DefaultZ: 0.27}},
		InterlayerAtoms: []scattering.Atom{{Name: "Ca", Type: ca, Pn: 0.4, DefaultZ: 0.8}},
		CellA:           0.52, CellB: 0.9, D001: 1.5, DefaultC: 1.4, LatticeD: 0.96,
	}
}

func TestVolumeAndWeight(t *testing.T) {
	c := smectite()
	require.InDelta(t, 0.52*0.9*1.5, c.Volume(), 1e-12)
	require.InDelta(t, 4*28.0855+0.4*40.078, c.Weight(), 1e-9)

	var nilc *component.Component
	require.Zero(t, nilc.Volume())
	require.Zero(t, nilc.Weight())
}

func TestInterlayerStretch(t *testing.T) {
	c := smectite()
	require.InDelta(t, (1.5-0.96)/(1.4-0.96), c.InterlayerStretch(), 1e-12)

	c.DefaultC = c.LatticeD
	require.Equal(t, 1.0, c.InterlayerStretch())
}

// TestStructureFactorPositions compares the component SF with hand-placed atoms.
func TestStructureFactorPositions(t *testing.T) {
	c := smectite()
	q := []float64{0.3, 1.1, 2.7}
	sf := component.StructureFactor(q, c)

	layer := c.LayerAtoms[0]
	layer.Z = 0.27
	inter := c.InterlayerAtoms[0]
	inter.Z = 0.96 + (0.8-0.96)*c.InterlayerStretch()
	a := scattering.StructureFactor(q, &layer)
	b := scattering.StructureFactor(q, &inter)
	for i := range q {
		require.InDelta(t, 0, cmplx.Abs(sf[i]-a[i]-b[i]), 1e-9)
	}
}

func TestPhaseFactor(t *testing.T) {
	pf := component.PhaseFactor([]float64{0, 0.5, 2}, 1.0, 0)
	require.InDelta(t, 1, real(pf[0]), 1e-12)
	require.InDelta(t, -1, real(pf[1]), 1e-12) // exp(iπ)
	require.InDelta(t, 1, cmplx.Abs(pf[2]), 1e-12)

	damp := component.PhaseFactor([]float64{1}, 1.0, 0.01)
	require.InDelta(t, math.Exp(-2*math.Pi*math.Pi*0.01), cmplx.Abs(damp[0]), 1e-12)
}

func TestNilComponentFactors(t *testing.T) {
	sf, pf := component.Factors([]float64{1, 2}, nil)
	require.Equal(t, make([]complex128, 2), sf)
	require.Equal(t, make([]complex128, 2), pf)
}

func TestCloneAndFingerprint(t *testing.T) {
	c := smectite()
	cl := c.Clone()
	cl.LayerAtoms[0].Pn = 3
	require.Equal(t, 4.0, c.LayerAtoms[0].Pn)
	require.NotEqual(t, c.Fingerprint(), cl.Fingerprint())

	cl.LayerAtoms[0].Pn = 4
	require.Equal(t, c.Fingerprint(), cl.Fingerprint())
}
