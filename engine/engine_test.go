package engine_test

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/katalvlaran/lvxrd/cache"
	"github.com/katalvlaran/lvxrd/component"
	"github.com/katalvlaran/lvxrd/csds"
	"github.com/katalvlaran/lvxrd/engine"
	"github.com/katalvlaran/lvxrd/goniometer"
	"github.com/katalvlaran/lvxrd/probability"
	"github.com/katalvlaran/lvxrd/scattering"
	"github.com/stretchr/testify/require"
)

func layer(name string, d001 float64) *component.Component {
	si := scattering.MustLookup("Si")
	o := scattering.MustLookup("O")
	k := scattering.MustLookup("K")
	return &component.Component{
		Name: name,
		LayerAtoms: []scattering.Atom{
			{Name: "O1", Type: o, Pn: 6, DefaultZ: 0},
			{Name: "Si1", Type: si, Pn: 4, DefaultZ: 0.06},
			{Name: "O2", Type: o, Pn: 4, DefaultZ: 0.22},
		},
		InterlayerAtoms: []scattering.Atom{{Name: "K", Type: k, Pn: 1, DefaultZ: 0.8}},
		CellA:           0.52, CellB: 0.9, D001: d001, DefaultC: 1.0, LatticeD: 0.66,
		DeltaC: 0.001,
	}
}

func illiteSmectite(t *testing.T) *engine.Phase {
	t.Helper()
	m, err := probability.NewR1(2)
	require.NoError(t, err)
	require.NoError(t, m.SetParam("W1", 0.3))
	require.NoError(t, m.SetParam("P11_or_P22", 0.2))
	require.True(t, m.Update())
	return &engine.Phase{
		Name:        "I/S",
		SigmaStar:   12,
		CSDS:        csds.DritsParameters(8),
		Components:  []*component.Component{layer("illite", 1.0), layer("smectite", 1.5)},
		Probability: m,
	}
}

func grid(g goniometer.Parameters) (theta, stl []float64) {
	theta = goniometer.Theta(g.Range())
	return theta, goniometer.STL(theta, g.Wavelength)
}

func smallGonio() goniometer.Parameters {
	g := goniometer.DefaultParameters()
	g.MinTwoTheta, g.MaxTwoTheta, g.Steps = 2, 40, 60
	return g
}

// TestSingleLayerClosedForm checks R0G1 with a three-layer stack against
// |SF|²·(3 + 4·PF + 2·PF²).
func TestSingleLayerClosedForm(t *testing.T) {
	c := &component.Component{
		Name:       "K-layer",
		LayerAtoms: []scattering.Atom{{Name: "K", Type: scattering.MustLookup("K"), Pn: 1}},
		CellA:      0.5, CellB: 0.9, D001: 1.0, DefaultC: 1.0, LatticeD: 1.0,
	}
	m, err := probability.NewR0(1)
	require.NoError(t, err)
	phase := &engine.Phase{
		SigmaStar:   12,
		CSDS:        csds.Parameters{Average: 3, Minimum: 1, Maximum: 3, BetaScale: -1, BetaOffset: -1},
		Components:  []*component.Component{c},
		Probability: m,
	}
	g := smallGonio()
	theta, stl := grid(g)
	got := engine.DiffractedIntensity(theta, stl, phase, g, nil)

	sf, pf := component.Factors(stl, c)
	lp := goniometer.LorentzPolarization(theta, 12, g.Soller1, g.Soller2, g.MonochromatorTwoTheta)
	scale := c.D001 / (3 * (c.Weight() / c.Volume()) * c.Volume() * c.Volume())
	for i := range theta {
		amp := cmplx.Abs(sf[i])
		want := amp * amp * real(3+4*pf[i]+2*pf[i]*pf[i]) * scale * lp[i]
		require.InDelta(t, want, got[i], 1e-9*math.Max(1, math.Abs(want)), "i=%d", i)
	}
}

func TestInvalidPhaseYieldsZeros(t *testing.T) {
	phase := illiteSmectite(t)
	mx := phase.Probability.Matrices()
	require.NoError(t, mx.SetP(1, 0, 0))
	require.NoError(t, mx.SetP(1, 0, 1)) // row sums to 2
	require.False(t, mx.Validate(probability.DefaultTolerance))

	g := smallGonio()
	theta, stl := grid(g)
	out := engine.DiffractedIntensity(theta, stl, phase, g, nil)
	require.Len(t, out, len(theta))
	require.Equal(t, make([]float64, len(theta)), out)

	short := illiteSmectite(t)
	short.Components = short.Components[:1]
	require.Equal(t, make([]float64, len(theta)), engine.DiffractedIntensity(theta, stl, short, g, nil))

	var nilPhase *engine.Phase
	require.Equal(t, make([]float64, 3), engine.DiffractedIntensity(make([]float64, 3), make([]float64, 3), nilPhase, g, nil))
}

// requireSamePattern compares two patterns point by point to a relative 1e-9.
func requireSamePattern(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	var peak float64
	for i := range want {
		peak = math.Max(peak, want[i])
		require.InDelta(t, want[i], got[i], 1e-9*math.Max(1, math.Abs(want[i])), "i=%d", i)
	}
	require.Greater(t, peak, 0.0)
}

// TestR2G2MarkovChainMatchesR1G2 builds an R2G2 model whose triplet
// probabilities only depend on the last layer; the Gʳ-state expansion must
// then reproduce the R1G2 pattern.
func TestR2G2MarkovChainMatchesR1G2(t *testing.T) {
	r1 := illiteSmectite(t)
	p22, err := r1.Probability.Matrices().P(1, 1)
	require.NoError(t, err)

	m, err := probability.NewR2G2()
	require.NoError(t, err)
	require.NoError(t, m.SetParam("W1", 0.3))
	require.NoError(t, m.SetParam("P11_or_P22", 0.2))
	require.NoError(t, m.SetParam("P111_or_P211", 0.2))
	require.NoError(t, m.SetParam("P122_or_P222", p22))
	require.True(t, m.Update())

	pBAA, err := m.Matrices().P(1, 0, 0)
	require.NoError(t, err)
	require.InDelta(t, 0.2, pBAA, 1e-12)
	pBBB, err := m.Matrices().P(1, 1, 1)
	require.NoError(t, err)
	require.InDelta(t, p22, pBBB, 1e-12)

	r2 := r1.Clone()
	r2.Probability = m

	g := smallGonio()
	theta, stl := grid(g)
	corr := goniometer.CorrectionRange(theta, g, 2.5, 0)
	requireSamePattern(t,
		engine.DiffractedIntensity(theta, stl, r1, g, corr),
		engine.DiffractedIntensity(theta, stl, r2, g, corr))
}

// TestR3G2PureFirstComponentMatchesR0G1 sets W1 = 1, leaving a stack of
// component 1 only.
func TestR3G2PureFirstComponentMatchesR0G1(t *testing.T) {
	m, err := probability.NewR3G2()
	require.NoError(t, err)
	require.NoError(t, m.SetParam("W1", 1))
	require.True(t, m.Update())

	mixed := illiteSmectite(t)
	mixed.Probability = m

	single, err := probability.NewR0(1)
	require.NoError(t, err)
	pure := &engine.Phase{
		Name:        "illite",
		SigmaStar:   mixed.SigmaStar,
		CSDS:        mixed.CSDS,
		Components:  []*component.Component{layer("illite", 1.0)},
		Probability: single,
	}

	g := smallGonio()
	theta, stl := grid(g)
	requireSamePattern(t,
		engine.DiffractedIntensity(theta, stl, pure, g, nil),
		engine.DiffractedIntensity(theta, stl, mixed, g, nil))
}

func TestIntensityNonNegative(t *testing.T) {
	phase := illiteSmectite(t)
	g := smallGonio()
	theta, stl := grid(g)
	corr := goniometer.CorrectionRange(theta, g, 2.5, 0)
	out := engine.DiffractedIntensity(theta, stl, phase, g, corr)

	var peak float64
	for _, v := range out {
		peak = math.Max(peak, v)
	}
	require.Positive(t, peak)
	for i, v := range out {
		require.GreaterOrEqual(t, v, -1e-9*peak, "i=%d", i)
	}

	// A mismatched correction length degrades to zeros.
	require.Equal(t, make([]float64, len(theta)), engine.DiffractedIntensity(theta, stl, phase, g, corr[:3]))
}

func TestCalculatorMatchesPureAndCaches(t *testing.T) {
	phase := illiteSmectite(t)
	g := smallGonio()
	theta, stl := grid(g)
	corr := goniometer.CorrectionRange(theta, g, 0, 0)
	want := engine.DiffractedIntensity(theta, stl, phase, g, corr)

	mem := cache.NewMemory(0, nil)
	calc := engine.NewCalculator(mem, nil)
	got := calc.Phase(theta, stl, phase, g, corr)
	require.InDeltaSlice(t, want, got, 1e-12)

	before := mem.Stats().Hits
	again := calc.Phase(theta, stl, phase, g, corr)
	require.Equal(t, got, again)
	require.Greater(t, mem.Stats().Hits, before)

	// A parameter change must not hit the stale entry.
	changed := phase.Clone()
	changed.Components[1].D001 = 1.4
	require.NotEqual(t, got, calc.Phase(theta, stl, changed, g, corr))

	nocache := engine.NewCalculator(nil, nil)
	require.InDeltaSlice(t, want, nocache.Phase(theta, stl, phase, g, corr), 1e-12)
}

func TestCalculatorSpecimen(t *testing.T) {
	phase := illiteSmectite(t)
	sp := &engine.Specimen{
		Name:         "sample",
		Goniometer:   smallGonio(),
		SampleLength: 2.5,
		Excluded:     [][2]float64{{10, 5}},
		Phases:       []*engine.Phase{phase, nil},
	}
	calc := engine.NewCalculator(cache.NewMemory(0, nil), nil)
	pat, err := calc.Specimen(sp)
	require.NoError(t, err)
	require.Len(t, pat.Phases, 2)
	require.Len(t, pat.Phases[0], 60)
	require.Equal(t, make([]float64, 60), pat.Phases[1])

	for i, x := range pat.TwoTheta {
		require.Equal(t, x >= 5 && x <= 10, pat.Mask[i])
	}
	total := pat.Total([]float64{0.5, 0.5})
	require.InDelta(t, 0.5*pat.Phases[0][10], total[10], 1e-12)

	sp.Observed = []float64{1, 2}
	_, err = calc.Specimen(sp)
	require.ErrorIs(t, err, engine.ErrObservedMismatch)

	_, err = calc.Specimen(nil)
	require.ErrorIs(t, err, engine.ErrNilSpecimen)

	sp.Observed = nil
	sp.Goniometer.Wavelength = 0
	_, err = calc.Specimen(sp)
	require.ErrorIs(t, err, goniometer.ErrInvalidWavelength)
}

func TestSpecimenCloneKeepsSharing(t *testing.T) {
	phase := illiteSmectite(t)
	sp := &engine.Specimen{
		Goniometer: smallGonio(),
		TwoTheta:   []float64{5, 6, 7},
		Observed:   []float64{1, 2, 3},
		Phases:     []*engine.Phase{phase, phase},
	}
	cl := sp.Clone()
	require.Same(t, cl.Phases[0], cl.Phases[1])
	require.NotSame(t, sp.Phases[0], cl.Phases[0])

	cl.Observed[0] = 9
	cl.Phases[0].Components[0].D001 = 2
	require.Equal(t, 1.0, sp.Observed[0])
	require.Equal(t, 1.0, sp.Phases[0].Components[0].D001)

	tt, th, stl := cl.Grid()
	require.Equal(t, []float64{5, 6, 7}, tt)
	require.Len(t, th, 3)
	require.InDelta(t, 2*math.Sin(th[0])/cl.Goniometer.Wavelength, stl[0], 1e-12)
}

func BenchmarkDiffractedIntensityR1G2(b *testing.B) {
	m, _ := probability.NewR1(2)
	phase := &engine.Phase{
		SigmaStar:   12,
		CSDS:        csds.DritsParameters(10),
		Components:  []*component.Component{layer("a", 1.0), layer("b", 1.4)},
		Probability: m,
	}
	g := goniometer.DefaultParameters()
	g.Steps = 500
	theta := goniometer.Theta(g.Range())
	stl := goniometer.STL(theta, g.Wavelength)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		_ = engine.DiffractedIntensity(theta, stl, phase, g, nil)
	}
}
