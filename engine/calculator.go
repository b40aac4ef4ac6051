// SPDX-License-Identifier: MIT
// Package engine: cache-backed calculator.

package engine

import (
	"fmt"

	"github.com/katalvlaran/lvxrd/cache"
	"github.com/katalvlaran/lvxrd/component"
	"github.com/katalvlaran/lvxrd/csds"
	"github.com/katalvlaran/lvxrd/goniometer"
	"github.com/katalvlaran/lvxrd/logger"
)

// Calculator memoises every stage of the intensity pipeline in a
// cache.Cache. It holds no other state and is safe for concurrent use when
// the cache is.
type Calculator struct {
	cache cache.Cache
	log   *logger.Logger
}

// NewCalculator returns a calculator over c. A nil cache disables
// memoisation; a nil logger discards output.
func NewCalculator(c cache.Cache, log *logger.Logger) *Calculator {
	if c == nil {
		c = cache.Nop{}
	}
	return &Calculator{cache: c, log: logger.OrNop(log)}
}

// Cache returns the backing cache.
func (c *Calculator) Cache() cache.Cache { return c.cache }

// SpecimenPattern is the calculated output for one specimen.
type SpecimenPattern struct {
	TwoTheta   []float64
	Theta      []float64
	STL        []float64
	Correction []float64
	Mask       []bool      // excluded points
	Phases     [][]float64 // one pattern per phase slot; zeros for empty slots
}

// Total returns Σ fractions[i]·Phases[i] point-wise; missing fractions count as 0.
func (sp *SpecimenPattern) Total(fractions []float64) []float64 {
	out := make([]float64, len(sp.TwoTheta))
	for i, pat := range sp.Phases {
		if i >= len(fractions) || fractions[i] == 0 {
			continue
		}
		for j := range pat {
			out[j] += fractions[i] * pat[j]
		}
	}
	return out
}

// Specimen computes the correction range and every phase slot of sp.
func (c *Calculator) Specimen(sp *Specimen) (*SpecimenPattern, error) {
	if sp == nil {
		return nil, fmt.Errorf("Specimen: %w", ErrNilSpecimen)
	}
	if err := sp.Goniometer.Validate(); err != nil {
		return nil, fmt.Errorf("Specimen(%q): %w", sp.Name, err)
	}
	twoTheta, theta, stl := sp.Grid()
	if len(sp.Observed) > 0 && len(sp.Observed) != len(twoTheta) {
		return nil, fmt.Errorf("Specimen(%q): observed=%d grid=%d: %w",
			sp.Name, len(sp.Observed), len(twoTheta), ErrObservedMismatch)
	}

	out := &SpecimenPattern{
		TwoTheta:   twoTheta,
		Theta:      theta,
		STL:        stl,
		Correction: c.Correction(theta, sp.Goniometer, sp.SampleLength, sp.Absorption),
		Mask:       sp.ExcludedMask(twoTheta),
		Phases:     make([][]float64, len(sp.Phases)),
	}
	for i, ph := range sp.Phases {
		if ph == nil {
			out.Phases[i] = make([]float64, len(theta))
			continue
		}
		out.Phases[i] = c.Phase(theta, stl, ph, sp.Goniometer, out.Correction)
	}

	return out, nil
}

// Phase is the memoised DiffractedIntensity.
func (c *Calculator) Phase(theta, stl []float64, phase *Phase, gonio goniometer.Parameters, correction []float64) []float64 {
	if !phase.Valid() {
		c.log.Debug("invalid phase yields a zero pattern", "phase", phaseName(phase))
		return make([]float64, len(theta))
	}
	key := cache.NewKey("phase").
		Floats(theta).
		Floats(stl).
		Floats(phase.Fingerprint()).
		Floats(gonio.Fingerprint()).
		Floats(correction).
		Sum()

	return cache.Floats(c.cache, key, func() []float64 {
		g := len(phase.Components)
		sf := make([][]complex128, g)
		pf := make([][]complex128, g)
		for i, comp := range phase.Components {
			sf[i], pf[i] = c.Factors(stl, comp)
		}
		dist := c.Distribution(phase.CSDS)
		lp := c.LorentzPolarization(theta, phase.SigmaStar, gonio)

		out, err := synthesize(phase, sf, pf, dist, lp, correction)
		if err != nil {
			c.log.Warn("intensity synthesis failed", "phase", phase.Name, "error", err)
			return make([]float64, len(theta))
		}
		return out
	})
}

// Factors is the memoised component.Factors.
func (c *Calculator) Factors(stl []float64, comp *component.Component) (sf, pf []complex128) {
	fp := comp.Fingerprint()
	sf = cache.Complex(c.cache, cache.NewKey("sf").Floats(stl).Floats(fp).Sum(), func() []complex128 {
		return component.StructureFactor(stl, comp)
	})
	if comp == nil {
		return sf, make([]complex128, len(stl))
	}
	pf = cache.Complex(c.cache, cache.NewKey("pf").Floats(stl).Float(comp.D001).Float(comp.DeltaC).Sum(), func() []complex128 {
		return component.PhaseFactor(stl, comp.D001, comp.DeltaC)
	})
	return sf, pf
}

// Distribution is the memoised csds.Compute. The mean is stored after the weights.
func (c *Calculator) Distribution(p csds.Parameters) csds.Distribution {
	v := cache.Floats(c.cache, cache.NewKey("csds").Floats(p.Fingerprint()).Sum(), func() []float64 {
		d := csds.Compute(p)
		return append(append([]float64(nil), d.Weights...), d.Mean)
	})
	return csds.Distribution{Weights: v[:len(v)-1], Mean: v[len(v)-1]}
}

// LorentzPolarization is the memoised goniometer.LorentzPolarization.
func (c *Calculator) LorentzPolarization(theta []float64, sigmaStar float64, gonio goniometer.Parameters) []float64 {
	key := cache.NewKey("lp").Floats(theta).Float(sigmaStar).
		Float(gonio.Soller1).Float(gonio.Soller2).Float(gonio.MonochromatorTwoTheta).Sum()
	return cache.Floats(c.cache, key, func() []float64 {
		return goniometer.LorentzPolarization(theta, sigmaStar, gonio.Soller1, gonio.Soller2, gonio.MonochromatorTwoTheta)
	})
}

// Correction is the memoised goniometer.CorrectionRange.
func (c *Calculator) Correction(theta []float64, gonio goniometer.Parameters, sampleLength, absorption float64) []float64 {
	key := cache.NewKey("correction").Floats(theta).Floats(gonio.Fingerprint()).
		Float(sampleLength).Float(absorption).Sum()
	return cache.Floats(c.cache, key, func() []float64 {
		return goniometer.CorrectionRange(theta, gonio, sampleLength, absorption)
	})
}

func phaseName(p *Phase) string {
	if p == nil {
		return "<nil>"
	}
	return p.Name
}
