// SPDX-License-Identifier: MIT
// Package engine: phase and specimen snapshots.

package engine

import (
	"errors"
	"math"

	"github.com/katalvlaran/lvxrd/component"
	"github.com/katalvlaran/lvxrd/csds"
	"github.com/katalvlaran/lvxrd/goniometer"
	"github.com/katalvlaran/lvxrd/probability"
)

var (
	// ErrNilSpecimen indicates a nil specimen was passed to the calculator.
	ErrNilSpecimen = errors.New("engine: nil specimen")

	// ErrObservedMismatch indicates observed data that does not match the 2θ grid.
	ErrObservedMismatch = errors.New("engine: observed pattern does not match the 2θ grid")
)

// Phase is one mixed-layer phase: G components stacked according to a
// probability model. It is read-only during a calculation.
type Phase struct {
	Name        string
	SigmaStar   float64 // orientation spread, degrees
	CSDS        csds.Parameters
	Components  []*component.Component
	Probability *probability.Model
}

// Valid reports whether the phase can produce a non-zero pattern.
func (p *Phase) Valid() bool {
	return p != nil && p.Probability != nil && p.Probability.Valid() &&
		len(p.Components) == p.Probability.G()
}

// Clone deep copies the phase, its components and its model.
func (p *Phase) Clone() *Phase {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Components = make([]*component.Component, len(p.Components))
	for i, c := range p.Components {
		cp.Components[i] = c.Clone()
	}
	cp.Probability = p.Probability.Clone()

	return &cp
}

// Fingerprint flattens every input of the intensity calculation, for cache keys.
func (p *Phase) Fingerprint() []float64 {
	if p == nil {
		return []float64{-1}
	}
	out := []float64{p.SigmaStar, float64(len(p.Components))}
	out = append(out, p.CSDS.Fingerprint()...)
	for _, c := range p.Components {
		out = append(out, c.Fingerprint()...)
	}
	return append(out, p.Probability.Fingerprint()...)
}

// Specimen is one measured (or to-be-simulated) sample with its phase
// slots. A nil slot is an empty phase.
type Specimen struct {
	Name         string
	Goniometer   goniometer.Parameters
	SampleLength float64 // cm; ≤ 0 disables the correction
	Absorption   float64 // ≤ 0 disables the correction

	// TwoTheta is the observed grid in degrees; when empty the goniometer
	// range is used.
	TwoTheta []float64
	Observed []float64
	Excluded [][2]float64 // 2θ ranges, degrees

	Phases []*Phase
}

// Grid returns 2θ (degrees), θ (radians) and 2·sinθ/λ (1/nm).
func (s *Specimen) Grid() (twoTheta, theta, stl []float64) {
	if len(s.TwoTheta) > 0 {
		twoTheta = append([]float64(nil), s.TwoTheta...)
	} else {
		twoTheta = s.Goniometer.Range()
	}
	theta = goniometer.Theta(twoTheta)
	stl = goniometer.STL(theta, s.Goniometer.Wavelength)

	return twoTheta, theta, stl
}

// ExcludedMask marks the points of twoTheta that fall inside an excluded range.
func (s *Specimen) ExcludedMask(twoTheta []float64) []bool {
	mask := make([]bool, len(twoTheta))
	for _, r := range s.Excluded {
		lo, hi := math.Min(r[0], r[1]), math.Max(r[0], r[1])
		for i, x := range twoTheta {
			if x >= lo && x <= hi {
				mask[i] = true
			}
		}
	}
	return mask
}

// Clone deep copies the specimen and every phase slot. Phases shared by
// several slots stay shared in the copy.
func (s *Specimen) Clone() *Specimen {
	return s.CloneWith(make(map[*Phase]*Phase))
}

// CloneWith is Clone with a phase mapping shared across several specimens.
func (s *Specimen) CloneWith(seen map[*Phase]*Phase) *Specimen {
	if s == nil {
		return nil
	}
	cp := *s
	if s.Goniometer.ADS != nil {
		ads := *s.Goniometer.ADS
		cp.Goniometer.ADS = &ads
	}
	cp.TwoTheta = append([]float64(nil), s.TwoTheta...)
	cp.Observed = append([]float64(nil), s.Observed...)
	cp.Excluded = append([][2]float64(nil), s.Excluded...)
	cp.Phases = ClonePhases(s.Phases, seen)

	return &cp
}

// ClonePhases deep copies phases, mapping repeated pointers to one copy
// through seen.
func ClonePhases(phases []*Phase, seen map[*Phase]*Phase) []*Phase {
	out := make([]*Phase, len(phases))
	for i, p := range phases {
		if p == nil {
			continue
		}
		if c, ok := seen[p]; ok {
			out[i] = c
			continue
		}
		c := p.Clone()
		seen[p] = c
		out[i] = c
	}
	return out
}
