// SPDX-License-Identifier: MIT

// Package goniometer implements the instrument side of a Bragg–Brentano
// pattern: the 2θ grid, Lorentz-polarisation factor, automatic divergence
// slit, absorption and sample-length corrections, and 2θ ↔ d conversions.
//
// Conventions:
//   - Parameters hold angles in degrees; θ arrays passed to the kernels are
//     in radians.
//   - Wavelength and d-spacings are in nm; Radius and sample length share
//     one length unit (cm).
package goniometer

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidWavelength indicates a non-positive wavelength.
	ErrInvalidWavelength = errors.New("goniometer: wavelength must be > 0")

	// ErrInvalidRange indicates a 2θ range with Max < Min or fewer than one step.
	ErrInvalidRange = errors.New("goniometer: invalid 2θ range")
)

// ADS describes an automatic-divergence-slit correction
// Factor·sin(PhaseFactor·θ + PhaseShift) + Constant, θ in radians.
type ADS struct {
	Factor      float64
	PhaseFactor float64
	PhaseShift  float64
	Constant    float64
}

// Parameters describe the goniometer. A nil ADS disables that correction.
type Parameters struct {
	Wavelength            float64 // nm
	Radius                float64 // cm
	Divergence            float64 // degrees
	Soller1               float64 // degrees
	Soller2               float64 // degrees
	MinTwoTheta           float64 // degrees
	MaxTwoTheta           float64 // degrees
	Steps                 int
	MonochromatorTwoTheta float64 // degrees; 0 without monochromator
	ADS                   *ADS
}

// DefaultParameters returns a Cu Kα1 goniometer scanning 3–45 °2θ.
func DefaultParameters() Parameters {
	return Parameters{
		Wavelength:  0.154056,
		Radius:      24,
		Divergence:  0.5,
		Soller1:     2.3,
		Soller2:     2.3,
		MinTwoTheta: 3,
		MaxTwoTheta: 45,
		Steps:       2500,
	}
}

// Validate checks the parameters the calculations depend on.
func (p Parameters) Validate() error {
	if !(p.Wavelength > 0) {
		return ErrInvalidWavelength
	}
	if p.Steps < 1 || p.MaxTwoTheta < p.MinTwoTheta {
		return fmt.Errorf("%w: [%g, %g] in %d steps", ErrInvalidRange, p.MinTwoTheta, p.MaxTwoTheta, p.Steps)
	}
	return nil
}

// Range returns Steps equally spaced 2θ values from MinTwoTheta to
// MaxTwoTheta inclusive, in degrees.
func (p Parameters) Range() []float64 {
	if p.Steps <= 1 {
		return []float64{p.MinTwoTheta}
	}
	out := make([]float64, p.Steps)
	step := (p.MaxTwoTheta - p.MinTwoTheta) / float64(p.Steps-1)
	for i := range out {
		out[i] = p.MinTwoTheta + float64(i)*step
	}
	out[len(out)-1] = p.MaxTwoTheta

	return out
}

// Fingerprint flattens p for cache keys.
func (p Parameters) Fingerprint() []float64 {
	out := []float64{p.Wavelength, p.Radius, p.Divergence, p.Soller1, p.Soller2,
		p.MinTwoTheta, p.MaxTwoTheta, float64(p.Steps), p.MonochromatorTwoTheta}
	if p.ADS != nil {
		out = append(out, 1, p.ADS.Factor, p.ADS.PhaseFactor, p.ADS.PhaseShift, p.ADS.Constant)
	}
	return out
}

// Theta converts 2θ in degrees to θ in radians.
func Theta(twoTheta []float64) []float64 {
	out := make([]float64, len(twoTheta))
	for i, v := range twoTheta {
		out[i] = radians(v) / 2
	}
	return out
}

// STL returns 2·sinθ/λ (1/nm) for θ in radians.
func STL(theta []float64, wavelength float64) []float64 {
	out := make([]float64, len(theta))
	for i, t := range theta {
		out[i] = 2 * math.Sin(t) / wavelength
	}
	return out
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }
