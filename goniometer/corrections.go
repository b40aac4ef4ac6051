// SPDX-License-Identifier: MIT
// Package goniometer: intensity corrections.

package goniometer

import "math"

// minSigmaStar floors σ* to keep the Lorentz factor finite.
const minSigmaStar = 1e-18

// LorentzPolarization returns the Lorentz-polarisation factor for an
// oriented aggregate with orientation spread sigmaStar, Soller slits soller1
// and soller2 and a monochromator at mcr2theta (all in degrees). θ ≤ 0
// yields 0.
func LorentzPolarization(theta []float64, sigmaStar, soller1, soller2, mcr2theta float64) []float64 {
	out := make([]float64, len(theta))
	sigma := math.Max(radians(sigmaStar), minSigmaStar)
	s := math.Hypot(radians(soller1)/2, radians(soller2)/2)
	cm := math.Cos(radians(mcr2theta))
	cm2 := cm * cm

	var (
		st, q, tf, c2t, pol float64
	)
	for i, t := range theta {
		st = math.Sin(t)
		if st <= 0 {
			continue
		}
		c2t = math.Cos(2 * t)
		pol = (1 + c2t*c2t*cm2) / (1 + cm2)
		if s == 0 {
			// s → 0 limit of the expression below.
			tf = 1 / (4 * sigma * sigma * st)
		} else {
			q = s / (math.Sqrt(8) * st * sigma)
			tf = math.Erf(q)*math.Sqrt(2*math.Pi)/(2*sigma*s) - 2*st*(-math.Expm1(-q*q))/(s*s)
		}
		out[i] = tf * pol / st
	}

	return out
}

// CorrectionRange returns the product of the ADS factor (when configured),
// the absorption factor min(1 − exp(−2·absorption/sinθ), 1) and the
// sample-length factor min(sinθ·L/(R·tan(divergence)), 1). A non-positive
// absorption or sample length disables that factor.
func CorrectionRange(theta []float64, p Parameters, sampleLength, absorption float64) []float64 {
	out := make([]float64, len(theta))
	tanDiv := math.Tan(radians(p.Divergence))
	useLength := sampleLength > 0 && p.Radius > 0 && tanDiv > 0

	var st float64
	for i, t := range theta {
		out[i] = 1
		st = math.Sin(t)
		if p.ADS != nil {
			out[i] *= p.ADS.Factor*math.Sin(p.ADS.PhaseFactor*t+p.ADS.PhaseShift) + p.ADS.Constant
		}
		if absorption > 0 && st > 0 {
			out[i] *= math.Min(1-math.Exp(-2*absorption/st), 1)
		}
		if useLength {
			out[i] *= math.Min(math.Max(st, 0)*sampleLength/(p.Radius*tanDiv), 1)
		}
	}

	return out
}

// NMFrom2T converts 2θ (degrees) to a d-spacing (nm) via d = λ/(2·sinθ).
// 2θ = 0 maps to 1e16, or to 0 when zeroForInf is set.
func NMFrom2T(twoTheta, wavelength float64, zeroForInf bool) float64 {
	st := math.Sin(radians(twoTheta) / 2)
	if st == 0 {
		if zeroForInf {
			return 0
		}
		return 1e16
	}
	return wavelength / (2 * st)
}

// TwoTFromNM converts a d-spacing (nm) to 2θ (degrees). d = 0 is treated
// as the zero-for-infinity sentinel and maps to 0; spacings below λ/2
// saturate at 180°.
func TwoTFromNM(d, wavelength float64) float64 {
	if d == 0 {
		return 0
	}
	x := wavelength / (2 * d)
	x = math.Max(-1, math.Min(1, x))

	return 2 * degrees(math.Asin(x))
}
