// SPDX-License-Identifier: MIT

// Package csds computes the crystallite (coherent scattering domain) size
// distribution: a discrete log-normal over the number of layers T per stack.
//
//	q(T) = √(2π)·exp(−(ln T − a)²/(2b²)) / (|b|·T)
//	a    = αs·ln(avg) + αo
//	b    = √(βs·ln(avg) + βo)
//
// Weights are indexed by T, so index 0 and everything below Minimum is 0.
package csds

import "math"

// Drits et al. (1997) defaults for the log-normal shape.
const (
	DritsAlphaScale  = 0.9485
	DritsAlphaOffset = 0.017
	DritsBetaScale   = 0.1032
	DritsBetaOffset  = 0.0034
)

// minT floors T before taking its logarithm.
const minT = 1e-50

// Parameters describe the distribution.
type Parameters struct {
	Average     float64
	Minimum     int
	Maximum     int
	AlphaScale  float64
	AlphaOffset float64
	BetaScale   float64
	BetaOffset  float64
}

// Distribution is the normalised weight per T and the mean thickness.
type Distribution struct {
	Weights []float64
	Mean    float64
}

// Min returns the first T with a non-zero weight, or 0 when there is none.
func (d Distribution) Min() int {
	for t, w := range d.Weights {
		if w > 0 {
			return t
		}
	}
	return 0
}

// Max returns the largest T carried by the weights.
func (d Distribution) Max() int {
	return len(d.Weights) - 1
}

// DritsParameters returns the Drits log-normal for the given average with
// minimum 1 and a maximum covering three widths above the log-mean.
func DritsParameters(average float64) Parameters {
	p := Parameters{
		Average:     average,
		Minimum:     1,
		AlphaScale:  DritsAlphaScale,
		AlphaOffset: DritsAlphaOffset,
		BetaScale:   DritsBetaScale,
		BetaOffset:  DritsBetaOffset,
	}
	a, b := p.shape()
	p.Maximum = int(math.Ceil(math.Exp(a + 3*b)))
	if avg := int(math.Ceil(average)); p.Maximum < avg {
		p.Maximum = avg
	}
	if p.Maximum < 1 {
		p.Maximum = 1
	}
	return p
}

func (p Parameters) shape() (a, b float64) {
	la := math.Log(p.Average)
	return p.AlphaScale*la + p.AlphaOffset, math.Sqrt(p.BetaScale*la + p.BetaOffset)
}

// Fingerprint flattens p for cache keys.
func (p Parameters) Fingerprint() []float64 {
	return []float64{p.Average, float64(p.Minimum), float64(p.Maximum),
		p.AlphaScale, p.AlphaOffset, p.BetaScale, p.BetaOffset}
}

// Compute returns the normalised distribution over T = 0..Maximum.
// Degenerate parameters (a NaN or zero width, an empty support or a zero
// sum) collapse to a unit weight at the average clamped to the support.
func Compute(p Parameters) Distribution {
	lo := p.Minimum
	if lo < 1 {
		lo = 1
	}
	hi := p.Maximum
	if hi < lo {
		hi = lo
	}

	a, b := p.shape()
	if math.IsNaN(a) || math.IsInf(a, 0) || math.IsNaN(b) || b == 0 || p.Maximum < lo {
		return unit(p.Average, lo, hi)
	}

	w := make([]float64, hi+1)
	var (
		t, q, sum, tsum float64
		d               float64
	)
	for i := lo; i <= hi; i++ {
		t = math.Max(float64(i), minT)
		d = math.Log(t) - a
		q = math.Sqrt(2*math.Pi) * math.Exp(-d*d/(2*b*b)) / (math.Abs(b) * t)
		w[i] = q
		sum += q
		tsum += float64(i) * q
	}
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return unit(p.Average, lo, hi)
	}
	for i := range w {
		w[i] /= sum
	}

	return Distribution{Weights: w, Mean: tsum / sum}
}

func unit(avg float64, lo, hi int) Distribution {
	t := lo
	if !math.IsNaN(avg) {
		t = int(math.Round(math.Min(math.Max(avg, float64(lo)), float64(hi))))
	}
	w := make([]float64, hi+1)
	w[t] = 1

	return Distribution{Weights: w, Mean: float64(t)}
}
