// SPDX-License-Identifier: MIT
// Package engine: matrix-power intensity synthesis.
//
// Complexity: O(len(q)·N·(Gʳ)³) for N = CSDS maximum.

package engine

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/katalvlaran/lvxrd/component"
	"github.com/katalvlaran/lvxrd/csds"
	"github.com/katalvlaran/lvxrd/goniometer"
	"github.com/katalvlaran/lvxrd/matrix"
)

var errShape = errors.New("engine: input arrays differ in length")

// DiffractedIntensity returns the pattern of phase over theta (radians) and
// stl (2·sinθ/λ, 1/nm). correction multiplies the result point-wise and may
// be nil. Invalid phases and inconsistent inputs yield zeros of len(theta).
func DiffractedIntensity(theta, stl []float64, phase *Phase, gonio goniometer.Parameters, correction []float64) []float64 {
	if !phase.Valid() {
		return make([]float64, len(theta))
	}
	g := len(phase.Components)
	sf := make([][]complex128, g)
	pf := make([][]complex128, g)
	for i, c := range phase.Components {
		sf[i], pf[i] = component.Factors(stl, c)
	}
	dist := csds.Compute(phase.CSDS)
	lp := goniometer.LorentzPolarization(theta, phase.SigmaStar, gonio.Soller1, gonio.Soller2, gonio.MonochromatorTwoTheta)

	out, err := synthesize(phase, sf, pf, dist, lp, correction)
	if err != nil {
		return make([]float64, len(theta))
	}
	return out
}

// synthesize builds the per-q junction matrices from precomputed factors
// and sums the CSDS progression. lp fixes the output length; sf, pf and
// correction (when non-nil) must match it.
func synthesize(phase *Phase, sf, pf [][]complex128, dist csds.Distribution, lp, correction []float64) ([]float64, error) {
	n := len(lp)
	out := make([]float64, n)
	if correction != nil && len(correction) != n {
		return out, errShape
	}
	for i := range sf {
		if len(sf[i]) != n || len(pf[i]) != n {
			return out, errShape
		}
	}

	mx := phase.Probability.Matrices()
	g, rank := mx.G(), mx.Rank()
	reps := rank / g

	scale := absoluteScale(phase, mx.Fractions(), dist.Mean)
	if scale == 0 {
		return out, nil
	}

	wd, err := mx.DistributionMatrix()
	if err != nil {
		return out, err
	}
	pd, err := mx.ProbabilityMatrix()
	if err != nil {
		return out, err
	}
	w, p := wd.Complex(), pd.Complex()

	lo, hi := phase.CSDS.Minimum, dist.Max()
	if lo < 1 {
		lo = 1
	}
	coef := progression(dist.Weights)

	var (
		ident, s, qpow, next, ws, fws *matrix.CDense
		fm, phim                      *matrix.CDense
	)
	if ident, err = matrix.NewCIdentity(rank); err != nil {
		return out, err
	}
	s, _ = matrix.NewCDense(rank, rank)
	next, _ = matrix.NewCDense(rank, rank)
	ws, _ = matrix.NewCDense(rank, rank)
	fws, _ = matrix.NewCDense(rank, rank)
	fm, _ = matrix.NewCDense(g, g)
	phim, _ = matrix.NewCDense(g, g)

	var (
		i, a, b, k int
		fx, phix   *matrix.CDense
		q          *matrix.CDense
		tr         complex128
	)
	for i = 0; i < n; i++ {
		for a = 0; a < g; a++ {
			for b = 0; b < g; b++ {
				if err = fm.Set(a, b, sf[a][i]*cmplx.Conj(sf[b][i])); err != nil {
					return out, fmt.Errorf("F[%d][%d]: %w", a, b, err)
				}
				if err = phim.Set(a, b, pf[a][i]); err != nil {
					return out, fmt.Errorf("PF[%d]: %w", a, err)
				}
			}
		}
		if fx, err = matrix.CRepeat(fm, reps); err != nil {
			return out, err
		}
		if phix, err = matrix.CRepeat(phim, reps); err != nil {
			return out, err
		}
		if q, err = matrix.CHadamard(phix, p); err != nil {
			return out, err
		}

		s.Zero()
		if err = s.AddScaled(complex(dist.Mean, 0), ident); err != nil {
			return out, err
		}
		qpow = q.Clone()
		for k = 1; k < hi; k++ {
			if k >= lo && coef[k] != 0 {
				if err = s.AddScaled(complex(coef[k], 0), qpow); err != nil {
					return out, err
				}
			}
			if k+1 < hi {
				if err = matrix.CMulInto(next, qpow, q); err != nil {
					return out, err
				}
				qpow, next = next, qpow
			}
		}

		if err = matrix.CMulInto(ws, w, s); err != nil {
			return out, err
		}
		if err = matrix.CMulInto(fws, fx, ws); err != nil {
			return out, err
		}
		if tr, err = matrix.CTrace(fws); err != nil {
			return out, err
		}

		out[i] = real(tr) * scale * lp[i]
		if correction != nil {
			out[i] *= correction[i]
		}
	}

	return out, nil
}

// progression returns c[n] = 2·Σ_{m>n}(m−n)·w[m] for every n.
func progression(w []float64) []float64 {
	c := make([]float64, len(w))
	var (
		n, m int
		sum  float64
	)
	for n = 1; n < len(w); n++ {
		sum = 0
		for m = n + 1; m < len(w); m++ {
			sum += float64(m-n) * w[m]
		}
		c[n] = 2 * sum
	}
	return c
}

// absoluteScale returns d̄001/(N̄·ρ̄·V̄²) with abundance-weighted means over
// the components, or 0 when the denominator vanishes.
func absoluteScale(phase *Phase, fractions []float64, meanN float64) float64 {
	var d, v, rho, vol float64
	for i, c := range phase.Components {
		if c == nil || i >= len(fractions) {
			continue
		}
		vol = c.Volume()
		d += fractions[i] * c.D001
		v += fractions[i] * vol
		if vol > 0 {
			rho += fractions[i] * c.Weight() / vol
		}
	}
	den := meanN * rho * v * v
	if !(den > 0) || math.IsInf(den, 0) {
		return 0
	}
	return d / den
}
