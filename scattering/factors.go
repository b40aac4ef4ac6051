// SPDX-License-Identifier: MIT
// Package scattering: ASF and structure factor kernels.
//
// Complexity: O(len(q)) per call; one allocation for the result.

package scattering

import (
	"math"
	"math/cmplx"
)

// sPerQ converts q (1/nm) to s = sinθ/λ in 1/Å.
const sPerQ = 0.05

// ASF returns the Cromer–Mann atomic scattering factor of t at every q,
// damped by the Debye–Waller term exp(−B·s²).
// A nil type yields zeros.
func ASF(q []float64, t *AtomType) []float64 {
	out := make([]float64, len(q))
	if t == nil {
		return out
	}
	var (
		i, k  int
		s2, f float64
	)
	for i = range q {
		s2 = q[i] * sPerQ
		s2 *= s2
		f = t.C
		for k = 0; k < 5; k++ {
			if t.A[k] == 0 {
				continue
			}
			f += t.A[k] * math.Exp(-t.B[k]*s2)
		}
		if t.Debye != 0 {
			f *= math.Exp(-t.Debye * s2)
		}
		out[i] = f
	}

	return out
}

// StructureFactor returns asf·pn·exp(2πi·z·q) for a at every q, using a.Z.
// A nil atom or a nil type yields zeros.
func StructureFactor(q []float64, a *Atom) []complex128 {
	out := make([]complex128, len(q))
	if a == nil || a.Type == nil {
		return out
	}
	asf := ASF(q, a.Type)
	var i int
	for i = range q {
		out[i] = complex(asf[i]*a.Pn, 0) * cmplx.Exp(complex(0, 2*math.Pi*a.Z*q[i]))
	}

	return out
}

// AccumulateStructureFactor adds StructureFactor(q, a) into dst in place.
// dst must have len(q) elements.
func AccumulateStructureFactor(dst []complex128, q []float64, a *Atom) {
	if a == nil || a.Type == nil || a.Pn == 0 {
		return
	}
	asf := ASF(q, a.Type)
	var i int
	for i = range q {
		dst[i] += complex(asf[i]*a.Pn, 0) * cmplx.Exp(complex(0, 2*math.Pi*a.Z*q[i]))
	}
}
