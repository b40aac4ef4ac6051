// SPDX-License-Identifier: MIT

package probability

// R3G2Tolerance is the validation tolerance of the R3G2 model.
const R3G2Tolerance = 1e-4

// NewR3G2 returns the maximum-ordering two-component model with Reichweite
// 3: every B layer is followed by at least three A layers, so W1 ∈ [2/3, 1].
//
// Only AAA, AAB, ABA and BAA occur, with W_AAA = 3·W1 − 2 and the others
// 1 − W1. AAB and ABA are always followed by A. The free parameter is
// P1111 (AAA→A) when W1 ≤ 3/4, otherwise P2111 (BAA→A); the other follows
// from stationarity of W_AAA.
func NewR3G2() (*Model, error) {
	params := []Param{
		{Name: "W1", Min: 2.0 / 3.0, Max: 1, Value: 0.75},
		{Name: "P1111_or_P2111", Min: 0, Max: 1, Value: 0.5},
	}
	build := func(m *Matrices, v []float64) {
		a := 3*v[0] - 2
		if a < 0 {
			a = 0
		}
		d := 1 - v[0]

		const (
			aaa = 0 // index i*4+j*2+k
			aab = 1
			aba = 2
			baa = 4
		)
		w3 := m.w[3]
		w3[aaa], w3[aab], w3[aba], w3[baa] = a, d, d, d

		var pAAAA, pBAAA float64
		if v[0] <= 0.75 {
			pAAAA = v[1]
			pBAAA = safeDiv(a*(1-pAAAA), d)
		} else {
			pBAAA = v[1]
			pAAAA = 1 - safeDiv(d*pBAAA, a)
		}

		p3 := m.p[3]
		for s := 0; s < 8; s++ {
			p3[s*2] = 1 // every other state is followed by A
		}
		p3[aaa*2], p3[aaa*2+1] = pAAAA, 1-pAAAA
		p3[baa*2], p3[baa*2+1] = pBAAA, 1-pBAAA
	}

	return newModel("R3G2", 2, 3, params, build, R3G2Tolerance)
}
