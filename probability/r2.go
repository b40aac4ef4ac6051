// SPDX-License-Identifier: MIT

package probability

// NewR2G2 returns the two-component model with Reichweite 2.
//
// W1 and P11_or_P22 define the pair statistics exactly as in R1G2. The
// triplet parameters each fix one probability of a pair of rows sharing the
// same last two layers; the partner follows from stationarity of W_AA
// (P111_or_P211) or W_BB (P122_or_P222). The lower of the two competing
// abundances owns the free parameter.
func NewR2G2() (*Model, error) {
	params := []Param{
		{Name: "W1", Min: 0, Max: 1, Value: 0.5},
		{Name: "P11_or_P22", Min: 0, Max: 1, Value: 0.5},
		{Name: "P111_or_P211", Min: 0, Max: 1, Value: 0.5},
		{Name: "P122_or_P222", Min: 0, Max: 1, Value: 0.5},
	}
	build := func(m *Matrices, v []float64) {
		w := []float64{v[0], 1 - v[0]}
		p1 := make([]float64, 4)
		fillR1Rows(p1, w, v[1:2], 2)

		// Pair abundances, index i*2+j.
		w2 := m.w[2]
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				w2[i*2+j] = w[i] * p1[i*2+j]
			}
		}
		wAA, wAB, wBA, wBB := w2[0], w2[1], w2[2], w2[3]

		// Triplet rows, index i*4+j*2+k.
		var pAAA, pBAA, pABB, pBBB float64
		if wAA <= wBA {
			pAAA = v[2]
			pBAA = safeDiv(wAA*(1-pAAA), wBA)
		} else {
			pBAA = v[2]
			pAAA = 1 - safeDiv(wBA*pBAA, wAA)
		}
		if wBB <= wAB {
			pBBB = v[3]
			pABB = safeDiv(wBB*(1-pBBB), wAB)
		} else {
			pABB = v[3]
			pBBB = 1 - safeDiv(wAB*pABB, wBB)
		}

		p2 := m.p[2]
		p2[0], p2[1] = pAAA, 1-pAAA // AA→
		p2[2], p2[3] = 1-pABB, pABB // AB→
		p2[4], p2[5] = pBAA, 1-pBAA // BA→
		p2[6], p2[7] = 1-pBBB, pBBB // BB→
	}

	return newModel("R2G2", 2, 2, params, build, DefaultTolerance)
}
