// SPDX-License-Identifier: MIT

package probability

import "fmt"

// NewR1 returns the nearest-neighbour model for g = 2..4 components.
//
// Parameters are the fractions (W1, F2..) and (g−1)² row parameters. Every
// row of P except the one of the most abundant component (the higher index
// on ties) is free: its diagonal entry first, then the remaining columns in
// ascending order, each as a fraction of what the row has left. The dominant
// row follows from stationarity, W_j = Σ_i W_i·P_ij.
//
// For g = 2 the single row parameter is named P11_or_P22: it is P11 when
// W1 ≤ 0.5 and P22 otherwise.
func NewR1(g int) (*Model, error) {
	if g < 2 || g > 4 {
		return nil, probErrorf(fmt.Sprintf("NewR1(G%d)", g), ErrUnsupported)
	}
	params := fractionParams(g)
	if g == 2 {
		params = append(params, Param{Name: "P11_or_P22", Min: 0, Max: 1, Value: 0.5})
	} else {
		for k := 1; k < g; k++ {
			for f := 1; f < g; f++ {
				params = append(params, Param{
					Name: fmt.Sprintf("R%dF%d", k, f), Min: 0, Max: 1,
					Value: 1 / float64(g-f+1),
				})
			}
		}
	}
	build := func(m *Matrices, v []float64) {
		w := fractionChain(v[:g-1], g)
		copy(m.w[1], w)
		fillR1Rows(m.p[1], w, v[g-1:], g)
	}

	return newModel(fmt.Sprintf("R1G%d", g), g, 1, params, build, DefaultTolerance)
}

// fillR1Rows writes the g×g junction matrix into p from abundances w and the
// (g−1)² row parameters.
func fillR1Rows(p, w, rows []float64, g int) {
	d := 0
	for i := 1; i < g; i++ {
		if w[i] >= w[d] {
			d = i
		}
	}

	var (
		i, j, k, c int
		rem        float64
		cols       = make([]int, 0, g)
	)
	for i = 0; i < g; i++ {
		if i == d {
			continue
		}
		cols = append(cols[:0], i)
		for j = 0; j < g; j++ {
			if j != i {
				cols = append(cols, j)
			}
		}
		f := rows[k*(g-1) : (k+1)*(g-1)]
		rem = 1
		for c = 0; c < g-1; c++ {
			p[i*g+cols[c]] = f[c] * rem
			rem -= p[i*g+cols[c]]
		}
		p[i*g+cols[g-1]] = rem
		k++
	}

	for j = 0; j < g; j++ {
		rem = w[j]
		for i = 0; i < g; i++ {
			if i != d {
				rem -= w[i] * p[i*g+j]
			}
		}
		p[d*g+j] = safeDiv(rem, w[d])
	}
}
