// SPDX-License-Identifier: MIT
// Package probability: dense matrix forms of the top order, as consumed by
// the intensity engine.

package probability

import "github.com/katalvlaran/lvxrd/matrix"

// DistributionMatrix returns diag(W_r), a Gʳ×Gʳ matrix.
func (m *Matrices) DistributionMatrix() (*matrix.Dense, error) {
	return matrix.NewDiag(m.w[m.r])
}

// ProbabilityMatrix returns the Gʳ×Gʳ junction matrix of order r. The state
// s = (s₁..s_r) moves to t = (s₂..s_r, j) with probability P_r(s, j); all
// other transitions are 0.
func (m *Matrices) ProbabilityMatrix() (*matrix.Dense, error) {
	g := m.g
	n := pow(g, m.r)
	tails := pow(g, m.r-1)
	out, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, err
	}
	var s, j, t int
	for s = 0; s < n; s++ {
		for j = 0; j < g; j++ {
			t = (s%tails)*g + j
			if err = out.Set(s, t, m.p[m.r][s*g+j]); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

// JointMatrix returns W·P of the top order (the "WW" matrix).
func (m *Matrices) JointMatrix() (*matrix.Dense, error) {
	d, err := m.DistributionMatrix()
	if err != nil {
		return nil, err
	}
	p, err := m.ProbabilityMatrix()
	if err != nil {
		return nil, err
	}
	return matrix.Mul(d, p)
}
