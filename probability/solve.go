// SPDX-License-Identifier: MIT
// Package probability: Solve and Validate.
//
// Complexity: O(G^{r+1}·r) for both; no allocations.

package probability

import "math"

// Solve derives every order from the top-order W_r and P_r:
//
//	W_{r+1}(s, j) = W_r(s)·P_r(s, j)
//	W_k(b)        = Σ_i W_{k+1}(i, b)        k = r−1..1
//	P_k(s, j)     = W_{k+1}(s, j) / W_k(s)   k < r, 0 when W_k(s) = 0
func (m *Matrices) Solve() {
	g, r := m.g, m.r
	var (
		k, n, s, i, j int
		sum           float64
	)
	n = pow(g, r)
	for s = 0; s < n; s++ {
		for j = 0; j < g; j++ {
			m.w[r+1][s*g+j] = m.w[r][s] * m.p[r][s*g+j]
		}
	}
	for k = r - 1; k >= 1; k-- {
		n = pow(g, k)
		for s = 0; s < n; s++ {
			sum = 0
			for i = 0; i < g; i++ {
				sum += m.w[k+1][i*n+s]
			}
			m.w[k][s] = sum
		}
	}
	for k = 1; k < r; k++ {
		n = pow(g, k)
		for s = 0; s < n; s++ {
			for j = 0; j < g; j++ {
				m.p[k][s*g+j] = safeDiv(m.w[k+1][s*g+j], m.w[k][s])
			}
		}
	}
}

// Validate checks every order against tol and records the outcome. It
// returns the overall validity. Rows of P belonging to sequences with W = 0
// are unreachable and exempt from the row-sum rule.
func (m *Matrices) Validate(tol float64) bool {
	m.valid = true
	var k int
	for k = 1; k <= m.r; k++ {
		m.orderValid[k] = m.validateOrder(k, tol)
		m.valid = m.valid && m.orderValid[k]
	}
	if !validJoint(m.w[m.r+1], tol) {
		m.valid = false
	}

	return m.valid
}

func (m *Matrices) validateOrder(k int, tol float64) bool {
	g := m.g
	n := pow(g, k)
	w, p, mask := m.w[k], m.p[k], m.mask[k]
	next := m.w[k+1]
	clear(mask)

	ok := validJoint(w, tol)
	var (
		s, i, j            int
		rowSum, left, right float64
		rowBroken          bool
	)
	for s = 0; s < n; s++ {
		rowBroken = false
		rowSum = 0
		for j = 0; j < g; j++ {
			if !inUnit(p[s*g+j], tol) {
				mask[s*g+j]++
				ok = false
			}
			rowSum += p[s*g+j]
		}
		if w[s] > 0 && math.Abs(rowSum-1) > tol {
			rowBroken = true
		}

		left, right = 0, 0
		for i = 0; i < g; i++ {
			left += next[s*g+i]
			right += next[i*n+s]
		}
		if math.Abs(left-w[s]) > tol || math.Abs(right-w[s]) > tol {
			rowBroken = true
		}
		if rowBroken {
			ok = false
			for j = 0; j < g; j++ {
				mask[s*g+j]++
			}
		}
	}

	return ok
}

// validJoint checks that w sums to 1 and every entry lies in [0,1].
func validJoint(w []float64, tol float64) bool {
	var sum float64
	for _, v := range w {
		if !inUnit(v, tol) {
			return false
		}
		sum += v
	}
	return math.Abs(sum-1) <= tol
}

func inUnit(v, tol float64) bool {
	return !math.IsNaN(v) && v >= -tol && v <= 1+tol
}
