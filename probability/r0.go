// SPDX-License-Identifier: MIT

package probability

import "fmt"

// NewR0 returns the random-interstratification model for g = 1..6
// components: P_ij = W_j.
func NewR0(g int) (*Model, error) {
	if g < 1 || g > MaxComponents {
		return nil, probErrorf("NewR0", ErrInvalidComponents)
	}
	build := func(m *Matrices, v []float64) {
		w := []float64{1}
		if g > 1 {
			w = fractionChain(v, g)
		}
		copy(m.w[1], w)
		for i := 0; i < g; i++ {
			copy(m.p[1][i*g:(i+1)*g], w)
		}
	}
	return newModel(fmt.Sprintf("R0G%d", g), g, 0, fractionParams(g), build, DefaultTolerance)
}
