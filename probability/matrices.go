// SPDX-License-Identifier: MIT
// Package probability: Matrices storage and accessors.

package probability

import "fmt"

const (
	// MaxComponents bounds G.
	MaxComponents = 6
	// MaxReichweite bounds R.
	MaxReichweite = 3

	// DefaultTolerance is the validation tolerance used by most models.
	DefaultTolerance = 1e-6
)

// Matrices holds W_k for k = 1..r+1 and P_k for k = 1..r, with r = max(R,1).
// The zero value is not usable; create instances with NewMatrices.
type Matrices struct {
	g, r       int
	reichweite int

	w [][]float64 // w[k]: Gᵏ cells; w[0] unused
	p [][]float64 // p[k]: G^{k+1} cells; p[0] unused

	valid      bool
	orderValid []bool  // per order k = 1..r
	mask       [][]int // mask[k]: broken rules per P_k cell
}

// NewMatrices allocates zeroed matrices for g components and Reichweite R.
func NewMatrices(g, reichweite int) (*Matrices, error) {
	if g < 1 || g > MaxComponents {
		return nil, probErrorf("NewMatrices", ErrInvalidComponents)
	}
	if reichweite < 0 || reichweite > MaxReichweite {
		return nil, probErrorf("NewMatrices", ErrInvalidReichweite)
	}
	r := reichweite
	if r < 1 {
		r = 1
	}
	m := &Matrices{
		g:          g,
		r:          r,
		reichweite: reichweite,
		w:          make([][]float64, r+2),
		p:          make([][]float64, r+1),
		orderValid: make([]bool, r+1),
		mask:       make([][]int, r+1),
	}
	var k int
	for k = 1; k <= r+1; k++ {
		m.w[k] = make([]float64, pow(g, k))
	}
	for k = 1; k <= r; k++ {
		m.p[k] = make([]float64, pow(g, k+1))
		m.mask[k] = make([]int, pow(g, k+1))
	}

	return m, nil
}

// G returns the number of components.
func (m *Matrices) G() int { return m.g }

// Reichweite returns R as requested at construction.
func (m *Matrices) Reichweite() int { return m.reichweite }

// Order returns r = max(R, 1), the order of the matrices used by the engine.
func (m *Matrices) Order() int { return m.r }

// Rank returns Gʳ.
func (m *Matrices) Rank() int { return pow(m.g, m.r) }

// Valid reports the outcome of the last Validate call.
func (m *Matrices) Valid() bool { return m.valid }

// OrderValid reports the validity of order k after the last Validate call.
func (m *Matrices) OrderValid(k int) bool {
	if k < 1 || k > m.r {
		return false
	}
	return m.orderValid[k]
}

// Mask returns a copy of the broken-rule counts of P_k, or nil for an unknown order.
func (m *Matrices) Mask(k int) []int {
	if k < 1 || k > m.r {
		return nil
	}
	return append([]int(nil), m.mask[k]...)
}

// Fractions returns a copy of W_1, the abundance of each component.
func (m *Matrices) Fractions() []float64 {
	return append([]float64(nil), m.w[1]...)
}

// Index returns the flat address of a layer-type sequence, first index most significant.
func Index(g int, indices []int) int {
	var idx int
	for _, i := range indices {
		idx = idx*g + i
	}
	return idx
}

func (m *Matrices) checkIndices(tag string, indices []int, orders int) error {
	if len(indices) < 1 || len(indices) > orders {
		return probErrorf(tag, fmt.Errorf("%w: got %d", ErrIndexCount, len(indices)))
	}
	for _, i := range indices {
		if i < 0 || i >= m.g {
			return probErrorf(tag, ErrIndexRange)
		}
	}
	return nil
}

// W returns the joint abundance of the sequence; 1..r+1 indices are accepted.
func (m *Matrices) W(indices ...int) (float64, error) {
	if err := m.checkIndices("W", indices, m.r+1); err != nil {
		return 0, err
	}
	return m.w[len(indices)][Index(m.g, indices)], nil
}

// SetW stores v as the joint abundance of the sequence.
func (m *Matrices) SetW(v float64, indices ...int) error {
	if err := m.checkIndices("SetW", indices, m.r+1); err != nil {
		return err
	}
	m.w[len(indices)][Index(m.g, indices)] = v
	return nil
}

// P returns the probability that the sequence of all but the last index is
// followed by the last one; 2..r+1 indices are accepted.
func (m *Matrices) P(indices ...int) (float64, error) {
	if len(indices) < 2 {
		return 0, probErrorf("P", fmt.Errorf("%w: got %d", ErrIndexCount, len(indices)))
	}
	if err := m.checkIndices("P", indices, m.r+1); err != nil {
		return 0, err
	}
	return m.p[len(indices)-1][Index(m.g, indices)], nil
}

// SetP stores v as a junction probability.
func (m *Matrices) SetP(v float64, indices ...int) error {
	if len(indices) < 2 {
		return probErrorf("SetP", fmt.Errorf("%w: got %d", ErrIndexCount, len(indices)))
	}
	if err := m.checkIndices("SetP", indices, m.r+1); err != nil {
		return err
	}
	m.p[len(indices)-1][Index(m.g, indices)] = v
	return nil
}

// Reset zeroes every matrix and clears validity.
func (m *Matrices) Reset() {
	var k int
	for k = 1; k < len(m.w); k++ {
		clear(m.w[k])
	}
	for k = 1; k < len(m.p); k++ {
		clear(m.p[k])
		clear(m.mask[k])
		m.orderValid[k] = false
	}
	m.valid = false
}

// Clone returns a deep copy.
func (m *Matrices) Clone() *Matrices {
	if m == nil {
		return nil
	}
	cp := &Matrices{
		g:          m.g,
		r:          m.r,
		reichweite: m.reichweite,
		valid:      m.valid,
		w:          make([][]float64, len(m.w)),
		p:          make([][]float64, len(m.p)),
		orderValid: append([]bool(nil), m.orderValid...),
		mask:       make([][]int, len(m.mask)),
	}
	for k := range m.w {
		cp.w[k] = append([]float64(nil), m.w[k]...)
	}
	for k := range m.p {
		cp.p[k] = append([]float64(nil), m.p[k]...)
		cp.mask[k] = append([]int(nil), m.mask[k]...)
	}

	return cp
}

// Fingerprint flattens the top-order W and P and the validity flag, for cache keys.
func (m *Matrices) Fingerprint() []float64 {
	out := make([]float64, 0, 3+len(m.w[m.r])+len(m.p[m.r]))
	v := 0.0
	if m.valid {
		v = 1
	}
	out = append(out, float64(m.g), float64(m.reichweite), v)
	out = append(out, m.w[m.r]...)
	return append(out, m.p[m.r]...)
}

// pow returns gᵏ for small non-negative k.
func pow(g, k int) int {
	n := 1
	for ; k > 0; k-- {
		n *= g
	}
	return n
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
