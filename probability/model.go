// SPDX-License-Identifier: MIT
// Package probability: Model, a closed-form parameterisation over Matrices.

package probability

import (
	"fmt"
	"math"
)

// Param is one named independent variable of a Model.
type Param struct {
	Name  string
	Min   float64
	Max   float64
	Value float64
}

// buildFunc fills the top-order W and P of m from the parameter values.
type buildFunc func(m *Matrices, v []float64)

// Model is a stacking-probability parameterisation for a fixed (R, G). Update
// must be called after parameter changes to rebuild and revalidate the
// matrices.
type Model struct {
	name   string
	params []Param
	build  buildFunc
	tol    float64
	mx     *Matrices
}

func newModel(name string, g, reichweite int, params []Param, build buildFunc, tol float64) (*Model, error) {
	mx, err := NewMatrices(g, reichweite)
	if err != nil {
		return nil, err
	}
	m := &Model{name: name, params: params, build: build, tol: tol, mx: mx}
	m.Update()

	return m, nil
}

// New returns the model for Reichweite R and g components.
func New(reichweite, g int) (*Model, error) {
	switch {
	case reichweite == 0:
		return NewR0(g)
	case reichweite == 1:
		return NewR1(g)
	case reichweite == 2 && g == 2:
		return NewR2G2()
	case reichweite == 3 && g == 2:
		return NewR3G2()
	case reichweite < 0 || reichweite > MaxReichweite:
		return nil, probErrorf("New", ErrInvalidReichweite)
	default:
		return nil, probErrorf(fmt.Sprintf("New(R%dG%d)", reichweite, g), ErrUnsupported)
	}
}

// Name returns the model name, e.g. "R1G2".
func (m *Model) Name() string { return m.name }

// G returns the number of components.
func (m *Model) G() int { return m.mx.g }

// Reichweite returns R.
func (m *Model) Reichweite() int { return m.mx.reichweite }

// Tolerance returns the validation tolerance.
func (m *Model) Tolerance() float64 { return m.tol }

// SetTolerance changes the validation tolerance and revalidates. A
// non-positive tol is ignored.
func (m *Model) SetTolerance(tol float64) bool {
	if tol > 0 {
		m.tol = tol
	}
	return m.Update()
}

// Matrices returns the model's matrices. Callers may modify them directly,
// but the next Update overwrites those changes.
func (m *Model) Matrices() *Matrices { return m.mx }

// Valid reports whether the matrices passed the last validation.
func (m *Model) Valid() bool { return m.mx.valid }

// Params returns a copy of the parameter list.
func (m *Model) Params() []Param {
	return append([]Param(nil), m.params...)
}

// Values returns the parameter values in declaration order.
func (m *Model) Values() []float64 {
	out := make([]float64, len(m.params))
	for i := range m.params {
		out[i] = m.params[i].Value
	}
	return out
}

func (m *Model) lookup(name string) int {
	for i := range m.params {
		if m.params[i].Name == name {
			return i
		}
	}
	return -1
}

// Param returns the value of the named parameter.
func (m *Model) Param(name string) (float64, error) {
	i := m.lookup(name)
	if i < 0 {
		return 0, probErrorf(fmt.Sprintf("Param(%q)", name), ErrUnknownParam)
	}
	return m.params[i].Value, nil
}

// SetParam stores v, clamped to the parameter's bounds. It does not rebuild
// the matrices.
func (m *Model) SetParam(name string, v float64) error {
	i := m.lookup(name)
	if i < 0 {
		return probErrorf(fmt.Sprintf("SetParam(%q)", name), ErrUnknownParam)
	}
	if math.IsNaN(v) {
		return probErrorf(fmt.Sprintf("SetParam(%q)", name), ErrInvalidValue)
	}
	m.params[i].Value = math.Min(math.Max(v, m.params[i].Min), m.params[i].Max)

	return nil
}

// Update rebuilds the matrices from the parameters (closed form, then
// Solve, then Validate) and returns their validity.
func (m *Model) Update() bool {
	m.mx.Reset()
	m.build(m.mx, m.Values())
	m.mx.Solve()

	return m.mx.Validate(m.tol)
}

// Clone returns an independent copy sharing only the closed-form builder.
func (m *Model) Clone() *Model {
	if m == nil {
		return nil
	}
	return &Model{
		name:   m.name,
		params: m.Params(),
		build:  m.build,
		tol:    m.tol,
		mx:     m.mx.Clone(),
	}
}

// Fingerprint flattens the parameters and matrices, for cache keys.
func (m *Model) Fingerprint() []float64 {
	if m == nil {
		return []float64{-1}
	}
	out := m.Values()
	return append(out, m.mx.Fingerprint()...)
}

func (m *Model) String() string {
	return fmt.Sprintf("%s%v valid=%t", m.name, m.Values(), m.mx.valid)
}

// fractionParams declares W1, F2..F{g-1} with defaults giving equal fractions.
func fractionParams(g int) []Param {
	if g < 2 {
		return nil
	}
	out := make([]Param, 0, g-1)
	out = append(out, Param{Name: "W1", Min: 0, Max: 1, Value: 1 / float64(g)})
	for k := 2; k < g; k++ {
		out = append(out, Param{Name: fmt.Sprintf("F%d", k), Min: 0, Max: 1, Value: 1 / float64(g-k+1)})
	}
	return out
}

// fractionChain maps [W1, F2..F{g-1}] to g abundances: W_k = F_k·(1 − Σ W_<k),
// the last taking the remainder.
func fractionChain(v []float64, g int) []float64 {
	w := make([]float64, g)
	rem := 1.0
	for k := 0; k < g-1; k++ {
		w[k] = v[k] * rem
		rem -= w[k]
	}
	w[g-1] = rem

	return w
}
