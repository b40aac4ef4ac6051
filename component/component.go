// SPDX-License-Identifier: MIT

// Package component aggregates atom contributions into per-layer-type
// structure factors (SF) and phase-difference factors (PF).
//
// A Component is one distinguishable layer type of a mixed-layer phase: its
// layer atoms sit at their DefaultZ, while interlayer atoms are stretched
// linearly with the basal spacing so that a swelling layer keeps its
// interlayer species centred.
package component

import (
	"math"
	"math/cmplx"

	"github.com/katalvlaran/lvxrd/scattering"
)

// Component is a layer-type record. Lengths are in nm.
type Component struct {
	Name            string
	LayerAtoms      []scattering.Atom
	InterlayerAtoms []scattering.Atom

	CellA    float64
	CellB    float64
	D001     float64 // basal spacing (c of the unit cell)
	DefaultC float64 // spacing the interlayer z positions were entered for
	DeltaC   float64 // spacing disorder
	LatticeD float64 // thickness of the silicate layer
}

// Volume returns a·b·d001.
func (c *Component) Volume() float64 {
	if c == nil {
		return 0
	}
	return c.CellA * c.CellB * c.D001
}

// Weight returns Σ pn·atomic weight over all atoms.
func (c *Component) Weight() float64 {
	if c == nil {
		return 0
	}
	var w float64
	for _, list := range [][]scattering.Atom{c.LayerAtoms, c.InterlayerAtoms} {
		for i := range list {
			if list[i].Type != nil {
				w += list[i].Pn * list[i].Type.Weight
			}
		}
	}

	return w
}

// InterlayerStretch returns the factor applied to interlayer positions:
// (D001 − LatticeD)/(DefaultC − LatticeD), or 1 when DefaultC == LatticeD.
func (c *Component) InterlayerStretch() float64 {
	den := c.DefaultC - c.LatticeD
	if den == 0 {
		return 1
	}
	return (c.D001 - c.LatticeD) / den
}

// Clone deep copies the atom lists. Atom types are shared; they are
// treated as immutable during a calculation.
func (c *Component) Clone() *Component {
	if c == nil {
		return nil
	}
	cp := *c
	cp.LayerAtoms = append([]scattering.Atom(nil), c.LayerAtoms...)
	cp.InterlayerAtoms = append([]scattering.Atom(nil), c.InterlayerAtoms...)

	return &cp
}

// Fingerprint flattens every numeric field, atom lists included, for cache keys.
func (c *Component) Fingerprint() []float64 {
	if c == nil {
		return []float64{-1}
	}
	out := []float64{c.CellA, c.CellB, c.D001, c.DefaultC, c.DeltaC, c.LatticeD,
		float64(len(c.LayerAtoms)), float64(len(c.InterlayerAtoms))}
	for _, list := range [][]scattering.Atom{c.LayerAtoms, c.InterlayerAtoms} {
		for i := range list {
			out = append(out, list[i].Fingerprint()...)
		}
	}

	return out
}

// Factors returns the structure factor SF(q) and phase-difference factor
// PF(q) of c. A nil component yields two zero arrays of len(q).
func Factors(q []float64, c *Component) (sf, pf []complex128) {
	if c == nil {
		return make([]complex128, len(q)), make([]complex128, len(q))
	}
	return StructureFactor(q, c), PhaseFactor(q, c.D001, c.DeltaC)
}

// StructureFactor sums the contributions of c's layer atoms (at DefaultZ)
// and interlayer atoms (stretched) at every q.
func StructureFactor(q []float64, c *Component) []complex128 {
	sf := make([]complex128, len(q))
	if c == nil {
		return sf
	}
	var (
		i   int
		atm scattering.Atom
	)
	for i = range c.LayerAtoms {
		atm = c.LayerAtoms[i]
		atm.Z = atm.DefaultZ
		scattering.AccumulateStructureFactor(sf, q, &atm)
	}
	stretch := c.InterlayerStretch()
	for i = range c.InterlayerAtoms {
		atm = c.InterlayerAtoms[i]
		atm.Z = c.LatticeD + (atm.DefaultZ-c.LatticeD)*stretch
		scattering.AccumulateStructureFactor(sf, q, &atm)
	}

	return sf
}

// PhaseFactor returns exp(2π·q·(d001·i − π·Δc·q)) at every q.
func PhaseFactor(q []float64, d001, deltaC float64) []complex128 {
	pf := make([]complex128, len(q))
	var i int
	for i = range q {
		pf[i] = cmplx.Exp(complex(-2*math.Pi*math.Pi*deltaC*q[i]*q[i], 2*math.Pi*q[i]*d001))
	}

	return pf
}
