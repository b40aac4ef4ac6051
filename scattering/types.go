// SPDX-License-Identifier: MIT
// Package scattering: atom type and atom records.

package scattering

import (
	"errors"
	"fmt"
)

// ErrUnknownAtomType is returned by Lookup for names missing from the table.
var ErrUnknownAtomType = errors.New("scattering: unknown atom type")

// AtomType is a chemical species with its five-term Cromer–Mann
// coefficients. Terms beyond the fourth are usually zero.
type AtomType struct {
	Name         string
	AtomicNumber int
	Charge       float64
	Weight       float64 // g/mol
	Debye        float64 // Debye–Waller B, Å²
	A            [5]float64
	B            [5]float64
	C            float64
}

// Atom places an AtomType inside a layer.
//
// DefaultZ is the position as entered; Z is the effective position used by
// StructureFactor. Component code fills Z (stretching interlayer atoms), so a
// standalone Atom should set Z explicitly.
type Atom struct {
	Name     string
	Type     *AtomType
	Pn       float64 // occupancy (atoms per unit cell)
	DefaultZ float64
	Z        float64
}

// Fingerprint flattens every numeric field of t, for cache keys.
func (t *AtomType) Fingerprint() []float64 {
	if t == nil {
		return nil
	}
	out := make([]float64, 0, 14)
	out = append(out, float64(t.AtomicNumber), t.Charge, t.Weight, t.Debye)
	out = append(out, t.A[:]...)
	out = append(out, t.B[:]...)
	out = append(out, t.C)

	return out
}

// Fingerprint flattens a's position, occupancy and type.
func (a *Atom) Fingerprint() []float64 {
	if a == nil {
		return []float64{-1}
	}
	out := []float64{a.Pn, a.DefaultZ, a.Z}
	return append(out, a.Type.Fingerprint()...)
}

func (a Atom) String() string {
	name := "<nil>"
	if a.Type != nil {
		name = a.Type.Name
	}
	return fmt.Sprintf("%s(%s pn=%.4g z=%.4g)", a.Name, name, a.Pn, a.Z)
}
