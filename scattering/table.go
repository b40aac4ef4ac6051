// SPDX-License-Identifier: MIT
// Package scattering: built-in Cromer–Mann table for the species common in
// phyllosilicates (neutral atoms, International Tables Vol. C, Table 6.1.1.4).

package scattering

import (
	"fmt"
	"sort"
	"strings"
)

var defaultTable = []AtomType{
	{Name: "H", AtomicNumber: 1, Weight: 1.008,
		A: [5]float64{0.489918, 0.262003, 0.196767, 0.049879}, B: [5]float64{20.6593, 7.74039, 49.5519, 2.20159}, C: 0.001305},
	{Name: "O", AtomicNumber: 8, Weight: 15.9994,
		A: [5]float64{3.0485, 2.2868, 1.5463, 0.867}, B: [5]float64{13.2771, 5.7011, 0.3239, 32.9089}, C: 0.2508},
	{Name: "Na", AtomicNumber: 11, Weight: 22.9898,
		A: [5]float64{4.7626, 3.1736, 1.2674, 1.1128}, B: [5]float64{3.285, 8.8422, 0.3136, 129.424}, C: 0.676},
	{Name: "Mg", AtomicNumber: 12, Weight: 24.305,
		A: [5]float64{5.4204, 2.1735, 1.2269, 2.3073}, B: [5]float64{2.8275, 79.2611, 0.3808, 7.1937}, C: 0.8584},
	{Name: "Al", AtomicNumber: 13, Weight: 26.9815,
		A: [5]float64{6.4202, 1.9002, 1.5936, 1.9646}, B: [5]float64{3.0387, 0.7426, 31.5472, 85.0886}, C: 1.1151},
	{Name: "Si", AtomicNumber: 14, Weight: 28.0855,
		A: [5]float64{6.2915, 3.0353, 1.9891, 1.541}, B: [5]float64{2.4386, 32.3337, 0.6785, 81.6937}, C: 1.1407},
	{Name: "K", AtomicNumber: 19, Weight: 39.0983,
		A: [5]float64{8.2186, 7.4398, 1.0519, 0.8659}, B: [5]float64{12.7949, 0.7748, 213.187, 41.6841}, C: 1.4228},
	{Name: "Ca", AtomicNumber: 20, Weight: 40.078,
		A: [5]float64{8.6266, 7.3873, 1.5899, 1.0211}, B: [5]float64{10.4421, 0.6599, 85.7484, 178.437}, C: 1.3751},
	{Name: "Fe", AtomicNumber: 26, Weight: 55.845,
		A: [5]float64{11.7695, 7.3573, 3.5222, 2.3045}, B: [5]float64{4.7611, 0.3072, 15.3535, 76.8805}, C: 1.0369},
}

// Lookup returns a fresh copy of the tabulated type with the given
// case-insensitive name.
func Lookup(name string) (*AtomType, error) {
	for i := range defaultTable {
		if strings.EqualFold(defaultTable[i].Name, name) {
			t := defaultTable[i]
			return &t, nil
		}
	}

	return nil, fmt.Errorf("Lookup(%q): %w", name, ErrUnknownAtomType)
}

// MustLookup is Lookup for names known at compile time; it panics on a miss.
func MustLookup(name string) *AtomType {
	t, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultTable returns copies of every built-in type, sorted by atomic number.
func DefaultTable() []AtomType {
	out := make([]AtomType, len(defaultTable))
	copy(out, defaultTable)
	sort.Slice(out, func(i, j int) bool { return out[i].AtomicNumber < out[j].AtomicNumber })

	return out
}
