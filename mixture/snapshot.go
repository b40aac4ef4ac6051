// SPDX-License-Identifier: MIT

// Package mixture fits phase fractions, specimen scales and background
// shifts of a multi-specimen mixture against observed patterns.
//
// The phase-slot matrix is carried by the specimens: Specimens[s].Phases[p]
// is slot p of specimen s, nil for an empty slot. Fractions are shared by
// all specimens; scales and background shifts are per specimen.
package mixture

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/lvxrd/engine"
	"github.com/katalvlaran/lvxrd/residual"
)

var (
	// ErrNoSpecimens indicates a snapshot without specimens.
	ErrNoSpecimens = errors.New("mixture: no specimens")

	// ErrNoPhases indicates a snapshot without phase slots, or a specimen
	// whose slots are all empty.
	ErrNoPhases = errors.New("mixture: no phases")

	// ErrShapeMismatch indicates fractions, scales, background shifts and the
	// phase matrix disagree in size.
	ErrShapeMismatch = errors.New("mixture: shape mismatch")

	// ErrNoObservations indicates that no specimen carries observed data to fit.
	ErrNoObservations = errors.New("mixture: no observed patterns")

	// ErrStateChanged indicates the snapshot of a Mixture was replaced while
	// it was being optimised.
	ErrStateChanged = errors.New("mixture: snapshot replaced during optimisation")
)

// Snapshot is the read-only input of one optimisation.
type Snapshot struct {
	Name           string
	Specimens      []*engine.Specimen
	Fractions      []float64 // per phase slot
	Scales         []float64 // per specimen
	BgShifts       []float64 // per specimen
	AutoBackground bool
	Metric         residual.Metric
}

// NewSnapshot returns a snapshot over specimens with equal fractions, unit
// scales and zero background shifts, sized from the first specimen's slots.
func NewSnapshot(name string, specimens ...*engine.Specimen) *Snapshot {
	s := &Snapshot{Name: name, Specimens: specimens}
	slots := 0
	if len(specimens) > 0 && specimens[0] != nil {
		slots = len(specimens[0].Phases)
	}
	s.Fractions = make([]float64, slots)
	for i := range s.Fractions {
		s.Fractions[i] = 1 / float64(slots)
	}
	s.Scales = make([]float64, len(specimens))
	for i := range s.Scales {
		s.Scales[i] = 1
	}
	s.BgShifts = make([]float64, len(specimens))

	return s
}

// Phases returns the specimen × slot phase matrix.
func (s *Snapshot) Phases() [][]*engine.Phase {
	out := make([][]*engine.Phase, len(s.Specimens))
	for i, sp := range s.Specimens {
		if sp != nil {
			out[i] = sp.Phases
		}
	}
	return out
}

// Validate checks the setup preconditions of an optimisation.
func (s *Snapshot) Validate() error {
	if s == nil || len(s.Specimens) == 0 {
		return ErrNoSpecimens
	}
	slots := len(s.Fractions)
	if slots == 0 {
		return ErrNoPhases
	}
	for i, sp := range s.Specimens {
		if sp == nil {
			return fmt.Errorf("specimen %d: %w", i, ErrNoSpecimens)
		}
		if len(sp.Phases) != slots {
			return fmt.Errorf("specimen %q has %d slots, want %d: %w", sp.Name, len(sp.Phases), slots, ErrShapeMismatch)
		}
		empty := true
		for _, ph := range sp.Phases {
			if ph != nil {
				empty = false
				break
			}
		}
		if empty {
			return fmt.Errorf("specimen %q: %w", sp.Name, ErrNoPhases)
		}
	}
	if len(s.Scales) != len(s.Specimens) || len(s.BgShifts) != len(s.Specimens) {
		return fmt.Errorf("scales=%d bgshifts=%d specimens=%d: %w",
			len(s.Scales), len(s.BgShifts), len(s.Specimens), ErrShapeMismatch)
	}
	return nil
}

// Clone deep copies the snapshot. A phase shared between slots or
// specimens stays shared in the copy.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Fractions = append([]float64(nil), s.Fractions...)
	cp.Scales = append([]float64(nil), s.Scales...)
	cp.BgShifts = append([]float64(nil), s.BgShifts...)
	seen := make(map[*engine.Phase]*engine.Phase)
	cp.Specimens = make([]*engine.Specimen, len(s.Specimens))
	for i, sp := range s.Specimens {
		cp.Specimens[i] = sp.CloneWith(seen)
	}

	return &cp
}

// Apply copies the fitted values of r into s.
func (s *Snapshot) Apply(r *Result) {
	if r == nil {
		return
	}
	s.Fractions = append(s.Fractions[:0], r.Fractions...)
	s.Scales = append(s.Scales[:0], r.Scales...)
	s.BgShifts = append(s.BgShifts[:0], r.BgShifts...)
}
