// SPDX-License-Identifier: MIT
// Package refine: refinable properties.

package refine

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvxrd/csds"
	"github.com/katalvlaran/lvxrd/engine"
	"github.com/katalvlaran/lvxrd/mixture"
)

// AllSpecimens targets a phase slot in every specimen.
const AllSpecimens = -1

// Target addresses phase slot Slot of specimen Specimen, or of every
// specimen when Specimen is AllSpecimens. Empty slots are skipped.
type Target struct {
	Slot     int
	Specimen int
}

// Slot targets slot i of every specimen.
func Slot(i int) Target { return Target{Slot: i, Specimen: AllSpecimens} }

// phases returns the distinct phases t addresses in snap.
func (t Target) phases(snap *mixture.Snapshot) ([]*engine.Phase, error) {
	if snap == nil || t.Slot < 0 || t.Specimen < AllSpecimens || t.Specimen >= len(snap.Specimens) {
		return nil, fmt.Errorf("%+v: %w", t, ErrBadTarget)
	}
	var (
		out  []*engine.Phase
		seen = make(map[*engine.Phase]bool)
	)
	for i, sp := range snap.Specimens {
		if sp == nil || (t.Specimen != AllSpecimens && i != t.Specimen) || t.Slot >= len(sp.Phases) {
			continue
		}
		ph := sp.Phases[t.Slot]
		if ph == nil || seen[ph] {
			continue
		}
		seen[ph] = true
		out = append(out, ph)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%+v: %w", t, ErrBadTarget)
	}
	return out, nil
}

// Setter writes v into snap.
type Setter func(snap *mixture.Snapshot, v float64) error

// Property is one refinable scalar with its bounds and initial value.
type Property struct {
	Name  string
	Min   float64
	Max   float64
	Value float64
	apply Setter
}

// NewProperty returns a property applied through set. value is clamped to
// [min, max].
func NewProperty(name string, min, max, value float64, set Setter) (Property, error) {
	if math.IsNaN(min) || math.IsNaN(max) || min > max || set == nil {
		return Property{}, fmt.Errorf("NewProperty(%q) [%g, %g]: %w", name, min, max, ErrInvalidBounds)
	}
	p := Property{Name: name, Min: min, Max: max, apply: set}
	p.Value = p.Clamp(value)

	return p, nil
}

// Clamp bounds v to [Min, Max]; NaN maps to Min.
func (p Property) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return p.Min
	}
	return math.Min(math.Max(v, p.Min), p.Max)
}

// Apply writes the clamped v into snap.
func (p Property) Apply(snap *mixture.Snapshot, v float64) error {
	if err := p.apply(snap, p.Clamp(v)); err != nil {
		return fmt.Errorf("%s: %w", p.Name, err)
	}
	return nil
}

// phaseProperty builds a property over the phases of t, reading its
// initial value from the first one.
func phaseProperty(snap *mixture.Snapshot, name string, t Target, min, max float64,
	get func(*engine.Phase) (float64, error), set func(*engine.Phase, float64) error) (Property, error) {
	phases, err := t.phases(snap)
	if err != nil {
		return Property{}, fmt.Errorf("%s: %w", name, err)
	}
	v, err := get(phases[0])
	if err != nil {
		return Property{}, fmt.Errorf("%s: %w", name, err)
	}
	return NewProperty(name, min, max, v, func(s *mixture.Snapshot, v float64) error {
		phases, err := t.phases(s)
		if err != nil {
			return err
		}
		for _, ph := range phases {
			if err := set(ph, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// CSDSAverage refines the mean stack thickness of the phases at t. Phases
// with the Drits shape get their maximum re-derived from the new average.
func CSDSAverage(snap *mixture.Snapshot, t Target, min, max float64) (Property, error) {
	return phaseProperty(snap, fmt.Sprintf("slot%d.csds_average", t.Slot), t, min, max,
		func(ph *engine.Phase) (float64, error) { return ph.CSDS.Average, nil },
		func(ph *engine.Phase, v float64) error {
			ph.CSDS = withAverage(ph.CSDS, v)
			return nil
		})
}

func withAverage(p csds.Parameters, v float64) csds.Parameters {
	if p.AlphaScale != csds.DritsAlphaScale || p.AlphaOffset != csds.DritsAlphaOffset ||
		p.BetaScale != csds.DritsBetaScale || p.BetaOffset != csds.DritsBetaOffset {
		p.Average = v
		return p
	}
	out := csds.DritsParameters(v)
	if p.Minimum > 0 && p.Minimum <= out.Maximum {
		out.Minimum = p.Minimum
	}
	return out
}

// SigmaStar refines the orientation spread (degrees) of the phases at t.
func SigmaStar(snap *mixture.Snapshot, t Target, min, max float64) (Property, error) {
	return phaseProperty(snap, fmt.Sprintf("slot%d.sigma_star", t.Slot), t, min, max,
		func(ph *engine.Phase) (float64, error) { return ph.SigmaStar, nil },
		func(ph *engine.Phase, v float64) error {
			ph.SigmaStar = v
			return nil
		})
}

// D001 refines the basal spacing (nm) of component c in the phases at t.
func D001(snap *mixture.Snapshot, t Target, c int, min, max float64) (Property, error) {
	return componentProperty(snap, "d001", t, c, min, max,
		func(ph *engine.Phase) *float64 { return &ph.Components[c].D001 })
}

// DeltaC refines the basal spacing spread (nm) of component c in the phases at t.
func DeltaC(snap *mixture.Snapshot, t Target, c int, min, max float64) (Property, error) {
	return componentProperty(snap, "delta_c", t, c, min, max,
		func(ph *engine.Phase) *float64 { return &ph.Components[c].DeltaC })
}

func componentProperty(snap *mixture.Snapshot, field string, t Target, c int, min, max float64,
	ref func(*engine.Phase) *float64) (Property, error) {
	check := func(ph *engine.Phase) error {
		if c < 0 || c >= len(ph.Components) || ph.Components[c] == nil {
			return fmt.Errorf("component %d of %q: %w", c, ph.Name, ErrBadTarget)
		}
		return nil
	}
	return phaseProperty(snap, fmt.Sprintf("slot%d.c%d.%s", t.Slot, c, field), t, min, max,
		func(ph *engine.Phase) (float64, error) {
			if err := check(ph); err != nil {
				return 0, err
			}
			return *ref(ph), nil
		},
		func(ph *engine.Phase, v float64) error {
			if err := check(ph); err != nil {
				return err
			}
			*ref(ph) = v
			return nil
		})
}

// Probability refines the named stacking-model parameter of the phases at
// t, within the model's own bounds, and rebuilds the matrices on apply.
func Probability(snap *mixture.Snapshot, t Target, name string) (Property, error) {
	phases, err := t.phases(snap)
	if err != nil {
		return Property{}, fmt.Errorf("%s: %w", name, err)
	}
	m := phases[0].Probability
	if m == nil {
		return Property{}, fmt.Errorf("%s: phase %q has no model: %w", name, phases[0].Name, ErrBadTarget)
	}
	var lo, hi float64
	found := false
	for _, p := range m.Params() {
		if p.Name == name {
			lo, hi, found = p.Min, p.Max, true
			break
		}
	}
	if !found {
		return Property{}, fmt.Errorf("%s: %w", name, ErrBadTarget)
	}
	return phaseProperty(snap, fmt.Sprintf("slot%d.%s", t.Slot, name), t, lo, hi,
		func(ph *engine.Phase) (float64, error) { return ph.Probability.Param(name) },
		func(ph *engine.Phase, v float64) error {
			if ph.Probability == nil {
				return fmt.Errorf("phase %q has no model: %w", ph.Name, ErrBadTarget)
			}
			if err := ph.Probability.SetParam(name, v); err != nil {
				return err
			}
			// An invalid model is a valid outcome: the phase then contributes zeros.
			ph.Probability.Update()
			return nil
		})
}
