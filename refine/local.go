// SPDX-License-Identifier: MIT
// Package refine: gonum-backed local and evolution-strategy searches.

package refine

import (
	"gonum.org/v1/gonum/optimize"
)

// nelderMead runs one simplex search from the best solution so far.
type nelderMead struct{ opts Options }

func (s *nelderMead) Name() string { return NelderMead }

func (s *nelderMead) Run(rc *Context, stop *StopSignal) error {
	obj := newObjective(rc, stop, s.opts)
	u0 := obj.cube.toUnit(rc.Best().X)
	return obj.outcome(s.from(obj, u0, s.opts.MaxIterations))
}

func (s *nelderMead) from(obj *objective, u0 []float64, iterations int) error {
	method := &optimize.NelderMead{SimplexSize: s.opts.StepSize}
	_, err := optimize.Minimize(obj.problem(), u0, settings(s.opts, iterations), method)
	return err
}

// cmaes runs gonum's Cholesky CMA-ES centred on the best solution so far.
type cmaes struct{ opts Options }

func (s *cmaes) Name() string { return CMAES }

func (s *cmaes) Run(rc *Context, stop *StopSignal) error {
	obj := newObjective(rc, stop, s.opts)
	u0 := obj.cube.toUnit(rc.Best().X)
	method := &optimize.CmaEsChol{
		InitStepSize: s.opts.StepSize,
		Population:   s.opts.Population,
	}
	set := settings(s.opts, s.opts.MaxIterations)
	// CMA-ES has its own stopping rule on the covariance determinant.
	set.Converger = &optimize.NeverTerminate{}
	_, err := optimize.Minimize(obj.problem(), u0, set, method)
	return obj.outcome(err)
}
