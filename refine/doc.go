// SPDX-License-Identifier: MIT

// Package refine searches structural parameters of a mixture (CSDS
// averages, orientation spread, basal spacings, stacking probabilities)
// for the lowest optimised residual.
//
// A refinement is described by a Context: a base mixture.Snapshot, the
// refinable Properties with their bounds, and the initial, last and best
// (solution, residual) triples. Every objective evaluation applies a
// candidate vector to a deep copy of the base snapshot and fits fractions,
// scales and background shifts with mixture.Optimizer.
//
// Strategies (NewStrategy):
//
//	nelder-mead      local simplex search (gonum/optimize)
//	cmaes            covariance matrix adaptation (gonum/optimize CmaEsChol)
//	genetic          differential evolution over an errgroup worker pool
//	random-restarts  seeded starts, each polished by Nelder–Mead
//
// Strategies work in the unit cube: coordinate u ∈ [0,1] maps to
// Min + u·(Max − Min) of its property. Points outside the cube are
// projected and penalised.
//
// Cancellation is cooperative. A StopSignal is polled before every
// objective evaluation; a stopped run reports StatusStopped even when the
// strategy also failed. Runtime errors and panics never escape Run; they
// are recorded as StatusError with a message.
package refine
