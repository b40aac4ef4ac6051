// SPDX-License-Identifier: MIT
// Package refine: differential evolution and random restarts.

package refine

import (
	"fmt"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"
)

// defaultSeed is used when Options.Seed is 0.
const defaultSeed int64 = 1

func rngFromSeed(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultSeed
	}
	return rand.New(rand.NewSource(seed))
}

// genetic is DE/rand/1/bin in the unit cube. Trial vectors are generated
// serially from one seeded RNG, so a run is reproducible regardless of
// the worker count; their evaluations run in parallel.
type genetic struct{ opts Options }

func (s *genetic) Name() string { return Genetic }

func (s *genetic) Run(rc *Context, stop *StopSignal) error {
	var (
		rng  = rngFromSeed(s.opts.Seed)
		c    = newCube(rc)
		dim  = rc.Dim()
		size = s.opts.Population
	)
	if size < 4 {
		size = max(4, 5*dim)
	}

	pop := make([][]float64, size)
	pop[0] = c.toUnit(rc.Best().X)
	for i := 1; i < size; i++ {
		pop[i] = randomUnit(rng, dim)
	}
	fit, err := s.evaluate(rc, stop, c, pop)
	if err != nil {
		return err
	}

	trials := make([][]float64, size)
	for gen := 0; gen < s.opts.MaxIterations; gen++ {
		if s.opts.MaxEvaluations > 0 && rc.Evaluations() >= s.opts.MaxEvaluations {
			return nil
		}
		for i := range pop {
			trials[i] = s.trial(rng, pop, i)
		}
		tf, err := s.evaluate(rc, stop, c, trials)
		if err != nil {
			return err
		}
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := range pop {
			if tf[i] <= fit[i] {
				pop[i], fit[i] = trials[i], tf[i]
			}
			lo, hi = math.Min(lo, fit[i]), math.Max(hi, fit[i])
		}
		if hi-lo < s.opts.Tolerance {
			rc.log.Debug("genetic population converged", "generation", gen, "residual", lo)
			return nil
		}
	}
	return nil
}

// trial builds the mutant of member i from three other distinct members
// and crosses it with member i.
func (s *genetic) trial(rng *rand.Rand, pop [][]float64, i int) []float64 {
	n := len(pop)
	pick := func(not ...int) int {
		for {
			j := rng.Intn(n)
			ok := true
			for _, k := range not {
				ok = ok && j != k
			}
			if ok {
				return j
			}
		}
	}
	a := pick(i)
	b := pick(i, a)
	c := pick(i, a, b)

	dim := len(pop[i])
	out := make([]float64, dim)
	forced := rng.Intn(dim)
	for k := range out {
		if k == forced || rng.Float64() < s.opts.Crossover {
			v := pop[a][k] + s.opts.Mutation*(pop[b][k]-pop[c][k])
			out[k] = math.Min(math.Max(v, 0), 1)
		} else {
			out[k] = pop[i][k]
		}
	}
	return out
}

// evaluate scores members in parallel. Each evaluation works on its own
// deep copy of the base snapshot. The first failure cancels the mixture
// optimisations still running and skips members not yet started.
func (s *genetic) evaluate(rc *Context, stop *StopSignal, c cube, members [][]float64) ([]float64, error) {
	out := make([]float64, len(members))
	g, ctx := errgroup.WithContext(stop.Context())
	g.SetLimit(s.opts.Workers)
	for i, u := range members {
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("%w: %v", ErrPanic, p)
				}
			}()
			x, _ := c.fromUnit(u)
			out[i], err = rc.evaluate(ctx, stop, x)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func randomUnit(rng *rand.Rand, dim int) []float64 {
	u := make([]float64, dim)
	for i := range u {
		u[i] = rng.Float64()
	}
	return u
}

// randomRestarts polishes the initial point and Restarts−1 uniform random
// points with Nelder–Mead, splitting the iteration budget between them.
type randomRestarts struct{ opts Options }

func (s *randomRestarts) Name() string { return RandomRestarts }

func (s *randomRestarts) Run(rc *Context, stop *StopSignal) error {
	rng := rngFromSeed(s.opts.Seed)
	local := &nelderMead{opts: s.opts}
	per := max(1, s.opts.MaxIterations/s.opts.Restarts)

	for k := 0; k < s.opts.Restarts; k++ {
		obj := newObjective(rc, stop, s.opts)
		u0 := obj.cube.toUnit(rc.Initial().X)
		if k > 0 {
			u0 = randomUnit(rng, rc.Dim())
		}
		if err := obj.outcome(local.from(obj, u0, per)); err != nil {
			return err
		}
		if s.opts.MaxEvaluations > 0 && rc.Evaluations() >= s.opts.MaxEvaluations {
			break
		}
	}
	return nil
}
