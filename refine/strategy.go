// SPDX-License-Identifier: MIT
// Package refine: strategy registry and shared search helpers.

package refine

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"

	"gonum.org/v1/gonum/optimize"
)

// Strategy names accepted by NewStrategy.
const (
	NelderMead     = "nelder-mead"
	CMAES          = "cmaes"
	Genetic        = "genetic"
	RandomRestarts = "random-restarts"
)

// Strategy searches rc's property space. Implementations evaluate through
// rc.Evaluate (directly or via an objective) so every evaluation is
// preceded by a stop check; they return ErrStopped, or any error, as soon
// as stop fires.
type Strategy interface {
	Name() string
	Run(rc *Context, stop *StopSignal) error
}

// Options tune the strategies. Fields a strategy does not use are ignored.
//
// MaxIterations  – major iterations (simplex steps, generations).
// MaxEvaluations – hard cap on objective evaluations, 0 for none.
// Population     – CMA-ES population or genetic population size; 0 derives it from the dimension.
// Restarts       – random-restarts starts, including the initial point.
// Workers        – genetic evaluation pool size; 0 uses GOMAXPROCS.
// Seed           – RNG seed; 0 uses a fixed default.
// StepSize       – initial simplex size / CMA-ES step in the unit cube.
// Mutation       – differential weight F of the genetic strategy.
// Crossover      – crossover rate CR of the genetic strategy.
// Penalty        – weight of the squared distance outside the unit cube.
// Tolerance      – absolute residual change treated as converged.
type Options struct {
	MaxIterations  int
	MaxEvaluations int
	Population     int
	Restarts       int
	Workers        int
	Seed           int64
	StepSize       float64
	Mutation       float64
	Crossover      float64
	Penalty        float64
	Tolerance      float64
}

// Option configures Options.
type Option func(*Options)

// WithMaxIterations sets the major iteration budget.
func WithMaxIterations(n int) Option { return func(o *Options) { o.MaxIterations = n } }

// WithMaxEvaluations caps objective evaluations.
func WithMaxEvaluations(n int) Option { return func(o *Options) { o.MaxEvaluations = n } }

// WithPopulation sets the population size.
func WithPopulation(n int) Option { return func(o *Options) { o.Population = n } }

// WithRestarts sets the number of random-restarts starts.
func WithRestarts(n int) Option { return func(o *Options) { o.Restarts = n } }

// WithWorkers sets the genetic worker pool size.
func WithWorkers(n int) Option { return func(o *Options) { o.Workers = n } }

// WithSeed sets the RNG seed.
func WithSeed(seed int64) Option { return func(o *Options) { o.Seed = seed } }

// DefaultOptions returns the defaults, then applies opts.
//
// Defaults:
//   - MaxIterations: 100, MaxEvaluations: 0 (unbounded)
//   - Population: 0 (derived), Restarts: 5, Workers: 0 (GOMAXPROCS), Seed: 0
//   - StepSize: 0.2, Mutation: 0.7, Crossover: 0.9
//   - Penalty: 1e3, Tolerance: 1e-6
func DefaultOptions(opts ...Option) Options {
	o := Options{
		MaxIterations: 100,
		Restarts:      5,
		StepSize:      0.2,
		Mutation:      0.7,
		Crossover:     0.9,
		Penalty:       1e3,
		Tolerance:     1e-6,
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.Restarts <= 0 {
		o.Restarts = d.Restarts
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.StepSize <= 0 {
		o.StepSize = d.StepSize
	}
	if o.Mutation <= 0 {
		o.Mutation = d.Mutation
	}
	if o.Crossover <= 0 || o.Crossover > 1 {
		o.Crossover = d.Crossover
	}
	if o.Penalty <= 0 {
		o.Penalty = d.Penalty
	}
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	return o
}

var registry = map[string]func(Options) Strategy{
	NelderMead:     func(o Options) Strategy { return &nelderMead{opts: o} },
	CMAES:          func(o Options) Strategy { return &cmaes{opts: o} },
	Genetic:        func(o Options) Strategy { return &genetic{opts: o} },
	RandomRestarts: func(o Options) Strategy { return &randomRestarts{opts: o} },
}

// Strategies returns the registered strategy names, sorted.
func Strategies() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// NewStrategy returns the named strategy. Names are case-insensitive.
func NewStrategy(name string, opts Options) (Strategy, error) {
	mk, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("NewStrategy(%q): %w", name, ErrUnknownStrategy)
	}
	return mk(opts.withDefaults()), nil
}

// cube maps the unit cube onto the property bounds.
type cube struct {
	lo, span []float64
}

func newCube(rc *Context) cube {
	lo, hi := rc.Bounds()
	span := make([]float64, len(lo))
	for i := range lo {
		span[i] = hi[i] - lo[i]
	}
	return cube{lo: lo, span: span}
}

// toUnit maps x into the cube; zero-width bounds map to 0.
func (c cube) toUnit(x []float64) []float64 {
	u := make([]float64, len(x))
	for i, v := range x {
		if c.span[i] > 0 {
			u[i] = (v - c.lo[i]) / c.span[i]
		}
	}
	return u
}

// fromUnit projects u onto the cube, maps it to property space and
// returns the squared projection distance.
func (c cube) fromUnit(u []float64) (x []float64, dist2 float64) {
	x = make([]float64, len(u))
	for i, v := range u {
		p := math.Min(math.Max(v, 0), 1)
		dist2 += (p - v) * (p - v)
		x[i] = c.lo[i] + p*c.span[i]
	}
	return x, dist2
}

// objective adapts rc.Evaluate to gonum: errors are parked in err and
// surface through status, which also reports stops.
type objective struct {
	rc      *Context
	stop    *StopSignal
	cube    cube
	penalty float64
	err     error
}

func newObjective(rc *Context, stop *StopSignal, o Options) *objective {
	return &objective{rc: rc, stop: stop, cube: newCube(rc), penalty: o.Penalty}
}

func (f *objective) fn(u []float64) float64 {
	if f.err != nil {
		return math.Inf(1)
	}
	x, d2 := f.cube.fromUnit(u)
	r, err := f.rc.Evaluate(f.stop, x)
	if err != nil {
		f.err = err
		return math.Inf(1)
	}
	return r + f.penalty*d2
}

func (f *objective) status() (optimize.Status, error) {
	if f.stop.Stopped() {
		return optimize.Failure, ErrStopped
	}
	if f.err != nil {
		return optimize.Failure, f.err
	}
	return optimize.NotTerminated, nil
}

func (f *objective) problem() optimize.Problem {
	return optimize.Problem{Func: f.fn, Status: f.status}
}

// outcome folds a gonum Minimize error into the strategy result: parked
// evaluation errors and stops win, budget exhaustion is success.
func (f *objective) outcome(err error) error {
	if f.stop.Stopped() {
		return ErrStopped
	}
	if f.err != nil {
		return f.err
	}
	if err != nil && !errors.Is(err, ErrStopped) {
		f.rc.log.Debug("search ended early", "error", err)
	}
	return nil
}

func settings(o Options, iterations int) *optimize.Settings {
	return &optimize.Settings{
		MajorIterations: iterations,
		FuncEvaluations: o.MaxEvaluations,
		Converger:       &optimize.FunctionConverge{Absolute: o.Tolerance, Iterations: 10},
	}
}
