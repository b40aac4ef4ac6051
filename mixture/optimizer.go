// SPDX-License-Identifier: MIT
// Package mixture: bounded least-residual fit.
//
// The parameter vector is [fractions(m), scales(n), bgshifts(n)], the last
// block only with AutoBackground. Bounds (fractions ≥ 0, scales ≥ ScaleMin,
// bgshifts ≥ 0) are enforced by projecting x before every evaluation and
// adding Penalty·‖x − proj(x)‖², so the unconstrained L-BFGS of gonum sees a
// continuous objective. Gradients are central finite differences.

package mixture

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"

	"github.com/katalvlaran/lvxrd/engine"
	"github.com/katalvlaran/lvxrd/logger"
	"github.com/katalvlaran/lvxrd/residual"
)

// Defaults for Options.
const (
	DefaultMaxIterations = 200
	DefaultScaleMin      = 1e-6
	DefaultPenalty       = 1e4
	DefaultGradientStep  = 1e-6
)

// Options tune the optimiser. Zero fields take the defaults.
type Options struct {
	MaxIterations int
	ScaleMin      float64
	Penalty       float64
	GradientStep  float64
	// SkipPolish disables the Nelder–Mead pass that follows L-BFGS. The
	// residuals have a kink at a perfect fit, where L-BFGS tends to stall.
	SkipPolish bool
}

func (o Options) withDefaults() Options {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.ScaleMin <= 0 {
		o.ScaleMin = DefaultScaleMin
	}
	if o.Penalty <= 0 {
		o.Penalty = DefaultPenalty
	}
	if o.GradientStep <= 0 {
		o.GradientStep = DefaultGradientStep
	}
	return o
}

// Result is the outcome of one optimisation.
type Result struct {
	Fractions   []float64
	Scales      []float64
	BgShifts    []float64
	Residual    float64   // mean over specimens with observations
	Residuals   []float64 // per specimen; 0 without observations
	Evaluations int
}

// Optimizer fits mixtures through an engine.Calculator.
type Optimizer struct {
	calc *engine.Calculator
	opts Options
	log  *logger.Logger
}

// NewOptimizer returns an optimiser. A nil calculator gets an uncached one.
func NewOptimizer(calc *engine.Calculator, opts Options, log *logger.Logger) *Optimizer {
	log = logger.OrNop(log)
	if calc == nil {
		calc = engine.NewCalculator(nil, log)
	}
	return &Optimizer{calc: calc, opts: opts.withDefaults(), log: log}
}

// Calculator returns the engine calculator in use.
func (o *Optimizer) Calculator() *engine.Calculator { return o.calc }

// problem holds the per-specimen patterns an objective evaluates against.
// Background shifts enter x in units of the specimen's mean observed
// intensity so that every coordinate is of order one.
type problem struct {
	patterns []*engine.SpecimenPattern
	observed [][]float64
	bgUnit   []float64
	metric   residual.Metric
	nf, ns   int
	auto     bool
	opts     Options
}

func (o *Optimizer) setup(snap *Snapshot) (*problem, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	p := &problem{
		patterns: make([]*engine.SpecimenPattern, len(snap.Specimens)),
		observed: make([][]float64, len(snap.Specimens)),
		bgUnit:   make([]float64, len(snap.Specimens)),
		metric:   snap.Metric,
		nf:       len(snap.Fractions),
		ns:       len(snap.Specimens),
		auto:     snap.AutoBackground,
		opts:     o.opts,
	}
	for i, sp := range snap.Specimens {
		pat, err := o.calc.Specimen(sp)
		if err != nil {
			return nil, err
		}
		p.patterns[i] = pat
		p.observed[i] = sp.Observed
		p.bgUnit[i] = meanAbs(sp.Observed)
	}
	return p, nil
}

func (p *problem) dim() int {
	if p.auto {
		return p.nf + 2*p.ns
	}
	return p.nf + p.ns
}

func (p *problem) pack(f, s, bg []float64) []float64 {
	x := make([]float64, 0, p.dim())
	x = append(x, f...)
	x = append(x, s...)
	if p.auto {
		for i, v := range bg {
			x = append(x, v/p.bgUnit[i])
		}
	}
	return x
}

// project returns the bounded fractions, scales and shifts of x and the
// squared distance between x and its projection.
func (p *problem) project(x []float64) (f, s, bg []float64, dist2 float64) {
	f = make([]float64, p.nf)
	s = make([]float64, p.ns)
	bg = make([]float64, p.ns)
	clampInto := func(dst, src []float64, lo float64) {
		for i, v := range src {
			dst[i] = math.Max(v, lo)
			dist2 += (dst[i] - v) * (dst[i] - v)
		}
	}
	clampInto(f, x[:p.nf], 0)
	clampInto(s, x[p.nf:p.nf+p.ns], p.opts.ScaleMin)
	if p.auto {
		clampInto(bg, x[p.nf+p.ns:], 0)
		for i := range bg {
			bg[i] *= p.bgUnit[i]
		}
	}
	return f, s, bg, dist2
}

func meanAbs(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += math.Abs(x)
	}
	if s == 0 {
		return 1
	}
	return s / float64(len(v))
}

// calculated returns scale·Σ f_p·I_p + bg for specimen i.
func (p *problem) calculated(i int, f []float64, scale, bg float64) []float64 {
	out := p.patterns[i].Total(f)
	for j := range out {
		out[j] = scale*out[j] + bg
	}
	return out
}

// residuals returns the mean and per-specimen residuals at bounded values.
func (p *problem) residuals(f, s, bg []float64) (float64, []float64, error) {
	per := make([]float64, p.ns)
	var (
		sum float64
		n   int
	)
	for i := 0; i < p.ns; i++ {
		if len(p.observed[i]) == 0 {
			continue
		}
		r, err := p.metric.Compute(p.observed[i], p.calculated(i, f, s[i], bg[i]), p.patterns[i].Mask)
		if err != nil {
			return 0, nil, err
		}
		per[i] = r
		sum += r
		n++
	}
	if n == 0 {
		return 0, per, ErrNoObservations
	}
	return sum / float64(n), per, nil
}

func (p *problem) objective(x []float64) float64 {
	f, s, bg, d2 := p.project(x)
	r, _, err := p.residuals(f, s, bg)
	if err != nil {
		return math.Inf(1)
	}
	return r + p.opts.Penalty*d2
}

// Residual returns the mean residual of snap at its current values.
func (o *Optimizer) Residual(snap *Snapshot) (float64, error) {
	p, err := o.setup(snap)
	if err != nil {
		return 0, err
	}
	r, _, err := p.residuals(snap.Fractions, snap.Scales, snap.BgShifts)
	return r, err
}

// Calculate returns scale·Σ f·I + bg for every specimen at snap's values.
func (o *Optimizer) Calculate(snap *Snapshot) ([][]float64, error) {
	p, err := o.setup(snap)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, p.ns)
	for i := range out {
		out[i] = p.calculated(i, snap.Fractions, snap.Scales[i], snap.BgShifts[i])
	}
	return out, nil
}

// Optimize fits snap and returns the renormalised, rounded result. snap is
// not modified. A cancelled ctx aborts with ctx.Err().
func (o *Optimizer) Optimize(ctx context.Context, snap *Snapshot) (*Result, error) {
	p, err := o.setup(snap)
	if err != nil {
		return nil, fmt.Errorf("Optimize(%q): %w", snap.safeName(), err)
	}
	hasObs := false
	for _, obs := range p.observed {
		hasObs = hasObs || len(obs) > 0
	}
	if !hasObs {
		return nil, fmt.Errorf("Optimize(%q): %w", snap.safeName(), ErrNoObservations)
	}

	x0 := p.pack(snap.Fractions, snap.Scales, snap.BgShifts)
	best := append([]float64(nil), x0...)
	bestF := p.objective(x0)
	evals := 1
	fn := func(x []float64) float64 {
		v := p.objective(x)
		evals++
		if v < bestF {
			bestF = v
			copy(best, x)
		}
		return v
	}
	status := func() (optimize.Status, error) {
		if err := ctx.Err(); err != nil {
			return optimize.Failure, err
		}
		return optimize.NotTerminated, nil
	}
	settings := &optimize.Settings{
		MajorIterations: o.opts.MaxIterations,
		Converger:       &optimize.FunctionConverge{Absolute: 1e-10, Iterations: 20},
	}

	grad := &fd.Settings{Formula: fd.Central, Step: o.opts.GradientStep}
	lbfgs := optimize.Problem{
		Func:   fn,
		Grad:   func(g, x []float64) { fd.Gradient(g, fn, x, grad) },
		Status: status,
	}
	if _, err := optimize.Minimize(lbfgs, x0, settings, &optimize.LBFGS{}); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		o.log.Debug("lbfgs stopped early", "mixture", snap.Name, "error", err)
	}

	if !o.opts.SkipPolish && bestF > 0 {
		start := append([]float64(nil), best...)
		nm := optimize.Problem{Func: fn, Status: status}
		if _, err := optimize.Minimize(nm, start, settings, &optimize.NelderMead{}); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.log.Debug("nelder-mead polish stopped early", "mixture", snap.Name, "error", err)
		}
	}

	f, s, bg, _ := p.project(best)
	if !p.auto {
		copy(bg, snap.BgShifts)
	}
	res := finalize(f, s, bg)
	res.Evaluations = evals
	res.Residual, res.Residuals, err = p.residuals(res.Fractions, res.Scales, res.BgShifts)
	if err != nil && !errors.Is(err, ErrNoObservations) {
		return nil, err
	}
	o.log.Debug("mixture optimised", "mixture", snap.Name, "residual", res.Residual, "evaluations", evals)

	return res, nil
}

// finalize renormalises fractions to 1 (fraction[0] = 1 when they sum to
// 0), rescales the scales so scale·fraction is unchanged, rounds everything
// to 6 decimals and puts the rounding drift on the largest fraction.
func finalize(f, s, bg []float64) *Result {
	var sum float64
	for _, v := range f {
		sum += v
	}
	if sum == 0 {
		f[0] = 1
	} else {
		for i := range f {
			f[i] /= sum
		}
		for i := range s {
			s[i] *= sum
		}
	}
	round6(f)
	round6(s)
	round6(bg)

	top := 0
	for i := range f {
		if f[i] > f[top] {
			top = i
		}
	}
	var rest float64
	for i, v := range f {
		if i != top {
			rest += v
		}
	}
	f[top] = 1 - rest

	return &Result{Fractions: f, Scales: s, BgShifts: bg}
}

func round6(v []float64) {
	for i := range v {
		v[i] = math.Round(v[i]*1e6) / 1e6
	}
}

func (s *Snapshot) safeName() string {
	if s == nil {
		return ""
	}
	return s.Name
}
