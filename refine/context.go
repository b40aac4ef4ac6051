// SPDX-License-Identifier: MIT
// Package refine: refinement context and stop signal.

package refine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/katalvlaran/lvxrd/logger"
	"github.com/katalvlaran/lvxrd/mixture"
)

// Status is the lifecycle state of a refinement.
type Status string

// Refinement states.
const (
	StatusCreated  Status = "created"
	StatusRunning  Status = "running"
	StatusFinished Status = "finished"
	StatusStopped  Status = "stopped"
	StatusError    Status = "error"
)

// Solution is a property vector and the optimised residual it scored.
// Residual is +Inf until the vector has been evaluated.
type Solution struct {
	X        []float64
	Residual float64
	Mixture  *mixture.Result
}

func (s Solution) clone() Solution {
	s.X = append([]float64(nil), s.X...)
	return s
}

// Context is the state of one refinement. It is safe for concurrent use;
// the base snapshot is never modified.
type Context struct {
	id    uuid.UUID
	base  *mixture.Snapshot
	props []Property
	opt   *mixture.Optimizer
	log   *logger.Logger

	mu      sync.RWMutex
	initial Solution
	last    Solution
	best    Solution
	status  Status
	message string
	evals   int
}

// NewContext returns a refinement of props over a copy of snap. A nil
// optimiser gets an uncached default one.
func NewContext(snap *mixture.Snapshot, props []Property, opt *mixture.Optimizer, log *logger.Logger) (*Context, error) {
	if len(props) == 0 {
		return nil, ErrNoProperties
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("NewContext: %w", err)
	}
	log = logger.OrNop(log)
	if opt == nil {
		opt = mixture.NewOptimizer(nil, mixture.Options{}, log)
	}

	x0 := make([]float64, len(props))
	for i, p := range props {
		x0[i] = p.Clamp(p.Value)
	}
	id := uuid.New()
	rc := &Context{
		id:     id,
		base:   snap.Clone(),
		props:  append([]Property(nil), props...),
		opt:    opt,
		log:    log.With("refinement", id.String()),
		status: StatusCreated,
	}
	rc.initial = Solution{X: x0, Residual: math.Inf(1)}
	rc.last = rc.initial.clone()
	rc.best = rc.initial.clone()

	return rc, nil
}

// ID returns the refinement's unique identifier.
func (rc *Context) ID() uuid.UUID { return rc.id }

// Properties returns a copy of the refinable properties.
func (rc *Context) Properties() []Property { return append([]Property(nil), rc.props...) }

// Dim returns the number of refinable properties.
func (rc *Context) Dim() int { return len(rc.props) }

// Bounds returns the lower and upper bounds of every property.
func (rc *Context) Bounds() (lo, hi []float64) {
	lo = make([]float64, len(rc.props))
	hi = make([]float64, len(rc.props))
	for i, p := range rc.props {
		lo[i], hi[i] = p.Min, p.Max
	}
	return lo, hi
}

// Initial returns the starting solution.
func (rc *Context) Initial() Solution {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.initial.clone()
}

// Last returns the most recently evaluated solution.
func (rc *Context) Last() Solution {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.last.clone()
}

// Best returns the lowest-residual solution seen so far.
func (rc *Context) Best() Solution {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.best.clone()
}

// Status returns the current state and its message.
func (rc *Context) Status() (Status, string) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.status, rc.message
}

// Evaluations returns the number of completed objective evaluations.
func (rc *Context) Evaluations() int {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.evals
}

func (rc *Context) setStatus(s Status, msg string) {
	rc.mu.Lock()
	rc.status, rc.message = s, msg
	rc.mu.Unlock()
	rc.log.Info("refinement status", "status", string(s), "message", msg)
}

// begin moves a context to running unless it already is.
func (rc *Context) begin() error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.status == StatusRunning {
		return ErrBusy
	}
	rc.status, rc.message = StatusRunning, ""
	return nil
}

// Snapshot returns a copy of the base snapshot with x applied.
func (rc *Context) Snapshot(x []float64) (*mixture.Snapshot, error) {
	if len(x) != len(rc.props) {
		return nil, fmt.Errorf("Snapshot: len(x)=%d, want %d: %w", len(x), len(rc.props), ErrDimension)
	}
	snap := rc.base.Clone()
	for i, p := range rc.props {
		if err := p.Apply(snap, x[i]); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// BestSnapshot returns the base snapshot with the best solution and its
// fitted fractions, scales and background shifts applied.
func (rc *Context) BestSnapshot() (*mixture.Snapshot, error) {
	best := rc.Best()
	snap, err := rc.Snapshot(best.X)
	if err != nil {
		return nil, err
	}
	snap.Apply(best.Mixture)
	return snap, nil
}

// Evaluate clamps x to the bounds, applies it to a deep copy of the base
// snapshot, optimises the mixture and records the residual. It returns
// ErrStopped without evaluating once stop has fired.
func (rc *Context) Evaluate(stop *StopSignal, x []float64) (float64, error) {
	return rc.evaluate(stop.Context(), stop, x)
}

// evaluate is Evaluate with the mixture optimisation bound to ctx, which
// derives from stop's context. A cancelled ctx skips the evaluation.
func (rc *Context) evaluate(ctx context.Context, stop *StopSignal, x []float64) (float64, error) {
	if stop.Stopped() {
		return math.Inf(1), ErrStopped
	}
	if err := ctx.Err(); err != nil {
		return math.Inf(1), err
	}
	xc := make([]float64, len(x))
	for i := range x {
		if i < len(rc.props) {
			xc[i] = rc.props[i].Clamp(x[i])
		}
	}
	snap, err := rc.Snapshot(xc)
	if err != nil {
		return math.Inf(1), err
	}
	res, err := rc.opt.Optimize(ctx, snap)
	if err != nil {
		if stop.Stopped() {
			return math.Inf(1), ErrStopped
		}
		return math.Inf(1), err
	}
	rc.record(Solution{X: xc, Residual: res.Residual, Mixture: res})

	return res.Residual, nil
}

func (rc *Context) record(s Solution) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.evals++
	rc.last = s
	if math.IsInf(rc.initial.Residual, 1) && equal(s.X, rc.initial.X) {
		rc.initial = s.clone()
	}
	if s.Residual < rc.best.Residual {
		rc.best = s.clone()
		rc.log.Debug("refinement improved", "residual", s.Residual, "evaluation", rc.evals)
	}
}

func equal(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// StopSignal is a cooperative cancellation flag. Stop also cancels the
// context handed to in-flight mixture optimisations.
type StopSignal struct {
	flag   atomic.Bool
	ctx    context.Context
	cancel context.CancelFunc
}

// NewStopSignal returns a signal that also fires when parent is done.
func NewStopSignal(parent context.Context) *StopSignal {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &StopSignal{ctx: ctx, cancel: cancel}
}

// Stop requests cancellation. It is safe to call more than once.
func (s *StopSignal) Stop() {
	s.flag.Store(true)
	s.cancel()
}

// Stopped reports whether Stop was called or the parent context is done.
// A nil signal never fires.
func (s *StopSignal) Stopped() bool {
	if s == nil {
		return false
	}
	return s.flag.Load() || s.ctx.Err() != nil
}

// Context returns the signal's context.
func (s *StopSignal) Context() context.Context {
	if s == nil {
		return context.Background()
	}
	return s.ctx
}

func (s *StopSignal) release() {
	if s != nil {
		s.cancel()
	}
}
