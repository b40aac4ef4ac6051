// SPDX-License-Identifier: MIT
// Package refine: refinement runner.

package refine

import (
	"context"
	"fmt"

	"github.com/katalvlaran/lvxrd/logger"
)

// Refiner runs a Strategy over refinement contexts.
type Refiner struct {
	strategy Strategy
	log      *logger.Logger
}

// New returns a refiner for strategy. A nil strategy means Nelder–Mead
// with default options.
func New(strategy Strategy, log *logger.Logger) *Refiner {
	if strategy == nil {
		strategy = &nelderMead{opts: DefaultOptions().withDefaults()}
	}
	return &Refiner{strategy: strategy, log: logger.OrNop(log)}
}

// Strategy returns the refiner's strategy.
func (r *Refiner) Strategy() Strategy { return r.strategy }

// Run refines rc until the strategy finishes, ctx is done, or an error
// occurs, and returns the final status. Runtime errors and panics are
// recorded in rc, never returned; the error result only reports a nil or
// already running context.
func (r *Refiner) Run(ctx context.Context, rc *Context) (Status, error) {
	stop := NewStopSignal(ctx)
	defer stop.release()
	return r.run(rc, stop)
}

func (r *Refiner) run(rc *Context, stop *StopSignal) (Status, error) {
	if rc == nil {
		return "", ErrNilContext
	}
	if err := rc.begin(); err != nil {
		return StatusRunning, err
	}
	rc.log.Info("refinement started", "strategy", r.strategy.Name(), "properties", rc.Dim())

	err := r.guarded(rc, stop)

	var status Status
	switch {
	case stop.Stopped():
		status = StatusStopped
		rc.setStatus(status, fmt.Sprintf("stopped after %d evaluations", rc.Evaluations()))
	case err != nil:
		status = StatusError
		rc.setStatus(status, err.Error())
		r.log.Warn("refinement failed", "refinement", rc.ID().String(), "error", err)
	default:
		status = StatusFinished
		best := rc.Best()
		rc.setStatus(status, fmt.Sprintf("best residual %.4f after %d evaluations", best.Residual, rc.Evaluations()))
	}
	return status, nil
}

// guarded scores the initial solution, then runs the strategy, turning
// panics into errors.
func (r *Refiner) guarded(rc *Context, stop *StopSignal) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, p)
		}
	}()
	if _, err := rc.Evaluate(stop, rc.Initial().X); err != nil {
		return err
	}
	return r.strategy.Run(rc, stop)
}

// Handle controls a refinement started with Start.
type Handle struct {
	stop   *StopSignal
	done   chan struct{}
	status Status
	err    error
}

// Start runs the refinement on its own goroutine.
func (r *Refiner) Start(ctx context.Context, rc *Context) *Handle {
	h := &Handle{stop: NewStopSignal(ctx), done: make(chan struct{})}
	go func() {
		defer close(h.done)
		defer h.stop.release()
		h.status, h.err = r.run(rc, h.stop)
	}()
	return h
}

// Stop requests cancellation; the run ends at its next stop check.
func (h *Handle) Stop() { h.stop.Stop() }

// Done is closed when the run has ended.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the run ends and returns Run's results.
func (h *Handle) Wait() (Status, error) {
	<-h.done
	return h.status, h.err
}
