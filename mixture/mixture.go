// SPDX-License-Identifier: MIT
// Package mixture: stateful holder.

package mixture

import (
	"context"
	"sync"

	"github.com/katalvlaran/lvxrd/logger"
)

// Mixture owns the current snapshot of a mixture and replaces it only after
// a successful optimisation.
type Mixture struct {
	mu   sync.RWMutex
	snap *Snapshot
	last *Result
	opt  *Optimizer
	log  *logger.Logger
}

// New returns a mixture holding a copy of snap.
func New(snap *Snapshot, opt *Optimizer, log *logger.Logger) *Mixture {
	log = logger.OrNop(log)
	if opt == nil {
		opt = NewOptimizer(nil, Options{}, log)
	}
	return &Mixture{snap: snap.Clone(), opt: opt, log: log}
}

// Snapshot returns a deep copy of the current state.
func (m *Mixture) Snapshot() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap.Clone()
}

// SetSnapshot replaces the current state with a copy of snap.
func (m *Mixture) SetSnapshot(snap *Snapshot) {
	cp := snap.Clone()
	m.mu.Lock()
	m.snap = cp
	m.last = nil
	m.mu.Unlock()
}

// LastResult returns the result of the last successful Optimize, or nil.
func (m *Mixture) LastResult() *Result {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// Optimize fits the current state and applies the result. On error the
// state is left unchanged and the error is logged and returned. A result
// fitted to a snapshot that SetSnapshot replaced in the meantime is
// discarded with ErrStateChanged.
func (m *Mixture) Optimize(ctx context.Context) (*Result, error) {
	m.mu.RLock()
	src := m.snap
	snap := src.Clone()
	m.mu.RUnlock()

	res, err := m.opt.Optimize(ctx, snap)
	if err != nil {
		m.log.Warn("mixture optimisation failed; state kept", "mixture", snap.safeName(), "error", err)
		return nil, err
	}

	m.mu.Lock()
	if m.snap != src {
		m.mu.Unlock()
		m.log.Warn("mixture replaced during optimisation; result discarded", "mixture", snap.safeName())
		return nil, ErrStateChanged
	}
	m.snap.Apply(res)
	m.last = res
	m.mu.Unlock()
	m.log.Info("mixture optimised", "mixture", snap.safeName(),
		"residual", res.Residual, "fractions", res.Fractions)

	return res, nil
}

// Calculate returns the calculated pattern of every specimen at the current state.
func (m *Mixture) Calculate() ([][]float64, error) {
	return m.opt.Calculate(m.Snapshot())
}

// Residual returns the mean residual at the current state.
func (m *Mixture) Residual() (float64, error) {
	return m.opt.Residual(m.Snapshot())
}
