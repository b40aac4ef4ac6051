// SPDX-License-Identifier: MIT
// Package refine: sentinel errors.

package refine

import "errors"

var (
	// ErrNoProperties indicates a refinement without refinable properties.
	ErrNoProperties = errors.New("refine: no properties")

	// ErrInvalidBounds indicates a property with Min > Max or NaN bounds.
	ErrInvalidBounds = errors.New("refine: invalid property bounds")

	// ErrBadTarget indicates a property whose phase slot, specimen or
	// component does not exist in the snapshot.
	ErrBadTarget = errors.New("refine: property target not found")

	// ErrUnknownStrategy indicates a strategy name NewStrategy does not know.
	ErrUnknownStrategy = errors.New("refine: unknown strategy")

	// ErrDimension indicates a solution vector of the wrong length.
	ErrDimension = errors.New("refine: solution has wrong dimension")

	// ErrStopped is returned by evaluations attempted after a stop request.
	ErrStopped = errors.New("refine: stopped")

	// ErrBusy indicates a Run on a context that is already running.
	ErrBusy = errors.New("refine: context already running")

	// ErrPanic wraps a panic recovered from a strategy.
	ErrPanic = errors.New("refine: strategy panicked")

	// ErrNilContext indicates a nil refinement context.
	ErrNilContext = errors.New("refine: nil context")
)
