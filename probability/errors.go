// SPDX-License-Identifier: MIT
// Package probability: sentinel error set.

package probability

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidComponents indicates a component count outside 1..MaxComponents.
	ErrInvalidComponents = errors.New("probability: invalid number of components")

	// ErrInvalidReichweite indicates R outside 0..MaxReichweite.
	ErrInvalidReichweite = errors.New("probability: invalid Reichweite")

	// ErrUnsupported indicates a valid (R, G) pair without a closed-form model.
	ErrUnsupported = errors.New("probability: no model for this Reichweite and component count")

	// ErrIndexCount indicates an accessor received a number of indices that
	// does not select a stored order.
	ErrIndexCount = errors.New("probability: wrong number of indices")

	// ErrIndexRange indicates an index outside [0, G).
	ErrIndexRange = errors.New("probability: index out of range")

	// ErrUnknownParam indicates a parameter name the model does not expose.
	ErrUnknownParam = errors.New("probability: unknown parameter")

	// ErrInvalidValue indicates a NaN parameter value.
	ErrInvalidValue = errors.New("probability: invalid parameter value")
)

func probErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
