// SPDX-License-Identifier: MIT

// Package residual scores a calculated pattern against an observed one.
//
// All statistics are percentages. A mask entry set to true excludes that
// point; a nil mask includes everything. A statistic with a zero
// denominator is 0.
package residual

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrLengthMismatch indicates observed, calculated and mask lengths differ.
	ErrLengthMismatch = errors.New("residual: length mismatch")

	// ErrUnknownMetric is returned by ParseMetric.
	ErrUnknownMetric = errors.New("residual: unknown metric")
)

// Metric selects a residual statistic.
type Metric int

const (
	// MetricRp is the unweighted profile residual.
	MetricRp Metric = iota
	// MetricRwp weights every point by 1/observed.
	MetricRwp
	// MetricRpDerivative is Rp of the first derivatives.
	MetricRpDerivative
)

func (m Metric) String() string {
	switch m {
	case MetricRp:
		return "rp"
	case MetricRwp:
		return "rwp"
	case MetricRpDerivative:
		return "rpder"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// ParseMetric accepts "rp", "rwp" and "rpder" (case-insensitive).
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rp", "":
		return MetricRp, nil
	case "rwp":
		return MetricRwp, nil
	case "rpder", "rp'", "rpderivative":
		return MetricRpDerivative, nil
	default:
		return 0, fmt.Errorf("ParseMetric(%q): %w", s, ErrUnknownMetric)
	}
}

// Compute evaluates m.
func (m Metric) Compute(obs, calc []float64, mask []bool) (float64, error) {
	switch m {
	case MetricRwp:
		return Rwp(obs, calc, mask)
	case MetricRpDerivative:
		return RpDerivative(obs, calc, mask)
	case MetricRp:
		return Rp(obs, calc, mask)
	default:
		return 0, fmt.Errorf("Compute: %w", ErrUnknownMetric)
	}
}

func check(tag string, obs, calc []float64, mask []bool) error {
	if len(obs) != len(calc) || (mask != nil && len(mask) != len(obs)) {
		return fmt.Errorf("%s(obs=%d calc=%d mask=%d): %w", tag, len(obs), len(calc), len(mask), ErrLengthMismatch)
	}
	return nil
}

func excluded(mask []bool, i int) bool {
	return mask != nil && mask[i]
}

// Rp returns Σ|o − c| / Σ|o| · 100.
func Rp(obs, calc []float64, mask []bool) (float64, error) {
	if err := check("Rp", obs, calc, mask); err != nil {
		return 0, err
	}
	var num, den float64
	for i := range obs {
		if excluded(mask, i) {
			continue
		}
		num += math.Abs(obs[i] - calc[i])
		den += math.Abs(obs[i])
	}
	if den == 0 {
		return 0, nil
	}
	return num / den * 100, nil
}

// Rwp returns √(Σ w(o − c)² / Σ w·o²) · 100 with w = 1/|o|. Points with
// o = 0 carry no weight.
func Rwp(obs, calc []float64, mask []bool) (float64, error) {
	if err := check("Rwp", obs, calc, mask); err != nil {
		return 0, err
	}
	var num, den, w, d float64
	for i := range obs {
		if excluded(mask, i) || obs[i] == 0 {
			continue
		}
		w = 1 / math.Abs(obs[i])
		d = obs[i] - calc[i]
		num += w * d * d
		den += w * obs[i] * obs[i]
	}
	if den == 0 {
		return 0, nil
	}
	return math.Sqrt(num/den) * 100, nil
}

// RpDerivative returns Rp of the first derivatives of both patterns.
func RpDerivative(obs, calc []float64, mask []bool) (float64, error) {
	if err := check("RpDerivative", obs, calc, mask); err != nil {
		return 0, err
	}
	return Rp(Derivative(obs), Derivative(calc), mask)
}

// Derivative returns central differences in the interior and one-sided
// differences at both ends, per unit index step.
func Derivative(v []float64) []float64 {
	n := len(v)
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	out[0] = v[1] - v[0]
	out[n-1] = v[n-1] - v[n-2]
	for i := 1; i < n-1; i++ {
		out[i] = (v[i+1] - v[i-1]) / 2
	}
	return out
}
