// SPDX-License-Identifier: MIT

// Package cache memoises the pure, array-valued calculations of the
// diffraction engine (scattering factors, CSDS weights, goniometer
// corrections, phase intensities).
//
// Values are float64 slices keyed by a 64-bit content hash (see KeyBuilder).
// Complex arrays are stored interleaved (re, im) through the Complex helper.
//
// Backends:
//
//	Memory — in-process map guarded by an RWMutex; clear-all once the byte
//	         footprint passes MaxBytes.
//	SQLite — on-disk table (modernc sqlite via sqlx) that survives restarts.
//	Nop    — performs no caching; every Get misses.
//
// All backends are safe for concurrent use by multiple goroutines.
package cache
