// SPDX-License-Identifier: MIT

package cache

// Nop is the in-process fallback that performs no caching.
type Nop struct{}

var _ Cache = Nop{}

// Get always misses.
func (Nop) Get(Key) ([]float64, bool) { return nil, false }

// Put discards value.
func (Nop) Put(Key, []float64) {}

// CheckSize never clears.
func (Nop) CheckSize() bool { return false }

// Clear does nothing.
func (Nop) Clear() {}

// Stats returns zero counters.
func (Nop) Stats() Stats { return Stats{} }

// Close does nothing.
func (Nop) Close() error { return nil }
