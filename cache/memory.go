// SPDX-License-Identifier: MIT

package cache

import (
	"sync"
	"sync/atomic"

	"github.com/katalvlaran/lvxrd/logger"
)

// Memory is an in-process cache with a byte budget. When a Put would push the
// footprint past MaxBytes the whole map is dropped first; there is no
// per-entry eviction.
type Memory struct {
	mu       sync.RWMutex
	entries  map[Key][]float64
	bytes    int64
	maxBytes int64
	hits     atomic.Int64
	misses   atomic.Int64
	clears   int64
	log      *logger.Logger
}

var _ Cache = (*Memory)(nil)

// NewMemory returns an empty memory cache; maxBytes<=0 selects DefaultMaxBytes.
func NewMemory(maxBytes int64, log *logger.Logger) *Memory {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Memory{
		entries:  make(map[Key][]float64),
		maxBytes: maxBytes,
		log:      logger.OrNop(log),
	}
}

// Get returns a copy of the payload stored under key.
func (m *Memory) Get(key Key) ([]float64, bool) {
	m.mu.RLock()
	v, ok := m.entries[key]
	if !ok {
		m.mu.RUnlock()
		m.misses.Add(1)
		return nil, false
	}
	out := make([]float64, len(v))
	copy(out, v)
	m.mu.RUnlock()

	m.hits.Add(1)
	return out, true
}

// Put stores a copy of value. A payload larger than the limit is dropped;
// one that would overflow it clears the cache first.
func (m *Memory) Put(key Key, value []float64) {
	size := footprint(len(value))
	if size > m.maxBytes {
		return // would never fit
	}
	cp := make([]float64, len(value))
	copy(cp, value)

	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.entries[key]; ok {
		m.bytes -= footprint(len(old))
	}
	if m.bytes+size > m.maxBytes {
		m.clearLocked()
	}
	m.entries[key] = cp
	m.bytes += size
}

// CheckSize clears the cache when it holds more than the limit.
func (m *Memory) CheckSize() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bytes <= m.maxBytes {
		return false
	}
	m.clearLocked()
	return true
}

// Clear drops every entry and counts one clear.
func (m *Memory) Clear() {
	m.mu.Lock()
	m.clearLocked()
	m.mu.Unlock()
}

func (m *Memory) clearLocked() {
	m.log.Debug("memory cache cleared", "entries", len(m.entries), "bytes", m.bytes)
	m.entries = make(map[Key][]float64)
	m.bytes = 0
	m.clears++
}

// Stats returns the current counters.
func (m *Memory) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
		Entries: int64(len(m.entries)),
		Bytes:   m.bytes,
		Clears:  m.clears,
	}
}

// Close drops every entry.
func (m *Memory) Close() error {
	m.Clear()
	return nil
}
