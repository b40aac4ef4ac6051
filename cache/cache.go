// SPDX-License-Identifier: MIT

package cache

import (
	"errors"
	"fmt"
	"strings"

	"github.com/katalvlaran/lvxrd/logger"
)

var (
	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("cache: unknown backend")

	// ErrMissingPath is returned by Open when the sqlite backend has no path.
	ErrMissingPath = errors.New("cache: sqlite backend requires a path")
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendNone   = "none"
)

// DefaultMaxBytes is the footprint after which a cache is cleared (256 MiB).
const DefaultMaxBytes int64 = 256 << 20

// Cache stores float64 payloads under content-hash keys.
type Cache interface {
	// Get returns a copy of the stored payload.
	Get(key Key) ([]float64, bool)
	// Put stores a copy of value.
	Put(key Key, value []float64)
	// CheckSize clears the cache when its footprint exceeds the limit and
	// reports whether it did.
	CheckSize() bool
	// Clear drops every entry.
	Clear()
	Stats() Stats
	Close() error
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int64
	Bytes   int64
	Clears  int64
}

// Options selects and configures a backend.
type Options struct {
	Backend  string
	MaxBytes int64
	Path     string
	Logger   *logger.Logger
}

// Open builds the backend described by opts. An empty backend name selects memory.
func Open(opts Options) (Cache, error) {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendMemory:
		return NewMemory(opts.MaxBytes, opts.Logger), nil
	case BackendNone, "nop", "off":
		return Nop{}, nil
	case BackendSQLite:
		if opts.Path == "" {
			return nil, ErrMissingPath
		}
		return OpenSQLite(opts.Path, opts.MaxBytes, opts.Logger)
	default:
		return nil, fmt.Errorf("Open(%q): %w", opts.Backend, ErrUnknownBackend)
	}
}

// footprint returns the byte size accounted for a payload of n floats.
func footprint(n int) int64 { return int64(n) * 8 }
