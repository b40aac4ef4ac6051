// SPDX-License-Identifier: MIT

package cache

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/katalvlaran/lvxrd/logger"
)

// SQLite is a disk-backed cache. Payloads are little-endian float64 blobs.
// Database errors are logged and reported as misses; the cache never fails a
// calculation.
type SQLite struct {
	conn     *sqlx.DB
	maxBytes int64
	log      *logger.Logger

	mu     sync.Mutex // serialises size bookkeeping with writes
	bytes  int64
	hits   atomic.Int64
	misses atomic.Int64
	clears atomic.Int64
}

var _ Cache = (*SQLite)(nil)

// OpenSQLite opens or creates the cache database at path.
func OpenSQLite(path string, maxBytes int64, log *logger.Logger) (*SQLite, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	c := &SQLite{conn: conn, maxBytes: maxBytes, log: logger.OrNop(log)}
	if err := c.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}
	if err := conn.Get(&c.bytes, "SELECT COALESCE(SUM(size), 0) FROM entries"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("read cache size: %w", err)
	}

	return c, nil
}

func (c *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		key INTEGER PRIMARY KEY,
		payload BLOB NOT NULL,
		size INTEGER NOT NULL
	);
	`
	_, err := c.conn.Exec(schema)
	return err
}

// Get reads the payload stored under key. Read errors are logged and
// count as misses.
func (c *SQLite) Get(key Key) ([]float64, bool) {
	var payload []byte
	err := c.conn.Get(&payload, "SELECT payload FROM entries WHERE key = ?", int64(key))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.log.Warn("sqlite cache read failed", "key", uint64(key), "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return decodeFloats(payload), true
}

// Put upserts value under key, clearing the table first when the new
// total would exceed the limit. Write errors are logged.
func (c *SQLite) Put(key Key, value []float64) {
	size := footprint(len(value))
	if size > c.maxBytes {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var old int64
	if err := c.conn.Get(&old, "SELECT size FROM entries WHERE key = ?", int64(key)); err != nil && !errors.Is(err, sql.ErrNoRows) {
		c.log.Warn("sqlite cache size lookup failed", "key", uint64(key), "error", err)
	}
	if c.bytes-old+size > c.maxBytes {
		c.clearLocked()
		old = 0
	}
	_, err := c.conn.Exec("INSERT OR REPLACE INTO entries (key, payload, size) VALUES (?, ?, ?)",
		int64(key), encodeFloats(value), size)
	if err != nil {
		c.log.Warn("sqlite cache write failed", "key", uint64(key), "error", err)
		return
	}
	c.bytes += size - old
}

// CheckSize clears the table when it holds more than the limit.
func (c *SQLite) CheckSize() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bytes <= c.maxBytes {
		return false
	}
	c.clearLocked()
	return true
}

// Clear deletes every row.
func (c *SQLite) Clear() {
	c.mu.Lock()
	c.clearLocked()
	c.mu.Unlock()
}

func (c *SQLite) clearLocked() {
	if _, err := c.conn.Exec("DELETE FROM entries"); err != nil {
		c.log.Warn("sqlite cache clear failed", "error", err)
		return
	}
	c.log.Debug("sqlite cache cleared", "bytes", c.bytes)
	c.bytes = 0
	c.clears.Add(1)
}

// Stats returns the counters; Entries is read from the table.
func (c *SQLite) Stats() Stats {
	var entries int64
	if err := c.conn.Get(&entries, "SELECT COUNT(*) FROM entries"); err != nil {
		c.log.Warn("sqlite cache count failed", "error", err)
	}
	c.mu.Lock()
	bytes := c.bytes
	c.mu.Unlock()
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: entries,
		Bytes:   bytes,
		Clears:  c.clears.Load(),
	}
}

// Close closes the database connection; entries stay on disk.
func (c *SQLite) Close() error {
	return c.conn.Close()
}

func encodeFloats(v []float64) []byte {
	out := make([]byte, 8*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint64(out[8*i:], math.Float64bits(x))
	}
	return out
}

func decodeFloats(b []byte) []float64 {
	out := make([]float64, len(b)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
	}
	return out
}
