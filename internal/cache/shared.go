package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/metrics"
)

// SharedCache is the durable tier: a SQLite table shared by every process
// pointed at the same path. Entries carry an expiry timestamp checked
// lazily on read; corrupt payloads count as misses and are deleted.
type SharedCache struct {
	conn       *sqlx.DB
	maxEntries int
}

// OpenShared opens or creates the shared cache database at path.
func OpenShared(path string, maxEntries int) (*SharedCache, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if maxEntries <= 0 {
		maxEntries = 10000
	}
	c := &SharedCache{conn: conn, maxEntries: maxEntries}
	if err := c.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}

	return c, nil
}

// Close closes the database connection.
func (c *SharedCache) Close() error {
	return c.conn.Close()
}

func (c *SharedCache) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS calc_cache (
		cache_key TEXT PRIMARY KEY,
		calc_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		computed_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL,
		hit_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_calc_cache_type ON calc_cache(calc_type);
	CREATE INDEX IF NOT EXISTS idx_calc_cache_expiry ON calc_cache(expires_at);
	`
	_, err := c.conn.Exec(schema)
	return err
}

type cacheRow struct {
	CacheKey   string `db:"cache_key"`
	CalcType   string `db:"calc_type"`
	Payload    string `db:"payload"`
	ComputedAt int64  `db:"computed_at"`
	ExpiresAt  int64  `db:"expires_at"`
	HitCount   int64  `db:"hit_count"`
}

// Get returns the payload for key if present, unexpired and well-formed
// JSON. Expired or corrupt rows are deleted and reported as misses.
func (c *SharedCache) Get(key string) ([]byte, bool) {
	var row cacheRow
	err := c.conn.Get(&row, "SELECT * FROM calc_cache WHERE cache_key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordCacheOp("shared", "miss")
		return nil, false
	}
	if err != nil {
		metrics.RecordCacheOp("shared", "miss")
		return nil, false
	}

	now := time.Now().Unix()
	if row.ExpiresAt <= now {
		c.conn.Exec("DELETE FROM calc_cache WHERE cache_key = ?", key)
		metrics.RecordCacheOp("shared", "expired")
		return nil, false
	}

	payload := []byte(row.Payload)
	if !json.Valid(payload) {
		c.conn.Exec("DELETE FROM calc_cache WHERE cache_key = ?", key)
		metrics.RecordCacheOp("shared", "corrupt")
		return nil, false
	}

	c.conn.Exec("UPDATE calc_cache SET hit_count = hit_count + 1 WHERE cache_key = ?", key)
	metrics.RecordCacheOp("shared", "hit")
	return payload, true
}

// Put upserts payload under key with the given type and expiry, then
// trims the tier back under its entry cap, oldest first.
func (c *SharedCache) Put(key, calcType string, payload []byte, expiresAt time.Time) error {
	now := time.Now().Unix()
	_, err := c.conn.Exec(`INSERT INTO calc_cache
		(cache_key, calc_type, payload, computed_at, expires_at, hit_count)
		VALUES (?, ?, ?, ?, ?, 0)
		ON CONFLICT(cache_key) DO UPDATE SET
			calc_type = excluded.calc_type,
			payload = excluded.payload,
			computed_at = excluded.computed_at,
			expires_at = excluded.expires_at`,
		key, calcType, string(payload), now, expiresAt.Unix())
	if err != nil {
		return fmt.Errorf("cache put %s: %w", key, err)
	}

	return c.trim()
}

func (c *SharedCache) trim() error {
	var count int
	if err := c.conn.Get(&count, "SELECT COUNT(*) FROM calc_cache"); err != nil {
		return err
	}
	excess := count - c.maxEntries
	if excess <= 0 {
		return nil
	}

	res, err := c.conn.Exec(`DELETE FROM calc_cache WHERE cache_key IN (
		SELECT cache_key FROM calc_cache ORDER BY computed_at ASC LIMIT ?)`, excess)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil {
		for i := int64(0); i < n; i++ {
			metrics.RecordCacheEviction("shared")
		}
	}
	return nil
}

// Delete removes key if present.
func (c *SharedCache) Delete(key string) error {
	_, err := c.conn.Exec("DELETE FROM calc_cache WHERE cache_key = ?", key)
	return err
}

// DeleteType removes every entry of one calculation type. Used when a
// catalog change invalidates a whole class of results.
func (c *SharedCache) DeleteType(calcType string) (int64, error) {
	res, err := c.conn.Exec("DELETE FROM calc_cache WHERE calc_type = ?", calcType)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Sweep deletes every expired row. Lazy expiry on read keeps the cache
// correct without this; Sweep just reclaims space.
func (c *SharedCache) Sweep() (int64, error) {
	res, err := c.conn.Exec("DELETE FROM calc_cache WHERE expires_at <= ?", time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Len returns the current row count.
func (c *SharedCache) Len() (int, error) {
	var count int
	err := c.conn.Get(&count, "SELECT COUNT(*) FROM calc_cache")
	return count, err
}
