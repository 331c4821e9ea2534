// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists raw provider responses in SQLite so repeated
// queries inside the TTL are answered without a network call. Only provider
// bytes are cached; clusters and profiles are rebuilt on every request.
// Implements: prd001-search-proxy (R5);
//
//	docs/ARCHITECTURE.md § Response cache.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/entity-engine/pkg/types"
)

const dbFile = "responses.db"

const defaultTTL = 15 * time.Minute

// Cache is a TTL cache of provider responses keyed by endpoint and request
// payload. It satisfies the provider client's ResponseCache interface.
type Cache struct {
	db  *sql.DB
	ttl time.Duration

	// now is replaced in tests to age entries without sleeping.
	now func() time.Time
}

// New opens or creates the response cache database under cfg.Dir.
func New(cfg types.CacheConfig) (*Cache, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "cache"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	c := &Cache{db: db, ttl: ttl, now: time.Now}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS responses (
			key TEXT PRIMARY KEY,
			endpoint TEXT NOT NULL,
			response BLOB NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_created_at ON responses(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Get returns the cached response for an endpoint and request payload.
// Expired entries are deleted on read and reported as misses.
func (c *Cache) Get(endpoint string, request []byte) ([]byte, bool) {
	key := cacheKey(endpoint, request)

	var response []byte
	var createdAt int64
	err := c.db.QueryRow(
		`SELECT response, created_at FROM responses WHERE key = ?`, key,
	).Scan(&response, &createdAt)
	if err != nil {
		return nil, false
	}

	if c.now().Sub(time.Unix(createdAt, 0)) > c.ttl {
		c.db.Exec(`DELETE FROM responses WHERE key = ?`, key)
		return nil, false
	}
	return response, true
}

// Put stores a response, replacing any previous entry for the same key.
func (c *Cache) Put(endpoint string, request, response []byte) error {
	_, err := c.db.Exec(
		`INSERT INTO responses (key, endpoint, response, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   response = excluded.response,
		   created_at = excluded.created_at`,
		cacheKey(endpoint, request), endpoint, response, c.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("storing cached response: %w", err)
	}
	return nil
}

// Purge deletes every expired entry and returns how many were removed.
func (c *Cache) Purge() (int, error) {
	cutoff := c.now().Add(-c.ttl).Unix()
	res, err := c.db.Exec(`DELETE FROM responses WHERE created_at <= ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Stats reports entry counts for the cache status command.
func (c *Cache) Stats() (total, expired int, err error) {
	cutoff := c.now().Add(-c.ttl).Unix()
	err = c.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(created_at <= ?), 0) FROM responses`, cutoff,
	).Scan(&total, &expired)
	if err != nil {
		return 0, 0, fmt.Errorf("reading cache stats: %w", err)
	}
	return total, expired, nil
}

// cacheKey hashes the endpoint and request payload. The request bytes are
// the serialized JSON body, so equal queries collide and near-equal ones
// do not.
func cacheKey(endpoint string, request []byte) string {
	h := sha256.New()
	h.Write([]byte(endpoint))
	h.Write([]byte{0})
	h.Write(request)
	return hex.EncodeToString(h.Sum(nil))
}
