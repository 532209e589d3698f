package wiki

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Cache stores raw wiki API responses in SQLite so repeated tool calls
// for the same page don't re-fetch within the TTL. Entries are only as
// fresh as the TTL demands; expired rows are overwritten on write and
// pruned opportunistically on read.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// OpenCache opens (or creates) the cache database under dir.
func OpenCache(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("wiki cache: create dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(dir, "wikicache.db"))
	if err != nil {
		return nil, fmt.Errorf("wiki cache: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("wiki cache: pragma %q: %w", p, err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS responses (
			cache_key  TEXT PRIMARY KEY,
			body       BLOB NOT NULL,
			fetched_at INTEGER NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("wiki cache: schema: %w", err)
	}

	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached body for key if it exists and is fresh.
func (c *Cache) Get(key string) ([]byte, bool) {
	var body []byte
	var fetchedAt int64
	err := c.db.QueryRow(
		`SELECT body, fetched_at FROM responses WHERE cache_key = ?`, key,
	).Scan(&body, &fetchedAt)
	if err != nil {
		return nil, false
	}

	if c.now().Sub(time.Unix(fetchedAt, 0)) > c.ttl {
		// Stale: drop it so the table doesn't accumulate dead rows.
		_, _ = c.db.Exec(`DELETE FROM responses WHERE cache_key = ?`, key)
		return nil, false
	}
	return body, true
}

// Put stores a response body, replacing any previous entry for key.
func (c *Cache) Put(key string, body []byte) error {
	if len(body) == 0 {
		return errors.New("wiki cache: empty body")
	}
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO responses (cache_key, body, fetched_at) VALUES (?, ?, ?)`,
		key, body, c.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("wiki cache: put: %w", err)
	}
	return nil
}
