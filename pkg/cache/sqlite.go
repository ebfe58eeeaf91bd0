package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const createEntriesTable = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	data BLOB NOT NULL,
	inserted_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cache_entries_expires ON cache_entries(expires_at);
`

// SQLiteCache stores entries in a single SQLite file. expires_at is a unix
// timestamp in seconds, 0 meaning no expiry.
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache opens (or creates) the database at path.
func NewSQLiteCache(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(createEntriesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}
	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	var expiresAt int64
	err := c.db.QueryRowContext(ctx,
		`SELECT data, expires_at FROM cache_entries WHERE key = ?`, key,
	).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if expiresAt > 0 && time.Now().Unix() > expiresAt {
		_, _ = c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key)
		return nil, false, nil
	}
	return data, true, nil
}

func (c *SQLiteCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	now := time.Now()
	var expiresAt int64
	if ttl > 0 {
		expiresAt = now.Add(ttl).Unix()
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_entries (key, category, data, inserted_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)`,
		key, CategoryOf(key), data, now.Unix(), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key)
	return err
}

// Clear removes entries. If expiredOnly is true, only expired entries go.
func (c *SQLiteCache) Clear(ctx context.Context, expiredOnly bool) (int, error) {
	query := `DELETE FROM cache_entries`
	var args []any
	if expiredOnly {
		query += ` WHERE expires_at > 0 AND expires_at < ?`
		args = append(args, time.Now().Unix())
	}
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("cache clear: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Count returns the number of stored entries per category.
func (c *SQLiteCache) Count(ctx context.Context) (map[string]int, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT category, COUNT(*) FROM cache_entries GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, err
		}
		out[cat] = n
	}
	return out, rows.Err()
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

var _ Cache = (*SQLiteCache)(nil)
