package offline

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ziadkadry99/transitdir/internal/db"
)

// SQLStorage persists caches in SQLite so they survive restarts.
type SQLStorage struct {
	db *db.DB
}

// NewSQLStorage returns a storage backed by database.
func NewSQLStorage(database *db.DB) *SQLStorage {
	return &SQLStorage{db: database}
}

func (s *SQLStorage) Open(ctx context.Context, name string) (Cache, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO cache_stores (name, created_at) VALUES (?, ?)`,
		name, time.Now().UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", name, err)
	}
	return &sqlCache{db: s.db, name: name}, nil
}

func (s *SQLStorage) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM cache_stores ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing caches: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning cache name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLStorage) Delete(ctx context.Context, name string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cache_entries WHERE cache_name = ?`, name); err != nil {
		return false, fmt.Errorf("deleting entries of %s: %w", name, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM cache_stores WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("deleting cache %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing delete: %w", err)
	}
	return n > 0, nil
}

type sqlCache struct {
	db   *db.DB
	name string
}

func (c *sqlCache) Name() string { return c.name }

const putEntrySQL = `INSERT OR REPLACE INTO cache_entries
	(cache_name, method, url, status, header, body, stored_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

func (c *sqlCache) Put(ctx context.Context, e Entry) error {
	args, err := c.entryArgs(e)
	if err != nil {
		return err
	}
	if _, err := c.db.ExecContext(ctx, putEntrySQL, args...); err != nil {
		return fmt.Errorf("storing %s: %w", e.Key, err)
	}
	return nil
}

func (c *sqlCache) PutAll(ctx context.Context, entries []Entry) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning put: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		args, err := c.entryArgs(e)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, putEntrySQL, args...); err != nil {
			return fmt.Errorf("storing %s: %w", e.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing put: %w", err)
	}
	return nil
}

func (c *sqlCache) entryArgs(e Entry) ([]any, error) {
	header, err := json.Marshal(e.Header)
	if err != nil {
		return nil, fmt.Errorf("encoding headers of %s: %w", e.Key, err)
	}
	storedAt := e.StoredAt
	if storedAt.IsZero() {
		storedAt = time.Now().UTC()
	}
	return []any{c.name, e.Key.Method, e.Key.URL, e.Status, string(header), e.Body, storedAt.UnixNano()}, nil
}

func (c *sqlCache) Match(ctx context.Context, key Key) (Entry, bool, error) {
	var (
		e        Entry
		header   string
		storedAt int64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT method, url, status, header, body, stored_at
		 FROM cache_entries WHERE cache_name = ? AND method = ? AND url = ?`,
		c.name, key.Method, key.URL,
	).Scan(&e.Key.Method, &e.Key.URL, &e.Status, &header, &e.Body, &storedAt)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("matching %s: %w", key, err)
	}

	e.Header = http.Header{}
	if err := json.Unmarshal([]byte(header), &e.Header); err != nil {
		return Entry{}, false, fmt.Errorf("decoding headers of %s: %w", key, err)
	}
	e.StoredAt = time.Unix(0, storedAt).UTC()
	return e, true, nil
}

func (c *sqlCache) Keys(ctx context.Context) ([]Key, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT method, url FROM cache_entries WHERE cache_name = ? ORDER BY stored_at, rowid`, c.name)
	if err != nil {
		return nil, fmt.Errorf("listing entries of %s: %w", c.name, err)
	}
	defer rows.Close()

	var keys []Key
	for rows.Next() {
		var k Key
		if err := rows.Scan(&k.Method, &k.URL); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
