package internal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const kvTable = "chatKV"

// OpenDatabase opens the SQLite database backing the durable slot, creating the
// file and the key/value table when missing
func OpenDatabase(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, &StorageError{Path: path, Op: "open", Err: err}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}
	// One connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, &StorageError{Path: path, Op: "open", Err: fmt.Errorf("database ping failed: %w", err)}
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS ` + kvTable + ` (
		key TEXT PRIMARY KEY,
		value TEXT
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		_ = db.Close()
		return nil, &StorageError{Path: path, Op: "migrate", Err: err}
	}

	return db, nil
}

// KeyValuePair represents a row of the key/value table
type KeyValuePair struct {
	Key   string
	Value string
}

// QueryKV returns all pairs whose key matches a LIKE pattern
func QueryKV(db *sql.DB, pattern string) ([]KeyValuePair, error) {
	query := "SELECT key, value FROM " + kvTable + " WHERE key LIKE ? AND value IS NOT NULL ORDER BY key"
	rows, err := db.Query(query, pattern)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var pairs []KeyValuePair
	for rows.Next() {
		var pair KeyValuePair
		var value sql.NullString
		if err := rows.Scan(&pair.Key, &value); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if value.Valid {
			pair.Value = value.String
			pairs = append(pairs, pair)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return pairs, nil
}

// SQLiteSlot is a durable key/value slot stored in a SQLite table
type SQLiteSlot struct {
	db   *sql.DB
	path string
}

// NewSQLiteSlot wraps an open database. path is only used in error reports.
func NewSQLiteSlot(db *sql.DB, path string) *SQLiteSlot {
	return &SQLiteSlot{db: db, path: path}
}

// Read returns the value stored under key. ok is false when the key is absent.
func (s *SQLiteSlot) Read(key string) (value string, ok bool, err error) {
	var v sql.NullString
	err = s.db.QueryRow("SELECT value FROM "+kvTable+" WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StorageError{Path: s.path, Op: "read", Err: err}
	}
	if !v.Valid {
		return "", false, nil
	}
	return v.String, true, nil
}

// Write stores value under key, replacing any previous value
func (s *SQLiteSlot) Write(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO "+kvTable+" (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return &StorageError{Path: s.path, Op: "write", Err: err}
	}
	return nil
}

// Keys lists the keys currently stored in the slot
func (s *SQLiteSlot) Keys() ([]string, error) {
	pairs, err := QueryKV(s.db, "%")
	if err != nil {
		return nil, &StorageError{Path: s.path, Op: "read", Err: err}
	}
	keys := make([]string, 0, len(pairs))
	for _, p := range pairs {
		keys = append(keys, p.Key)
	}
	return keys, nil
}
