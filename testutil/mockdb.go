package testutil

import (
	"database/sql"
	"sync"
	"testing"

	_ "modernc.org/sqlite"
)

// CreateInMemoryDB creates an in-memory SQLite database with the chatKV table
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS chatKV (
		key TEXT PRIMARY KEY,
		value TEXT
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		t.Fatalf("Failed to create chatKV table: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// InsertKV stores a raw value in the chatKV table
func InsertKV(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()
	insertSQL := "INSERT INTO chatKV (key, value) VALUES (?, ?)"
	if _, err := db.Exec(insertSQL, key, value); err != nil {
		t.Fatalf("Failed to insert %s: %v", key, err)
	}
}

// MemorySlot is an in-memory durable slot. Errors can be injected per
// operation.
type MemorySlot struct {
	mu       sync.Mutex
	values   map[string]string
	ReadErr  error
	WriteErr error
	Writes   int
}

// NewMemorySlot creates a slot pre-populated with values
func NewMemorySlot(values map[string]string) *MemorySlot {
	s := &MemorySlot{values: make(map[string]string)}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// Read returns the value under key
func (s *MemorySlot) Read(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return "", false, s.ReadErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

// Write stores value under key
func (s *MemorySlot) Write(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.values[key] = value
	s.Writes++
	return nil
}

// Value returns the raw stored value
func (s *MemorySlot) Value(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}
