package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// SampleSessionsJSON is a persisted collection in the web client's layout:
// "ai" roles, ISO timestamps and an error-flagged reply
const SampleSessionsJSON = `[
  {
    "session_id": "sess-2",
    "name": "Literature review",
    "createdAt": "2025-03-02T09:30:00.000Z",
    "messages": [
      {"role": "human", "content": "Summarize the attached paper", "timestamp": "2025-03-02T09:31:00.000Z"},
      {"role": "ai", "content": "The paper proposes...", "timestamp": "2025-03-02T09:31:20.500Z"},
      {"role": "ai", "content": "The AI service is temporarily unavailable.", "timestamp": "2025-03-02T09:35:00.000Z", "isError": true}
    ]
  },
  {
    "session_id": "sess-1",
    "name": "Chat 08:15",
    "createdAt": "2025-03-01T08:15:00.000Z",
    "messages": [],
    "extra": "ignored"
  }
]`

// CreateSQLiteFixture creates a session database at dbPath holding
// SampleSessionsJSON with sess-2 current
func CreateSQLiteFixture(t *testing.T, dbPath string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS chatKV (
		key TEXT PRIMARY KEY,
		value TEXT
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	insertSQL := "INSERT INTO chatKV (key, value) VALUES (?, ?)"
	if _, err := db.Exec(insertSQL, "chat-sessions", SampleSessionsJSON); err != nil {
		t.Fatalf("Failed to insert sessions: %v", err)
	}
	if _, err := db.Exec(insertSQL, "chat-current", "sess-2"); err != nil {
		t.Fatalf("Failed to insert current session: %v", err)
	}
}

// CreateDataDir creates a data directory holding a session database fixture
// and, when config is non-empty, a config.yaml
func CreateDataDir(t *testing.T, config string) string {
	t.Helper()
	dir := CreateTempDir(t)
	CreateSQLiteFixture(t, filepath.Join(dir, "sessions.db"))
	if config != "" {
		WriteFile(t, dir, "config.yaml", []byte(config))
	}
	return dir
}
