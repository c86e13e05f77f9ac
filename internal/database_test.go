package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/iksnae/research-chat/testutil"
)

func TestOpenDatabase(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "existing database",
			setup: func(t *testing.T) string {
				dbPath := filepath.Join(testutil.CreateTempDir(t), "sessions.db")
				testutil.CreateSQLiteFixture(t, dbPath)
				return dbPath
			},
		},
		{
			name: "created on first use",
			setup: func(t *testing.T) string {
				return filepath.Join(testutil.CreateTempDir(t), "nested", "sessions.db")
			},
		},
		{
			name: "in memory",
			setup: func(t *testing.T) string {
				return ":memory:"
			},
		},
		{
			name: "parent is a file",
			setup: func(t *testing.T) string {
				dir := testutil.CreateTempDir(t)
				blocker := testutil.WriteFile(t, dir, "blocker", []byte("x"))
				return filepath.Join(blocker, "sessions.db")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbPath := tt.setup(t)
			db, err := OpenDatabase(dbPath)
			if (err != nil) != tt.wantErr {
				t.Fatalf("OpenDatabase() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var storageErr *StorageError
				if !errors.As(err, &storageErr) {
					t.Errorf("OpenDatabase() error = %T, want *StorageError", err)
				}
				return
			}
			defer db.Close()

			if err := db.Ping(); err != nil {
				t.Errorf("Database ping failed: %v", err)
			}
			if dbPath != ":memory:" {
				if _, err := os.Stat(dbPath); err != nil {
					t.Errorf("database file missing: %v", err)
				}
			}
		})
	}
}

func TestQueryKV(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	testutil.InsertKV(t, db, "chat-sessions", "[]")
	testutil.InsertKV(t, db, "chat-current", "abc")
	testutil.InsertKV(t, db, "other", "x")

	tests := []struct {
		name    string
		pattern string
		want    int
	}{
		{name: "chat keys", pattern: "chat-%", want: 2},
		{name: "everything", pattern: "%", want: 3},
		{name: "exact key", pattern: "other", want: 1},
		{name: "no match", pattern: "missing%", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs, err := QueryKV(db, tt.pattern)
			if err != nil {
				t.Fatalf("QueryKV() error = %v", err)
			}
			if len(pairs) != tt.want {
				t.Errorf("QueryKV() returned %d pairs, want %d", len(pairs), tt.want)
			}
		})
	}
}

func TestQueryKV_NullValues(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)

	if _, err := db.Exec("INSERT INTO chatKV (key, value) VALUES (?, ?)", "test:key1", nil); err != nil {
		t.Fatalf("Failed to insert NULL value: %v", err)
	}
	testutil.InsertKV(t, db, "test:key2", "value2")

	pairs, err := QueryKV(db, "test:%")
	if err != nil {
		t.Fatalf("QueryKV() error = %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("QueryKV() returned %d pairs, want 1", len(pairs))
	}
	if pairs[0].Key != "test:key2" {
		t.Errorf("QueryKV() returned key %q, want test:key2", pairs[0].Key)
	}
}

func TestSQLiteSlot(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	slot := NewSQLiteSlot(db, ":memory:")

	if _, ok, err := slot.Read("chat-sessions"); err != nil || ok {
		t.Fatalf("Read() on empty slot = ok %v, err %v", ok, err)
	}

	if err := slot.Write("chat-sessions", "[1]"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := slot.Write("chat-sessions", "[2]"); err != nil {
		t.Fatalf("Write() overwrite error = %v", err)
	}

	value, ok, err := slot.Read("chat-sessions")
	if err != nil || !ok {
		t.Fatalf("Read() = ok %v, err %v", ok, err)
	}
	if value != "[2]" {
		t.Errorf("Read() = %q, want [2]", value)
	}

	keys, err := slot.Keys()
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if len(keys) != 1 || keys[0] != "chat-sessions" {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestSQLiteSlot_ClosedDatabase(t *testing.T) {
	db, err := OpenDatabase(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	slot := NewSQLiteSlot(db, "closed.db")
	db.Close()

	_, _, err = slot.Read("chat-sessions")
	var storageErr *StorageError
	if !errors.As(err, &storageErr) || storageErr.Op != "read" {
		t.Errorf("Read() error = %v, want read StorageError", err)
	}
	if err := slot.Write("k", "v"); !errors.As(err, &storageErr) || storageErr.Op != "write" {
		t.Errorf("Write() error = %v, want write StorageError", err)
	}
}
