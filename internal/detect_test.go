package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectDataPaths(t *testing.T) {
	t.Setenv(EnvDataDir, "")

	paths, err := DetectDataPaths("")
	if err != nil {
		t.Fatalf("DetectDataPaths() error = %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".research-chat")
	if paths.BaseDir != expected {
		t.Errorf("BaseDir = %v, want %v", paths.BaseDir, expected)
	}
}

func TestDetectDataPaths_Precedence(t *testing.T) {
	t.Setenv(EnvDataDir, "/from/env")

	paths, err := DetectDataPaths("")
	if err != nil {
		t.Fatalf("DetectDataPaths() error = %v", err)
	}
	if paths.BaseDir != "/from/env" {
		t.Errorf("BaseDir = %v, want /from/env", paths.BaseDir)
	}

	paths, _ = DetectDataPaths("/from/flag")
	if paths.BaseDir != "/from/flag" {
		t.Errorf("BaseDir = %v, want /from/flag", paths.BaseDir)
	}
}

func TestDataPaths_Files(t *testing.T) {
	dir := t.TempDir()
	paths := DataPaths{BaseDir: filepath.Join(dir, "data")}

	if got := paths.DatabasePath(); got != filepath.Join(dir, "data", "sessions.db") {
		t.Errorf("DatabasePath() = %v", got)
	}
	if got := paths.ConfigPath(); got != filepath.Join(dir, "data", "config.yaml") {
		t.Errorf("ConfigPath() = %v", got)
	}
	if paths.DatabaseExists() || paths.ConfigExists() {
		t.Error("nothing should exist in a fresh directory")
	}

	if err := paths.EnsureBaseDir(); err != nil {
		t.Fatalf("EnsureBaseDir() error = %v", err)
	}
	if err := os.WriteFile(paths.ConfigPath(), []byte("provider: gemini\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if !paths.ConfigExists() {
		t.Error("ConfigExists() = false after writing config")
	}
}
