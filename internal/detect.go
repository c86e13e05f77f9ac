package internal

import (
	"fmt"
	"os"
	"path/filepath"
)

// DataPaths holds the locations of the client's local files
type DataPaths struct {
	BaseDir string // data directory (~/.research-chat by default)
}

// DetectDataPaths resolves the data directory. An explicit dir wins over
// RESEARCH_CHAT_DATA_DIR, which wins over ~/.research-chat.
func DetectDataPaths(dir string) (DataPaths, error) {
	if dir == "" {
		dir = os.Getenv(EnvDataDir)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DataPaths{}, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".research-chat")
	}
	return DataPaths{BaseDir: dir}, nil
}

// DatabasePath returns the path of the SQLite file holding the durable slot
func (dp DataPaths) DatabasePath() string {
	return filepath.Join(dp.BaseDir, "sessions.db")
}

// ConfigPath returns the path of the YAML config file
func (dp DataPaths) ConfigPath() string {
	return filepath.Join(dp.BaseDir, "config.yaml")
}

// DatabaseExists checks if the session database has been created
func (dp DataPaths) DatabaseExists() bool {
	_, err := os.Stat(dp.DatabasePath())
	return err == nil
}

// ConfigExists checks if a config file is present
func (dp DataPaths) ConfigExists() bool {
	_, err := os.Stat(dp.ConfigPath())
	return err == nil
}

// EnsureBaseDir creates the data directory
func (dp DataPaths) EnsureBaseDir() error {
	if err := os.MkdirAll(dp.BaseDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", dp.BaseDir, err)
	}
	return nil
}
