package cmd

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/iksnae/research-chat/internal"
	"github.com/iksnae/research-chat/internal/notify"
	"github.com/iksnae/research-chat/internal/transport"
)

// app is everything a command needs: resolved config, the session store
// backed by the SQLite slot, and the backend client
type app struct {
	paths  internal.DataPaths
	cfg    internal.Config
	db     *sql.DB
	store  *internal.Store
	client *transport.Client
}

// loadConfig resolves the config file, then the environment, then flags
func loadConfig() (internal.DataPaths, internal.Config, error) {
	paths, err := internal.DetectDataPaths(dataDir)
	if err != nil {
		return paths, internal.Config{}, fmt.Errorf("failed to detect data directory: %w", err)
	}

	path := configPath
	if path == "" {
		path = paths.ConfigPath()
	}
	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return paths, cfg, err
	}
	cfg.ApplyEnv(os.Getenv)
	if backendURL != "" {
		cfg.BackendURL = backendURL
	}
	if err := cfg.Validate(); err != nil {
		return paths, cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return paths, cfg, nil
}

// resolvedConfigPath is where `models use` persists the selection
func resolvedConfigPath(paths internal.DataPaths) string {
	if configPath != "" {
		return configPath
	}
	return paths.ConfigPath()
}

// openApp loads config and restores the session store
func openApp() (*app, error) {
	paths, cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	dbPath := paths.DatabasePath()
	db, err := internal.OpenDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session storage: %w", err)
	}
	internal.LogDebug("Session storage: %s", dbPath)

	store := internal.NewStore(internal.NewPersistence(internal.NewSQLiteSlot(db, dbPath)))
	store.Initialize()

	return &app{
		paths:  paths,
		cfg:    cfg,
		db:     db,
		store:  store,
		client: cfg.NewClient(),
	}, nil
}

// orchestrator builds an orchestrator reporting toasts to n
func (a *app) orchestrator(n notify.Notifier) *internal.Orchestrator {
	return internal.NewOrchestrator(a.store, a.client, n,
		internal.WithSelection(a.cfg.Selection()),
		internal.WithEmbeddingProvider(a.cfg.EmbeddingProvider),
	)
}

// Close flushes the store and releases the database
func (a *app) Close() {
	a.store.Shutdown()
	if err := a.db.Close(); err != nil {
		internal.LogWarn("Failed to close session storage: %v", err)
	}
}
