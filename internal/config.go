package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iksnae/research-chat/internal/transport"
)

// Environment variables overriding the config file
const (
	EnvBackendURL        = "RESEARCH_CHAT_BACKEND_URL"
	EnvDataDir           = "RESEARCH_CHAT_DATA_DIR"
	EnvProvider          = "RESEARCH_CHAT_PROVIDER"
	EnvModel             = "RESEARCH_CHAT_MODEL"
	EnvEmbeddingProvider = "RESEARCH_CHAT_EMBEDDING_PROVIDER"
)

// DefaultBackendURL is used when nothing else is configured
const DefaultBackendURL = "http://localhost:8000"

// Config is the client configuration
type Config struct {
	BackendURL        string        `yaml:"backend_url"`
	Provider          string        `yaml:"provider"`
	Model             string        `yaml:"model"`
	EmbeddingProvider string        `yaml:"embedding_provider"`
	QueryTimeout      time.Duration `yaml:"query_timeout"`
	UploadTimeout     time.Duration `yaml:"upload_timeout"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		BackendURL:        DefaultBackendURL,
		Provider:          DefaultProvider,
		Model:             DefaultModel,
		EmbeddingProvider: transport.DefaultEmbeddingProvider,
		QueryTimeout:      transport.DefaultQueryTimeout,
		UploadTimeout:     transport.DefaultUploadTimeout,
	}
}

// LoadConfig reads the YAML file at path over the defaults. A missing file is
// not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		LogDebug("No config file at %s, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, &ParseError{Source: "config", Key: path, Err: err}
	}
	cfg.merge(file)
	return cfg, nil
}

// SaveConfig writes cfg as YAML
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) merge(o Config) {
	if o.BackendURL != "" {
		c.BackendURL = o.BackendURL
	}
	if o.Provider != "" {
		c.SetProvider(o.Provider)
	}
	if o.Model != "" {
		c.Model = o.Model
	}
	if o.EmbeddingProvider != "" {
		c.EmbeddingProvider = o.EmbeddingProvider
	}
	if o.QueryTimeout > 0 {
		c.QueryTimeout = o.QueryTimeout
	}
	if o.UploadTimeout > 0 {
		c.UploadTimeout = o.UploadTimeout
	}
}

// ApplyEnv overlays environment variables looked up with getenv
func (c *Config) ApplyEnv(getenv func(string) string) {
	c.merge(Config{
		BackendURL:        getenv(EnvBackendURL),
		Provider:          getenv(EnvProvider),
		Model:             getenv(EnvModel),
		EmbeddingProvider: getenv(EnvEmbeddingProvider),
	})
}

// SetProvider changes provider and resets the model to the provider's first
// one. Unknown providers are kept as-is for Validate to report.
func (c *Config) SetProvider(id string) {
	sel, err := c.Selection().WithProvider(id)
	if err != nil {
		c.Provider = id
		return
	}
	c.Provider, c.Model = sel.Provider, sel.Model
}

// Selection returns the configured provider/model pair
func (c Config) Selection() Selection {
	return Selection{Provider: c.Provider, Model: c.Model}
}

// Validate checks the configuration for usable values
func (c Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid backend URL %q: must be an http(s) URL", c.BackendURL)
	}
	if err := c.Selection().Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.EmbeddingProvider) == "" {
		return fmt.Errorf("embedding provider must not be empty")
	}
	if c.QueryTimeout <= 0 || c.UploadTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}

// NewClient builds the backend client described by the config
func (c Config) NewClient() *transport.Client {
	return transport.New(c.BackendURL,
		transport.WithQueryTimeout(c.QueryTimeout),
		transport.WithUploadTimeout(c.UploadTimeout),
	)
}
