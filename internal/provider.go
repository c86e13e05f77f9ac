package internal

import (
	"fmt"
	"strings"
)

// Provider is an LLM vendor the backend can route queries to
type Provider struct {
	ID     string
	Name   string
	Models []string
}

// Providers is the catalog of selectable providers, in display order
var Providers = []Provider{
	{ID: "deepseek", Name: "DeepSeek", Models: []string{"deepseek-chat", "deepseek-coder"}},
	{ID: "openai", Name: "OpenAI", Models: []string{"gpt-4o", "gpt-4", "gpt-3.5-turbo"}},
	{ID: "anthropic", Name: "Anthropic", Models: []string{"claude-3-opus", "claude-3-sonnet"}},
	{ID: "gemini", Name: "Gemini", Models: []string{"gemini-2.0-flash", "gemini-2.0-pro"}},
}

const (
	DefaultProvider = "openai"
	DefaultModel    = "gpt-4o"
)

// LookupProvider finds a provider by id, case-insensitively
func LookupProvider(id string) (Provider, bool) {
	for _, p := range Providers {
		if strings.EqualFold(p.ID, id) {
			return p, true
		}
	}
	return Provider{}, false
}

// HasModel reports whether the provider offers model
func (p Provider) HasModel(model string) bool {
	for _, m := range p.Models {
		if m == model {
			return true
		}
	}
	return false
}

// DefaultModel is the model selected when the provider is chosen
func (p Provider) DefaultModel() string {
	if len(p.Models) == 0 {
		return ""
	}
	return p.Models[0]
}

// Selection is the provider/model pair queries are sent with
type Selection struct {
	Provider string
	Model    string
}

// DefaultSelection returns openai/gpt-4o
func DefaultSelection() Selection {
	return Selection{Provider: DefaultProvider, Model: DefaultModel}
}

// WithProvider switches provider and resets the model to the provider's first one
func (s Selection) WithProvider(id string) (Selection, error) {
	p, ok := LookupProvider(id)
	if !ok {
		return s, fmt.Errorf("unknown provider %q (available: %s)", id, providerIDs())
	}
	return Selection{Provider: p.ID, Model: p.DefaultModel()}, nil
}

// WithModel switches model within the current provider
func (s Selection) WithModel(model string) (Selection, error) {
	p, ok := LookupProvider(s.Provider)
	if !ok {
		return s, fmt.Errorf("unknown provider %q", s.Provider)
	}
	if !p.HasModel(model) {
		return s, fmt.Errorf("provider %s does not offer model %q (available: %s)", p.ID, model, strings.Join(p.Models, ", "))
	}
	return Selection{Provider: p.ID, Model: model}, nil
}

// Validate checks the pair against the catalog
func (s Selection) Validate() error {
	p, ok := LookupProvider(s.Provider)
	if !ok {
		return fmt.Errorf("unknown provider %q (available: %s)", s.Provider, providerIDs())
	}
	if !p.HasModel(s.Model) {
		return fmt.Errorf("provider %s does not offer model %q (available: %s)", p.ID, s.Model, strings.Join(p.Models, ", "))
	}
	return nil
}

func (s Selection) String() string {
	return s.Provider + "/" + s.Model
}

func providerIDs() string {
	ids := make([]string, 0, len(Providers))
	for _, p := range Providers {
		ids = append(ids, p.ID)
	}
	return strings.Join(ids, ", ")
}
