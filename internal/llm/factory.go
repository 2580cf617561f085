package llm

import (
	"fmt"
	"strings"
)

// FactoryConfig carries per-backend settings plus which backend serves as
// the general default and which one generates reports.
type FactoryConfig struct {
	Default   string // backend used when no model is named, e.g. "ChatGPT"
	Reporting string // backend used for report generation
	OpenAI    Config
	Anthropic Config
	Gemini    Config
}

// Factory constructs Clients by backend name.
type Factory struct {
	cfg FactoryConfig
}

// NewFactory creates a factory over the given backend configurations.
func NewFactory(cfg FactoryConfig) *Factory {
	if cfg.Default == "" {
		cfg.Default = "ChatGPT"
	}
	if cfg.Reporting == "" {
		cfg.Reporting = cfg.Default
	}
	return &Factory{cfg: cfg}
}

// Create builds the named backend. An empty name selects the configured
// default. Unknown names fail with an unsupported-model error.
func (f *Factory) Create(name string) (Client, error) {
	if name == "" {
		name = f.cfg.Default
	}

	var backend generator
	var err error
	switch strings.ToLower(name) {
	case "chatgpt", "openai":
		backend, err = newOpenAIBackend(f.cfg.OpenAI)
	case "claude", "anthropic":
		backend, err = newAnthropicBackend(f.cfg.Anthropic)
	case "gemini":
		backend, err = newGeminiBackend(f.cfg.Gemini)
	default:
		return nil, fmt.Errorf("unsupported LLM model: %s", name)
	}
	if err != nil {
		return nil, err
	}

	return newProvider(backend), nil
}

// CreateReporting builds the backend configured for report generation.
func (f *Factory) CreateReporting() (Client, error) {
	return f.Create(f.cfg.Reporting)
}
