// Package config loads runtime configuration from defaults, an optional TOML
// file and AGENTCORE_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// AGENTCORE_PROVIDERS_OPENAI_KEY maps to providers.openai_key.
const EnvPrefix = "AGENTCORE_"

// Providers holds model provider credentials and model ids.
type Providers struct {
	OpenAIKey      string `koanf:"openai_key"`
	OpenAIModel    string `koanf:"openai_model"`
	AnthropicKey   string `koanf:"anthropic_key"`
	AnthropicModel string `koanf:"anthropic_model"`
}

// Search holds web search credentials.
type Search struct {
	BraveKey string `koanf:"brave_key"`
}

// Notify holds outbound transport credentials.
type Notify struct {
	ResendKey     string `koanf:"resend_key"`
	FromEmail     string `koanf:"from_email"`
	FromName      string `koanf:"from_name"`
	TelegramToken string `koanf:"telegram_token"`
	// LeadInbox receives the enrichment pipeline's lead notifications.
	LeadInbox string `koanf:"lead_inbox"`
}

// Store holds the record store endpoint.
type Store struct {
	URL        string `koanf:"url"`
	ServiceKey string `koanf:"service_key"`
}

// Assistant tunes the conversation state machine.
type Assistant struct {
	MaxIterations int           `koanf:"max_iterations"`
	HistoryLimit  int           `koanf:"history_limit"`
	ModelTimeout  time.Duration `koanf:"model_timeout"`
}

// Budgets holds the timeout budget tree for the enrichment pipeline.
type Budgets struct {
	Total       time.Duration `koanf:"total"`
	Prospecting time.Duration `koanf:"prospecting"`
	Search      time.Duration `koanf:"search"`
	Extraction  time.Duration `koanf:"extraction"`
	Generation  time.Duration `koanf:"generation"`
}

// Dispatch tunes the background dispatcher.
type Dispatch struct {
	QueueSize int `koanf:"queue_size"`
	Workers   int `koanf:"workers"`
}

// Config is the root configuration.
type Config struct {
	LogLevel  string    `koanf:"log_level"`
	LogFormat string    `koanf:"log_format"`
	Providers Providers `koanf:"providers"`
	Search    Search    `koanf:"search"`
	Notify    Notify    `koanf:"notify"`
	Store     Store     `koanf:"store"`
	Assistant Assistant `koanf:"assistant"`
	Budgets   Budgets   `koanf:"budgets"`
	Dispatch  Dispatch  `koanf:"dispatch"`
}

func defaults() map[string]any {
	return map[string]any{
		"log_level":                "info",
		"log_format":               "json",
		"providers.openai_model":   "gpt-4o-mini",
		"providers.anthropic_model": "claude-3-5-sonnet-20241022",
		"notify.from_name":         "Nementium",
		"assistant.max_iterations": 5,
		"assistant.history_limit":  10,
		"assistant.model_timeout":  "45s",
		"budgets.total":            "120s",
		"budgets.prospecting":      "60s",
		"budgets.search":           "15s",
		"budgets.extraction":       "20s",
		"budgets.generation":       "30s",
		"dispatch.queue_size":      64,
		"dispatch.workers":         2,
	}
}

// Load builds a Config. path may be empty to skip the file layer.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		// Single underscore nests one level; key names keep their own
		// underscores, so only the first segment separator is replaced.
		return strings.Replace(s, "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// Validate checks invariants that would otherwise surface as confusing
// runtime failures.
func (c *Config) Validate() error {
	if c.Assistant.MaxIterations <= 0 {
		return fmt.Errorf("assistant.max_iterations must be positive")
	}
	if c.Assistant.HistoryLimit <= 0 {
		return fmt.Errorf("assistant.history_limit must be positive")
	}
	for name, d := range map[string]time.Duration{
		"assistant.model_timeout": c.Assistant.ModelTimeout,
		"budgets.total":           c.Budgets.Total,
		"budgets.prospecting":     c.Budgets.Prospecting,
		"budgets.search":          c.Budgets.Search,
		"budgets.extraction":      c.Budgets.Extraction,
		"budgets.generation":      c.Budgets.Generation,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be a positive duration", name)
		}
	}
	if c.Budgets.Prospecting > c.Budgets.Total {
		return fmt.Errorf("budgets.prospecting exceeds budgets.total")
	}
	if c.Budgets.Search > c.Budgets.Prospecting {
		return fmt.Errorf("budgets.search exceeds budgets.prospecting")
	}
	if c.Dispatch.QueueSize <= 0 || c.Dispatch.Workers <= 0 {
		return fmt.Errorf("dispatch.queue_size and dispatch.workers must be positive")
	}
	return nil
}
