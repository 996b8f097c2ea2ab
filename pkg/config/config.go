package config

import (
	"strings"
	"time"
)

const (
	BackendSuperagent = "superagent"
	BackendDirect     = "direct"

	DefaultSuperagentBaseURL = "https://api.beta.superagent.sh"
)

// Config holds all runtime configuration for the chat client.
type Config struct {
	Backend        string
	ProfilePath    string
	RequestTimeout time.Duration
	LogLevel       string
	Verbose        bool
	NoColor        bool

	SuperagentAPIKey  string
	SuperagentBaseURL string

	// ProviderAPIKey is forwarded to the LLM binding; it is never used locally
	// by the superagent backend.
	ProviderAPIKey  string
	ProviderBaseURL string

	AnthropicAPIKey string
}

// ProviderKey returns the credential to forward for an LLM provider.
func (c Config) ProviderKey(provider string) string {
	if strings.EqualFold(provider, "ANTHROPIC") && c.AnthropicAPIKey != "" {
		return c.AnthropicAPIKey
	}
	return c.ProviderAPIKey
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	return Config{
		Backend:           BackendSuperagent,
		LogLevel:          "warn",
		SuperagentBaseURL: DefaultSuperagentBaseURL,
	}
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(cfg Config) Config {
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.ProfilePath = strings.TrimSpace(cfg.ProfilePath)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.SuperagentAPIKey = strings.TrimSpace(cfg.SuperagentAPIKey)
	cfg.SuperagentBaseURL = strings.TrimRight(strings.TrimSpace(cfg.SuperagentBaseURL), "/")
	cfg.ProviderAPIKey = strings.TrimSpace(cfg.ProviderAPIKey)
	cfg.ProviderBaseURL = strings.TrimSpace(cfg.ProviderBaseURL)
	cfg.AnthropicAPIKey = strings.TrimSpace(cfg.AnthropicAPIKey)

	if cfg.Backend == "" {
		cfg.Backend = BackendSuperagent
	}
	if cfg.SuperagentBaseURL == "" {
		cfg.SuperagentBaseURL = DefaultSuperagentBaseURL
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}
	if cfg.RequestTimeout < 0 {
		cfg.RequestTimeout = 0
	}
	return cfg
}
