package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAppliesDefaults(t *testing.T) {
	cfg := Normalize(Config{
		Backend:           "  Direct ",
		SuperagentBaseURL: "https://example.test/ ",
		RequestTimeout:    -time.Second,
	})

	assert.Equal(t, BackendDirect, cfg.Backend)
	assert.Equal(t, "https://example.test", cfg.SuperagentBaseURL)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Zero(t, cfg.RequestTimeout)
}

func TestNormalizeVerboseForcesDebug(t *testing.T) {
	cfg := Normalize(Config{LogLevel: "error", Verbose: true})
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadReadsCredentialEnv(t *testing.T) {
	t.Setenv("SUPERAGENT_API_KEY", " sa-key ")
	t.Setenv("OPENAI_API_KEY", "oa-key")
	t.Setenv("SUPERAGENT_CHAT_REQUEST_TIMEOUT", "30s")

	cfg, err := Load(NewViper())
	require.NoError(t, err)
	assert.Equal(t, "sa-key", cfg.SuperagentAPIKey)
	assert.Equal(t, "oa-key", cfg.ProviderAPIKey)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, BackendSuperagent, cfg.Backend)
	assert.Equal(t, DefaultSuperagentBaseURL, cfg.SuperagentBaseURL)
}

func TestLoadDoesNotRequireCredentials(t *testing.T) {
	t.Setenv("SUPERAGENT_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.SuperagentAPIKey)
	assert.Empty(t, cfg.ProviderAPIKey)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	v := NewViper()
	v.Set(KeyBackend, "carrier-pigeon")

	_, err := Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestProviderKey(t *testing.T) {
	cfg := Config{ProviderAPIKey: "oa", AnthropicAPIKey: "an"}
	assert.Equal(t, "oa", cfg.ProviderKey("OPENAI"))
	assert.Equal(t, "an", cfg.ProviderKey("anthropic"))

	cfg.AnthropicAPIKey = ""
	assert.Equal(t, "oa", cfg.ProviderKey("ANTHROPIC"))
}
