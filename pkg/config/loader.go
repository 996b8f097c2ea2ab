package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Keys shared by the viper instance and the CLI flags bound to it.
const (
	KeyBackend           = "backend"
	KeyProfile           = "profile"
	KeyRequestTimeout    = "request-timeout"
	KeyLogLevel          = "log-level"
	KeyVerbose           = "verbose"
	KeyNoColor           = "no-color"
	KeySuperagentAPIKey  = "superagent-api-key"
	KeySuperagentBaseURL = "superagent-base-url"
	KeyProviderAPIKey    = "openai-api-key"
	KeyProviderBaseURL   = "openai-base-url"
	KeyAnthropicAPIKey   = "anthropic-api-key"
)

// NewViper returns a viper instance that reads SUPERAGENT_CHAT_* variables and
// the credential variables under their conventional names.
func NewViper() *viper.Viper {
	defaults := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix("SUPERAGENT_CHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv(KeySuperagentAPIKey, "SUPERAGENT_API_KEY")
	_ = v.BindEnv(KeySuperagentBaseURL, "SUPERAGENT_BASE_URL")
	_ = v.BindEnv(KeyProviderAPIKey, "OPENAI_API_KEY")
	_ = v.BindEnv(KeyProviderBaseURL, "OPENAI_BASE_URL")
	_ = v.BindEnv(KeyAnthropicAPIKey, "ANTHROPIC_API_KEY")

	v.SetDefault(KeyBackend, defaults.Backend)
	v.SetDefault(KeyLogLevel, defaults.LogLevel)
	v.SetDefault(KeySuperagentBaseURL, defaults.SuperagentBaseURL)
	return v
}

// Load builds a normalized Config from v.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = NewViper()
	}

	cfg := Normalize(Config{
		Backend:           v.GetString(KeyBackend),
		ProfilePath:       v.GetString(KeyProfile),
		RequestTimeout:    v.GetDuration(KeyRequestTimeout),
		LogLevel:          v.GetString(KeyLogLevel),
		Verbose:           v.GetBool(KeyVerbose),
		NoColor:           v.GetBool(KeyNoColor),
		SuperagentAPIKey:  v.GetString(KeySuperagentAPIKey),
		SuperagentBaseURL: v.GetString(KeySuperagentBaseURL),
		ProviderAPIKey:    v.GetString(KeyProviderAPIKey),
		ProviderBaseURL:   v.GetString(KeyProviderBaseURL),
		AnthropicAPIKey:   v.GetString(KeyAnthropicAPIKey),
	})

	switch cfg.Backend {
	case BackendSuperagent, BackendDirect:
	default:
		return Config{}, fmt.Errorf("unknown backend %q (want %s or %s)", cfg.Backend, BackendSuperagent, BackendDirect)
	}
	return cfg, nil
}
