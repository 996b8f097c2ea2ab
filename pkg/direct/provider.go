package direct

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	ProviderOpenAI    = "OPENAI"
	ProviderAnthropic = "ANTHROPIC"
)

// Role is a chat message role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one provider-agnostic chat message.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is a single non-streaming completion.
type CompletionRequest struct {
	Model    string
	System   string
	Messages []Message
}

// Completer produces one assistant reply.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ClientOptions configures a provider SDK client.
type ClientOptions struct {
	APIKey  string
	BaseURL string
	// Timeout bounds each request; zero leaves requests unbounded.
	Timeout time.Duration
}

// CompleterFactory builds a Completer for an LLM binding.
type CompleterFactory func(provider string, opts ClientOptions) (Completer, error)

// NewCompleter is the default factory backed by the provider SDKs.
// Provider clients never retry.
func NewCompleter(provider string, opts ClientOptions) (Completer, error) {
	switch strings.ToUpper(strings.TrimSpace(provider)) {
	case ProviderOpenAI:
		return newOpenAICompleter(opts), nil
	case ProviderAnthropic:
		return newAnthropicCompleter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", provider)
	}
}

// openAIModelName maps an enum-style model name such as
// GPT_3_5_TURBO_16K_0613 to the API id gpt-3.5-turbo-16k-0613.
// Names that already look like API ids are returned unchanged.
func openAIModelName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.ToUpper(name) != name {
		return name
	}
	id := strings.ReplaceAll(strings.ToLower(name), "_", "-")
	return strings.Replace(id, "gpt-3-5", "gpt-3.5", 1)
}
