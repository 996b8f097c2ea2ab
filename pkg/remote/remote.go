// Package remote defines the contract of the hosted agent service the client talks to.
package remote

import "context"

// Kind identifies a remote resource type.
type Kind string

const (
	KindLLM   Kind = "llm"
	KindAgent Kind = "agent"
	KindTool  Kind = "tool"
)

// Spec describes a resource to create.
type Spec interface {
	Kind() Kind
}

// LLMSpec binds a model provider and its credential.
type LLMSpec struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey"`
}

// Kind implements Spec.
func (LLMSpec) Kind() Kind { return KindLLM }

// AgentSpec describes an agent record.
type AgentSpec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
	Prompt      string `json:"prompt"`
	LLMModel    string `json:"llmModel"`
}

// Kind implements Spec.
func (AgentSpec) Kind() Kind { return KindAgent }

// ToolSpec describes a tool an agent may use.
type ToolSpec struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Type         string         `json:"type"`
	ReturnDirect bool           `json:"returnDirect"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Kind implements Spec.
func (ToolSpec) Kind() Kind { return KindTool }

// Resource is the service-side record returned by Create.
type Resource struct {
	ID   string
	Kind Kind
}

// InvokeRequest is one text input for an agent.
type InvokeRequest struct {
	Input           string
	EnableStreaming bool
	SessionID       string
}

// InvokeResult is the agent's reply.
type InvokeResult struct {
	Output string
}

// Service is the hosted agent API.
//
// Implementations must be safe to construct once and share between the
// bootstrapper and the session loop.
type Service interface {
	Create(ctx context.Context, spec Spec) (Resource, error)
	Associate(ctx context.Context, agentID string, kind Kind, resourceID string) error
	Invoke(ctx context.Context, agentID string, req InvokeRequest) (InvokeResult, error)
}
