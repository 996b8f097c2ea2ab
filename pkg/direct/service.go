// Package direct is an in-process stand-in for the hosted agent service.
//
// Resources live in memory for the lifetime of the process and invocations go
// straight to the bound model provider. Tools are described to the model but
// never executed.
package direct

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	loggerpkg "github.com/minhyannv/superagent-chat-go/pkg/logger"
	"github.com/minhyannv/superagent-chat-go/pkg/remote"
)

var (
	// ErrNotFound is returned for unknown resource ids.
	ErrNotFound = errors.New("resource not found")
	// ErrAgentNotReady is returned when an agent lacks an LLM or a tool.
	ErrAgentNotReady = errors.New("agent needs one llm and at least one tool before it can be invoked")
	// ErrAgentInactive is returned when invoking an agent created inactive.
	ErrAgentInactive = errors.New("agent is not active")
)

type agentRecord struct {
	spec    remote.AgentSpec
	llmID   string
	toolIDs []string
}

// Service implements remote.Service in memory.
type Service struct {
	mu      sync.Mutex
	llms    map[string]remote.LLMSpec
	agents  map[string]*agentRecord
	tools   map[string]remote.ToolSpec
	clients map[string]Completer
	history map[string][]Message

	newCompleter CompleterFactory
	baseURL      string
	timeout      time.Duration
	newID        func() string
	logger       loggerpkg.Logger
	verbose      bool
}

// Option configures a Service.
type Option func(*Service)

// WithCompleterFactory replaces the SDK-backed provider factory.
func WithCompleterFactory(f CompleterFactory) Option {
	return func(s *Service) {
		if f != nil {
			s.newCompleter = f
		}
	}
}

// WithProviderBaseURL points provider clients at a different endpoint.
func WithProviderBaseURL(baseURL string) Option {
	return func(s *Service) {
		s.baseURL = strings.TrimSpace(baseURL)
	}
}

// WithRequestTimeout bounds each provider request. Zero keeps requests unbounded.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithIDGenerator replaces uuid-based ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger injects a logger; verbose enables debug logs.
func WithLogger(l loggerpkg.Logger, verbose bool) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
		s.verbose = verbose
	}
}

// New returns an empty Service.
func New(opts ...Option) *Service {
	s := &Service{
		llms:         make(map[string]remote.LLMSpec),
		agents:       make(map[string]*agentRecord),
		tools:        make(map[string]remote.ToolSpec),
		clients:      make(map[string]Completer),
		history:      make(map[string][]Message),
		newCompleter: NewCompleter,
		newID:        func() string { return uuid.NewString() },
		logger:       loggerpkg.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Create implements remote.Service.
func (s *Service) Create(_ context.Context, spec remote.Spec) (remote.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	switch v := spec.(type) {
	case remote.LLMSpec:
		if _, err := s.newCompleterLocked(id, v); err != nil {
			return remote.Resource{}, fmt.Errorf("create llm: %w", err)
		}
		s.llms[id] = v
	case remote.AgentSpec:
		if strings.TrimSpace(v.Name) == "" {
			return remote.Resource{}, errors.New("create agent: name is required")
		}
		s.agents[id] = &agentRecord{spec: v}
	case remote.ToolSpec:
		if strings.TrimSpace(v.Name) == "" {
			return remote.Resource{}, errors.New("create tool: name is required")
		}
		s.tools[id] = v
	default:
		return remote.Resource{}, fmt.Errorf("unsupported spec %T", spec)
	}

	loggerpkg.Debug(s.verbose, s.logger, "direct resource created", map[string]any{
		"kind": string(spec.Kind()),
		"id":   id,
	})
	return remote.Resource{ID: id, Kind: spec.Kind()}, nil
}

// Associate implements remote.Service. Associating an LLM replaces any
// previous binding; tools accumulate.
func (s *Service) Associate(_ context.Context, agentID string, kind remote.Kind, resourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	agent, ok := s.agents[agentID]
	if !ok {
		return fmt.Errorf("agent %s: %w", agentID, ErrNotFound)
	}
	switch kind {
	case remote.KindLLM:
		if _, ok := s.llms[resourceID]; !ok {
			return fmt.Errorf("llm %s: %w", resourceID, ErrNotFound)
		}
		agent.llmID = resourceID
	case remote.KindTool:
		if _, ok := s.tools[resourceID]; !ok {
			return fmt.Errorf("tool %s: %w", resourceID, ErrNotFound)
		}
		for _, id := range agent.toolIDs {
			if id == resourceID {
				return nil
			}
		}
		agent.toolIDs = append(agent.toolIDs, resourceID)
	default:
		return fmt.Errorf("cannot associate %q with an agent", kind)
	}
	return nil
}

// Invoke implements remote.Service. Conversation history is kept per agent
// and session id; a failed call leaves the history untouched.
func (s *Service) Invoke(ctx context.Context, agentID string, req remote.InvokeRequest) (remote.InvokeResult, error) {
	s.mu.Lock()
	agent, ok := s.agents[agentID]
	if !ok {
		s.mu.Unlock()
		return remote.InvokeResult{}, fmt.Errorf("agent %s: %w", agentID, ErrNotFound)
	}
	if !agent.spec.IsActive {
		s.mu.Unlock()
		return remote.InvokeResult{}, ErrAgentInactive
	}
	if agent.llmID == "" || len(agent.toolIDs) == 0 {
		s.mu.Unlock()
		return remote.InvokeResult{}, ErrAgentNotReady
	}

	completer := s.clients[agent.llmID]
	tools := make([]remote.ToolSpec, 0, len(agent.toolIDs))
	for _, id := range agent.toolIDs {
		tools = append(tools, s.tools[id])
	}
	key := historyKey(agentID, req.SessionID)
	messages := append(append([]Message{}, s.history[key]...), Message{Role: RoleUser, Content: req.Input})
	completionReq := CompletionRequest{
		Model:    agent.spec.LLMModel,
		System:   BuildSystemPrompt(agent.spec, tools),
		Messages: messages,
	}
	s.mu.Unlock()

	loggerpkg.Debug(s.verbose, s.logger, "direct invoke", map[string]any{
		"agent_id": agentID,
		"model":    completionReq.Model,
		"messages": len(messages),
	})
	output, err := completer.Complete(ctx, completionReq)
	if err != nil {
		return remote.InvokeResult{}, err
	}

	s.mu.Lock()
	s.history[key] = append(messages, Message{Role: RoleAssistant, Content: output})
	s.mu.Unlock()
	return remote.InvokeResult{Output: output}, nil
}

func (s *Service) newCompleterLocked(llmID string, spec remote.LLMSpec) (Completer, error) {
	c, err := s.newCompleter(spec.Provider, ClientOptions{
		APIKey:  spec.APIKey,
		BaseURL: s.baseURL,
		Timeout: s.timeout,
	})
	if err != nil {
		return nil, err
	}
	s.clients[llmID] = c
	return c, nil
}

func historyKey(agentID, sessionID string) string {
	return agentID + "/" + sessionID
}
