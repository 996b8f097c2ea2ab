// Package bootstrap provisions the remote agent used by a chat session.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	loggerpkg "github.com/minhyannv/superagent-chat-go/pkg/logger"
	"github.com/minhyannv/superagent-chat-go/pkg/profile"
	"github.com/minhyannv/superagent-chat-go/pkg/remote"
)

// Step names a provisioning stage.
type Step string

const (
	StepCreateLLM   Step = "create llm"
	StepCreateAgent Step = "create agent"
	StepCreateTool  Step = "create tool"
	StepAddLLM      Step = "add llm to agent"
	StepAddTool     Step = "add tool to agent"
)

// ProvisioningError reports the step that aborted provisioning.
type ProvisioningError struct {
	Step Step
	Err  error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provision agent: %s: %v", e.Step, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

var errEmptyID = errors.New("service returned an empty id")

// Provisioner creates the LLM binding, agent and tool and wires them together.
// Earlier steps are not undone when a later step fails.
type Provisioner struct {
	service        remote.Service
	profile        profile.Profile
	providerAPIKey string
	logger         loggerpkg.Logger
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithProfile replaces the default agent profile.
func WithProfile(p profile.Profile) Option {
	return func(pr *Provisioner) {
		pr.profile = p
	}
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) Option {
	return func(pr *Provisioner) {
		if l != nil {
			pr.logger = l
		}
	}
}

// New returns a Provisioner that forwards providerAPIKey to the LLM binding.
func New(service remote.Service, providerAPIKey string, opts ...Option) *Provisioner {
	p := &Provisioner{
		service:        service,
		profile:        profile.Default(),
		providerAPIKey: providerAPIKey,
		logger:         loggerpkg.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// ProvisionAgent runs the create and associate calls in order and returns the
// agent id. Any failure is returned as a *ProvisioningError.
func (p *Provisioner) ProvisionAgent(ctx context.Context) (string, error) {
	if p.service == nil {
		return "", &ProvisioningError{Step: StepCreateLLM, Err: errors.New("remote service is required")}
	}

	llmID, err := p.create(ctx, StepCreateLLM, p.profile.LLMSpec(p.providerAPIKey))
	if err != nil {
		return "", err
	}
	agentID, err := p.create(ctx, StepCreateAgent, p.profile.AgentSpec())
	if err != nil {
		return "", err
	}
	toolID, err := p.create(ctx, StepCreateTool, p.profile.ToolSpec())
	if err != nil {
		return "", err
	}

	if err := p.associate(ctx, StepAddLLM, agentID, remote.KindLLM, llmID); err != nil {
		return "", err
	}
	if err := p.associate(ctx, StepAddTool, agentID, remote.KindTool, toolID); err != nil {
		return "", err
	}

	p.logger.Info("agent provisioned", map[string]any{
		"agent_id": agentID,
		"llm_id":   llmID,
		"tool_id":  toolID,
		"name":     p.profile.Name,
	})
	return agentID, nil
}

func (p *Provisioner) create(ctx context.Context, step Step, spec remote.Spec) (string, error) {
	p.logger.Debug("provision step", map[string]any{"step": string(step)})
	res, err := p.service.Create(ctx, spec)
	if err != nil {
		return "", &ProvisioningError{Step: step, Err: err}
	}
	if strings.TrimSpace(res.ID) == "" {
		return "", &ProvisioningError{Step: step, Err: errEmptyID}
	}
	return res.ID, nil
}

func (p *Provisioner) associate(ctx context.Context, step Step, agentID string, kind remote.Kind, id string) error {
	p.logger.Debug("provision step", map[string]any{"step": string(step), "agent_id": agentID, "resource_id": id})
	if err := p.service.Associate(ctx, agentID, kind, id); err != nil {
		return &ProvisioningError{Step: step, Err: err}
	}
	return nil
}
