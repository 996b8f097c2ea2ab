package direct

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/minhyannv/superagent-chat-go/pkg/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	requests []CompletionRequest
	reply    func(req CompletionRequest) (string, error)
}

func (f *fakeCompleter) Complete(_ context.Context, req CompletionRequest) (string, error) {
	f.requests = append(f.requests, req)
	if f.reply != nil {
		return f.reply(req)
	}
	return "reply " + req.Messages[len(req.Messages)-1].Content, nil
}

func newTestService(t *testing.T, fc *fakeCompleter) *Service {
	t.Helper()
	n := 0
	return New(
		WithCompleterFactory(func(provider string, _ ClientOptions) (Completer, error) {
			if provider == "BROKEN" {
				return nil, errors.New("unsupported provider")
			}
			return fc, nil
		}),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id%d", n)
		}),
	)
}

func provision(t *testing.T, s *Service) string {
	t.Helper()
	ctx := context.Background()
	llm, err := s.Create(ctx, remote.LLMSpec{Provider: ProviderOpenAI, APIKey: "k"})
	require.NoError(t, err)
	agent, err := s.Create(ctx, remote.AgentSpec{Name: "Researcher", IsActive: true, Prompt: "Be helpful.", LLMModel: "GPT_3_5_TURBO_16K_0613"})
	require.NoError(t, err)
	tool, err := s.Create(ctx, remote.ToolSpec{Name: "Browser", Type: "BROWSER", Description: "Fetch web pages."})
	require.NoError(t, err)
	require.NoError(t, s.Associate(ctx, agent.ID, remote.KindLLM, llm.ID))
	require.NoError(t, s.Associate(ctx, agent.ID, remote.KindTool, tool.ID))
	return agent.ID
}

func TestCreateAssignsIDsAndKinds(t *testing.T) {
	s := New(WithCompleterFactory(func(string, ClientOptions) (Completer, error) { return &fakeCompleter{}, nil }))
	ctx := context.Background()

	a, err := s.Create(ctx, remote.LLMSpec{Provider: ProviderOpenAI})
	require.NoError(t, err)
	b, err := s.Create(ctx, remote.ToolSpec{Name: "Browser"})
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, remote.KindLLM, a.Kind)
	assert.Equal(t, remote.KindTool, b.Kind)
}

func TestCreateRejectsUnknownProvider(t *testing.T) {
	s := newTestService(t, &fakeCompleter{})
	_, err := s.Create(context.Background(), remote.LLMSpec{Provider: "BROKEN"})
	assert.Error(t, err)
}

func TestCreateRequiresNames(t *testing.T) {
	s := newTestService(t, &fakeCompleter{})
	_, err := s.Create(context.Background(), remote.AgentSpec{})
	assert.Error(t, err)
	_, err = s.Create(context.Background(), remote.ToolSpec{})
	assert.Error(t, err)
}

func TestAssociateUnknownIDs(t *testing.T) {
	s := newTestService(t, &fakeCompleter{})
	ctx := context.Background()

	err := s.Associate(ctx, "missing", remote.KindLLM, "x")
	assert.ErrorIs(t, err, ErrNotFound)

	agent, err := s.Create(ctx, remote.AgentSpec{Name: "a", IsActive: true})
	require.NoError(t, err)
	assert.ErrorIs(t, s.Associate(ctx, agent.ID, remote.KindLLM, "nope"), ErrNotFound)
	assert.ErrorIs(t, s.Associate(ctx, agent.ID, remote.KindTool, "nope"), ErrNotFound)
	assert.Error(t, s.Associate(ctx, agent.ID, remote.KindAgent, agent.ID))
}

func TestInvokeRequiresWiredAgent(t *testing.T) {
	fc := &fakeCompleter{}
	s := newTestService(t, fc)
	ctx := context.Background()

	llm, _ := s.Create(ctx, remote.LLMSpec{Provider: ProviderOpenAI})
	agent, _ := s.Create(ctx, remote.AgentSpec{Name: "a", IsActive: true})

	_, err := s.Invoke(ctx, agent.ID, remote.InvokeRequest{Input: "hi"})
	assert.ErrorIs(t, err, ErrAgentNotReady)

	require.NoError(t, s.Associate(ctx, agent.ID, remote.KindLLM, llm.ID))
	_, err = s.Invoke(ctx, agent.ID, remote.InvokeRequest{Input: "hi"})
	assert.ErrorIs(t, err, ErrAgentNotReady, "an llm alone is not enough")

	_, err = s.Invoke(ctx, "missing", remote.InvokeRequest{Input: "hi"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, fc.requests)
}

func TestInvokeRejectsInactiveAgent(t *testing.T) {
	s := newTestService(t, &fakeCompleter{})
	ctx := context.Background()
	agent, _ := s.Create(ctx, remote.AgentSpec{Name: "a", IsActive: false})

	_, err := s.Invoke(ctx, agent.ID, remote.InvokeRequest{Input: "hi"})
	assert.ErrorIs(t, err, ErrAgentInactive)
}

func TestInvokeBuildsPromptAndKeepsHistory(t *testing.T) {
	fc := &fakeCompleter{}
	s := newTestService(t, fc)
	agentID := provision(t, s)
	ctx := context.Background()

	res, err := s.Invoke(ctx, agentID, remote.InvokeRequest{Input: "first"})
	require.NoError(t, err)
	assert.Equal(t, "reply first", res.Output)

	_, err = s.Invoke(ctx, agentID, remote.InvokeRequest{Input: "second"})
	require.NoError(t, err)

	require.Len(t, fc.requests, 2)
	req := fc.requests[1]
	assert.Equal(t, "GPT_3_5_TURBO_16K_0613", req.Model)
	assert.Contains(t, req.System, "Be helpful.")
	assert.Contains(t, req.System, "**Browser** (BROWSER): Fetch web pages.")
	assert.Equal(t, []Message{
		{Role: RoleUser, Content: "first"},
		{Role: RoleAssistant, Content: "reply first"},
		{Role: RoleUser, Content: "second"},
	}, req.Messages)
}

func TestInvokeFailureLeavesHistory(t *testing.T) {
	calls := 0
	fc := &fakeCompleter{reply: func(req CompletionRequest) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("rate limited")
		}
		return "ok", nil
	}}
	s := newTestService(t, fc)
	agentID := provision(t, s)
	ctx := context.Background()

	_, err := s.Invoke(ctx, agentID, remote.InvokeRequest{Input: "lost"})
	require.EqualError(t, err, "rate limited")

	_, err = s.Invoke(ctx, agentID, remote.InvokeRequest{Input: "kept"})
	require.NoError(t, err)
	assert.Equal(t, []Message{{Role: RoleUser, Content: "kept"}}, fc.requests[1].Messages)
}

func TestHistoryIsPerSession(t *testing.T) {
	fc := &fakeCompleter{}
	s := newTestService(t, fc)
	agentID := provision(t, s)
	ctx := context.Background()

	_, _ = s.Invoke(ctx, agentID, remote.InvokeRequest{Input: "a", SessionID: "s1"})
	_, _ = s.Invoke(ctx, agentID, remote.InvokeRequest{Input: "b", SessionID: "s2"})
	assert.Len(t, fc.requests[1].Messages, 1)

	_, _ = s.Invoke(ctx, agentID, remote.InvokeRequest{Input: "c", SessionID: "s1"})
	assert.Len(t, fc.requests[2].Messages, 3)
}

func TestAssociateToolIsIdempotent(t *testing.T) {
	fc := &fakeCompleter{}
	s := newTestService(t, fc)
	agentID := provision(t, s)
	ctx := context.Background()

	// id3 is the tool created by provision
	require.NoError(t, s.Associate(ctx, agentID, remote.KindTool, "id3"))
	_, err := s.Invoke(ctx, agentID, remote.InvokeRequest{Input: "x"})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(fc.requests[0].System, "**Browser**"))
}

func TestBuildSystemPromptWithoutTools(t *testing.T) {
	got := BuildSystemPrompt(remote.AgentSpec{Prompt: "  Only this.  "}, nil)
	assert.Equal(t, "Only this.", got)
}

func TestOpenAIModelName(t *testing.T) {
	assert.Equal(t, "gpt-3.5-turbo-16k-0613", openAIModelName("GPT_3_5_TURBO_16K_0613"))
	assert.Equal(t, "gpt-4-1106-preview", openAIModelName("GPT_4_1106_PREVIEW"))
	assert.Equal(t, "gpt-4o-mini", openAIModelName("gpt-4o-mini"))
	assert.Equal(t, "", openAIModelName(" "))
}

func TestNewCompleterProviders(t *testing.T) {
	c, err := NewCompleter("openai", ClientOptions{APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &openAICompleter{}, c)

	c, err = NewCompleter("ANTHROPIC", ClientOptions{APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &anthropicCompleter{}, c)

	_, err = NewCompleter("COHERE", ClientOptions{APIKey: "k"})
	assert.Error(t, err)
}

func TestCreatePassesClientOptions(t *testing.T) {
	var got ClientOptions
	s := New(
		WithProviderBaseURL(" http://llm.local/v1 "),
		WithRequestTimeout(5*time.Second),
		WithCompleterFactory(func(_ string, opts ClientOptions) (Completer, error) {
			got = opts
			return &fakeCompleter{}, nil
		}),
	)

	_, err := s.Create(context.Background(), remote.LLMSpec{Provider: ProviderOpenAI, APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, ClientOptions{APIKey: "k", BaseURL: "http://llm.local/v1", Timeout: 5 * time.Second}, got)
}
