// Package superagent is a JSON-over-HTTP client for the Superagent agent API.
package superagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	loggerpkg "github.com/minhyannv/superagent-chat-go/pkg/logger"
	"github.com/minhyannv/superagent-chat-go/pkg/remote"
)

// DefaultBaseURL is the hosted beta API.
const DefaultBaseURL = "https://api.beta.superagent.sh"

const apiPrefix = "/api/v1"

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("superagent API error (%d) %s %s: %s", e.StatusCode, e.Method, e.Path, body)
}

// Client implements remote.Service.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	timeout time.Duration
	logger  loggerpkg.Logger
	verbose bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request. Zero keeps requests unbounded. A client
// passed to WithHTTPClient is copied, never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger injects a logger; verbose enables per-request debug logs.
func WithLogger(l loggerpkg.Logger, verbose bool) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
		c.verbose = verbose
	}
}

// New returns a client for baseURL authenticated with token. An empty token is
// sent as-is and rejected by the server.
func New(baseURL, token string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{},
		logger:  loggerpkg.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// envelope is the response wrapper used by every endpoint.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

type createdResource struct {
	ID string `json:"id"`
}

// Create implements remote.Service.
func (c *Client) Create(ctx context.Context, spec remote.Spec) (remote.Resource, error) {
	if spec == nil {
		return remote.Resource{}, fmt.Errorf("create: spec is required")
	}
	path, err := createPath(spec.Kind())
	if err != nil {
		return remote.Resource{}, err
	}

	var out createdResource
	if err := c.do(ctx, http.MethodPost, path, spec, &out); err != nil {
		return remote.Resource{}, fmt.Errorf("create %s: %w", spec.Kind(), err)
	}
	if out.ID == "" {
		return remote.Resource{}, fmt.Errorf("create %s: response has no id", spec.Kind())
	}
	return remote.Resource{ID: out.ID, Kind: spec.Kind()}, nil
}

func createPath(kind remote.Kind) (string, error) {
	switch kind {
	case remote.KindLLM:
		return apiPrefix + "/llms", nil
	case remote.KindAgent:
		return apiPrefix + "/agents", nil
	case remote.KindTool:
		return apiPrefix + "/tools", nil
	default:
		return "", fmt.Errorf("unsupported resource kind %q", kind)
	}
}

// Associate implements remote.Service.
func (c *Client) Associate(ctx context.Context, agentID string, kind remote.Kind, resourceID string) error {
	var (
		path string
		body any
	)
	agentPath := apiPrefix + "/agents/" + url.PathEscape(agentID)
	switch kind {
	case remote.KindLLM:
		path = agentPath + "/llms"
		body = map[string]string{"llmId": resourceID}
	case remote.KindTool:
		path = agentPath + "/tools"
		body = map[string]string{"toolId": resourceID}
	default:
		return fmt.Errorf("cannot associate %q with an agent", kind)
	}

	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("add %s to agent %s: %w", kind, agentID, err)
	}
	return nil
}

type invokeBody struct {
	Input           string `json:"input"`
	EnableStreaming bool   `json:"enableStreaming"`
	SessionID       string `json:"sessionId,omitempty"`
}

type invokeData struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Invoke implements remote.Service.
func (c *Client) Invoke(ctx context.Context, agentID string, req remote.InvokeRequest) (remote.InvokeResult, error) {
	path := apiPrefix + "/agents/" + url.PathEscape(agentID) + "/invoke"
	var out invokeData
	err := c.do(ctx, http.MethodPost, path, invokeBody{
		Input:           req.Input,
		EnableStreaming: req.EnableStreaming,
		SessionID:       req.SessionID,
	}, &out)
	if err != nil {
		return remote.InvokeResult{}, err
	}
	return remote.InvokeResult{Output: out.Output}, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	loggerpkg.Debug(c.verbose, c.logger, "superagent request", map[string]any{
		"method":      method,
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Method: method, Path: path, Body: string(body)}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if env.Success != nil && !*env.Success {
		return fmt.Errorf("request unsuccessful: %s", failureText(env))
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("response has no data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to parse response data: %w", err)
	}
	return nil
}

func failureText(env envelope) string {
	if env.Message != "" {
		return env.Message
	}
	if len(env.Error) > 0 {
		var s string
		if json.Unmarshal(env.Error, &s) == nil {
			return s
		}
		return string(env.Error)
	}
	return "no error detail"
}
