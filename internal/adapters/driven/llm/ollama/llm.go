// Package ollama provides a model client adapter using a local Ollama server.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.ModelClient = (*Client)(nil)

// Default configuration values.
const (
	DefaultModel     = "llama3.2"
	DefaultMaxTokens = domain.DefaultMaxTokens
	DefaultTimeout   = 120 * time.Second
)

// Config holds configuration for the Ollama model client.
type Config struct {
	// BaseURL is the Ollama API base URL. Empty uses OLLAMA_HOST or http://127.0.0.1:11434.
	BaseURL string

	// Model is the model to use (default: llama3.2). It must support tools.
	Model string

	// MaxTokens bounds each response (default: 800).
	MaxTokens int

	// Temperature is sent on every call.
	Temperature float64

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Client calls the Ollama chat endpoint with tool definitions.
type Client struct {
	api         *api.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewClient creates a new Ollama model client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	host, err := resolveHost(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		api:         api.NewClient(host, &http.Client{Timeout: cfg.Timeout}),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// resolveHost parses an explicit base URL, falling back to the environment.
func resolveHost(baseURL string) (*url.URL, error) {
	if baseURL == "" {
		return envconfig.Host(), nil
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("ollama: invalid base URL %q: %w", baseURL, err)
	}
	return u, nil
}

// Call sends one non-streaming chat request.
// Ollama does not assign tool call IDs, so IDs are generated per response.
func (c *Client) Call(ctx context.Context, req domain.ModelRequest) (*domain.ModelResponse, error) {
	tools, err := toAPITools(req.Tools)
	if err != nil {
		return nil, err
	}

	stream := false
	chatReq := &api.ChatRequest{
		Model:    c.model,
		Messages: toAPIMessages(req.System, req.Messages),
		Stream:   &stream,
		Tools:    tools,
		Options: map[string]any{
			"temperature": c.temperature,
			"num_predict": c.maxTokens,
		},
	}

	var text strings.Builder
	var calls []api.ToolCall
	err = c.api.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		text.WriteString(resp.Message.Content)
		calls = append(calls, resp.Message.ToolCalls...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama: chat: %w", err)
	}

	out := &domain.ModelResponse{StopReason: domain.StopComplete}
	if text.Len() > 0 {
		out.Content = append(out.Content, domain.TextBlock(text.String()))
	}
	for i, call := range calls {
		out.Content = append(out.Content, domain.ToolUseBlock(domain.ToolInvocation{
			ID:        fmt.Sprintf("call_%d", i),
			Name:      call.Function.Name,
			Arguments: map[string]any(call.Function.Arguments),
		}))
	}
	if len(calls) > 0 {
		out.StopReason = domain.StopToolUse
	}
	return out, nil
}

// toAPITools converts tool definitions through their JSON form, which
// matches the function-tool schema Ollama expects.
func toAPITools(defs []domain.ToolDefinition) (api.Tools, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	tools := make(api.Tools, 0, len(defs))
	for _, d := range defs {
		raw, err := json.Marshal(map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        d.Name,
				"description": d.Description,
				"parameters":  d.InputSchema,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("ollama: encode tool %s: %w", d.Name, err)
		}
		var tool api.Tool
		if err := json.Unmarshal(raw, &tool); err != nil {
			return nil, fmt.Errorf("ollama: encode tool %s: %w", d.Name, err)
		}
		tools = append(tools, tool)
	}
	return tools, nil
}

// toAPIMessages flattens content blocks into Ollama chat messages.
// Tool results become "tool" messages in block order.
func toAPIMessages(system string, messages []domain.Message) []api.Message {
	out := make([]api.Message, 0, len(messages)+1)
	if system != "" {
		out = append(out, api.Message{Role: "system", Content: system})
	}
	for _, m := range messages {
		msg := api.Message{Role: string(m.Role)}
		for _, b := range m.Content {
			switch b.Type {
			case domain.BlockText:
				msg.Content += b.Text
			case domain.BlockToolUse:
				if b.ToolUse == nil {
					continue
				}
				var call api.ToolCall
				call.Function.Name = b.ToolUse.Name
				call.Function.Arguments = api.ToolCallFunctionArguments(b.ToolUse.Arguments)
				msg.ToolCalls = append(msg.ToolCalls, call)
			case domain.BlockToolResult:
				out = append(out, api.Message{Role: "tool", Content: b.Content})
			}
		}
		if msg.Content == "" && len(msg.ToolCalls) == 0 {
			continue
		}
		out = append(out, msg)
	}
	return out
}

// ModelName returns the name of the model being used.
func (c *Client) ModelName() string {
	return c.model
}

// Ping validates the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.api.Heartbeat(ctx); err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (c *Client) Close() error {
	return nil
}
