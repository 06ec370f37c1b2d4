// Package openai provides a model client adapter using the OpenAI chat completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.ModelClient = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.openai.com/v1"
	DefaultModel     = "gpt-4o-mini"
	DefaultMaxTokens = domain.DefaultMaxTokens
	DefaultTimeout   = 120 * time.Second
)

// Config holds configuration for the OpenAI model client.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the model to use (default: gpt-4o-mini).
	Model string

	// MaxTokens bounds each response (default: 800).
	MaxTokens int

	// Temperature is sent on every call.
	Temperature float64

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Client calls the OpenAI chat completions API with function tools.
type Client struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
}

// chatCompletionRequest is the OpenAI /chat/completions request format.
type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature"`
	Tools       []chatTool          `json:"tools,omitempty"`
	ToolChoice  string              `json:"tool_choice,omitempty"`
}

// chatCompletionMsg is the OpenAI chat message format.
type chatCompletionMsg struct {
	Role       string         `json:"role"`
	Content    *string        `json:"content"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Parameters  domain.ToolSchema `json:"parameters"`
}

type chatToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// chatCompletionResponse is the OpenAI /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content   *string        `json:"content"`
			ToolCalls []chatToolCall `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewClient creates a new OpenAI model client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Call sends one chat completion request.
// The system directive becomes the leading system message.
func (c *Client) Call(ctx context.Context, req domain.ModelRequest) (*domain.ModelResponse, error) {
	reqBody := chatCompletionRequest{
		Model:       c.model,
		Messages:    toChatMessages(req.System, req.Messages),
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
	if len(req.Tools) > 0 {
		reqBody.Tools = make([]chatTool, len(req.Tools))
		for i, t := range req.Tools {
			reqBody.Tools[i] = chatTool{
				Type: "function",
				Function: chatFunction{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.InputSchema,
				},
			}
		}
		reqBody.ToolChoice = "auto"
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if chatResp.Error != nil {
		return nil, fmt.Errorf("openai error: %s", chatResp.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(body))
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no response choices returned")
	}

	choice := chatResp.Choices[0]
	out := &domain.ModelResponse{StopReason: domain.StopComplete}
	if choice.FinishReason == "tool_calls" {
		out.StopReason = domain.StopToolUse
	}
	if choice.Message.Content != nil && *choice.Message.Content != "" {
		out.Content = append(out.Content, domain.TextBlock(*choice.Message.Content))
	}
	for _, call := range choice.Message.ToolCalls {
		args, err := decodeArguments(call.Function.Arguments)
		if err != nil {
			return nil, fmt.Errorf("openai: tool call %s: %w", call.ID, err)
		}
		out.Content = append(out.Content, domain.ToolUseBlock(domain.ToolInvocation{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: args,
		}))
	}
	return out, nil
}

// decodeArguments parses the JSON-encoded argument string of a tool call.
func decodeArguments(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("decode arguments: %w", err)
	}
	return args, nil
}

// toChatMessages flattens content blocks into chat messages.
// Tool results become one "tool" message each, in block order.
func toChatMessages(system string, messages []domain.Message) []chatCompletionMsg {
	out := make([]chatCompletionMsg, 0, len(messages)+1)
	if system != "" {
		out = append(out, chatCompletionMsg{Role: "system", Content: strPtr(system)})
	}
	for _, m := range messages {
		var text string
		var calls []chatToolCall
		for _, b := range m.Content {
			switch b.Type {
			case domain.BlockText:
				text += b.Text
			case domain.BlockToolUse:
				if b.ToolUse == nil {
					continue
				}
				args, err := json.Marshal(b.ToolUse.Arguments)
				if err != nil || b.ToolUse.Arguments == nil {
					args = []byte("{}")
				}
				call := chatToolCall{ID: b.ToolUse.ID, Type: "function"}
				call.Function.Name = b.ToolUse.Name
				call.Function.Arguments = string(args)
				calls = append(calls, call)
			case domain.BlockToolResult:
				out = append(out, chatCompletionMsg{
					Role:       "tool",
					Content:    strPtr(b.Content),
					ToolCallID: b.ToolUseID,
				})
			}
		}
		if text == "" && len(calls) == 0 {
			continue
		}
		msg := chatCompletionMsg{Role: string(m.Role), ToolCalls: calls}
		if text != "" || len(calls) == 0 {
			msg.Content = strPtr(text)
		}
		out = append(out, msg)
	}
	return out
}

func strPtr(s string) *string {
	return &s
}

// ModelName returns the name of the model being used.
func (c *Client) ModelName() string {
	return c.model
}

// Ping validates the service is reachable by checking the /models endpoint.
// This is a lightweight check that validates the API key without running inference.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("openai: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("openai: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (c *Client) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
