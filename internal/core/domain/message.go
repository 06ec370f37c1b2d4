package domain

import "strings"

// Role identifies the author of a message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// BlockType identifies the kind of content block.
type BlockType string

// Content block types.
const (
	BlockText       BlockType = "text"
	BlockToolUse    BlockType = "tool_use"
	BlockToolResult BlockType = "tool_result"
)

// ContentBlock is one element of a message body.
// Fields are populated according to Type.
type ContentBlock struct {
	Type BlockType

	// Text is set for text blocks.
	Text string

	// ToolUse is set for tool_use blocks.
	ToolUse *ToolInvocation

	// ToolUseID and Content are set for tool_result blocks.
	ToolUseID string
	Content   string
}

// TextBlock returns a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

// ToolUseBlock returns a tool_use content block.
func ToolUseBlock(inv ToolInvocation) ContentBlock {
	return ContentBlock{Type: BlockToolUse, ToolUse: &inv}
}

// ToolResultBlock returns a tool_result content block.
func ToolResultBlock(toolUseID, content string) ContentBlock {
	return ContentBlock{Type: BlockToolResult, ToolUseID: toolUseID, Content: content}
}

// Message is one turn of the model conversation.
type Message struct {
	Role    Role
	Content []ContentBlock
}

// UserText returns a single-block user message.
func UserText(text string) Message {
	return Message{Role: RoleUser, Content: []ContentBlock{TextBlock(text)}}
}

// StopReason is why the model stopped generating.
type StopReason string

// Stop reasons.
const (
	StopComplete StopReason = "complete"
	StopToolUse  StopReason = "tool_use"
)

// ModelRequest is a provider-neutral model call.
type ModelRequest struct {
	// System is the system directive, with any conversation history appended.
	System string

	// Messages is the conversation so far.
	Messages []Message

	// Tools is nil when the model must answer directly.
	Tools []ToolDefinition
}

// ModelResponse is a provider-neutral model reply.
type ModelResponse struct {
	StopReason StopReason
	Content    []ContentBlock
}

// Text concatenates the text blocks of the response.
func (r *ModelResponse) Text() string {
	var b strings.Builder
	for _, block := range r.Content {
		if block.Type == BlockText {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// ToolInvocations returns the tool_use blocks in order.
func (r *ModelResponse) ToolInvocations() []ToolInvocation {
	var out []ToolInvocation
	for _, block := range r.Content {
		if block.Type == BlockToolUse && block.ToolUse != nil {
			out = append(out, *block.ToolUse)
		}
	}
	return out
}

// WantsTools reports whether the model asked for tool execution.
// A tool_use stop without any tool_use block counts as complete.
func (r *ModelResponse) WantsTools() bool {
	return r.StopReason == StopToolUse && len(r.ToolInvocations()) > 0
}
