package domain

import "fmt"

// ToolSchema is the JSON-schema object describing a tool's arguments.
type ToolSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]SchemaProperty `json:"properties"`
	Required   []string                  `json:"required,omitempty"`
}

// SchemaProperty describes a single tool argument.
type SchemaProperty struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// ToolDefinition is the model-facing description of a tool.
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InputSchema ToolSchema `json:"input_schema"`
}

// ToolInvocation is one tool_use request emitted by the model.
type ToolInvocation struct {
	// ID pairs the invocation with its result.
	ID string

	// Name selects the tool.
	Name string

	// Arguments is the model-supplied argument mapping.
	Arguments map[string]any
}

// ToolOutput is the result of executing a tool.
type ToolOutput struct {
	// Text is returned to the model as the tool result.
	Text string

	// Citations are the sources backing Text, in rank order.
	Citations []Citation
}

// TextOutput returns an output with no citations.
func TextOutput(text string) ToolOutput {
	return ToolOutput{Text: text}
}

// ValidationError reports model-supplied tool arguments that do not fit
// the tool's declared schema. Its message is returned to the model.
type ValidationError struct {
	Tool   string
	Reason string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("Invalid arguments for tool '%s': %s", e.Tool, e.Reason)
}
