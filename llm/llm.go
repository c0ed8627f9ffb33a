// Package llm defines the wire-level prompt and response types shared by the
// language-model capability clients. The capability is opaque: it maps a
// transcript plus tool schemas to either free text or tool call requests, and
// everything downstream of that classification is deterministic.
package llm

// Message is one turn of a session transcript. Tool messages carry the tool
// name so backends that support native tool results can round-trip them.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// Prompt is the full input to one capability invocation.
type Prompt struct {
	Messages []Message `json:"messages"`
	Tools    []Tool    `json:"tools,omitempty"`
}

// HasToolResult reports whether a result for the named tool already exists in
// the prompt's message history.
func (p *Prompt) HasToolResult(tool string) bool {
	for _, msg := range p.Messages {
		if msg.Role == "tool" && msg.Name == tool {
			return true
		}
	}
	return false
}

// Tool is a tool definition in the function-calling format.
type Tool struct {
	Type     string     `json:"type"`
	Function ToolSchema `json:"function"`
}

// ToolSchema describes one callable function to the model.
type ToolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Response is the model's reply: free text, tool call requests, or both.
type Response struct {
	Content   string     `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is a single tool invocation requested by the model.
type ToolCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}
