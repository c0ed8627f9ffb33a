package mealplanner

import (
	"context"
	"net/http"

	"mealplanner/tools"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ToolProvider hands tools to the dispatch layer.
type ToolProvider interface {
	GetTools() []tools.Tool
	GetTool(name string) (tools.Tool, error)
}

// Notifier posts a finished plan somewhere out-of-band (webhook, chat room).
type Notifier interface {
	PostMessage(ctx context.Context, channel string, message string) error
}

// MessageType tags an outbound message for the renderer. The UI is passive;
// it renders exactly what it receives.
type MessageType string

const (
	MessageAssistant MessageType = "assistant"
	MessageUser      MessageType = "user"
	MessageError     MessageType = "error"
)

// Message is one outbound turn delivered to the user.
type Message struct {
	Type    MessageType `json:"type"`
	Content string      `json:"content"`
}

// Sink receives outbound messages. Implementations belong to the transport;
// the session never knows what is on the other side.
type Sink interface {
	Send(ctx context.Context, msg Message) error
}
