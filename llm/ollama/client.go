// Package ollama implements the language-model capability against a local
// Ollama server's chat API with native tool calling.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"mealplanner/llm"
)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type options struct {
	Temperature   float64 `json:"temperature,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	NumCtx        int     `json:"num_ctx,omitempty"`
}

// Client talks to one Ollama model. It is stateless between invocations; the
// whole transcript travels in each prompt.
type Client struct {
	endpoint   string
	model      string
	httpClient doer
	options    options
}

type ClientOpts struct {
	BaseEndpoint string
	ModelID      string
	Temperature  float64
	TopP         float64
	HTTPClient   doer
}

func NewClient(opts ClientOpts) (*Client, error) {
	if opts.ModelID == "" {
		return nil, fmt.Errorf("model id is required")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	temperature := opts.Temperature
	if temperature == 0 {
		temperature = 0.2
	}
	topP := opts.TopP
	if topP == 0 {
		topP = 0.9
	}

	return &Client{
		model:      opts.ModelID,
		httpClient: opts.HTTPClient,
		endpoint:   opts.BaseEndpoint + "/api/chat",
		options: options{
			Temperature:   temperature,
			TopP:          topP,
			RepeatPenalty: 1.05,
			NumCtx:        16384,
		},
	}, nil
}

type wireToolCall struct {
	Function struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	} `json:"function"`
}

type wireMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Name      string         `json:"name,omitempty"`
	ToolCalls []wireToolCall `json:"tool_calls,omitempty"`
}

type wireResponse struct {
	Message wireMessage `json:"message"`
	// other metadata omitted but available
}

type wireRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
	Tools    []llm.Tool    `json:"tools,omitempty"`
	Stream   bool          `json:"stream"`
	Options  options       `json:"options,omitempty"`
}

// Invoke sends the prompt to the Ollama chat API and returns the model's
// reply. Deciding what a reply means (tool call vs. final text) is left to
// the dispatch layer.
func (c *Client) Invoke(ctx context.Context, prompt llm.Prompt) (llm.Response, error) {
	slog.Info("LLM_CLIENT: Invoked", "messages_len", len(prompt.Messages))

	reqBody := wireRequest{
		Model:    c.model,
		Messages: sanitize(prompt.Messages),
		Tools:    prompt.Tools,
		Stream:   false,
		Options:  c.options,
	}
	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return llm.Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(reqBytes))
	if err != nil {
		return llm.Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return llm.Response{}, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return llm.Response{}, fmt.Errorf("LLM_CLIENT: %s: %s", resp.Status, string(body))
	}

	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		slog.Warn("LLM_CLIENT: decode failed, returning raw", "err", err, "body", string(body))
		return llm.Response{Content: string(body)}, nil
	}

	if len(wr.Message.ToolCalls) > 0 {
		tc := make([]llm.ToolCall, 0, len(wr.Message.ToolCalls))
		for _, call := range wr.Message.ToolCalls {
			tc = append(tc, llm.ToolCall{
				Name: call.Function.Name,
				Args: call.Function.Arguments,
			})
		}
		return llm.Response{Content: wr.Message.Content, ToolCalls: tc}, nil
	}

	return llm.Response{Content: wr.Message.Content}, nil
}

// sanitize drops malformed transcript entries before they hit the wire: tool
// messages need a name, and unknown roles coerce to user.
func sanitize(messages []llm.Message) []llm.Message {
	out := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system", "user", "assistant":
			out = append(out, llm.Message{Role: m.Role, Content: m.Content})
		case "tool":
			if strings.TrimSpace(m.Name) == "" {
				slog.Warn("ollama: dropping tool message without name")
				continue
			}
			out = append(out, m)
		default:
			slog.Warn("ollama: unknown role, coercing to user", "role", m.Role)
			out = append(out, llm.Message{Role: "user", Content: m.Content})
		}
	}
	return out
}
