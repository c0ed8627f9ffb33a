package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"

	"mealplanner/llm"
)

func TestNewClient(t *testing.T) {
	_, err := NewClient(ClientOpts{})
	must.Error(t, err, "model id is required")

	client, err := NewClient(ClientOpts{ModelID: "llama3.1:8b"})
	must.NoError(t, err)
	must.NotNil(t, client)
}

func TestInvoke(t *testing.T) {
	var gotReq wireRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		must.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprint(w, `{"message": {"role": "assistant", "content": "What dietary restrictions do you have?"}}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOpts{BaseEndpoint: server.URL, ModelID: "llama3.1:8b"})
	must.NoError(t, err)

	resp, err := client.Invoke(context.Background(), llm.Prompt{
		Messages: []llm.Message{
			{Role: "system", Content: "You plan meals."},
			{Role: "user", Content: "hi"},
		},
	})
	must.NoError(t, err)

	should.Equal(t, "llama3.1:8b", gotReq.Model)
	should.False(t, gotReq.Stream)
	should.Len(t, gotReq.Messages, 2)
	should.Equal(t, "What dietary restrictions do you have?", resp.Content)
	should.Empty(t, resp.ToolCalls)
}

func TestInvokeToolCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"message": {"role": "assistant", "content": "", "tool_calls": [
			{"function": {"name": "set_meal_count", "arguments": {"count": 3}}}
		]}}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOpts{BaseEndpoint: server.URL, ModelID: "llama3.1:8b"})
	must.NoError(t, err)

	resp, err := client.Invoke(context.Background(), llm.Prompt{})
	must.NoError(t, err)

	must.Len(t, resp.ToolCalls, 1)
	should.Equal(t, "set_meal_count", resp.ToolCalls[0].Name)
	should.Equal(t, map[string]any{"count": 3.0}, resp.ToolCalls[0].Args)
}

func TestInvokeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOpts{BaseEndpoint: server.URL, ModelID: "nope"})
	must.NoError(t, err)

	_, err = client.Invoke(context.Background(), llm.Prompt{})
	must.Error(t, err)
}

func TestSanitize(t *testing.T) {
	in := []llm.Message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "tool", Content: "{}", Name: "recipe_search"},
		{Role: "tool", Content: "{}"},     // no name, dropped
		{Role: "function", Content: "?"},  // unknown role, coerced
	}

	out := sanitize(in)
	must.Len(t, out, 5)
	should.Equal(t, "tool", out[3].Role)
	should.Equal(t, "recipe_search", out[3].Name)
	should.Equal(t, "user", out[4].Role)
	should.Equal(t, "?", out[4].Content)
}
