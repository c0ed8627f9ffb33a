// Package mock implements the language-model capability with deterministic
// text rules. It exists for tests and offline runs: it classifies the user's
// last message into the same intent tool calls a real model would emit, so
// the rest of the pipeline behaves identically without a model in the loop.
package mock

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"mealplanner/llm"
)

// stageMarker is how the dispatch layer tells the capability which slot it is
// filling; the mock keys its rules off it instead of reading instructions.
var stageMarker = regexp.MustCompile(`STAGE:\s*(\S+)`)

var numberRe = regexp.MustCompile(`\d+`)

var negations = map[string]bool{
	"none": true, "no": true, "nothing": true, "nope": true,
	"no restrictions": true, "anything": true, "any": true,
}

type Client struct{}

func NewClient() *Client { return &Client{} }

// Invoke reads the stage marker from the system message and the latest user
// message, then answers with the matching intent tool call. Unclassifiable
// input yields free text, which the dispatcher treats as a re-prompt.
func (c *Client) Invoke(ctx context.Context, prompt llm.Prompt) (llm.Response, error) {
	slog.Info("LLM_CLIENT: Invoked", "messages_len", len(prompt.Messages))

	stage := ""
	input := ""
	for _, m := range prompt.Messages {
		switch m.Role {
		case "system":
			if match := stageMarker.FindStringSubmatch(m.Content); match != nil {
				stage = match[1]
			}
		case "user":
			input = m.Content
		}
	}
	text := strings.ToLower(strings.TrimSpace(input))

	switch stage {
	case "collecting_dietary":
		return call("set_dietary_restrictions", map[string]any{"restrictions": listArgs(text)}), nil
	case "collecting_cuisine":
		return call("set_cuisines", map[string]any{"cuisines": listArgs(text)}), nil
	case "collecting_meal_count":
		if n, ok := firstNumber(text); ok {
			return call("set_meal_count", map[string]any{"count": n}), nil
		}
		return llm.Response{Content: "How many dinners should I plan? Give me a number."}, nil
	case "presenting_candidates", "collecting_selections":
		if nums := allNumbers(text); len(nums) > 0 {
			return call("select_recipes", map[string]any{"indices": nums}), nil
		}
		return llm.Response{Content: "Which recipes would you like? List their numbers, like 1, 3."}, nil
	case "collecting_servings":
		if nums := allNumbers(text); len(nums) > 0 {
			return call("set_servings", map[string]any{"servings": nums}), nil
		}
		return llm.Response{Content: "How many servings per recipe?"}, nil
	}

	return llm.Response{Content: "Sorry, I didn't catch that."}, nil
}

func call(name string, args map[string]any) llm.Response {
	return llm.Response{ToolCalls: []llm.ToolCall{{Name: name, Args: args}}}
}

// listArgs splits free text into list items, treating negations as the empty
// list. "italian and mexican" and "italian, mexican" both work.
func listArgs(text string) []any {
	if negations[text] {
		return []any{}
	}
	text = strings.ReplaceAll(text, " and ", ",")
	parts := strings.Split(text, ",")
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" && !negations[p] {
			out = append(out, p)
		}
	}
	return out
}

func firstNumber(text string) (float64, bool) {
	m := numberRe.FindString(text)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return float64(n), true
}

func allNumbers(text string) []any {
	var out []any
	for _, m := range numberRe.FindAllString(text, -1) {
		if n, err := strconv.Atoi(m); err == nil {
			out = append(out, float64(n))
		}
	}
	return out
}
