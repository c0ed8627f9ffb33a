// Package dispatch is the boundary between the conversation state machine
// and the two opaque external capabilities: the language model and the recipe
// lookup. It turns capability responses into state-machine events, so every
// bit of free-text non-determinism is contained here.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mealplanner"
	"mealplanner/llm"
	"mealplanner/recipe"
	"mealplanner/session"
)

// llmClient is the language-model capability as consumed here.
type llmClient interface {
	Invoke(ctx context.Context, prompt llm.Prompt) (llm.Response, error)
}

// Dispatcher implements session.Classifier. Capability calls are the only
// operations that may block, so each carries a bounded timeout; a timeout or
// transport failure surfaces as an error the session reports as recoverable.
type Dispatcher struct {
	llm          llmClient
	toolProvider mealplanner.ToolProvider
	timeout      time.Duration
}

func NewDispatcher(client llmClient, tp mealplanner.ToolProvider, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{
		llm:          client,
		toolProvider: tp,
		timeout:      timeout,
	}
}

// intentTools are the tools offered to the model on every classification;
// offering all of them lets the user revise an earlier answer at any point.
var intentTools = []string{
	"set_dietary_restrictions",
	"set_cuisines",
	"set_meal_count",
	"select_recipes",
	"set_servings",
}

// Classify asks the language model to interpret the user's message in the
// context of the current stage and returns exactly one event. Free text from
// the model becomes a Clarification; anything unusable becomes
// Unintelligible, which re-prompts without advancing.
func (d *Dispatcher) Classify(ctx context.Context, transcript []llm.Message, stage session.Stage, input string) (session.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	prompt := llm.Prompt{
		Messages: append([]llm.Message{{Role: "system", Content: systemPrompt(stage)}}, transcript...),
		Tools:    d.toolSchemas(intentTools),
	}

	res, err := d.llm.Invoke(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("language model capability: %w", err)
	}

	slog.Info("DISPATCH: LLM response received",
		"stage", stage,
		"content_length", len(res.Content),
		"tool_calls", len(res.ToolCalls),
	)

	for _, call := range res.ToolCalls {
		ev, ok := d.eventFromCall(ctx, call)
		if ok {
			return ev, nil
		}
	}

	if text := strings.TrimSpace(res.Content); text != "" {
		return session.Clarification{Text: text}, nil
	}
	return session.Unintelligible{}, nil
}

// eventFromCall runs an intent tool to validate the model's arguments, then
// builds the matching event. Validation failure means the model produced a
// malformed call; that is unintelligible, not fatal.
func (d *Dispatcher) eventFromCall(ctx context.Context, call llm.ToolCall) (session.Event, bool) {
	tool, err := d.toolProvider.GetTool(call.Name)
	if err != nil {
		slog.Warn("DISPATCH: Model called unknown tool", "name", call.Name)
		return nil, false
	}

	out, err := tool.Run(ctx, call.Args)
	if err != nil {
		slog.Warn("DISPATCH: Intent tool rejected arguments", "name", call.Name, "error", err)
		return nil, false
	}

	switch call.Name {
	case "set_dietary_restrictions":
		if v, ok := out["restrictions"].([]string); ok {
			return session.DietaryProvided{Restrictions: v}, true
		}
	case "set_cuisines":
		if v, ok := out["cuisines"].([]string); ok {
			return session.CuisineProvided{Cuisines: v}, true
		}
	case "set_meal_count":
		if v, ok := out["count"].(int); ok {
			return session.MealCountProvided{Count: v}, true
		}
	case "select_recipes":
		if v, ok := out["indices"].([]int); ok {
			return session.SelectionProvided{Indices: v}, true
		}
	case "set_servings":
		if v, ok := out["servings"].([]int); ok {
			return session.ServingsProvided{Servings: v}, true
		}
	}
	return nil, false
}

// FetchCandidates runs the recipe_search tool with the collected preferences.
// Sentinel errors from the lookup capability pass through unwrapped-checkable
// so the session can distinguish "no results" from "service down".
func (d *Dispatcher) FetchCandidates(ctx context.Context, prefs session.Preferences) ([]recipe.Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	tool, err := d.toolProvider.GetTool("recipe_search")
	if err != nil {
		return nil, fmt.Errorf("recipe lookup capability: %w", err)
	}

	input := map[string]any{
		"query":    searchQuery(prefs),
		"dietary":  toAnyList(prefs.Dietary),
		"cuisines": toAnyList(prefs.Cuisines),
	}

	slog.Info("DISPATCH: Fetching candidates", "query", input["query"], "dietary", prefs.Dietary, "cuisines", prefs.Cuisines)

	out, err := tool.Run(ctx, input)
	if err != nil {
		return nil, err
	}

	recipes, ok := out["recipes"].([]recipe.Recipe)
	if !ok {
		return nil, fmt.Errorf("recipe lookup capability: unexpected result shape %T", out["recipes"])
	}
	return recipes, nil
}

// searchQuery builds the lookup query the way the conversation implies it:
// the first couple of cuisines, or a generic query when the user has no
// preference.
func searchQuery(prefs session.Preferences) string {
	cuisines := prefs.Cuisines
	if len(cuisines) > 2 {
		cuisines = cuisines[:2]
	}
	if len(cuisines) == 0 {
		return "healthy dinner"
	}
	return strings.Join(cuisines, " ") + " dinner"
}

// toolSchemas converts registry tools into the wire tool format.
func (d *Dispatcher) toolSchemas(names []string) []llm.Tool {
	out := make([]llm.Tool, 0, len(names))
	for _, name := range names {
		tool, err := d.toolProvider.GetTool(name)
		if err != nil {
			continue
		}
		schema := tool.InputSchema()
		parameters := map[string]any{
			"type":       "object",
			"properties": schema.Properties,
		}
		if len(schema.Required) > 0 {
			parameters["required"] = schema.Required
		}
		out = append(out, llm.Tool{
			Type: "function",
			Function: llm.ToolSchema{
				Name:        tool.Name(),
				Description: tool.Description(),
				Parameters:  parameters,
			},
		})
	}
	return out
}

func toAnyList(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func systemPrompt(stage session.Stage) string {
	return fmt.Sprintf(`You are a meal-planning assistant collecting one answer at a time over chat.

STAGE: %s

%s

RULES
- When the user's message answers the current question, record it by calling exactly ONE tool.
- If the user changes an EARLIER answer (for example new dietary restrictions while picking recipes), call the tool for that answer instead; the planner handles the rest.
- If the message does not answer anything, reply with one short clarifying question and call no tool.
- Never invent answers the user did not give.`, stage, stageInstruction(stage))
}

func stageInstruction(stage session.Stage) string {
	switch stage {
	case session.StageCollectingDietary:
		return `You are asking for dietary restrictions. "None" means an empty list.`
	case session.StageCollectingCuisine:
		return `You are asking for cuisine preferences. "Any" or "no preference" means an empty list.`
	case session.StageCollectingMealCount:
		return "You are asking how many dinners to plan this week. The answer is one positive integer."
	case session.StagePresentingCandidates, session.StageCollectingSelections:
		return "The user is picking recipes from a numbered list. Record their choices as 1-based indices."
	case session.StageCollectingServings:
		return "You are asking for serving counts: either one number for all recipes, or one per recipe in order."
	default:
		return "Interpret the user's message in context."
	}
}
