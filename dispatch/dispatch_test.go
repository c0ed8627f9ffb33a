package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"

	"mealplanner/llm"
	"mealplanner/lookup"
	"mealplanner/recipe"
	"mealplanner/session"
	"mealplanner/tools"
)

type scriptedLLM struct {
	resp      llm.Response
	err       error
	gotPrompt llm.Prompt
}

func (s *scriptedLLM) Invoke(ctx context.Context, prompt llm.Prompt) (llm.Response, error) {
	s.gotPrompt = prompt
	return s.resp, s.err
}

type stubSource struct {
	recipes []recipe.Recipe
	err     error
	gotQ    string
}

func (s *stubSource) Search(ctx context.Context, query string, dietary, cuisines []string) ([]recipe.Recipe, error) {
	s.gotQ = query
	return s.recipes, s.err
}

func newDispatcher(t *testing.T, client llmClient, source tools.RecipeSource) *Dispatcher {
	t.Helper()
	if source == nil {
		source = &stubSource{}
	}
	registry, err := tools.NewRegistry(source)
	must.NoError(t, err)
	return NewDispatcher(client, registry, time.Second)
}

func TestClassifyToolCalls(t *testing.T) {
	tests := []struct {
		name string
		call llm.ToolCall
		want session.Event
	}{
		{
			name: "dietary",
			call: llm.ToolCall{Name: "set_dietary_restrictions", Args: map[string]any{"restrictions": []any{"Vegetarian"}}},
			want: session.DietaryProvided{Restrictions: []string{"vegetarian"}},
		},
		{
			name: "empty dietary",
			call: llm.ToolCall{Name: "set_dietary_restrictions", Args: map[string]any{"restrictions": []any{}}},
			want: session.DietaryProvided{Restrictions: []string{}},
		},
		{
			name: "cuisines",
			call: llm.ToolCall{Name: "set_cuisines", Args: map[string]any{"cuisines": []any{"italian", "mexican"}}},
			want: session.CuisineProvided{Cuisines: []string{"italian", "mexican"}},
		},
		{
			name: "meal count",
			call: llm.ToolCall{Name: "set_meal_count", Args: map[string]any{"count": 3.0}},
			want: session.MealCountProvided{Count: 3},
		},
		{
			name: "selection",
			call: llm.ToolCall{Name: "select_recipes", Args: map[string]any{"indices": []any{1.0, 3.0}}},
			want: session.SelectionProvided{Indices: []int{1, 3}},
		},
		{
			name: "servings",
			call: llm.ToolCall{Name: "set_servings", Args: map[string]any{"servings": []any{4.0}}},
			want: session.ServingsProvided{Servings: []int{4}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &scriptedLLM{resp: llm.Response{ToolCalls: []llm.ToolCall{tt.call}}}
			d := newDispatcher(t, client, nil)

			ev, err := d.Classify(context.Background(), nil, session.StageCollectingDietary, "whatever")
			must.NoError(t, err)
			should.Equal(t, tt.want, ev)
		})
	}
}

func TestClassifyFreeTextBecomesClarification(t *testing.T) {
	client := &scriptedLLM{resp: llm.Response{Content: "Do you mean vegetarian or vegan?"}}
	d := newDispatcher(t, client, nil)

	ev, err := d.Classify(context.Background(), nil, session.StageCollectingDietary, "sort of veggie")
	must.NoError(t, err)
	should.Equal(t, session.Clarification{Text: "Do you mean vegetarian or vegan?"}, ev)
}

func TestClassifyMalformedCallFallsThrough(t *testing.T) {
	tests := []struct {
		name string
		resp llm.Response
		want session.Event
	}{
		{
			name: "unknown tool then nothing",
			resp: llm.Response{ToolCalls: []llm.ToolCall{{Name: "order_pizza"}}},
			want: session.Unintelligible{},
		},
		{
			name: "bad args then nothing",
			resp: llm.Response{ToolCalls: []llm.ToolCall{{Name: "set_meal_count", Args: map[string]any{"count": -1.0}}}},
			want: session.Unintelligible{},
		},
		{
			name: "bad call then valid call",
			resp: llm.Response{ToolCalls: []llm.ToolCall{
				{Name: "set_meal_count", Args: map[string]any{"count": "three"}},
				{Name: "set_meal_count", Args: map[string]any{"count": 3.0}},
			}},
			want: session.MealCountProvided{Count: 3},
		},
		{
			name: "bad call falls back to content",
			resp: llm.Response{
				Content:   "How many dinners?",
				ToolCalls: []llm.ToolCall{{Name: "set_meal_count", Args: map[string]any{}}},
			},
			want: session.Clarification{Text: "How many dinners?"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDispatcher(t, &scriptedLLM{resp: tt.resp}, nil)
			ev, err := d.Classify(context.Background(), nil, session.StageCollectingMealCount, "three")
			must.NoError(t, err)
			should.Equal(t, tt.want, ev)
		})
	}
}

func TestClassifyLLMError(t *testing.T) {
	sentinel := errors.New("connection refused")
	d := newDispatcher(t, &scriptedLLM{err: sentinel}, nil)

	_, err := d.Classify(context.Background(), nil, session.StageCollectingDietary, "hi")
	must.ErrorIs(t, err, sentinel)
}

func TestClassifyPromptShape(t *testing.T) {
	client := &scriptedLLM{resp: llm.Response{Content: "ok"}}
	d := newDispatcher(t, client, nil)

	transcript := []llm.Message{
		{Role: "assistant", Content: "Any dietary restrictions?"},
		{Role: "user", Content: "none"},
	}
	_, err := d.Classify(context.Background(), transcript, session.StageCollectingDietary, "none")
	must.NoError(t, err)

	must.Len(t, client.gotPrompt.Messages, 3)
	should.Equal(t, "system", client.gotPrompt.Messages[0].Role)
	should.Contains(t, client.gotPrompt.Messages[0].Content, "STAGE: collecting_dietary")

	// Every intent tool is offered so the user can revise earlier answers.
	should.Len(t, client.gotPrompt.Tools, 5)
	for _, tool := range client.gotPrompt.Tools {
		should.Equal(t, "function", tool.Type)
	}
}

func TestFetchCandidates(t *testing.T) {
	source := &stubSource{recipes: []recipe.Recipe{{ID: "r1", Title: "Chana Masala"}}}
	d := newDispatcher(t, &scriptedLLM{}, source)

	recipes, err := d.FetchCandidates(context.Background(), session.Preferences{
		Dietary:  []string{"vegetarian"},
		Cuisines: []string{"indian", "thai", "mexican"},
	})
	must.NoError(t, err)
	must.Len(t, recipes, 1)
	should.Equal(t, "Chana Masala", recipes[0].Title)
	// Query uses at most the first two cuisines.
	should.Equal(t, "indian thai dinner", source.gotQ)
}

func TestFetchCandidatesDefaultQuery(t *testing.T) {
	source := &stubSource{recipes: []recipe.Recipe{{ID: "r1"}}}
	d := newDispatcher(t, &scriptedLLM{}, source)

	_, err := d.FetchCandidates(context.Background(), session.Preferences{})
	must.NoError(t, err)
	should.Equal(t, "healthy dinner", source.gotQ)
}

func TestFetchCandidatesErrorsPassThrough(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "no results", err: lookup.ErrNoResults},
		{name: "service unavailable", err: lookup.ErrServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDispatcher(t, &scriptedLLM{}, &stubSource{err: tt.err})
			_, err := d.FetchCandidates(context.Background(), session.Preferences{})
			must.ErrorIs(t, err, tt.err)
		})
	}
}
