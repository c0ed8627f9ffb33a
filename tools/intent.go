package tools

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

// The intent tools validate and normalize structured answers the model pulls
// out of the user's free text. Their Run methods never touch external state;
// the dispatch layer turns their outputs into state-machine events.

// SetDietary records the user's dietary restrictions.
type SetDietary struct{}

func NewSetDietary() *SetDietary { return &SetDietary{} }

func (t *SetDietary) Name() string  { return "set_dietary_restrictions" }
func (t *SetDietary) Title() string { return "Set Dietary Restrictions" }
func (t *SetDietary) Description() string {
	return "Records the user's dietary restrictions. Pass an empty list when the user has none."
}

func (t *SetDietary) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"restrictions": {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string"},
			},
		},
		Required: []string{"restrictions"},
	}
}

func (t *SetDietary) OutputSchema() *jsonschema.Schema {
	return stringListSchema("restrictions")
}

func (t *SetDietary) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	list, err := stringList(input, "restrictions")
	if err != nil {
		return nil, err
	}
	return map[string]any{"restrictions": list}, nil
}

// SetCuisines records the user's cuisine preferences.
type SetCuisines struct{}

func NewSetCuisines() *SetCuisines { return &SetCuisines{} }

func (t *SetCuisines) Name() string  { return "set_cuisines" }
func (t *SetCuisines) Title() string { return "Set Cuisine Preferences" }
func (t *SetCuisines) Description() string {
	return "Records the cuisines the user wants this week. Pass an empty list when the user has no preference."
}

func (t *SetCuisines) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"cuisines": {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string"},
			},
		},
		Required: []string{"cuisines"},
	}
}

func (t *SetCuisines) OutputSchema() *jsonschema.Schema {
	return stringListSchema("cuisines")
}

func (t *SetCuisines) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	list, err := stringList(input, "cuisines")
	if err != nil {
		return nil, err
	}
	return map[string]any{"cuisines": list}, nil
}

// SetMealCount records how many dinners to plan.
type SetMealCount struct{}

func NewSetMealCount() *SetMealCount { return &SetMealCount{} }

func (t *SetMealCount) Name() string  { return "set_meal_count" }
func (t *SetMealCount) Title() string { return "Set Meal Count" }
func (t *SetMealCount) Description() string {
	return "Records the number of dinners to plan for the week. Must be a positive integer."
}

func (t *SetMealCount) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"count": {Type: "integer"},
		},
		Required: []string{"count"},
	}
}

func (t *SetMealCount) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"count": {Type: "integer"},
		},
		Required: []string{"count"},
	}
}

func (t *SetMealCount) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	n, err := positiveInt(input, "count")
	if err != nil {
		return nil, err
	}
	return map[string]any{"count": n}, nil
}

// SelectRecipes records which candidate recipes the user picked, by their
// 1-based position in the presented list.
type SelectRecipes struct{}

func NewSelectRecipes() *SelectRecipes { return &SelectRecipes{} }

func (t *SelectRecipes) Name() string  { return "select_recipes" }
func (t *SelectRecipes) Title() string { return "Select Recipes" }
func (t *SelectRecipes) Description() string {
	return "Records the recipes the user selected from the presented list, as 1-based indices."
}

func (t *SelectRecipes) InputSchema() *jsonschema.Schema {
	return intListSchema("indices")
}

func (t *SelectRecipes) OutputSchema() *jsonschema.Schema {
	return intListSchema("indices")
}

func (t *SelectRecipes) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	nums, err := positiveIntList(input, "indices")
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return nil, fmt.Errorf("indices must not be empty")
	}
	return map[string]any{"indices": nums}, nil
}

// SetServings records requested serving counts, either one count applied to
// every selected recipe or one count per recipe.
type SetServings struct{}

func NewSetServings() *SetServings { return &SetServings{} }

func (t *SetServings) Name() string  { return "set_servings" }
func (t *SetServings) Title() string { return "Set Servings" }
func (t *SetServings) Description() string {
	return "Records requested servings: a single count for all selected recipes, or one count per recipe in order."
}

func (t *SetServings) InputSchema() *jsonschema.Schema {
	return intListSchema("servings")
}

func (t *SetServings) OutputSchema() *jsonschema.Schema {
	return intListSchema("servings")
}

func (t *SetServings) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	nums, err := positiveIntList(input, "servings")
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return nil, fmt.Errorf("servings must not be empty")
	}
	return map[string]any{"servings": nums}, nil
}

func stringListSchema(field string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			field: {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string"},
			},
		},
		Required: []string{field},
	}
}

func intListSchema(field string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			field: {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "integer"},
			},
		},
		Required: []string{field},
	}
}

// stringList reads a []string field from loosely typed tool input, trimming
// and lowercasing entries.
func stringList(input map[string]any, field string) ([]string, error) {
	raw, ok := input[field].([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array of strings", field)
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be an array of strings", field)
		}
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// positiveInt reads an integer field from tool input. JSON numbers arrive as
// float64, so whole-ness is checked explicitly.
func positiveInt(input map[string]any, field string) (int, error) {
	f, ok := input[field].(float64)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", field)
	}
	if f <= 0 || f != math.Trunc(f) {
		return 0, fmt.Errorf("%s must be a positive integer, got %v", field, f)
	}
	return int(f), nil
}

func positiveIntList(input map[string]any, field string) ([]int, error) {
	raw, ok := input[field].([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array of integers", field)
	}
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		f, ok := v.(float64)
		if !ok || f <= 0 || f != math.Trunc(f) {
			return nil, fmt.Errorf("%s must contain positive integers, got %v", field, v)
		}
		out = append(out, int(f))
	}
	return out, nil
}
