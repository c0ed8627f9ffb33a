package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"mealplanner/recipe"
)

// RecipeSource is the recipe-lookup capability as seen from the tool layer.
// lookup.Client implements it against the real API; lookup.FixtureSource
// serves local fixture data.
type RecipeSource interface {
	Search(ctx context.Context, query string, dietary, cuisines []string) ([]recipe.Recipe, error)
}

// RecipeSearch queries the lookup capability for candidate recipes matching
// the collected preferences.
type RecipeSearch struct {
	source RecipeSource
}

func NewRecipeSearch(source RecipeSource) *RecipeSearch {
	return &RecipeSearch{source: source}
}

func (t *RecipeSearch) Name() string  { return "recipe_search" }
func (t *RecipeSearch) Title() string { return "Search Recipes" }
func (t *RecipeSearch) Description() string {
	return "Searches for dinner recipes matching a query, filtered by dietary restrictions and cuisines."
}

func (t *RecipeSearch) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query": {Type: "string"},
			"dietary": {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string"},
			},
			"cuisines": {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string"},
			},
		},
		Required: []string{"query"},
	}
}

func (t *RecipeSearch) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"recipes": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					// open schema: lookup backends attach extra recipe fields
				},
			},
		},
		Required: []string{"recipes"},
	}
}

func (t *RecipeSearch) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	query, _ := input["query"].(string)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	dietary, err := optionalStringList(input, "dietary")
	if err != nil {
		return nil, err
	}
	cuisines, err := optionalStringList(input, "cuisines")
	if err != nil {
		return nil, err
	}

	recipes, err := t.source.Search(ctx, query, dietary, cuisines)
	if err != nil {
		return nil, fmt.Errorf("recipe search: %w", err)
	}

	return map[string]any{"recipes": recipes}, nil
}

func optionalStringList(input map[string]any, field string) ([]string, error) {
	if _, present := input[field]; !present {
		return nil, nil
	}
	return stringList(input, field)
}
