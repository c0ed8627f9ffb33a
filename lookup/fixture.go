package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"mealplanner/recipe"
	"mealplanner/tools/storage"
)

// FixtureSource serves recipes from a local fixture instead of the live API.
// It applies the same filter semantics: a recipe matches when it carries
// every requested dietary label and at least one requested cuisine.
type FixtureSource struct {
	state storage.RecipeFixtureState
}

func NewFixtureSource(state storage.RecipeFixtureState) *FixtureSource {
	return &FixtureSource{state: state}
}

// fixtureRecipe is recipe.Recipe plus the dietary labels the live API would
// filter on server-side.
type fixtureRecipe struct {
	recipe.Recipe
	DietLabels []string `json:"diet_labels,omitempty"`
}

func (f *FixtureSource) Search(ctx context.Context, query string, dietary, cuisines []string) ([]recipe.Recipe, error) {
	b, err := f.state.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load recipe fixtures: %w", ErrServiceUnavailable, err)
	}

	var all []fixtureRecipe
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, fmt.Errorf("%w: parse recipe fixtures: %w", ErrServiceUnavailable, err)
	}

	out := make([]recipe.Recipe, 0, len(all))
	for _, fr := range all {
		if !hasAllLabels(fr.DietLabels, dietary) {
			continue
		}
		if len(cuisines) > 0 && !hasAnyLabel(fr.CuisineTypes, cuisines) {
			continue
		}
		out = append(out, fr.Recipe)
	}

	if len(out) == 0 {
		return nil, ErrNoResults
	}
	return out, nil
}

func hasAllLabels(have, want []string) bool {
	for _, w := range want {
		if !hasAnyLabel(have, []string{w}) {
			return false
		}
	}
	return true
}

func hasAnyLabel(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}
