package recipe

import (
	"errors"
	"fmt"

	"mealplanner/units"
)

// ErrInvalidServings signals a non-positive serving count, either requested
// by the user or declared by a malformed recipe.
var ErrInvalidServings = errors.New("servings must be a positive integer")

// Scale adjusts a recipe's ingredient lines from its source serving count to
// requestedServings. Parsed quantities are multiplied by
// requestedServings/sourceServings at full precision; rounding happens only
// when the consolidated total is rendered, so per-recipe error never
// compounds. Lines that fail to parse pass through unscaled with their raw
// text intact.
func Scale(r Recipe, requestedServings int) ([]IngredientLine, error) {
	if requestedServings <= 0 {
		return nil, fmt.Errorf("requested %d: %w", requestedServings, ErrInvalidServings)
	}
	if r.SourceServings <= 0 {
		return nil, fmt.Errorf("recipe %q declares %d source servings: %w", r.Title, r.SourceServings, ErrInvalidServings)
	}

	factor := float64(requestedServings) / float64(r.SourceServings)

	lines := make([]IngredientLine, 0, len(r.IngredientLines))
	for _, raw := range r.IngredientLines {
		p, err := units.ParseLine(raw)
		if err != nil {
			// Keep the line; dropping it silently would lose an ingredient.
			lines = append(lines, IngredientLine{Raw: raw})
			continue
		}
		q := p.Quantity * factor
		lines = append(lines, IngredientLine{
			Quantity:   &q,
			Unit:       p.Unit,
			Descriptor: p.Descriptor,
			Raw:        raw,
			Scaled:     true,
		})
	}
	return lines, nil
}
