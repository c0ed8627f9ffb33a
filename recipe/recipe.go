// Package recipe holds the recipe model returned by the lookup capability and
// the scaler that adjusts ingredient quantities to a requested serving count.
package recipe

import (
	"mealplanner/units"
)

// Recipe is one candidate dish as returned by the lookup capability. It is
// immutable once received.
type Recipe struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	SourceServings  int      `json:"source_servings"`
	IngredientLines []string `json:"ingredient_lines"`
	URL             string   `json:"url"`
	Image           string   `json:"image,omitempty"`
	CuisineTypes    []string `json:"cuisine_types,omitempty"`
	TotalTime       int      `json:"total_time,omitempty"` // minutes, 0 when unknown
}

// IngredientLine is the parsed, possibly scaled form of one recipe line.
// Quantity is nil when the line never parsed; such lines keep their raw text
// and are flagged as not auto-scaled.
type IngredientLine struct {
	Quantity   *float64
	Unit       units.Unit
	Descriptor string
	Raw        string
	Scaled     bool
}
