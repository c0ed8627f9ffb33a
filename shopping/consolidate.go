// Package shopping merges scaled ingredient lines from the selected recipes
// into one deduplicated shopping list.
package shopping

import (
	"sort"

	"mealplanner/ingredient"
	"mealplanner/recipe"
	"mealplanner/units"
)

// Selection pairs a chosen recipe with the serving count the user requested
// for it.
type Selection struct {
	Recipe   recipe.Recipe
	Servings int
}

// Entry is one line of the finished shopping list. Quantified entries carry a
// total in a display unit; entries whose lines never parsed carry the raw
// texts instead and a nil Quantity.
type Entry struct {
	Descriptor string
	Unit       units.Unit
	Quantity   *float64
	RawTexts   []string
}

// Quantified reports whether the entry has a numeric total.
func (e Entry) Quantified() bool {
	return e.Quantity != nil
}

// Consolidator merges ingredient lines using an identity resolver. Safe for
// concurrent use across sessions.
type Consolidator struct {
	resolver *ingredient.Resolver
}

func NewConsolidator(r *ingredient.Resolver) *Consolidator {
	return &Consolidator{resolver: r}
}

// group accumulates lines that share a descriptor key and unit class.
// Quantities accumulate in the class canonical unit so the total does not
// depend on input order; the display unit is the unit of the first
// contributing line.
type group struct {
	displayUnit units.Unit
	canonical   float64
}

// Consolidate scales every selection, canonicalizes each line's descriptor,
// and merges quantities per (descriptor key, unit class). Lines of the same
// descriptor in different unit classes split into one entry per class rather
// than failing the whole list. Unparsed lines become separate raw entries,
// never merged with quantified entries of the same descriptor. Output is
// sorted by descriptor key and deterministic for identical input.
func (c *Consolidator) Consolidate(selections []Selection) ([]Entry, error) {
	type groupKey struct {
		key   string
		class units.Class
	}

	groups := map[groupKey]*group{}
	raws := map[string][]string{} // descriptor key -> raw texts

	for _, sel := range selections {
		lines, err := recipe.Scale(sel.Recipe, sel.Servings)
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			if line.Quantity == nil {
				key := c.resolver.Canonicalize(line.Raw)
				raws[key] = append(raws[key], line.Raw)
				continue
			}

			key := c.resolver.Canonicalize(line.Descriptor)
			gk := groupKey{key: key, class: line.Unit.Class()}
			g, ok := groups[gk]
			if !ok {
				g = &group{displayUnit: line.Unit}
				groups[gk] = g
			}
			// Convert within a class never fails; a class mismatch would
			// already have landed in a different group.
			q, err := units.Convert(*line.Quantity, line.Unit, units.Canonical(gk.class))
			if err != nil {
				return nil, err
			}
			g.canonical += q
		}
	}

	entries := make([]Entry, 0, len(groups)+len(raws))
	for gk, g := range groups {
		total, err := units.Convert(g.canonical, units.Canonical(gk.class), g.displayUnit)
		if err != nil {
			return nil, err
		}
		t := total
		entries = append(entries, Entry{
			Descriptor: gk.key,
			Unit:       g.displayUnit,
			Quantity:   &t,
		})
	}
	for key, texts := range raws {
		sort.Strings(texts)
		entries = append(entries, Entry{Descriptor: key, RawTexts: texts})
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Descriptor != b.Descriptor {
			return a.Descriptor < b.Descriptor
		}
		// Quantified entries ahead of raw ones, then by unit tag.
		if a.Quantified() != b.Quantified() {
			return a.Quantified()
		}
		return a.Unit < b.Unit
	})

	return entries, nil
}
