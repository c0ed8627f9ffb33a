package shopping

import (
	"strings"

	"mealplanner/units"
)

// Render formats the consolidated list as one line per entry,
// "<quantity> <unit> <descriptor>" for quantified entries and the raw text
// verbatim for lines that never parsed. Quantities round to two decimals
// only here, at the final total.
func Render(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		if e.Quantified() {
			b.WriteString(units.Format(*e.Quantity, e.Unit))
			b.WriteString(" ")
			b.WriteString(e.Descriptor)
			b.WriteString("\n")
			continue
		}
		for _, raw := range e.RawTexts {
			b.WriteString(raw)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Unscaled returns the raw texts of every entry that could not be scaled
// numerically, so the caller can surface them for user attention.
func Unscaled(entries []Entry) []string {
	var out []string
	for _, e := range entries {
		if !e.Quantified() {
			out = append(out, e.RawTexts...)
		}
	}
	return out
}
