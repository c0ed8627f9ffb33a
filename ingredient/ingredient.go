// Package ingredient resolves free-text ingredient descriptors to canonical
// keys. Two lines merge in the shopping list only when their keys are equal;
// the resolver never matches on similarity, so an ambiguous descriptor stays
// a separate entry instead of risking a wrong merge.
package ingredient

import (
	"regexp"
	"strings"
)

// SynonymTable maps descriptor spellings to one canonical key. It is static
// configuration data, immutable after process start.
type SynonymTable map[string]string

// DefaultSynonyms is the compiled-in table used when no external table is
// configured. Keys and values are already in canonical (lowercase, singular)
// form.
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		"scallion":       "green onion",
		"spring onion":   "green onion",
		"coriander leaf": "cilantro",
		"garbanzo bean":  "chickpea",
		"courgette":      "zucchini",
		"aubergine":      "eggplant",
		"capsicum":       "bell pepper",
		"corn starch":    "cornstarch",
		"powdered sugar": "confectioners sugar",
		"icing sugar":    "confectioners sugar",
	}
}

// prepWords are preparation notes stripped from descriptors. They describe
// what happens to an ingredient, not what it is.
var prepWords = map[string]bool{
	"chopped": true, "diced": true, "minced": true, "sliced": true,
	"grated": true, "shredded": true, "peeled": true, "crushed": true,
	"melted": true, "softened": true, "drained": true, "rinsed": true,
	"halved": true, "quartered": true, "trimmed": true, "divided": true,
	"fresh": true, "freshly": true, "finely": true, "roughly": true,
	"thinly": true, "coarsely": true, "optional": true, "large": true,
	"small": true, "medium": true,
}

var prepPhrases = []string{
	"to taste",
	"for serving",
	"for garnish",
	"plus more",
}

var (
	parenRe = regexp.MustCompile(`\([^)]*\)`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// Resolver canonicalizes descriptors using a synonym table. Safe for
// concurrent use; the table is read-only after construction.
type Resolver struct {
	synonyms SynonymTable
}

// NewResolver builds a resolver. A nil table falls back to DefaultSynonyms.
func NewResolver(table SynonymTable) *Resolver {
	if table == nil {
		table = DefaultSynonyms()
	}
	return &Resolver{synonyms: table}
}

// Canonicalize maps a raw descriptor to its canonical key: lowercase, strip
// parenthetical asides and preparation notes, singularize the trailing noun,
// then apply the synonym table.
func (r *Resolver) Canonicalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = parenRe.ReplaceAllString(s, " ")

	// Anything after the first comma is a preparation note ("onion, diced").
	if head, _, ok := strings.Cut(s, ","); ok {
		s = head
	}

	for _, phrase := range prepPhrases {
		s = strings.ReplaceAll(s, phrase, " ")
	}

	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if !prepWords[w] {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return strings.TrimSpace(spaceRe.ReplaceAllString(strings.ToLower(raw), " "))
	}
	kept[len(kept)-1] = singularize(kept[len(kept)-1])
	s = strings.Join(kept, " ")

	if canon, ok := r.synonyms[s]; ok {
		return canon
	}
	return s
}

// singularExceptions covers nouns where the suffix rules below would mangle
// the word.
var singularExceptions = map[string]string{
	"molasses":  "molasses",
	"couscous":  "couscous",
	"hummus":    "hummus",
	"asparagus": "asparagus",
	"leaves":    "leaf",
	"loaves":    "loaf",
}

func singularize(w string) string {
	if s, ok := singularExceptions[w]; ok {
		return s
	}
	switch {
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y" // berries -> berry
	case strings.HasSuffix(w, "oes") && len(w) > 4:
		return w[:len(w)-2] // tomatoes -> tomato
	case strings.HasSuffix(w, "sses"), strings.HasSuffix(w, "shes"), strings.HasSuffix(w, "ches"), strings.HasSuffix(w, "xes"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "ss"), strings.HasSuffix(w, "us"):
		return w
	case strings.HasSuffix(w, "s") && len(w) > 3:
		return w[:len(w)-1]
	}
	return w
}
