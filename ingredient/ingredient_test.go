package ingredient

import (
	"testing"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	r := NewResolver(nil)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "lowercases", raw: "Jasmine Rice", want: "jasmine rice"},
		{name: "singularizes trailing noun", raw: "eggs", want: "egg"},
		{name: "berries to berry", raw: "blueberries", want: "blueberry"},
		{name: "tomatoes to tomato", raw: "tomatoes", want: "tomato"},
		{name: "molasses stays", raw: "molasses", want: "molasses"},
		{name: "couscous stays", raw: "couscous", want: "couscous"},
		{name: "leaves to leaf", raw: "bay leaves", want: "bay leaf"},
		{name: "strips comma prep note", raw: "onion, diced", want: "onion"},
		{name: "strips prep words", raw: "finely chopped cilantro", want: "cilantro"},
		{name: "strips fresh", raw: "fresh basil leaves", want: "basil leaf"},
		{name: "strips parenthetical", raw: "chickpeas (canned)", want: "chickpea"},
		{name: "strips to taste", raw: "salt to taste", want: "salt"},
		{name: "synonym scallion", raw: "scallions", want: "green onion"},
		{name: "synonym after prep strip", raw: "chopped scallions", want: "green onion"},
		{name: "synonym garbanzo", raw: "garbanzo beans", want: "chickpea"},
		{name: "no similarity matching", raw: "red onion", want: "red onion"},
		{name: "all words stripped falls back to raw", raw: "chopped", want: "chopped"},
		{name: "whitespace collapsed", raw: "  olive   oil  ", want: "olive oil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			should.Equal(t, tt.want, r.Canonicalize(tt.raw))
		})
	}
}

func TestCanonicalizeDeterministic(t *testing.T) {
	r := NewResolver(nil)
	first := r.Canonicalize("Chopped Scallions, thinly sliced")
	for range 10 {
		should.Equal(t, first, r.Canonicalize("Chopped Scallions, thinly sliced"))
	}
}

func TestCanonicalizeCustomTable(t *testing.T) {
	r := NewResolver(SynonymTable{"rocket": "arugula"})
	should.Equal(t, "arugula", r.Canonicalize("rocket"))
	// A custom table replaces the defaults rather than extending them.
	should.Equal(t, "scallion", r.Canonicalize("scallions"))
}

func TestParseSynonyms(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    SynonymTable
		wantErr bool
	}{
		{
			name: "valid table lowercased",
			data: `{"Scallion": "Green Onion", "rocket": "arugula"}`,
			want: SynonymTable{"scallion": "green onion", "rocket": "arugula"},
		},
		{
			name:    "empty alias rejected",
			data:    `{"": "green onion"}`,
			wantErr: true,
		},
		{
			name:    "empty canonical rejected",
			data:    `{"scallion": ""}`,
			wantErr: true,
		},
		{
			name:    "not an object",
			data:    `["scallion"]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSynonyms([]byte(tt.data))
			if tt.wantErr {
				must.Error(t, err)
				return
			}
			must.NoError(t, err)
			should.Equal(t, tt.want, got)
		})
	}
}
