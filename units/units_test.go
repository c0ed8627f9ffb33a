package units

import (
	"testing"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name    string
		q       float64
		from    Unit
		to      Unit
		want    float64
		wantErr error
	}{
		{name: "identity", q: 2, from: Cup, to: Cup, want: 2},
		{name: "cup to ml", q: 1, from: Cup, to: Milliliter, want: 236.588},
		{name: "ml to cup", q: 236.588, from: Milliliter, to: Cup, want: 1},
		{name: "tbsp to tsp", q: 1, from: Tablespoon, to: Teaspoon, want: 3},
		{name: "kg to g", q: 1.5, from: Kilogram, to: Gram, want: 1500},
		{name: "lb to oz", q: 1, from: Pound, to: Ounce, want: 16},
		{name: "count identity", q: 3, from: Count, to: Count, want: 3},
		{name: "cross class", q: 1, from: Cup, to: Gram, wantErr: ErrIncompatibleUnits},
		{name: "count to cup", q: 1, from: Count, to: Cup, wantErr: ErrIncompatibleUnits},
		{name: "unknown unit", q: 1, from: Unit("bushel"), to: Cup, wantErr: ErrUnknownUnit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.q, tt.from, tt.to)
			if tt.wantErr != nil {
				must.ErrorIs(t, err, tt.wantErr)
				return
			}
			must.NoError(t, err)
			should.InDelta(t, tt.want, got, 1e-4)
		})
	}
}

func TestConvertRoundTrip(t *testing.T) {
	for _, u := range All() {
		if u == Count {
			continue
		}
		canonical := Canonical(u.Class())
		fwd, err := Convert(2.5, u, canonical)
		must.NoError(t, err, "unit %q", u)
		back, err := Convert(fwd, canonical, u)
		must.NoError(t, err, "unit %q", u)
		should.InDelta(t, 2.5, back, 1e-9, "unit %q", u)
	}
}

func TestCanonical(t *testing.T) {
	should.Equal(t, Milliliter, Canonical(ClassVolume))
	should.Equal(t, Gram, Canonical(ClassWeight))
	should.Equal(t, Count, Canonical(ClassCount))
}

func TestRound(t *testing.T) {
	should.Equal(t, 4.5, Round(4.5))
	should.Equal(t, 0.33, Round(1.0/3.0))
	should.Equal(t, 2.68, Round(2.675000001))
	should.Equal(t, 3.0, Round(2.999999))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		q    float64
		u    Unit
		want string
	}{
		{name: "count drops unit", q: 3, u: Count, want: "3"},
		{name: "whole quantity", q: 2, u: Cup, want: "2 cup"},
		{name: "fractional quantity", q: 1.5, u: Tablespoon, want: "1.5 tbsp"},
		{name: "rounds to two decimals", q: 1.0 / 3.0, u: Cup, want: "0.33 cup"},
		{name: "trailing zeros trimmed", q: 2.50, u: Gram, want: "2.5 g"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			should.Equal(t, tt.want, Format(tt.q, tt.u))
		})
	}
}

// Formatted output feeds back into consolidation when a plan is revised, so
// every supported unit must survive a format/parse cycle.
func TestFormatParsesBack(t *testing.T) {
	for _, u := range All() {
		line := Format(1.5, u) + " rice"
		p, err := ParseLine(line)
		must.NoError(t, err, "unit %q line %q", u, line)
		should.Equal(t, u, p.Unit, "line %q", line)
		should.InDelta(t, 1.5, p.Quantity, 1e-9, "line %q", line)
		should.Equal(t, "rice", p.Descriptor, "line %q", line)
	}
}
