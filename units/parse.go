package units

import (
	"errors"
	"strconv"
	"strings"
)

// ErrParseFailure signals that no quantity could be read from an ingredient
// line. Callers must keep the raw line rather than drop it.
var ErrParseFailure = errors.New("unparseable quantity")

// Parsed is the structured form of one ingredient line.
type Parsed struct {
	Quantity   float64
	Unit       Unit
	Descriptor string
}

// aliases maps the spellings accepted in ingredient text to canonical unit
// tags. Matching is case-insensitive and ignores a trailing period.
var aliases = map[string]Unit{
	"tsp": Teaspoon, "tsps": Teaspoon, "teaspoon": Teaspoon, "teaspoons": Teaspoon,
	"tbsp": Tablespoon, "tbsps": Tablespoon, "tablespoon": Tablespoon, "tablespoons": Tablespoon,
	"cup": Cup, "cups": Cup,
	"ml": Milliliter, "milliliter": Milliliter, "milliliters": Milliliter, "millilitre": Milliliter, "millilitres": Milliliter,
	"l": Liter, "liter": Liter, "liters": Liter, "litre": Liter, "litres": Liter,
	"g": Gram, "gram": Gram, "grams": Gram,
	"kg": Kilogram, "kilogram": Kilogram, "kilograms": Kilogram,
	"oz": Ounce, "ounce": Ounce, "ounces": Ounce,
	"lb": Pound, "lbs": Pound, "pound": Pound, "pounds": Pound,
}

// ParseLine parses one raw ingredient line into quantity, unit, and
// descriptor. It recognizes decimals ("1.5"), fractions ("1/2"), mixed
// numbers ("1 1/2"), and ranges ("2-3", resolved to the upper bound). A line
// without a leading quantity returns ErrParseFailure.
func ParseLine(text string) (Parsed, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Parsed{}, ErrParseFailure
	}

	qty, ok := parseNumber(fields[0])
	if !ok {
		return Parsed{}, ErrParseFailure
	}
	rest := fields[1:]

	// Mixed number: whole part followed by a fraction ("1 1/2 cups").
	if len(rest) > 0 && strings.Contains(rest[0], "/") {
		if frac, ok := parseNumber(rest[0]); ok {
			qty += frac
			rest = rest[1:]
		}
	}

	unit := Count
	if len(rest) > 0 {
		if u, ok := lookupUnit(rest[0]); ok {
			unit = u
			rest = rest[1:]
		}
	}

	// "2 cups of rice" reads the same as "2 cups rice".
	if len(rest) > 0 && strings.EqualFold(rest[0], "of") {
		rest = rest[1:]
	}

	desc := strings.TrimSpace(strings.Join(rest, " "))
	if desc == "" {
		return Parsed{}, ErrParseFailure
	}

	return Parsed{Quantity: qty, Unit: unit, Descriptor: desc}, nil
}

func lookupUnit(tok string) (Unit, bool) {
	tok = strings.ToLower(strings.TrimSuffix(tok, "."))
	u, ok := aliases[tok]
	return u, ok
}

// parseNumber reads a decimal, fraction, or range token. Ranges resolve to
// the upper bound so the shopping list never comes up short.
func parseNumber(tok string) (float64, bool) {
	if i := strings.IndexAny(tok, "-–"); i > 0 {
		upper := tok[i:]
		upper = strings.TrimLeft(upper, "-–")
		return parseNumber(upper)
	}

	if num, den, ok := strings.Cut(tok, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}

	f, err := strconv.ParseFloat(tok, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return f, true
}
