// Package units models ingredient quantities and the fixed set of cooking
// units the planner understands. Units belong to a class (volume, weight,
// count) and convert within a class via fixed multiplicative factors; there
// are no cross-class conversions.
package units

import (
	"errors"
	"math"
	"strconv"
)

// Class groups units that are convertible into one another.
type Class int

const (
	ClassCount Class = iota
	ClassVolume
	ClassWeight
)

func (c Class) String() string {
	switch c {
	case ClassVolume:
		return "volume"
	case ClassWeight:
		return "weight"
	default:
		return "count"
	}
}

// Unit is a canonical unit tag. The zero value means "count" (unitless).
type Unit string

const (
	Count      Unit = ""
	Teaspoon   Unit = "tsp"
	Tablespoon Unit = "tbsp"
	Cup        Unit = "cup"
	Milliliter Unit = "ml"
	Liter      Unit = "l"
	Gram       Unit = "g"
	Kilogram   Unit = "kg"
	Ounce      Unit = "oz"
	Pound      Unit = "lb"
)

// All lists every supported unit, count included.
func All() []Unit {
	return []Unit{Count, Teaspoon, Tablespoon, Cup, Milliliter, Liter, Gram, Kilogram, Ounce, Pound}
}

var (
	ErrUnknownUnit       = errors.New("unknown unit")
	ErrIncompatibleUnits = errors.New("incompatible unit classes")
)

// factors holds the multiplier from each unit into its class canonical unit
// (ml for volume, g for weight). Count has no conversion partner so its
// factor is only used for identity conversions.
var factors = map[Unit]float64{
	Count:      1,
	Teaspoon:   4.92892,
	Tablespoon: 14.7868,
	Cup:        236.588,
	Milliliter: 1,
	Liter:      1000,
	Gram:       1,
	Kilogram:   1000,
	Ounce:      28.3495,
	Pound:      453.592,
}

var classes = map[Unit]Class{
	Count:      ClassCount,
	Teaspoon:   ClassVolume,
	Tablespoon: ClassVolume,
	Cup:        ClassVolume,
	Milliliter: ClassVolume,
	Liter:      ClassVolume,
	Gram:       ClassWeight,
	Kilogram:   ClassWeight,
	Ounce:      ClassWeight,
	Pound:      ClassWeight,
}

// Class reports the unit class a unit belongs to.
func (u Unit) Class() Class {
	return classes[u]
}

// Valid reports whether u is one of the supported unit tags.
func (u Unit) Valid() bool {
	_, ok := classes[u]
	return ok
}

// Canonical returns the canonical unit for a class (ml, g, or count).
func Canonical(c Class) Unit {
	switch c {
	case ClassVolume:
		return Milliliter
	case ClassWeight:
		return Gram
	default:
		return Count
	}
}

// Convert converts a quantity between two units of the same class. Converting
// across classes returns ErrIncompatibleUnits; count never converts to
// anything but itself.
func Convert(q float64, from, to Unit) (float64, error) {
	if !from.Valid() || !to.Valid() {
		return 0, ErrUnknownUnit
	}
	if from == to {
		return q, nil
	}
	if from.Class() != to.Class() || from.Class() == ClassCount {
		return 0, ErrIncompatibleUnits
	}
	return q * factors[from] / factors[to], nil
}

// Round rounds a quantity to the two-decimal display precision. Callers keep
// full precision while accumulating and round only when rendering.
func Round(q float64) float64 {
	return math.Round(q*100) / 100
}

// Format renders a quantity and unit for display, e.g. "1.5 cup" or "3" for
// count. The output parses back through ParseLine for every supported unit.
func Format(q float64, u Unit) string {
	s := strconv.FormatFloat(Round(q), 'f', -1, 64)
	if u == Count {
		return s
	}
	return s + " " + string(u)
}
