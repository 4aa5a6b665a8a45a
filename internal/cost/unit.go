package cost

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Unit is a measurement unit accepted for package sizes and ingredient quantities.
type Unit string

const (
	Gram       Unit = "g"
	Kilogram   Unit = "kg"
	Milligram  Unit = "mg"
	Ounce      Unit = "oz"
	Pound      Unit = "lb"
	Milliliter Unit = "ml"
	Liter      Unit = "l"
	Teaspoon   Unit = "tsp"
	Tablespoon Unit = "tbsp"
	Cup        Unit = "cup"
	Piece      Unit = "pcs"
)

// DefaultPackageUnit is used when a vendor offer does not name its package unit.
const DefaultPackageUnit = Gram

// AllUnits lists every supported unit in display order.
var AllUnits = []Unit{Gram, Kilogram, Milligram, Ounce, Pound, Milliliter, Liter, Teaspoon, Tablespoon, Cup, Piece}

// Dimension separates units that can be converted into each other.
type Dimension int

const (
	// Mass covers weights and volumes; volumes are treated as water (1 ml = 1 g).
	Mass Dimension = iota
	// Count covers pieces, which never convert to mass.
	Count
)

func (d Dimension) String() string {
	if d == Count {
		return "count"
	}
	return "mass"
}

// Dimension reports which dimension u belongs to.
func (u Unit) Dimension() Dimension {
	if u == Piece {
		return Count
	}
	return Mass
}

// Valid reports whether u is a member of the closed unit set.
func (u Unit) Valid() bool {
	for _, known := range AllUnits {
		if u == known {
			return true
		}
	}
	return false
}

// ParseUnit normalizes s (case and surrounding space) and checks it against the unit set.
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	if !u.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
	return u, nil
}

// UnitMode selects the conversion table.
type UnitMode string

const (
	// UnitModeCorrected converts milligrams with their real factor of 0.001.
	UnitModeCorrected UnitMode = "corrected"
	// UnitModeReference reproduces the legacy calculator, which had no milligram
	// case and therefore counted 1 mg as 1 g.
	UnitModeReference UnitMode = "reference"
)

// ParseUnitMode accepts "corrected" or "reference"; an empty string selects corrected.
func ParseUnitMode(s string) (UnitMode, error) {
	switch UnitMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", UnitModeCorrected:
		return UnitModeCorrected, nil
	case UnitModeReference:
		return UnitModeReference, nil
	default:
		return "", fmt.Errorf("unknown unit mode %q", s)
	}
}

// UnitTable maps every unit to its factor into the base unit (grams, or pieces for pcs).
type UnitTable struct {
	mode    UnitMode
	factors map[Unit]decimal.Decimal
}

var (
	// CorrectedUnits is the default table.
	CorrectedUnits = newUnitTable(UnitModeCorrected, decimal.RequireFromString("0.001"))
	// ReferenceUnits matches the legacy calculator byte for byte.
	ReferenceUnits = newUnitTable(UnitModeReference, decimal.NewFromInt(1))
)

func newUnitTable(mode UnitMode, milligram decimal.Decimal) UnitTable {
	return UnitTable{
		mode: mode,
		factors: map[Unit]decimal.Decimal{
			Gram:       decimal.NewFromInt(1),
			Milliliter: decimal.NewFromInt(1),
			Kilogram:   decimal.NewFromInt(1000),
			Liter:      decimal.NewFromInt(1000),
			Milligram:  milligram,
			Ounce:      decimal.RequireFromString("28.3495"),
			Pound:      decimal.RequireFromString("453.592"),
			Teaspoon:   decimal.NewFromInt(5),
			Tablespoon: decimal.NewFromInt(15),
			Cup:        decimal.NewFromInt(240),
			Piece:      decimal.NewFromInt(1),
		},
	}
}

// UnitTableFor returns the table for mode.
func UnitTableFor(mode UnitMode) UnitTable {
	if mode == UnitModeReference {
		return ReferenceUnits
	}
	return CorrectedUnits
}

// Mode reports which table this is.
func (t UnitTable) Mode() UnitMode { return t.mode }

// Factor returns the multiplier that converts one u into base units.
func (t UnitTable) Factor(u Unit) (decimal.Decimal, error) {
	f, ok := t.factors[u]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownUnit, string(u))
	}
	return f, nil
}

// ToBaseUnits converts quantity of unit into base units. Quantity must be positive.
func (t UnitTable) ToBaseUnits(quantity decimal.Decimal, unit Unit) (decimal.Decimal, error) {
	f, err := t.Factor(unit)
	if err != nil {
		return decimal.Zero, err
	}
	if !quantity.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s %s", ErrInvalidQuantity, quantity.String(), unit)
	}
	return quantity.Mul(f), nil
}

// ToBaseUnits converts with the corrected table.
func ToBaseUnits(quantity decimal.Decimal, unit Unit) (decimal.Decimal, error) {
	return CorrectedUnits.ToBaseUnits(quantity, unit)
}
