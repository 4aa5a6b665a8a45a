// Package cost turns vendor package prices into recipe costs.
//
// All quantities are normalized to a base unit (grams, with volumes treated as
// water, or pieces) before prices are compared or multiplied. The package holds
// no state besides the immutable Engine configuration and is safe for
// concurrent use.
package cost

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// VendorOffer is one vendor's price for a package of a product.
type VendorOffer struct {
	VendorName    string          `json:"vendor_name"`
	Price         decimal.Decimal `json:"price"`
	PackageWeight decimal.Decimal `json:"weight"`
	PackageUnit   Unit            `json:"package_size"`
	IsDefault     bool            `json:"is_default"`
}

// Product is the read-only view of a product the engine prices against.
type Product struct {
	ID     int
	Name   string
	Offers []VendorOffer
}

// Catalog resolves product ids.
type Catalog map[int]Product

// RecipeIngredient references a catalog product by id.
type RecipeIngredient struct {
	ProductID int             `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      Unit            `json:"unit"`
}

// Policy decides what happens when a single ingredient cannot be priced.
type Policy string

const (
	// Lenient counts unpriceable ingredients as zero and reports them as warnings.
	Lenient Policy = "lenient"
	// Strict aborts the recipe on the first unpriceable ingredient.
	Strict Policy = "strict"
)

// ParsePolicy accepts "lenient" or "strict"; an empty string selects lenient.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", Lenient:
		return Lenient, nil
	case Strict:
		return Strict, nil
	default:
		return "", fmt.Errorf("unknown missing product policy %q", s)
	}
}

// Engine computes costs with a fixed unit table and policy.
type Engine struct {
	units  UnitTable
	policy Policy
}

// Option configures an Engine.
type Option func(*Engine)

// WithUnitTable replaces the default corrected table.
func WithUnitTable(t UnitTable) Option {
	return func(e *Engine) { e.units = t }
}

// WithPolicy replaces the default lenient policy.
func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// NewEngine returns an engine using the corrected unit table and the lenient policy
// unless options say otherwise.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{units: CorrectedUnits, policy: Lenient}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Units returns the engine's conversion table.
func (e *Engine) Units() UnitTable { return e.units }

// Policy returns the engine's missing-product policy.
func (e *Engine) Policy() Policy { return e.policy }

// ToBaseUnits converts quantity of unit with the engine's table.
func (e *Engine) ToBaseUnits(quantity decimal.Decimal, unit Unit) (decimal.Decimal, error) {
	return e.units.ToBaseUnits(quantity, unit)
}

// UnitPrice returns the offer's price per base unit. The result is not rounded.
func (e *Engine) UnitPrice(offer VendorOffer) (decimal.Decimal, error) {
	weight, err := e.packageWeight(offer)
	if err != nil {
		return decimal.Zero, err
	}
	return offer.Price.Div(weight), nil
}

// packageWeight checks the offer and returns its package size in base units.
func (e *Engine) packageWeight(offer VendorOffer) (decimal.Decimal, error) {
	if offer.Price.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative price %s", ErrInvalidQuantity, offer.Price.String())
	}
	weight, err := e.units.ToBaseUnits(offer.PackageWeight, packageUnit(offer))
	if err != nil {
		return decimal.Zero, fmt.Errorf("package of %q: %w", offer.VendorName, err)
	}
	if weight.IsZero() {
		return decimal.Zero, fmt.Errorf("package of %q: %w", offer.VendorName, ErrDivisionByZero)
	}
	return weight, nil
}

// SelectDefaultOffer returns the first offer flagged default, or the first offer
// when none is flagged. It returns false only for an empty slice.
func SelectDefaultOffer(offers []VendorOffer) (VendorOffer, bool) {
	if len(offers) == 0 {
		return VendorOffer{}, false
	}
	for _, o := range offers {
		if o.IsDefault {
			return o, true
		}
	}
	return offers[0], true
}

// IngredientCost prices one ingredient. A product without offers costs zero;
// a product missing from the catalog is ErrUnknownProduct regardless of policy.
func (e *Engine) IngredientCost(ing RecipeIngredient, catalog Catalog) (decimal.Decimal, error) {
	line := e.priceLine(0, ing, catalog)
	return line.Cost, line.err
}

// RecipeCost sums the cost of every ingredient. Under the lenient policy the
// returned error is always nil and unpriceable lines show up in Warnings with a
// zero cost; under the strict policy the first failing line is returned.
func (e *Engine) RecipeCost(ings []RecipeIngredient, catalog Catalog) (Breakdown, error) {
	b := Breakdown{Total: decimal.Zero, Lines: make([]Line, 0, len(ings))}
	for i, ing := range ings {
		line := e.priceLine(i, ing, catalog)
		if line.err != nil {
			if e.policy == Strict {
				return Breakdown{}, fmt.Errorf("ingredient %d (product %d): %w", i, ing.ProductID, line.err)
			}
			b.Warnings = append(b.Warnings, Warning{
				Index:     i,
				ProductID: ing.ProductID,
				Kind:      line.Status,
				Message:   line.err.Error(),
			})
		}
		b.Total = b.Total.Add(line.Cost)
		b.Lines = append(b.Lines, line)
	}
	return b, nil
}

func (e *Engine) priceLine(i int, ing RecipeIngredient, catalog Catalog) Line {
	line := Line{
		Index:     i,
		ProductID: ing.ProductID,
		Quantity:  ing.Quantity,
		Unit:      ing.Unit,
		Cost:      decimal.Zero,
		UnitPrice: decimal.Zero,
	}

	product, ok := catalog[ing.ProductID]
	if !ok {
		return line.fail(StatusUnknownProduct, fmt.Errorf("%w: %d", ErrUnknownProduct, ing.ProductID))
	}
	line.ProductName = product.Name

	offer, ok := SelectDefaultOffer(product.Offers)
	if !ok {
		line.Status = StatusNoOffer
		return line
	}
	line.Offer = &offer

	if ing.Unit.Valid() && ing.Unit.Dimension() != packageUnit(offer).Dimension() {
		return line.fail(StatusInvalid, fmt.Errorf("%w: %s ingredient priced by %s package",
			ErrIncompatibleUnits, ing.Unit.Dimension(), packageUnit(offer).Dimension()))
	}

	weight, err := e.packageWeight(offer)
	if err != nil {
		return line.fail(StatusInvalid, err)
	}
	base, err := e.units.ToBaseUnits(ing.Quantity, ing.Unit)
	if err != nil {
		return line.fail(StatusInvalid, err)
	}

	// Multiply before dividing so whole packages cost exactly their price.
	line.UnitPrice = offer.Price.Div(weight)
	line.BaseQuantity = base
	line.Cost = offer.Price.Mul(base).Div(weight)
	line.Status = StatusPriced
	return line
}

func packageUnit(o VendorOffer) Unit {
	if o.PackageUnit == "" {
		return DefaultPackageUnit
	}
	return o.PackageUnit
}

// IsDataError reports whether err came from bad catalog or ingredient data
// rather than from the caller's environment.
func IsDataError(err error) bool {
	return errors.Is(err, ErrUnknownUnit) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrUnknownProduct) ||
		errors.Is(err, ErrDivisionByZero) ||
		errors.Is(err, ErrIncompatibleUnits)
}
