package cost

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	DefaultCurrencySymbol = "$"
	DefaultDecimalPlaces  = 2
)

// FormatPrice renders amount with symbol, rounded half away from zero to places.
func FormatPrice(amount decimal.Decimal, symbol string, places int32) string {
	if places < 0 {
		places = 0
	}
	return symbol + amount.StringFixed(places)
}

// FormatFloat is FormatPrice for float input; NaN and infinities render as zero.
func FormatFloat(amount float64, symbol string, places int32) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return FormatPrice(decimal.Zero, symbol, places)
	}
	return FormatPrice(decimal.NewFromFloat(amount), symbol, places)
}

// Formatter carries the configured currency presentation.
type Formatter struct {
	Symbol string
	Places int32
}

// DefaultFormatter formats as "$0.00".
var DefaultFormatter = Formatter{Symbol: DefaultCurrencySymbol, Places: DefaultDecimalPlaces}

// Format renders amount.
func (f Formatter) Format(amount decimal.Decimal) string {
	return FormatPrice(amount, f.Symbol, f.Places)
}
