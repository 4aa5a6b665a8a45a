// Package validation collects field-level problems in request payloads so a
// handler can report all of them in one response.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxDecimalPlaces is the scale of the stored price, weight and quantity
// columns (NUMERIC(12, 4)).
const MaxDecimalPlaces = 4

var maxAmount = decimal.New(1, 12-MaxDecimalPlaces)

// PositiveAmount reports whether d is greater than zero and can be stored
// without rounding.
func PositiveAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Round(MaxDecimalPlaces)) && d.LessThan(maxAmount)
}

// Error lists every problem found in a payload, keyed by field name
// (`name`, `vendors`, `vendor_0_price`, `ingredient_2_unit`, ...).
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

// Errors accumulates field messages; the first message for a field wins.
type Errors map[string]string

func (e Errors) Add(field, format string, args ...any) {
	if _, ok := e[field]; ok {
		return
	}
	e[field] = fmt.Sprintf(format, args...)
}

// Err returns nil when nothing was added, otherwise an *Error.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return &Error{Fields: e}
}
