package cost

import "github.com/shopspring/decimal"

// LineStatus describes how a recipe line was priced.
type LineStatus string

const (
	StatusPriced         LineStatus = "priced"
	StatusNoOffer        LineStatus = "no_offer"
	StatusUnknownProduct LineStatus = "unknown_product"
	StatusInvalid        LineStatus = "invalid"
)

// Line is the priced form of one recipe ingredient.
type Line struct {
	Index        int             `json:"index"`
	ProductID    int             `json:"product_id"`
	ProductName  string          `json:"product_name,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         Unit            `json:"unit"`
	BaseQuantity decimal.Decimal `json:"base_quantity"`
	Offer        *VendorOffer    `json:"vendor,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Cost         decimal.Decimal `json:"cost"`
	Status       LineStatus      `json:"status"`

	err error
}

func (l Line) fail(status LineStatus, err error) Line {
	l.Status = status
	l.Cost = decimal.Zero
	l.err = err
	return l
}

// Err returns the reason the line could not be priced, if any.
func (l Line) Err() error { return l.err }

// Warning reports a line that was counted as zero under the lenient policy.
type Warning struct {
	Index     int        `json:"index"`
	ProductID int        `json:"product_id"`
	Kind      LineStatus `json:"kind"`
	Message   string     `json:"message"`
}

// Breakdown is the result of pricing a whole recipe.
type Breakdown struct {
	Total    decimal.Decimal `json:"total"`
	Lines    []Line          `json:"lines"`
	Warnings []Warning       `json:"warnings,omitempty"`
}

// Complete reports whether every line was priced or legitimately had no offer.
func (b Breakdown) Complete() bool { return len(b.Warnings) == 0 }
