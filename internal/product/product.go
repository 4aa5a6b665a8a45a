package product

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/recipe-costing-backend/internal/cost"
)

// Vendor is one supplier's package offer for a product and maps to the
// `product_vendors` table. JSON tags follow the snake_case wire format the
// frontend already speaks.
type Vendor struct {
	ID          int             `json:"id,omitempty"`
	ProductID   int             `json:"product_id,omitempty"`
	VendorName  string          `json:"vendor_name"`
	Price       decimal.Decimal `json:"price"`
	Weight      decimal.Decimal `json:"weight"`
	PackageSize string          `json:"package_size"`
	IsDefault   bool            `json:"is_default"`
}

// Product is an ingredient that can be bought from one or more vendors and maps
// to the `products` table.
type Product struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Vendors     []Vendor  `json:"vendors"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Offer converts the vendor row into the cost engine's view.
func (v Vendor) Offer() cost.VendorOffer {
	return cost.VendorOffer{
		VendorName:    v.VendorName,
		Price:         v.Price,
		PackageWeight: v.Weight,
		PackageUnit:   cost.Unit(v.PackageSize),
		IsDefault:     v.IsDefault,
	}
}

// CostProduct converts p into the cost engine's view, keeping vendor order.
func (p Product) CostProduct() cost.Product {
	offers := make([]cost.VendorOffer, 0, len(p.Vendors))
	for _, v := range p.Vendors {
		offers = append(offers, v.Offer())
	}
	return cost.Product{ID: p.ID, Name: p.Name, Offers: offers}
}
