package recipe

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/recipe-costing-backend/internal/cost"
	"github.com/wichananm65/recipe-costing-backend/internal/product"
)

// Ingredient is one line of a recipe and maps to `recipe_ingredients`.
// Product fields are filled on reads only.
type Ingredient struct {
	ID                 int              `json:"id,omitempty"`
	RecipeID           int              `json:"recipe_id,omitempty"`
	ProductID          int              `json:"product_id"`
	Quantity           decimal.Decimal  `json:"quantity"`
	Unit               string           `json:"unit"`
	ProductName        string           `json:"product_name,omitempty"`
	ProductDescription *string          `json:"product_description,omitempty"`
	Vendors            []product.Vendor `json:"vendors,omitempty"`
}

// Recipe maps to the `recipes` table.
type Recipe struct {
	ID              int          `json:"id"`
	Name            string       `json:"name"`
	Description     *string      `json:"description"`
	Ingredients     []Ingredient `json:"ingredients,omitempty"`
	IngredientCount int          `json:"ingredient_count"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// CostIngredient converts the line into the cost engine's view.
func (i Ingredient) CostIngredient() cost.RecipeIngredient {
	return cost.RecipeIngredient{
		ProductID: i.ProductID,
		Quantity:  i.Quantity,
		Unit:      cost.Unit(i.Unit),
	}
}

func costIngredients(ings []Ingredient) []cost.RecipeIngredient {
	out := make([]cost.RecipeIngredient, 0, len(ings))
	for _, ing := range ings {
		out = append(out, ing.CostIngredient())
	}
	return out
}

func productIDs(ings []Ingredient) []int {
	ids := make([]int, 0, len(ings))
	for _, ing := range ings {
		ids = append(ids, ing.ProductID)
	}
	return ids
}
