// Package catalogfile reads products, vendor offers and recipes from a TOML
// file so costs can be computed without a database.
//
//	[[products]]
//	id = 1
//	name = "Flour"
//	  [[products.offers]]
//	  vendor = "Mill Co"
//	  price = "5.00"
//	  weight = "1000"
//	  unit = "g"
//	  default = true
//
//	[[recipes]]
//	name = "Bread"
//	  [[recipes.ingredients]]
//	  product_id = 1
//	  quantity = "500"
//	  unit = "g"
package catalogfile

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/recipe-costing-backend/internal/cost"
)

type Offer struct {
	Vendor  string          `toml:"vendor"`
	Price   decimal.Decimal `toml:"price"`
	Weight  decimal.Decimal `toml:"weight"`
	Unit    string          `toml:"unit"`
	Default bool            `toml:"default"`
}

type Product struct {
	ID     int     `toml:"id"`
	Name   string  `toml:"name"`
	Offers []Offer `toml:"offers"`
}

type Ingredient struct {
	ProductID int             `toml:"product_id"`
	Quantity  decimal.Decimal `toml:"quantity"`
	Unit      string          `toml:"unit"`
}

type Recipe struct {
	Name        string       `toml:"name"`
	Ingredients []Ingredient `toml:"ingredients"`
}

// File is a decoded catalog file.
type File struct {
	Products []Product `toml:"products"`
	Recipes  []Recipe  `toml:"recipes"`
}

// Load decodes and checks the catalog file at path.
func Load(path string) (*File, error) {
	var f File
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := f.check(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &f, nil
}

// Decode reads a catalog from r.
func Decode(r io.Reader) (*File, error) {
	var f File
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, err
	}
	if err := f.check(); err != nil {
		return nil, err
	}
	return &f, nil
}

func checkUndecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, k.String())
	}
	return fmt.Errorf("unknown keys: %s", strings.Join(names, ", "))
}

// check rejects structural problems. Bad units and quantities are left for the
// cost engine to report line by line.
func (f *File) check() error {
	seen := make(map[int]struct{}, len(f.Products))
	for i, p := range f.Products {
		if p.ID <= 0 {
			return fmt.Errorf("product %d: id must be positive", i)
		}
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("product %d: name is required", p.ID)
		}
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("product %d: duplicate id", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	names := make(map[string]struct{}, len(f.Recipes))
	for i, r := range f.Recipes {
		key := strings.ToLower(strings.TrimSpace(r.Name))
		if key == "" {
			return fmt.Errorf("recipe %d: name is required", i)
		}
		if _, ok := names[key]; ok {
			return fmt.Errorf("recipe %q: duplicate name", r.Name)
		}
		names[key] = struct{}{}
	}
	return nil
}

// Catalog converts the products for the cost engine, keeping offer order.
func (f *File) Catalog() cost.Catalog {
	catalog := make(cost.Catalog, len(f.Products))
	for _, p := range f.Products {
		offers := make([]cost.VendorOffer, 0, len(p.Offers))
		for _, o := range p.Offers {
			offers = append(offers, cost.VendorOffer{
				VendorName:    o.Vendor,
				Price:         o.Price,
				PackageWeight: o.Weight,
				PackageUnit:   unit(o.Unit),
				IsDefault:     o.Default,
			})
		}
		catalog[p.ID] = cost.Product{ID: p.ID, Name: p.Name, Offers: offers}
	}
	return catalog
}

// Recipe finds a recipe by name, ignoring case.
func (f *File) Recipe(name string) (Recipe, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, r := range f.Recipes {
		if strings.ToLower(strings.TrimSpace(r.Name)) == key {
			return r, true
		}
	}
	return Recipe{}, false
}

// CostIngredients converts the recipe lines for the cost engine.
func (r Recipe) CostIngredients() []cost.RecipeIngredient {
	out := make([]cost.RecipeIngredient, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		out = append(out, cost.RecipeIngredient{
			ProductID: ing.ProductID,
			Quantity:  ing.Quantity,
			Unit:      unit(ing.Unit),
		})
	}
	return out
}

// unit canonicalizes s when it names a known unit and passes it through
// otherwise, so the engine can report it.
func unit(s string) cost.Unit {
	if u, err := cost.ParseUnit(s); err == nil {
		return u
	}
	return cost.Unit(s)
}
