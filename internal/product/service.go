package product

import (
	"context"
	"strconv"
	"strings"

	"github.com/wichananm65/recipe-costing-backend/internal/cost"
	"github.com/wichananm65/recipe-costing-backend/internal/validation"
)

// DefaultMaxVendors mirrors MAX_VENDORS_PER_PRODUCT's default.
const DefaultMaxVendors = 10

type Service struct {
	repo       Repository
	maxVendors int
}

func NewService(repo Repository, maxVendors int) *Service {
	if maxVendors <= 0 {
		maxVendors = DefaultMaxVendors
	}
	return &Service{repo: repo, maxVendors: maxVendors}
}

// MaxVendors is the per-product vendor limit.
func (s *Service) MaxVendors() int { return s.maxVendors }

func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int) (Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	p, err := s.normalize(p)
	if err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id int, p Product) (Product, error) {
	p, err := s.normalize(p)
	if err != nil {
		return Product{}, err
	}
	return s.repo.Update(ctx, id, p)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// ListByIDs returns the products with the given ids; duplicates and unknown ids
// are dropped.
func (s *Service) ListByIDs(ctx context.Context, ids []int) ([]Product, error) {
	return s.repo.ListByIDs(ctx, uniqueIDs(ids))
}

// Catalog loads the products with the given ids for the cost engine. Missing
// ids are simply absent from the result; the engine decides what that means.
func (s *Service) Catalog(ctx context.Context, ids []int) (cost.Catalog, error) {
	products, err := s.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return NewCatalog(products), nil
}

// NewCatalog indexes products by id in the cost engine's form.
func NewCatalog(products []Product) cost.Catalog {
	catalog := make(cost.Catalog, len(products))
	for _, p := range products {
		catalog[p.ID] = p.CostProduct()
	}
	return catalog
}

// normalize trims text fields, fills the default package unit and validates
// the payload, returning a *validation.Error listing every problem at once.
func (s *Service) normalize(p Product) (Product, error) {
	errs := validation.Errors{}

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		errs.Add("name", "Product name is required")
	}
	if p.Description != nil {
		d := strings.TrimSpace(*p.Description)
		if d == "" {
			p.Description = nil
		} else {
			p.Description = &d
		}
	}
	if len(p.Vendors) > s.maxVendors {
		errs.Add("vendors", "Maximum %d vendors allowed per product", s.maxVendors)
	}

	vendors := make([]Vendor, 0, len(p.Vendors))
	for i, v := range p.Vendors {
		v.VendorName = strings.TrimSpace(v.VendorName)
		if v.VendorName == "" {
			errs.Add(vendorField(i, "name"), "Vendor name is required")
		}
		if !validation.PositiveAmount(v.Price) {
			errs.Add(vendorField(i, "price"), "Valid price is required")
		}
		if !validation.PositiveAmount(v.Weight) {
			errs.Add(vendorField(i, "weight"), "Valid weight is required")
		}
		if strings.TrimSpace(v.PackageSize) == "" {
			v.PackageSize = string(cost.DefaultPackageUnit)
		} else if u, err := cost.ParseUnit(v.PackageSize); err != nil {
			errs.Add(vendorField(i, "package_size"), "Unknown package unit %q", v.PackageSize)
		} else {
			v.PackageSize = string(u)
		}
		vendors = append(vendors, v)
	}
	p.Vendors = vendors

	if err := errs.Err(); err != nil {
		return Product{}, err
	}
	return p, nil
}

func vendorField(i int, name string) string {
	return "vendor_" + strconv.Itoa(i) + "_" + name
}

func uniqueIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
