package product

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/recipe-costing-backend/internal/validation"
)

func TestService_CatalogSkipsUnknownAndDuplicates(t *testing.T) {
	svc := NewService(NewInMemoryRepository(seedProducts()), 0)
	if svc.MaxVendors() != DefaultMaxVendors {
		t.Fatalf("expected default max vendors, got %d", svc.MaxVendors())
	}

	catalog, err := svc.Catalog(context.Background(), []int{1, 1, 42, 2})
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("expected 2 products, got %d", len(catalog))
	}
	flour := catalog[1]
	if len(flour.Offers) != 1 || !flour.Offers[0].IsDefault || flour.Offers[0].PackageUnit != "g" {
		t.Fatalf("unexpected flour offers %+v", flour.Offers)
	}
	if _, ok := catalog[42]; ok {
		t.Fatalf("unknown id must not appear in catalog")
	}
}

func TestService_CreateRejectsNegativeWeight(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil), 5)

	_, err := svc.Create(context.Background(), Product{
		Name:    "Butter",
		Vendors: []Vendor{{VendorName: "Dairy", Price: decimal.NewFromInt(3), Weight: decimal.NewFromInt(-1)}},
	})
	var ve *validation.Error
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Fields["vendor_0_weight"] != "Valid weight is required" {
		t.Fatalf("unexpected fields %v", ve.Fields)
	}
}

func TestService_CreateDefaultsPackageUnit(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil), 5)

	p, err := svc.Create(context.Background(), Product{
		Name:    "Butter",
		Vendors: []Vendor{{VendorName: "Dairy", Price: decimal.NewFromInt(3), Weight: decimal.NewFromInt(250)}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Vendors[0].PackageSize != "g" {
		t.Fatalf("expected g, got %q", p.Vendors[0].PackageSize)
	}
}

func TestService_CreateRejectsAmountsBeyondStoredScale(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil), 5)

	_, err := svc.Create(context.Background(), Product{
		Name: "Saffron",
		Vendors: []Vendor{{
			VendorName: "Spice Co",
			Price:      decimal.RequireFromString("0.00001"),
			Weight:     decimal.RequireFromString("0.00001"),
		}},
	})
	var ve *validation.Error
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ve.Fields["vendor_0_price"] != "Valid price is required" || ve.Fields["vendor_0_weight"] != "Valid weight is required" {
		t.Fatalf("unexpected fields %v", ve.Fields)
	}

	p, err := svc.Create(context.Background(), Product{
		Name: "Saffron",
		Vendors: []Vendor{{
			VendorName:  "Spice Co",
			Price:       decimal.RequireFromString("0.125"),
			Weight:      decimal.RequireFromString("0.001"),
			PackageSize: "kg",
		}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !p.Vendors[0].Price.Equal(decimal.RequireFromString("0.125")) {
		t.Fatalf("price must keep its precision, got %s", p.Vendors[0].Price)
	}
}
