package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
)

var (
	productCols = []string{"id", "name", "description", "created_at", "updated_at"}
	vendorCols  = []string{"id", "product_id", "vendor_name", "price", "weight", "package_size", "is_default"}
)

func TestList_LoadsVendorsInOneQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT id, name, description, created_at, updated_at\\s+FROM products\\s+ORDER BY").
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(2, "Sugar", nil, now, now).
			AddRow(1, "Flour", "Type 00", now, now))
	mock.ExpectQuery("FROM product_vendors").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(vendorCols).
			AddRow(10, 1, "Mill Co", "5.00", "1000.00", "g", true).
			AddRow(11, 1, "Corner Shop", "6.50", "1.00", "kg", false).
			AddRow(12, 2, "Cane Ltd", "2.50", "1.00", "kg", false))

	products, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].Description != nil {
		t.Fatalf("expected nil description for sugar, got %q", *products[0].Description)
	}
	if len(products[1].Vendors) != 2 || products[1].Vendors[0].VendorName != "Mill Co" {
		t.Fatalf("unexpected flour vendors %+v", products[1].Vendors)
	}
	if !products[1].Vendors[0].Price.Equal(decimal.RequireFromString("5")) {
		t.Fatalf("unexpected price %s", products[1].Vendors[0].Price)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM products\\s+WHERE id = \\$1").WithArgs(9).
		WillReturnRows(sqlmock.NewRows(productCols))

	_, err = repo.GetByID(context.Background(), 9)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListByIDs_EmptySkipsQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	products, err := repo.ListByIDs(context.Background(), nil)
	if err != nil || len(products) != 0 {
		t.Fatalf("expected empty result, got %v %v", products, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected queries: %v", err)
	}
}

func TestCreate_InsertsVendorsInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO products").
		WithArgs("Flour", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, now, now))
	mock.ExpectExec("INSERT INTO product_vendors").
		WithArgs(7, "Mill Co", sqlmock.AnyArg(), sqlmock.AnyArg(), "g", true).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO product_vendors").
		WithArgs(7, "Corner Shop", sqlmock.AnyArg(), sqlmock.AnyArg(), "kg", false).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM products\\s+WHERE id = \\$1").WithArgs(7).
		WillReturnRows(sqlmock.NewRows(productCols).AddRow(7, "Flour", nil, now, now))
	mock.ExpectQuery("FROM product_vendors").WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(vendorCols).
			AddRow(1, 7, "Mill Co", "5.00", "1000.00", "g", true).
			AddRow(2, 7, "Corner Shop", "6.50", "1.00", "kg", false))

	created, err := repo.Create(context.Background(), Product{
		Name: "Flour",
		Vendors: []Vendor{
			{VendorName: "Mill Co", Price: decimal.RequireFromString("5.00"), Weight: decimal.NewFromInt(1000), PackageSize: "g", IsDefault: true},
			{VendorName: "Corner Shop", Price: decimal.RequireFromString("6.50"), Weight: decimal.NewFromInt(1), PackageSize: "kg"},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != 7 || len(created.Vendors) != 2 {
		t.Fatalf("unexpected product %+v", created)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreate_RollsBackOnVendorFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO products").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(3, now, now))
	mock.ExpectExec("INSERT INTO product_vendors").WillReturnError(errors.New("constraint violated"))
	mock.ExpectRollback()

	_, err = repo.Create(context.Background(), Product{
		Name:    "Salt",
		Vendors: []Vendor{{VendorName: "X", Price: decimal.NewFromInt(1), Weight: decimal.NewFromInt(1), PackageSize: "kg"}},
	})
	if err == nil {
		t.Fatalf("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdate_NotFoundRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products").
		WithArgs("Flour", sqlmock.AnyArg(), 5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err = repo.Update(context.Background(), 5, Product{Name: "Flour"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdate_ReplacesVendors(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products").
		WithArgs("Flour", sqlmock.AnyArg(), 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM product_vendors").WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO product_vendors").
		WithArgs(5, "Mill Co", sqlmock.AnyArg(), sqlmock.AnyArg(), "kg", false).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM products\\s+WHERE id = \\$1").WithArgs(5).
		WillReturnRows(sqlmock.NewRows(productCols).AddRow(5, "Flour", nil, now, now))
	mock.ExpectQuery("FROM product_vendors").WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(vendorCols).AddRow(3, 5, "Mill Co", "4.00", "1.00", "kg", false))

	updated, err := repo.Update(context.Background(), 5, Product{
		Name:    "Flour",
		Vendors: []Vendor{{VendorName: "Mill Co", Price: decimal.NewFromInt(4), Weight: decimal.NewFromInt(1), PackageSize: "kg"}},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(updated.Vendors) != 1 || updated.Vendors[0].ID != 3 {
		t.Fatalf("unexpected vendors %+v", updated.Vendors)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("DELETE FROM products").WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 4); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
