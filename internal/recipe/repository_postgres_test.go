package recipe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
)

var ingredientCols = []string{"id", "recipe_id", "product_id", "quantity", "unit", "name", "description"}

func TestPostgresList_CountsIngredients(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now()
	mock.ExpectQuery("FROM recipes r\\s+LEFT JOIN recipe_ingredients").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at", "updated_at", "count"}).
			AddRow(2, "Bread", nil, now, now, 1).
			AddRow(1, "Cake", "sweet", now, now, 3))

	recipes, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recipes) != 2 || recipes[1].IngredientCount != 3 {
		t.Fatalf("unexpected recipes %+v", recipes)
	}
	if recipes[1].Description == nil || *recipes[1].Description != "sweet" {
		t.Fatalf("expected description, got %v", recipes[1].Description)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGetByID_JoinsProductNames(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now()
	mock.ExpectQuery("FROM recipes\\s+WHERE id = \\$1").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at", "updated_at"}).
			AddRow(1, "Cake", nil, now, now))
	mock.ExpectQuery("FROM recipe_ingredients ri\\s+JOIN products p").WithArgs(1).
		WillReturnRows(sqlmock.NewRows(ingredientCols).
			AddRow(10, 1, 1, "500.00", "g", "Flour", "Type 00").
			AddRow(11, 1, 2, "0.50", "kg", "Sugar", nil))

	rec, err := repo.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if rec.IngredientCount != 2 || rec.Ingredients[1].ProductName != "Sugar" {
		t.Fatalf("unexpected recipe %+v", rec)
	}
	if !rec.Ingredients[1].Quantity.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("unexpected quantity %s", rec.Ingredients[1].Quantity)
	}
	if rec.Ingredients[0].ProductDescription == nil || rec.Ingredients[1].ProductDescription != nil {
		t.Fatalf("unexpected product descriptions")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM recipes\\s+WHERE id = \\$1").WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at", "updated_at"}))

	if _, err := repo.GetByID(context.Background(), 3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresCreate_InsertsIngredientsInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO recipes").WithArgs("Cake", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectExec("INSERT INTO recipe_ingredients").WithArgs(4, 1, sqlmock.AnyArg(), "g").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM recipes\\s+WHERE id = \\$1").WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at", "updated_at"}).
			AddRow(4, "Cake", nil, now, now))
	mock.ExpectQuery("FROM recipe_ingredients ri").WithArgs(4).
		WillReturnRows(sqlmock.NewRows(ingredientCols).AddRow(1, 4, 1, "500.00", "g", "Flour", nil))

	rec, err := repo.Create(context.Background(), Recipe{
		Name:        "Cake",
		Ingredients: []Ingredient{{ProductID: 1, Quantity: decimal.NewFromInt(500), Unit: "g"}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID != 4 || len(rec.Ingredients) != 1 {
		t.Fatalf("unexpected recipe %+v", rec)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresUpdate_NotFoundRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE recipes").WithArgs("Cake", sqlmock.AnyArg(), 8).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if _, err := repo.Update(context.Background(), 8, Recipe{Name: "Cake"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("DELETE FROM recipes").WithArgs(2).WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), 2); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
