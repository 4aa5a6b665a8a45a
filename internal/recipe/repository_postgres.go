package recipe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	listRecipesQuery = `
		SELECT r.id, r.name, r.description, r.created_at, r.updated_at, COUNT(ri.id)
		FROM recipes r
		LEFT JOIN recipe_ingredients ri ON ri.recipe_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at DESC, r.id DESC
	`
	getRecipeByIDQuery = `
		SELECT id, name, description, created_at, updated_at
		FROM recipes
		WHERE id = $1
	`
	listIngredientsQuery = `
		SELECT ri.id, ri.recipe_id, ri.product_id, ri.quantity, ri.unit, p.name, p.description
		FROM recipe_ingredients ri
		JOIN products p ON ri.product_id = p.id
		WHERE ri.recipe_id = $1
		ORDER BY ri.id
	`
	insertRecipeQuery = `
		INSERT INTO recipes (name, description)
		VALUES ($1, $2)
		RETURNING id
	`
	updateRecipeQuery = `
		UPDATE recipes
		SET name = $1,
			description = $2,
			updated_at = NOW()
		WHERE id = $3
	`
	insertIngredientQuery = `
		INSERT INTO recipe_ingredients (recipe_id, product_id, quantity, unit)
		VALUES ($1, $2, $3, $4)
	`
	deleteIngredientsQuery = `DELETE FROM recipe_ingredients WHERE recipe_id = $1`
	deleteRecipeQuery      = `DELETE FROM recipes WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List counts ingredients in the same query instead of once per recipe.
func (r *PostgresRepository) List(ctx context.Context) ([]Recipe, error) {
	rows, err := r.db.QueryContext(ctx, listRecipesQuery)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	out := make([]Recipe, 0)
	for rows.Next() {
		var rec Recipe
		var description sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Name, &description, &rec.CreatedAt, &rec.UpdatedAt, &rec.IngredientCount); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		if description.Valid {
			rec.Description = &description.String
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Recipe, error) {
	var rec Recipe
	var description sql.NullString
	err := r.db.QueryRowContext(ctx, getRecipeByIDQuery, id).
		Scan(&rec.ID, &rec.Name, &description, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Recipe{}, ErrNotFound
		}
		return Recipe{}, fmt.Errorf("get recipe %d: %w", id, err)
	}
	if description.Valid {
		rec.Description = &description.String
	}

	rows, err := r.db.QueryContext(ctx, listIngredientsQuery, id)
	if err != nil {
		return Recipe{}, fmt.Errorf("list ingredients of recipe %d: %w", id, err)
	}
	defer rows.Close()

	rec.Ingredients = make([]Ingredient, 0)
	for rows.Next() {
		var ing Ingredient
		var productDescription sql.NullString
		if err := rows.Scan(&ing.ID, &ing.RecipeID, &ing.ProductID, &ing.Quantity, &ing.Unit, &ing.ProductName, &productDescription); err != nil {
			return Recipe{}, fmt.Errorf("scan ingredient: %w", err)
		}
		if productDescription.Valid {
			ing.ProductDescription = &productDescription.String
		}
		rec.Ingredients = append(rec.Ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return Recipe{}, err
	}
	rec.IngredientCount = len(rec.Ingredients)
	return rec, nil
}

// Create inserts the recipe and its ingredients in one transaction.
func (r *PostgresRepository) Create(ctx context.Context, rec Recipe) (Recipe, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Recipe{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var id int
	if err := tx.QueryRowContext(ctx, insertRecipeQuery, rec.Name, rec.Description).Scan(&id); err != nil {
		return Recipe{}, fmt.Errorf("insert recipe: %w", err)
	}
	if err := insertIngredients(ctx, tx, id, rec.Ingredients); err != nil {
		return Recipe{}, err
	}

	if err := tx.Commit(); err != nil {
		return Recipe{}, err
	}
	return r.GetByID(ctx, id)
}

// Update rewrites the recipe row and replaces its ingredients in one transaction.
func (r *PostgresRepository) Update(ctx context.Context, id int, rec Recipe) (Recipe, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Recipe{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, updateRecipeQuery, rec.Name, rec.Description, id)
	if err != nil {
		return Recipe{}, fmt.Errorf("update recipe %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Recipe{}, err
	}
	if affected == 0 {
		return Recipe{}, ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, deleteIngredientsQuery, id); err != nil {
		return Recipe{}, fmt.Errorf("clear ingredients of recipe %d: %w", id, err)
	}
	if err := insertIngredients(ctx, tx, id, rec.Ingredients); err != nil {
		return Recipe{}, err
	}

	if err := tx.Commit(); err != nil {
		return Recipe{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, deleteRecipeQuery, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func insertIngredients(ctx context.Context, tx *sql.Tx, recipeID int, ings []Ingredient) error {
	for i, ing := range ings {
		if _, err := tx.ExecContext(ctx, insertIngredientQuery, recipeID, ing.ProductID, ing.Quantity, ing.Unit); err != nil {
			return fmt.Errorf("insert ingredient %d: %w", i, err)
		}
	}
	return nil
}
