package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	productColumns = `id, name, description, created_at, updated_at`

	listProductsQuery = `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC, id DESC
	`
	getProductByIDQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`
	listProductsByIDsQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1::int[])
		ORDER BY id
	`
	listVendorsQuery = `
		SELECT id, product_id, vendor_name, price, weight, package_size, is_default
		FROM product_vendors
		WHERE product_id = ANY($1::int[])
		ORDER BY product_id, is_default DESC, id ASC
	`
	insertProductQuery = `
		INSERT INTO products (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	updateProductQuery = `
		UPDATE products
		SET name = $1,
			description = $2,
			updated_at = NOW()
		WHERE id = $3
	`
	insertVendorQuery = `
		INSERT INTO product_vendors (product_id, vendor_name, price, weight, package_size, is_default)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	deleteVendorsQuery = `DELETE FROM product_vendors WHERE product_id = $1`
	deleteProductQuery = `DELETE FROM products WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, listProductsQuery)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachVendors(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	products := []Product{p}
	if err := r.attachVendors(ctx, products); err != nil {
		return Product{}, err
	}
	return products[0], nil
}

// ListByIDs loads the requested products and all of their vendors with two
// queries, whatever the number of ids.
func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	rows, err := r.db.QueryContext(ctx, listProductsByIDsQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("list products by ids: %w", err)
	}
	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachVendors(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// Create inserts the product and its vendors in a single transaction.
func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Product{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := tx.QueryRowContext(ctx, insertProductQuery, p.Name, p.Description).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	if err := insertVendors(ctx, tx, p.ID, p.Vendors); err != nil {
		return Product{}, err
	}

	if err := tx.Commit(); err != nil {
		return Product{}, err
	}
	return r.GetByID(ctx, p.ID)
}

// Update rewrites the product row and replaces its vendors in one transaction.
func (r *PostgresRepository) Update(ctx context.Context, id int, p Product) (Product, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Product{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, updateProductQuery, p.Name, p.Description, id)
	if err != nil {
		return Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Product{}, err
	}
	if affected == 0 {
		return Product{}, ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, deleteVendorsQuery, id); err != nil {
		return Product{}, fmt.Errorf("clear vendors of product %d: %w", id, err)
	}
	if err := insertVendors(ctx, tx, id, p.Vendors); err != nil {
		return Product{}, err
	}

	if err := tx.Commit(); err != nil {
		return Product{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes the product; vendors and recipe lines go with it through
// ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, deleteProductQuery, id)
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

func insertVendors(ctx context.Context, tx *sql.Tx, productID int, vendors []Vendor) error {
	for _, v := range vendors {
		if _, err := tx.ExecContext(ctx, insertVendorQuery,
			productID,
			v.VendorName,
			v.Price,
			v.Weight,
			v.PackageSize,
			v.IsDefault,
		); err != nil {
			return fmt.Errorf("insert vendor %q: %w", v.VendorName, err)
		}
	}
	return nil
}

func (r *PostgresRepository) attachVendors(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]int, 0, len(products))
	index := make(map[int]int, len(products))
	for i, p := range products {
		ids = append(ids, p.ID)
		index[p.ID] = i
		products[i].Vendors = []Vendor{}
	}

	rows, err := r.db.QueryContext(ctx, listVendorsQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v Vendor
		if err := rows.Scan(&v.ID, &v.ProductID, &v.VendorName, &v.Price, &v.Weight, &v.PackageSize, &v.IsDefault); err != nil {
			return fmt.Errorf("scan vendor: %w", err)
		}
		if i, ok := index[v.ProductID]; ok {
			products[i].Vendors = append(products[i].Vendors, v)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(scanner rowScanner) (Product, error) {
	p := Product{}
	var description sql.NullString
	if err := scanner.Scan(&p.ID, &p.Name, &description, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Product{}, err
	}
	if description.Valid {
		p.Description = &description.String
	}
	return p, nil
}

func scanProducts(rows *sql.Rows) ([]Product, error) {
	defer rows.Close()
	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
