package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dessertshop/storefront-api/internal/model"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetByName(ctx context.Context, name string) (*model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	ListActiveByCategory(ctx context.Context, categoryID int64) ([]model.Product, error)
	// Update writes the product row and, when reprice is set, updates the
	// unit-price snapshot on every cart line referencing the product inside
	// the same transaction.
	Update(ctx context.Context, product *model.Product, reprice bool, newPrice decimal.Decimal) error
	Delete(ctx context.Context, id int64) error
	CountByCategory(ctx context.Context, categoryID int64) (int, error)
	CountByUnit(ctx context.Context, unitID int64) (int, error)
}

type pgProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &pgProductRepo{pool: pool}
}

const productColumns = `p.id, p.name, p.category_id, p.uom_id, p.description,
	p.regular_price, p.discounted_price, p.qty_in_stock, p.image, p.active,
	p.created_at, p.updated_at, u.code, u.description`

func scanProduct(row pgx.Row) (*model.Product, error) {
	p := &model.Product{}
	err := row.Scan(
		&p.ID, &p.Name, &p.CategoryID, &p.UnitID, &p.Description,
		&p.RegularPrice, &p.DiscountedPrice, &p.QtyInStock, &p.Image, &p.Active,
		&p.CreatedAt, &p.UpdatedAt, &p.UnitCode, &p.UnitDesc,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgProductRepo) Create(ctx context.Context, product *model.Product) error {
	query := `INSERT INTO products
			  (name, category_id, uom_id, description, regular_price, discounted_price,
			   qty_in_stock, image, active, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
			  RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		product.Name, product.CategoryID, product.UnitID, product.Description,
		product.RegularPrice, product.DiscountedPrice, product.QtyInStock,
		product.Image, product.Active,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `SELECT ` + productColumns + `
			  FROM products p JOIN units_of_measure u ON u.id = p.uom_id
			  WHERE p.id = $1`
	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *pgProductRepo) GetByName(ctx context.Context, name string) (*model.Product, error) {
	query := `SELECT ` + productColumns + `
			  FROM products p JOIN units_of_measure u ON u.id = p.uom_id
			  WHERE LOWER(p.name) = LOWER($1)`
	p, err := scanProduct(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by name: %w", err)
	}
	return p, nil
}

func (r *pgProductRepo) List(ctx context.Context) ([]model.Product, error) {
	query := `SELECT ` + productColumns + `
			  FROM products p JOIN units_of_measure u ON u.id = p.uom_id
			  ORDER BY p.name`
	return r.queryProducts(ctx, query)
}

func (r *pgProductRepo) ListActiveByCategory(ctx context.Context, categoryID int64) ([]model.Product, error) {
	query := `SELECT ` + productColumns + `
			  FROM products p JOIN units_of_measure u ON u.id = p.uom_id
			  WHERE p.active AND p.category_id = $1
			  ORDER BY p.name`
	return r.queryProducts(ctx, query, categoryID)
}

func (r *pgProductRepo) queryProducts(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, nil
}

func (r *pgProductRepo) Update(ctx context.Context, product *model.Product, reprice bool, newPrice decimal.Decimal) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `UPDATE products SET name=$2, category_id=$3, uom_id=$4, description=$5,
			  regular_price=$6, discounted_price=$7, qty_in_stock=$8, image=$9, active=$10,
			  updated_at=NOW()
			  WHERE id=$1 RETURNING updated_at`
	err = tx.QueryRow(ctx, query,
		product.ID, product.Name, product.CategoryID, product.UnitID, product.Description,
		product.RegularPrice, product.DiscountedPrice, product.QtyInStock,
		product.Image, product.Active,
	).Scan(&product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("update product: %w", err)
	}

	if reprice {
		_, err = tx.Exec(ctx,
			`UPDATE cart_lines
			 SET unit_price = $2, line_amount = quantity * $2, price_updated = TRUE
			 WHERE product_id = $1`,
			product.ID, newPrice,
		)
		if err != nil {
			return fmt.Errorf("reprice cart lines: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *pgProductRepo) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgProductRepo) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE category_id = $1`, categoryID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count products by category: %w", err)
	}
	return n, nil
}

func (r *pgProductRepo) CountByUnit(ctx context.Context, unitID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE uom_id = $1`, unitID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count products by unit: %w", err)
	}
	return n, nil
}
