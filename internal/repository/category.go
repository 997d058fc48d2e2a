package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dessertshop/storefront-api/internal/model"
)

type CategoryRepository interface {
	Create(ctx context.Context, cat *model.Category) error
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	GetByName(ctx context.Context, name string) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	ListActive(ctx context.Context) ([]model.Category, error)
	Update(ctx context.Context, cat *model.Category) error
	Delete(ctx context.Context, id int64) error
}

type pgCategoryRepo struct{ pool *pgxpool.Pool }

func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &pgCategoryRepo{pool: pool}
}

func (r *pgCategoryRepo) Create(ctx context.Context, cat *model.Category) error {
	query := `INSERT INTO product_categories (name, description, active, created_at, updated_at)
			  VALUES ($1, $2, $3, NOW(), NOW())
			  RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query, cat.Name, cat.Description, cat.Active).
		Scan(&cat.ID, &cat.CreatedAt, &cat.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *pgCategoryRepo) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	cat := &model.Category{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, active, created_at, updated_at
		 FROM product_categories WHERE id = $1`, id,
	).Scan(&cat.ID, &cat.Name, &cat.Description, &cat.Active, &cat.CreatedAt, &cat.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return cat, nil
}

func (r *pgCategoryRepo) GetByName(ctx context.Context, name string) (*model.Category, error) {
	cat := &model.Category{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, active, created_at, updated_at
		 FROM product_categories WHERE LOWER(name) = LOWER($1)`, name,
	).Scan(&cat.ID, &cat.Name, &cat.Description, &cat.Active, &cat.CreatedAt, &cat.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category by name: %w", err)
	}
	return cat, nil
}

func (r *pgCategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	return r.list(ctx, `SELECT id, name, description, active, created_at, updated_at
		FROM product_categories ORDER BY name`)
}

func (r *pgCategoryRepo) ListActive(ctx context.Context) ([]model.Category, error) {
	return r.list(ctx, `SELECT id, name, description, active, created_at, updated_at
		FROM product_categories WHERE active ORDER BY name`)
}

func (r *pgCategoryRepo) list(ctx context.Context, query string) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, nil
}

func (r *pgCategoryRepo) Update(ctx context.Context, cat *model.Category) error {
	query := `UPDATE product_categories SET name=$2, description=$3, active=$4, updated_at=NOW()
			  WHERE id=$1 RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query, cat.ID, cat.Name, cat.Description, cat.Active).
		Scan(&cat.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

func (r *pgCategoryRepo) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM product_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
