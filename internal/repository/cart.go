package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dessertshop/storefront-api/internal/model"
)

type CartRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]model.CartLine, error)
	GetLine(ctx context.Context, lineID int64) (*model.CartLine, error)
	// AddOrIncrement inserts a cart line for (user, product), or adds the
	// quantity onto the existing line for that pair. The unit-price snapshot
	// of an existing line is kept; only quantity and line amount move.
	AddOrIncrement(ctx context.Context, line *model.CartLine) error
	// UpdateQuantity recomputes the line amount from the stored unit price.
	UpdateQuantity(ctx context.Context, lineID int64, quantity int) error
	DeleteLine(ctx context.Context, lineID int64) error
	ClearUser(ctx context.Context, userID int64) error
	CountByUser(ctx context.Context, userID int64) (int, error)
	CountByProduct(ctx context.Context, productID int64) (int, error)
	CountByUnit(ctx context.Context, unitID int64) (int, error)
}

type pgCartRepo struct{ pool *pgxpool.Pool }

func NewCartRepository(pool *pgxpool.Pool) CartRepository {
	return &pgCartRepo{pool: pool}
}

const cartLineColumns = `c.id, c.user_id, c.product_id, c.uom_id, c.quantity,
	c.unit_price, c.line_amount, c.price_updated, p.name, u.code, u.description`

func scanCartLine(row pgx.Row) (*model.CartLine, error) {
	line := &model.CartLine{}
	err := row.Scan(
		&line.ID, &line.UserID, &line.ProductID, &line.UnitID, &line.Quantity,
		&line.UnitPrice, &line.LineAmount, &line.PriceUpdated,
		&line.ProductName, &line.UnitCode, &line.UnitDesc,
	)
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (r *pgCartRepo) ListByUser(ctx context.Context, userID int64) ([]model.CartLine, error) {
	query := `SELECT ` + cartLineColumns + `
			  FROM cart_lines c
			  JOIN products p ON p.id = c.product_id
			  JOIN units_of_measure u ON u.id = c.uom_id
			  WHERE c.user_id = $1
			  ORDER BY c.id`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	var lines []model.CartLine
	for rows.Next() {
		line, err := scanCartLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, *line)
	}
	return lines, nil
}

func (r *pgCartRepo) GetLine(ctx context.Context, lineID int64) (*model.CartLine, error) {
	query := `SELECT ` + cartLineColumns + `
			  FROM cart_lines c
			  JOIN products p ON p.id = c.product_id
			  JOIN units_of_measure u ON u.id = c.uom_id
			  WHERE c.id = $1`
	line, err := scanCartLine(r.pool.QueryRow(ctx, query, lineID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart line: %w", err)
	}
	return line, nil
}

func (r *pgCartRepo) AddOrIncrement(ctx context.Context, line *model.CartLine) error {
	query := `INSERT INTO cart_lines
			  (user_id, product_id, uom_id, quantity, unit_price, line_amount, price_updated)
			  VALUES ($1, $2, $3, $4, $5, $6, FALSE)
			  ON CONFLICT (user_id, product_id) DO UPDATE SET
				quantity = cart_lines.quantity + $4,
				line_amount = (cart_lines.quantity + $4) * cart_lines.unit_price
			  RETURNING id, quantity, unit_price, line_amount, price_updated`
	err := r.pool.QueryRow(ctx, query,
		line.UserID, line.ProductID, line.UnitID, line.Quantity,
		line.UnitPrice, line.LineAmount,
	).Scan(&line.ID, &line.Quantity, &line.UnitPrice, &line.LineAmount, &line.PriceUpdated)
	if err != nil {
		return fmt.Errorf("add cart line: %w", err)
	}
	return nil
}

func (r *pgCartRepo) UpdateQuantity(ctx context.Context, lineID int64, quantity int) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE cart_lines SET quantity = $2, line_amount = $2 * unit_price WHERE id = $1`,
		lineID, quantity,
	)
	if err != nil {
		return fmt.Errorf("update cart line: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgCartRepo) DeleteLine(ctx context.Context, lineID int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE id = $1`, lineID)
	if err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgCartRepo) ClearUser(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (r *pgCartRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM cart_lines WHERE user_id = $1`, userID)
}

func (r *pgCartRepo) CountByProduct(ctx context.Context, productID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM cart_lines WHERE product_id = $1`, productID)
}

func (r *pgCartRepo) CountByUnit(ctx context.Context, unitID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM cart_lines WHERE uom_id = $1`, unitID)
}

func (r *pgCartRepo) count(ctx context.Context, query string, arg any) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cart lines: %w", err)
	}
	return n, nil
}
