package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dessertshop/storefront-api/internal/model"
	"github.com/dessertshop/storefront-api/internal/pricing"
)

var (
	// ErrEmptyCart means the user's cart held no lines when the
	// order-creation transaction re-read it.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrProductVanished means a product referenced by a cart line no longer
	// exists; the whole transaction is rolled back.
	ErrProductVanished = errors.New("product referenced by cart no longer exists")
)

type OrderRepository interface {
	// CreateFromCart runs the order-creation transaction for userID:
	// re-load the cart, compute totals, insert the order header and one
	// order line per cart line, decrement stock per product, and clear the
	// cart, all atomically. It returns the new order id, or rolls back
	// everything and returns ErrEmptyCart, ErrProductVanished, a
	// *model.StockShortage, or a wrapped driver error.
	CreateFromCart(ctx context.Context, userID int64, rates pricing.Rates) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	List(ctx context.Context) ([]model.Order, error)
	// UpdateAdminFields edits the only mutable order fields: paid/shipped
	// dates and notes.
	UpdateAdminFields(ctx context.Context, order *model.Order) error
	CountByUser(ctx context.Context, userID int64) (int, error)
	CountLinesByProduct(ctx context.Context, productID int64) (int, error)
	CountLinesByUnit(ctx context.Context, unitID int64) (int, error)
}

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

func (r *pgOrderRepo) CreateFromCart(ctx context.Context, userID int64, rates pricing.Rates) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Re-read the cart inside the transaction; the snapshot prices on the
	// lines are authoritative, no re-pricing happens here. Product rows are
	// locked up front so concurrent checkouts serialize per product.
	rows, err := tx.Query(ctx,
		`SELECT c.id, c.product_id, c.uom_id, c.quantity, c.unit_price, c.line_amount
		 FROM cart_lines c
		 JOIN products p ON p.id = c.product_id
		 WHERE c.user_id = $1
		 ORDER BY c.product_id
		 FOR UPDATE OF p`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("load cart lines: %w", err)
	}

	var lines []model.CartLine
	for rows.Next() {
		var line model.CartLine
		if err := rows.Scan(&line.ID, &line.ProductID, &line.UnitID,
			&line.Quantity, &line.UnitPrice, &line.LineAmount); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, line)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("read cart lines: %w", err)
	}
	if len(lines) == 0 {
		return 0, ErrEmptyCart
	}

	totals := pricing.Calculate(lines, rates)

	var orderID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO orders
		 (user_id, date_ordered, date_paid, subtotal, tax_amount, shipping_amount, total_amount, notes)
		 VALUES ($1, CURRENT_DATE, CURRENT_DATE, $2, $3, $4, $5, '')
		 RETURNING id`,
		userID, totals.Subtotal, totals.Tax, totals.Shipping, totals.Total,
	).Scan(&orderID)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	for _, line := range lines {
		_, err = tx.Exec(ctx,
			`INSERT INTO order_lines (order_id, product_id, uom_id, quantity, unit_price, line_amount)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			orderID, line.ProductID, line.UnitID, line.Quantity, line.UnitPrice, line.LineAmount,
		)
		if err != nil {
			return 0, fmt.Errorf("insert order line: %w", err)
		}
	}

	// One decrement per distinct product; cart lines are unique per
	// (user, product) so each line is its own product here.
	for _, line := range lines {
		ct, err := tx.Exec(ctx,
			`UPDATE products SET qty_in_stock = qty_in_stock - $2, updated_at = NOW()
			 WHERE id = $1 AND qty_in_stock >= $2`,
			line.ProductID, line.Quantity,
		)
		if err != nil {
			return 0, fmt.Errorf("decrement stock: %w", err)
		}
		if ct.RowsAffected() == 0 {
			var name, code, desc string
			var available int
			err := tx.QueryRow(ctx,
				`SELECT p.name, p.qty_in_stock, u.code, u.description
				 FROM products p JOIN units_of_measure u ON u.id = p.uom_id
				 WHERE p.id = $1`,
				line.ProductID,
			).Scan(&name, &available, &code, &desc)
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, ErrProductVanished
			}
			if err != nil {
				return 0, fmt.Errorf("inspect product %d: %w", line.ProductID, err)
			}
			return 0, &model.StockShortage{
				ProductName: name, Available: available, UnitCode: code, UnitDesc: desc,
			}
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, userID); err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return orderID, nil
}

const orderColumns = `id, user_id, date_ordered, date_paid, date_shipped,
	subtotal, tax_amount, shipping_amount, total_amount, notes`

func scanOrder(row pgx.Row) (*model.Order, error) {
	o := &model.Order{}
	err := row.Scan(
		&o.ID, &o.UserID, &o.DateOrdered, &o.DatePaid, &o.DateShipped,
		&o.Subtotal, &o.TaxAmount, &o.ShippingAmount, &o.TotalAmount, &o.Notes,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT l.id, l.product_id, l.uom_id, l.quantity, l.unit_price, l.line_amount, p.name, u.code
		 FROM order_lines l
		 JOIN products p ON p.id = l.product_id
		 JOIN units_of_measure u ON u.id = l.uom_id
		 WHERE l.order_id = $1
		 ORDER BY l.id`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("get order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line model.OrderLine
		if err := rows.Scan(&line.ID, &line.ProductID, &line.UnitID, &line.Quantity,
			&line.UnitPrice, &line.LineAmount, &line.ProductName, &line.UnitCode); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		line.OrderID = order.ID
		order.Lines = append(order.Lines, line)
	}
	return order, nil
}

func (r *pgOrderRepo) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return r.list(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY id DESC`, userID)
}

func (r *pgOrderRepo) List(ctx context.Context) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY id DESC`)
}

func (r *pgOrderRepo) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

func (r *pgOrderRepo) UpdateAdminFields(ctx context.Context, order *model.Order) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE orders SET date_paid = $2, date_shipped = $3, notes = $4 WHERE id = $1`,
		order.ID, order.DatePaid, order.DateShipped, order.Notes,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgOrderRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID)
}

func (r *pgOrderRepo) CountLinesByProduct(ctx context.Context, productID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM order_lines WHERE product_id = $1`, productID)
}

func (r *pgOrderRepo) CountLinesByUnit(ctx context.Context, unitID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM order_lines WHERE uom_id = $1`, unitID)
}

func (r *pgOrderRepo) count(ctx context.Context, query string, arg any) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}
