// AngelaMos | 2026
// repository.go

package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, status Status) ([]Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]Order, error)
	MarkViewed(ctx context.Context, id int64) (bool, error)
	SetStatus(ctx context.Context, id int64, status Status) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const orderColumns = `id, items, status, customer_id, customer_name, created_at,
	is_viewed, original_price, discount_amount, final_price`

func (r *repository) Create(ctx context.Context, o *Order) error {
	query := `
		INSERT INTO orders (items, status, customer_id, customer_name,
		                    original_price, discount_amount, final_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, is_viewed`

	err := r.db.QueryRowxContext(ctx, query,
		o.Items,
		o.Status,
		o.CustomerID,
		o.CustomerName,
		o.OriginalPrice,
		o.DiscountAmount,
		o.FinalPrice,
	).Scan(&o.ID, &o.CreatedAt, &o.IsViewed)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Order, error) {
	var o Order
	err := r.db.GetContext(ctx, &o,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get order: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	return &o, nil
}

// List returns orders newest first, filtered by status unless it is empty.
func (r *repository) List(ctx context.Context, status Status) ([]Order, error) {
	var (
		orders []Order
		err    error
	)

	if status == "" {
		err = r.db.SelectContext(ctx, &orders,
			`SELECT `+orderColumns+` FROM orders ORDER BY id DESC`)
	} else {
		err = r.db.SelectContext(ctx, &orders,
			`SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY id DESC`,
			status)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return orders, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID int64) ([]Order, error) {
	var orders []Order
	err := r.db.SelectContext(ctx, &orders, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE customer_id = $1
		ORDER BY id DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}

	return orders, nil
}

// MarkViewed flips is_viewed and reports whether this call was the one that
// flipped it.
func (r *repository) MarkViewed(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET is_viewed = TRUE WHERE id = $1 AND is_viewed = FALSE`, id)
	if err != nil {
		return false, fmt.Errorf("mark order viewed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark order viewed: %w", err)
	}

	return rows > 0, nil
}

// SetStatus fails with ErrNotFound only when the id is absent; setting the
// current status again succeeds.
func (r *repository) SetStatus(ctx context.Context, id int64, status Status) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set order status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set order status: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("set order status: %w", core.ErrNotFound)
	}

	return nil
}
