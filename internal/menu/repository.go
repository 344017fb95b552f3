// AngelaMos | 2026
// repository.go

package menu

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
)

type Repository interface {
	Search(ctx context.Context, query string) ([]MenuItem, error)
	GetByID(ctx context.Context, id int64) (*MenuItem, error)
	ListAvailable(ctx context.Context) ([]MenuItem, error)
	TopOrdered(ctx context.Context, limit int) ([]RankedItem, error)
	RandomSample(ctx context.Context, limit int, availableOnly bool) ([]MenuItem, error)
	FavoriteCategory(ctx context.Context, customerID int64) (string, bool, error)
	UnorderedInCategory(ctx context.Context, customerID int64, category string, limit int) ([]MenuItem, error)
	OrderedByCustomer(ctx context.Context, customerID int64) ([]MenuItem, error)
	Create(ctx context.Context, item *MenuItem) error
	Update(ctx context.Context, item *MenuItem) error
	SetImage(ctx context.Context, id int64, image string) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const menuColumns = `id, name, description, price, image, category, stock, is_available`

// orderedItemIDs expands each order's JSONB line items into one row per
// item carrying its menu id. Items without a numeric id are skipped.
const orderedItemIDs = `
	SELECT o.customer_id, (item->>'id')::bigint AS menu_id
	FROM orders o
	CROSS JOIN LATERAL jsonb_array_elements(o.items) AS item
	WHERE jsonb_typeof(item->'id') = 'number'`

func (r *repository) Search(ctx context.Context, query string) ([]MenuItem, error) {
	var (
		items []MenuItem
		err   error
	)

	if query == "" {
		err = r.db.SelectContext(ctx, &items,
			`SELECT `+menuColumns+` FROM menus ORDER BY id ASC`)
	} else {
		pattern := "%" + core.EscapeLike(query) + "%"
		err = r.db.SelectContext(ctx, &items, `
			SELECT `+menuColumns+`
			FROM menus
			WHERE name ILIKE $1 OR description ILIKE $1
			ORDER BY id ASC`, pattern)
	}
	if err != nil {
		return nil, fmt.Errorf("search menus: %w", err)
	}

	return items, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*MenuItem, error) {
	var item MenuItem
	err := r.db.GetContext(ctx, &item,
		`SELECT `+menuColumns+` FROM menus WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get menu: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get menu: %w", err)
	}

	return &item, nil
}

func (r *repository) ListAvailable(ctx context.Context) ([]MenuItem, error) {
	var items []MenuItem
	err := r.db.SelectContext(ctx, &items, `
		SELECT `+menuColumns+`
		FROM menus
		WHERE is_available
		ORDER BY category ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list available menus: %w", err)
	}

	return items, nil
}

// TopOrdered ranks entries by how many order line items name them. Ties go
// to the lower id.
func (r *repository) TopOrdered(ctx context.Context, limit int) ([]RankedItem, error) {
	query := `
		SELECT m.id, m.name, m.description, m.price, m.image, m.category,
		       m.stock, m.is_available, COUNT(*) AS order_count
		FROM (` + orderedItemIDs + `) oi
		JOIN menus m ON m.id = oi.menu_id
		GROUP BY m.id
		ORDER BY order_count DESC, m.id ASC
		LIMIT $1`

	var items []RankedItem
	if err := r.db.SelectContext(ctx, &items, query, limit); err != nil {
		return nil, fmt.Errorf("top ordered menus: %w", err)
	}

	return items, nil
}

func (r *repository) RandomSample(
	ctx context.Context,
	limit int,
	availableOnly bool,
) ([]MenuItem, error) {
	query := `SELECT ` + menuColumns + ` FROM menus`
	if availableOnly {
		query += ` WHERE is_available`
	}
	query += ` ORDER BY random() LIMIT $1`

	var items []MenuItem
	if err := r.db.SelectContext(ctx, &items, query, limit); err != nil {
		return nil, fmt.Errorf("sample menus: %w", err)
	}

	return items, nil
}

// FavoriteCategory returns the category the customer ordered most often.
// Ties go to the alphabetically first label.
func (r *repository) FavoriteCategory(
	ctx context.Context,
	customerID int64,
) (string, bool, error) {
	query := `
		SELECT m.category
		FROM (` + orderedItemIDs + `) oi
		JOIN menus m ON m.id = oi.menu_id
		WHERE oi.customer_id = $1
		GROUP BY m.category
		ORDER BY COUNT(*) DESC, m.category ASC
		LIMIT 1`

	var category string
	err := r.db.GetContext(ctx, &category, query, customerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("favorite category: %w", err)
	}

	return category, true, nil
}

func (r *repository) UnorderedInCategory(
	ctx context.Context,
	customerID int64,
	category string,
	limit int,
) ([]MenuItem, error) {
	query := `
		SELECT ` + menuColumns + `
		FROM menus m
		WHERE m.category = $1
		  AND NOT EXISTS (
			SELECT 1 FROM (` + orderedItemIDs + `) oi
			WHERE oi.customer_id = $2 AND oi.menu_id = m.id
		  )
		ORDER BY random()
		LIMIT $3`

	var items []MenuItem
	if err := r.db.SelectContext(ctx, &items, query, category, customerID, limit); err != nil {
		return nil, fmt.Errorf("unordered menus in category: %w", err)
	}

	return items, nil
}

// OrderedByCustomer returns current entries named in any of the customer's
// orders. Entries deleted since are absent.
func (r *repository) OrderedByCustomer(
	ctx context.Context,
	customerID int64,
) ([]MenuItem, error) {
	query := `
		SELECT ` + menuColumns + `
		FROM menus
		WHERE id IN (
			SELECT oi.menu_id FROM (` + orderedItemIDs + `) oi
			WHERE oi.customer_id = $1
		)
		ORDER BY id ASC`

	var items []MenuItem
	if err := r.db.SelectContext(ctx, &items, query, customerID); err != nil {
		return nil, fmt.Errorf("menus ordered by customer: %w", err)
	}

	return items, nil
}

func (r *repository) Create(ctx context.Context, item *MenuItem) error {
	query := `
		INSERT INTO menus (name, description, price, image, category, stock, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.db.QueryRowxContext(ctx, query,
		item.Name,
		item.Description,
		item.Price,
		item.Image,
		item.Category,
		item.Stock,
		item.IsAvailable,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("create menu: %w", err)
	}

	return nil
}

func (r *repository) Update(ctx context.Context, item *MenuItem) error {
	query := `
		UPDATE menus
		SET name = $2, description = $3, price = $4, image = $5,
		    category = $6, stock = $7, is_available = $8
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.Name,
		item.Description,
		item.Price,
		item.Image,
		item.Category,
		item.Stock,
		item.IsAvailable,
	)
	if err != nil {
		return fmt.Errorf("update menu: %w", err)
	}

	return expectRow(result, "update menu")
}

func (r *repository) SetImage(ctx context.Context, id int64, image string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE menus SET image = $2 WHERE id = $1`, id, image)
	if err != nil {
		return fmt.Errorf("set menu image: %w", err)
	}

	return expectRow(result, "set menu image")
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM menus WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete menu: %w", err)
	}

	return expectRow(result, "delete menu")
}

func expectRow(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}
