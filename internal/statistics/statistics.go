// AngelaMos | 2026
// statistics.go

package statistics

import (
	"context"
	"fmt"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
)

const (
	topSellerLimit = 5
	salesWindow    = 7
)

type TopSeller struct {
	Name       string `db:"name"        json:"name"`
	OrderCount int64  `db:"order_count" json:"order_count"`
}

type DailySales struct {
	SaleDate     string     `db:"sale_date"     json:"sale_date"`
	DailyRevenue core.Money `db:"daily_revenue" json:"daily_revenue"`
}

type Summary struct {
	TotalOrders     int64        `json:"total_orders"`
	TotalRevenue    core.Money   `json:"total_revenue"`
	TopSellingItems []TopSeller  `json:"top_selling_items"`
	DailySales      []DailySales `json:"daily_sales"`
}

type Repository interface {
	Totals(ctx context.Context) (int64, core.Money, error)
	TopSellers(ctx context.Context, limit int) ([]TopSeller, error)
	DailySales(ctx context.Context, days int) ([]DailySales, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Totals counts every order and sums final prices regardless of status.
func (r *repository) Totals(ctx context.Context) (int64, core.Money, error) {
	var row struct {
		TotalOrders  int64      `db:"total_orders"`
		TotalRevenue core.Money `db:"total_revenue"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT COUNT(*) AS total_orders,
		       COALESCE(SUM(final_price), 0) AS total_revenue
		FROM orders`)
	if err != nil {
		return 0, 0, fmt.Errorf("order totals: %w", err)
	}

	return row.TotalOrders, row.TotalRevenue, nil
}

func (r *repository) TopSellers(ctx context.Context, limit int) ([]TopSeller, error) {
	var rows []TopSeller
	err := r.db.SelectContext(ctx, &rows, `
		SELECT m.name, COUNT(*) AS order_count
		FROM orders o
		CROSS JOIN LATERAL jsonb_array_elements(o.items) AS item
		JOIN menus m ON m.id = (item->>'id')::bigint
		WHERE jsonb_typeof(item->'id') = 'number'
		GROUP BY m.id, m.name
		ORDER BY order_count DESC, m.id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("top sellers: %w", err)
	}

	return rows, nil
}

// DailySales groups revenue by calendar date over the last days dates,
// today included. The window and the grouping both use the database clock
// and session time zone. Days without orders are absent.
func (r *repository) DailySales(ctx context.Context, days int) ([]DailySales, error) {
	var rows []DailySales
	err := r.db.SelectContext(ctx, &rows, `
		SELECT to_char(created_at::date, 'YYYY-MM-DD') AS sale_date,
		       SUM(final_price) AS daily_revenue
		FROM orders
		WHERE created_at >= CURRENT_DATE - ($1::int - 1)
		GROUP BY created_at::date
		ORDER BY created_at::date ASC`, days)
	if err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}

	return rows, nil
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Summary aggregates all orders. Daily sales cover today and the six
// preceding days.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	totalOrders, totalRevenue, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, err
	}

	top, err := s.repo.TopSellers(ctx, topSellerLimit)
	if err != nil {
		return nil, err
	}

	daily, err := s.repo.DailySales(ctx, salesWindow)
	if err != nil {
		return nil, err
	}

	if top == nil {
		top = []TopSeller{}
	}
	if daily == nil {
		daily = []DailySales{}
	}

	return &Summary{
		TotalOrders:     totalOrders,
		TotalRevenue:    totalRevenue,
		TopSellingItems: top,
		DailySales:      daily,
	}, nil
}
