// AngelaMos | 2026
// statistics_test.go

package statistics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
)

type stubRepo struct {
	orders  int64
	revenue core.Money
	top     []TopSeller
	daily   []DailySales
	days    int
}

func (s *stubRepo) Totals(context.Context) (int64, core.Money, error) {
	return s.orders, s.revenue, nil
}

func (s *stubRepo) TopSellers(_ context.Context, limit int) ([]TopSeller, error) {
	if len(s.top) > limit {
		return s.top[:limit], nil
	}
	return s.top, nil
}

func (s *stubRepo) DailySales(_ context.Context, days int) ([]DailySales, error) {
	s.days = days
	return s.daily, nil
}

type capturingDB struct {
	core.DBTX
	query string
	args  []any
}

func (c *capturingDB) SelectContext(_ context.Context, _ any, query string, args ...any) error {
	c.query, c.args = query, args
	return nil
}

func TestSummaryCoversSevenDays(t *testing.T) {
	repo := &stubRepo{}

	summary, err := NewService(repo).Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, repo.days)
	assert.NotNil(t, summary.TopSellingItems)
	assert.NotNil(t, summary.DailySales)
}

func TestDailySalesWindowUsesDatabaseClock(t *testing.T) {
	db := &capturingDB{}

	_, err := NewRepository(db).DailySales(context.Background(), 7)
	require.NoError(t, err)

	assert.Contains(t, db.query, "created_at >= CURRENT_DATE - ($1::int - 1)")
	assert.Contains(t, db.query, "GROUP BY created_at::date")
	assert.Equal(t, []any{7}, db.args)
}

func TestSummaryHandler(t *testing.T) {
	repo := &stubRepo{
		orders:  3,
		revenue: core.Cents(6500),
		top: []TopSeller{
			{Name: "Spaghetti Carbonara", OrderCount: 3},
			{Name: "Caesar Salad", OrderCount: 1},
		},
		daily: []DailySales{
			{SaleDate: "2026-03-08", DailyRevenue: core.Cents(2000)},
			{SaleDate: "2026-03-10", DailyRevenue: core.Cents(4500)},
		},
	}

	pass := func(next http.Handler) http.Handler { return next }
	r := chi.NewRouter()
	NewHandler(NewService(repo)).RegisterRoutes(r, pass, pass)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/statistics/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.JSONEq(t, `{
		"total_orders": 3,
		"total_revenue": "65.00",
		"top_selling_items": [
			{"name": "Spaghetti Carbonara", "order_count": 3},
			{"name": "Caesar Salad", "order_count": 1}
		],
		"daily_sales": [
			{"sale_date": "2026-03-08", "daily_revenue": "20.00"},
			{"sale_date": "2026-03-10", "daily_revenue": "45.00"}
		]
	}`, string(body.Data))
}
