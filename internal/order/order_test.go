// AngelaMos | 2026
// order_test.go

package order

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/authz"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/middleware"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/realtime"
)

type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]Order
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{orders: map[int64]Order{}}
}

func (m *memoryRepo) Create(_ context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	o.ID = m.nextID
	o.CreatedAt = time.Now()
	m.orders[o.ID] = *o
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &o, nil
}

func (m *memoryRepo) filter(keep func(Order) bool) []Order {
	var out []Order
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *memoryRepo) List(_ context.Context, status Status) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(o Order) bool { return status == "" || o.Status == status }), nil
}

func (m *memoryRepo) ListByCustomer(_ context.Context, customerID int64) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(o Order) bool {
		return o.CustomerID != nil && *o.CustomerID == customerID
	}), nil
}

func (m *memoryRepo) MarkViewed(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.IsViewed {
		return false, nil
	}
	o.IsViewed = true
	m.orders[id] = o
	return true, nil
}

func (m *memoryRepo) SetStatus(_ context.Context, id int64, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return core.ErrNotFound
	}
	o.Status = status
	m.orders[id] = o
	return nil
}

type sent struct {
	group   string
	event   string
	payload any
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (p *recordingPublisher) Broadcast(_ context.Context, event string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, sent{event: event, payload: payload})
	return p.err
}

func (p *recordingPublisher) SendToGroup(_ context.Context, group, event string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, sent{group: group, event: event, payload: payload})
	return p.err
}

func (p *recordingPublisher) events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.sent))
	for i, s := range p.sent {
		out[i] = s.event
	}
	return out
}

var (
	student = &authz.Principal{ID: 7, Name: "Mia", Role: authz.RoleStudent}
	faculty = &authz.Principal{ID: 8, Name: "Dr. Chen", Role: authz.RoleFaculty}
	staff   = &authz.Principal{ID: 9, Name: "Cook", Role: authz.RoleStaff}
)

func scenarioItems() []LineItem {
	return []LineItem{
		{ID: 1, Name: "Caesar Salad", Price: core.Cents(900)},
		{ID: 31, Name: "Spaghetti Carbonara", Price: core.Cents(1600)},
	}
}

func newService() (*Service, *memoryRepo, *recordingPublisher) {
	repo := newMemoryRepo()
	pub := &recordingPublisher{}
	return NewService(repo, pub, nil, slog.New(slog.NewTextHandler(io.Discard, nil))), repo, pub
}

func TestPriceItems(t *testing.T) {
	tests := []struct {
		name     string
		role     authz.Role
		prices   []int64
		discount int64
	}{
		{"student", authz.RoleStudent, []int64{900, 1600}, 500},
		{"faculty", authz.RoleFaculty, []int64{900, 1600}, 0},
		{"staff", authz.RoleStaff, []int64{900, 1600}, 0},
		{"guest", "", []int64{900, 1600}, 0},
		{"student rounds half up", authz.RoleStudent, []int64{333, 0}, 67},
		{"student odd cents", authz.RoleStudent, []int64{1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]LineItem, len(tt.prices))
			var total int64
			for i, p := range tt.prices {
				items[i] = LineItem{ID: int64(i + 1), Price: core.Cents(p)}
				total += p
			}

			q := PriceItems(items, tt.role)
			assert.Equal(t, core.Cents(total), q.Original)
			assert.Equal(t, core.Cents(tt.discount), q.Discount)
			assert.Equal(t, q.Original-q.Discount, q.Final)
		})
	}
}

func TestSubmitAsStudent(t *testing.T) {
	svc, _, pub := newService()

	o, err := svc.Submit(context.Background(), student, scenarioItems())
	require.NoError(t, err)

	assert.Equal(t, "25.00", o.OriginalPrice.String())
	assert.Equal(t, "5.00", o.DiscountAmount.String())
	assert.Equal(t, "20.00", o.FinalPrice.String())
	assert.Equal(t, StatusPreparing, o.Status)
	assert.Equal(t, "Mia", o.CustomerName)
	require.NotNil(t, o.CustomerID)
	assert.Equal(t, int64(7), *o.CustomerID)

	require.Equal(t, []string{realtime.EventNewOrder}, pub.events())
	payload, ok := pub.sent[0].payload.(OrderResponse)
	require.True(t, ok)
	assert.Equal(t, o.ID, payload.ID)
	assert.Empty(t, pub.sent[0].group)
}

func TestSubmitAsFaculty(t *testing.T) {
	svc, _, _ := newService()

	o, err := svc.Submit(context.Background(), faculty, scenarioItems())
	require.NoError(t, err)

	assert.Equal(t, "25.00", o.OriginalPrice.String())
	assert.Equal(t, "0.00", o.DiscountAmount.String())
	assert.Equal(t, "25.00", o.FinalPrice.String())
}

func TestSubmitAsGuest(t *testing.T) {
	svc, _, _ := newService()

	o, err := svc.Submit(context.Background(), nil, scenarioItems())
	require.NoError(t, err)
	assert.Nil(t, o.CustomerID)
	assert.Equal(t, GuestName, o.CustomerName)
	assert.Equal(t, "0.00", o.DiscountAmount.String())
}

func TestSubmitRejectsEmptyItems(t *testing.T) {
	svc, repo, pub := newService()

	_, err := svc.Submit(context.Background(), student, nil)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
	assert.Empty(t, repo.orders)
	assert.Empty(t, pub.events())
}

func TestSubmitSurvivesPublishFailure(t *testing.T) {
	svc, _, pub := newService()
	pub.err = errors.New("hub down")

	o, err := svc.Submit(context.Background(), student, scenarioItems())
	require.NoError(t, err)
	assert.NotZero(t, o.ID)
}

func TestCompleteTwice(t *testing.T) {
	svc, repo, pub := newService()
	o, err := svc.Submit(context.Background(), student, scenarioItems())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		update, err := svc.Complete(context.Background(), o.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusUpdate{ID: o.ID, Status: StatusCompleted}, *update)
	}

	assert.Equal(t, StatusCompleted, repo.orders[o.ID].Status)
	assert.Equal(t, []string{
		realtime.EventNewOrder,
		realtime.EventOrderCompleted, realtime.EventOrderUpdated,
		realtime.EventOrderCompleted, realtime.EventOrderUpdated,
	}, pub.events())

	assert.Equal(t, o.ID, pub.sent[1].payload)
	assert.Empty(t, pub.sent[1].group)
	assert.Equal(t, realtime.OrderGroup(o.ID), pub.sent[2].group)

	_, err = svc.Complete(context.Background(), 999)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestKitchenViewFlipsOnce(t *testing.T) {
	svc, repo, pub := newService()
	o, err := svc.Submit(context.Background(), student, scenarioItems())
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), student, o.ID)
	require.NoError(t, err)
	assert.False(t, got.IsViewed, "owner views do not mark the order read")

	for i := 0; i < 3; i++ {
		got, err = svc.Get(context.Background(), staff, o.ID)
		require.NoError(t, err)
		assert.True(t, got.IsViewed)
	}

	assert.True(t, repo.orders[o.ID].IsViewed)
	assert.Equal(t, []string{realtime.EventNewOrder, realtime.EventOrderRead}, pub.events())

	notice, ok := pub.sent[1].payload.(ReadNotice)
	require.True(t, ok)
	assert.Equal(t, o.ID, notice.OrderID)
	assert.Equal(t, int64(7), *notice.CustomerID)
	assert.Empty(t, pub.sent[1].group)
}

func TestGetAuthorization(t *testing.T) {
	svc, _, _ := newService()
	o, err := svc.Submit(context.Background(), student, scenarioItems())
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), faculty, o.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.Get(context.Background(), nil, o.ID)
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	_, err = svc.Get(context.Background(), student, 999)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListFiltersAndOrdering(t *testing.T) {
	svc, _, _ := newService()
	first, _ := svc.Submit(context.Background(), student, scenarioItems())
	second, _ := svc.Submit(context.Background(), faculty, scenarioItems())
	_, err := svc.Complete(context.Background(), first.ID)
	require.NoError(t, err)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	preparing, err := svc.List(context.Background(), StatusPreparing)
	require.NoError(t, err)
	require.Len(t, preparing, 1)
	assert.Equal(t, second.ID, preparing[0].ID)

	unknown, err := svc.List(context.Background(), "cancelled")
	require.NoError(t, err)
	assert.Empty(t, unknown)

	mine, err := svc.ListMine(context.Background(), student.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Len(t, mine[0].Items, 2)
}

func TestLineItemsStorageRoundTrip(t *testing.T) {
	value, err := LineItems(scenarioItems()).Value()
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"id":1,"name":"Caesar Salad","price":"9.00"},{"id":31,"name":"Spaghetti Carbonara","price":"16.00"}]`,
		value.(string))

	var items LineItems
	require.NoError(t, items.Scan([]byte(`[{"id":1,"name":"Soup","price":4.5}]`)))
	assert.Equal(t, LineItems{{ID: 1, Name: "Soup", Price: core.Cents(450)}}, items)

	require.NoError(t, items.Scan(nil))
	assert.Empty(t, items)
}

type stubAuth map[string]*authz.Principal

func (s stubAuth) Authenticate(_ context.Context, token string) (*authz.Principal, error) {
	if p, ok := s[token]; ok {
		return p, nil
	}
	return nil, core.ErrTokenInvalid
}

func newRouter(svc *Service) http.Handler {
	pass := func(next http.Handler) http.Handler { return next }
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r,
		middleware.Authenticate(stubAuth{"student": student, "faculty": faculty, "staff": staff}),
		pass,
	)
	return r
}

func call(t *testing.T, h http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerLifecycle(t *testing.T) {
	svc, _, pub := newService()
	h := newRouter(svc)

	body := `{"items":[{"id":1,"name":"Caesar Salad","price":9},{"id":31,"name":"Spaghetti Carbonara","price":16}]}`
	rec := call(t, h, http.MethodPost, "/orders", "student", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Success bool `json:"success"`
		Data    struct {
			ID             int64  `json:"id"`
			Status         string `json:"status"`
			OriginalPrice  string `json:"original_price"`
			DiscountAmount string `json:"discount_amount"`
			FinalPrice     string `json:"final_price"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.Equal(t, "preparing", created.Data.Status)
	assert.Equal(t, "25.00", created.Data.OriginalPrice)
	assert.Equal(t, "5.00", created.Data.DiscountAmount)
	assert.Equal(t, "20.00", created.Data.FinalPrice)

	assert.Equal(t, http.StatusForbidden, call(t, h, http.MethodPost, "/orders", "staff", body).Code)
	assert.Equal(t, http.StatusBadRequest, call(t, h, http.MethodPost, "/orders", "student", `{"items":[]}`).Code)
	assert.Equal(t, http.StatusBadRequest, call(t, h, http.MethodPost, "/orders", "student", `{"items":"soup"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, call(t, h, http.MethodPost, "/orders", "", body).Code)

	assert.Equal(t, http.StatusForbidden, call(t, h, http.MethodGet, "/orders", "student", "").Code)
	assert.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/orders?status=preparing", "staff", "").Code)
	assert.Equal(t, http.StatusForbidden, call(t, h, http.MethodGet, "/orders/mine", "staff", "").Code)

	rec = call(t, h, http.MethodGet, "/orders/mine", "student", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Caesar Salad"`)

	assert.Equal(t, http.StatusForbidden, call(t, h, http.MethodGet, "/orders/1", "faculty", "").Code)
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodGet, "/orders/99", "staff", "").Code)
	assert.Equal(t, http.StatusBadRequest, call(t, h, http.MethodGet, "/orders/abc", "staff", "").Code)
	assert.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/orders/1", "staff", "").Code)

	assert.Equal(t, http.StatusForbidden, call(t, h, http.MethodPut, "/orders/1/complete", "student", "").Code)
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodPut, "/orders/99/complete", "staff", "").Code)

	rec = call(t, h, http.MethodPut, "/orders/1/complete", "staff", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":1,"status":"completed"}}`, rec.Body.String())

	assert.Equal(t, []string{
		realtime.EventNewOrder,
		realtime.EventOrderRead,
		realtime.EventOrderCompleted,
		realtime.EventOrderUpdated,
	}, pub.events())
}

func TestSubmitRejectsPricesBeyondStorageRange(t *testing.T) {
	svc, repo, pub := newService()
	h := newRouter(svc)

	huge := `{"items":[{"id":1,"name":"A","price":1e17},{"id":2,"name":"B","price":1e17}]}`
	assert.Equal(t, http.StatusBadRequest, call(t, h, http.MethodPost, "/orders", "student", huge).Code)

	overTotal := `{"items":[{"id":1,"name":"A","price":"99999999.99"},{"id":2,"name":"B","price":"0.01"}]}`
	assert.Equal(t, http.StatusBadRequest, call(t, h, http.MethodPost, "/orders", "student", overTotal).Code)

	_, err := svc.Submit(context.Background(), student, []LineItem{
		{ID: 1, Price: core.MaxMoney},
		{ID: 2, Price: core.Cents(1)},
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	assert.Empty(t, repo.orders)
	assert.Empty(t, pub.events())
}
