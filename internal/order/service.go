// AngelaMos | 2026
// service.go

package order

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/authz"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/metrics"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/realtime"
)

// Publisher is the fan-out the service emits lifecycle events through.
type Publisher interface {
	Broadcast(ctx context.Context, event string, payload any) error
	SendToGroup(ctx context.Context, group, event string, payload any) error
}

type Service struct {
	repo      Repository
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewService(
	repo Repository,
	publisher Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// Submit prices and stores a new order in the preparing state and
// broadcasts it. A nil principal submits as a guest without discount.
func (s *Service) Submit(
	ctx context.Context,
	p *authz.Principal,
	items []LineItem,
) (*Order, error) {
	ctx, span := core.StartSpan(ctx, "order.submit",
		attribute.Int("order.item_count", len(items)))
	defer span.End()

	if len(items) == 0 {
		err := fmt.Errorf("submit order: items required: %w", core.ErrInvalidInput)
		core.SetSpanError(ctx, err)
		return nil, err
	}

	var role authz.Role
	o := &Order{
		Items:        LineItems(items),
		Status:       StatusPreparing,
		CustomerName: GuestName,
	}
	if p != nil {
		role = p.Role
		id := p.ID
		o.CustomerID = &id
		if p.Name != "" {
			o.CustomerName = p.Name
		}
	}

	quote := PriceItems(items, role)
	if quote.Original > core.MaxMoney || quote.Original < -core.MaxMoney {
		err := fmt.Errorf("submit order: total out of range: %w", core.ErrInvalidInput)
		core.SetSpanError(ctx, err)
		return nil, err
	}
	o.OriginalPrice = quote.Original
	o.DiscountAmount = quote.Discount
	o.FinalPrice = quote.Final

	if err := s.repo.Create(ctx, o); err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("order.id", o.ID),
		attribute.String("order.final_price", o.FinalPrice.String()),
	)

	roleLabel := string(role)
	if roleLabel == "" {
		roleLabel = "guest"
	}
	s.metrics.OrderSubmitted(roleLabel, o.FinalPrice.Cents())
	s.logger.Info("order submitted",
		"order_id", o.ID,
		"customer_id", o.CustomerID,
		"items", len(items),
		"final_price", o.FinalPrice.String(),
	)

	s.publish(ctx, realtime.EventNewOrder, ToOrderResponse(o))
	return o, nil
}

func (s *Service) List(ctx context.Context, status Status) ([]Order, error) {
	if status != "" && !status.Valid() {
		return []Order{}, nil
	}
	return s.repo.List(ctx, status)
}

func (s *Service) ListMine(ctx context.Context, customerID int64) ([]Order, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// Get returns the order to its owner or to kitchen staff. The first kitchen
// view marks it viewed and broadcasts order_read; later views change nothing.
func (s *Service) Get(ctx context.Context, p *authz.Principal, id int64) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authz.CanViewOwned(p, o.CustomerID); err != nil {
		return nil, err
	}

	if p.Role.IsKitchen() && !o.IsViewed {
		flipped, err := s.repo.MarkViewed(ctx, id)
		if err != nil {
			return nil, err
		}
		o.IsViewed = true
		if flipped {
			s.publish(ctx, realtime.EventOrderRead, ReadNotice{
				OrderID:    o.ID,
				CustomerID: o.CustomerID,
			})
		}
	}

	return o, nil
}

// Complete moves the order to completed. Repeating it succeeds and emits
// both events again.
func (s *Service) Complete(ctx context.Context, id int64) (*StatusUpdate, error) {
	ctx, span := core.StartSpan(ctx, "order.complete", attribute.Int64("order.id", id))
	defer span.End()

	if err := s.repo.SetStatus(ctx, id, StatusCompleted); err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	s.metrics.OrderCompleted()
	s.logger.Info("order completed", "order_id", id)

	update := &StatusUpdate{ID: id, Status: StatusCompleted}
	s.publish(ctx, realtime.EventOrderCompleted, id)
	s.publishGroup(ctx, realtime.OrderGroup(id), realtime.EventOrderUpdated, update)

	return update, nil
}

func (s *Service) publish(ctx context.Context, event string, payload any) {
	if err := s.publisher.Broadcast(ctx, event, payload); err != nil {
		s.logger.Warn("broadcast failed", "event", event, "error", err)
	}
}

func (s *Service) publishGroup(ctx context.Context, group, event string, payload any) {
	if err := s.publisher.SendToGroup(ctx, group, event, payload); err != nil {
		s.logger.Warn("group send failed", "event", event, "group", group, "error", err)
	}
}
