// AngelaMos | 2026
// dto.go

package order

import (
	"time"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
)

type SubmitRequest struct {
	Items []LineItem `json:"items" validate:"required,min=1,dive"`
}

type OrderResponse struct {
	ID             int64      `json:"id"`
	Items          []LineItem `json:"items"`
	Status         Status     `json:"status"`
	CustomerID     *int64     `json:"customer_id"`
	CustomerName   string     `json:"customer_name"`
	IsViewed       bool       `json:"is_viewed"`
	OriginalPrice  core.Money `json:"original_price"`
	DiscountAmount core.Money `json:"discount_amount"`
	FinalPrice     core.Money `json:"final_price"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ReadNotice is the order_read payload.
type ReadNotice struct {
	OrderID    int64  `json:"orderId"`
	CustomerID *int64 `json:"customerId"`
}

// StatusUpdate is the order_updated payload and the complete response.
type StatusUpdate struct {
	ID     int64  `json:"id"`
	Status Status `json:"status"`
}

func ToOrderResponse(o *Order) OrderResponse {
	items := []LineItem(o.Items)
	if items == nil {
		items = []LineItem{}
	}
	return OrderResponse{
		ID:             o.ID,
		Items:          items,
		Status:         o.Status,
		CustomerID:     o.CustomerID,
		CustomerName:   o.CustomerName,
		IsViewed:       o.IsViewed,
		OriginalPrice:  o.OriginalPrice,
		DiscountAmount: o.DiscountAmount,
		FinalPrice:     o.FinalPrice,
		CreatedAt:      o.CreatedAt,
	}
}

func ToOrderResponseList(orders []Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}
