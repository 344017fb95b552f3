// AngelaMos | 2026
// dto.go

package menu

import (
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
)

// MenuRequest is the body of create and update. Omitted optional fields
// take defaults on create and keep the stored value on update.
type MenuRequest struct {
	Name        string      `json:"name"         validate:"required,max=200"`
	Description *string     `json:"description"  validate:"omitempty,max=2000"`
	Price       *core.Money `json:"price"        validate:"required"`
	Image       *string     `json:"image"        validate:"omitempty,max=2048"`
	Category    *string     `json:"category"     validate:"omitempty,max=100"`
	Stock       *int        `json:"stock"        validate:"omitempty,min=0"`
	IsAvailable *bool       `json:"is_available"`
}

type MenuResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       core.Money `json:"price"`
	Image       string     `json:"image"`
	Category    string     `json:"category"`
	Stock       int        `json:"stock"`
	IsAvailable bool       `json:"is_available"`
	OrderCount  *int64     `json:"order_count,omitempty"`
}

func ToMenuResponse(m *MenuItem) MenuResponse {
	return MenuResponse{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Image:       m.Image,
		Category:    m.Category,
		Stock:       m.Stock,
		IsAvailable: m.IsAvailable,
	}
}

func ToMenuResponseList(items []MenuItem) []MenuResponse {
	out := make([]MenuResponse, len(items))
	for i := range items {
		out[i] = ToMenuResponse(&items[i])
	}
	return out
}

func toRankedResponseList(items []RankedItem) []MenuResponse {
	out := make([]MenuResponse, len(items))
	for i := range items {
		out[i] = ToMenuResponse(&items[i].MenuItem)
		out[i].OrderCount = items[i].OrderCount
	}
	return out
}
