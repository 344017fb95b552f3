// AngelaMos | 2026
// entity.go

package menu

import (
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
)

const (
	DefaultCategory = "General"
	DefaultStock    = 100
)

// MenuItem is a catalog entry. Stock is advisory and never decremented.
type MenuItem struct {
	ID          int64      `db:"id"`
	Name        string     `db:"name"`
	Description string     `db:"description"`
	Price       core.Money `db:"price"`
	Image       string     `db:"image"`
	Category    string     `db:"category"`
	Stock       int        `db:"stock"`
	IsAvailable bool       `db:"is_available"`
}

// RankedItem is a MenuItem with the number of order line items naming it.
// OrderCount is nil when the item was picked without order data.
type RankedItem struct {
	MenuItem
	OrderCount *int64 `db:"order_count"`
}
