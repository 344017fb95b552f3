// AngelaMos | 2026
// entity.go

package order

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
)

type Status string

const (
	StatusPreparing Status = "preparing"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	return s == StatusPreparing || s == StatusCompleted
}

const GuestName = "Guest"

// LineItem is a snapshot of a menu entry taken at submission. It is never
// updated when the menu entry changes.
type LineItem struct {
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Price core.Money `json:"price"`
}

// LineItems is stored as a JSONB array.
type LineItems []LineItem

func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		l = LineItems{}
	}
	data, err := json.Marshal([]LineItem(l))
	if err != nil {
		return nil, fmt.Errorf("encode line items: %w", err)
	}
	return string(data), nil
}

func (l *LineItems) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = LineItems{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan line items: unsupported type %T", src)
	}

	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decode line items: %w", err)
	}
	if items == nil {
		items = []LineItem{}
	}
	*l = items
	return nil
}

type Order struct {
	ID             int64      `db:"id"`
	Items          LineItems  `db:"items"`
	Status         Status     `db:"status"`
	CustomerID     *int64     `db:"customer_id"`
	CustomerName   string     `db:"customer_name"`
	CreatedAt      time.Time  `db:"created_at"`
	IsViewed       bool       `db:"is_viewed"`
	OriginalPrice  core.Money `db:"original_price"`
	DiscountAmount core.Money `db:"discount_amount"`
	FinalPrice     core.Money `db:"final_price"`
}
