// AngelaMos | 2026
// pricing.go

package order

import (
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/authz"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
)

const StudentDiscountPercent = 20

type Quote struct {
	Original core.Money
	Discount core.Money
	Final    core.Money
}

// PriceItems sums the unit prices as submitted by the client and applies
// the student discount. Catalog prices are not consulted.
func PriceItems(items []LineItem, role authz.Role) Quote {
	var original core.Money
	for _, it := range items {
		original += it.Price
	}

	var discount core.Money
	if role == authz.RoleStudent {
		discount = original.Percent(StudentDiscountPercent)
	}

	return Quote{
		Original: original,
		Discount: discount,
		Final:    original - discount,
	}
}
