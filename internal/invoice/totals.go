package invoice

import (
	"github.com/shopspring/decimal"

	"invoicer/pkg/models"
)

var hundred = decimal.NewFromInt(100)

// Totals is the derived pricing of a set of line items.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Total          decimal.Decimal `json:"total"`
}

// ComputeTotals prices items with a percentage discount and a flat delivery fee.
// Zero-valued quantities or prices count as 0. The total is not floored at zero.
func ComputeTotals(items []models.LineItem, discountPercent, deliveryFee decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	discount := subtotal.Mul(discountPercent).Div(hundred)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          subtotal.Sub(discount).Add(deliveryFee),
	}
}
