package cart

import (
	"github.com/shopspring/decimal"

	"github.com/agrotern2025/agrotern/internal/catalog"
)

// Summary aggregates a cart for display.
type Summary struct {
	// Count is the sum of quantities.
	Count int
	// Total sums price times quantity. Rows without a price contribute zero.
	Total catalog.Price
	// Unpriced counts rows whose price is on request.
	Unpriced int
}

// Summarize computes count and total for items.
func Summarize(items []LineItem) Summary {
	s := Summary{Total: catalog.Price{Decimal: decimal.Zero}}
	for _, li := range items {
		qty := li.Qty
		if qty < MinQty {
			qty = MinQty
		}
		s.Count += qty
		if li.Price == nil {
			s.Unpriced++
			continue
		}
		s.Total.Decimal = s.Total.Add(li.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return s
}

// Empty reports whether nothing is in the cart.
func (s Summary) Empty() bool { return s.Count == 0 }
