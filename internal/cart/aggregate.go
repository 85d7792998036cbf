package cart

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Aggregate holds the derived totals of a line-item list.
type Aggregate struct {
	Total decimal.Decimal
	Count int
}

// Compute derives total and count for items. Carts count units,
// wishlists count distinct entries.
func Compute(kind domain.AggregateKind, items []domain.LineItem) Aggregate {
	agg := Aggregate{Total: decimal.Zero}
	for _, it := range items {
		agg.Total = agg.Total.Add(it.Subtotal())
		switch kind {
		case domain.KindCart:
			agg.Count += it.Quantity
		case domain.KindWishlist:
			agg.Count++
		}
	}
	return agg
}
