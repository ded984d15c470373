package discount

import (
	"time"

	"bookgalaxy/model"

	"github.com/samber/lo"
)

// FromCart turns cart lines into pricing lines, resolving each book's sale
// window at now.
func FromCart(lines []model.CartLine, now time.Time) []Line {
	return lo.Map(lines, func(l model.CartLine, _ int) Line {
		return Line{
			UnitPrice:       l.UnitPrice,
			Quantity:        l.Quantity,
			DiscountPercent: l.Discount.PercentAt(now),
			OnSale:          l.Discount.OnSale(now),
		}
	})
}
