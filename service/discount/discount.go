// Package discount prices a cart. The same calculation backs the cart preview
// and checkout, so the two can never disagree.
//
// Order of application is fixed: per-book sale discount, then one bulk tier on
// what is left, then the loyalty percentage on the post-bulk amount. Every
// component is rounded to cents as it is produced and later steps use the
// rounded figure, so the stored breakdown always adds up to the total.
package discount

import (
	"fmt"

	"bookgalaxy/util/apperr"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Policy holds the tier thresholds. The zero value disables bulk and loyalty
// discounts; use DefaultPolicy for the store's standard rules.
type Policy struct {
	BulkLowQty      int
	BulkLowPercent  decimal.Decimal
	BulkHighQty     int
	BulkHighPercent decimal.Decimal

	LoyaltyMinOrders int
	LoyaltyPercent   decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		BulkLowQty:       5,
		BulkLowPercent:   decimal.NewFromInt(5),
		BulkHighQty:      10,
		BulkHighPercent:  decimal.NewFromInt(10),
		LoyaltyMinOrders: 10,
		LoyaltyPercent:   decimal.NewFromInt(10),
	}
}

// Validate checks that the tiers are ordered and every percent is in [0,100].
func (p Policy) Validate() error {
	bad := map[string]string{}
	for name, v := range map[string]decimal.Decimal{
		"bulk_low_percent":  p.BulkLowPercent,
		"bulk_high_percent": p.BulkHighPercent,
		"loyalty_percent":   p.LoyaltyPercent,
	} {
		if v.IsNegative() || v.GreaterThan(hundred) {
			bad[name] = "between 0 and 100"
		}
	}
	if p.BulkLowQty < 0 || p.BulkHighQty < 0 || p.LoyaltyMinOrders < 0 {
		bad["thresholds"] = "gte 0"
	}
	if p.BulkHighQty > 0 && p.BulkLowQty > p.BulkHighQty {
		bad["bulk_low_qty"] = "lte bulk_high_qty"
	}
	if len(bad) > 0 {
		return apperr.Invalid(bad)
	}
	return nil
}

// bulkPercent returns the single tier that applies to qty; the higher
// threshold wins.
func (p Policy) bulkPercent(qty int) decimal.Decimal {
	switch {
	case p.BulkHighQty > 0 && qty >= p.BulkHighQty:
		return p.BulkHighPercent
	case p.BulkLowQty > 0 && qty >= p.BulkLowQty:
		return p.BulkLowPercent
	}
	return decimal.Zero
}

func (p Policy) loyaltyPercent(fulfilledOrders int) decimal.Decimal {
	if p.LoyaltyMinOrders > 0 && fulfilledOrders >= p.LoyaltyMinOrders {
		return p.LoyaltyPercent
	}
	return decimal.Zero
}

// Line is one priced cart line. DiscountPercent is only honoured when OnSale.
type Line struct {
	UnitPrice       decimal.Decimal
	Quantity        int
	DiscountPercent decimal.Decimal
	OnSale          bool
}

type Breakdown struct {
	TotalQuantity      int             `json:"total_quantity"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	ItemDiscount       decimal.Decimal `json:"item_discount"`
	SubtotalAfterItems decimal.Decimal `json:"subtotal_after_item_discount"`
	BulkPercent        decimal.Decimal `json:"bulk_discount_percent"`
	BulkDiscount       decimal.Decimal `json:"bulk_discount"`
	LoyaltyPercent     decimal.Decimal `json:"loyalty_discount_percent"`
	LoyaltyDiscount    decimal.Decimal `json:"loyalty_discount"`
	Total              decimal.Decimal `json:"total"`

	SaleApplied    bool `json:"sale_discount_applied"`
	BulkApplied    bool `json:"bulk_discount_applied"`
	LoyaltyApplied bool `json:"loyalty_discount_applied"`
}

// Calculate prices lines for a member with fulfilledOrders completed orders.
// It has no side effects.
func Calculate(lines []Line, fulfilledOrders int, p Policy) (Breakdown, error) {
	if err := validate(lines, fulfilledOrders); err != nil {
		return Breakdown{}, err
	}

	var b Breakdown
	b.TotalQuantity = lo.SumBy(lines, func(l Line) int { return l.Quantity })

	gross, itemDisc := decimal.Zero, decimal.Zero
	for _, l := range lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		lineTotal := l.UnitPrice.Mul(qty)
		gross = gross.Add(lineTotal)
		if l.OnSale && l.DiscountPercent.IsPositive() && l.Quantity > 0 {
			itemDisc = itemDisc.Add(lineTotal.Mul(l.DiscountPercent).Div(hundred))
		}
	}
	b.Subtotal = gross.Round(2)
	b.ItemDiscount = itemDisc.Round(2)
	b.SaleApplied = b.ItemDiscount.IsPositive()
	b.SubtotalAfterItems = floorZero(b.Subtotal.Sub(b.ItemDiscount))

	b.BulkPercent = p.bulkPercent(b.TotalQuantity)
	b.BulkDiscount = percentOf(b.SubtotalAfterItems, b.BulkPercent)
	b.BulkApplied = b.BulkDiscount.IsPositive()
	afterBulk := floorZero(b.SubtotalAfterItems.Sub(b.BulkDiscount))

	b.LoyaltyPercent = p.loyaltyPercent(fulfilledOrders)
	b.LoyaltyDiscount = percentOf(afterBulk, b.LoyaltyPercent)
	b.LoyaltyApplied = b.LoyaltyDiscount.IsPositive()

	b.Total = floorZero(afterBulk.Sub(b.LoyaltyDiscount)).Round(2)
	return b, nil
}

func validate(lines []Line, fulfilledOrders int) error {
	bad := map[string]string{}
	for i, l := range lines {
		if l.Quantity < 0 {
			bad[fmt.Sprintf("lines[%d].quantity", i)] = "gte 0"
		}
		if l.UnitPrice.IsNegative() {
			bad[fmt.Sprintf("lines[%d].unit_price", i)] = "gte 0"
		}
		if l.DiscountPercent.IsNegative() || l.DiscountPercent.GreaterThan(hundred) {
			bad[fmt.Sprintf("lines[%d].discount_percent", i)] = "between 0 and 100"
		}
	}
	if fulfilledOrders < 0 {
		bad["fulfilled_orders"] = "gte 0"
	}
	if len(bad) > 0 {
		return apperr.Invalid(bad)
	}
	return nil
}

func percentOf(amount, percent decimal.Decimal) decimal.Decimal {
	if !percent.IsPositive() {
		return decimal.Zero
	}
	return amount.Mul(percent).Div(hundred).Round(2)
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
