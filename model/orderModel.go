// model/orderModel.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderFulfilled OrderStatus = "FULFILLED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Terminal reports whether no further transition is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderFulfilled || s == OrderCancelled
}

type Order struct {
	ID                     int64           `json:"id"`
	MemberID               int64           `json:"member_id"`
	OrderDate              time.Time       `json:"order_date"`
	Status                 OrderStatus     `json:"status"`
	ClaimCode              string          `json:"claim_code"`
	Subtotal               decimal.Decimal `json:"subtotal"`
	ItemDiscount           decimal.Decimal `json:"item_discount"`
	BulkDiscount           decimal.Decimal `json:"bulk_discount"`
	LoyaltyDiscount        decimal.Decimal `json:"loyalty_discount"`
	TotalAmount            decimal.Decimal `json:"total_amount"`
	BulkDiscountPercent    decimal.Decimal `json:"bulk_discount_percent"`
	SaleDiscountApplied    bool            `json:"sale_discount_applied"`
	LoyaltyDiscountApplied bool            `json:"loyalty_discount_applied"`
	IsCancelled            bool            `json:"is_cancelled"`
	CancelledAt            *time.Time      `json:"cancelled_at,omitempty"`
	FulfilledAt            *time.Time      `json:"fulfilled_at,omitempty"`
	Items                  []OrderItem     `json:"items,omitempty"`
}

// OrderItem keeps the price the member actually paid; later catalog price
// changes never touch it.
type OrderItem struct {
	ID              int64           `json:"id"`
	OrderID         int64           `json:"order_id"`
	BookID          int64           `json:"book_id"`
	Title           string          `json:"title,omitempty"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

type ProcessedOrder struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	StaffID     int64           `json:"staff_id"`
	ProcessedAt time.Time       `json:"processed_at"`
	ClaimCode   string          `json:"claim_code,omitempty"`
	MemberID    int64           `json:"member_id,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}
