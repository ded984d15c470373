package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is a cart item joined with the book fields pricing needs.
type CartLine struct {
	BookID        int64           `json:"book_id"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	StockQuantity int             `json:"stock_quantity"`
	Available     bool            `json:"available"`
	Discount
	AddedAt time.Time `json:"added_at"`
}
