// model/bookModel.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Discount is a book's promotional window. A missing bound is open.
type Discount struct {
	Percent *decimal.Decimal `json:"discount_percent,omitempty"`
	Start   *time.Time       `json:"discount_start,omitempty"`
	End     *time.Time       `json:"discount_end,omitempty"`
}

// OnSale reports whether the discount applies at now.
func (d Discount) OnSale(now time.Time) bool {
	if d.Percent == nil || !d.Percent.IsPositive() {
		return false
	}
	if d.Start != nil && now.Before(*d.Start) {
		return false
	}
	if d.End != nil && now.After(*d.End) {
		return false
	}
	return true
}

// PercentAt returns the discount percent in effect at now, or zero.
func (d Discount) PercentAt(now time.Time) decimal.Decimal {
	if !d.OnSale(now) {
		return decimal.Zero
	}
	return *d.Percent
}

type Book struct {
	ID                   int64           `json:"id"`
	Title                string          `json:"title"`
	Author               string          `json:"author"`
	Genre                string          `json:"genre"`
	Language             string          `json:"language"`
	Format               string          `json:"format"`
	Publisher            string          `json:"publisher"`
	ISBN                 string          `json:"isbn"`
	Description          string          `json:"description"`
	Price                decimal.Decimal `json:"price"`
	StockQuantity        int             `json:"stock_quantity"`
	IsAvailableInLibrary bool            `json:"is_available_in_library"`
	Discount
	IsAwardWinner   bool       `json:"is_award_winner"`
	IsBestseller    bool       `json:"is_bestseller"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`

	// computed on read from reviews
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
	OnSaleNow     bool    `json:"on_sale"`
}

// BookInput is the writable part of a Book, shared by create and update.
type BookInput struct {
	Title                string           `json:"title" validate:"required,max=300"`
	Author               string           `json:"author" validate:"required,max=200"`
	Genre                string           `json:"genre" validate:"max=100"`
	Language             string           `json:"language" validate:"max=60"`
	Format               string           `json:"format" validate:"max=60"`
	Publisher            string           `json:"publisher" validate:"max=200"`
	ISBN                 string           `json:"isbn" validate:"max=20"`
	Description          string           `json:"description" validate:"max=5000"`
	Price                decimal.Decimal  `json:"price"`
	StockQuantity        int              `json:"stock_quantity" validate:"gte=0"`
	IsAvailableInLibrary bool             `json:"is_available_in_library"`
	DiscountPercent      *decimal.Decimal `json:"discount_percent"`
	DiscountStart        *time.Time       `json:"discount_start"`
	DiscountEnd          *time.Time       `json:"discount_end"`
	IsAwardWinner        bool             `json:"is_award_winner"`
	IsBestseller         bool             `json:"is_bestseller"`
	PublicationDate      *time.Time       `json:"publication_date"`
}
