package booksvc

import (
	"context"
	"strings"

	"bookgalaxy/model"
	bookrepo "bookgalaxy/repository/book"
	"bookgalaxy/util/apperr"

	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

type Page struct {
	Items    []model.Book `json:"items"`
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

type Service interface {
	Create(ctx context.Context, in model.BookInput) (*model.Book, error)
	Update(ctx context.Context, id int64, in model.BookInput) (*model.Book, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f bookrepo.Filter) (*Page, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
}

type service struct{ r bookrepo.Repo }

func New(r bookrepo.Repo) Service { return &service{r: r} }

var hundred = decimal.NewFromInt(100)

func checkInput(in *model.BookInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	if in.Language == "" {
		in.Language = "English"
	}
	if in.Format == "" {
		in.Format = "Paperback"
	}

	bad := map[string]string{}
	if in.Title == "" {
		bad["title"] = "required"
	}
	if in.Author == "" {
		bad["author"] = "required"
	}
	if !in.Price.IsPositive() {
		bad["price"] = "gt 0"
	}
	if in.StockQuantity < 0 {
		bad["stock_quantity"] = "gte 0"
	}
	if p := in.DiscountPercent; p != nil && (p.IsNegative() || p.GreaterThan(hundred)) {
		bad["discount_percent"] = "between 0 and 100"
	}
	if in.DiscountStart != nil && in.DiscountEnd != nil && in.DiscountEnd.Before(*in.DiscountStart) {
		bad["discount_end"] = "gte discount_start"
	}
	if len(bad) > 0 {
		return apperr.Invalid(bad)
	}
	return nil
}

func (s *service) Create(ctx context.Context, in model.BookInput) (*model.Book, error) {
	if err := checkInput(&in); err != nil {
		return nil, err
	}
	id, err := s.r.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.Detail(ctx, id)
}

func (s *service) Update(ctx context.Context, id int64, in model.BookInput) (*model.Book, error) {
	if err := checkInput(&in); err != nil {
		return nil, err
	}
	ok, err := s.r.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.ErrNotFound, "book not found")
	}
	return s.Detail(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	ok, err := s.r.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.ErrNotFound, "book not found")
	}
	return nil
}

// List clamps paging, rejects inverted ranges and unknown enums, then queries.
func (s *service) List(ctx context.Context, f bookrepo.Filter) (*Page, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}

	bad := map[string]string{}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		bad["min_price"] = "lte max_price"
	}
	if f.MinRating != nil && f.MaxRating != nil && *f.MinRating > *f.MaxRating {
		bad["min_rating"] = "lte max_rating"
	}
	switch f.Category {
	case "", bookrepo.CategoryAward, bookrepo.CategoryBestseller, bookrepo.CategoryNewRelease, bookrepo.CategoryDeals:
	default:
		bad["category"] = "oneof=award bestseller new_release deals"
	}
	switch f.Sort {
	case bookrepo.SortNewest, bookrepo.SortTitle, bookrepo.SortDate, bookrepo.SortPriceAsc, bookrepo.SortPriceDesc, bookrepo.SortPopularity:
	default:
		bad["sort"] = "oneof=title date price_asc price_desc popularity"
	}
	if len(bad) > 0 {
		return nil, apperr.Invalid(bad)
	}

	items, total, err := s.r.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &Page{Items: items, Total: total, Page: f.Page, PageSize: f.PageSize}, nil
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.Detail(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperr.New(apperr.ErrNotFound, "book not found")
	}
	return b, nil
}
