package cartsvc

import (
	"context"
	"time"

	"bookgalaxy/model"
	cartrepo "bookgalaxy/repository/cart"
	"bookgalaxy/service/discount"
	"bookgalaxy/util/apperr"
)

// Cart is the member's cart with the same price breakdown checkout would
// produce right now.
type Cart struct {
	Lines   []model.CartLine   `json:"lines"`
	Summary discount.Breakdown `json:"summary"`
}

type Service interface {
	View(ctx context.Context, memberID int64) (*Cart, error)
	Summary(ctx context.Context, memberID int64) (*discount.Breakdown, error)
	Add(ctx context.Context, memberID, bookID int64, qty int) (int, error)
	SetQuantity(ctx context.Context, memberID, bookID int64, qty int) error
	Remove(ctx context.Context, memberID, bookID int64) error
	Clear(ctx context.Context, memberID int64) error
}

type service struct {
	r      cartrepo.Repo
	policy discount.Policy
	now    func() time.Time
}

func New(r cartrepo.Repo, p discount.Policy) Service {
	return &service{r: r, policy: p, now: time.Now}
}

func (s *service) View(ctx context.Context, memberID int64) (*Cart, error) {
	lines, err := s.r.List(ctx, memberID)
	if err != nil {
		return nil, err
	}
	sum, err := s.price(ctx, memberID, lines)
	if err != nil {
		return nil, err
	}
	return &Cart{Lines: lines, Summary: *sum}, nil
}

func (s *service) Summary(ctx context.Context, memberID int64) (*discount.Breakdown, error) {
	lines, err := s.r.List(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return s.price(ctx, memberID, lines)
}

func (s *service) price(ctx context.Context, memberID int64, lines []model.CartLine) (*discount.Breakdown, error) {
	fulfilled, err := s.r.FulfilledCount(ctx, memberID)
	if err != nil {
		return nil, err
	}
	b, err := discount.Calculate(discount.FromCart(lines, s.now()), fulfilled, s.policy)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// checkStock rejects a target quantity the shelf cannot cover. Checkout
// repeats the check under lock; this one only gives early feedback.
func (s *service) checkStock(ctx context.Context, bookID int64, want int) error {
	stock, available, found, err := s.r.BookStock(ctx, bookID)
	if err != nil {
		return err
	}
	if !found {
		return apperr.New(apperr.ErrNotFound, "book not found")
	}
	if !available {
		return apperr.New(apperr.ErrBookUnavailable, "book is not available")
	}
	if want > stock {
		return apperr.New(apperr.ErrInsufficientStock, "not enough copies in stock")
	}
	return nil
}

func (s *service) Add(ctx context.Context, memberID, bookID int64, qty int) (int, error) {
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return 0, apperr.Field("quantity", "gte 1")
	}
	have, err := s.r.Quantity(ctx, memberID, bookID)
	if err != nil {
		return 0, err
	}
	if err := s.checkStock(ctx, bookID, have+qty); err != nil {
		return 0, err
	}
	return s.r.Add(ctx, memberID, bookID, qty)
}

// SetQuantity replaces a line's quantity; zero removes the line.
func (s *service) SetQuantity(ctx context.Context, memberID, bookID int64, qty int) error {
	if qty < 0 {
		return apperr.Field("quantity", "gte 0")
	}
	if qty == 0 {
		return s.Remove(ctx, memberID, bookID)
	}
	if err := s.checkStock(ctx, bookID, qty); err != nil {
		return err
	}
	ok, err := s.r.SetQuantity(ctx, memberID, bookID, qty)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.ErrNotFound, "book is not in the cart")
	}
	return nil
}

func (s *service) Remove(ctx context.Context, memberID, bookID int64) error {
	ok, err := s.r.Remove(ctx, memberID, bookID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.ErrNotFound, "book is not in the cart")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, memberID int64) error {
	return s.r.Clear(ctx, memberID)
}
