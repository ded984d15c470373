package ordersvc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bookgalaxy/model"
	idemrepo "bookgalaxy/repository/idempotency"
	mailerrepo "bookgalaxy/repository/mailer"
	orderrepo "bookgalaxy/repository/order"
	"bookgalaxy/service/discount"
	"bookgalaxy/service/policy"
	"bookgalaxy/util/apperr"
	"bookgalaxy/util/claimcode"
	"bookgalaxy/util/database"

	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
)

// MaxCodeAttempts bounds claim code regeneration inside one checkout.
const MaxCodeAttempts = 5

// TxRunner runs fn in one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type Service interface {
	// Checkout turns the member's cart into a pending order. A non-empty
	// idemKey makes retries return the original order; replayed reports that.
	Checkout(ctx context.Context, memberID int64, idemKey string) (o *model.Order, replayed bool, err error)
	Cancel(ctx context.Context, s policy.Subject, orderID int64) (*model.Order, error)
	Get(ctx context.Context, s policy.Subject, orderID int64) (*model.Order, error)
	ListMine(ctx context.Context, memberID int64) ([]model.Order, error)
}

type service struct {
	tx     TxRunner
	r      orderrepo.Repo
	idem   idemrepo.Store
	mail   mailerrepo.Sender
	policy discount.Policy
	log    *slog.Logger

	now     func() time.Time
	newCode func() (string, error)
}

func New(tx TxRunner, r orderrepo.Repo, idem idemrepo.Store, mail mailerrepo.Sender, p discount.Policy, log *slog.Logger) Service {
	return &service{
		tx: tx, r: r, idem: idem, mail: mail, policy: p, log: log,
		now:     time.Now,
		newCode: claimcode.Generate,
	}
}

func (s *service) Checkout(ctx context.Context, memberID int64, idemKey string) (*model.Order, bool, error) {
	idemKey = strings.TrimSpace(idemKey)
	if idemKey != "" {
		state, orderID, err := s.idem.Begin(ctx, memberID, idemKey)
		switch {
		case err != nil:
			// the store is advisory; carry on without it
			s.log.WarnContext(ctx, "idempotency store unavailable", "err", err)
			idemKey = ""
		case state == idemrepo.InFlight:
			return nil, false, apperr.New(apperr.ErrInProgress, "a checkout with this key is still running")
		case state == idemrepo.Done:
			o, err := s.r.ByID(ctx, orderID)
			if err != nil {
				return nil, false, err
			}
			if o != nil && o.MemberID == memberID {
				return o, true, nil
			}
			// stale entry: the order is gone, start over under the same key
			if err := s.idem.Release(ctx, memberID, idemKey); err != nil {
				return nil, false, err
			}
			return s.Checkout(ctx, memberID, idemKey)
		}
	}

	o, err := s.place(ctx, memberID)
	if idemKey != "" {
		if err != nil {
			if rerr := s.idem.Release(ctx, memberID, idemKey); rerr != nil {
				s.log.WarnContext(ctx, "release idempotency key", "err", rerr)
			}
		} else if cerr := s.idem.Complete(ctx, memberID, idemKey, o.ID); cerr != nil {
			s.log.WarnContext(ctx, "complete idempotency key", "err", cerr)
		}
	}
	if err != nil {
		return nil, false, err
	}

	s.log.InfoContext(ctx, "order placed",
		"order_id", o.ID, "member_id", memberID, "total", o.TotalAmount.StringFixed(2), "items", len(o.Items))
	s.notify(ctx, o)
	return o, false, nil
}

// place runs the whole checkout in one transaction: any failure leaves stock,
// cart and orders untouched.
func (s *service) place(ctx context.Context, memberID int64) (*model.Order, error) {
	var o *model.Order
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		lines, err := s.r.LockCartLines(ctx, tx, memberID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return apperr.New(apperr.ErrCartEmpty, "cart is empty")
		}
		for _, l := range lines {
			if !l.Available {
				return apperr.New(apperr.ErrBookUnavailable, fmt.Sprintf("%q is no longer available", l.Title))
			}
			if l.Quantity > l.StockQuantity {
				return apperr.New(apperr.ErrInsufficientStock,
					fmt.Sprintf("only %d of %q in stock", l.StockQuantity, l.Title))
			}
		}

		fulfilled, err := s.r.FulfilledCount(ctx, tx, memberID)
		if err != nil {
			return err
		}
		now := s.now()
		b, err := discount.Calculate(discount.FromCart(lines, now), fulfilled, s.policy)
		if err != nil {
			return err
		}

		o = &model.Order{
			MemberID:               memberID,
			Subtotal:               b.Subtotal,
			ItemDiscount:           b.ItemDiscount,
			BulkDiscount:           b.BulkDiscount,
			LoyaltyDiscount:        b.LoyaltyDiscount,
			TotalAmount:            b.Total,
			BulkDiscountPercent:    b.BulkPercent,
			SaleDiscountApplied:    b.SaleApplied,
			LoyaltyDiscountApplied: b.LoyaltyApplied,
		}
		if err := s.insertWithFreshCode(ctx, tx, o); err != nil {
			return err
		}

		for _, l := range lines {
			ok, err := s.r.DecrementStock(ctx, tx, l.BookID, l.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.New(apperr.ErrInsufficientStock, fmt.Sprintf("%q sold out", l.Title))
			}
		}

		o.Items = lo.Map(lines, func(l model.CartLine, _ int) model.OrderItem {
			return model.OrderItem{
				OrderID:         o.ID,
				BookID:          l.BookID,
				Title:           l.Title,
				Quantity:        l.Quantity,
				UnitPrice:       l.UnitPrice,
				DiscountPercent: l.Discount.PercentAt(now),
			}
		})
		if err := s.r.InsertItems(ctx, tx, o.ID, o.Items); err != nil {
			return err
		}
		return s.r.ClearCart(ctx, tx, memberID)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) insertWithFreshCode(ctx context.Context, tx pgx.Tx, o *model.Order) error {
	for i := 0; i < MaxCodeAttempts; i++ {
		code, err := s.newCode()
		if err != nil {
			return err
		}
		o.ClaimCode = code
		ok, err := s.r.InsertOrder(ctx, tx, o)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		s.log.WarnContext(ctx, "claim code collision, retrying", "attempt", i+1)
	}
	return apperr.New(apperr.ErrClaimCodeExhausted, "could not allocate a claim code, try again")
}

// notify mails the bill. Delivery problems are logged; the order stands.
func (s *service) notify(ctx context.Context, o *model.Order) {
	name, email, err := s.r.Contact(ctx, o.MemberID)
	if err != nil {
		s.log.WarnContext(ctx, "bill email skipped", "order_id", o.ID, "err", err)
		return
	}
	if err := s.mail.Send(ctx, mailerrepo.Message{
		To:      email,
		Subject: "Your BookGalaxy order " + o.ClaimCode,
		Body:    billText(name, o),
	}); err != nil {
		s.log.ErrorContext(ctx, "bill email failed", "order_id", o.ID, "err", err)
	}
}

func billText(name string, o *model.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThank you for your order #%d.\n\n", name, o.ID)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "  %d x %s @ %s\n", it.Quantity, it.Title, it.UnitPrice.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nSubtotal:          %s\n", o.Subtotal.StringFixed(2))
	if o.ItemDiscount.IsPositive() {
		fmt.Fprintf(&b, "Sale discount:    -%s\n", o.ItemDiscount.StringFixed(2))
	}
	if o.BulkDiscount.IsPositive() {
		fmt.Fprintf(&b, "Bulk discount:    -%s (%s%%)\n", o.BulkDiscount.StringFixed(2), o.BulkDiscountPercent.String())
	}
	if o.LoyaltyDiscount.IsPositive() {
		fmt.Fprintf(&b, "Loyalty discount: -%s\n", o.LoyaltyDiscount.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total:             %s\n\n", o.TotalAmount.StringFixed(2))
	fmt.Fprintf(&b, "Show claim code %s at the counter to pick up your books.\n", o.ClaimCode)
	return b.String()
}

// Cancel withdraws a pending order and puts its copies back on the shelf.
// Other members' orders look like missing ones.
func (s *service) Cancel(ctx context.Context, sub policy.Subject, orderID int64) (*model.Order, error) {
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		ownerID, status, err := s.r.LockOrder(ctx, tx, orderID)
		if database.IsNoRows(err) {
			return apperr.New(apperr.ErrNotFound, "order not found")
		}
		if err != nil {
			return err
		}
		if err := policy.Authorize(sub, policy.CancelOrder, policy.Resource{OwnerID: ownerID}); err != nil {
			return hideForeign(err)
		}
		if status != model.OrderPending {
			return apperr.New(apperr.ErrOrderNotPending, "only pending orders can be cancelled")
		}
		ok, err := s.r.MarkCancelled(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.New(apperr.ErrOrderNotPending, "only pending orders can be cancelled")
		}
		return s.r.RestockItems(ctx, tx, orderID)
	})
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "order cancelled", "order_id", orderID, "member_id", sub.ID)
	return s.r.ByID(ctx, orderID)
}

func (s *service) Get(ctx context.Context, sub policy.Subject, orderID int64) (*model.Order, error) {
	o, err := s.r.ByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.New(apperr.ErrNotFound, "order not found")
	}
	if err := policy.Authorize(sub, policy.ViewOrder, policy.Resource{OwnerID: o.MemberID}); err != nil {
		return nil, hideForeign(err)
	}
	return o, nil
}

func (s *service) ListMine(ctx context.Context, memberID int64) ([]model.Order, error) {
	return s.r.ListByMember(ctx, memberID)
}

func hideForeign(err error) error {
	if apperr.Is(err, apperr.ErrForbidden) {
		return apperr.New(apperr.ErrNotFound, "order not found")
	}
	return err
}
