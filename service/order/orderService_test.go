package ordersvc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"bookgalaxy/model"
	idemrepo "bookgalaxy/repository/idempotency"
	mailerrepo "bookgalaxy/repository/mailer"
	orderrepo "bookgalaxy/repository/order"
	"bookgalaxy/service/discount"
	"bookgalaxy/service/policy"
	"bookgalaxy/util/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeTx struct{ runs int }

func (f *fakeTx) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.runs++
	return fn(nil)
}

type mockRepo struct {
	lockCartFn    func(ctx context.Context, memberID int64) ([]model.CartLine, error)
	fulfilledFn   func(ctx context.Context, memberID int64) (int, error)
	decrementFn   func(ctx context.Context, bookID int64, qty int) (bool, error)
	insertOrderFn func(ctx context.Context, o *model.Order) (bool, error)
	insertItemsFn func(ctx context.Context, orderID int64, items []model.OrderItem) error
	clearCartFn   func(ctx context.Context, memberID int64) error
	lockOrderFn   func(ctx context.Context, orderID int64) (int64, model.OrderStatus, error)
	cancelFn      func(ctx context.Context, orderID int64) (bool, error)
	restockFn     func(ctx context.Context, orderID int64) error
	listFn        func(ctx context.Context, memberID int64) ([]model.Order, error)
	byIDFn        func(ctx context.Context, orderID int64) (*model.Order, error)
	contactFn     func(ctx context.Context, memberID int64) (string, string, error)
}

var _ orderrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) LockCartLines(ctx context.Context, _ pgx.Tx, memberID int64) ([]model.CartLine, error) {
	return m.lockCartFn(ctx, memberID)
}
func (m *mockRepo) FulfilledCount(ctx context.Context, _ pgx.Tx, memberID int64) (int, error) {
	if m.fulfilledFn == nil {
		return 0, nil
	}
	return m.fulfilledFn(ctx, memberID)
}
func (m *mockRepo) DecrementStock(ctx context.Context, _ pgx.Tx, bookID int64, qty int) (bool, error) {
	if m.decrementFn == nil {
		return true, nil
	}
	return m.decrementFn(ctx, bookID, qty)
}
func (m *mockRepo) InsertOrder(ctx context.Context, _ pgx.Tx, o *model.Order) (bool, error) {
	if m.insertOrderFn == nil {
		o.ID = 1
		return true, nil
	}
	return m.insertOrderFn(ctx, o)
}
func (m *mockRepo) InsertItems(ctx context.Context, _ pgx.Tx, orderID int64, items []model.OrderItem) error {
	if m.insertItemsFn == nil {
		return nil
	}
	return m.insertItemsFn(ctx, orderID, items)
}
func (m *mockRepo) ClearCart(ctx context.Context, _ pgx.Tx, memberID int64) error {
	if m.clearCartFn == nil {
		return nil
	}
	return m.clearCartFn(ctx, memberID)
}
func (m *mockRepo) LockOrder(ctx context.Context, _ pgx.Tx, orderID int64) (int64, model.OrderStatus, error) {
	return m.lockOrderFn(ctx, orderID)
}
func (m *mockRepo) MarkCancelled(ctx context.Context, _ pgx.Tx, orderID int64) (bool, error) {
	return m.cancelFn(ctx, orderID)
}
func (m *mockRepo) RestockItems(ctx context.Context, _ pgx.Tx, orderID int64) error {
	return m.restockFn(ctx, orderID)
}
func (m *mockRepo) ListByMember(ctx context.Context, memberID int64) ([]model.Order, error) {
	return m.listFn(ctx, memberID)
}
func (m *mockRepo) ByID(ctx context.Context, orderID int64) (*model.Order, error) {
	return m.byIDFn(ctx, orderID)
}
func (m *mockRepo) Contact(ctx context.Context, memberID int64) (string, string, error) {
	if m.contactFn == nil {
		return "Ann", "ann@example.test", nil
	}
	return m.contactFn(ctx, memberID)
}

type mockIdem struct {
	beginFn   func(ctx context.Context, memberID int64, key string) (idemrepo.State, int64, error)
	completed int64
	released  bool
}

func (m *mockIdem) Begin(ctx context.Context, memberID int64, key string) (idemrepo.State, int64, error) {
	return m.beginFn(ctx, memberID, key)
}
func (m *mockIdem) Complete(ctx context.Context, memberID int64, key string, orderID int64) error {
	m.completed = orderID
	return nil
}
func (m *mockIdem) Release(ctx context.Context, memberID int64, key string) error {
	m.released = true
	return nil
}

type mockMail struct {
	sent []mailerrepo.Message
	err  error
}

func (m *mockMail) Send(ctx context.Context, msg mailerrepo.Message) error {
	m.sent = append(m.sent, msg)
	return m.err
}

func quietLog() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

var fixedNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func newSvc(r *mockRepo, idem idemrepo.Store, mail *mockMail) (*service, *fakeTx) {
	tx := &fakeTx{}
	if idem == nil {
		idem = idemrepo.NewNoop()
	}
	if mail == nil {
		mail = &mockMail{}
	}
	s := New(tx, r, idem, mail, discount.DefaultPolicy(), quietLog()).(*service)
	s.now = func() time.Time { return fixedNow }
	codes := []string{"AAAAA-00001", "AAAAA-00002", "AAAAA-00003", "AAAAA-00004", "AAAAA-00005", "AAAAA-00006"}
	i := 0
	s.newCode = func() (string, error) {
		c := codes[i%len(codes)]
		i++
		return c, nil
	}
	return s, tx
}

func saleLine() model.CartLine {
	ten := decimal.NewFromInt(10)
	return model.CartLine{
		BookID: 7, Title: "Dune", Quantity: 6, UnitPrice: decimal.RequireFromString("10.00"),
		StockQuantity: 6, Available: true, Discount: model.Discount{Percent: &ten},
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	r := &mockRepo{
		lockCartFn: func(context.Context, int64) ([]model.CartLine, error) { return nil, nil },
		insertOrderFn: func(context.Context, *model.Order) (bool, error) {
			t.Fatal("no order may be written for an empty cart")
			return false, nil
		},
	}
	s, _ := newSvc(r, nil, nil)
	_, _, err := s.Checkout(context.Background(), 1, "")
	require.Equal(t, apperr.ErrCartEmpty, apperr.Code(err))
}

func TestCheckout_InsufficientStockTouchesNothing(t *testing.T) {
	l := saleLine()
	l.StockQuantity = 5
	r := &mockRepo{
		lockCartFn: func(context.Context, int64) ([]model.CartLine, error) { return []model.CartLine{l}, nil },
		decrementFn: func(context.Context, int64, int) (bool, error) {
			t.Fatal("stock must not change")
			return false, nil
		},
	}
	s, _ := newSvc(r, nil, nil)
	_, _, err := s.Checkout(context.Background(), 1, "")
	require.Equal(t, apperr.ErrInsufficientStock, apperr.Code(err))
}

func TestCheckout_UnavailableBook(t *testing.T) {
	l := saleLine()
	l.Available = false
	r := &mockRepo{lockCartFn: func(context.Context, int64) ([]model.CartLine, error) { return []model.CartLine{l}, nil }}
	s, _ := newSvc(r, nil, nil)
	_, _, err := s.Checkout(context.Background(), 1, "")
	require.Equal(t, apperr.ErrBookUnavailable, apperr.Code(err))
}

func TestCheckout_Success(t *testing.T) {
	var (
		decremented = map[int64]int{}
		items       []model.OrderItem
		cleared     bool
	)
	r := &mockRepo{
		lockCartFn:  func(context.Context, int64) ([]model.CartLine, error) { return []model.CartLine{saleLine()}, nil },
		fulfilledFn: func(context.Context, int64) (int, error) { return 12, nil },
		decrementFn: func(_ context.Context, bookID int64, qty int) (bool, error) {
			decremented[bookID] += qty
			return true, nil
		},
		insertOrderFn: func(_ context.Context, o *model.Order) (bool, error) {
			o.ID = 55
			o.Status = model.OrderPending
			return true, nil
		},
		insertItemsFn: func(_ context.Context, orderID int64, its []model.OrderItem) error {
			require.Equal(t, int64(55), orderID)
			items = its
			return nil
		},
		clearCartFn: func(context.Context, int64) error {
			cleared = true
			return nil
		},
	}
	mail := &mockMail{}
	s, tx := newSvc(r, nil, mail)

	o, replayed, err := s.Checkout(context.Background(), 1, "")
	require.NoError(t, err)
	require.False(t, replayed)
	require.Equal(t, 1, tx.runs)

	require.Equal(t, "60.00", o.Subtotal.StringFixed(2))
	require.Equal(t, "6.00", o.ItemDiscount.StringFixed(2))
	require.Equal(t, "2.70", o.BulkDiscount.StringFixed(2))
	require.Equal(t, "5.13", o.LoyaltyDiscount.StringFixed(2))
	require.Equal(t, "46.17", o.TotalAmount.StringFixed(2))
	require.True(t, o.SaleDiscountApplied)
	require.True(t, o.LoyaltyDiscountApplied)
	require.Equal(t, "AAAAA-00001", o.ClaimCode)

	require.Equal(t, 6, decremented[7])
	require.Len(t, items, 1)
	require.Equal(t, "10.00", items[0].UnitPrice.StringFixed(2))
	require.Equal(t, "10", items[0].DiscountPercent.String())
	require.True(t, cleared)

	require.Len(t, mail.sent, 1)
	require.Equal(t, "ann@example.test", mail.sent[0].To)
	require.Contains(t, mail.sent[0].Body, "AAAAA-00001")
	require.Contains(t, mail.sent[0].Body, "46.17")
}

func TestCheckout_MailFailureKeepsOrder(t *testing.T) {
	r := &mockRepo{lockCartFn: func(context.Context, int64) ([]model.CartLine, error) { return []model.CartLine{saleLine()}, nil }}
	s, _ := newSvc(r, nil, &mockMail{err: errors.New("smtp down")})
	o, _, err := s.Checkout(context.Background(), 1, "")
	require.NoError(t, err)
	require.NotNil(t, o)
}

func TestCheckout_RetriesClaimCodeCollision(t *testing.T) {
	var tried []string
	r := &mockRepo{
		lockCartFn: func(context.Context, int64) ([]model.CartLine, error) { return []model.CartLine{saleLine()}, nil },
		insertOrderFn: func(_ context.Context, o *model.Order) (bool, error) {
			tried = append(tried, o.ClaimCode)
			if len(tried) < 3 {
				return false, nil
			}
			o.ID = 9
			return true, nil
		},
	}
	s, _ := newSvc(r, nil, nil)
	o, _, err := s.Checkout(context.Background(), 1, "")
	require.NoError(t, err)
	require.Equal(t, []string{"AAAAA-00001", "AAAAA-00002", "AAAAA-00003"}, tried)
	require.Equal(t, "AAAAA-00003", o.ClaimCode)
}

func TestCheckout_ClaimCodeExhausted(t *testing.T) {
	r := &mockRepo{
		lockCartFn:    func(context.Context, int64) ([]model.CartLine, error) { return []model.CartLine{saleLine()}, nil },
		insertOrderFn: func(context.Context, *model.Order) (bool, error) { return false, nil },
		decrementFn: func(context.Context, int64, int) (bool, error) {
			t.Fatal("stock must not change without an order")
			return false, nil
		},
	}
	s, _ := newSvc(r, nil, nil)
	_, _, err := s.Checkout(context.Background(), 1, "")
	require.Equal(t, apperr.ErrClaimCodeExhausted, apperr.Code(err))
}

func TestCheckout_LostStockRaceAborts(t *testing.T) {
	r := &mockRepo{
		lockCartFn:  func(context.Context, int64) ([]model.CartLine, error) { return []model.CartLine{saleLine()}, nil },
		decrementFn: func(context.Context, int64, int) (bool, error) { return false, nil },
		clearCartFn: func(context.Context, int64) error {
			t.Fatal("cart must survive a failed checkout")
			return nil
		},
	}
	s, _ := newSvc(r, nil, nil)
	_, _, err := s.Checkout(context.Background(), 1, "")
	require.Equal(t, apperr.ErrInsufficientStock, apperr.Code(err))
}

func TestCheckout_IdempotentReplay(t *testing.T) {
	idem := &mockIdem{beginFn: func(context.Context, int64, string) (idemrepo.State, int64, error) {
		return idemrepo.Done, 77, nil
	}}
	r := &mockRepo{
		byIDFn: func(_ context.Context, id int64) (*model.Order, error) {
			return &model.Order{ID: id, MemberID: 1}, nil
		},
		lockCartFn: func(context.Context, int64) ([]model.CartLine, error) {
			t.Fatal("replay must not run checkout again")
			return nil, nil
		},
	}
	s, tx := newSvc(r, idem, nil)
	o, replayed, err := s.Checkout(context.Background(), 1, "key-1")
	require.NoError(t, err)
	require.True(t, replayed)
	require.Equal(t, int64(77), o.ID)
	require.Zero(t, tx.runs)
}

func TestCheckout_IdempotentInFlight(t *testing.T) {
	idem := &mockIdem{beginFn: func(context.Context, int64, string) (idemrepo.State, int64, error) {
		return idemrepo.InFlight, 0, nil
	}}
	s, _ := newSvc(&mockRepo{}, idem, nil)
	_, _, err := s.Checkout(context.Background(), 1, "key-1")
	require.Equal(t, apperr.ErrInProgress, apperr.Code(err))
}

func TestCheckout_IdempotencyRecordsOutcome(t *testing.T) {
	idem := &mockIdem{beginFn: func(context.Context, int64, string) (idemrepo.State, int64, error) {
		return idemrepo.Fresh, 0, nil
	}}
	r := &mockRepo{lockCartFn: func(context.Context, int64) ([]model.CartLine, error) { return []model.CartLine{saleLine()}, nil }}
	s, _ := newSvc(r, idem, nil)
	o, _, err := s.Checkout(context.Background(), 1, "key-1")
	require.NoError(t, err)
	require.Equal(t, o.ID, idem.completed)

	idem2 := &mockIdem{beginFn: idem.beginFn}
	r.lockCartFn = func(context.Context, int64) ([]model.CartLine, error) { return nil, nil }
	s2, _ := newSvc(r, idem2, nil)
	_, _, err = s2.Checkout(context.Background(), 1, "key-2")
	require.Error(t, err)
	require.True(t, idem2.released)
}

var owner = policy.Subject{ID: 1, Role: model.RoleMember}

func TestCancel_Pending(t *testing.T) {
	restocked := false
	r := &mockRepo{
		lockOrderFn: func(context.Context, int64) (int64, model.OrderStatus, error) { return 1, model.OrderPending, nil },
		cancelFn:    func(context.Context, int64) (bool, error) { return true, nil },
		restockFn: func(context.Context, int64) error {
			restocked = true
			return nil
		},
		byIDFn: func(_ context.Context, id int64) (*model.Order, error) {
			return &model.Order{ID: id, MemberID: 1, Status: model.OrderCancelled, IsCancelled: true}, nil
		},
	}
	s, _ := newSvc(r, nil, nil)
	o, err := s.Cancel(context.Background(), owner, 3)
	require.NoError(t, err)
	require.True(t, restocked)
	require.Equal(t, model.OrderCancelled, o.Status)
}

func TestCancel_Rejections(t *testing.T) {
	status := model.OrderFulfilled
	ownerID := int64(1)
	r := &mockRepo{
		lockOrderFn: func(context.Context, int64) (int64, model.OrderStatus, error) { return ownerID, status, nil },
		cancelFn: func(context.Context, int64) (bool, error) {
			t.Fatal("must not cancel")
			return false, nil
		},
	}
	s, _ := newSvc(r, nil, nil)

	_, err := s.Cancel(context.Background(), owner, 3)
	require.Equal(t, apperr.ErrOrderNotPending, apperr.Code(err))

	status = model.OrderPending
	ownerID = 2
	_, err = s.Cancel(context.Background(), owner, 3)
	require.Equal(t, apperr.ErrNotFound, apperr.Code(err))

	r.lockOrderFn = func(context.Context, int64) (int64, model.OrderStatus, error) { return 0, "", pgx.ErrNoRows }
	_, err = s.Cancel(context.Background(), owner, 3)
	require.Equal(t, apperr.ErrNotFound, apperr.Code(err))
}

func TestGet_HidesForeignOrders(t *testing.T) {
	r := &mockRepo{byIDFn: func(_ context.Context, id int64) (*model.Order, error) {
		return &model.Order{ID: id, MemberID: 2}, nil
	}}
	s, _ := newSvc(r, nil, nil)
	_, err := s.Get(context.Background(), owner, 5)
	require.Equal(t, apperr.ErrNotFound, apperr.Code(err))

	o, err := s.Get(context.Background(), policy.Subject{ID: 2, Role: model.RoleMember}, 5)
	require.NoError(t, err)
	require.Equal(t, int64(5), o.ID)
}
