package orderrepo

import (
	"context"

	"bookgalaxy/model"
	"bookgalaxy/util/database"

	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
)

type Repo interface {
	// Checkout
	LockCartLines(ctx context.Context, tx pgx.Tx, memberID int64) ([]model.CartLine, error)
	FulfilledCount(ctx context.Context, tx pgx.Tx, memberID int64) (int, error)
	DecrementStock(ctx context.Context, tx pgx.Tx, bookID int64, qty int) (bool, error)
	InsertOrder(ctx context.Context, tx pgx.Tx, o *model.Order) (bool, error)
	InsertItems(ctx context.Context, tx pgx.Tx, orderID int64, items []model.OrderItem) error
	ClearCart(ctx context.Context, tx pgx.Tx, memberID int64) error

	// Cancellation
	LockOrder(ctx context.Context, tx pgx.Tx, orderID int64) (memberID int64, status model.OrderStatus, err error)
	MarkCancelled(ctx context.Context, tx pgx.Tx, orderID int64) (bool, error)
	RestockItems(ctx context.Context, tx pgx.Tx, orderID int64) error

	// History
	ListByMember(ctx context.Context, memberID int64) ([]model.Order, error)
	ByID(ctx context.Context, orderID int64) (*model.Order, error)
	Contact(ctx context.Context, memberID int64) (name, email string, err error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

// Checkout

// LockCartLines locks the member's cart rows and the books behind them in
// book id order, so two checkouts touching the same titles queue instead of
// deadlocking.
func (r *repo) LockCartLines(ctx context.Context, tx pgx.Tx, memberID int64) ([]model.CartLine, error) {
	const q = `
SELECT c.book_id, b.title, b.author, c.quantity, b.price, b.stock_quantity,
       b.is_available_in_library, b.discount_percent, b.discount_start, b.discount_end, c.added_at
FROM cart_items c
JOIN books b ON b.id = c.book_id
WHERE c.member_id = $1
ORDER BY c.book_id
FOR UPDATE OF c, b`
	rows, err := tx.Query(ctx, q, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CartLine
	for rows.Next() {
		var l model.CartLine
		if err := rows.Scan(
			&l.BookID, &l.Title, &l.Author, &l.Quantity, &l.UnitPrice, &l.StockQuantity,
			&l.Available, &l.Discount.Percent, &l.Discount.Start, &l.Discount.End, &l.AddedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repo) FulfilledCount(ctx context.Context, tx pgx.Tx, memberID int64) (int, error) {
	const q = `SELECT successful_orders FROM members WHERE id = $1`
	var n int
	err := tx.QueryRow(ctx, q, memberID).Scan(&n)
	return n, err
}

func (r *repo) DecrementStock(ctx context.Context, tx pgx.Tx, bookID int64, qty int) (bool, error) {
	// Guard: never below zero.
	const q = `
UPDATE books
SET stock_quantity = stock_quantity - $2
WHERE id = $1
  AND stock_quantity >= $2`
	tag, err := tx.Exec(ctx, q, bookID, qty)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// InsertOrder stores o and fills in its id and order date. It reports false,
// without failing the transaction, when the claim code is already taken.
func (r *repo) InsertOrder(ctx context.Context, tx pgx.Tx, o *model.Order) (bool, error) {
	const q = `
INSERT INTO orders (
	member_id, status, claim_code, subtotal, item_discount, bulk_discount, loyalty_discount,
	total_amount, bulk_discount_percent, sale_discount_applied, loyalty_discount_applied)
VALUES ($1,'PENDING',$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (claim_code) DO NOTHING
RETURNING id, order_date`
	err := tx.QueryRow(ctx, q,
		o.MemberID, o.ClaimCode, o.Subtotal, o.ItemDiscount, o.BulkDiscount, o.LoyaltyDiscount,
		o.TotalAmount, o.BulkDiscountPercent, o.SaleDiscountApplied, o.LoyaltyDiscountApplied,
	).Scan(&o.ID, &o.OrderDate)
	if database.IsNoRows(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	o.Status = model.OrderPending
	return true, nil
}

func (r *repo) InsertItems(ctx context.Context, tx pgx.Tx, orderID int64, items []model.OrderItem) error {
	const q = `
INSERT INTO order_items (order_id, book_id, quantity, unit_price, discount_percent)
VALUES ($1,$2,$3,$4,$5)`
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(q, orderID, it.BookID, it.Quantity, it.UnitPrice, it.DiscountPercent)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func (r *repo) ClearCart(ctx context.Context, tx pgx.Tx, memberID int64) error {
	_, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE member_id = $1`, memberID)
	return err
}

// Cancellation

func (r *repo) LockOrder(ctx context.Context, tx pgx.Tx, orderID int64) (int64, model.OrderStatus, error) {
	const q = `
SELECT member_id, status
FROM orders
WHERE id = $1
FOR UPDATE`
	var memberID int64
	var status model.OrderStatus
	err := tx.QueryRow(ctx, q, orderID).Scan(&memberID, &status)
	return memberID, status, err
}

func (r *repo) MarkCancelled(ctx context.Context, tx pgx.Tx, orderID int64) (bool, error) {
	const q = `
UPDATE orders
SET status = 'CANCELLED',
    is_cancelled = TRUE,
    cancelled_at = NOW()
WHERE id = $1
  AND status = 'PENDING'`
	tag, err := tx.Exec(ctx, q, orderID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repo) RestockItems(ctx context.Context, tx pgx.Tx, orderID int64) error {
	const q = `
UPDATE books b
SET stock_quantity = b.stock_quantity + oi.quantity
FROM order_items oi
WHERE oi.order_id = $1
  AND oi.book_id = b.id`
	_, err := tx.Exec(ctx, q, orderID)
	return err
}

// History

const orderCols = `
	id, member_id, order_date, status, claim_code, subtotal, item_discount, bulk_discount,
	loyalty_discount, total_amount, bulk_discount_percent, sale_discount_applied,
	loyalty_discount_applied, is_cancelled, cancelled_at, fulfilled_at`

func scanOrder(row pgx.Row) (model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.MemberID, &o.OrderDate, &o.Status, &o.ClaimCode, &o.Subtotal, &o.ItemDiscount, &o.BulkDiscount,
		&o.LoyaltyDiscount, &o.TotalAmount, &o.BulkDiscountPercent, &o.SaleDiscountApplied,
		&o.LoyaltyDiscountApplied, &o.IsCancelled, &o.CancelledAt, &o.FulfilledAt,
	)
	return o, err
}

func (r *repo) ListByMember(ctx context.Context, memberID int64) ([]model.Order, error) {
	q := `SELECT ` + orderCols + `
FROM orders
WHERE member_id = $1
ORDER BY order_date DESC, id DESC`
	rows, err := r.db.Pool.Query(ctx, q, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	items, err := r.itemsFor(ctx, lo.Map(out, func(o model.Order, _ int) int64 { return o.ID }))
	if err != nil {
		return nil, err
	}
	byOrder := lo.GroupBy(items, func(it model.OrderItem) int64 { return it.OrderID })
	for i := range out {
		out[i].Items = byOrder[out[i].ID]
	}
	return out, nil
}

// ByID returns nil, nil when the order does not exist.
func (r *repo) ByID(ctx context.Context, orderID int64) (*model.Order, error) {
	q := `SELECT ` + orderCols + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.db.Pool.QueryRow(ctx, q, orderID))
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if o.Items, err = r.itemsFor(ctx, []int64{o.ID}); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repo) itemsFor(ctx context.Context, orderIDs []int64) ([]model.OrderItem, error) {
	const q = `
SELECT oi.id, oi.order_id, oi.book_id, b.title, oi.quantity, oi.unit_price, oi.discount_percent
FROM order_items oi
JOIN books b ON b.id = oi.book_id
WHERE oi.order_id = ANY($1)
ORDER BY oi.order_id, oi.id`
	rows, err := r.db.Pool.Query(ctx, q, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.OrderItem
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.BookID, &it.Title, &it.Quantity, &it.UnitPrice, &it.DiscountPercent); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *repo) Contact(ctx context.Context, memberID int64) (string, string, error) {
	var name, email string
	err := r.db.Pool.QueryRow(ctx, `SELECT name, email FROM members WHERE id = $1`, memberID).Scan(&name, &email)
	return name, email, err
}
