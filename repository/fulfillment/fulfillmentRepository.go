package fulfillmentrepo

import (
	"context"

	"bookgalaxy/model"
	"bookgalaxy/util/database"

	"github.com/jackc/pgx/v5"
)

type Repo interface {
	// MarkFulfilled flips a pending order to FULFILLED. ok is false when no
	// pending order carries the code.
	MarkFulfilled(ctx context.Context, tx pgx.Tx, claimCode string) (orderID, memberID int64, ok bool, err error)
	InsertProcessed(ctx context.Context, tx pgx.Tx, orderID, staffID int64) (model.ProcessedOrder, error)
	CreditMember(ctx context.Context, tx pgx.Tx, memberID int64) error

	PendingByClaimCode(ctx context.Context, claimCode string) (*model.Order, error)
	ListByStaff(ctx context.Context, staffID int64) ([]model.ProcessedOrder, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) MarkFulfilled(ctx context.Context, tx pgx.Tx, claimCode string) (int64, int64, bool, error) {
	// the status guard makes a claim code single-use
	const q = `
UPDATE orders
SET status = 'FULFILLED', fulfilled_at = NOW()
WHERE claim_code = $1 AND status = 'PENDING'
RETURNING id, member_id`
	var orderID, memberID int64
	err := tx.QueryRow(ctx, q, claimCode).Scan(&orderID, &memberID)
	if database.IsNoRows(err) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}
	return orderID, memberID, true, nil
}

func (r *repo) InsertProcessed(ctx context.Context, tx pgx.Tx, orderID, staffID int64) (model.ProcessedOrder, error) {
	const q = `
INSERT INTO processed_orders (order_id, staff_id)
VALUES ($1,$2)
RETURNING id, processed_at`
	p := model.ProcessedOrder{OrderID: orderID, StaffID: staffID}
	err := tx.QueryRow(ctx, q, orderID, staffID).Scan(&p.ID, &p.ProcessedAt)
	return p, err
}

func (r *repo) CreditMember(ctx context.Context, tx pgx.Tx, memberID int64) error {
	const q = `UPDATE members SET successful_orders = successful_orders + 1 WHERE id = $1`
	_, err := tx.Exec(ctx, q, memberID)
	return err
}

// PendingByClaimCode returns nil, nil unless a pending order carries the code.
func (r *repo) PendingByClaimCode(ctx context.Context, claimCode string) (*model.Order, error) {
	const q = `
SELECT o.id, o.member_id, o.order_date, o.status, o.claim_code, o.subtotal, o.total_amount
FROM orders o
WHERE o.claim_code = $1 AND o.status = 'PENDING'`
	var o model.Order
	err := r.db.Pool.QueryRow(ctx, q, claimCode).Scan(
		&o.ID, &o.MemberID, &o.OrderDate, &o.Status, &o.ClaimCode, &o.Subtotal, &o.TotalAmount,
	)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	const qi = `
SELECT oi.id, oi.order_id, oi.book_id, b.title, oi.quantity, oi.unit_price, oi.discount_percent
FROM order_items oi
JOIN books b ON b.id = oi.book_id
WHERE oi.order_id = $1
ORDER BY oi.id`
	rows, err := r.db.Pool.Query(ctx, qi, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.BookID, &it.Title, &it.Quantity, &it.UnitPrice, &it.DiscountPercent); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

func (r *repo) ListByStaff(ctx context.Context, staffID int64) ([]model.ProcessedOrder, error) {
	const q = `
SELECT p.id, p.order_id, p.staff_id, p.processed_at, o.claim_code, o.member_id, o.total_amount
FROM processed_orders p
JOIN orders o ON o.id = p.order_id
WHERE p.staff_id = $1
ORDER BY p.processed_at DESC, p.id DESC`
	rows, err := r.db.Pool.Query(ctx, q, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ProcessedOrder{}
	for rows.Next() {
		var p model.ProcessedOrder
		if err := rows.Scan(&p.ID, &p.OrderID, &p.StaffID, &p.ProcessedAt, &p.ClaimCode, &p.MemberID, &p.TotalAmount); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
