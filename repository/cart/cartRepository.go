package cartrepo

import (
	"context"

	"bookgalaxy/model"
	"bookgalaxy/util/database"
)

type Repo interface {
	List(ctx context.Context, memberID int64) ([]model.CartLine, error)
	Add(ctx context.Context, memberID, bookID int64, qty int) (int, error)
	SetQuantity(ctx context.Context, memberID, bookID int64, qty int) (bool, error)
	Remove(ctx context.Context, memberID, bookID int64) (bool, error)
	Clear(ctx context.Context, memberID int64) error

	BookStock(ctx context.Context, bookID int64) (stock int, available bool, found bool, err error)
	Quantity(ctx context.Context, memberID, bookID int64) (int, error)
	FulfilledCount(ctx context.Context, memberID int64) (int, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) List(ctx context.Context, memberID int64) ([]model.CartLine, error) {
	const q = `
SELECT c.book_id, b.title, b.author, c.quantity, b.price, b.stock_quantity,
       b.is_available_in_library, b.discount_percent, b.discount_start, b.discount_end, c.added_at
FROM cart_items c
JOIN books b ON b.id = c.book_id
WHERE c.member_id = $1
ORDER BY c.added_at, c.book_id`
	rows, err := r.db.Pool.Query(ctx, q, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CartLine{}
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

// Add puts qty copies in the cart, adding to an existing line for the same
// book. It returns the resulting quantity.
func (r *repo) Add(ctx context.Context, memberID, bookID int64, qty int) (int, error) {
	const q = `
INSERT INTO cart_items (member_id, book_id, quantity)
VALUES ($1,$2,$3)
ON CONFLICT ON CONSTRAINT cart_items_member_book_key
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
RETURNING quantity`
	var n int
	err := r.db.Pool.QueryRow(ctx, q, memberID, bookID, qty).Scan(&n)
	return n, err
}

func (r *repo) SetQuantity(ctx context.Context, memberID, bookID int64, qty int) (bool, error) {
	const q = `UPDATE cart_items SET quantity = $3 WHERE member_id = $1 AND book_id = $2`
	tag, err := r.db.Pool.Exec(ctx, q, memberID, bookID, qty)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repo) Remove(ctx context.Context, memberID, bookID int64) (bool, error) {
	const q = `DELETE FROM cart_items WHERE member_id = $1 AND book_id = $2`
	tag, err := r.db.Pool.Exec(ctx, q, memberID, bookID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repo) Clear(ctx context.Context, memberID int64) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM cart_items WHERE member_id = $1`, memberID)
	return err
}

func (r *repo) BookStock(ctx context.Context, bookID int64) (int, bool, bool, error) {
	const q = `SELECT stock_quantity, is_available_in_library FROM books WHERE id = $1`
	var stock int
	var avail bool
	err := r.db.Pool.QueryRow(ctx, q, bookID).Scan(&stock, &avail)
	if database.IsNoRows(err) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, err
	}
	return stock, avail, true, nil
}

// Quantity returns 0 when the book is not in the cart.
func (r *repo) Quantity(ctx context.Context, memberID, bookID int64) (int, error) {
	const q = `SELECT quantity FROM cart_items WHERE member_id = $1 AND book_id = $2`
	var n int
	err := r.db.Pool.QueryRow(ctx, q, memberID, bookID).Scan(&n)
	if database.IsNoRows(err) {
		return 0, nil
	}
	return n, err
}

func (r *repo) FulfilledCount(ctx context.Context, memberID int64) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT successful_orders FROM members WHERE id = $1`, memberID).Scan(&n)
	return n, err
}
