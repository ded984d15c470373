package reviewrepo

import (
	"context"

	"bookgalaxy/model"
	"bookgalaxy/util/database"
)

type Repo interface {
	HasFulfilledPurchase(ctx context.Context, memberID, bookID int64) (bool, error)
	Exists(ctx context.Context, memberID, bookID int64) (bool, error)
	BookExists(ctx context.Context, bookID int64) (bool, error)

	Create(ctx context.Context, rv *model.Review) error
	ByID(ctx context.Context, id int64) (*model.Review, error)
	Update(ctx context.Context, id int64, rating int, comment string) (*model.Review, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ListByBook(ctx context.Context, bookID int64) ([]model.Review, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) HasFulfilledPurchase(ctx context.Context, memberID, bookID int64) (bool, error) {
	const q = `
SELECT EXISTS (
	SELECT 1
	FROM orders o
	JOIN order_items oi ON oi.order_id = o.id
	WHERE o.member_id = $1
	  AND oi.book_id = $2
	  AND o.status = 'FULFILLED'
)`
	var ok bool
	err := r.db.Pool.QueryRow(ctx, q, memberID, bookID).Scan(&ok)
	return ok, err
}

func (r *repo) Exists(ctx context.Context, memberID, bookID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM reviews WHERE member_id = $1 AND book_id = $2)`
	var ok bool
	err := r.db.Pool.QueryRow(ctx, q, memberID, bookID).Scan(&ok)
	return ok, err
}

func (r *repo) BookExists(ctx context.Context, bookID int64) (bool, error) {
	var ok bool
	err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, bookID).Scan(&ok)
	return ok, err
}

// Create relies on reviews_member_book_key to reject a second review that
// races past the eligibility check.
func (r *repo) Create(ctx context.Context, rv *model.Review) error {
	const q = `
INSERT INTO reviews (book_id, member_id, rating, comment)
VALUES ($1,$2,$3,$4)
RETURNING id, created_at, updated_at`
	return r.db.Pool.QueryRow(ctx, q, rv.BookID, rv.MemberID, rv.Rating, rv.Comment).
		Scan(&rv.ID, &rv.CreatedAt, &rv.UpdatedAt)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Review, error) {
	const q = `
SELECT rv.id, rv.book_id, rv.member_id, m.name, rv.rating, rv.comment, rv.created_at, rv.updated_at
FROM reviews rv
JOIN members m ON m.id = rv.member_id
WHERE rv.id = $1`
	var rv model.Review
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(
		&rv.ID, &rv.BookID, &rv.MemberID, &rv.MemberName, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt,
	)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *repo) Update(ctx context.Context, id int64, rating int, comment string) (*model.Review, error) {
	const q = `
UPDATE reviews
SET rating = $2, comment = $3, updated_at = NOW()
WHERE id = $1
RETURNING id, book_id, member_id, rating, comment, created_at, updated_at`
	var rv model.Review
	err := r.db.Pool.QueryRow(ctx, q, id, rating, comment).Scan(
		&rv.ID, &rv.BookID, &rv.MemberID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt,
	)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *repo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repo) ListByBook(ctx context.Context, bookID int64) ([]model.Review, error) {
	const q = `
SELECT rv.id, rv.book_id, rv.member_id, m.name, rv.rating, rv.comment, rv.created_at, rv.updated_at
FROM reviews rv
JOIN members m ON m.id = rv.member_id
WHERE rv.book_id = $1
ORDER BY rv.created_at DESC, rv.id DESC`
	rows, err := r.db.Pool.Query(ctx, q, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Review{}
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.BookID, &rv.MemberID, &rv.MemberName, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
