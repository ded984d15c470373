package bookrepo

import (
	"context"
	"fmt"
	"time"

	"bookgalaxy/model"
	"bookgalaxy/util/database"
)

type Repo interface {
	Create(ctx context.Context, in model.BookInput) (int64, error)
	Update(ctx context.Context, id int64, in model.BookInput) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, f Filter) ([]model.Book, int, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

// rated and sold are joined by every catalog read; ratings are always
// averaged on the fly.
const catalogFrom = `
FROM books b
LEFT JOIN (
	SELECT book_id, AVG(rating)::float8 AS avg_rating, COUNT(*)::int AS review_count
	FROM reviews
	GROUP BY book_id
) r ON r.book_id = b.id
LEFT JOIN (
	SELECT oi.book_id, SUM(oi.quantity)::bigint AS sold
	FROM order_items oi
	JOIN orders o ON o.id = oi.order_id
	WHERE o.status <> 'CANCELLED'
	GROUP BY oi.book_id
) s ON s.book_id = b.id`

const bookCols = `
	b.id, b.title, b.author, b.genre, b.language, b.format, b.publisher, b.isbn, b.description,
	b.price, b.stock_quantity, b.is_available_in_library,
	b.discount_percent, b.discount_start, b.discount_end,
	b.is_award_winner, b.is_bestseller, b.publication_date, b.created_at,
	COALESCE(r.avg_rating, 0), COALESCE(r.review_count, 0)`

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(row scanner, now time.Time) (model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Genre, &b.Language, &b.Format, &b.Publisher, &b.ISBN, &b.Description,
		&b.Price, &b.StockQuantity, &b.IsAvailableInLibrary,
		&b.Discount.Percent, &b.Discount.Start, &b.Discount.End,
		&b.IsAwardWinner, &b.IsBestseller, &b.PublicationDate, &b.CreatedAt,
		&b.AverageRating, &b.ReviewCount,
	)
	b.OnSaleNow = b.Discount.OnSale(now)
	return b, err
}

func (r *repo) Create(ctx context.Context, in model.BookInput) (int64, error) {
	const q = `
INSERT INTO books (
	title, author, genre, language, format, publisher, isbn, description,
	price, stock_quantity, is_available_in_library,
	discount_percent, discount_start, discount_end,
	is_award_winner, is_bestseller, publication_date)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
RETURNING id`
	var id int64
	err := r.db.Pool.QueryRow(ctx, q,
		in.Title, in.Author, in.Genre, in.Language, in.Format, in.Publisher, in.ISBN, in.Description,
		in.Price, in.StockQuantity, in.IsAvailableInLibrary,
		in.DiscountPercent, in.DiscountStart, in.DiscountEnd,
		in.IsAwardWinner, in.IsBestseller, in.PublicationDate,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) Update(ctx context.Context, id int64, in model.BookInput) (bool, error) {
	const q = `
UPDATE books SET
	title=$2, author=$3, genre=$4, language=$5, format=$6, publisher=$7, isbn=$8, description=$9,
	price=$10, stock_quantity=$11, is_available_in_library=$12,
	discount_percent=$13, discount_start=$14, discount_end=$15,
	is_award_winner=$16, is_bestseller=$17, publication_date=$18
WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id,
		in.Title, in.Author, in.Genre, in.Language, in.Format, in.Publisher, in.ISBN, in.Description,
		in.Price, in.StockQuantity, in.IsAvailableInLibrary,
		in.DiscountPercent, in.DiscountStart, in.DiscountEnd,
		in.IsAwardWinner, in.IsBestseller, in.PublicationDate,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM books WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// List returns one page of books plus the total number of matches.
func (r *repo) List(ctx context.Context, f Filter) ([]model.Book, int, error) {
	now := time.Now().UTC()
	w := f.build(now)

	var total int
	countQ := `SELECT COUNT(*) ` + catalogFrom + ` ` + w.sql()
	if err := r.db.Pool.QueryRow(ctx, countQ, w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(w.args)
	q := fmt.Sprintf(`SELECT %s %s %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		bookCols, catalogFrom, w.sql(), f.orderBy(), n+1, n+2)
	args := append(w.args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Book, 0, f.PageSize)
	for rows.Next() {
		b, err := scanBook(rows, now)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

// Detail returns nil, nil when the book does not exist.
func (r *repo) Detail(ctx context.Context, id int64) (*model.Book, error) {
	q := `SELECT ` + bookCols + catalogFrom + ` WHERE b.id = $1`
	b, err := scanBook(r.db.Pool.QueryRow(ctx, q, id), time.Now().UTC())
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
