package bookmarkrepo

import (
	"context"

	"bookgalaxy/model"
	"bookgalaxy/util/database"
)

type Repo interface {
	Add(ctx context.Context, memberID, bookID int64) (*model.Bookmark, error)
	Remove(ctx context.Context, memberID, bookID int64) (bool, error)
	List(ctx context.Context, memberID int64) ([]model.Bookmark, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

// Add is idempotent: bookmarking the same book twice returns the first row.
func (r *repo) Add(ctx context.Context, memberID, bookID int64) (*model.Bookmark, error) {
	const q = `
WITH ins AS (
	INSERT INTO bookmarks (member_id, book_id)
	VALUES ($1,$2)
	ON CONFLICT ON CONSTRAINT bookmarks_member_book_key DO NOTHING
	RETURNING id, member_id, book_id, bookmarked_at
), hit AS (
	SELECT id, member_id, book_id, bookmarked_at FROM ins
	UNION ALL
	SELECT id, member_id, book_id, bookmarked_at FROM bookmarks WHERE member_id = $1 AND book_id = $2
	LIMIT 1
)
SELECT hit.id, hit.member_id, hit.book_id, b.title, b.author, hit.bookmarked_at
FROM hit
JOIN books b ON b.id = hit.book_id`
	var bm model.Bookmark
	err := r.db.Pool.QueryRow(ctx, q, memberID, bookID).Scan(
		&bm.ID, &bm.MemberID, &bm.BookID, &bm.Title, &bm.Author, &bm.BookmarkedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bm, nil
}

func (r *repo) Remove(ctx context.Context, memberID, bookID int64) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM bookmarks WHERE member_id = $1 AND book_id = $2`, memberID, bookID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repo) List(ctx context.Context, memberID int64) ([]model.Bookmark, error) {
	const q = `
SELECT bm.id, bm.member_id, bm.book_id, b.title, b.author, bm.bookmarked_at
FROM bookmarks bm
JOIN books b ON b.id = bm.book_id
WHERE bm.member_id = $1
ORDER BY bm.bookmarked_at DESC, bm.id DESC`
	rows, err := r.db.Pool.Query(ctx, q, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Bookmark{}
	for rows.Next() {
		var bm model.Bookmark
		if err := rows.Scan(&bm.ID, &bm.MemberID, &bm.BookID, &bm.Title, &bm.Author, &bm.BookmarkedAt); err != nil {
			return nil, err
		}
		out = append(out, bm)
	}
	return out, rows.Err()
}
