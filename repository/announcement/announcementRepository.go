package announcementrepo

import (
	"context"
	"time"

	"bookgalaxy/model"
	"bookgalaxy/util/database"
)

type Repo interface {
	Create(ctx context.Context, a *model.Announcement) error
	Update(ctx context.Context, a *model.Announcement) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Active(ctx context.Context, at time.Time) ([]model.Announcement, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, a *model.Announcement) error {
	const q = `
INSERT INTO announcements (title, message, type, start_at, end_at)
VALUES ($1,$2,$3,$4,$5)
RETURNING id, created_at`
	return r.db.Pool.QueryRow(ctx, q, a.Title, a.Message, a.Type, a.StartAt, a.EndAt).Scan(&a.ID, &a.CreatedAt)
}

func (r *repo) Update(ctx context.Context, a *model.Announcement) (bool, error) {
	const q = `
UPDATE announcements
SET title = $2, message = $3, type = $4, start_at = $5, end_at = $6
WHERE id = $1
RETURNING created_at`
	err := r.db.Pool.QueryRow(ctx, q, a.ID, a.Title, a.Message, a.Type, a.StartAt, a.EndAt).Scan(&a.CreatedAt)
	if database.IsNoRows(err) {
		return false, nil
	}
	return err == nil, err
}

func (r *repo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repo) Active(ctx context.Context, at time.Time) ([]model.Announcement, error) {
	const q = `
SELECT id, title, message, type, start_at, end_at, created_at
FROM announcements
WHERE start_at <= $1 AND end_at >= $1
ORDER BY start_at DESC, id DESC`
	rows, err := r.db.Pool.Query(ctx, q, at)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Announcement{}
	for rows.Next() {
		var a model.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Message, &a.Type, &a.StartAt, &a.EndAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
