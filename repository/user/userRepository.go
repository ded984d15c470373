package userrepo

import (
	"context"

	"bookgalaxy/model"
	"bookgalaxy/util/database"
)

// Repo is the admin view over member accounts.
type Repo interface {
	List(ctx context.Context, limit, offset int) ([]model.Member, int, error)
	ByID(ctx context.Context, id int64) (*model.Member, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) List(ctx context.Context, limit, offset int) ([]model.Member, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM members`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, email, membership_id, join_date, successful_orders
		FROM members
		ORDER BY id
		LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Member{}
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.MembershipID, &m.JoinDate, &m.SuccessfulOrders); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Member, error) {
	m := &model.Member{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, email, membership_id, join_date, successful_orders
		FROM members
		WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.Name, &m.Email, &m.MembershipID, &m.JoinDate, &m.SuccessfulOrders)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes a member; carts, orders, reviews and bookmarks cascade.
func (r *repo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
