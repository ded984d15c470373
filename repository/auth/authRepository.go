package authrepo

import (
	"context"
	"fmt"

	"bookgalaxy/model"
	"bookgalaxy/util/database"
)

type Repo interface {
	CreateMember(ctx context.Context, m *model.Member) error
	MemberByEmail(ctx context.Context, email string) (*model.Member, error)

	CreateStaff(ctx context.Context, a *model.Account) error
	AccountByEmail(ctx context.Context, role model.Role, email string) (*model.Account, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) CreateMember(ctx context.Context, m *model.Member) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO members(name, email, password_hash, membership_id)
		VALUES ($1,$2,$3,$4)
		RETURNING id, join_date, successful_orders`,
		m.Name, m.Email, m.PasswordHash, m.MembershipID,
	).Scan(&m.ID, &m.JoinDate, &m.SuccessfulOrders)
}

// MemberByEmail returns nil, nil when no member uses the address.
func (r *repo) MemberByEmail(ctx context.Context, email string) (*model.Member, error) {
	m := &model.Member{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, membership_id, join_date, successful_orders
		FROM members
		WHERE lower(email) = lower($1)`,
		email,
	).Scan(&m.ID, &m.Name, &m.Email, &m.PasswordHash, &m.MembershipID, &m.JoinDate, &m.SuccessfulOrders)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *repo) CreateStaff(ctx context.Context, a *model.Account) error {
	a.Role = model.RoleStaff
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO staff(name, email, password_hash)
		VALUES ($1,$2,$3)
		RETURNING id, created_at`,
		a.Name, a.Email, a.PasswordHash,
	).Scan(&a.ID, &a.CreatedAt)
}

func accountTable(role model.Role) (string, error) {
	switch role {
	case model.RoleStaff:
		return "staff", nil
	case model.RoleAdmin:
		return "admins", nil
	}
	return "", fmt.Errorf("no account table for role %q", role)
}

// AccountByEmail looks up a staff or admin login. It returns nil, nil when
// nothing matches.
func (r *repo) AccountByEmail(ctx context.Context, role model.Role, email string) (*model.Account, error) {
	table, err := accountTable(role)
	if err != nil {
		return nil, err
	}
	a := &model.Account{Role: role}
	err = r.db.Pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM `+table+`
		WHERE lower(email) = lower($1)`,
		email,
	).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
