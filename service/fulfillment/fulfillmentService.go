package fulfillmentsvc

import (
	"context"
	"log/slog"

	"bookgalaxy/model"
	fulfillmentrepo "bookgalaxy/repository/fulfillment"
	"bookgalaxy/util/apperr"
	"bookgalaxy/util/claimcode"

	"github.com/jackc/pgx/v5"
)

type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type Service interface {
	// Fulfill hands a pending order over at the counter. Unknown, already
	// fulfilled and cancelled codes all report NOT_FOUND.
	Fulfill(ctx context.Context, staffID int64, code string) (*model.ProcessedOrder, error)
	Pending(ctx context.Context, code string) (*model.Order, error)
	Processed(ctx context.Context, staffID int64) ([]model.ProcessedOrder, error)
}

type service struct {
	tx  TxRunner
	r   fulfillmentrepo.Repo
	log *slog.Logger
}

func New(tx TxRunner, r fulfillmentrepo.Repo, log *slog.Logger) Service {
	return &service{tx: tx, r: r, log: log}
}

func normalize(code string) (string, error) {
	c := claimcode.Normalize(code)
	if c == "" {
		return "", apperr.Field("claim_code", "required")
	}
	return c, nil
}

func (s *service) Fulfill(ctx context.Context, staffID int64, code string) (*model.ProcessedOrder, error) {
	c, err := normalize(code)
	if err != nil {
		return nil, err
	}

	var p model.ProcessedOrder
	err = s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		orderID, memberID, ok, err := s.r.MarkFulfilled(ctx, tx, c)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.New(apperr.ErrNotFound, "no pending order with that claim code")
		}
		if p, err = s.r.InsertProcessed(ctx, tx, orderID, staffID); err != nil {
			return err
		}
		p.ClaimCode = c
		p.MemberID = memberID
		return s.r.CreditMember(ctx, tx, memberID)
	})
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "order fulfilled", "order_id", p.OrderID, "staff_id", staffID, "member_id", p.MemberID)
	return &p, nil
}

func (s *service) Pending(ctx context.Context, code string) (*model.Order, error) {
	c, err := normalize(code)
	if err != nil {
		return nil, err
	}
	o, err := s.r.PendingByClaimCode(ctx, c)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.New(apperr.ErrNotFound, "no pending order with that claim code")
	}
	return o, nil
}

func (s *service) Processed(ctx context.Context, staffID int64) ([]model.ProcessedOrder, error) {
	return s.r.ListByStaff(ctx, staffID)
}
