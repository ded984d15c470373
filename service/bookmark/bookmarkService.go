package bookmarksvc

import (
	"context"

	"bookgalaxy/model"
	bookmarkrepo "bookgalaxy/repository/bookmark"
	"bookgalaxy/util/apperr"
	"bookgalaxy/util/database"
)

type Service interface {
	Add(ctx context.Context, memberID, bookID int64) (*model.Bookmark, error)
	Remove(ctx context.Context, memberID, bookID int64) error
	List(ctx context.Context, memberID int64) ([]model.Bookmark, error)
}

type service struct{ r bookmarkrepo.Repo }

func New(r bookmarkrepo.Repo) Service { return &service{r: r} }

func (s *service) Add(ctx context.Context, memberID, bookID int64) (*model.Bookmark, error) {
	bm, err := s.r.Add(ctx, memberID, bookID)
	if database.IsForeignKeyViolation(err) || database.IsNoRows(err) {
		return nil, apperr.New(apperr.ErrNotFound, "book not found")
	}
	return bm, err
}

func (s *service) Remove(ctx context.Context, memberID, bookID int64) error {
	ok, err := s.r.Remove(ctx, memberID, bookID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.ErrNotFound, "bookmark not found")
	}
	return nil
}

func (s *service) List(ctx context.Context, memberID int64) ([]model.Bookmark, error) {
	return s.r.List(ctx, memberID)
}
