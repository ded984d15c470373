package membersvc

import (
	"context"

	"bookgalaxy/model"
	userrepo "bookgalaxy/repository/user"
	"bookgalaxy/util/apperr"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Page struct {
	Items    []model.Member `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// Service is the admin's member directory.
type Service interface {
	List(ctx context.Context, page, size int) (*Page, error)
	Get(ctx context.Context, id int64) (*model.Member, error)
	Delete(ctx context.Context, id int64) error
}

type service struct{ r userrepo.Repo }

func New(r userrepo.Repo) Service { return &service{r: r} }

func (s *service) List(ctx context.Context, page, size int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	items, total, err := s.r.List(ctx, size, (page-1)*size)
	if err != nil {
		return nil, err
	}
	return &Page{Items: items, Total: total, Page: page, PageSize: size}, nil
}

func (s *service) Get(ctx context.Context, id int64) (*model.Member, error) {
	m, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperr.New(apperr.ErrNotFound, "member not found")
	}
	return m, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	ok, err := s.r.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.ErrNotFound, "member not found")
	}
	return nil
}
