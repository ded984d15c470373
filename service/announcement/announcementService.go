package announcementsvc

import (
	"context"
	"strings"
	"time"

	"bookgalaxy/model"
	announcementrepo "bookgalaxy/repository/announcement"
	"bookgalaxy/util/apperr"
)

type Input struct {
	Title   string    `json:"title" validate:"required,max=200"`
	Message string    `json:"message" validate:"required,max=2000"`
	Type    string    `json:"type" validate:"max=40"`
	StartAt time.Time `json:"start_at" validate:"required"`
	EndAt   time.Time `json:"end_at" validate:"required"`
}

type Service interface {
	Create(ctx context.Context, in Input) (*model.Announcement, error)
	Update(ctx context.Context, id int64, in Input) (*model.Announcement, error)
	Delete(ctx context.Context, id int64) error
	Active(ctx context.Context) ([]model.Announcement, error)
}

type service struct {
	r   announcementrepo.Repo
	now func() time.Time
}

func New(r announcementrepo.Repo) Service { return &service{r: r, now: time.Now} }

func toModel(in Input) (*model.Announcement, error) {
	a := &model.Announcement{
		Title:   strings.TrimSpace(in.Title),
		Message: strings.TrimSpace(in.Message),
		Type:    strings.TrimSpace(in.Type),
		StartAt: in.StartAt,
		EndAt:   in.EndAt,
	}
	bad := map[string]string{}
	if a.Title == "" {
		bad["title"] = "required"
	}
	if a.Message == "" {
		bad["message"] = "required"
	}
	if a.StartAt.IsZero() || a.EndAt.IsZero() {
		bad["start_at"] = "required"
	} else if a.EndAt.Before(a.StartAt) {
		bad["end_at"] = "gte start_at"
	}
	if len(bad) > 0 {
		return nil, apperr.Invalid(bad)
	}
	return a, nil
}

func (s *service) Create(ctx context.Context, in Input) (*model.Announcement, error) {
	a, err := toModel(in)
	if err != nil {
		return nil, err
	}
	if err := s.r.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) Update(ctx context.Context, id int64, in Input) (*model.Announcement, error) {
	a, err := toModel(in)
	if err != nil {
		return nil, err
	}
	a.ID = id
	ok, err := s.r.Update(ctx, a)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.ErrNotFound, "announcement not found")
	}
	return a, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	ok, err := s.r.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.ErrNotFound, "announcement not found")
	}
	return nil
}

func (s *service) Active(ctx context.Context) ([]model.Announcement, error) {
	return s.r.Active(ctx, s.now())
}
