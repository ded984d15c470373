package reviewsvc

import (
	"context"
	"strings"
	"unicode/utf8"

	"bookgalaxy/model"
	reviewrepo "bookgalaxy/repository/review"
	"bookgalaxy/service/policy"
	"bookgalaxy/util/apperr"
	"bookgalaxy/util/database"
)

const MaxCommentLen = 1000

type Input struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

// Eligibility explains the answer to "may this member review this book".
type Eligibility struct {
	CanReview       bool `json:"can_review"`
	HasPurchased    bool `json:"has_purchased"`
	AlreadyReviewed bool `json:"already_reviewed"`
}

type Service interface {
	CanReview(ctx context.Context, memberID, bookID int64) (*Eligibility, error)
	Create(ctx context.Context, memberID, bookID int64, in Input) (*model.Review, error)
	Update(ctx context.Context, s policy.Subject, reviewID int64, in Input) (*model.Review, error)
	Delete(ctx context.Context, s policy.Subject, reviewID int64) error
	ListByBook(ctx context.Context, bookID int64) ([]model.Review, error)
}

type service struct{ r reviewrepo.Repo }

func New(r reviewrepo.Repo) Service { return &service{r: r} }

func checkInput(in *Input) error {
	in.Comment = strings.TrimSpace(in.Comment)
	bad := map[string]string{}
	if in.Rating < 1 || in.Rating > 5 {
		bad["rating"] = "between 1 and 5"
	}
	if utf8.RuneCountInString(in.Comment) > MaxCommentLen {
		bad["comment"] = "max=1000"
	}
	if len(bad) > 0 {
		return apperr.Invalid(bad)
	}
	return nil
}

func (s *service) CanReview(ctx context.Context, memberID, bookID int64) (*Eligibility, error) {
	bought, err := s.r.HasFulfilledPurchase(ctx, memberID, bookID)
	if err != nil {
		return nil, err
	}
	exists, err := s.r.Exists(ctx, memberID, bookID)
	if err != nil {
		return nil, err
	}
	return &Eligibility{CanReview: bought && !exists, HasPurchased: bought, AlreadyReviewed: exists}, nil
}

func (s *service) Create(ctx context.Context, memberID, bookID int64, in Input) (*model.Review, error) {
	if err := checkInput(&in); err != nil {
		return nil, err
	}
	ok, err := s.r.BookExists(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.ErrNotFound, "book not found")
	}

	el, err := s.CanReview(ctx, memberID, bookID)
	if err != nil {
		return nil, err
	}
	if el.AlreadyReviewed {
		return nil, apperr.New(apperr.ErrReviewExists, "you already reviewed this book")
	}
	if !el.HasPurchased {
		return nil, apperr.New(apperr.ErrNotEligible, "only members who received this book can review it")
	}

	rv := &model.Review{BookID: bookID, MemberID: memberID, Rating: in.Rating, Comment: in.Comment}
	if err := s.r.Create(ctx, rv); err != nil {
		if database.IsUniqueViolation(err, "reviews_member_book") {
			return nil, apperr.New(apperr.ErrReviewExists, "you already reviewed this book")
		}
		return nil, err
	}
	return rv, nil
}

// load fetches a review and checks sub may change it. Reviews are public, so
// a foreign one is FORBIDDEN rather than hidden.
func (s *service) load(ctx context.Context, sub policy.Subject, reviewID int64) (*model.Review, error) {
	rv, err := s.r.ByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if rv == nil {
		return nil, apperr.New(apperr.ErrNotFound, "review not found")
	}
	if err := policy.Authorize(sub, policy.EditReview, policy.Resource{OwnerID: rv.MemberID}); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *service) Update(ctx context.Context, sub policy.Subject, reviewID int64, in Input) (*model.Review, error) {
	if err := checkInput(&in); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, sub, reviewID); err != nil {
		return nil, err
	}
	rv, err := s.r.Update(ctx, reviewID, in.Rating, in.Comment)
	if err != nil {
		return nil, err
	}
	if rv == nil {
		return nil, apperr.New(apperr.ErrNotFound, "review not found")
	}
	return rv, nil
}

func (s *service) Delete(ctx context.Context, sub policy.Subject, reviewID int64) error {
	if _, err := s.load(ctx, sub, reviewID); err != nil {
		return err
	}
	ok, err := s.r.Delete(ctx, reviewID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.ErrNotFound, "review not found")
	}
	return nil
}

func (s *service) ListByBook(ctx context.Context, bookID int64) ([]model.Review, error) {
	return s.r.ListByBook(ctx, bookID)
}
