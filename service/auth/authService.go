package authsvc

import (
	"context"
	"strings"

	"bookgalaxy/model"
	authrepo "bookgalaxy/repository/auth"
	"bookgalaxy/util/apperr"
	"bookgalaxy/util/database"
	"bookgalaxy/util/hash"
	jwtutil "bookgalaxy/util/jwt"

	"github.com/google/uuid"
)

// Session is what a successful login or registration hands back.
type Session struct {
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	Token string     `json:"token"`
}

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.Member, string, error)
	Login(ctx context.Context, req model.LoginReq) (*Session, error)
	CreateStaff(ctx context.Context, req model.CreateStaffReq) (*model.Account, error)
}

type service struct {
	r   authrepo.Repo
	jwt jwtutil.Config
}

func New(r authrepo.Repo, jwt jwtutil.Config) Service { return &service{r: r, jwt: jwt} }

func normEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.Member, string, error) {
	req.Email = normEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Name == "" || len(req.Password) < 6 {
		return nil, "", apperr.Invalid(map[string]string{"email": "required", "name": "required", "password": "min=6"})
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}
	m := &model.Member{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashed,
		MembershipID: uuid.NewString(),
	}
	if err := s.r.CreateMember(ctx, m); err != nil {
		if database.IsUniqueViolation(err, "email") {
			return nil, "", apperr.New(apperr.ErrEmailTaken, "email already registered")
		}
		return nil, "", err
	}

	token, err := jwtutil.Issue(s.jwt, m.ID, string(model.RoleMember))
	if err != nil {
		return nil, "", err
	}
	return m, token, nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*Session, error) {
	email := normEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperr.New(apperr.ErrInvalidCreds, "invalid credentials")
	}
	role := req.Role
	if role == "" {
		role = model.RoleMember
	}
	if !role.Valid() {
		return nil, apperr.Field("role", "oneof=member staff admin")
	}

	var sess Session
	var hashed string
	if role == model.RoleMember {
		m, err := s.r.MemberByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, apperr.New(apperr.ErrInvalidCreds, "invalid credentials")
		}
		sess = Session{ID: m.ID, Name: m.Name, Email: m.Email, Role: role}
		hashed = m.PasswordHash
	} else {
		a, err := s.r.AccountByEmail(ctx, role, email)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, apperr.New(apperr.ErrInvalidCreds, "invalid credentials")
		}
		sess = Session{ID: a.ID, Name: a.Name, Email: a.Email, Role: role}
		hashed = a.PasswordHash
	}
	if !hash.Check(hashed, req.Password) {
		return nil, apperr.New(apperr.ErrInvalidCreds, "invalid credentials")
	}

	token, err := jwtutil.Issue(s.jwt, sess.ID, string(role))
	if err != nil {
		return nil, err
	}
	sess.Token = token
	return &sess, nil
}

func (s *service) CreateStaff(ctx context.Context, req model.CreateStaffReq) (*model.Account, error) {
	req.Email = normEmail(req.Email)
	if req.Email == "" || strings.TrimSpace(req.Name) == "" || len(req.Password) < 8 {
		return nil, apperr.Invalid(map[string]string{"email": "required", "name": "required", "password": "min=8"})
	}
	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	a := &model.Account{Name: strings.TrimSpace(req.Name), Email: req.Email, PasswordHash: hashed}
	if err := s.r.CreateStaff(ctx, a); err != nil {
		if database.IsUniqueViolation(err, "email") {
			return nil, apperr.New(apperr.ErrEmailTaken, "email already registered")
		}
		return nil, err
	}
	return a, nil
}
