package echoServer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bookgalaxy/app/echoServer/controller/announcement"
	"bookgalaxy/app/echoServer/controller/auth"
	"bookgalaxy/app/echoServer/controller/book"
	"bookgalaxy/app/echoServer/controller/bookmark"
	"bookgalaxy/app/echoServer/controller/cart"
	"bookgalaxy/app/echoServer/controller/fulfillment"
	"bookgalaxy/app/echoServer/controller/member"
	"bookgalaxy/app/echoServer/controller/order"
	"bookgalaxy/app/echoServer/controller/review"
	"bookgalaxy/app/echoServer/httperr"
	"bookgalaxy/app/echoServer/validation"
	"bookgalaxy/model"
	bookrepo "bookgalaxy/repository/book"
	booksvc "bookgalaxy/service/book"
	"bookgalaxy/service/policy"
	"bookgalaxy/util/apperr"
	jwtutil "bookgalaxy/util/jwt"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testJWT = jwtutil.Config{Secret: "routes-test", Issuer: "bookgalaxy", TTL: time.Hour}

type fakeBooks struct {
	listFn   func(ctx context.Context, f bookrepo.Filter) (*booksvc.Page, error)
	detailFn func(ctx context.Context, id int64) (*model.Book, error)
	created  bool
}

func (f *fakeBooks) Create(ctx context.Context, in model.BookInput) (*model.Book, error) {
	f.created = true
	return &model.Book{ID: 1, Title: in.Title}, nil
}
func (f *fakeBooks) Update(ctx context.Context, id int64, in model.BookInput) (*model.Book, error) {
	return nil, errors.New("not used")
}
func (f *fakeBooks) Delete(ctx context.Context, id int64) error { return nil }
func (f *fakeBooks) List(ctx context.Context, fl bookrepo.Filter) (*booksvc.Page, error) {
	return f.listFn(ctx, fl)
}
func (f *fakeBooks) Detail(ctx context.Context, id int64) (*model.Book, error) {
	return f.detailFn(ctx, id)
}

type fakeOrders struct {
	checkoutFn func(ctx context.Context, memberID int64, key string) (*model.Order, bool, error)
	getFn      func(ctx context.Context, s policy.Subject, id int64) (*model.Order, error)
}

func (f *fakeOrders) Checkout(ctx context.Context, memberID int64, key string) (*model.Order, bool, error) {
	return f.checkoutFn(ctx, memberID, key)
}
func (f *fakeOrders) Cancel(ctx context.Context, s policy.Subject, id int64) (*model.Order, error) {
	return nil, apperr.New(apperr.ErrOrderNotPending, "order is not pending")
}
func (f *fakeOrders) Get(ctx context.Context, s policy.Subject, id int64) (*model.Order, error) {
	return f.getFn(ctx, s, id)
}
func (f *fakeOrders) ListMine(ctx context.Context, memberID int64) ([]model.Order, error) {
	return []model.Order{}, nil
}

func newServer(t *testing.T, books *fakeBooks, orders *fakeOrders) *echo.Echo {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validation.New()

	e := echo.New()
	e.Validator = v
	e.HTTPErrorHandler = httperr.Handler(log)
	RegisterMiddlewares(e, log)
	Register(e, C{
		Auth:         &auth.Controller{V: v, Log: log},
		Book:         &book.Controller{Svc: books, V: v, Log: log},
		Cart:         &cart.Controller{V: v, Log: log},
		Order:        &order.Controller{Svc: orders, Log: log},
		Fulfillment:  &fulfillment.Controller{V: v, Log: log},
		Review:       &review.Controller{V: v, Log: log},
		Bookmark:     &bookmark.Controller{Log: log},
		Announcement: &announcement.Controller{V: v, Log: log},
		Member:       &member.Controller{Log: log},
		JWT:          testJWT,
	})
	return e
}

func token(t *testing.T, id int64, role model.Role) string {
	t.Helper()
	tok, err := jwtutil.Issue(testJWT, id, string(role))
	require.NoError(t, err)
	return "Bearer " + tok
}

func do(e *echo.Echo, method, target, auth, body string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func errBody(t *testing.T, rec *httptest.ResponseRecorder) httperr.Body {
	t.Helper()
	var b httperr.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	return b
}

func TestListBooks_ParsesFiltersAndSetsTotal(t *testing.T) {
	var got bookrepo.Filter
	books := &fakeBooks{listFn: func(ctx context.Context, f bookrepo.Filter) (*booksvc.Page, error) {
		got = f
		return &booksvc.Page{Items: []model.Book{}, Total: 42, Page: f.Page, PageSize: f.PageSize}, nil
	}}
	e := newServer(t, books, &fakeOrders{})

	rec := do(e, http.MethodGet, "/v1/books?q=dune&genre=Sci-Fi,Fantasy&min_price=5.50&in_stock=1&sort=price_asc&page=2", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "42", rec.Header().Get("X-Total-Count"))

	require.Equal(t, "dune", got.Search)
	require.Equal(t, []string{"Sci-Fi", "Fantasy"}, got.Genres)
	require.True(t, got.MinPrice.Equal(decimal.RequireFromString("5.5")))
	require.True(t, got.InStock)
	require.Equal(t, bookrepo.SortPriceAsc, got.Sort)
	require.Equal(t, 2, got.Page)
	require.Equal(t, booksvc.DefaultPageSize, got.PageSize)
}

func TestListBooks_BadNumberIsValidationError(t *testing.T) {
	e := newServer(t, &fakeBooks{}, &fakeOrders{})

	rec := do(e, http.MethodGet, "/v1/books?min_price=cheap&page=x", "", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	b := errBody(t, rec)
	require.Equal(t, "VALIDATION", b.Code)
	require.Equal(t, map[string]string{"min_price": "number", "page": "integer"}, b.Errors)
}

func TestBookDetail_InternalErrorIsHidden(t *testing.T) {
	books := &fakeBooks{detailFn: func(ctx context.Context, id int64) (*model.Book, error) {
		return nil, errors.New("pq: connection refused")
	}}
	e := newServer(t, books, &fakeOrders{})

	rec := do(e, http.MethodGet, "/v1/books/3", "", "", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	b := errBody(t, rec)
	require.Equal(t, "INTERNAL", b.Code)
	require.NotContains(t, rec.Body.String(), "connection refused")
}

func TestProtectedRoute_NoToken(t *testing.T) {
	e := newServer(t, &fakeBooks{}, &fakeOrders{})

	rec := do(e, http.MethodGet, "/v1/cart", "", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "UNAUTHORIZED", errBody(t, rec).Code)

	rec = do(e, http.MethodGet, "/v1/cart", "Bearer garbage", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestManageBooks_MemberForbiddenStaffAllowed(t *testing.T) {
	books := &fakeBooks{}
	e := newServer(t, books, &fakeOrders{})
	body := `{"title":"Dune","author":"Frank Herbert","price":"9.99"}`

	rec := do(e, http.MethodPost, "/v1/books", token(t, 7, model.RoleMember), body, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "FORBIDDEN", errBody(t, rec).Code)
	require.False(t, books.created)

	rec = do(e, http.MethodPost, "/v1/books", token(t, 2, model.RoleStaff), body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, books.created)
}

func TestCheckout_PassesIdempotencyKeyAndReplays(t *testing.T) {
	var gotMember int64
	var gotKey string
	orders := &fakeOrders{checkoutFn: func(ctx context.Context, memberID int64, key string) (*model.Order, bool, error) {
		gotMember, gotKey = memberID, key
		return &model.Order{ID: 11, MemberID: memberID, ClaimCode: "ABCD2345", Status: model.OrderPending}, key == "retry-1", nil
	}}
	e := newServer(t, &fakeBooks{}, orders)

	rec := do(e, http.MethodPost, "/v1/orders", token(t, 7, model.RoleMember), "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.EqualValues(t, 7, gotMember)
	require.Empty(t, gotKey)

	rec = do(e, http.MethodPost, "/v1/orders", token(t, 7, model.RoleMember), "", map[string]string{"Idempotency-Key": " retry-1 "})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "retry-1", gotKey)

	rec = do(e, http.MethodPost, "/v1/orders", token(t, 2, model.RoleStaff), "", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCheckout_StockConflict(t *testing.T) {
	orders := &fakeOrders{checkoutFn: func(ctx context.Context, memberID int64, key string) (*model.Order, bool, error) {
		return nil, false, apperr.New(apperr.ErrInsufficientStock, "not enough stock for Dune")
	}}
	e := newServer(t, &fakeBooks{}, orders)

	rec := do(e, http.MethodPost, "/v1/orders", token(t, 7, model.RoleMember), "", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	b := errBody(t, rec)
	require.Equal(t, "INSUFFICIENT_STOCK", b.Code)
	require.Equal(t, "not enough stock for Dune", b.Message)
}

func TestGetOrder_SubjectFromToken(t *testing.T) {
	var got policy.Subject
	orders := &fakeOrders{getFn: func(ctx context.Context, s policy.Subject, id int64) (*model.Order, error) {
		got = s
		return nil, apperr.New(apperr.ErrNotFound, "order not found")
	}}
	e := newServer(t, &fakeBooks{}, orders)

	rec := do(e, http.MethodGet, "/v1/orders/9", token(t, 8, model.RoleMember), "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, policy.Subject{ID: 8, Role: model.RoleMember}, got)
}

func TestCancel_NotPendingIsConflict(t *testing.T) {
	e := newServer(t, &fakeBooks{}, &fakeOrders{})

	rec := do(e, http.MethodPost, "/v1/orders/9/cancel", token(t, 8, model.RoleMember), "", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "ORDER_NOT_PENDING", errBody(t, rec).Code)
}

func TestUnknownRoute(t *testing.T) {
	e := newServer(t, &fakeBooks{}, &fakeOrders{})

	rec := do(e, http.MethodGet, "/nope", "", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND", errBody(t, rec).Code)

	// unmatched paths under the authenticated group still ask for a token first
	rec = do(e, http.MethodGet, "/v1/nope", "", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
