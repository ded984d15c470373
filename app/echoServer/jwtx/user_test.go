package jwtx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bookgalaxy/model"
	"bookgalaxy/service/policy"
	jwtutil "bookgalaxy/util/jwt"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newCtx() echo.Context {
	return echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
}

func TestStore(t *testing.T) {
	c := newCtx()
	c.Set(ClaimsKey, &jwtutil.Claims{Role: "member", RegisteredClaims: gojwt.RegisteredClaims{Subject: "12"}})
	Store(c)
	require.Equal(t, policy.Subject{ID: 12, Role: model.RoleMember}, Subject(c))
}

func TestStore_BadSubjectStaysAnonymous(t *testing.T) {
	c := newCtx()
	c.Set(ClaimsKey, &jwtutil.Claims{Role: "admin", RegisteredClaims: gojwt.RegisteredClaims{Subject: "root"}})
	Store(c)
	require.True(t, Subject(c).Anonymous())

	require.True(t, Subject(newCtx()).Anonymous())
}
