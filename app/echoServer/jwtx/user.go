package jwtx

import (
	"bookgalaxy/model"
	"bookgalaxy/service/policy"
	jwtutil "bookgalaxy/util/jwt"

	"github.com/labstack/echo/v4"
)

const (
	// ClaimsKey is where the JWT middleware leaves the verified claims.
	ClaimsKey  = "user"
	subjectKey = "subject"
)

// Store turns the verified claims into the request's policy.Subject.
func Store(c echo.Context) {
	claims, ok := c.Get(ClaimsKey).(*jwtutil.Claims)
	if !ok || claims == nil {
		return
	}
	id, err := claims.SubjectID()
	if err != nil {
		return
	}
	c.Set(subjectKey, policy.Subject{ID: id, Role: model.Role(claims.Role)})
}

// Subject returns the authenticated caller, or the zero Subject when the
// request carried no valid token.
func Subject(c echo.Context) policy.Subject {
	s, _ := c.Get(subjectKey).(policy.Subject)
	return s
}
