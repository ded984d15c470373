package auth

import (
	"log/slog"
	"net/http"

	"bookgalaxy/app/echoServer/httperr"
	"bookgalaxy/app/echoServer/reqx"
	"bookgalaxy/app/echoServer/validation"
	"bookgalaxy/model"
	authsvc "bookgalaxy/service/auth"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc authsvc.Service
	V   *validation.Validator
	Log *slog.Logger
}

// Register a new member
// @Summary      Register member
// @Description  Create a member account; the response carries a token so the client is signed in right away
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RegisterReq  true  "Register payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  httperr.Body
// @Failure      409  {object}  httperr.Body "email already registered"
// @Failure      500  {object}  httperr.Body
// @Router       /v1/members/register [post]
func (ct *Controller) Register(c echo.Context) error {
	var req model.RegisterReq
	if err := reqx.Body(c, ct.V, &req); err != nil {
		if ct.Log != nil {
			ct.Log.Warn("register rejected", "path", c.Path(), "err", err)
		}
		return httperr.Write(c, ct.Log, "register", err)
	}

	m, token, err := ct.Svc.Register(c.Request().Context(), req)
	if err != nil {
		return httperr.Write(c, ct.Log, "register", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registered",
		"member":  m,
		"token":   token,
	})
}

// Login
// @Summary      Login
// @Description  Login with email + password for the given role (member by default), returns JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {object}  authsvc.Session
// @Failure      400  {object}  httperr.Body
// @Failure      401  {object}  httperr.Body
// @Failure      500  {object}  httperr.Body
// @Router       /v1/auth/login [post]
func (ct *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := reqx.Body(c, ct.V, &req); err != nil {
		return httperr.Write(c, ct.Log, "login", err)
	}

	sess, err := ct.Svc.Login(c.Request().Context(), req)
	if err != nil {
		if ct.Log != nil {
			ct.Log.Info("login failed", "role", req.Role, "err", err)
		}
		return httperr.Write(c, ct.Log, "login", err)
	}
	return c.JSON(http.StatusOK, sess)
}

// CreateStaff
// @Summary      Create staff account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body  model.CreateStaffReq  true  "Staff payload"
// @Success      201  {object}  model.Account
// @Failure      400  {object}  httperr.Body
// @Failure      403  {object}  httperr.Body
// @Failure      409  {object}  httperr.Body
// @Router       /v1/staff [post]
func (ct *Controller) CreateStaff(c echo.Context) error {
	var req model.CreateStaffReq
	if err := reqx.Body(c, ct.V, &req); err != nil {
		return httperr.Write(c, ct.Log, "create staff", err)
	}
	a, err := ct.Svc.CreateStaff(c.Request().Context(), req)
	if err != nil {
		return httperr.Write(c, ct.Log, "create staff", err)
	}
	return c.JSON(http.StatusCreated, a)
}
