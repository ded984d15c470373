package member

import (
	"log/slog"
	"net/http"
	"strconv"

	"bookgalaxy/app/echoServer/httperr"
	"bookgalaxy/app/echoServer/reqx"
	membersvc "bookgalaxy/service/member"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc membersvc.Service
	Log *slog.Logger
}

// List
// @Summary      Member directory
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page       query  int  false  "page, from 1"
// @Param        page_size  query  int  false  "items per page"
// @Success      200  {object}  membersvc.Page
// @Router       /v1/members [get]
func (h *Controller) List(c echo.Context) error {
	page, err := reqx.Int(c, "page", 1)
	if err != nil {
		return httperr.Write(c, h.Log, "member list", err)
	}
	size, err := reqx.Int(c, "page_size", 0)
	if err != nil {
		return httperr.Write(c, h.Log, "member list", err)
	}
	out, err := h.Svc.List(c.Request().Context(), page, size)
	if err != nil {
		return httperr.Write(c, h.Log, "member list", err)
	}
	c.Response().Header().Set("X-Total-Count", strconv.Itoa(out.Total))
	return c.JSON(http.StatusOK, out)
}

// Get
// @Summary      Member detail
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Member ID"
// @Success      200  {object}  model.Member
// @Failure      404  {object}  httperr.Body
// @Router       /v1/members/{id} [get]
func (h *Controller) Get(c echo.Context) error {
	id, err := reqx.ID(c, "id")
	if err != nil {
		return httperr.Write(c, h.Log, "member get", err)
	}
	m, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return httperr.Write(c, h.Log, "member get", err)
	}
	return c.JSON(http.StatusOK, m)
}

// Delete
// @Summary      Delete a member and everything they own
// @Tags         admin
// @Security     BearerAuth
// @Param        id  path  int  true  "Member ID"
// @Success      204
// @Failure      404  {object}  httperr.Body
// @Router       /v1/members/{id} [delete]
func (h *Controller) Delete(c echo.Context) error {
	id, err := reqx.ID(c, "id")
	if err != nil {
		return httperr.Write(c, h.Log, "member delete", err)
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return httperr.Write(c, h.Log, "member delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}
