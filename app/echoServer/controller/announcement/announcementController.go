package announcement

import (
	"log/slog"
	"net/http"

	"bookgalaxy/app/echoServer/httperr"
	"bookgalaxy/app/echoServer/reqx"
	"bookgalaxy/app/echoServer/validation"
	announcementsvc "bookgalaxy/service/announcement"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc announcementsvc.Service
	V   *validation.Validator
	Log *slog.Logger
}

// Active
// @Summary      Announcements showing right now
// @Tags         announcements
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /v1/announcements/active [get]
func (h *Controller) Active(c echo.Context) error {
	rows, err := h.Svc.Active(c.Request().Context())
	if err != nil {
		return httperr.Write(c, h.Log, "announcements", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// Create
// @Summary      Publish an announcement
// @Tags         announcements
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body  announcementsvc.Input  true  "Announcement"
// @Success      201  {object}  model.Announcement
// @Failure      400  {object}  httperr.Body
// @Router       /v1/announcements [post]
func (h *Controller) Create(c echo.Context) error {
	var in announcementsvc.Input
	if err := reqx.Body(c, h.V, &in); err != nil {
		return httperr.Write(c, h.Log, "announcement create", err)
	}
	a, err := h.Svc.Create(c.Request().Context(), in)
	if err != nil {
		return httperr.Write(c, h.Log, "announcement create", err)
	}
	return c.JSON(http.StatusCreated, a)
}

// Update
// @Summary      Edit an announcement
// @Tags         announcements
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int                    true  "Announcement ID"
// @Param        payload  body  announcementsvc.Input  true  "Announcement"
// @Success      200  {object}  model.Announcement
// @Failure      404  {object}  httperr.Body
// @Router       /v1/announcements/{id} [put]
func (h *Controller) Update(c echo.Context) error {
	id, err := reqx.ID(c, "id")
	if err != nil {
		return httperr.Write(c, h.Log, "announcement update", err)
	}
	var in announcementsvc.Input
	if err := reqx.Body(c, h.V, &in); err != nil {
		return httperr.Write(c, h.Log, "announcement update", err)
	}
	a, err := h.Svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return httperr.Write(c, h.Log, "announcement update", err)
	}
	return c.JSON(http.StatusOK, a)
}

// Delete
// @Summary      Remove an announcement
// @Tags         announcements
// @Security     BearerAuth
// @Param        id  path  int  true  "Announcement ID"
// @Success      204
// @Router       /v1/announcements/{id} [delete]
func (h *Controller) Delete(c echo.Context) error {
	id, err := reqx.ID(c, "id")
	if err != nil {
		return httperr.Write(c, h.Log, "announcement delete", err)
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return httperr.Write(c, h.Log, "announcement delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}
