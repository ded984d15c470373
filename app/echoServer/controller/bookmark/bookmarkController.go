package bookmark

import (
	"log/slog"
	"net/http"

	"bookgalaxy/app/echoServer/httperr"
	"bookgalaxy/app/echoServer/jwtx"
	"bookgalaxy/app/echoServer/reqx"
	bookmarksvc "bookgalaxy/service/bookmark"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc bookmarksvc.Service
	Log *slog.Logger
}

// @Summary      My bookmarks
// @Tags         bookmarks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /v1/bookmarks [get]
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context(), jwtx.Subject(c).ID)
	if err != nil {
		return httperr.Write(c, h.Log, "bookmark list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// @Summary      Bookmark a book
// @Tags         bookmarks
// @Produce      json
// @Security     BearerAuth
// @Param        bookId  path  int  true  "Book ID"
// @Success      201  {object}  model.Bookmark
// @Failure      404  {object}  httperr.Body
// @Router       /v1/bookmarks/{bookId} [post]
func (h *Controller) Add(c echo.Context) error {
	bookID, err := reqx.ID(c, "bookId")
	if err != nil {
		return httperr.Write(c, h.Log, "bookmark add", err)
	}
	b, err := h.Svc.Add(c.Request().Context(), jwtx.Subject(c).ID, bookID)
	if err != nil {
		return httperr.Write(c, h.Log, "bookmark add", err)
	}
	return c.JSON(http.StatusCreated, b)
}

// @Summary      Remove a bookmark
// @Tags         bookmarks
// @Security     BearerAuth
// @Param        bookId  path  int  true  "Book ID"
// @Success      204
// @Failure      404  {object}  httperr.Body
// @Router       /v1/bookmarks/{bookId} [delete]
func (h *Controller) Remove(c echo.Context) error {
	bookID, err := reqx.ID(c, "bookId")
	if err != nil {
		return httperr.Write(c, h.Log, "bookmark remove", err)
	}
	if err := h.Svc.Remove(c.Request().Context(), jwtx.Subject(c).ID, bookID); err != nil {
		return httperr.Write(c, h.Log, "bookmark remove", err)
	}
	return c.NoContent(http.StatusNoContent)
}
