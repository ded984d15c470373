package review

import (
	"log/slog"
	"net/http"

	"bookgalaxy/app/echoServer/httperr"
	"bookgalaxy/app/echoServer/jwtx"
	"bookgalaxy/app/echoServer/reqx"
	"bookgalaxy/app/echoServer/validation"
	reviewsvc "bookgalaxy/service/review"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc reviewsvc.Service
	V   *validation.Validator
	Log *slog.Logger
}

// ListByBook
// @Summary      Reviews of a book
// @Tags         reviews
// @Produce      json
// @Param        id  path  int  true  "Book ID"
// @Success      200  {object}  map[string]any
// @Router       /v1/books/{id}/reviews [get]
func (h *Controller) ListByBook(c echo.Context) error {
	bookID, err := reqx.ID(c, "id")
	if err != nil {
		return httperr.Write(c, h.Log, "review list", err)
	}
	rows, err := h.Svc.ListByBook(c.Request().Context(), bookID)
	if err != nil {
		return httperr.Write(c, h.Log, "review list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// CanReview
// @Summary      Whether I may review a book
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Book ID"
// @Success      200  {object}  reviewsvc.Eligibility
// @Router       /v1/books/{id}/can-review [get]
func (h *Controller) CanReview(c echo.Context) error {
	bookID, err := reqx.ID(c, "id")
	if err != nil {
		return httperr.Write(c, h.Log, "can review", err)
	}
	e, err := h.Svc.CanReview(c.Request().Context(), jwtx.Subject(c).ID, bookID)
	if err != nil {
		return httperr.Write(c, h.Log, "can review", err)
	}
	return c.JSON(http.StatusOK, e)
}

// Create
// @Summary      Review a purchased book
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int              true  "Book ID"
// @Param        payload  body  reviewsvc.Input  true  "Review"
// @Success      201  {object}  model.Review
// @Failure      403  {object}  httperr.Body "no fulfilled purchase"
// @Failure      409  {object}  httperr.Body "already reviewed"
// @Router       /v1/books/{id}/reviews [post]
func (h *Controller) Create(c echo.Context) error {
	bookID, err := reqx.ID(c, "id")
	if err != nil {
		return httperr.Write(c, h.Log, "review create", err)
	}
	var in reviewsvc.Input
	if err := reqx.Body(c, h.V, &in); err != nil {
		return httperr.Write(c, h.Log, "review create", err)
	}
	r, err := h.Svc.Create(c.Request().Context(), jwtx.Subject(c).ID, bookID, in)
	if err != nil {
		return httperr.Write(c, h.Log, "review create", err)
	}
	return c.JSON(http.StatusCreated, r)
}

// Update
// @Summary      Edit a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int              true  "Review ID"
// @Param        payload  body  reviewsvc.Input  true  "Review"
// @Success      200  {object}  model.Review
// @Failure      403  {object}  httperr.Body
// @Failure      404  {object}  httperr.Body
// @Router       /v1/reviews/{id} [put]
func (h *Controller) Update(c echo.Context) error {
	id, err := reqx.ID(c, "id")
	if err != nil {
		return httperr.Write(c, h.Log, "review update", err)
	}
	var in reviewsvc.Input
	if err := reqx.Body(c, h.V, &in); err != nil {
		return httperr.Write(c, h.Log, "review update", err)
	}
	r, err := h.Svc.Update(c.Request().Context(), jwtx.Subject(c), id, in)
	if err != nil {
		return httperr.Write(c, h.Log, "review update", err)
	}
	return c.JSON(http.StatusOK, r)
}

// Delete
// @Summary      Delete a review
// @Tags         reviews
// @Security     BearerAuth
// @Param        id  path  int  true  "Review ID"
// @Success      204
// @Failure      403  {object}  httperr.Body
// @Failure      404  {object}  httperr.Body
// @Router       /v1/reviews/{id} [delete]
func (h *Controller) Delete(c echo.Context) error {
	id, err := reqx.ID(c, "id")
	if err != nil {
		return httperr.Write(c, h.Log, "review delete", err)
	}
	if err := h.Svc.Delete(c.Request().Context(), jwtx.Subject(c), id); err != nil {
		return httperr.Write(c, h.Log, "review delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}
