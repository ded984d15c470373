package cart

import (
	"log/slog"
	"net/http"

	"bookgalaxy/app/echoServer/httperr"
	"bookgalaxy/app/echoServer/jwtx"
	"bookgalaxy/app/echoServer/reqx"
	"bookgalaxy/app/echoServer/validation"
	cartsvc "bookgalaxy/service/cart"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc cartsvc.Service
	V   *validation.Validator
	Log *slog.Logger
}

// View
// @Summary      Current cart with price breakdown
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  cartsvc.Cart
// @Router       /v1/cart [get]
func (h *Controller) View(c echo.Context) error {
	cart, err := h.Svc.View(c.Request().Context(), jwtx.Subject(c).ID)
	if err != nil {
		return httperr.Write(c, h.Log, "cart view", err)
	}
	return c.JSON(http.StatusOK, cart)
}

// Summary
// @Summary      Discount preview for the cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  discount.Breakdown
// @Router       /v1/cart/summary [get]
func (h *Controller) Summary(c echo.Context) error {
	b, err := h.Svc.Summary(c.Request().Context(), jwtx.Subject(c).ID)
	if err != nil {
		return httperr.Write(c, h.Log, "cart summary", err)
	}
	return c.JSON(http.StatusOK, b)
}

// Add
// @Summary      Add a book to the cart
// @Description  Adding a book already in the cart increases its quantity. Quantity defaults to 1.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body  AddItemReq  true  "Item"
// @Success      201  {object}  map[string]any
// @Failure      404  {object}  httperr.Body
// @Failure      409  {object}  httperr.Body "not enough stock"
// @Router       /v1/cart/items [post]
func (h *Controller) Add(c echo.Context) error {
	var req AddItemReq
	if err := reqx.Body(c, h.V, &req); err != nil {
		return httperr.Write(c, h.Log, "cart add", err)
	}
	qty, err := h.Svc.Add(c.Request().Context(), jwtx.Subject(c).ID, req.BookID, req.Quantity)
	if err != nil {
		return httperr.Write(c, h.Log, "cart add", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"book_id": req.BookID, "quantity": qty})
}

// SetQuantity
// @Summary      Set the quantity of a cart line
// @Description  A quantity of 0 removes the line.
// @Tags         cart
// @Accept       json
// @Security     BearerAuth
// @Param        bookId   path  int             true  "Book ID"
// @Param        payload  body  SetQuantityReq  true  "Quantity"
// @Success      204
// @Failure      404  {object}  httperr.Body
// @Failure      409  {object}  httperr.Body
// @Router       /v1/cart/items/{bookId} [put]
func (h *Controller) SetQuantity(c echo.Context) error {
	bookID, err := reqx.ID(c, "bookId")
	if err != nil {
		return httperr.Write(c, h.Log, "cart set", err)
	}
	var req SetQuantityReq
	if err := reqx.Body(c, h.V, &req); err != nil {
		return httperr.Write(c, h.Log, "cart set", err)
	}
	if err := h.Svc.SetQuantity(c.Request().Context(), jwtx.Subject(c).ID, bookID, req.Quantity); err != nil {
		return httperr.Write(c, h.Log, "cart set", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Remove
// @Summary      Remove a cart line
// @Tags         cart
// @Security     BearerAuth
// @Param        bookId  path  int  true  "Book ID"
// @Success      204
// @Failure      404  {object}  httperr.Body
// @Router       /v1/cart/items/{bookId} [delete]
func (h *Controller) Remove(c echo.Context) error {
	bookID, err := reqx.ID(c, "bookId")
	if err != nil {
		return httperr.Write(c, h.Log, "cart remove", err)
	}
	if err := h.Svc.Remove(c.Request().Context(), jwtx.Subject(c).ID, bookID); err != nil {
		return httperr.Write(c, h.Log, "cart remove", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Clear
// @Summary      Empty the cart
// @Tags         cart
// @Security     BearerAuth
// @Success      204
// @Router       /v1/cart [delete]
func (h *Controller) Clear(c echo.Context) error {
	if err := h.Svc.Clear(c.Request().Context(), jwtx.Subject(c).ID); err != nil {
		return httperr.Write(c, h.Log, "cart clear", err)
	}
	return c.NoContent(http.StatusNoContent)
}
