package order

import (
	"log/slog"
	"net/http"
	"strings"

	"bookgalaxy/app/echoServer/httperr"
	"bookgalaxy/app/echoServer/jwtx"
	"bookgalaxy/app/echoServer/reqx"
	ordersvc "bookgalaxy/service/order"

	"github.com/labstack/echo/v4"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type Controller struct {
	Svc ordersvc.Service
	Log *slog.Logger
}

// Checkout
// @Summary      Place an order from the cart
// @Description  Prices the cart, reserves stock and issues a claim code. Send an Idempotency-Key to make retries safe; a replay returns 200 with the original order.
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header  string  false  "client retry key"
// @Success      201  {object}  model.Order
// @Success      200  {object}  model.Order "replayed"
// @Failure      400  {object}  httperr.Body "cart empty"
// @Failure      409  {object}  httperr.Body "stock or availability changed"
// @Router       /v1/orders [post]
func (h *Controller) Checkout(c echo.Context) error {
	key := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
	sub := jwtx.Subject(c)

	o, replayed, err := h.Svc.Checkout(c.Request().Context(), sub.ID, key)
	if err != nil {
		return httperr.Write(c, h.Log, "checkout", err)
	}
	if replayed {
		return c.JSON(http.StatusOK, o)
	}
	if h.Log != nil {
		h.Log.Info("order placed", "order_id", o.ID, "member_id", sub.ID, "total", o.TotalAmount.StringFixed(2))
	}
	return c.JSON(http.StatusCreated, o)
}

// Mine
// @Summary      My order history
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /v1/orders/my [get]
func (h *Controller) Mine(c echo.Context) error {
	rows, err := h.Svc.ListMine(c.Request().Context(), jwtx.Subject(c).ID)
	if err != nil {
		return httperr.Write(c, h.Log, "order history", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// Get
// @Summary      Order detail
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Order ID"
// @Success      200  {object}  model.Order
// @Failure      404  {object}  httperr.Body
// @Router       /v1/orders/{id} [get]
func (h *Controller) Get(c echo.Context) error {
	id, err := reqx.ID(c, "id")
	if err != nil {
		return httperr.Write(c, h.Log, "order get", err)
	}
	o, err := h.Svc.Get(c.Request().Context(), jwtx.Subject(c), id)
	if err != nil {
		return httperr.Write(c, h.Log, "order get", err)
	}
	return c.JSON(http.StatusOK, o)
}

// Cancel
// @Summary      Cancel a pending order
// @Description  Restores the reserved stock.
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Order ID"
// @Success      200  {object}  model.Order
// @Failure      404  {object}  httperr.Body
// @Failure      409  {object}  httperr.Body "order not pending"
// @Router       /v1/orders/{id}/cancel [post]
func (h *Controller) Cancel(c echo.Context) error {
	id, err := reqx.ID(c, "id")
	if err != nil {
		return httperr.Write(c, h.Log, "order cancel", err)
	}
	o, err := h.Svc.Cancel(c.Request().Context(), jwtx.Subject(c), id)
	if err != nil {
		return httperr.Write(c, h.Log, "order cancel", err)
	}
	return c.JSON(http.StatusOK, o)
}
