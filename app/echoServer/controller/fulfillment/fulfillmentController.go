package fulfillment

import (
	"log/slog"
	"net/http"

	"bookgalaxy/app/echoServer/httperr"
	"bookgalaxy/app/echoServer/jwtx"
	"bookgalaxy/app/echoServer/reqx"
	"bookgalaxy/app/echoServer/validation"
	fulfillmentsvc "bookgalaxy/service/fulfillment"

	"github.com/labstack/echo/v4"
)

type FulfillReq struct {
	ClaimCode string `json:"claim_code" validate:"required,max=32"`
}

type Controller struct {
	Svc fulfillmentsvc.Service
	V   *validation.Validator
	Log *slog.Logger
}

// Fulfill
// @Summary      Hand over an order at the counter
// @Tags         fulfillment
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body  FulfillReq  true  "Claim code"
// @Success      201  {object}  model.ProcessedOrder
// @Failure      404  {object}  httperr.Body "unknown, used or cancelled code"
// @Router       /v1/fulfillments [post]
func (h *Controller) Fulfill(c echo.Context) error {
	var req FulfillReq
	if err := reqx.Body(c, h.V, &req); err != nil {
		return httperr.Write(c, h.Log, "fulfill", err)
	}
	staffID := jwtx.Subject(c).ID
	p, err := h.Svc.Fulfill(c.Request().Context(), staffID, req.ClaimCode)
	if err != nil {
		return httperr.Write(c, h.Log, "fulfill", err)
	}
	return c.JSON(http.StatusCreated, p)
}

// Pending
// @Summary      Look up a pending order by claim code
// @Tags         fulfillment
// @Produce      json
// @Security     BearerAuth
// @Param        code  path  string  true  "Claim code"
// @Success      200  {object}  model.Order
// @Failure      404  {object}  httperr.Body
// @Router       /v1/fulfillments/pending/{code} [get]
func (h *Controller) Pending(c echo.Context) error {
	o, err := h.Svc.Pending(c.Request().Context(), c.Param("code"))
	if err != nil {
		return httperr.Write(c, h.Log, "pending lookup", err)
	}
	return c.JSON(http.StatusOK, o)
}

// Mine
// @Summary      Orders I handed over
// @Tags         fulfillment
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /v1/fulfillments/mine [get]
func (h *Controller) Mine(c echo.Context) error {
	rows, err := h.Svc.Processed(c.Request().Context(), jwtx.Subject(c).ID)
	if err != nil {
		return httperr.Write(c, h.Log, "processed list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
