// Package httperr renders service errors as JSON responses.
package httperr

import (
	"errors"
	"log/slog"
	"net/http"

	"bookgalaxy/util/apperr"

	"github.com/labstack/echo/v4"
)

type Body struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func Status(c apperr.ErrCode) int {
	switch c.Kind() {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden, apperr.KindIneligible:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Write sends err to the client. Coded errors keep their code and message;
// anything else is logged with the request id and hidden behind a 500.
func Write(c echo.Context, log *slog.Logger, op string, err error) error {
	code := apperr.Code(err)
	if code == "" {
		if log != nil {
			log.ErrorContext(c.Request().Context(), op+" failed",
				"err", err,
				"req_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"path", c.Path(),
				"method", c.Request().Method,
			)
		}
		return c.JSON(http.StatusInternalServerError, Body{Code: "INTERNAL", Message: "internal error"})
	}
	msg := apperr.Message(err)
	if msg == "" {
		msg = string(code)
	}
	return c.JSON(Status(code), Body{Code: string(code), Message: msg, Errors: apperr.Fields(err)})
}

func BadRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, Body{Code: string(apperr.ErrValidation), Message: msg})
}

// Handler replaces echo's default error handler so routing and middleware
// failures share the same body shape.
func Handler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			body := Body{Code: codeForStatus(he.Code), Message: http.StatusText(he.Code)}
			if m, ok := he.Message.(string); ok && m != "" {
				body.Message = m
			}
			_ = c.JSON(he.Code, body)
			return
		}
		_ = Write(c, log, "request", err)
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return string(apperr.ErrValidation)
	case http.StatusUnauthorized:
		return string(apperr.ErrUnauthorized)
	case http.StatusForbidden:
		return string(apperr.ErrForbidden)
	case http.StatusNotFound:
		return string(apperr.ErrNotFound)
	}
	return http.StatusText(status)
}
