// Package reqx reads path params, query strings and bodies into typed values.
package reqx

import (
	"strconv"
	"strings"

	"bookgalaxy/app/echoServer/validation"
	"bookgalaxy/util/apperr"

	"github.com/labstack/echo/v4"
)

// ID parses a positive integer path parameter.
func ID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Field(name, "invalid id")
	}
	return id, nil
}

// Body binds the JSON body into dst and runs struct validation on it.
func Body(c echo.Context, v *validation.Validator, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return apperr.New(apperr.ErrValidation, "invalid body")
	}
	if v == nil {
		return nil
	}
	return v.Validate(dst)
}

// List collects a repeatable query key, also splitting comma lists:
// ?genre=a&genre=b,c → [a b c].
func List(c echo.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryParams()[key] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// Int reads an optional integer query value; def is used when absent.
func Int(c echo.Context, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Field(key, "integer")
	}
	return n, nil
}

// Bool reads an optional boolean query value; absent means false.
func Bool(c echo.Context, key string) (bool, error) {
	raw := strings.TrimSpace(c.QueryParam(key))
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperr.Field(key, "boolean")
	}
	return b, nil
}
