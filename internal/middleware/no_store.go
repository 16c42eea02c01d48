package middleware

import (
	"github.com/labstack/echo/v4"
)

// NoStore keeps reset responses out of caches and stops the reset page from
// leaking its token through the Referer header.
func NoStore() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Referrer-Policy", "no-referrer")
			return next(c)
		}
	}
}
