package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const corsAllowHeaders = "authorization, x-client-info, apikey, content-type"

// permissiveCORS lets any browser origin call the proxy. Unlike echo's CORS
// middleware it stamps the headers on every response, with or without an
// Origin header, and answers pre-flight requests with an empty 200.
func permissiveCORS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Response().Header()
			header.Set(echo.HeaderAccessControlAllowOrigin, "*")
			header.Set(echo.HeaderAccessControlAllowHeaders, corsAllowHeaders)

			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusOK)
			}
			return next(c)
		}
	}
}
