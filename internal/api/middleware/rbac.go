package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/sistema-pedidos/orders-api/internal/core/domain"
)

// AdminOnly lets the request through only when the identity injected by Auth
// carries the admin flag. It must be chained after Auth.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := domain.RequireAdmin(Identity(c)); err != nil {
				return err
			}
			return next(c)
		}
	}
}
