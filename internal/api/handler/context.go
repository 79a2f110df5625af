package handler

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sistema-pedidos/orders-api/internal/api/middleware"
	"github.com/sistema-pedidos/orders-api/internal/core/domain"
)

// ctxIdentity returns the account injected by the Auth middleware. Its absence
// means the route was registered without Auth, which is treated as 401.
func ctxIdentity(c echo.Context) (*domain.Account, error) {
	identity := middleware.Identity(c)
	if identity == nil {
		return nil, fmt.Errorf("%w: missing identity", domain.ErrUnauthorized)
	}
	return identity, nil
}

// pathID parses a numeric path parameter. Ids below 1 are never assigned, so
// they report notFound like any other unknown id.
func pathID(c echo.Context, name string, notFound error) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrValidation, name)
	}
	if id < 1 {
		return 0, notFound
	}
	return id, nil
}
