package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sistema-pedidos/orders-api/internal/core/domain"
	"github.com/sistema-pedidos/orders-api/internal/core/ports"
)

// IdentityKey is the echo context key holding the resolved *domain.Account.
const IdentityKey = "identity"

// Auth resolves the bearer token to an account and injects it into context.
// Requests without a usable token stop here with domain.ErrUnauthorized.
func Auth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := BearerToken(c)
			if err != nil {
				return err
			}

			identity, err := auth.RequireIdentity(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", fmt.Errorf("%w: missing authorization header", domain.ErrUnauthorized)
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", fmt.Errorf("%w: invalid authorization header", domain.ErrUnauthorized)
	}
	return strings.TrimSpace(parts[1]), nil
}

// Identity returns the account injected by Auth, or nil when Auth did not run.
func Identity(c echo.Context) *domain.Account {
	identity, _ := c.Get(IdentityKey).(*domain.Account)
	return identity
}
