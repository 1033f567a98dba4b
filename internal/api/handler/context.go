package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/hospital/pharmacy-api/internal/core/domain"
)

// currentIdentity returns the identity the authorizer attached to the
// request. Routes behind a role guard always have one; a missing identity
// surfaces as domain.ErrUnauthorized.
func currentIdentity(c echo.Context) (*domain.Identity, error) {
	identity, ok := domain.IdentityFromContext(c.Request().Context())
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return identity, nil
}
