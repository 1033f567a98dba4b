package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hospital/pharmacy-api/internal/api/metrics"
	"github.com/hospital/pharmacy-api/internal/core/domain"
)

// accessDenied is the body every role guard rejection carries.
var accessDenied = map[string]string{"message": "Access denied"}

// RequireRole lets a request through only when the authorizer attached an
// identity whose role equals role exactly. Roles carry no hierarchy.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := domain.IdentityFromContext(c.Request().Context())
			if !ok || identity.Role != role {
				metrics.AccessDeniedTotal.WithLabelValues(role).Inc()
				return c.JSON(http.StatusForbidden, accessDenied)
			}
			return next(c)
		}
	}
}
