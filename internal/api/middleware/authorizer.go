package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hospital/pharmacy-api/internal/api/metrics"
	"github.com/hospital/pharmacy-api/internal/core/domain"
	"github.com/hospital/pharmacy-api/internal/core/ports"
	"github.com/hospital/pharmacy-api/internal/core/token"
)

// PublicPrefixes are the paths the authorizer never inspects.
var PublicPrefixes = []string{
	"/auth/login",
	"/auth/register",
	"/auth/create-admin",
	"/auth/forgot-password",
	"/auth/reset-password",
	"/swagger",
	"/health",
	"/metrics",
}

// Authorizer attaches the caller's identity to the request context when a
// valid bearer token is presented. It never rejects a request: missing or
// bad credentials leave the request anonymous and the role guards decide.
func Authorizer(resolver ports.IdentityResolver, log zerolog.Logger, public ...string) echo.MiddlewareFunc {
	if len(public) == 0 {
		public = PublicPrefixes
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if isPublic(req.URL.Path, public) {
				metrics.AuthorizerDecisionsTotal.WithLabelValues("bypass").Inc()
				return next(c)
			}

			raw, ok := token.FromBearer(req.Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.AuthorizerDecisionsTotal.WithLabelValues("anonymous").Inc()
				return next(c)
			}

			identity, err := resolver.ResolveIdentity(req.Context(), raw)
			if err != nil {
				log.Debug().Err(err).Str("path", req.URL.Path).Msg("bearer token not accepted")
				metrics.AuthorizerDecisionsTotal.WithLabelValues("invalid").Inc()
				return next(c)
			}

			c.SetRequest(req.WithContext(domain.ContextWithIdentity(req.Context(), identity)))
			metrics.AuthorizerDecisionsTotal.WithLabelValues("authenticated").Inc()
			return next(c)
		}
	}
}

func isPublic(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
