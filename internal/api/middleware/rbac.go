package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/retailpos/pos-system/internal/core/rbac"
	"github.com/retailpos/pos-system/internal/pkg/metrics"
)

// RequirePermission admits the request only when the authenticated role
// holds capability. It must run after Auth.
func RequirePermission(policy *rbac.Policy, capability rbac.Capability) echo.MiddlewareFunc {
	return RequireAny(policy, capability)
}

// RequireAny admits the request when the authenticated role holds at least
// one of caps. Denials are answered with 403 before the handler runs.
func RequireAny(policy *rbac.Policy, caps ...rbac.Capability) echo.MiddlewareFunc {
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = string(c)
	}
	label := strings.Join(names, "|")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if !policy.HasAny(rbac.Role(role), caps...) {
				metrics.PermissionDeniedTotal.WithLabelValues(label).Inc()
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
