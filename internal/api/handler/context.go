package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// principal is the authenticated operator of the current request.
type principal struct {
	ID       string
	Username string
	Role     string
}

// ctxPrincipal extracts the claims injected by the Auth middleware and fails
// fast before any service call when they are missing.
func ctxPrincipal(c echo.Context) (principal, error) {
	p := principal{}
	p.ID, _ = c.Get("user_id").(string)
	p.Username, _ = c.Get("username").(string)
	p.Role, _ = c.Get("role").(string)
	if p.ID == "" || p.Role == "" {
		return principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}

// bindAndValidate decodes the request body into req and runs the registered
// validator over it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// queryInt parses an optional integer query parameter.
func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return n, nil
}
