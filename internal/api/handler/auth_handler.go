package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/retailpos/pos-system/internal/core/domain"
	"github.com/retailpos/pos-system/internal/core/ports"
	"github.com/retailpos/pos-system/internal/core/rbac"
)

type AuthHandler struct {
	authService ports.AuthService
	users       ports.UserService
	policy      *rbac.Policy
}

func NewAuthHandler(authService ports.AuthService, users ports.UserService, policy *rbac.Policy) *AuthHandler {
	return &AuthHandler{authService: authService, users: users, policy: policy}
}

// Login authenticates an operator and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{Token: token, User: user})
}

// Me returns the authenticated operator and the capabilities of their role.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	user, err := h.users.GetUser(c.Request().Context(), p.ID)
	if err != nil {
		return err
	}
	if !user.IsActive() {
		return domain.ErrAccountDisabled
	}

	caps := h.policy.Capabilities(rbac.Role(user.Role))
	names := make([]string, 0, len(caps))
	for _, cp := range caps {
		names = append(names, string(cp))
	}

	return c.JSON(http.StatusOK, meResponse{User: user, Capabilities: names})
}
