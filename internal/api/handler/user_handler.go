package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/retailpos/pos-system/internal/core/ports"
)

// UserHandler serves operator account management.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /v1/users.
//
// @Summary      List active users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Get handles GET /v1/users/:id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	u, err := h.service.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// Create handles POST /v1/users.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "Account"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	u, err := h.service.CreateUser(c.Request().Context(), toCreateUserInput(req, actor.ID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, u)
}

// Update handles PUT /v1/users/:id.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	u, err := h.service.UpdateUser(c.Request().Context(), c.Param("id"), toUpdateUserInput(req, actor.ID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// Delete handles DELETE /v1/users/:id by archiving the account.
//
// @Summary      Archive a user
// @Tags         users
// @Security     BearerAuth
// @Param        id   path  string  true  "User id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteUser(c.Request().Context(), actor.ID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
