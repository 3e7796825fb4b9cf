package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/retailpos/pos-system/internal/core/ports"
)

// CatalogHandler serves categories and suppliers.
type CatalogHandler struct {
	products ports.ProductService
	catalog  ports.CatalogService
}

func NewCatalogHandler(products ports.ProductService, catalog ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{products: products, catalog: catalog}
}

// ListCategories handles GET /v1/categories.
//
// @Summary      List category names
// @Tags         categories
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  categoriesResponse
// @Router       /v1/categories [get]
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	names, err := h.products.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categoriesResponse{Categories: names})
}

// CreateCategory handles POST /v1/categories.
//
// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCategoryRequest  true  "Category"
// @Success      201   {object}  domain.Category
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/categories [post]
func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req createCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	cat, err := h.catalog.CreateCategory(c.Request().Context(), ports.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   actor.ID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cat)
}

// ListSuppliers handles GET /v1/suppliers.
//
// @Summary      List active suppliers
// @Tags         suppliers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Supplier
// @Router       /v1/suppliers [get]
func (h *CatalogHandler) ListSuppliers(c echo.Context) error {
	items, err := h.catalog.ListSuppliers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// GetSupplier handles GET /v1/suppliers/:id.
//
// @Summary      Get a supplier
// @Tags         suppliers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Supplier id"
// @Success      200  {object}  domain.Supplier
// @Failure      404  {object}  errorResponse
// @Router       /v1/suppliers/{id} [get]
func (h *CatalogHandler) GetSupplier(c echo.Context) error {
	sup, err := h.catalog.GetSupplier(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sup)
}

// CreateSupplier handles POST /v1/suppliers.
//
// @Summary      Create a supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createSupplierRequest  true  "Supplier"
// @Success      201   {object}  domain.Supplier
// @Failure      400   {object}  errorResponse
// @Router       /v1/suppliers [post]
func (h *CatalogHandler) CreateSupplier(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req createSupplierRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sup, err := h.catalog.CreateSupplier(c.Request().Context(), toCreateSupplierInput(req, actor.ID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sup)
}

// UpdateSupplier handles PUT /v1/suppliers/:id.
//
// @Summary      Update a supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Supplier id"
// @Param        body  body      updateSupplierRequest  true  "Fields to change"
// @Success      200   {object}  domain.Supplier
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/suppliers/{id} [put]
func (h *CatalogHandler) UpdateSupplier(c echo.Context) error {
	var req updateSupplierRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sup, err := h.catalog.UpdateSupplier(c.Request().Context(), c.Param("id"), toSupplierUpdate(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sup)
}

// DeleteSupplier handles DELETE /v1/suppliers/:id by archiving the supplier.
//
// @Summary      Archive a supplier
// @Tags         suppliers
// @Security     BearerAuth
// @Param        id   path  string  true  "Supplier id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/suppliers/{id} [delete]
func (h *CatalogHandler) DeleteSupplier(c echo.Context) error {
	if err := h.catalog.ArchiveSupplier(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
