package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/retailpos/pos-system/internal/core/ports"
)

// ProductHandler handles HTTP requests for catalog products.
type ProductHandler struct {
	service ports.ProductService
}

func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// List handles GET /v1/products.
//
// @Summary      List active products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        search    query     string  false  "Partial match on name, barcode or description"
// @Param        category  query     string  false  "Exact category"
// @Param        page      query     int     false  "Page number (1-based)"
// @Param        limit     query     int     false  "Page size (max 100)"
// @Success      200       {object}  productListResponse
// @Failure      400       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Router       /v1/products [get]
func (h *ProductHandler) List(c echo.Context) error {
	page, err := queryInt(c, "page")
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}

	res, err := h.service.ListProducts(c.Request().Context(), ports.ListProductsFilter{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, productListResponse{
		Items:      res.Items,
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
	})
}

// Get handles GET /v1/products/:id.
//
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  domain.Product
// @Failure      404  {object}  errorResponse
// @Router       /v1/products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	p, err := h.service.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Create handles POST /v1/products.
//
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProductRequest  true  "Product"
// @Success      201   {object}  domain.Product
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req createProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.service.CreateProduct(c.Request().Context(), toCreateProductInput(req, actor.ID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// Update handles PUT /v1/products/:id. Stock is not editable here.
//
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Product id"
// @Param        body  body      updateProductRequest  true  "Fields to change"
// @Success      200   {object}  domain.Product
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	var req updateProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.service.UpdateProduct(c.Request().Context(), c.Param("id"), toProductUpdate(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /v1/products/:id by archiving the product.
//
// @Summary      Archive a product
// @Tags         products
// @Security     BearerAuth
// @Param        id   path  string  true  "Product id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	if err := h.service.ArchiveProduct(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// LowStock handles GET /v1/products/low-stock.
//
// @Summary      Products at or below their reorder level
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Product
// @Router       /v1/products/low-stock [get]
func (h *ProductHandler) LowStock(c echo.Context) error {
	items, err := h.service.LowStock(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}
