package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/retailpos/pos-system/internal/core/domain"
	"github.com/retailpos/pos-system/internal/core/ports"
)

// InventoryHandler serves manual stock corrections.
type InventoryHandler struct {
	service ports.InventoryService
}

func NewInventoryHandler(service ports.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// Adjust handles POST /v1/inventory/adjustments.
//
// @Summary      Adjust stock manually
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      adjustStockRequest  true  "Adjustment"
// @Success      201   {object}  domain.StockAdjustment
// @Failure      400   {object}  errorResponse
// @Router       /v1/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req adjustStockRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	adj, err := h.service.AdjustStock(c.Request().Context(), ports.AdjustStockInput{
		ProductID: req.ProductID,
		Type:      domain.AdjustmentType(req.AdjustmentType),
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		ActorID:   actor.ID,
		ActorName: actor.Username,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, adj)
}

// History handles GET /v1/inventory/adjustments.
//
// @Summary      Stock adjustment history
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        product_id  query     string  false  "Restrict to one product"
// @Param        limit       query     int     false  "Max rows (default 50, max 100)"
// @Success      200         {array}   domain.StockAdjustment
// @Router       /v1/inventory/adjustments [get]
func (h *InventoryHandler) History(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}

	items, err := h.service.History(c.Request().Context(), c.QueryParam("product_id"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}
