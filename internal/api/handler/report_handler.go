package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/retailpos/pos-system/internal/core/ports"
)

// ReportHandler serves read-only sales reporting.
type ReportHandler struct {
	service ports.ReportService
}

func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Daily handles GET /v1/reports/daily.
//
// @Summary      Daily sales summary
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        date  query     string  false  "Day, YYYY-MM-DD (default today UTC)"
// @Success      200   {object}  ports.DailySummary
// @Failure      400   {object}  errorResponse
// @Router       /v1/reports/daily [get]
func (h *ReportHandler) Daily(c echo.Context) error {
	summary, err := h.service.DailySummary(c.Request().Context(), c.QueryParam("date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// TopProducts handles GET /v1/reports/top-products.
//
// @Summary      Best selling products of a day
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        date   query     string  false  "Day, YYYY-MM-DD (default today UTC)"
// @Param        limit  query     int     false  "Number of products (default 5, max 50)"
// @Success      200    {array}   ports.TopProduct
// @Failure      400    {object}  errorResponse
// @Router       /v1/reports/top-products [get]
func (h *ReportHandler) TopProducts(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}

	items, err := h.service.TopProducts(c.Request().Context(), c.QueryParam("date"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Dashboard handles GET /v1/dashboard/stats.
//
// @Summary      Dashboard counters
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.DashboardStats
// @Router       /v1/dashboard/stats [get]
func (h *ReportHandler) Dashboard(c echo.Context) error {
	stats, err := h.service.DashboardStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
