package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/retailpos/pos-system/internal/core/domain"
	"github.com/retailpos/pos-system/internal/core/ports"
)

const dateLayout = "2006-01-02"

// SaleHandler handles HTTP requests for the checkout and sale history.
type SaleHandler struct {
	service  ports.SaleService
	receipts ports.ReceiptRenderer
}

func NewSaleHandler(service ports.SaleService, receipts ports.ReceiptRenderer) *SaleHandler {
	return &SaleHandler{service: service, receipts: receipts}
}

// Create handles POST /v1/sales.
//
// @Summary      Commit a sale
// @Description  Validates the cart, prices it from the catalog and decrements stock atomically.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string             false  "Replays the original sale when the key was already used"
// @Param        body             body      createSaleRequest  true   "Cart and payment"
// @Success      201              {object}  saleResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      500              {object}  errorResponse
// @Router       /v1/sales [post]
func (h *SaleHandler) Create(c echo.Context) error {
	cashier, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req createSaleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	idempotencyKey := c.Request().Header.Get("Idempotency-Key")

	sale, err := h.service.CommitSale(c.Request().Context(), toCommitSaleInput(req, cashier, idempotencyKey))
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderLocation, "/v1/sales/"+sale.ID)
	return c.JSON(http.StatusCreated, toSaleResponse(sale))
}

// List handles GET /v1/sales.
//
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        cashier_id  query     string  false  "Cashier id"
// @Param        status      query     string  false  "completed, refunded or cancelled"
// @Param        date_from   query     string  false  "First day, YYYY-MM-DD"
// @Param        date_to     query     string  false  "Last day (inclusive), YYYY-MM-DD"
// @Param        page        query     int     false  "Page number (1-based)"
// @Param        limit       query     int     false  "Page size (max 100)"
// @Success      200         {object}  saleListResponse
// @Failure      400         {object}  errorResponse
// @Router       /v1/sales [get]
func (h *SaleHandler) List(c echo.Context) error {
	filter, err := parseSaleFilter(c)
	if err != nil {
		return err
	}

	res, err := h.service.ListSales(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, saleListResponse{
		Items:      res.Items,
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
	})
}

// Get handles GET /v1/sales/:id.
//
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sale id"
// @Success      200  {object}  saleResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/sales/{id} [get]
func (h *SaleHandler) Get(c echo.Context) error {
	sale, err := h.service.GetSale(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSaleResponse(sale))
}

// Receipt handles GET /v1/sales/:id/receipt.
//
// @Summary      Printable receipt
// @Tags         sales
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "Sale id"
// @Success      200  {file}    binary
// @Failure      404  {object}  errorResponse
// @Router       /v1/sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c echo.Context) error {
	sale, err := h.service.GetSale(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	doc, err := h.receipts.Generate(c.Request().Context(), sale)
	if err != nil {
		return fmt.Errorf("render receipt %s: %w", sale.SaleNumber, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", sale.SaleNumber+".pdf"))
	return c.Blob(http.StatusOK, "application/pdf", doc)
}

// Refund handles POST /v1/sales/:id/refund.
//
// @Summary      Refund a sale
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true   "Sale id"
// @Param        body  body      saleTransitionRequest  false  "Reason"
// @Success      200   {object}  saleResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/sales/{id}/refund [post]
func (h *SaleHandler) Refund(c echo.Context) error {
	return h.transition(c, h.service.RefundSale)
}

// Cancel handles POST /v1/sales/:id/cancel.
//
// @Summary      Cancel a sale
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true   "Sale id"
// @Param        body  body      saleTransitionRequest  false  "Reason"
// @Success      200   {object}  saleResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/sales/{id}/cancel [post]
func (h *SaleHandler) Cancel(c echo.Context) error {
	return h.transition(c, h.service.CancelSale)
}

type transitionFunc func(ctx context.Context, in ports.SaleTransitionInput) (*domain.Sale, error)

func (h *SaleHandler) transition(c echo.Context, fn transitionFunc) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req saleTransitionRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
	}

	sale, err := fn(c.Request().Context(), ports.SaleTransitionInput{
		SaleID:  c.Param("id"),
		ActorID: actor.ID,
		Reason:  req.Reason,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSaleResponse(sale))
}

func parseSaleFilter(c echo.Context) (ports.ListSalesFilter, error) {
	page, err := queryInt(c, "page")
	if err != nil {
		return ports.ListSalesFilter{}, err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return ports.ListSalesFilter{}, err
	}

	f := ports.ListSalesFilter{
		CashierID: c.QueryParam("cashier_id"),
		Status:    c.QueryParam("status"),
		Page:      page,
		Limit:     limit,
	}
	if f.Status != "" {
		switch domain.SaleStatus(f.Status) {
		case domain.SaleCompleted, domain.SaleRefunded, domain.SaleCancelled:
		default:
			return ports.ListSalesFilter{}, echo.NewHTTPError(http.StatusBadRequest, "unknown status "+f.Status)
		}
	}
	if raw := c.QueryParam("date_from"); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return ports.ListSalesFilter{}, echo.NewHTTPError(http.StatusBadRequest, "date_from must be YYYY-MM-DD")
		}
		f.DateFrom = d
	}
	if raw := c.QueryParam("date_to"); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return ports.ListSalesFilter{}, echo.NewHTTPError(http.StatusBadRequest, "date_to must be YYYY-MM-DD")
		}
		f.DateTo = d.AddDate(0, 0, 1)
	}
	return f, nil
}
