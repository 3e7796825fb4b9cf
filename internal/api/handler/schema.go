package handler

import (
	"github.com/shopspring/decimal"

	"github.com/retailpos/pos-system/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type meResponse struct {
	User         *domain.User `json:"user"`
	Capabilities []string     `json:"capabilities"`
}

// --- Products ---

type createProductRequest struct {
	Name            string          `json:"name"              validate:"required"`
	Barcode         string          `json:"barcode"           validate:"required"`
	Category        string          `json:"category"          validate:"required"`
	Description     string          `json:"description"`
	CostPrice       decimal.Decimal `json:"cost_price"        validate:"money" swaggertype:"string" example:"4.10"`
	SellingPrice    decimal.Decimal `json:"selling_price"     validate:"money" swaggertype:"string" example:"9.99"`
	QuantityInStock int             `json:"quantity_in_stock" validate:"min=0"`
	MinStockLevel   int             `json:"min_stock_level"   validate:"min=0"`
	MaxStockLevel   int             `json:"max_stock_level"   validate:"min=0"`
	Supplier        string          `json:"supplier"`
}

type updateProductRequest struct {
	Name          *string          `json:"name"            validate:"omitempty,min=1"`
	Barcode       *string          `json:"barcode"         validate:"omitempty,min=1"`
	Category      *string          `json:"category"        validate:"omitempty,min=1"`
	Description   *string          `json:"description"`
	CostPrice     *decimal.Decimal `json:"cost_price"      validate:"omitempty,money" swaggertype:"string"`
	SellingPrice  *decimal.Decimal `json:"selling_price"   validate:"omitempty,money" swaggertype:"string"`
	MinStockLevel *int             `json:"min_stock_level" validate:"omitempty,min=0"`
	MaxStockLevel *int             `json:"max_stock_level" validate:"omitempty,min=0"`
	Supplier      *string          `json:"supplier"`
}

type productListResponse struct {
	Items      []*domain.Product `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// --- Catalog ---

type createCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

type createSupplierRequest struct {
	Name          string `json:"name"           validate:"required"`
	ContactPerson string `json:"contact_person" validate:"required"`
	Email         string `json:"email"          validate:"omitempty,email"`
	Phone         string `json:"phone"          validate:"required"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Country       string `json:"country"`
}

type updateSupplierRequest struct {
	Name          *string `json:"name"           validate:"omitempty,min=1"`
	ContactPerson *string `json:"contact_person"`
	Email         *string `json:"email"          validate:"omitempty,email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	City          *string `json:"city"`
	Country       *string `json:"country"`
}

// --- Inventory ---

type adjustStockRequest struct {
	ProductID      string `json:"product_id"      validate:"required"`
	AdjustmentType string `json:"adjustment_type" validate:"required,oneof=increase decrease"`
	Quantity       int    `json:"quantity"        validate:"required,gt=0,lte=10000"`
	Reason         string `json:"reason"          validate:"required"`
}

// --- Sales ---

// saleItemRequest only caps the quantity here; the lower bound and merged
// totals are checked by the sale engine.
type saleItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity" validate:"lte=10000"`
}

// createSaleRequest checks payment amounts here and leaves cart checks to the
// sale engine so the API and the engine report the same cart errors.
type createSaleRequest struct {
	Items          []saleItemRequest `json:"items"           validate:"dive"`
	PaymentMethod  string            `json:"payment_method"  validate:"required,oneof=cash card digital"`
	AmountTendered decimal.Decimal   `json:"amount_tendered" validate:"money" swaggertype:"string" example:"50.00"`
	TaxRate        decimal.Decimal   `json:"tax_rate"        validate:"rate"  swaggertype:"string" example:"10"`
	DiscountRate   decimal.Decimal   `json:"discount_rate"   validate:"rate"  swaggertype:"string" example:"0"`
	CustomerName   string            `json:"customer_name"`
	CustomerEmail  string            `json:"customer_email"  validate:"omitempty,email"`
}

type saleTransitionRequest struct {
	Reason string `json:"reason"`
}

type saleLinks struct {
	Self    string `json:"self"`
	Receipt string `json:"receipt"`
}

type saleResponse struct {
	*domain.Sale
	Links saleLinks `json:"_links"`
}

type saleListResponse struct {
	Items      []*domain.Sale `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

// --- Users ---

type createUserRequest struct {
	Username  string `json:"username"   validate:"required,min=3"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
	Role      string `json:"role"       validate:"required,oneof=admin cashier inventory_manager viewer"`
}

type updateUserRequest struct {
	Email     *string `json:"email"      validate:"omitempty,email"`
	FirstName *string `json:"first_name" validate:"omitempty,min=1"`
	LastName  *string `json:"last_name"  validate:"omitempty,min=1"`
	Role      *string `json:"role"       validate:"omitempty,oneof=admin cashier inventory_manager viewer"`
	IsActive  *bool   `json:"is_active"`
	Password  *string `json:"password"   validate:"omitempty,min=6"`
}
