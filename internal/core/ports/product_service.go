package ports

import (
	"context"

	"github.com/retailpos/pos-system/internal/core/domain"
)

// CreateProductInput carries all data needed to create a catalog entry.
type CreateProductInput struct {
	Name            string
	Barcode         string
	Category        string
	Description     string
	CostPrice       Money
	SellingPrice    Money
	QuantityInStock int
	MinStockLevel   int
	MaxStockLevel   int
	Supplier        string
	CreatedBy       string
}

// ListProductsResult is returned by ListProducts.
type ListProductsResult struct {
	Items      []*domain.Product
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ProductService defines catalog use cases.
type ProductService interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter ListProductsFilter) (*ListProductsResult, error)
	UpdateProduct(ctx context.Context, id string, upd ProductUpdate) (*domain.Product, error)
	ArchiveProduct(ctx context.Context, id string) error
	LowStock(ctx context.Context) ([]*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// AdjustStockInput requests a manual stock correction.
type AdjustStockInput struct {
	ProductID string
	Type      domain.AdjustmentType
	Quantity  int
	Reason    string
	ActorID   string
	ActorName string
}

// InventoryService defines manual stock correction use cases.
type InventoryService interface {
	AdjustStock(ctx context.Context, input AdjustStockInput) (*domain.StockAdjustment, error)
	History(ctx context.Context, productID string, limit int) ([]*domain.StockAdjustment, error)
}

// CreateCategoryInput carries a new category.
type CreateCategoryInput struct {
	Name        string
	Description string
	CreatedBy   string
}

// CreateSupplierInput carries a new supplier.
type CreateSupplierInput struct {
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	City          string
	Country       string
	CreatedBy     string
}

// CatalogService defines category and supplier use cases.
type CatalogService interface {
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*domain.Category, error)
	CreateSupplier(ctx context.Context, input CreateSupplierInput) (*domain.Supplier, error)
	ListSuppliers(ctx context.Context) ([]*domain.Supplier, error)
	GetSupplier(ctx context.Context, id string) (*domain.Supplier, error)
	UpdateSupplier(ctx context.Context, id string, upd SupplierUpdate) (*domain.Supplier, error)
	ArchiveSupplier(ctx context.Context, id string) error
}
