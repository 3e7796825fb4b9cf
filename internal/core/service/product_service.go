package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/retailpos/pos-system/internal/core/domain"
	"github.com/retailpos/pos-system/internal/core/ports"
)

// ProductService manages the catalog. Stock is never written here; it only
// moves through sales and inventory adjustments.
type ProductService struct {
	products   ports.ProductRepository
	categories ports.CategoryRepository
	log        zerolog.Logger
	now        func() time.Time
}

func NewProductService(products ports.ProductRepository, categories ports.CategoryRepository, log zerolog.Logger) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, in ports.CreateProductInput) (*domain.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Barcode = strings.TrimSpace(in.Barcode)
	in.Category = strings.TrimSpace(in.Category)

	if err := validateProduct(in); err != nil {
		return nil, err
	}

	maxStock := in.MaxStockLevel
	if maxStock == 0 {
		maxStock = domain.DefaultMaxStock(in.MinStockLevel)
	}

	now := s.now()
	p := &domain.Product{
		Name:            in.Name,
		Barcode:         in.Barcode,
		Category:        in.Category,
		Description:     in.Description,
		CostPrice:       in.CostPrice.Round(2),
		SellingPrice:    in.SellingPrice.Round(2),
		QuantityInStock: in.QuantityInStock,
		MinStockLevel:   in.MinStockLevel,
		MaxStockLevel:   maxStock,
		Supplier:        in.Supplier,
		State:           domain.StateActive,
		CreatedBy:       in.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.products.Create(ctx, p); err != nil {
		if errors.Is(err, domain.ErrBarcodeExists) {
			return nil, err
		}
		return nil, domain.Persistence("create product", err)
	}

	s.log.Info().Str("product_id", p.ID).Str("barcode", p.Barcode).Msg("product created")
	return p, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.FindActiveByID(ctx, id)
}

func (s *ProductService) ListProducts(ctx context.Context, filter ports.ListProductsFilter) (*ports.ListProductsResult, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	filter.Search = strings.TrimSpace(filter.Search)

	items, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, domain.Persistence("list products", err)
	}
	return &ports.ListProductsResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, upd ports.ProductUpdate) (*domain.Product, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, domain.Invalid(nil, "name cannot be empty")
	}
	if upd.Barcode != nil && strings.TrimSpace(*upd.Barcode) == "" {
		return nil, domain.Invalid(nil, "barcode cannot be empty")
	}
	if upd.CostPrice != nil && upd.CostPrice.IsNegative() {
		return nil, domain.Invalid(nil, "cost price cannot be negative")
	}
	if upd.SellingPrice != nil && upd.SellingPrice.IsNegative() {
		return nil, domain.Invalid(nil, "selling price cannot be negative")
	}
	if upd.MinStockLevel != nil && *upd.MinStockLevel < 0 {
		return nil, domain.Invalid(nil, "min stock level cannot be negative")
	}
	if upd.MaxStockLevel != nil && *upd.MaxStockLevel < 0 {
		return nil, domain.Invalid(nil, "max stock level cannot be negative")
	}

	p, err := s.products.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) || errors.Is(err, domain.ErrProductInactive) || errors.Is(err, domain.ErrBarcodeExists) {
			return nil, err
		}
		return nil, domain.Persistence("update product", err)
	}
	return p, nil
}

// ArchiveProduct removes a product from sale. Historical sales keep their
// snapshot of it.
func (s *ProductService) ArchiveProduct(ctx context.Context, id string) error {
	if err := s.products.Archive(ctx, id); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return err
		}
		return domain.Persistence("archive product", err)
	}
	s.log.Info().Str("product_id", id).Msg("product archived")
	return nil
}

func (s *ProductService) LowStock(ctx context.Context) ([]*domain.Product, error) {
	items, err := s.products.ListLowStock(ctx)
	if err != nil {
		return nil, domain.Persistence("list low stock", err)
	}
	return items, nil
}

// Categories merges the categories used by active products with the
// category collection, falling back to the built-in defaults.
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	used, err := s.products.Categories(ctx)
	if err != nil {
		return nil, domain.Persistence("list product categories", err)
	}
	named, err := s.categories.ListActiveNames(ctx)
	if err != nil {
		return nil, domain.Persistence("list categories", err)
	}

	seen := make(map[string]struct{}, len(used)+len(named))
	out := make([]string, 0, len(used)+len(named))
	for _, c := range append(used, named...) {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	if len(out) == 0 {
		return append([]string(nil), domain.DefaultCategories...), nil
	}
	sort.Strings(out)
	return out, nil
}

func validateProduct(in ports.CreateProductInput) error {
	switch {
	case in.Name == "":
		return domain.Invalid(nil, "name is required")
	case in.Barcode == "":
		return domain.Invalid(nil, "barcode is required")
	case in.Category == "":
		return domain.Invalid(nil, "category is required")
	case in.CostPrice.IsNegative() || in.SellingPrice.IsNegative():
		return domain.Invalid(nil, "prices cannot be negative")
	case in.SellingPrice.Equal(decimal.Zero):
		return domain.Invalid(nil, "selling price must be greater than zero")
	case in.QuantityInStock < 0 || in.MinStockLevel < 0 || in.MaxStockLevel < 0:
		return domain.Invalid(nil, "stock levels cannot be negative")
	}
	return nil
}
