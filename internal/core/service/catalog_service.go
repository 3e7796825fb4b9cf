package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/retailpos/pos-system/internal/core/domain"
	"github.com/retailpos/pos-system/internal/core/ports"
)

// CatalogService manages categories and suppliers.
type CatalogService struct {
	categories ports.CategoryRepository
	suppliers  ports.SupplierRepository
	log        zerolog.Logger
	now        func() time.Time
}

func NewCatalogService(categories ports.CategoryRepository, suppliers ports.SupplierRepository, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		categories: categories,
		suppliers:  suppliers,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *CatalogService) CreateCategory(ctx context.Context, in ports.CreateCategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid(nil, "category name is required")
	}

	now := s.now()
	c := &domain.Category{
		Name:        name,
		Description: in.Description,
		State:       domain.StateActive,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.categories.Create(ctx, c); err != nil {
		if errors.Is(err, domain.ErrCategoryExists) {
			return nil, err
		}
		return nil, domain.Persistence("create category", err)
	}
	return c, nil
}

func (s *CatalogService) CreateSupplier(ctx context.Context, in ports.CreateSupplierInput) (*domain.Supplier, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	switch {
	case in.Name == "" || in.ContactPerson == "" || in.Phone == "":
		return nil, domain.Invalid(nil, "name, contact person and phone are required")
	case in.Email != "" && !validEmail(in.Email):
		return nil, domain.Invalid(nil, "invalid email %q", in.Email)
	}

	now := s.now()
	sup := &domain.Supplier{
		Name:          in.Name,
		ContactPerson: in.ContactPerson,
		Email:         in.Email,
		Phone:         in.Phone,
		Address:       in.Address,
		City:          in.City,
		Country:       in.Country,
		State:         domain.StateActive,
		CreatedBy:     in.CreatedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.suppliers.Create(ctx, sup); err != nil {
		return nil, domain.Persistence("create supplier", err)
	}

	s.log.Info().Str("supplier_id", sup.ID).Msg("supplier created")
	return sup, nil
}

func (s *CatalogService) ListSuppliers(ctx context.Context) ([]*domain.Supplier, error) {
	items, err := s.suppliers.ListActive(ctx)
	if err != nil {
		return nil, domain.Persistence("list suppliers", err)
	}
	return items, nil
}

// GetSupplier returns an active supplier. Archived suppliers read as missing.
func (s *CatalogService) GetSupplier(ctx context.Context, id string) (*domain.Supplier, error) {
	sup, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSupplierNotFound) {
			return nil, err
		}
		return nil, domain.Persistence("get supplier", err)
	}
	if sup.State != domain.StateActive {
		return nil, domain.ErrSupplierNotFound
	}
	return sup, nil
}

func (s *CatalogService) UpdateSupplier(ctx context.Context, id string, upd ports.SupplierUpdate) (*domain.Supplier, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, domain.Invalid(nil, "name cannot be empty")
	}
	if upd.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*upd.Email))
		if email != "" && !validEmail(email) {
			return nil, domain.Invalid(nil, "invalid email %q", *upd.Email)
		}
		upd.Email = &email
	}

	sup, err := s.suppliers.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, domain.ErrSupplierNotFound) {
			return nil, err
		}
		return nil, domain.Persistence("update supplier", err)
	}
	return sup, nil
}

func (s *CatalogService) ArchiveSupplier(ctx context.Context, id string) error {
	if err := s.suppliers.Archive(ctx, id); err != nil {
		if errors.Is(err, domain.ErrSupplierNotFound) {
			return err
		}
		return domain.Persistence("archive supplier", err)
	}
	s.log.Info().Str("supplier_id", id).Msg("supplier archived")
	return nil
}
