package handler

import (
	"github.com/retailpos/pos-system/internal/core/domain"
	"github.com/retailpos/pos-system/internal/core/ports"
)

// --- Request → Service input ---

func toCreateProductInput(req createProductRequest, createdBy string) ports.CreateProductInput {
	return ports.CreateProductInput{
		Name:            req.Name,
		Barcode:         req.Barcode,
		Category:        req.Category,
		Description:     req.Description,
		CostPrice:       req.CostPrice,
		SellingPrice:    req.SellingPrice,
		QuantityInStock: req.QuantityInStock,
		MinStockLevel:   req.MinStockLevel,
		MaxStockLevel:   req.MaxStockLevel,
		Supplier:        req.Supplier,
		CreatedBy:       createdBy,
	}
}

func toProductUpdate(req updateProductRequest) ports.ProductUpdate {
	return ports.ProductUpdate{
		Name:          req.Name,
		Barcode:       req.Barcode,
		Category:      req.Category,
		Description:   req.Description,
		CostPrice:     req.CostPrice,
		SellingPrice:  req.SellingPrice,
		MinStockLevel: req.MinStockLevel,
		MaxStockLevel: req.MaxStockLevel,
		Supplier:      req.Supplier,
	}
}

func toCreateSupplierInput(req createSupplierRequest, createdBy string) ports.CreateSupplierInput {
	return ports.CreateSupplierInput{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		City:          req.City,
		Country:       req.Country,
		CreatedBy:     createdBy,
	}
}

func toSupplierUpdate(req updateSupplierRequest) ports.SupplierUpdate {
	return ports.SupplierUpdate{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		City:          req.City,
		Country:       req.Country,
	}
}

func toCommitSaleInput(req createSaleRequest, cashier principal, idempotencyKey string) ports.CommitSaleInput {
	items := make([]ports.CartLineInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, ports.CartLineInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return ports.CommitSaleInput{
		Items: items,
		Payment: ports.PaymentInput{
			Method:         domain.PaymentMethod(req.PaymentMethod),
			AmountTendered: req.AmountTendered,
			TaxRate:        req.TaxRate,
			DiscountRate:   req.DiscountRate,
		},
		Cashier:        ports.Cashier{ID: cashier.ID, Name: cashier.Username},
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		IdempotencyKey: idempotencyKey,
	}
}

func toCreateUserInput(req createUserRequest, createdBy string) ports.CreateUserInput {
	return ports.CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		CreatedBy: createdBy,
	}
}

func toUpdateUserInput(req updateUserRequest, actorID string) ports.UpdateUserInput {
	return ports.UpdateUserInput{
		ActorID:   actorID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Active:    req.IsActive,
		Password:  req.Password,
	}
}

// --- Domain → Response ---

func toSaleResponse(s *domain.Sale) saleResponse {
	return saleResponse{
		Sale: s,
		Links: saleLinks{
			Self:    "/v1/sales/" + s.ID,
			Receipt: "/v1/sales/" + s.ID + "/receipt",
		},
	}
}
