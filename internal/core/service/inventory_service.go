package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/retailpos/pos-system/internal/core/domain"
	"github.com/retailpos/pos-system/internal/core/ports"
)

const defaultHistoryLimit = 50

// InventoryService records manual stock corrections.
type InventoryService struct {
	uow         ports.UnitOfWork
	adjustments ports.StockAdjustmentRepository
	log         zerolog.Logger
	now         func() time.Time
}

func NewInventoryService(uow ports.UnitOfWork, adjustments ports.StockAdjustmentRepository, log zerolog.Logger) *InventoryService {
	return &InventoryService{
		uow:         uow,
		adjustments: adjustments,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// AdjustStock moves stock up or down and writes the audit record in the same
// transaction. A decrease larger than the stock on hand is rejected.
func (s *InventoryService) AdjustStock(ctx context.Context, in ports.AdjustStockInput) (*domain.StockAdjustment, error) {
	in.Reason = strings.TrimSpace(in.Reason)
	switch {
	case in.ProductID == "":
		return nil, domain.Invalid(domain.ErrProductNotFound, "missing product reference")
	case in.Quantity <= 0 || in.Quantity > domain.MaxLineQuantity:
		return nil, domain.Invalid(domain.ErrInvalidQuantity, "adjustment")
	case in.Type != domain.AdjustIncrease && in.Type != domain.AdjustDecrease:
		return nil, domain.Invalid(nil, "unknown adjustment type %q", in.Type)
	case in.Reason == "":
		return nil, domain.Invalid(nil, "reason is required")
	}

	var adj *domain.StockAdjustment
	err := s.uow.Do(ctx, func(ctx context.Context, tx ports.TxRepositories) error {
		p, err := tx.Products().FindActiveByID(ctx, in.ProductID)
		if err != nil {
			return err
		}

		var change domain.StockChange
		if in.Type == domain.AdjustIncrease {
			change, err = tx.Products().IncrementStock(ctx, in.ProductID, in.Quantity)
		} else {
			change, err = tx.Products().DecrementStock(ctx, in.ProductID, in.Quantity)
		}
		if err != nil {
			return err
		}
		if change.Outcome == domain.StockInsufficient {
			return domain.Invalid(domain.ErrInsufficientStock,
				"%s: cannot remove %d, available %d", p.Name, in.Quantity, change.Previous)
		}

		newStock := change.Previous + change.Applied
		if in.Type == domain.AdjustDecrease {
			newStock = change.Previous - change.Applied
		}

		adj = &domain.StockAdjustment{
			ProductID:      p.ID,
			ProductName:    p.Name,
			Type:           in.Type,
			Quantity:       in.Quantity,
			Reason:         in.Reason,
			PreviousStock:  change.Previous,
			NewStock:       newStock,
			AdjustedBy:     in.ActorID,
			AdjustedByName: in.ActorName,
			CreatedAt:      s.now(),
		}
		if err := tx.Adjustments().Insert(ctx, adj); err != nil {
			return fmt.Errorf("insert adjustment: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) || errors.Is(err, domain.ErrProductInactive) {
			return nil, domain.Invalid(err, "product %s", in.ProductID)
		}
		return nil, domain.Persistence("adjust stock", err)
	}

	s.log.Info().
		Str("product_id", adj.ProductID).
		Str("type", string(adj.Type)).
		Int("quantity", adj.Quantity).
		Int("new_stock", adj.NewStock).
		Str("actor_id", in.ActorID).
		Msg("stock adjusted")
	return adj, nil
}

// History returns the most recent adjustments, optionally for one product.
func (s *InventoryService) History(ctx context.Context, productID string, limit int) ([]*domain.StockAdjustment, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	items, err := s.adjustments.ListByProduct(ctx, productID, limit)
	if err != nil {
		return nil, domain.Persistence("list adjustments", err)
	}
	return items, nil
}
