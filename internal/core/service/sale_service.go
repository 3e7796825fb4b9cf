package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/retailpos/pos-system/internal/core/domain"
	"github.com/retailpos/pos-system/internal/core/ports"
	"github.com/retailpos/pos-system/internal/pkg/metrics"
)

var tracer = otel.Tracer("github.com/retailpos/pos-system/internal/core/service")

// StockPolicy decides what happens when a line asks for more units than
// are in stock at commit time.
type StockPolicy string

const (
	// StockPolicyReject aborts the whole sale.
	StockPolicyReject StockPolicy = "reject"
	// StockPolicyClamp sells anyway, floors stock at zero and flags the sale
	// as partially fulfilled.
	StockPolicyClamp StockPolicy = "clamp"
)

// ParseStockPolicy converts a configuration value to a StockPolicy.
func ParseStockPolicy(s string) (StockPolicy, error) {
	switch StockPolicy(s) {
	case StockPolicyReject, "":
		return StockPolicyReject, nil
	case StockPolicyClamp:
		return StockPolicyClamp, nil
	}
	return "", fmt.Errorf("unknown stock policy %q", s)
}

// SaleService converts carts into durable sales and keeps product stock
// consistent with them.
type SaleService struct {
	uow      ports.UnitOfWork
	products ports.ProductRepository
	sales    ports.SaleRepository
	numbers  ports.SaleNumberGenerator
	events   ports.SaleEventPublisher
	policy   StockPolicy
	log      zerolog.Logger
	now      func() time.Time
}

func NewSaleService(
	uow ports.UnitOfWork,
	products ports.ProductRepository,
	sales ports.SaleRepository,
	numbers ports.SaleNumberGenerator,
	events ports.SaleEventPublisher,
	policy StockPolicy,
	log zerolog.Logger,
) *SaleService {
	if policy == "" {
		policy = StockPolicyReject
	}
	return &SaleService{
		uow:      uow,
		products: products,
		sales:    sales,
		numbers:  numbers,
		events:   events,
		policy:   policy,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CommitSale persists a completed sale and decrements stock for every line
// as one atomic unit. On failure nothing is persisted and the error matches
// either domain.ErrValidation or domain.ErrPersistence.
func (s *SaleService) CommitSale(ctx context.Context, in ports.CommitSaleInput) (*domain.Sale, error) {
	ctx, span := tracer.Start(ctx, "SaleService.CommitSale",
		trace.WithAttributes(
			attribute.Int("sale.lines", len(in.Items)),
			attribute.String("sale.payment_method", string(in.Payment.Method)),
			attribute.String("sale.stock_policy", string(s.policy)),
		),
	)
	defer span.End()

	start := time.Now()
	sale, replayed, err := s.commit(ctx, in)
	if err != nil {
		reason := failureReason(err)
		metrics.SaleCommitFailuresTotal.WithLabelValues(reason).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		s.log.Warn().Err(err).Str("reason", reason).Str("cashier_id", in.Cashier.ID).Msg("sale commit failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("sale.number", sale.SaleNumber), attribute.Bool("sale.replayed", replayed))

	if replayed {
		s.log.Info().Str("idempotency_key", in.IdempotencyKey).Str("sale_number", sale.SaleNumber).Msg("idempotent replay")
		return sale, nil
	}

	metrics.SaleCommitDuration.Observe(time.Since(start).Seconds())
	metrics.SalesCommittedTotal.WithLabelValues(string(sale.PaymentMethod)).Inc()

	evt := s.log.Info()
	if sale.PartialFulfillment {
		evt = s.log.Warn().Bool("partial_fulfillment", true)
	}
	evt.Str("sale_number", sale.SaleNumber).
		Str("cashier_id", sale.CashierID).
		Str("total", sale.Total.StringFixed(2)).
		Int("lines", len(sale.Items)).
		Msg("sale committed")

	s.publish(ctx, domain.EventSaleCompleted, sale)
	return sale, nil
}

func (s *SaleService) commit(ctx context.Context, in ports.CommitSaleInput) (*domain.Sale, bool, error) {
	lines, err := normalizeLines(in.Items)
	if err != nil {
		return nil, false, err
	}
	if err := validatePayment(in.Payment); err != nil {
		return nil, false, err
	}

	if in.IdempotencyKey != "" {
		existing, err := s.sales.FindByIdempotencyKey(ctx, in.IdempotencyKey)
		switch {
		case err == nil:
			return s.replay(existing, in, lines)
		case !errors.Is(err, domain.ErrSaleNotFound):
			return nil, false, domain.Persistence("find sale by idempotency key", err)
		}
	}

	items, err := s.snapshot(ctx, lines)
	if err != nil {
		return nil, false, err
	}

	totals := CalculateTotals(items, in.Payment.TaxRate, in.Payment.DiscountRate)

	tendered, change, err := settle(in.Payment, totals.Total)
	if err != nil {
		return nil, false, err
	}

	number, err := s.numbers.Next(ctx)
	if err != nil {
		return nil, false, domain.Persistence("generate sale number", err)
	}

	now := s.now()
	sale := &domain.Sale{
		SaleNumber:     number,
		Items:          items,
		Subtotal:       totals.Subtotal,
		TaxRate:        in.Payment.TaxRate,
		Tax:            totals.Tax,
		DiscountRate:   in.Payment.DiscountRate,
		Discount:       totals.Discount,
		Total:          totals.Total,
		PaymentMethod:  in.Payment.Method,
		AmountTendered: tendered,
		Change:         change,
		CashierID:      in.Cashier.ID,
		CashierName:    in.Cashier.Name,
		CustomerName:   in.CustomerName,
		CustomerEmail:  in.CustomerEmail,
		Status:         domain.SaleCompleted,
		IdempotencyKey: in.IdempotencyKey,
		StatusHistory: []domain.SaleStatusEntry{
			{Status: domain.SaleCompleted, Timestamp: now, ActorID: in.Cashier.ID},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.uow.Do(ctx, func(ctx context.Context, tx ports.TxRepositories) error {
		id, err := tx.Sales().Insert(ctx, sale)
		if err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}
		sale.ID = id

		short := false
		for i := range sale.Items {
			item := &sale.Items[i]
			change, err := s.decrement(ctx, tx.Products(), item)
			if err != nil {
				return err
			}
			metrics.StockDecrementsTotal.WithLabelValues(string(change.Outcome)).Inc()

			switch change.Outcome {
			case domain.StockInsufficient:
				return domain.Invalid(domain.ErrInsufficientStock,
					"%s: requested %d, available %d", item.Name, item.Quantity, change.Previous)
			case domain.StockClamped:
				item.ShortQuantity = change.Short()
				short = true
			}
		}

		if short {
			sale.PartialFulfillment = true
			if err := tx.Sales().MarkFulfillment(ctx, sale.ID, sale.Items); err != nil {
				return fmt.Errorf("mark fulfillment: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if in.IdempotencyKey != "" && errors.Is(err, domain.ErrIdempotencyKeyUsed) {
			// A concurrent request with the same key committed first.
			existing, ferr := s.sales.FindByIdempotencyKey(ctx, in.IdempotencyKey)
			if ferr != nil {
				return nil, false, domain.Persistence("find sale by idempotency key", ferr)
			}
			return s.replay(existing, in, lines)
		}
		return nil, false, domain.Persistence("commit sale", err)
	}

	return sale, false, nil
}

// replay returns the sale stored under the request's idempotency key when it
// was rung up by the same cashier for the same cart.
func (s *SaleService) replay(existing *domain.Sale, in ports.CommitSaleInput, lines []ports.CartLineInput) (*domain.Sale, bool, error) {
	if existing.CashierID != in.Cashier.ID || !sameCart(existing.Items, lines) {
		return nil, false, domain.Invalid(domain.ErrIdempotencyMismatch, "key %q", in.IdempotencyKey)
	}
	return existing, true, nil
}

// sameCart compares merged cart lines with the stored sale items by product
// and quantity, ignoring order.
func sameCart(items []domain.SaleItem, lines []ports.CartLineInput) bool {
	if len(items) != len(lines) {
		return false
	}
	want := make(map[string]int, len(lines))
	for _, l := range lines {
		want[l.ProductID] = l.Quantity
	}
	for _, it := range items {
		if qty, ok := want[it.ProductID]; !ok || qty != it.Quantity {
			return false
		}
	}
	return true
}

// decrement applies the configured stock policy to one line.
func (s *SaleService) decrement(ctx context.Context, products ports.ProductRepository, item *domain.SaleItem) (domain.StockChange, error) {
	var (
		change domain.StockChange
		err    error
	)
	if s.policy == StockPolicyClamp {
		change, err = products.DecrementStockClamped(ctx, item.ProductID, item.Quantity)
	} else {
		change, err = products.DecrementStock(ctx, item.ProductID, item.Quantity)
	}
	if errors.Is(err, domain.ErrProductNotFound) || errors.Is(err, domain.ErrProductInactive) {
		return change, domain.Invalid(err, "product %s", item.ProductID)
	}
	if err != nil {
		return change, fmt.Errorf("decrement stock for %s: %w", item.ProductID, err)
	}
	return change, nil
}

// snapshot loads every referenced product and copies the fields an invoice
// must keep even if the catalog changes later.
func (s *SaleService) snapshot(ctx context.Context, lines []ports.CartLineInput) ([]domain.SaleItem, error) {
	items := make([]domain.SaleItem, 0, len(lines))
	for i, line := range lines {
		p, err := s.products.FindActiveByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) || errors.Is(err, domain.ErrProductInactive) {
				return nil, domain.Invalid(err, "item %d (%s)", i, line.ProductID)
			}
			return nil, domain.Persistence("load product", err)
		}
		if s.policy == StockPolicyReject && p.QuantityInStock < line.Quantity {
			return nil, domain.Invalid(domain.ErrInsufficientStock,
				"%s: requested %d, available %d", p.Name, line.Quantity, p.QuantityInStock)
		}
		items = append(items, domain.SaleItem{
			ProductID: p.ID,
			Name:      p.Name,
			Barcode:   p.Barcode,
			Category:  p.Category,
			Price:     p.SellingPrice,
			Quantity:  line.Quantity,
		})
	}
	return items, nil
}

// GetSale retrieves a sale by id.
func (s *SaleService) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return sale, nil
}

// ListSales returns a page of sales, newest first.
func (s *SaleService) ListSales(ctx context.Context, filter ports.ListSalesFilter) (*ports.ListSalesResult, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	items, total, err := s.sales.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return &ports.ListSalesResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

// RefundSale marks a completed sale as refunded and returns its units to stock.
func (s *SaleService) RefundSale(ctx context.Context, in ports.SaleTransitionInput) (*domain.Sale, error) {
	return s.transition(ctx, in, domain.SaleRefunded, domain.EventSaleRefunded)
}

// CancelSale marks a completed sale as cancelled and returns its units to stock.
func (s *SaleService) CancelSale(ctx context.Context, in ports.SaleTransitionInput) (*domain.Sale, error) {
	return s.transition(ctx, in, domain.SaleCancelled, domain.EventSaleCancelled)
}

func (s *SaleService) transition(ctx context.Context, in ports.SaleTransitionInput, to domain.SaleStatus, evType domain.SaleEventType) (*domain.Sale, error) {
	ctx, span := tracer.Start(ctx, "SaleService.Transition",
		trace.WithAttributes(attribute.String("sale.id", in.SaleID), attribute.String("sale.to", string(to))))
	defer span.End()

	sale, err := s.sales.FindByID(ctx, in.SaleID)
	if err != nil {
		return nil, fmt.Errorf("%s sale: %w", to, err)
	}
	if !sale.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%s sale: %w (from %s to %s)", to, domain.ErrInvalidTransition, sale.Status, to)
	}

	entry := domain.SaleStatusEntry{Status: to, Timestamp: s.now(), ActorID: in.ActorID, Notes: in.Reason}

	err = s.uow.Do(ctx, func(ctx context.Context, tx ports.TxRepositories) error {
		if err := tx.Sales().UpdateStatus(ctx, sale.ID, sale.Status, to, entry); err != nil {
			return err
		}
		for _, item := range sale.Items {
			taken := item.Quantity - item.ShortQuantity
			if taken <= 0 {
				continue
			}
			if _, err := tx.Products().IncrementStock(ctx, item.ProductID, taken); err != nil {
				return fmt.Errorf("restock %s: %w", item.ProductID, err)
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transition failed")
		if errors.Is(err, domain.ErrInvalidTransition) {
			return nil, fmt.Errorf("%s sale: %w", to, err)
		}
		return nil, domain.Persistence(string(to)+" sale", err)
	}

	sale.Status = to
	sale.UpdatedAt = entry.Timestamp
	sale.StatusHistory = append(sale.StatusHistory, entry)

	metrics.SaleTransitionsTotal.WithLabelValues(string(to)).Inc()
	s.log.Info().Str("sale_number", sale.SaleNumber).Str("status", string(to)).Str("actor_id", in.ActorID).Msg("sale status changed")

	s.publish(ctx, evType, sale)
	return sale, nil
}

// publish hands the event to the publisher once the transaction has
// committed. Delivery failures never undo a sale.
func (s *SaleService) publish(ctx context.Context, t domain.SaleEventType, sale *domain.Sale) {
	if s.events == nil {
		return
	}
	ev := domain.NewSaleEvent(t, sale, s.now())
	if err := s.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		s.log.Warn().Err(err).Str("sale_number", sale.SaleNumber).Str("event", string(t)).Msg("failed to publish sale event")
	}
}

// normalizeLines validates the cart and merges repeated products into one
// line, keeping first-seen order.
func normalizeLines(in []ports.CartLineInput) ([]ports.CartLineInput, error) {
	if len(in) == 0 {
		return nil, domain.Invalid(domain.ErrEmptyCart, "no items in sale")
	}

	out := make([]ports.CartLineInput, 0, len(in))
	index := make(map[string]int, len(in))
	for i, line := range in {
		if line.ProductID == "" {
			return nil, domain.Invalid(domain.ErrProductNotFound, "item %d: missing product reference", i)
		}
		if line.Quantity <= 0 || line.Quantity > domain.MaxLineQuantity {
			return nil, domain.Invalid(domain.ErrInvalidQuantity, "item %d", i)
		}
		if j, ok := index[line.ProductID]; ok {
			if out[j].Quantity > domain.MaxLineQuantity-line.Quantity {
				return nil, domain.Invalid(domain.ErrInvalidQuantity, "item %d: %s exceeds %d units in total", i, line.ProductID, domain.MaxLineQuantity)
			}
			out[j].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(out)
		out = append(out, line)
	}
	return out, nil
}

func validatePayment(p ports.PaymentInput) error {
	if !p.Method.Valid() {
		return domain.Invalid(domain.ErrInvalidPayment, "unknown payment method %q", p.Method)
	}
	if !validRate(p.TaxRate) {
		return domain.Invalid(domain.ErrInvalidPayment, "tax rate must be between 0 and 100")
	}
	if !validRate(p.DiscountRate) {
		return domain.Invalid(domain.ErrInvalidPayment, "discount rate must be between 0 and 100")
	}
	return nil
}

// settle returns the amount tendered and the change due. Only cash can be
// over-tendered; card and digital payments are taken for the exact total.
func settle(p ports.PaymentInput, total decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if p.Method != domain.PaymentCash {
		return total, decimal.Zero, nil
	}
	if p.AmountTendered.LessThan(total) {
		return decimal.Zero, decimal.Zero, domain.Invalid(domain.ErrInvalidPayment,
			"amount tendered %s is less than total %s", p.AmountTendered.StringFixed(2), total.StringFixed(2))
	}
	return p.AmountTendered, p.AmountTendered.Sub(total), nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrTxConflict):
		return "conflict"
	default:
		return "persistence"
	}
}
