package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/retailpos/pos-system/internal/core/domain"
	"github.com/retailpos/pos-system/internal/core/ports"
)

var errInjected = errors.New("injected storage failure")

// memStore is an in-memory backend whose unit of work snapshots state and
// restores it when the callback fails.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	products    map[string]*domain.Product
	sales       map[string]*domain.Sale
	adjustments []*domain.StockAdjustment
	nextID      int

	failInsert      error
	failDecrementOn string
	failUpdate      error
	// concurrentSale is stored by the first idempotency lookup after that
	// lookup reports a miss, like a request that commits in between.
	concurrentSale *domain.Sale
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[string]*domain.Product),
		sales:    make(map[string]*domain.Sale),
	}
}

func (s *memStore) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *memStore) addProduct(id, name, price string, stock int) *domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &domain.Product{
		ID:              id,
		Name:            name,
		Barcode:         "BC-" + id,
		Category:        "General",
		SellingPrice:    decimal.RequireFromString(price),
		CostPrice:       decimal.RequireFromString(price),
		QuantityInStock: stock,
		MinStockLevel:   1,
		MaxStockLevel:   5,
		State:           domain.StateActive,
	}
	s.products[id] = p
	return cloneProduct(p)
}

func (s *memStore) stock(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].QuantityInStock
}

func (s *memStore) saleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sales)
}

func cloneProduct(p *domain.Product) *domain.Product {
	c := *p
	return &c
}

func cloneSale(sl *domain.Sale) *domain.Sale {
	c := *sl
	c.Items = append([]domain.SaleItem(nil), sl.Items...)
	c.StatusHistory = append([]domain.SaleStatusEntry(nil), sl.StatusHistory...)
	return &c
}

// memUoW serializes transactions so snapshots never interleave.
type memUoW struct{ s *memStore }

func (u memUoW) Do(ctx context.Context, fn func(ctx context.Context, tx ports.TxRepositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.s.txMu.Lock()
	defer u.s.txMu.Unlock()

	u.s.mu.Lock()
	products := make(map[string]*domain.Product, len(u.s.products))
	for k, v := range u.s.products {
		products[k] = cloneProduct(v)
	}
	sales := make(map[string]*domain.Sale, len(u.s.sales))
	for k, v := range u.s.sales {
		sales[k] = cloneSale(v)
	}
	adjustments := append([]*domain.StockAdjustment(nil), u.s.adjustments...)
	u.s.mu.Unlock()

	err := fn(ctx, memTx{u.s})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		u.s.mu.Lock()
		u.s.products = products
		u.s.sales = sales
		u.s.adjustments = adjustments
		u.s.mu.Unlock()
	}
	return err
}

type memTx struct{ s *memStore }

func (t memTx) Products() ports.ProductRepository { return memProducts{t.s} }

func (t memTx) Sales() ports.SaleRepository { return memSales{t.s} }

func (t memTx) Adjustments() ports.StockAdjustmentRepository { return memAdjustments{t.s} }

// Users is unused by sale and inventory flows.
func (t memTx) Users() ports.UserRepository { return nil }

type memProducts struct{ s *memStore }

func (r memProducts) Create(_ context.Context, p *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.products {
		if existing.Barcode == p.Barcode {
			return domain.ErrBarcodeExists
		}
	}
	p.ID = r.s.id("prod")
	r.s.products[p.ID] = cloneProduct(p)
	return nil
}

func (r memProducts) FindActiveByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive() {
		return nil, domain.ErrProductInactive
	}
	return p, nil
}

func (r memProducts) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (r memProducts) List(_ context.Context, f ports.ListProductsFilter) ([]*domain.Product, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Product
	for _, p := range r.s.products {
		if !p.IsActive() {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, cloneProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	total := int64(len(out))
	start := (f.Page - 1) * f.Limit
	if start > len(out) {
		start = len(out)
	}
	end := start + f.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r memProducts) ListLowStock(_ context.Context) ([]*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Product
	for _, p := range r.s.products {
		if p.IsActive() && p.IsLowStock() {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

func (r memProducts) Update(_ context.Context, id string, upd ports.ProductUpdate) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.SellingPrice != nil {
		p.SellingPrice = *upd.SellingPrice
	}
	if upd.MinStockLevel != nil {
		p.MinStockLevel = *upd.MinStockLevel
	}
	return cloneProduct(p), nil
}

func (r memProducts) Archive(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.State = domain.StateArchived
	return nil
}

func (r memProducts) Categories(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []string
	for _, p := range r.s.products {
		if p.IsActive() {
			out = append(out, p.Category)
		}
	}
	return out, nil
}

func (r memProducts) decrement(id string, qty int, clamp bool) (domain.StockChange, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if id == r.s.failDecrementOn {
		return domain.StockChange{}, errInjected
	}
	p, ok := r.s.products[id]
	if !ok {
		return domain.StockChange{}, domain.ErrProductNotFound
	}
	if !p.IsActive() {
		return domain.StockChange{}, domain.ErrProductInactive
	}
	change := domain.StockChange{ProductID: id, Requested: qty, Previous: p.QuantityInStock}
	switch {
	case p.QuantityInStock >= qty:
		change.Applied = qty
		change.Outcome = domain.StockApplied
	case clamp:
		change.Applied = p.QuantityInStock
		change.Outcome = domain.StockClamped
	default:
		change.Outcome = domain.StockInsufficient
		return change, nil
	}
	p.QuantityInStock -= change.Applied
	return change, nil
}

func (r memProducts) DecrementStock(_ context.Context, id string, qty int) (domain.StockChange, error) {
	return r.decrement(id, qty, false)
}

func (r memProducts) DecrementStockClamped(_ context.Context, id string, qty int) (domain.StockChange, error) {
	return r.decrement(id, qty, true)
}

func (r memProducts) IncrementStock(_ context.Context, id string, qty int) (domain.StockChange, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.StockChange{}, domain.ErrProductNotFound
	}
	change := domain.StockChange{ProductID: id, Requested: qty, Applied: qty, Previous: p.QuantityInStock, Outcome: domain.StockApplied}
	p.QuantityInStock += qty
	return change, nil
}

type memSales struct{ s *memStore }

func (r memSales) Insert(_ context.Context, sl *domain.Sale) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failInsert != nil {
		return "", r.s.failInsert
	}
	for _, existing := range r.s.sales {
		if sl.IdempotencyKey != "" && existing.IdempotencyKey == sl.IdempotencyKey {
			return "", domain.ErrIdempotencyKeyUsed
		}
		if existing.SaleNumber == sl.SaleNumber {
			return "", domain.ErrDuplicateSaleNumber
		}
	}
	id := r.s.id("sale")
	c := cloneSale(sl)
	c.ID = id
	r.s.sales[id] = c
	return id, nil
}

func (r memSales) FindByID(_ context.Context, id string) (*domain.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sl, ok := r.s.sales[id]
	if !ok {
		return nil, domain.ErrSaleNotFound
	}
	return cloneSale(sl), nil
}

func (r memSales) FindByIdempotencyKey(_ context.Context, key string) (*domain.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c := r.s.concurrentSale; c != nil {
		r.s.concurrentSale = nil
		r.s.sales[c.ID] = cloneSale(c)
		return nil, domain.ErrSaleNotFound
	}
	for _, sl := range r.s.sales {
		if sl.IdempotencyKey == key {
			return cloneSale(sl), nil
		}
	}
	return nil, domain.ErrSaleNotFound
}

func (r memSales) List(_ context.Context, f ports.ListSalesFilter) ([]*domain.Sale, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Sale
	for _, sl := range r.s.sales {
		if f.CashierID != "" && sl.CashierID != f.CashierID {
			continue
		}
		out = append(out, cloneSale(sl))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SaleNumber > out[j].SaleNumber })
	total := int64(len(out))
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (r memSales) MarkFulfillment(_ context.Context, id string, items []domain.SaleItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sl, ok := r.s.sales[id]
	if !ok {
		return domain.ErrSaleNotFound
	}
	sl.PartialFulfillment = true
	sl.Items = append([]domain.SaleItem(nil), items...)
	return nil
}

func (r memSales) UpdateStatus(_ context.Context, id string, from, to domain.SaleStatus, entry domain.SaleStatusEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failUpdate != nil {
		return r.s.failUpdate
	}
	sl, ok := r.s.sales[id]
	if !ok {
		return domain.ErrSaleNotFound
	}
	if sl.Status != from {
		return domain.ErrInvalidTransition
	}
	sl.Status = to
	sl.StatusHistory = append(sl.StatusHistory, entry)
	return nil
}

type memAdjustments struct{ s *memStore }

func (r memAdjustments) Insert(_ context.Context, a *domain.StockAdjustment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = r.s.id("adj")
	c := *a
	r.s.adjustments = append(r.s.adjustments, &c)
	return nil
}

func (r memAdjustments) ListByProduct(_ context.Context, productID string, limit int) ([]*domain.StockAdjustment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.StockAdjustment
	for i := len(r.s.adjustments) - 1; i >= 0 && len(out) < limit; i-- {
		a := r.s.adjustments[i]
		if productID == "" || a.ProductID == productID {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

type memCategories struct {
	names []string
}

func (r *memCategories) Create(_ context.Context, c *domain.Category) error {
	for _, n := range r.names {
		if n == c.Name {
			return domain.ErrCategoryExists
		}
	}
	r.names = append(r.names, c.Name)
	c.ID = "cat-" + c.Name
	return nil
}

func (r *memCategories) ListActiveNames(_ context.Context) ([]string, error) {
	return append([]string(nil), r.names...), nil
}

type memSuppliers struct {
	items map[string]*domain.Supplier
}

func newMemSuppliers() *memSuppliers {
	return &memSuppliers{items: map[string]*domain.Supplier{}}
}

func (r *memSuppliers) Create(_ context.Context, s *domain.Supplier) error {
	s.ID = fmt.Sprintf("sup-%d", len(r.items)+1)
	cp := *s
	r.items[s.ID] = &cp
	return nil
}

func (r *memSuppliers) FindByID(_ context.Context, id string) (*domain.Supplier, error) {
	s, ok := r.items[id]
	if !ok {
		return nil, domain.ErrSupplierNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSuppliers) ListActive(_ context.Context) ([]*domain.Supplier, error) {
	var out []*domain.Supplier
	for _, s := range r.items {
		if s.State == domain.StateActive {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memSuppliers) Update(_ context.Context, id string, upd ports.SupplierUpdate) (*domain.Supplier, error) {
	s, ok := r.items[id]
	if !ok || s.State != domain.StateActive {
		return nil, domain.ErrSupplierNotFound
	}
	if upd.Name != nil {
		s.Name = *upd.Name
	}
	if upd.Email != nil {
		s.Email = *upd.Email
	}
	if upd.Phone != nil {
		s.Phone = *upd.Phone
	}
	cp := *s
	return &cp, nil
}

func (r *memSuppliers) Archive(_ context.Context, id string) error {
	s, ok := r.items[id]
	if !ok || s.State != domain.StateActive {
		return domain.ErrSupplierNotFound
	}
	s.State = domain.StateArchived
	return nil
}

type seqNumbers struct{ n atomic.Int64 }

func (g *seqNumbers) Next(context.Context) (string, error) {
	return fmt.Sprintf("SALE-20260101-%06d", g.n.Add(1)), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.SaleEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.SaleEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []domain.SaleEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.SaleEventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}
