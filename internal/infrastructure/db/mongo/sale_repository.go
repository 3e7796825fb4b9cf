package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/retailpos/pos-system/internal/core/domain"
	"github.com/retailpos/pos-system/internal/core/ports"
)

const (
	collectionSales  = "sales"
	idempotencyIndex = "idempotency_key_unique"
)

var _ ports.SaleRepository = (*SaleRepository)(nil)

type SaleRepository struct {
	col *mongo.Collection
}

func NewSaleRepository(db *mongo.Database) *SaleRepository {
	return &SaleRepository{col: db.Collection(collectionSales)}
}

type saleItemDoc struct {
	ProductID     primitive.ObjectID   `bson:"product_id"`
	Name          string               `bson:"name"`
	Barcode       string               `bson:"barcode,omitempty"`
	Category      string               `bson:"category"`
	Price         primitive.Decimal128 `bson:"price"`
	Quantity      int                  `bson:"quantity"`
	LineTotal     primitive.Decimal128 `bson:"line_total"`
	ShortQuantity int                  `bson:"short_quantity,omitempty"`
}

type statusEntryDoc struct {
	Status    string    `bson:"status"`
	Timestamp time.Time `bson:"timestamp"`
	ActorID   string    `bson:"actor_id,omitempty"`
	Notes     string    `bson:"notes,omitempty"`
}

type saleDoc struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty"`
	SaleNumber         string               `bson:"sale_number"`
	Items              []saleItemDoc        `bson:"items"`
	Subtotal           primitive.Decimal128 `bson:"subtotal"`
	TaxRate            primitive.Decimal128 `bson:"tax_rate"`
	Tax                primitive.Decimal128 `bson:"tax"`
	DiscountRate       primitive.Decimal128 `bson:"discount_rate"`
	Discount           primitive.Decimal128 `bson:"discount"`
	Total              primitive.Decimal128 `bson:"total"`
	PaymentMethod      string               `bson:"payment_method"`
	AmountTendered     primitive.Decimal128 `bson:"amount_tendered"`
	Change             primitive.Decimal128 `bson:"change"`
	CashierID          string               `bson:"cashier_id"`
	CashierName        string               `bson:"cashier_name"`
	CustomerName       string               `bson:"customer_name,omitempty"`
	CustomerEmail      string               `bson:"customer_email,omitempty"`
	Status             string               `bson:"status"`
	PartialFulfillment bool                 `bson:"partial_fulfillment"`
	IdempotencyKey     string               `bson:"idempotency_key,omitempty"`
	StatusHistory      []statusEntryDoc     `bson:"status_history"`
	CreatedAt          time.Time            `bson:"created_at"`
	UpdatedAt          time.Time            `bson:"updated_at"`
}

func newSaleItemDocs(items []domain.SaleItem) []saleItemDoc {
	out := make([]saleItemDoc, 0, len(items))
	for _, it := range items {
		pid, _ := objectID(it.ProductID)
		out = append(out, saleItemDoc{
			ProductID:     pid,
			Name:          it.Name,
			Barcode:       it.Barcode,
			Category:      it.Category,
			Price:         toDecimal128(it.Price),
			Quantity:      it.Quantity,
			LineTotal:     toDecimal128(it.LineTotal),
			ShortQuantity: it.ShortQuantity,
		})
	}
	return out
}

func newStatusEntryDoc(e domain.SaleStatusEntry) statusEntryDoc {
	return statusEntryDoc{Status: string(e.Status), Timestamp: e.Timestamp.UTC(), ActorID: e.ActorID, Notes: e.Notes}
}

func newSaleDoc(s *domain.Sale) saleDoc {
	history := make([]statusEntryDoc, 0, len(s.StatusHistory))
	for _, e := range s.StatusHistory {
		history = append(history, newStatusEntryDoc(e))
	}
	return saleDoc{
		SaleNumber:         s.SaleNumber,
		Items:              newSaleItemDocs(s.Items),
		Subtotal:           toDecimal128(s.Subtotal),
		TaxRate:            toDecimal128(s.TaxRate),
		Tax:                toDecimal128(s.Tax),
		DiscountRate:       toDecimal128(s.DiscountRate),
		Discount:           toDecimal128(s.Discount),
		Total:              toDecimal128(s.Total),
		PaymentMethod:      string(s.PaymentMethod),
		AmountTendered:     toDecimal128(s.AmountTendered),
		Change:             toDecimal128(s.Change),
		CashierID:          s.CashierID,
		CashierName:        s.CashierName,
		CustomerName:       s.CustomerName,
		CustomerEmail:      s.CustomerEmail,
		Status:             string(s.Status),
		PartialFulfillment: s.PartialFulfillment,
		IdempotencyKey:     s.IdempotencyKey,
		StatusHistory:      history,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func (d saleDoc) toDomain() *domain.Sale {
	items := make([]domain.SaleItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, domain.SaleItem{
			ProductID:     it.ProductID.Hex(),
			Name:          it.Name,
			Barcode:       it.Barcode,
			Category:      it.Category,
			Price:         fromDecimal128(it.Price),
			Quantity:      it.Quantity,
			LineTotal:     fromDecimal128(it.LineTotal),
			ShortQuantity: it.ShortQuantity,
		})
	}
	history := make([]domain.SaleStatusEntry, 0, len(d.StatusHistory))
	for _, e := range d.StatusHistory {
		history = append(history, domain.SaleStatusEntry{
			Status:    domain.SaleStatus(e.Status),
			Timestamp: e.Timestamp.UTC(),
			ActorID:   e.ActorID,
			Notes:     e.Notes,
		})
	}
	return &domain.Sale{
		ID:                 d.ID.Hex(),
		SaleNumber:         d.SaleNumber,
		Items:              items,
		Subtotal:           fromDecimal128(d.Subtotal),
		TaxRate:            fromDecimal128(d.TaxRate),
		Tax:                fromDecimal128(d.Tax),
		DiscountRate:       fromDecimal128(d.DiscountRate),
		Discount:           fromDecimal128(d.Discount),
		Total:              fromDecimal128(d.Total),
		PaymentMethod:      domain.PaymentMethod(d.PaymentMethod),
		AmountTendered:     fromDecimal128(d.AmountTendered),
		Change:             fromDecimal128(d.Change),
		CashierID:          d.CashierID,
		CashierName:        d.CashierName,
		CustomerName:       d.CustomerName,
		CustomerEmail:      d.CustomerEmail,
		Status:             domain.SaleStatus(d.Status),
		PartialFulfillment: d.PartialFulfillment,
		IdempotencyKey:     d.IdempotencyKey,
		StatusHistory:      history,
		CreatedAt:          d.CreatedAt.UTC(),
		UpdatedAt:          d.UpdatedAt.UTC(),
	}
}

// Insert writes a new sale and returns its id. A clash on the idempotency
// index yields ErrIdempotencyKeyUsed, any other duplicate key
// ErrDuplicateSaleNumber.
func (r *SaleRepository) Insert(ctx context.Context, s *domain.Sale) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, newSaleDoc(s))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if duplicateOn(err, idempotencyIndex) {
				return "", fmt.Errorf("%w: %s", domain.ErrIdempotencyKeyUsed, s.IdempotencyKey)
			}
			return "", fmt.Errorf("%w: %s", domain.ErrDuplicateSaleNumber, s.SaleNumber)
		}
		return "", fmt.Errorf("insert sale: %w", err)
	}
	return hexID(res.InsertedID), nil
}

func (r *SaleRepository) FindByID(ctx context.Context, id string) (*domain.Sale, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrSaleNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByIdempotencyKey retrieves an existing sale that was created with the given key.
func (r *SaleRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Sale, error) {
	return r.findOne(ctx, bson.M{"idempotency_key": key})
}

func (r *SaleRepository) findOne(ctx context.Context, filter bson.M) (*domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d saleDoc
	if err := r.col.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSaleNotFound
		}
		return nil, fmt.Errorf("find sale: %w", err)
	}
	return d.toDomain(), nil
}

func (r *SaleRepository) List(ctx context.Context, f ports.ListSalesFilter) ([]*domain.Sale, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.CashierID != "" {
		filter["cashier_id"] = f.CashierID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	created := bson.M{}
	if !f.DateFrom.IsZero() {
		created["$gte"] = f.DateFrom.UTC()
	}
	if !f.DateTo.IsZero() {
		created["$lt"] = f.DateTo.UTC()
	}
	if len(created) > 0 {
		filter["created_at"] = created
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find sales: %w", err)
	}
	defer cur.Close(ctx)

	var docs []saleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode sales: %w", err)
	}
	out := make([]*domain.Sale, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}

// MarkFulfillment records per-line shortages on a sale committed under the
// clamp policy.
func (r *SaleRepository) MarkFulfillment(ctx context.Context, id string, items []domain.SaleItem) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrSaleNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"items":               newSaleItemDocs(items),
		"partial_fulfillment": true,
	}})
	if err != nil {
		return fmt.Errorf("mark fulfillment: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrSaleNotFound
	}
	return nil
}

// UpdateStatus atomically moves a sale from one status to another and
// appends a history entry. A sale no longer in from yields
// ErrInvalidTransition.
func (r *SaleRepository) UpdateStatus(ctx context.Context, id string, from, to domain.SaleStatus, entry domain.SaleStatusEntry) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrSaleNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid, "status": string(from)}
	update := bson.M{
		"$set":  bson.M{"status": string(to), "updated_at": entry.Timestamp.UTC()},
		"$push": bson.M{"status_history": newStatusEntryDoc(entry)},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("find sale: %w", err)
	}
	if n == 0 {
		return domain.ErrSaleNotFound
	}
	return domain.ErrInvalidTransition
}
