package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/retailpos/pos-system/internal/core/domain"
	"github.com/retailpos/pos-system/internal/core/ports"
)

const collectionProducts = "products"

var _ ports.ProductRepository = (*ProductRepository)(nil)

type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(collectionProducts)}
}

type productDoc struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty"`
	Name            string               `bson:"name"`
	Barcode         string               `bson:"barcode"`
	Category        string               `bson:"category"`
	Description     string               `bson:"description,omitempty"`
	CostPrice       primitive.Decimal128 `bson:"cost_price"`
	SellingPrice    primitive.Decimal128 `bson:"selling_price"`
	QuantityInStock int                  `bson:"quantity_in_stock"`
	MinStockLevel   int                  `bson:"min_stock_level"`
	MaxStockLevel   int                  `bson:"max_stock_level"`
	Supplier        string               `bson:"supplier,omitempty"`
	State           string               `bson:"state"`
	CreatedBy       string               `bson:"created_by,omitempty"`
	CreatedAt       time.Time            `bson:"created_at"`
	UpdatedAt       time.Time            `bson:"updated_at"`
}

func newProductDoc(p *domain.Product) productDoc {
	return productDoc{
		Name:            p.Name,
		Barcode:         p.Barcode,
		Category:        p.Category,
		Description:     p.Description,
		CostPrice:       toDecimal128(p.CostPrice),
		SellingPrice:    toDecimal128(p.SellingPrice),
		QuantityInStock: p.QuantityInStock,
		MinStockLevel:   p.MinStockLevel,
		MaxStockLevel:   p.MaxStockLevel,
		Supplier:        p.Supplier,
		State:           string(p.State),
		CreatedBy:       p.CreatedBy,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (d productDoc) toDomain() *domain.Product {
	return &domain.Product{
		ID:              d.ID.Hex(),
		Name:            d.Name,
		Barcode:         d.Barcode,
		Category:        d.Category,
		Description:     d.Description,
		CostPrice:       fromDecimal128(d.CostPrice),
		SellingPrice:    fromDecimal128(d.SellingPrice),
		QuantityInStock: d.QuantityInStock,
		MinStockLevel:   d.MinStockLevel,
		MaxStockLevel:   d.MaxStockLevel,
		Supplier:        d.Supplier,
		State:           domain.LifecycleState(d.State),
		CreatedBy:       d.CreatedBy,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
}

func activeFilter() bson.M {
	return bson.M{"state": string(domain.StateActive)}
}

// Create inserts a new product document and sets p.ID.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, newProductDoc(p))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrBarcodeExists
		}
		return fmt.Errorf("insert product: %w", err)
	}
	p.ID = hexID(res.InsertedID)
	return nil
}

// FindActiveByID returns the product only when it can be sold.
func (r *ProductRepository) FindActiveByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive() {
		return nil, domain.ErrProductInactive
	}
	return p, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d productDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return d.toDomain(), nil
}

func (r *ProductRepository) List(ctx context.Context, f ports.ListProductsFilter) ([]*domain.Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := activeFilter()
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"barcode": pattern},
			bson.M{"description": pattern},
		}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	items, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ProductRepository) ListLowStock(ctx context.Context) ([]*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := activeFilter()
	filter["$expr"] = bson.M{"$lte": bson.A{"$quantity_in_stock", "$min_stock_level"}}

	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "quantity_in_stock", Value: 1}}))
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Product, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cur.Close(ctx)

	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	out := make([]*domain.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Update applies the non-nil fields of upd to an active product. Stock is
// not part of the update set.
func (r *ProductRepository) Update(ctx context.Context, id string, upd ports.ProductUpdate) (*domain.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrProductNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Barcode != nil {
		set["barcode"] = *upd.Barcode
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.CostPrice != nil {
		set["cost_price"] = toDecimal128(upd.CostPrice.Round(2))
	}
	if upd.SellingPrice != nil {
		set["selling_price"] = toDecimal128(upd.SellingPrice.Round(2))
	}
	if upd.MinStockLevel != nil {
		set["min_stock_level"] = *upd.MinStockLevel
	}
	if upd.MaxStockLevel != nil {
		set["max_stock_level"] = *upd.MaxStockLevel
	}
	if upd.Supplier != nil {
		set["supplier"] = *upd.Supplier
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := activeFilter()
	filter["_id"] = oid

	var d productDoc
	err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&d)
	switch {
	case err == nil:
		return d.toDomain(), nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, r.missing(ctx, oid)
	case mongo.IsDuplicateKeyError(err):
		return nil, domain.ErrBarcodeExists
	default:
		return nil, fmt.Errorf("update product: %w", err)
	}
}

func (r *ProductRepository) Archive(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"state":      string(domain.StateArchived),
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("archive product: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// Categories returns the distinct categories of active products.
func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	vals, err := r.col.Distinct(ctx, "category", activeFilter())
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// DecrementStock removes qty units only if at least qty are on hand. The
// check and the write are one server-side operation.
func (r *ProductRepository) DecrementStock(ctx context.Context, id string, qty int) (domain.StockChange, error) {
	change := domain.StockChange{ProductID: id, Requested: qty}
	oid, ok := objectID(id)
	if !ok {
		return change, domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := activeFilter()
	filter["_id"] = oid
	filter["quantity_in_stock"] = bson.M{"$gte": qty}
	update := bson.M{
		"$inc": bson.M{"quantity_in_stock": -qty},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	var before productDoc
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.Before)).Decode(&before)
	if err == nil {
		change.Previous = before.QuantityInStock
		change.Applied = qty
		change.Outcome = domain.StockApplied
		return change, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return change, fmt.Errorf("decrement stock: %w", err)
	}

	// Nothing matched: the product is gone, archived or short.
	current, err := r.FindByID(ctx, id)
	if err != nil {
		return change, err
	}
	if !current.IsActive() {
		return change, domain.ErrProductInactive
	}
	change.Previous = current.QuantityInStock
	change.Outcome = domain.StockInsufficient
	return change, nil
}

// DecrementStockClamped removes up to qty units and never lets stock go
// below zero.
func (r *ProductRepository) DecrementStockClamped(ctx context.Context, id string, qty int) (domain.StockChange, error) {
	change := domain.StockChange{ProductID: id, Requested: qty}
	oid, ok := objectID(id)
	if !ok {
		return change, domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := activeFilter()
	filter["_id"] = oid
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "quantity_in_stock", Value: bson.D{{Key: "$max", Value: bson.A{
				0,
				bson.D{{Key: "$subtract", Value: bson.A{"$quantity_in_stock", qty}}},
			}}}},
			{Key: "updated_at", Value: time.Now().UTC()},
		}}},
	}

	var before productDoc
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.Before)).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return change, r.missing(ctx, oid)
	}
	if err != nil {
		return change, fmt.Errorf("decrement stock: %w", err)
	}

	change.Previous = before.QuantityInStock
	if before.QuantityInStock >= qty {
		change.Applied = qty
		change.Outcome = domain.StockApplied
	} else {
		change.Applied = max(before.QuantityInStock, 0)
		change.Outcome = domain.StockClamped
	}
	return change, nil
}

// IncrementStock adds qty units. Archived products are restocked too so
// that refunds of discontinued items balance.
func (r *ProductRepository) IncrementStock(ctx context.Context, id string, qty int) (domain.StockChange, error) {
	change := domain.StockChange{ProductID: id, Requested: qty}
	oid, ok := objectID(id)
	if !ok {
		return change, domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"quantity_in_stock": qty},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	var before productDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.Before)).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return change, domain.ErrProductNotFound
	}
	if err != nil {
		return change, fmt.Errorf("increment stock: %w", err)
	}

	change.Previous = before.QuantityInStock
	change.Applied = qty
	change.Outcome = domain.StockApplied
	return change, nil
}

// missing tells a missing product from an archived one after a filtered
// write matched nothing.
func (r *ProductRepository) missing(ctx context.Context, oid primitive.ObjectID) error {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("find product: %w", err)
	}
	if n == 0 {
		return domain.ErrProductNotFound
	}
	return domain.ErrProductInactive
}
