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
	collectionCategories  = "categories"
	collectionSuppliers   = "suppliers"
	collectionAdjustments = "stock_adjustments"
)

var (
	_ ports.CategoryRepository        = (*CategoryRepository)(nil)
	_ ports.SupplierRepository        = (*SupplierRepository)(nil)
	_ ports.StockAdjustmentRepository = (*StockAdjustmentRepository)(nil)
)

type CategoryRepository struct {
	col *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{col: db.Collection(collectionCategories)}
}

type categoryDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	State       string             `bson:"state"`
	CreatedBy   string             `bson:"created_by,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, categoryDoc{
		Name:        c.Name,
		Description: c.Description,
		State:       string(c.State),
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrCategoryExists
		}
		return fmt.Errorf("insert category: %w", err)
	}
	c.ID = hexID(res.InsertedID)
	return nil
}

func (r *CategoryRepository) ListActiveNames(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	vals, err := r.col.Distinct(ctx, "name", activeFilter())
	if err != nil {
		return nil, fmt.Errorf("distinct category names: %w", err)
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

type SupplierRepository struct {
	col *mongo.Collection
}

func NewSupplierRepository(db *mongo.Database) *SupplierRepository {
	return &SupplierRepository{col: db.Collection(collectionSuppliers)}
}

type supplierDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	ContactPerson string             `bson:"contact_person"`
	Email         string             `bson:"email,omitempty"`
	Phone         string             `bson:"phone"`
	Address       string             `bson:"address,omitempty"`
	City          string             `bson:"city,omitempty"`
	Country       string             `bson:"country,omitempty"`
	State         string             `bson:"state"`
	CreatedBy     string             `bson:"created_by,omitempty"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func (d supplierDoc) toDomain() *domain.Supplier {
	return &domain.Supplier{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		ContactPerson: d.ContactPerson,
		Email:         d.Email,
		Phone:         d.Phone,
		Address:       d.Address,
		City:          d.City,
		Country:       d.Country,
		State:         domain.LifecycleState(d.State),
		CreatedBy:     d.CreatedBy,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}

func (r *SupplierRepository) Create(ctx context.Context, s *domain.Supplier) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, supplierDoc{
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Email:         s.Email,
		Phone:         s.Phone,
		Address:       s.Address,
		City:          s.City,
		Country:       s.Country,
		State:         string(s.State),
		CreatedBy:     s.CreatedBy,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert supplier: %w", err)
	}
	s.ID = hexID(res.InsertedID)
	return nil
}

func (r *SupplierRepository) FindByID(ctx context.Context, id string) (*domain.Supplier, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrSupplierNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d supplierDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSupplierNotFound
		}
		return nil, fmt.Errorf("find supplier: %w", err)
	}
	return d.toDomain(), nil
}

func (r *SupplierRepository) ListActive(ctx context.Context) ([]*domain.Supplier, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, activeFilter(), options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find suppliers: %w", err)
	}
	defer cur.Close(ctx)

	var docs []supplierDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode suppliers: %w", err)
	}
	out := make([]*domain.Supplier, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *SupplierRepository) Update(ctx context.Context, id string, upd ports.SupplierUpdate) (*domain.Supplier, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrSupplierNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	for field, v := range map[string]*string{
		"name":           upd.Name,
		"contact_person": upd.ContactPerson,
		"email":          upd.Email,
		"phone":          upd.Phone,
		"address":        upd.Address,
		"city":           upd.City,
		"country":        upd.Country,
	} {
		if v != nil {
			set[field] = *v
		}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := activeFilter()
	filter["_id"] = oid

	var d supplierDoc
	err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrSupplierNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update supplier: %w", err)
	}
	return d.toDomain(), nil
}

func (r *SupplierRepository) Archive(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrSupplierNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"state":      string(domain.StateArchived),
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("archive supplier: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrSupplierNotFound
	}
	return nil
}

// StockAdjustmentRepository keeps the audit trail of manual stock changes.
type StockAdjustmentRepository struct {
	col *mongo.Collection
}

func NewStockAdjustmentRepository(db *mongo.Database) *StockAdjustmentRepository {
	return &StockAdjustmentRepository{col: db.Collection(collectionAdjustments)}
}

type adjustmentDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	ProductID      primitive.ObjectID `bson:"product_id"`
	ProductName    string             `bson:"product_name"`
	Type           string             `bson:"adjustment_type"`
	Quantity       int                `bson:"quantity"`
	Reason         string             `bson:"reason"`
	PreviousStock  int                `bson:"previous_stock"`
	NewStock       int                `bson:"new_stock"`
	AdjustedBy     string             `bson:"adjusted_by"`
	AdjustedByName string             `bson:"adjusted_by_name"`
	CreatedAt      time.Time          `bson:"created_at"`
}

func (r *StockAdjustmentRepository) Insert(ctx context.Context, a *domain.StockAdjustment) error {
	pid, _ := objectID(a.ProductID)

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, adjustmentDoc{
		ProductID:      pid,
		ProductName:    a.ProductName,
		Type:           string(a.Type),
		Quantity:       a.Quantity,
		Reason:         a.Reason,
		PreviousStock:  a.PreviousStock,
		NewStock:       a.NewStock,
		AdjustedBy:     a.AdjustedBy,
		AdjustedByName: a.AdjustedByName,
		CreatedAt:      a.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert adjustment: %w", err)
	}
	a.ID = hexID(res.InsertedID)
	return nil
}

// ListByProduct returns the latest adjustments, for every product when
// productID is empty.
func (r *StockAdjustmentRepository) ListByProduct(ctx context.Context, productID string, limit int) ([]*domain.StockAdjustment, error) {
	filter := bson.M{}
	if productID != "" {
		oid, ok := objectID(productID)
		if !ok {
			return []*domain.StockAdjustment{}, nil
		}
		filter["product_id"] = oid
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find adjustments: %w", err)
	}
	defer cur.Close(ctx)

	var docs []adjustmentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode adjustments: %w", err)
	}
	out := make([]*domain.StockAdjustment, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.StockAdjustment{
			ID:             d.ID.Hex(),
			ProductID:      d.ProductID.Hex(),
			ProductName:    d.ProductName,
			Type:           domain.AdjustmentType(d.Type),
			Quantity:       d.Quantity,
			Reason:         d.Reason,
			PreviousStock:  d.PreviousStock,
			NewStock:       d.NewStock,
			AdjustedBy:     d.AdjustedBy,
			AdjustedByName: d.AdjustedByName,
			CreatedAt:      d.CreatedAt.UTC(),
		})
	}
	return out, nil
}
