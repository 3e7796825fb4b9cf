package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes every collection relies on. Unique
// indexes back the duplicate checks in the repositories.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	specs := map[string][]mongo.IndexModel{
		collectionUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "state", Value: 1}, {Key: "role", Value: 1}}},
		},
		collectionProducts: {
			{Keys: bson.D{{Key: "barcode", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "state", Value: 1}, {Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		collectionSales: {
			{Keys: bson.D{{Key: "sale_number", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "idempotency_key", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true).SetName(idempotencyIndex)},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "cashier_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		collectionCategories: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collectionSuppliers: {
			{Keys: bson.D{{Key: "state", Value: 1}, {Key: "name", Value: 1}}},
		},
		collectionAdjustments: {
			{Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
