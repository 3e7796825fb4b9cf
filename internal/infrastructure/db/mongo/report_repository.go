package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/retailpos/pos-system/internal/core/domain"
	"github.com/retailpos/pos-system/internal/core/ports"
)

var _ ports.ReportRepository = (*ReportRepository)(nil)

// ReportRepository runs read-only aggregations. Only completed sales count
// towards revenue.
type ReportRepository struct {
	sales    *mongo.Collection
	products *mongo.Collection
	users    *mongo.Collection
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{
		sales:    db.Collection(collectionSales),
		products: db.Collection(collectionProducts),
		users:    db.Collection(collectionUsers),
	}
}

var decimalZero = toDecimal128(decimal.Zero)

func completedBetween(from, to time.Time) bson.D {
	match := bson.D{{Key: "status", Value: string(domain.SaleCompleted)}}
	if !from.IsZero() || !to.IsZero() {
		created := bson.D{}
		if !from.IsZero() {
			created = append(created, bson.E{Key: "$gte", Value: from.UTC()})
		}
		if !to.IsZero() {
			created = append(created, bson.E{Key: "$lt", Value: to.UTC()})
		}
		match = append(match, bson.E{Key: "created_at", Value: created})
	}
	return match
}

func sumWhenPayment(method domain.PaymentMethod) bson.D {
	return bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$eq", Value: bson.A{"$payment_method", string(method)}}},
		"$total",
		decimalZero,
	}}}}}
}

type summaryRow struct {
	Total   primitive.Decimal128 `bson:"total"`
	Count   int64                `bson:"count"`
	Cash    primitive.Decimal128 `bson:"cash"`
	Card    primitive.Decimal128 `bson:"card"`
	Digital primitive.Decimal128 `bson:"digital"`
}

func (r *ReportRepository) SalesSummary(ctx context.Context, from, to time.Time) (*ports.DailySummary, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: completedBetween(from, to)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$total"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "cash", Value: sumWhenPayment(domain.PaymentCash)},
			{Key: "card", Value: sumWhenPayment(domain.PaymentCard)},
			{Key: "digital", Value: sumWhenPayment(domain.PaymentDigital)},
		}}},
	}

	var rows []summaryRow
	if err := r.aggregate(ctx, r.sales, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("sales summary: %w", err)
	}

	out := &ports.DailySummary{
		Date:               from,
		TotalSales:         decimal.Zero,
		AverageTransaction: decimal.Zero,
		CashSales:          decimal.Zero,
		CardSales:          decimal.Zero,
		DigitalSales:       decimal.Zero,
	}
	if len(rows) == 0 {
		return out, nil
	}

	row := rows[0]
	out.TotalSales = fromDecimal128(row.Total)
	out.TotalTransactions = row.Count
	out.CashSales = fromDecimal128(row.Cash)
	out.CardSales = fromDecimal128(row.Card)
	out.DigitalSales = fromDecimal128(row.Digital)
	if row.Count > 0 {
		out.AverageTransaction = out.TotalSales.Div(decimal.NewFromInt(row.Count)).Round(2)
	}
	return out, nil
}

type topProductRow struct {
	Name     string               `bson:"name"`
	Quantity int64                `bson:"quantity"`
	Revenue  primitive.Decimal128 `bson:"revenue"`
}

func (r *ReportRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ports.TopProduct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: completedBetween(from, to)}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$items.product_id"},
			{Key: "name", Value: bson.D{{Key: "$first", Value: "$items.name"}}},
			{Key: "quantity", Value: bson.D{{Key: "$sum", Value: "$items.quantity"}}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$items.line_total"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "quantity", Value: -1}, {Key: "name", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}

	var rows []topProductRow
	if err := r.aggregate(ctx, r.sales, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}

	out := make([]ports.TopProduct, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.TopProduct{
			Name:     row.Name,
			Quantity: row.Quantity,
			Revenue:  fromDecimal128(row.Revenue),
		})
	}
	return out, nil
}

func (r *ReportRepository) DashboardStats(ctx context.Context, now time.Time) (*ports.DashboardStats, error) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	all, err := r.SalesSummary(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	day, err := r.SalesSummary(ctx, today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	monthly, err := r.SalesSummary(ctx, month, month.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	stats := &ports.DashboardStats{
		TotalSales:  all.TotalSales,
		TotalOrders: all.TotalTransactions,
		TodaySales:  day.TotalSales,
		MonthSales:  monthly.TotalSales,
	}

	if stats.TotalProducts, err = r.products.CountDocuments(ctx, activeFilter()); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	low := activeFilter()
	low["$expr"] = bson.M{"$lte": bson.A{"$quantity_in_stock", "$min_stock_level"}}
	if stats.LowStockCount, err = r.products.CountDocuments(ctx, low); err != nil {
		return nil, fmt.Errorf("count low stock: %w", err)
	}

	out := activeFilter()
	out["quantity_in_stock"] = bson.M{"$lte": 0}
	if stats.OutOfStockCount, err = r.products.CountDocuments(ctx, out); err != nil {
		return nil, fmt.Errorf("count out of stock: %w", err)
	}

	if stats.TotalUsers, err = r.users.CountDocuments(ctx, activeFilter()); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	return stats, nil
}

func (r *ReportRepository) aggregate(ctx context.Context, col *mongo.Collection, pipeline mongo.Pipeline, out any) error {
	cur, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	return cur.All(ctx, out)
}
