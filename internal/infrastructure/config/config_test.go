package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "pos_system", cfg.Mongo.Database)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "reject", cfg.Sales.StockPolicy)
	assert.Equal(t, 4, cfg.Sales.EventWorkers)
	assert.Equal(t, time.Minute, cfg.Report.CacheTTL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":           "production",
		"JWT_SECRET":    "s3cr3t",
		"KAFKA_BROKERS": "k1:9092,k2:9092",
		"STOCK_POLICY":  "clamp",
		"MONGO_TIMEOUT": "3s",
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "clamp", cfg.Sales.StockPolicy)
	assert.Equal(t, 3*time.Second, cfg.Mongo.Timeout)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_ProductionNeedsSecret(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{"ENV": "production"}))
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_RejectsUnknownStockPolicy(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{"STOCK_POLICY": "oversell"}))
	assert.ErrorContains(t, err, "STOCK_POLICY")
}
