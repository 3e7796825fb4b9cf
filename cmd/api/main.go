package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/retailpos/pos-system/internal/api"
	"github.com/retailpos/pos-system/internal/core/ports"
	"github.com/retailpos/pos-system/internal/core/rbac"
	"github.com/retailpos/pos-system/internal/core/service"
	"github.com/retailpos/pos-system/internal/infrastructure/config"
	mongodb "github.com/retailpos/pos-system/internal/infrastructure/db/mongo"
	redisdb "github.com/retailpos/pos-system/internal/infrastructure/db/redis"
	"github.com/retailpos/pos-system/internal/infrastructure/events"
	httpserver "github.com/retailpos/pos-system/internal/infrastructure/http"
	"github.com/retailpos/pos-system/internal/infrastructure/pdf"
	"github.com/retailpos/pos-system/internal/infrastructure/queue"
	"github.com/retailpos/pos-system/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic("load config: " + err.Error())
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "pos-api",
		Env:     cfg.Env,
		Store:   cfg.StoreName,
	})
	log.Info().Str("port", cfg.Port).Str("stock_policy", cfg.Sales.StockPolicy).Msg("starting pos api")

	// --- MongoDB (required) ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		Timeout:     cfg.Mongo.Timeout,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection")
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongo indexes")
	}

	// --- Redis (optional) ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, using fallback sale numbers and no report cache")
		rdb = nil
	}

	var reportCache ports.ReportCache
	if rdb != nil {
		reportCache = redisdb.NewReportCache(rdb)
	}

	// --- Sale events ---
	var (
		sink     ports.SaleEventPublisher = events.NopPublisher{Log: log}
		producer *events.SalePublisher
	)
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = events.NewSalePublisher(cfg.Kafka.Brokers, cfg.Kafka.SaleTopic, log)
		if err != nil {
			log.Fatal().Err(err).Msg("kafka publisher")
		}
		sink = producer
	}
	dispatcher := queue.NewDispatcher(cfg.Sales.EventWorkers, sink, log)
	// Workers outlive the signal so Stop can drain buffered events.
	dispatcher.Start(context.WithoutCancel(ctx))

	stockPolicy, err := service.ParseStockPolicy(cfg.Sales.StockPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("stock policy")
	}

	// --- Repositories & services ---
	txRunner := mongodb.NewTxRunner(client, db)
	userRepo := mongodb.NewUserRepository(db)
	productRepo := mongodb.NewProductRepository(db)
	categoryRepo := mongodb.NewCategoryRepository(db)
	supplierRepo := mongodb.NewSupplierRepository(db)
	adjustmentRepo := mongodb.NewStockAdjustmentRepository(db)
	saleRepo := mongodb.NewSaleRepository(db)
	reportRepo := mongodb.NewReportRepository(db)

	services := api.Services{
		Auth:      service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL, log),
		Users:     service.NewUserService(txRunner, userRepo, log),
		Products:  service.NewProductService(productRepo, categoryRepo, log),
		Catalog:   service.NewCatalogService(categoryRepo, supplierRepo, log),
		Inventory: service.NewInventoryService(txRunner, adjustmentRepo, log),
		Sales: service.NewSaleService(
			txRunner,
			productRepo,
			saleRepo,
			redisdb.NewSaleSequence(rdb, log),
			dispatcher,
			stockPolicy,
			log,
		),
		Reports:  service.NewReportService(reportRepo, reportCache, cfg.Report.CacheTTL, log),
		Receipts: pdf.NewReceiptGenerator(cfg.StoreName),
	}

	e := api.NewRouter(api.RouterConfig{
		JWTSecret:         cfg.JWTSecret,
		Policy:            rbac.DefaultPolicy(),
		Log:               log,
		Services:          services,
		MetricsRegisterer: prometheus.DefaultRegisterer,
		MetricsGatherer:   prometheus.DefaultGatherer,
		Swagger:           cfg.IsDevelopment(),
	})
	srv := httpserver.NewServer(e, cfg.Port, client, rdb, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server stopped")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("event queue did not drain")
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Error().Err(err).Msg("kafka close")
		}
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect")
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close")
		}
	}
	log.Info().Msg("shutdown complete")
}
