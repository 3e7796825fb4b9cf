package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/retailpos/pos-system/docs"
	"github.com/retailpos/pos-system/internal/api/handler"
	"github.com/retailpos/pos-system/internal/api/middleware"
	"github.com/retailpos/pos-system/internal/core/ports"
	"github.com/retailpos/pos-system/internal/core/rbac"
)

// Services are the use cases the HTTP layer exposes.
type Services struct {
	Auth      ports.AuthService
	Users     ports.UserService
	Products  ports.ProductService
	Catalog   ports.CatalogService
	Inventory ports.InventoryService
	Sales     ports.SaleService
	Reports   ports.ReportService
	Receipts  ports.ReceiptRenderer
}

// RouterConfig carries everything NewRouter needs.
type RouterConfig struct {
	JWTSecret string
	Policy    *rbac.Policy
	Log       zerolog.Logger
	Services  Services
	// MetricsRegisterer enables HTTP instrumentation and GET /metrics, served
	// from MetricsGatherer. Nil disables both.
	MetricsRegisterer prometheus.Registerer
	MetricsGatherer   prometheus.Gatherer
	// Swagger serves the API docs at /swagger/*.
	Swagger bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(cfg.Log))
	if cfg.MetricsRegisterer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "pos",
			Registerer: cfg.MetricsRegisterer,
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: cfg.MetricsGatherer,
		}))
	}
	if cfg.Swagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	svc := cfg.Services
	policy := cfg.Policy
	can := func(c rbac.Capability) echo.MiddlewareFunc { return middleware.RequirePermission(policy, c) }
	canAny := func(cs ...rbac.Capability) echo.MiddlewareFunc { return middleware.RequireAny(policy, cs...) }

	authHandler := handler.NewAuthHandler(svc.Auth, svc.Users, policy)
	productHandler := handler.NewProductHandler(svc.Products)
	catalogHandler := handler.NewCatalogHandler(svc.Products, svc.Catalog)
	inventoryHandler := handler.NewInventoryHandler(svc.Inventory)
	saleHandler := handler.NewSaleHandler(svc.Sales, svc.Receipts)
	reportHandler := handler.NewReportHandler(svc.Reports)
	userHandler := handler.NewUserHandler(svc.Users)

	v1 := e.Group("/v1")

	// --- Auth routes ---
	v1.POST("/auth/login", authHandler.Login)

	// Everything below requires a valid bearer token.
	secured := v1.Group("", middleware.Auth(cfg.JWTSecret))
	secured.GET("/auth/me", authHandler.Me)

	// --- Products ---
	secured.GET("/products", productHandler.List, canAny(rbac.ProductsView, rbac.POSAccess))
	secured.GET("/products/low-stock", productHandler.LowStock, can(rbac.InventoryView))
	secured.GET("/products/:id", productHandler.Get, canAny(rbac.ProductsView, rbac.POSAccess))
	secured.POST("/products", productHandler.Create, can(rbac.ProductsCreate))
	secured.PUT("/products/:id", productHandler.Update, can(rbac.ProductsUpdate))
	secured.DELETE("/products/:id", productHandler.Delete, can(rbac.ProductsDelete))

	// --- Categories & suppliers ---
	secured.GET("/categories", catalogHandler.ListCategories, canAny(rbac.ProductsView, rbac.POSAccess))
	secured.POST("/categories", catalogHandler.CreateCategory, can(rbac.ProductsCreate))
	secured.GET("/suppliers", catalogHandler.ListSuppliers, can(rbac.SuppliersView))
	secured.GET("/suppliers/:id", catalogHandler.GetSupplier, can(rbac.SuppliersView))
	secured.POST("/suppliers", catalogHandler.CreateSupplier, can(rbac.SuppliersCreate))
	secured.PUT("/suppliers/:id", catalogHandler.UpdateSupplier, can(rbac.SuppliersUpdate))
	secured.DELETE("/suppliers/:id", catalogHandler.DeleteSupplier, can(rbac.SuppliersDelete))

	// --- Inventory ---
	secured.POST("/inventory/adjustments", inventoryHandler.Adjust, can(rbac.InventoryUpdate))
	secured.GET("/inventory/adjustments", inventoryHandler.History, can(rbac.InventoryView))

	// --- Sales ---
	secured.POST("/sales", saleHandler.Create, can(rbac.POSAccess))
	secured.GET("/sales", saleHandler.List, canAny(rbac.SalesView, rbac.ReportsView))
	secured.GET("/sales/:id", saleHandler.Get, canAny(rbac.SalesView, rbac.ReportsView))
	secured.GET("/sales/:id/receipt", saleHandler.Receipt, canAny(rbac.SalesView, rbac.ReportsView))
	secured.POST("/sales/:id/refund", saleHandler.Refund, can(rbac.SalesRefund))
	secured.POST("/sales/:id/cancel", saleHandler.Cancel, can(rbac.SalesRefund))

	// --- Reports ---
	secured.GET("/reports/daily", reportHandler.Daily, can(rbac.ReportsView))
	secured.GET("/reports/top-products", reportHandler.TopProducts, can(rbac.ReportsView))
	secured.GET("/dashboard/stats", reportHandler.Dashboard, can(rbac.DashboardView))

	// --- Users ---
	secured.GET("/users", userHandler.List, can(rbac.UsersView))
	secured.GET("/users/:id", userHandler.Get, can(rbac.UsersView))
	secured.POST("/users", userHandler.Create, can(rbac.UsersCreate))
	secured.PUT("/users/:id", userHandler.Update, can(rbac.UsersUpdate))
	secured.DELETE("/users/:id", userHandler.Delete, can(rbac.UsersDelete))

	return e
}
