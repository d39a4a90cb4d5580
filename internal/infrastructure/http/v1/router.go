// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/allocation"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/fulfillment"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/items"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/orders"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/infrastructure/http/v1/handlers"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/infrastructure/http/v1/middleware"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/infrastructure/storage/postgres"
	"github.com/oliverlleo/SistemaCompras-sub001/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	ItemsService       *items.Service
	OrdersService      *orders.Service
	AllocationService  *allocation.Service
	FulfillmentService *fulfillment.Service
	AuditService       *postgres.AuditService
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.OperatorContext())
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()
	itemsHandler := handlers.NewItemsHandler(base, cfg.ItemsService)
	ordersHandler := handlers.NewOrdersHandler(base, cfg.OrdersService, cfg.ItemsService)
	allocationsHandler := handlers.NewAllocationsHandler(base, cfg.AllocationService)
	fulfillmentHandler := handlers.NewFulfillmentHandler(base, cfg.FulfillmentService)

	v1 := router.Group("/api/v1")
	{
		itemsGroup := v1.Group("/items")
		{
			itemsGroup.POST("", itemsHandler.Create)
			itemsGroup.GET("", itemsHandler.List)
			itemsGroup.POST("/search", itemsHandler.Search)
			itemsGroup.GET("/:id", itemsHandler.Get)
			itemsGroup.GET("/:id/balance", itemsHandler.GetBalance)
			itemsGroup.POST("/:id/receipts", itemsHandler.RecordReceipt)
			itemsGroup.POST("/:id/final-purchases", itemsHandler.RecordFinalPurchase)
		}

		if cfg.AuditService != nil {
			auditHandler := handlers.NewAuditHandler(base, cfg.AuditService)
			v1.GET("/items/:id/audit", auditHandler.ItemHistory)
		}

		pedidosGroup := v1.Group("/pedidos")
		{
			pedidosGroup.POST("", ordersHandler.Create)
			pedidosGroup.GET("/:id", ordersHandler.Get)
		}

		v1.POST("/allocations", allocationsHandler.Commit)

		v1.GET("/material-lists/:lista/status", fulfillmentHandler.MaterialListStatus)
	}

	return router
}
