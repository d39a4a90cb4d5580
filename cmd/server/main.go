// Package main is the entry point for the SistemaCompras API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/allocation"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/fulfillment"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/items"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/orders"
	v1 "github.com/oliverlleo/SistemaCompras-sub001/internal/infrastructure/http/v1"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/infrastructure/storage/postgres"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/infrastructure/storage/postgres/item_repo"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/infrastructure/storage/postgres/pedido_repo"
	"github.com/oliverlleo/SistemaCompras-sub001/pkg/logger"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting sistemacompras server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	itemsRepo := item_repo.NewRepo(txManager)
	pedidosRepo := pedido_repo.NewRepo(txManager)

	// --- Audit ---
	var auditService *postgres.AuditService
	var auditor allocation.Auditor
	if cfg.AuditEnabled {
		auditService, err = postgres.NewAuditService(txManager)
		if err != nil {
			log.Fatalw("failed to initialize audit service", "error", err)
		}
		auditor = auditService
		log.Info("audit trail enabled")
	}

	// --- Services ---
	itemsService := items.NewService(itemsRepo, txManager)
	ordersService := orders.NewService(pedidosRepo, itemsRepo)
	allocationService := allocation.NewService(itemsRepo, ordersService, txManager, auditor)
	fulfillmentService := fulfillment.NewService(itemsRepo)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:               pool,
		Logger:             log,
		ItemsService:       itemsService,
		OrdersService:      ordersService,
		AllocationService:  allocationService,
		FulfillmentService: fulfillmentService,
		AuditService:       auditService,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
		IdleTimeout:  cfg.AppIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "addr", cfg.AppAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
