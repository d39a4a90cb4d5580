// Package main provides a CLI tool for seeding the database with demo data:
// a couple of orders with items spread across the procurement pipeline.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/types"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/allocation"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/items"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/orders"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/infrastructure/storage/postgres"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/infrastructure/storage/postgres/item_repo"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/infrastructure/storage/postgres/pedido_repo"
	"github.com/oliverlleo/SistemaCompras-sub001/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	itemsRepo := item_repo.NewRepo(txManager)
	pedidosRepo := pedido_repo.NewRepo(txManager)

	itemsService := items.NewService(itemsRepo, txManager)
	ordersService := orders.NewService(pedidosRepo, itemsRepo)
	allocationService := allocation.NewService(itemsRepo, ordersService, txManager, nil)

	if err := seedDemoData(ctx, log, itemsService, ordersService, allocationService); err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	log.Info("seeding completed")
}

func seedDemoData(
	ctx context.Context,
	log *logger.Logger,
	itemsService *items.Service,
	ordersService *orders.Service,
	allocationService *allocation.Service,
) error {
	// Order 1: partially through the pipeline.
	pedido := orders.NewPedido("Metalurgica Andrade", "industrial")
	if err := ordersService.Create(ctx, pedido); err != nil {
		return fmt.Errorf("create pedido: %w", err)
	}
	log.Infow("pedido created", "pedido_id", pedido.ID, "cliente", pedido.ClienteNome)

	// Item fully coverable from stock.
	perfil := items.NewItem(pedido.ID, types.MustQuantity("10"))
	perfil.ListaMaterial = "LM-2026-001"
	perfil.Codigo = "PRF-040"
	perfil.Descricao = "Perfil de aluminio 40x40"
	if err := itemsService.Create(ctx, perfil); err != nil {
		return fmt.Errorf("create item: %w", err)
	}

	// Item that went through an initial purchase and a partial receipt.
	chapa := items.NewItem(pedido.ID, types.MustQuantity("25"))
	chapa.ListaMaterial = "LM-2026-001"
	chapa.Codigo = "CHP-300"
	chapa.Descricao = "Chapa de aco 3mm"
	chapa.QtdeComprada = types.MustQuantity("25")
	if err := itemsService.Create(ctx, chapa); err != nil {
		return fmt.Errorf("create item: %w", err)
	}

	if _, err := itemsService.RecordReceipt(ctx, chapa.ID, types.MustQuantity("15"), items.ReceiptInicial); err != nil {
		return fmt.Errorf("record receipt: %w", err)
	}

	// Allocate: perfil fully from stock, chapa partially from received.
	result, err := allocationService.Commit(ctx, []allocation.Line{
		{ItemID: perfil.ID, QtyFromStock: types.MustQuantity("10")},
		{ItemID: chapa.ID, QtyFromReceived: types.MustQuantity("15")},
	}, "seed")
	if err != nil {
		return fmt.Errorf("commit allocation: %w", err)
	}
	log.Infow("allocation committed", "items", len(result.Items))

	// Order 2: untouched, stays Aberto.
	pedido2 := orders.NewPedido("Construtora Lima", "residencial")
	if err := ordersService.Create(ctx, pedido2); err != nil {
		return fmt.Errorf("create pedido: %w", err)
	}

	parafuso := items.NewItem(pedido2.ID, types.MustQuantity("500"))
	parafuso.ListaMaterial = "LM-2026-002"
	parafuso.Codigo = "PAR-M8"
	parafuso.Descricao = "Parafuso sextavado M8"
	if err := itemsService.Create(ctx, parafuso); err != nil {
		return fmt.Errorf("create item: %w", err)
	}

	return nil
}
