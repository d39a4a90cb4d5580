package orders

import (
	"context"
	"fmt"

	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/id"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/items"
	"github.com/oliverlleo/SistemaCompras-sub001/pkg/logger"
)

// Service re-evaluates the aggregate order status after allocation commits.
type Service struct {
	repo  Repository
	items items.Repository
}

// NewService creates a new order service.
func NewService(repo Repository, itemsRepo items.Repository) *Service {
	return &Service{
		repo:  repo,
		items: itemsRepo,
	}
}

// GetByID retrieves an order.
func (s *Service) GetByID(ctx context.Context, pedidoID id.ID) (*Pedido, error) {
	return s.repo.GetByID(ctx, pedidoID)
}

// Create creates a new order.
func (s *Service) Create(ctx context.Context, pedido *Pedido) error {
	if err := pedido.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Create(ctx, pedido)
}

// RecalculateStatus re-reads all items of one order (fresh read, never the
// pre-commit snapshot) and marks the order Empenhado when every item is in a
// terminal allocation state. Idempotent: the write is skipped when the order
// already carries the computed status.
//
// Invoked once per distinct pedidoId touched by a commit; one commit may
// span several orders, each evaluated independently.
func (s *Service) RecalculateStatus(ctx context.Context, pedidoID id.ID) (Status, error) {
	pedido, err := s.repo.GetByID(ctx, pedidoID)
	if err != nil {
		return "", fmt.Errorf("get pedido: %w", err)
	}

	siblings, err := s.items.ListByPedido(ctx, pedidoID)
	if err != nil {
		return "", fmt.Errorf("list pedido items: %w", err)
	}

	if !allTerminal(siblings) {
		return pedido.StatusPedido, nil
	}

	if pedido.StatusPedido == StatusEmpenhado {
		return StatusEmpenhado, nil
	}

	if err := s.repo.UpdateStatus(ctx, pedidoID, StatusEmpenhado); err != nil {
		return "", fmt.Errorf("update pedido status: %w", err)
	}

	logger.Info(ctx, "pedido fully allocated",
		"pedido_id", pedidoID,
		"items", len(siblings),
	)

	return StatusEmpenhado, nil
}

// allTerminal reports whether every item reached a terminal allocation
// state. An order with no items is never considered fully allocated.
func allTerminal(group []*items.Item) bool {
	if len(group) == 0 {
		return false
	}
	for _, it := range group {
		switch it.StatusItem {
		case items.StatusEmpenhado, items.StatusSeparadoParaProducao:
		default:
			return false
		}
	}
	return true
}
