package items

import (
	"context"
	"fmt"

	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/apperror"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/id"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/tx"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/types"
	"github.com/oliverlleo/SistemaCompras-sub001/pkg/logger"
)

// Service provides item operations outside the allocation commit: ingestion,
// balance queries and the event write paths that fill the receipt and
// final-purchase logs.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new item service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// Create ingests a new item.
func (s *Service) Create(ctx context.Context, item *Item) error {
	if err := item.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	logger.Info(ctx, "item created", "item_id", item.ID, "pedido_id", item.PedidoID)
	return nil
}

// GetByID retrieves an item with its logs.
func (s *Service) GetByID(ctx context.Context, itemID id.ID) (*Item, error) {
	return s.repo.GetByID(ctx, itemID)
}

// List retrieves items with filtering.
func (s *Service) List(ctx context.Context, f ListFilter) ([]*Item, error) {
	return s.repo.List(ctx, f)
}

// GetBalance computes the item's balance and the planner suggestion from a
// snapshot read. The suggestion prefills the allocation form; the commit
// re-validates against a fresh locked read.
func (s *Service) GetBalance(ctx context.Context, itemID id.ID) (*Item, Balance, Suggestion, error) {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, Balance{}, Suggestion{}, err
	}

	bal := CalculateBalance(item)
	return item, bal, SuggestAllocation(item, bal), nil
}

// RecordReceipt appends a receipt event to the item's log.
func (s *Service) RecordReceipt(ctx context.Context, itemID id.ID, qtde types.Quantity, tipo ReceiptType) (*ReceiptEvent, error) {
	if !qtde.IsPositive() {
		return nil, apperror.NewValidation("receipt quantity must be positive").
			WithDetail("field", "qtde")
	}
	if !tipo.Valid() {
		return nil, apperror.NewValidation("unknown receipt type").
			WithDetail("field", "tipoRecebimento").
			WithDetail("value", string(tipo))
	}

	var event ReceiptEvent
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.repo.GetByIDsForUpdate(ctx, []id.ID{itemID})
		if err != nil {
			return err
		}

		event = NewReceiptEvent(locked[0].ID, qtde, tipo)
		if err := s.repo.AppendReceiptEvents(ctx, []ReceiptEvent{event}); err != nil {
			return fmt.Errorf("append receipt event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "receipt recorded",
		"item_id", itemID,
		"qtde", qtde,
		"tipo", tipo,
	)
	return &event, nil
}

// RecordFinalPurchase appends a final-purchase event. When the accumulated
// final purchases cover the item's final-stage need, the
// compraFinalConcluida flag is set in the same transaction.
func (s *Service) RecordFinalPurchase(ctx context.Context, itemID id.ID, qtde types.Quantity, fornecedor string) (*FinalPurchaseEvent, error) {
	if !qtde.IsPositive() {
		return nil, apperror.NewValidation("purchase quantity must be positive").
			WithDetail("field", "qtdeComprada")
	}

	var event FinalPurchaseEvent
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.repo.GetByIDsForUpdate(ctx, []id.ID{itemID})
		if err != nil {
			return err
		}
		item := locked[0]

		event = NewFinalPurchaseEvent(item.ID, qtde, fornecedor)
		if err := s.repo.AppendFinalPurchaseEvents(ctx, []FinalPurchaseEvent{event}); err != nil {
			return fmt.Errorf("append final purchase event: %w", err)
		}

		purchased := SumFinalPurchases(item.HistoricoCompraFinal).Add(qtde)
		concluida := item.QtdItemNecFinal.IsPositive() &&
			purchased.GreaterThanOrEqual(item.QtdItemNecFinal)
		if concluida && !item.CompraFinalConcluida {
			if err := s.repo.SetFinalPurchaseFlags(ctx, item.ID, item.PrecisaCompraFinal, true); err != nil {
				return fmt.Errorf("update final purchase flags: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "final purchase recorded",
		"item_id", itemID,
		"qtde", qtde,
		"fornecedor", fornecedor,
	)
	return &event, nil
}
