// Package allocation provides the allocation (empenho) commit engine:
// validated, atomic recording of allocation events with status derivation.
package allocation

import (
	"context"
	"fmt"

	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/apperror"
	appctx "github.com/oliverlleo/SistemaCompras-sub001/internal/core/context"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/id"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/tx"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/types"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/items"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/orders"
	"github.com/oliverlleo/SistemaCompras-sub001/pkg/logger"
)

// Line is one requested allocation: how much to reserve for an item from
// stock and from the received pool.
type Line struct {
	ItemID          id.ID
	QtyFromStock    types.Quantity
	QtyFromReceived types.Quantity
}

// isNoop reports whether the line requests nothing. No-op allocations are
// excluded from the commit set entirely; they are never recorded.
func (l Line) isNoop() bool {
	return l.QtyFromStock.IsZero() && l.QtyFromReceived.IsZero()
}

// ItemResult describes one item after a successful commit.
type ItemResult struct {
	ItemID  id.ID         `json:"itemId"`
	Status  items.Status  `json:"statusItem"`
	Balance items.Balance `json:"balance"`
}

// CommitResult is the outcome of a commit. AggregationWarnings carries
// order-rollup failures, which are non-fatal: the allocation itself is
// already committed and is never rolled back because of them.
type CommitResult struct {
	Items               []ItemResult `json:"items"`
	PedidosEmpenhados   []id.ID      `json:"pedidosEmpenhados"`
	AggregationWarnings []string     `json:"aggregationWarnings,omitempty"`
	Responsavel         string       `json:"responsavel"`
}

// Auditor records commit audit entries. Implementations ride the commit
// transaction via the querier in context.
type Auditor interface {
	AllocationCommitted(ctx context.Context, itemID id.ID, changes map[string]any) error
}

// Service validates and atomically records allocation commits.
//
// All event appends and status updates of one commit run inside a single
// transaction: either every line commits or none does. Requested quantities
// are re-validated against availability computed from a locked in-transaction
// read, so a stale pre-read can no longer over-allocate an item.
type Service struct {
	items     items.Repository
	orders    *orders.Service
	txManager tx.Manager
	audit     Auditor // optional
}

// NewService creates a new allocation service. audit may be nil.
func NewService(itemsRepo items.Repository, ordersSvc *orders.Service, txManager tx.Manager, audit Auditor) *Service {
	return &Service{
		items:     itemsRepo,
		orders:    ordersSvc,
		txManager: txManager,
		audit:     audit,
	}
}

// Commit records one allocation event per item and derives the new status.
// responsavel attributes the events; when empty, the operator from context
// is used.
func (s *Service) Commit(ctx context.Context, requested []Line, responsavel string) (*CommitResult, error) {
	if responsavel == "" {
		responsavel = appctx.GetOperatorName(ctx)
	}

	lines, err := normalizeLines(requested)
	if err != nil {
		return nil, err
	}

	result := &CommitResult{Responsavel: responsavel}
	touchedPedidos := make(map[id.ID]struct{})

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.items.GetByIDsForUpdate(ctx, lineIDs(lines))
		if err != nil {
			return err
		}

		byID := make(map[id.ID]*items.Item, len(locked))
		for _, it := range locked {
			byID[it.ID] = it
		}

		events := make([]items.AllocationEvent, 0, len(lines))
		for _, line := range lines {
			it, ok := byID[line.ItemID]
			if !ok {
				// Missing reference fails the whole batch; nothing is written.
				return apperror.NewNotFound("item", line.ItemID.String())
			}

			bal := items.CalculateBalance(it)
			if line.QtyFromStock.GreaterThan(bal.AvailableStock) {
				return apperror.NewInsufficientBalance(
					it.ID.String(), "estoque",
					line.QtyFromStock.String(), bal.AvailableStock.String(),
				)
			}
			if line.QtyFromReceived.GreaterThan(bal.AvailableReceived) {
				return apperror.NewInsufficientBalance(
					it.ID.String(), "recebido",
					line.QtyFromReceived.String(), bal.AvailableReceived.String(),
				)
			}

			events = append(events, items.NewAllocationEvent(
				it.ID, line.QtyFromStock, line.QtyFromReceived, responsavel,
			))
		}

		if err := s.items.AppendAllocationEvents(ctx, events); err != nil {
			return fmt.Errorf("append allocation events: %w", err)
		}

		for i, line := range lines {
			it := byID[line.ItemID]
			event := events[i]

			newTotal := items.CalculateBalance(it).TotalAllocated.
				Add(line.QtyFromStock).Add(line.QtyFromReceived)
			newStatus := items.DeriveStatus(it.StatusItem, newTotal, it.Quantidade)

			if err := s.items.UpdateStatus(ctx, it.ID, newStatus, it.Version); err != nil {
				return fmt.Errorf("update item status: %w", err)
			}

			if s.audit != nil {
				err := s.audit.AllocationCommitted(ctx, it.ID, map[string]any{
					"qtdeEmpenhadaDoEstoque":  line.QtyFromStock.String(),
					"qtdeEmpenhadaDoRecebido": line.QtyFromReceived.String(),
					"statusItem":              string(newStatus),
					"responsavel":             responsavel,
					"eventId":                 event.ID.String(),
				})
				if err != nil {
					return fmt.Errorf("audit commit: %w", err)
				}
			}

			it.HistoricoEmpenhos = append(it.HistoricoEmpenhos, event)
			it.StatusItem = newStatus
			result.Items = append(result.Items, ItemResult{
				ItemID:  it.ID,
				Status:  newStatus,
				Balance: items.CalculateBalance(it),
			})
			touchedPedidos[it.PedidoID] = struct{}{}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "allocation committed",
		"lines", len(lines),
		"pedidos", len(touchedPedidos),
		"responsavel", responsavel,
	)

	// Order aggregation runs outside the commit transaction: order status is
	// a convenience aggregate, not a source of truth. Failures are reported
	// but never roll back the committed allocation.
	for pedidoID := range touchedPedidos {
		status, err := s.orders.RecalculateStatus(ctx, pedidoID)
		if err != nil {
			logger.Warn(ctx, "order aggregation failed after commit",
				"pedido_id", pedidoID,
				"error", err,
			)
			result.AggregationWarnings = append(result.AggregationWarnings,
				fmt.Sprintf("pedido %s: %v", pedidoID, err))
			continue
		}
		if status == orders.StatusEmpenhado {
			result.PedidosEmpenhados = append(result.PedidosEmpenhados, pedidoID)
		}
	}

	return result, nil
}

// normalizeLines validates quantities, drops no-op lines and rejects
// duplicate item references.
func normalizeLines(requested []Line) ([]Line, error) {
	lines := make([]Line, 0, len(requested))
	seen := make(map[id.ID]struct{}, len(requested))

	for i, line := range requested {
		if id.IsNil(line.ItemID) {
			return nil, apperror.NewValidation("item reference is required").
				WithDetail("line", i)
		}
		if line.QtyFromStock.IsNegative() || line.QtyFromReceived.IsNegative() {
			return nil, apperror.NewValidation("allocation quantities must be non-negative").
				WithDetail("line", i).
				WithDetail("itemId", line.ItemID.String())
		}
		if line.isNoop() {
			continue
		}
		if _, dup := seen[line.ItemID]; dup {
			return nil, apperror.NewValidation("duplicate item in commit set").
				WithDetail("itemId", line.ItemID.String())
		}
		seen[line.ItemID] = struct{}{}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return nil, apperror.NewBusinessRule(apperror.CodeEmptyCommit,
			"No allocation requested: every line is zero")
	}

	return lines, nil
}

func lineIDs(lines []Line) []id.ID {
	ids := make([]id.ID, len(lines))
	for i, l := range lines {
		ids[i] = l.ItemID
	}
	return ids
}
