package item_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/id"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/items"
)

const (
	tableAllocationEvents    = "item_empenho_events"
	tableReceiptEvents       = "item_recebimento_events"
	tableFinalPurchaseEvents = "item_compra_final_events"
)

// AppendAllocationEvents appends immutable allocation events via COPY.
// Must run inside the commit transaction.
func (r *Repo) AppendAllocationEvents(ctx context.Context, events []items.AllocationEvent) error {
	if len(events) == 0 {
		return nil
	}

	columns := []string{"id", "item_id", "qtde_empenhada_do_estoque", "qtde_empenhada_do_recebido", "data_empenho", "responsavel"}
	rows := make([][]any, 0, len(events))
	for _, e := range events {
		rows = append(rows, []any{
			e.ID, e.ItemID, e.QtdeEmpenhadaDoEstoque, e.QtdeEmpenhadaDoRecebido, e.DataEmpenho, e.Responsavel,
		})
	}

	if _, err := r.batch.CopyFromSlice(ctx, tableAllocationEvents, columns, rows); err != nil {
		return fmt.Errorf("append allocation events: %w", err)
	}

	return nil
}

// AppendReceiptEvents appends immutable receipt events via COPY.
func (r *Repo) AppendReceiptEvents(ctx context.Context, events []items.ReceiptEvent) error {
	if len(events) == 0 {
		return nil
	}

	columns := []string{"id", "item_id", "qtde", "data_recebimento", "tipo_recebimento"}
	rows := make([][]any, 0, len(events))
	for _, e := range events {
		rows = append(rows, []any{
			e.ID, e.ItemID, e.Qtde, e.DataRecebimento, e.TipoRecebimento,
		})
	}

	if _, err := r.batch.CopyFromSlice(ctx, tableReceiptEvents, columns, rows); err != nil {
		return fmt.Errorf("append receipt events: %w", err)
	}

	return nil
}

// AppendFinalPurchaseEvents appends immutable final-purchase events via COPY.
func (r *Repo) AppendFinalPurchaseEvents(ctx context.Context, events []items.FinalPurchaseEvent) error {
	if len(events) == 0 {
		return nil
	}

	columns := []string{"id", "item_id", "qtde_comprada", "data_compra", "fornecedor"}
	rows := make([][]any, 0, len(events))
	for _, e := range events {
		rows = append(rows, []any{
			e.ID, e.ItemID, e.QtdeComprada, e.DataCompra, e.Fornecedor,
		})
	}

	if _, err := r.batch.CopyFromSlice(ctx, tableFinalPurchaseEvents, columns, rows); err != nil {
		return fmt.Errorf("append final purchase events: %w", err)
	}

	return nil
}

// loadLogs hydrates the three event logs of every item in one query per
// table. A missing log stays an empty slice.
func (r *Repo) loadLogs(ctx context.Context, list []*items.Item) error {
	if len(list) == 0 {
		return nil
	}

	byID := make(map[id.ID]*items.Item, len(list))
	ids := make([]id.ID, 0, len(list))
	for _, it := range list {
		byID[it.ID] = it
		ids = append(ids, it.ID)
	}

	querier := r.txManager.GetQuerier(ctx)

	// Allocation events, append order.
	{
		q := r.Builder().
			Select("id", "item_id", "qtde_empenhada_do_estoque", "qtde_empenhada_do_recebido", "data_empenho", "responsavel").
			From(tableAllocationEvents).
			Where(squirrel.Eq{"item_id": ids}).
			OrderBy("data_empenho ASC", "id ASC")

		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build allocation events query: %w", err)
		}

		var events []items.AllocationEvent
		if err := pgxscan.Select(ctx, querier, &events, sql, args...); err != nil {
			return fmt.Errorf("load allocation events: %w", err)
		}
		for _, e := range events {
			if it, ok := byID[e.ItemID]; ok {
				it.HistoricoEmpenhos = append(it.HistoricoEmpenhos, e)
			}
		}
	}

	// Receipt events.
	{
		q := r.Builder().
			Select("id", "item_id", "qtde", "data_recebimento", "tipo_recebimento").
			From(tableReceiptEvents).
			Where(squirrel.Eq{"item_id": ids}).
			OrderBy("data_recebimento ASC", "id ASC")

		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build receipt events query: %w", err)
		}

		var events []items.ReceiptEvent
		if err := pgxscan.Select(ctx, querier, &events, sql, args...); err != nil {
			return fmt.Errorf("load receipt events: %w", err)
		}
		for _, e := range events {
			if it, ok := byID[e.ItemID]; ok {
				it.HistoricoRecebimentos = append(it.HistoricoRecebimentos, e)
			}
		}
	}

	// Final-purchase events.
	{
		q := r.Builder().
			Select("id", "item_id", "qtde_comprada", "data_compra", "fornecedor").
			From(tableFinalPurchaseEvents).
			Where(squirrel.Eq{"item_id": ids}).
			OrderBy("data_compra ASC", "id ASC")

		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build final purchase events query: %w", err)
		}

		var events []items.FinalPurchaseEvent
		if err := pgxscan.Select(ctx, querier, &events, sql, args...); err != nil {
			return fmt.Errorf("load final purchase events: %w", err)
		}
		for _, e := range events {
			if it, ok := byID[e.ItemID]; ok {
				it.HistoricoCompraFinal = append(it.HistoricoCompraFinal, e)
			}
		}
	}

	return nil
}
