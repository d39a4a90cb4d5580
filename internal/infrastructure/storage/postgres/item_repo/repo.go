// Package item_repo provides the PostgreSQL implementation of the items
// repository: scalar item rows plus three append-only event tables.
package item_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/apperror"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/id"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/filter"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/items"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/infrastructure/storage/postgres"
)

const tableItems = "itens"

var itemColumns = []string{
	"id",
	"pedido_id",
	"lista_material",
	"codigo",
	"descricao",
	"quantidade",
	"qtde_comprada",
	"status_item",
	"precisa_compra_final",
	"compra_final_concluida",
	"qtd_producao",
	"qtd_item_nec_final",
	"version",
	"created_at",
	"updated_at",
}

// Compile-time check that Repo implements items.Repository.
var _ items.Repository = (*Repo)(nil)

// Repo is the PostgreSQL items repository.
type Repo struct {
	txManager *postgres.TxManager
	batch     *postgres.BatchInserter
}

// NewRepo creates a new items repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{
		txManager: txManager,
		batch:     postgres.NewBatchInserter(txManager),
	}
}

// Builder returns a squirrel builder with PostgreSQL placeholders.
func (r *Repo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *Repo) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(itemColumns...).
		From(tableItems)
}

// Create inserts a new item.
func (r *Repo) Create(ctx context.Context, item *items.Item) error {
	q := r.Builder().
		Insert(tableItems).
		Columns(itemColumns...).
		Values(
			item.ID,
			item.PedidoID,
			item.ListaMaterial,
			item.Codigo,
			item.Descricao,
			item.Quantidade,
			item.QtdeComprada,
			item.StatusItem,
			item.PrecisaCompraFinal,
			item.CompraFinalConcluida,
			item.QtdProducao,
			item.QtdItemNecFinal,
			item.Version,
			item.CreatedAt,
			item.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", tableItems, err)
	}

	return nil
}

// GetByID retrieves one item with its event logs.
func (r *Repo) GetByID(ctx context.Context, itemID id.ID) (*items.Item, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": itemID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	item := &items.Item{}
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("item", itemID.String())
		}
		return nil, fmt.Errorf("get item by id: %w", err)
	}

	if err := r.loadLogs(ctx, []*items.Item{item}); err != nil {
		return nil, err
	}

	return item, nil
}

// GetByIDsForUpdate retrieves items with row locks and logs loaded.
// Must run inside a transaction: the locks are the point.
func (r *Repo) GetByIDsForUpdate(ctx context.Context, itemIDs []id.ID) ([]*items.Item, error) {
	if r.txManager.GetTx(ctx) == nil {
		return nil, fmt.Errorf("GetByIDsForUpdate requires transaction context")
	}
	if len(itemIDs) == 0 {
		return nil, nil
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"id": itemIDs}).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var result []*items.Item
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &result, sql, args...); err != nil {
		return nil, fmt.Errorf("get items for update: %w", err)
	}

	// A missing id fails the whole batch.
	if len(result) != len(itemIDs) {
		found := make(map[id.ID]bool, len(result))
		for _, it := range result {
			found[it.ID] = true
		}
		for _, itemID := range itemIDs {
			if !found[itemID] {
				return nil, apperror.NewNotFound("item", itemID.String())
			}
		}
	}

	if err := r.loadLogs(ctx, result); err != nil {
		return nil, err
	}

	return result, nil
}

// ListByPedido retrieves all items of one order.
func (r *Repo) ListByPedido(ctx context.Context, pedidoID id.ID) ([]*items.Item, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"pedido_id": pedidoID}).
		OrderBy("created_at ASC", "id ASC")

	return r.selectWithLogs(ctx, q)
}

// ListByListaMaterial retrieves the items of one material list.
func (r *Repo) ListByListaMaterial(ctx context.Context, lista string) ([]*items.Item, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"lista_material": lista}).
		OrderBy("codigo ASC", "created_at ASC")

	return r.selectWithLogs(ctx, q)
}

// List retrieves items with filtering and pagination.
func (r *Repo) List(ctx context.Context, f items.ListFilter) ([]*items.Item, error) {
	q := r.baseSelect()

	if f.PedidoID != nil {
		q = q.Where(squirrel.Eq{"pedido_id": *f.PedidoID})
	}
	if f.ListaMaterial != nil {
		q = q.Where(squirrel.Eq{"lista_material": *f.ListaMaterial})
	}
	if f.Status != nil {
		q = q.Where(squirrel.Eq{"status_item": *f.Status})
	}

	var err error
	q, err = r.applyAdvancedFilters(q, f.AdvancedFilters)
	if err != nil {
		return nil, err
	}

	orderBy, err := r.parseOrderBy(f.OrderBy)
	if err != nil {
		return nil, err
	}
	q = q.OrderBy(orderBy)

	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	return r.selectWithLogs(ctx, q)
}

// selectWithLogs runs a SELECT and hydrates the event logs of the result.
func (r *Repo) selectWithLogs(ctx context.Context, q squirrel.SelectBuilder) ([]*items.Item, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var result []*items.Item
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &result, sql, args...); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	if err := r.loadLogs(ctx, result); err != nil {
		return nil, err
	}

	return result, nil
}

// applyAdvancedFilters applies complex filters to query.
func (r *Repo) applyAdvancedFilters(q squirrel.SelectBuilder, filters []filter.Item) (squirrel.SelectBuilder, error) {
	// Whitelist columns for SQL injection protection
	validCols := make(map[string]bool, len(itemColumns))
	for _, col := range itemColumns {
		validCols[col] = true
	}

	for _, item := range filters {
		if !validCols[item.Field] {
			return q, apperror.NewValidation("invalid filter column").
				WithDetail("field", item.Field)
		}

		switch item.Operator {
		case filter.Equal:
			q = q.Where(squirrel.Eq{item.Field: item.Value})
		case filter.NotEqual:
			q = q.Where(squirrel.NotEq{item.Field: item.Value})
		case filter.Less:
			q = q.Where(squirrel.Lt{item.Field: item.Value})
		case filter.Greater:
			q = q.Where(squirrel.Gt{item.Field: item.Value})
		case filter.LessOrEqual:
			q = q.Where(squirrel.LtOrEq{item.Field: item.Value})
		case filter.GreaterOrEqual:
			q = q.Where(squirrel.GtOrEq{item.Field: item.Value})
		case filter.InList:
			q = q.Where(squirrel.Eq{item.Field: item.Value})
		case filter.NotInList:
			q = q.Where(squirrel.NotEq{item.Field: item.Value})
		case filter.Contains:
			val := fmt.Sprintf("%%%v%%", item.Value)
			q = q.Where(squirrel.ILike{item.Field: val})
		case filter.NotContains:
			val := fmt.Sprintf("%%%v%%", item.Value)
			q = q.Where(squirrel.NotILike{item.Field: val})
		case filter.IsNull:
			q = q.Where(squirrel.Eq{item.Field: nil})
		case filter.IsNotNull:
			q = q.Where(squirrel.NotEq{item.Field: nil})
		default:
			return q, apperror.NewValidation("unknown filter operator").
				WithDetail("operator", string(item.Operator))
		}
	}

	return q, nil
}

func (r *Repo) parseOrderBy(orderBy string) (string, error) {
	if orderBy == "" {
		return "created_at ASC", nil
	}

	// Support "-field" for DESC.
	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = strings.TrimSpace(field)
	allowed := make(map[string]struct{}, len(itemColumns))
	for _, col := range itemColumns {
		allowed[col] = struct{}{}
	}
	if _, ok := allowed[field]; !ok {
		return "", apperror.NewValidation("invalid orderBy").
			WithDetail("orderBy", orderBy).
			WithDetail("field", field)
	}

	return field + " " + direction, nil
}

// UpdateStatus persists a derived status with optimistic locking.
func (r *Repo) UpdateStatus(ctx context.Context, itemID id.ID, status items.Status, expectedVersion int) error {
	q := r.Builder().
		Update(tableItems).
		Set("status_item", status).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": itemID}).
		Where(squirrel.Eq{"version": expectedVersion})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update item status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("item", itemID.String())
	}

	return nil
}

// SetFinalPurchaseFlags updates the final-purchase bookkeeping flags.
func (r *Repo) SetFinalPurchaseFlags(ctx context.Context, itemID id.ID, precisa, concluida bool) error {
	q := r.Builder().
		Update(tableItems).
		Set("precisa_compra_final", precisa).
		Set("compra_final_concluida", concluida).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": itemID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update final purchase flags: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("item", itemID.String())
	}

	return nil
}
