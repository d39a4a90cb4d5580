// Package pedido_repo provides the PostgreSQL implementation of the orders
// repository.
package pedido_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/apperror"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/id"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/orders"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/infrastructure/storage/postgres"
)

const tablePedidos = "pedidos"

var pedidoColumns = []string{
	"id",
	"cliente_nome",
	"tipo_projeto",
	"status_pedido",
	"created_at",
	"updated_at",
}

// Compile-time check that Repo implements orders.Repository.
var _ orders.Repository = (*Repo)(nil)

// Repo is the PostgreSQL orders repository.
type Repo struct {
	txManager *postgres.TxManager
}

// NewRepo creates a new orders repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{txManager: txManager}
}

// Builder returns a squirrel builder with PostgreSQL placeholders.
func (r *Repo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new order.
func (r *Repo) Create(ctx context.Context, pedido *orders.Pedido) error {
	q := r.Builder().
		Insert(tablePedidos).
		Columns(pedidoColumns...).
		Values(
			pedido.ID,
			pedido.ClienteNome,
			pedido.TipoProjeto,
			pedido.StatusPedido,
			pedido.CreatedAt,
			pedido.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", tablePedidos, err)
	}

	return nil
}

// GetByID retrieves one order.
func (r *Repo) GetByID(ctx context.Context, pedidoID id.ID) (*orders.Pedido, error) {
	q := r.Builder().
		Select(pedidoColumns...).
		From(tablePedidos).
		Where(squirrel.Eq{"id": pedidoID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	pedido := &orders.Pedido{}
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, pedido, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("pedido", pedidoID.String())
		}
		return nil, fmt.Errorf("get pedido by id: %w", err)
	}

	return pedido, nil
}

// UpdateStatus persists a new aggregate status.
func (r *Repo) UpdateStatus(ctx context.Context, pedidoID id.ID, status orders.Status) error {
	q := r.Builder().
		Update(tablePedidos).
		Set("status_pedido", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": pedidoID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update pedido status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("pedido", pedidoID.String())
	}

	return nil
}
