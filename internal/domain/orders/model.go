// Package orders provides the Pedido: the parent request grouping items,
// tracked to a client and project.
package orders

import (
	"context"
	"time"

	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/apperror"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/id"
)

// Status is the aggregate order status. The set is closed.
type Status string

const (
	// StatusAberto is the initial state: items still pending allocation.
	StatusAberto Status = "Aberto"
	// StatusEmpenhado means every item reached a terminal allocation state.
	StatusEmpenhado Status = "Empenhado"
)

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	return s == StatusAberto || s == StatusEmpenhado
}

// Pedido is the parent order owning items (1:N by pedidoId).
type Pedido struct {
	ID           id.ID     `db:"id" json:"id"`
	ClienteNome  string    `db:"cliente_nome" json:"clienteNome"`
	TipoProjeto  string    `db:"tipo_projeto" json:"tipoProjeto"`
	StatusPedido Status    `db:"status_pedido" json:"statusPedido"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// NewPedido creates an order in the initial state.
func NewPedido(clienteNome, tipoProjeto string) *Pedido {
	now := time.Now().UTC()
	return &Pedido{
		ID:           id.New(),
		ClienteNome:  clienteNome,
		TipoProjeto:  tipoProjeto,
		StatusPedido: StatusAberto,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate implements basic order invariants.
func (p *Pedido) Validate(ctx context.Context) error {
	if p.ClienteNome == "" {
		return apperror.NewValidation("cliente is required").
			WithDetail("field", "clienteNome")
	}
	if !p.StatusPedido.Valid() {
		return apperror.NewValidation("unknown order status").
			WithDetail("field", "statusPedido").
			WithDetail("value", string(p.StatusPedido))
	}
	return nil
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create inserts a new order.
	Create(ctx context.Context, pedido *Pedido) error

	// GetByID retrieves one order.
	GetByID(ctx context.Context, pedidoID id.ID) (*Pedido, error)

	// UpdateStatus persists a new aggregate status.
	UpdateStatus(ctx context.Context, pedidoID id.ID, status Status) error
}
