package dto

import (
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/items"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/orders"
)

// CreatePedidoRequest creates a new order.
type CreatePedidoRequest struct {
	ClienteNome string `json:"clienteNome" binding:"required"`
	TipoProjeto string `json:"tipoProjeto"`
}

// PedidoDetailResponse is an order with its items.
type PedidoDetailResponse struct {
	Pedido *orders.Pedido `json:"pedido"`
	Items  []*items.Item  `json:"items"`
}
