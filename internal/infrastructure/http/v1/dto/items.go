package dto

import (
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/id"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/types"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/filter"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/items"
)

// CreateItemRequest ingests one item under an order.
type CreateItemRequest struct {
	PedidoID           string         `json:"pedidoId" binding:"required"`
	ListaMaterial      string         `json:"listaMaterial"`
	Codigo             string         `json:"codigo"`
	Descricao          string         `json:"descricao"`
	Quantidade         types.Quantity `json:"quantidade"`
	QtdeComprada       types.Quantity `json:"qtdeComprada"`
	QtdProducao        types.Quantity `json:"qtdProducao"`
	QtdItemNecFinal    types.Quantity `json:"QtdItemNecFinal"`
	PrecisaCompraFinal bool           `json:"precisaCompraFinal"`
}

// ToItem builds the domain item. The pedido reference is parsed separately.
func (r CreateItemRequest) ToItem(pedidoID id.ID) *items.Item {
	item := items.NewItem(pedidoID, r.Quantidade)
	item.ListaMaterial = r.ListaMaterial
	item.Codigo = r.Codigo
	item.Descricao = r.Descricao
	item.QtdeComprada = r.QtdeComprada
	item.QtdProducao = r.QtdProducao
	item.QtdItemNecFinal = r.QtdItemNecFinal
	item.PrecisaCompraFinal = r.PrecisaCompraFinal
	return item
}

// ListItemsQuery filters item listings via query parameters.
type ListItemsQuery struct {
	PedidoID      string `form:"pedidoId"`
	ListaMaterial string `form:"listaMaterial"`
	Status        string `form:"status"`
	OrderBy       string `form:"orderBy"`
	Limit         int    `form:"limit"`
	Offset        int    `form:"offset"`
}

// SearchItemsRequest filters item listings with arbitrary field
// comparisons (saldo reports and dashboards).
type SearchItemsRequest struct {
	Filters []filter.Item `json:"filters"`
	OrderBy string        `json:"orderBy"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
}

// BalanceResponse is the read side of the allocation form: the item, its
// computed balance and the planner's suggested split.
type BalanceResponse struct {
	Item       *items.Item      `json:"item"`
	Balance    items.Balance    `json:"balance"`
	Suggestion items.Suggestion `json:"suggestion"`
}

// RecordReceiptRequest appends a receipt event to an item's log.
type RecordReceiptRequest struct {
	Qtde            types.Quantity `json:"qtde"`
	TipoRecebimento string         `json:"tipoRecebimento" binding:"required"`
}

// RecordFinalPurchaseRequest appends a final-purchase event.
type RecordFinalPurchaseRequest struct {
	QtdeComprada types.Quantity `json:"qtdeComprada"`
	Fornecedor   string         `json:"fornecedor"`
}
