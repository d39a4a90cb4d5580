// Package items provides the procurement item: the unit being purchased,
// received and allocated against a parent order (pedido).
package items

import (
	"context"
	"time"

	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/apperror"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/id"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/types"
)

// Status is the per-item status along the procurement pipeline.
// The set is closed: persisted values are exactly these strings.
type Status string

const (
	StatusIndefinido                 Status = "Indefinido"
	StatusParcialmenteEmpenhado      Status = "ParcialmenteEmpenhado"
	StatusEmpenhado                  Status = "Empenhado"
	StatusSeparadoParaProducao       Status = "SeparadoParaProducao"
	StatusParaCompra                 Status = "ParaCompra"
	StatusAguardandoRecebimentoFinal Status = "AguardandoRecebimentoFinal"
)

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	switch s {
	case StatusIndefinido, StatusParcialmenteEmpenhado, StatusEmpenhado,
		StatusSeparadoParaProducao, StatusParaCompra, StatusAguardandoRecebimentoFinal:
		return true
	}
	return false
}

// AllocationRank positions a status along the allocation axis.
// Transitions derived by the commit may only move to a higher rank;
// SeparadoParaProducao sits past Empenhado and is never downgraded.
func (s Status) AllocationRank() int {
	switch s {
	case StatusParcialmenteEmpenhado:
		return 1
	case StatusEmpenhado:
		return 2
	case StatusSeparadoParaProducao:
		return 3
	default:
		// Indefinido, ParaCompra and AguardandoRecebimentoFinal have no
		// allocation progress yet.
		return 0
	}
}

// ReceiptType tags a receipt event as belonging to the initial or the
// final procurement stage.
type ReceiptType string

const (
	ReceiptInicial ReceiptType = "inicial"
	ReceiptFinal   ReceiptType = "final"
)

// Valid reports whether t is a member of the closed receipt-type set.
func (t ReceiptType) Valid() bool {
	return t == ReceiptInicial || t == ReceiptFinal
}

// AllocationEvent records one allocation (empenho) against an item.
// Events are immutable once appended; logs are append-only.
type AllocationEvent struct {
	ID                      id.ID          `db:"id" json:"id"`
	ItemID                  id.ID          `db:"item_id" json:"-"`
	QtdeEmpenhadaDoEstoque  types.Quantity `db:"qtde_empenhada_do_estoque" json:"qtdeEmpenhadaDoEstoque"`
	QtdeEmpenhadaDoRecebido types.Quantity `db:"qtde_empenhada_do_recebido" json:"qtdeEmpenhadaDoRecebido"`
	DataEmpenho             time.Time      `db:"data_empenho" json:"dataEmpenho"`
	Responsavel             string         `db:"responsavel" json:"responsavel"`
}

// NewAllocationEvent creates an allocation event for an item.
func NewAllocationEvent(itemID id.ID, fromStock, fromReceived types.Quantity, responsavel string) AllocationEvent {
	return AllocationEvent{
		ID:                      id.New(),
		ItemID:                  itemID,
		QtdeEmpenhadaDoEstoque:  fromStock,
		QtdeEmpenhadaDoRecebido: fromReceived,
		DataEmpenho:             time.Now().UTC(),
		Responsavel:             responsavel,
	}
}

// ReceiptEvent records that purchased goods physically arrived.
type ReceiptEvent struct {
	ID              id.ID          `db:"id" json:"id"`
	ItemID          id.ID          `db:"item_id" json:"-"`
	Qtde            types.Quantity `db:"qtde" json:"qtde"`
	DataRecebimento time.Time      `db:"data_recebimento" json:"dataRecebimento"`
	TipoRecebimento ReceiptType    `db:"tipo_recebimento" json:"tipoRecebimento"`
}

// NewReceiptEvent creates a receipt event for an item.
func NewReceiptEvent(itemID id.ID, qtde types.Quantity, tipo ReceiptType) ReceiptEvent {
	return ReceiptEvent{
		ID:              id.New(),
		ItemID:          itemID,
		Qtde:            qtde,
		DataRecebimento: time.Now().UTC(),
		TipoRecebimento: tipo,
	}
}

// FinalPurchaseEvent records a secondary purchase for an item left short
// after initial procurement.
type FinalPurchaseEvent struct {
	ID           id.ID          `db:"id" json:"id"`
	ItemID       id.ID          `db:"item_id" json:"-"`
	QtdeComprada types.Quantity `db:"qtde_comprada" json:"qtdeComprada"`
	DataCompra   time.Time      `db:"data_compra" json:"dataCompra"`
	Fornecedor   string         `db:"fornecedor" json:"fornecedor"`
}

// NewFinalPurchaseEvent creates a final-purchase event for an item.
func NewFinalPurchaseEvent(itemID id.ID, qtde types.Quantity, fornecedor string) FinalPurchaseEvent {
	return FinalPurchaseEvent{
		ID:           id.New(),
		ItemID:       itemID,
		QtdeComprada: qtde,
		DataCompra:   time.Now().UTC(),
		Fornecedor:   fornecedor,
	}
}

// Item is the unit being procured and allocated.
//
// JSON field names are the persisted schema consumed outside this core and
// must not be renamed (database columns are their snake_case encoding).
type Item struct {
	ID            id.ID  `db:"id" json:"id"`
	PedidoID      id.ID  `db:"pedido_id" json:"pedidoId"`
	ListaMaterial string `db:"lista_material" json:"listaMaterial,omitempty"`
	Codigo        string `db:"codigo" json:"codigo,omitempty"`
	Descricao     string `db:"descricao" json:"descricao,omitempty"`

	// Quantidade is the required quantity (non-negative).
	Quantidade types.Quantity `db:"quantidade" json:"quantidade"`

	// QtdeComprada is the quantity covered by the initial purchase.
	QtdeComprada types.Quantity `db:"qtde_comprada" json:"qtdeComprada"`

	StatusItem Status `db:"status_item" json:"statusItem"`

	// Final-stage bookkeeping consumed by the fulfillment rollup.
	PrecisaCompraFinal   bool           `db:"precisa_compra_final" json:"precisaCompraFinal"`
	CompraFinalConcluida bool           `db:"compra_final_concluida" json:"compraFinalConcluida"`
	QtdProducao          types.Quantity `db:"qtd_producao" json:"qtdProducao"`
	QtdItemNecFinal      types.Quantity `db:"qtd_item_nec_final" json:"QtdItemNecFinal"`

	// Version is the optimistic concurrency token, bumped on every commit
	// that touches the item.
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Append-only event logs. A missing log is an empty sequence, never an
	// error.
	HistoricoEmpenhos     []AllocationEvent    `db:"-" json:"historicoEmpenhos"`
	HistoricoRecebimentos []ReceiptEvent       `db:"-" json:"historicoRecebimentos"`
	HistoricoCompraFinal  []FinalPurchaseEvent `db:"-" json:"historicoCompraFinal"`
}

// NewItem creates an item at ingestion: empty logs, status Indefinido.
func NewItem(pedidoID id.ID, quantidade types.Quantity) *Item {
	now := time.Now().UTC()
	return &Item{
		ID:         id.New(),
		PedidoID:   pedidoID,
		Quantidade: quantidade,
		StatusItem: StatusIndefinido,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate implements basic item invariants.
func (i *Item) Validate(ctx context.Context) error {
	if id.IsNil(i.PedidoID) {
		return apperror.NewValidation("pedido reference is required").
			WithDetail("field", "pedidoId")
	}

	if i.Quantidade.IsNegative() {
		return apperror.NewValidation("quantidade must be non-negative").
			WithDetail("field", "quantidade")
	}

	if !i.StatusItem.Valid() {
		return apperror.NewValidation("unknown item status").
			WithDetail("field", "statusItem").
			WithDetail("value", string(i.StatusItem))
	}

	return nil
}

// DeriveStatus applies the commit status derivation to the current status.
// totalAllocated is the post-commit allocation total.
//
//	totalAllocated >= quantidade  -> Empenhado
//	0 < totalAllocated < quantidade -> ParcialmenteEmpenhado
//	otherwise -> unchanged
//
// The result never regresses along the allocation axis: a status with a
// higher rank (SeparadoParaProducao in particular) is kept as-is.
func DeriveStatus(current Status, totalAllocated, quantidade types.Quantity) Status {
	candidate := current
	switch {
	case totalAllocated.GreaterThanOrEqual(quantidade) && totalAllocated.IsPositive():
		candidate = StatusEmpenhado
	case totalAllocated.IsPositive() && totalAllocated.LessThan(quantidade):
		candidate = StatusParcialmenteEmpenhado
	}

	if candidate.AllocationRank() > current.AllocationRank() {
		return candidate
	}
	return current
}
