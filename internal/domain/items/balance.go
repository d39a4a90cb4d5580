package items

import (
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/types"
)

// Balance is the reduction of an item's event logs into the quantities
// still available to allocate, split by source.
type Balance struct {
	// AvailableStock is what remains of the required quantity not yet
	// allocated from stock.
	AvailableStock types.Quantity `json:"availableStock"`

	// AvailableReceived is what has been received but not yet allocated
	// from the received pool.
	AvailableReceived types.Quantity `json:"availableReceived"`

	TotalAvailable types.Quantity `json:"totalAvailable"`
	TotalAllocated types.Quantity `json:"totalAllocated"`
}

// OverAllocated reports whether more than the required quantity has been
// allocated in total. Per-source caps still hold when this is true; it is
// how scenario audits detect a past over-commitment.
func (b Balance) OverAllocated(quantidade types.Quantity) bool {
	return b.TotalAllocated.GreaterThan(quantidade)
}

// CalculateBalance reduces the item's allocation and receipt logs to its
// current balance. Negative intermediate results clamp to zero:
// over-allocation is never credited back as negative availability.
func CalculateBalance(item *Item) Balance {
	allocStock := AllocatedFromStock(item.HistoricoEmpenhos)
	allocReceived := AllocatedFromReceived(item.HistoricoEmpenhos)
	totalReceived := SumReceipts(item.HistoricoRecebimentos, nil)

	availableStock := types.ClampZero(item.Quantidade.Sub(allocStock))
	availableReceived := types.ClampZero(totalReceived.Sub(allocReceived))

	return Balance{
		AvailableStock:    availableStock,
		AvailableReceived: availableReceived,
		TotalAvailable:    availableStock.Add(availableReceived),
		TotalAllocated:    allocStock.Add(allocReceived),
	}
}

// AllocatedFromStock sums qtdeEmpenhadaDoEstoque over the log.
func AllocatedFromStock(events []AllocationEvent) types.Quantity {
	total := types.ZeroQuantity()
	for _, e := range events {
		total = total.Add(e.QtdeEmpenhadaDoEstoque)
	}
	return total
}

// AllocatedFromReceived sums qtdeEmpenhadaDoRecebido over the log.
func AllocatedFromReceived(events []AllocationEvent) types.Quantity {
	total := types.ZeroQuantity()
	for _, e := range events {
		total = total.Add(e.QtdeEmpenhadaDoRecebido)
	}
	return total
}

// SumReceipts sums qtde over receipt events. When tipo is non-nil only
// events of that receipt type are counted.
func SumReceipts(events []ReceiptEvent, tipo *ReceiptType) types.Quantity {
	total := types.ZeroQuantity()
	for _, e := range events {
		if tipo != nil && e.TipoRecebimento != *tipo {
			continue
		}
		total = total.Add(e.Qtde)
	}
	return total
}

// SumFinalPurchases sums qtdeComprada over final-purchase events.
func SumFinalPurchases(events []FinalPurchaseEvent) types.Quantity {
	total := types.ZeroQuantity()
	for _, e := range events {
		total = total.Add(e.QtdeComprada)
	}
	return total
}
