package items

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/id"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/types"
)

func qty(s string) types.Quantity {
	return types.MustQuantity(s)
}

func newTestItem(quantidade string) *Item {
	return NewItem(id.New(), qty(quantidade))
}

func TestCalculateBalance_FreshItem(t *testing.T) {
	item := newTestItem("10")

	bal := CalculateBalance(item)

	assert.True(t, bal.AvailableStock.Equal(qty("10")))
	assert.True(t, bal.AvailableReceived.IsZero())
	assert.True(t, bal.TotalAvailable.Equal(qty("10")))
	assert.True(t, bal.TotalAllocated.IsZero())
}

func TestCalculateBalance_MixedSources(t *testing.T) {
	// quantidade=10, received 6, allocated 4 from stock and 2 from received.
	item := newTestItem("10")
	item.HistoricoRecebimentos = []ReceiptEvent{
		NewReceiptEvent(item.ID, qty("6"), ReceiptInicial),
	}
	item.HistoricoEmpenhos = []AllocationEvent{
		NewAllocationEvent(item.ID, qty("4"), qty("2"), "ana"),
	}

	bal := CalculateBalance(item)

	assert.True(t, bal.AvailableStock.Equal(qty("6")), "10 - 4 = 6")
	assert.True(t, bal.AvailableReceived.Equal(qty("4")), "6 - 2 = 4")
	assert.True(t, bal.TotalAvailable.Equal(qty("10")))
	assert.True(t, bal.TotalAllocated.Equal(qty("6")))
}

func TestCalculateBalance_ReceiptAndAllocation(t *testing.T) {
	// quantidade=10, received 4, one allocation of 3 from stock and 2 from
	// the received pool.
	item := newTestItem("10")
	item.HistoricoRecebimentos = []ReceiptEvent{
		NewReceiptEvent(item.ID, qty("4"), ReceiptInicial),
	}
	item.HistoricoEmpenhos = []AllocationEvent{
		NewAllocationEvent(item.ID, qty("3"), qty("2"), "ana"),
	}

	bal := CalculateBalance(item)

	assert.True(t, bal.AvailableStock.Equal(qty("7")))
	assert.True(t, bal.AvailableReceived.Equal(qty("2")))
	assert.True(t, bal.TotalAvailable.Equal(qty("9")))
	assert.True(t, bal.TotalAllocated.Equal(qty("5")))
}

func TestCalculateBalance_MultipleEventsAccumulate(t *testing.T) {
	item := newTestItem("20")
	item.HistoricoRecebimentos = []ReceiptEvent{
		NewReceiptEvent(item.ID, qty("5"), ReceiptInicial),
		NewReceiptEvent(item.ID, qty("3"), ReceiptFinal),
	}
	item.HistoricoEmpenhos = []AllocationEvent{
		NewAllocationEvent(item.ID, qty("7"), qty("0"), "ana"),
		NewAllocationEvent(item.ID, qty("3"), qty("4"), "rui"),
	}

	bal := CalculateBalance(item)

	assert.True(t, bal.AvailableStock.Equal(qty("10")), "20 - 10 = 10")
	assert.True(t, bal.AvailableReceived.Equal(qty("4")), "8 - 4 = 4")
	assert.True(t, bal.TotalAllocated.Equal(qty("14")))
}

func TestCalculateBalance_ClampsNegativeToZero(t *testing.T) {
	// Historic over-allocation: more allocated from stock than required.
	item := newTestItem("10")
	item.HistoricoEmpenhos = []AllocationEvent{
		NewAllocationEvent(item.ID, qty("12"), qty("5"), "ana"),
	}

	bal := CalculateBalance(item)

	assert.True(t, bal.AvailableStock.IsZero(), "negative availability clamps to zero")
	assert.True(t, bal.AvailableReceived.IsZero(), "no receipts, allocation from received clamps")
	assert.True(t, bal.TotalAllocated.Equal(qty("17")))
	assert.True(t, bal.OverAllocated(item.Quantidade))
}

func TestCalculateBalance_EmptyLogsAreZero(t *testing.T) {
	item := newTestItem("0")

	bal := CalculateBalance(item)

	assert.True(t, bal.AvailableStock.IsZero())
	assert.True(t, bal.TotalAvailable.IsZero())
	assert.False(t, bal.OverAllocated(item.Quantidade))
}

func TestSumReceipts_FiltersByType(t *testing.T) {
	itemID := id.New()
	events := []ReceiptEvent{
		NewReceiptEvent(itemID, qty("5"), ReceiptInicial),
		NewReceiptEvent(itemID, qty("2"), ReceiptFinal),
		NewReceiptEvent(itemID, qty("3"), ReceiptInicial),
	}

	assert.True(t, SumReceipts(events, nil).Equal(qty("10")))

	inicial := ReceiptInicial
	assert.True(t, SumReceipts(events, &inicial).Equal(qty("8")))

	final := ReceiptFinal
	assert.True(t, SumReceipts(events, &final).Equal(qty("2")))
}

func TestSumFinalPurchases(t *testing.T) {
	itemID := id.New()
	events := []FinalPurchaseEvent{
		NewFinalPurchaseEvent(itemID, qty("1.5"), "forn-a"),
		NewFinalPurchaseEvent(itemID, qty("2.5"), "forn-b"),
	}

	assert.True(t, SumFinalPurchases(events).Equal(qty("4")))
	assert.True(t, SumFinalPurchases(nil).IsZero())
}
