package items

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestAllocation_StockFirst(t *testing.T) {
	// Need 10, stock covers everything.
	item := newTestItem("10")
	bal := CalculateBalance(item)

	s := SuggestAllocation(item, bal)

	assert.True(t, s.AllocStock.Equal(qty("10")))
	assert.True(t, s.AllocReceived.IsZero())
}

func TestSuggestAllocation_ReceivedCoversRemainder(t *testing.T) {
	// Need 10, 4 already allocated from stock, 8 received.
	item := newTestItem("10")
	item.HistoricoEmpenhos = []AllocationEvent{
		NewAllocationEvent(item.ID, qty("4"), qty("0"), "ana"),
	}
	item.HistoricoRecebimentos = []ReceiptEvent{
		NewReceiptEvent(item.ID, qty("8"), ReceiptInicial),
	}

	bal := CalculateBalance(item)
	s := SuggestAllocation(item, bal)

	// Still needed: 6. Stock still has 6 available, so stock wins in full.
	assert.True(t, s.AllocStock.Equal(qty("6")))
	assert.True(t, s.AllocReceived.IsZero())
}

func TestSuggestAllocation_StockCoversOutstandingNeed(t *testing.T) {
	// Need 10: 7 already allocated from stock leaves 3 of stock budget and
	// an outstanding need of 3. The received pool is not touched while the
	// stock budget covers the need.
	item := newTestItem("10")
	item.HistoricoEmpenhos = []AllocationEvent{
		NewAllocationEvent(item.ID, qty("7"), qty("0"), "ana"),
	}
	item.HistoricoRecebimentos = []ReceiptEvent{
		NewReceiptEvent(item.ID, qty("2"), ReceiptInicial),
	}

	bal := CalculateBalance(item)
	s := SuggestAllocation(item, bal)

	assert.True(t, s.AllocStock.Equal(qty("3")))
	assert.True(t, s.AllocReceived.IsZero())
}

func TestSuggestAllocation_NeverExceedsNeed(t *testing.T) {
	// Need 5, huge received pool: suggestion caps at the outstanding need.
	item := newTestItem("5")
	item.HistoricoEmpenhos = []AllocationEvent{
		NewAllocationEvent(item.ID, qty("5"), qty("0"), "ana"),
	}
	item.HistoricoRecebimentos = []ReceiptEvent{
		NewReceiptEvent(item.ID, qty("100"), ReceiptInicial),
	}

	bal := CalculateBalance(item)
	s := SuggestAllocation(item, bal)

	assert.True(t, s.AllocStock.IsZero())
	assert.True(t, s.AllocReceived.IsZero(), "fully allocated item suggests nothing")
}

func TestSuggestAllocation_PartiallyAllocatedItem(t *testing.T) {
	// Need 10, 8 already allocated from stock: the suggestion covers the
	// remaining 2 from the stock budget before considering receipts.
	item := newTestItem("10")
	item.HistoricoEmpenhos = []AllocationEvent{
		NewAllocationEvent(item.ID, qty("8"), qty("0"), "ana"),
	}
	item.HistoricoRecebimentos = []ReceiptEvent{
		NewReceiptEvent(item.ID, qty("3"), ReceiptInicial),
	}

	bal := CalculateBalance(item)
	s := SuggestAllocation(item, bal)

	assert.True(t, s.AllocStock.Equal(qty("2")))
	assert.True(t, s.AllocReceived.IsZero(), "still needed (2) is fully covered by stock")
}
