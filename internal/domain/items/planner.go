package items

import (
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/types"
)

// Suggestion is the default split of a pending allocation between stock and
// received balances. It prefills an editable form and is advisory only: the
// operator may override it up to the same caps before commit.
type Suggestion struct {
	AllocStock    types.Quantity `json:"allocStock"`
	AllocReceived types.Quantity `json:"allocReceived"`
}

// SuggestAllocation proposes how to cover the item's outstanding need.
// Stock is prioritized; the received pool covers the remainder. The
// suggestion never exceeds the outstanding need nor the available balances.
func SuggestAllocation(item *Item, bal Balance) Suggestion {
	stillNeeded := types.ClampZero(item.Quantidade.Sub(bal.TotalAllocated))
	if stillNeeded.IsZero() {
		return Suggestion{
			AllocStock:    types.ZeroQuantity(),
			AllocReceived: types.ZeroQuantity(),
		}
	}

	allocStock := types.MinQuantity(bal.AvailableStock, stillNeeded)
	allocReceived := types.MinQuantity(bal.AvailableReceived, stillNeeded.Sub(allocStock))

	return Suggestion{
		AllocStock:    allocStock,
		AllocReceived: allocReceived,
	}
}
