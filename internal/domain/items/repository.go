package items

import (
	"context"

	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/id"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/filter"
)

// Repository defines the persistence operations the engine consumes.
// Reads outside a transaction are snapshot reads with no isolation
// guarantee against concurrent writers; the commit path re-reads with
// GetByIDsForUpdate inside its transaction.
type Repository interface {
	// Create inserts a new item (ingestion).
	Create(ctx context.Context, item *Item) error

	// GetByID retrieves one item with all three event logs loaded.
	GetByID(ctx context.Context, itemID id.ID) (*Item, error)

	// GetByIDsForUpdate retrieves items with row locks and logs loaded.
	// Must be called inside a transaction. Missing ids are reported via
	// a not-found error so the caller fails the whole batch.
	GetByIDsForUpdate(ctx context.Context, itemIDs []id.ID) ([]*Item, error)

	// ListByPedido retrieves all items of one order (fresh read).
	ListByPedido(ctx context.Context, pedidoID id.ID) ([]*Item, error)

	// ListByListaMaterial retrieves the items of one material list in a
	// stable order, with logs loaded (rollup input).
	ListByListaMaterial(ctx context.Context, lista string) ([]*Item, error)

	// List retrieves items with filtering and pagination.
	List(ctx context.Context, f ListFilter) ([]*Item, error)

	// AppendAllocationEvents appends immutable allocation events.
	// Events are never updated or deleted.
	AppendAllocationEvents(ctx context.Context, events []AllocationEvent) error

	// AppendReceiptEvents appends immutable receipt events.
	AppendReceiptEvents(ctx context.Context, events []ReceiptEvent) error

	// AppendFinalPurchaseEvents appends immutable final-purchase events.
	AppendFinalPurchaseEvents(ctx context.Context, events []FinalPurchaseEvent) error

	// UpdateStatus persists a derived status and bumps the version.
	// Fails with a concurrent-modification error when expectedVersion no
	// longer matches.
	UpdateStatus(ctx context.Context, itemID id.ID, status Status, expectedVersion int) error

	// SetFinalPurchaseFlags updates the final-purchase bookkeeping flags.
	SetFinalPurchaseFlags(ctx context.Context, itemID id.ID, precisa, concluida bool) error
}

// ListFilter contains filtering options for item listings.
type ListFilter struct {
	PedidoID      *id.ID
	ListaMaterial *string
	Status        *Status

	// AdvancedFilters applies arbitrary field comparisons (saldo reports).
	AdvancedFilters []filter.Item

	// OrderBy specifies sorting (e.g. "codigo", "-created_at").
	OrderBy string

	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "created_at",
	}
}
