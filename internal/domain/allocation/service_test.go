package allocation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/apperror"
	appctx "github.com/oliverlleo/SistemaCompras-sub001/internal/core/context"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/id"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/types"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/items"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/orders"
)

func qty(s string) types.Quantity {
	return types.MustQuantity(s)
}

// --- In-memory fakes ---

// memStore holds items and orders behind the fake transaction manager.
// RunInTransaction snapshots the store and restores it when the closure
// fails, mimicking a rollback.
type memStore struct {
	items   map[id.ID]*items.Item
	pedidos map[id.ID]*orders.Pedido

	pedidoUpdates  int
	failListPedido bool
}

func newMemStore() *memStore {
	return &memStore{
		items:   make(map[id.ID]*items.Item),
		pedidos: make(map[id.ID]*orders.Pedido),
	}
}

func cloneItem(it *items.Item) *items.Item {
	c := *it
	c.HistoricoEmpenhos = append([]items.AllocationEvent(nil), it.HistoricoEmpenhos...)
	c.HistoricoRecebimentos = append([]items.ReceiptEvent(nil), it.HistoricoRecebimentos...)
	c.HistoricoCompraFinal = append([]items.FinalPurchaseEvent(nil), it.HistoricoCompraFinal...)
	return &c
}

func (s *memStore) addItem(it *items.Item) {
	s.items[it.ID] = cloneItem(it)
}

func (s *memStore) addPedido(p *orders.Pedido) {
	c := *p
	s.pedidos[p.ID] = &c
}

func (s *memStore) snapshot() *memStore {
	snap := newMemStore()
	for k, v := range s.items {
		snap.items[k] = cloneItem(v)
	}
	for k, v := range s.pedidos {
		c := *v
		snap.pedidos[k] = &c
	}
	snap.pedidoUpdates = s.pedidoUpdates
	return snap
}

func (s *memStore) restore(snap *memStore) {
	s.items = snap.items
	s.pedidos = snap.pedidos
	s.pedidoUpdates = snap.pedidoUpdates
}

// memTxManager runs the closure against the store with rollback-on-error.
type memTxManager struct {
	store *memStore
}

func (m *memTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// memItemsRepo implements items.Repository over the store.
type memItemsRepo struct {
	store *memStore
}

func (r *memItemsRepo) Create(ctx context.Context, item *items.Item) error {
	r.store.addItem(item)
	return nil
}

func (r *memItemsRepo) GetByID(ctx context.Context, itemID id.ID) (*items.Item, error) {
	it, ok := r.store.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("item", itemID.String())
	}
	return cloneItem(it), nil
}

func (r *memItemsRepo) GetByIDsForUpdate(ctx context.Context, itemIDs []id.ID) ([]*items.Item, error) {
	result := make([]*items.Item, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		it, ok := r.store.items[itemID]
		if !ok {
			return nil, apperror.NewNotFound("item", itemID.String())
		}
		result = append(result, cloneItem(it))
	}
	return result, nil
}

func (r *memItemsRepo) ListByPedido(ctx context.Context, pedidoID id.ID) ([]*items.Item, error) {
	if r.store.failListPedido {
		return nil, errors.New("storage unavailable")
	}
	var result []*items.Item
	for _, it := range r.store.items {
		if it.PedidoID == pedidoID {
			result = append(result, cloneItem(it))
		}
	}
	return result, nil
}

func (r *memItemsRepo) ListByListaMaterial(ctx context.Context, lista string) ([]*items.Item, error) {
	var result []*items.Item
	for _, it := range r.store.items {
		if it.ListaMaterial == lista {
			result = append(result, cloneItem(it))
		}
	}
	return result, nil
}

func (r *memItemsRepo) List(ctx context.Context, f items.ListFilter) ([]*items.Item, error) {
	var result []*items.Item
	for _, it := range r.store.items {
		result = append(result, cloneItem(it))
	}
	return result, nil
}

func (r *memItemsRepo) AppendAllocationEvents(ctx context.Context, events []items.AllocationEvent) error {
	for _, e := range events {
		it, ok := r.store.items[e.ItemID]
		if !ok {
			return apperror.NewNotFound("item", e.ItemID.String())
		}
		it.HistoricoEmpenhos = append(it.HistoricoEmpenhos, e)
	}
	return nil
}

func (r *memItemsRepo) AppendReceiptEvents(ctx context.Context, events []items.ReceiptEvent) error {
	for _, e := range events {
		it, ok := r.store.items[e.ItemID]
		if !ok {
			return apperror.NewNotFound("item", e.ItemID.String())
		}
		it.HistoricoRecebimentos = append(it.HistoricoRecebimentos, e)
	}
	return nil
}

func (r *memItemsRepo) AppendFinalPurchaseEvents(ctx context.Context, events []items.FinalPurchaseEvent) error {
	for _, e := range events {
		it, ok := r.store.items[e.ItemID]
		if !ok {
			return apperror.NewNotFound("item", e.ItemID.String())
		}
		it.HistoricoCompraFinal = append(it.HistoricoCompraFinal, e)
	}
	return nil
}

func (r *memItemsRepo) UpdateStatus(ctx context.Context, itemID id.ID, status items.Status, expectedVersion int) error {
	it, ok := r.store.items[itemID]
	if !ok {
		return apperror.NewNotFound("item", itemID.String())
	}
	if it.Version != expectedVersion {
		return apperror.NewConcurrentModification("item", itemID.String())
	}
	it.StatusItem = status
	it.Version++
	return nil
}

func (r *memItemsRepo) SetFinalPurchaseFlags(ctx context.Context, itemID id.ID, precisa, concluida bool) error {
	it, ok := r.store.items[itemID]
	if !ok {
		return apperror.NewNotFound("item", itemID.String())
	}
	it.PrecisaCompraFinal = precisa
	it.CompraFinalConcluida = concluida
	it.Version++
	return nil
}

// memPedidosRepo implements orders.Repository over the store.
type memPedidosRepo struct {
	store *memStore
}

func (r *memPedidosRepo) Create(ctx context.Context, pedido *orders.Pedido) error {
	r.store.addPedido(pedido)
	return nil
}

func (r *memPedidosRepo) GetByID(ctx context.Context, pedidoID id.ID) (*orders.Pedido, error) {
	p, ok := r.store.pedidos[pedidoID]
	if !ok {
		return nil, apperror.NewNotFound("pedido", pedidoID.String())
	}
	c := *p
	return &c, nil
}

func (r *memPedidosRepo) UpdateStatus(ctx context.Context, pedidoID id.ID, status orders.Status) error {
	p, ok := r.store.pedidos[pedidoID]
	if !ok {
		return apperror.NewNotFound("pedido", pedidoID.String())
	}
	p.StatusPedido = status
	r.store.pedidoUpdates++
	return nil
}

// recordingAuditor captures audit calls.
type recordingAuditor struct {
	entries []map[string]any
	fail    bool
}

func (a *recordingAuditor) AllocationCommitted(ctx context.Context, itemID id.ID, changes map[string]any) error {
	if a.fail {
		return errors.New("audit sink unavailable")
	}
	a.entries = append(a.entries, changes)
	return nil
}

// --- Test fixture ---

type fixture struct {
	store   *memStore
	service *Service
	orders  *orders.Service
	repo    *memItemsRepo
}

func newFixture(audit Auditor) *fixture {
	store := newMemStore()
	itemsRepo := &memItemsRepo{store: store}
	pedidosRepo := &memPedidosRepo{store: store}
	ordersSvc := orders.NewService(pedidosRepo, itemsRepo)
	txm := &memTxManager{store: store}

	return &fixture{
		store:   store,
		service: NewService(itemsRepo, ordersSvc, txm, audit),
		orders:  ordersSvc,
		repo:    itemsRepo,
	}
}

func (f *fixture) seedPedido() *orders.Pedido {
	p := orders.NewPedido("Cliente Teste", "industrial")
	f.store.addPedido(p)
	return p
}

func (f *fixture) seedItem(pedidoID id.ID, quantidade string) *items.Item {
	it := items.NewItem(pedidoID, qty(quantidade))
	f.store.addItem(it)
	return it
}

// --- Tests ---

func TestCommit_SingleItemFullAllocation(t *testing.T) {
	f := newFixture(nil)
	pedido := f.seedPedido()
	item := f.seedItem(pedido.ID, "10")

	result, err := f.service.Commit(context.Background(), []Line{
		{ItemID: item.ID, QtyFromStock: qty("10")},
	}, "ana")
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, items.StatusEmpenhado, result.Items[0].Status)
	assert.Equal(t, "ana", result.Responsavel)

	stored := f.store.items[item.ID]
	require.Len(t, stored.HistoricoEmpenhos, 1)
	assert.True(t, stored.HistoricoEmpenhos[0].QtdeEmpenhadaDoEstoque.Equal(qty("10")))
	assert.Equal(t, "ana", stored.HistoricoEmpenhos[0].Responsavel)
	assert.Equal(t, 2, stored.Version, "commit bumps the version")

	// Single-item order becomes fully allocated.
	assert.Contains(t, result.PedidosEmpenhados, pedido.ID)
	assert.Equal(t, orders.StatusEmpenhado, f.store.pedidos[pedido.ID].StatusPedido)
}

func TestCommit_PartialAllocation(t *testing.T) {
	f := newFixture(nil)
	pedido := f.seedPedido()
	item := f.seedItem(pedido.ID, "10")

	result, err := f.service.Commit(context.Background(), []Line{
		{ItemID: item.ID, QtyFromStock: qty("4")},
	}, "ana")
	require.NoError(t, err)

	assert.Equal(t, items.StatusParcialmenteEmpenhado, result.Items[0].Status)
	assert.Empty(t, result.PedidosEmpenhados)
	assert.Equal(t, orders.StatusAberto, f.store.pedidos[pedido.ID].StatusPedido)
}

func TestCommit_InsufficientStockFailsWholeBatch(t *testing.T) {
	f := newFixture(nil)
	pedido := f.seedPedido()
	good := f.seedItem(pedido.ID, "10")
	bad := f.seedItem(pedido.ID, "5")

	_, err := f.service.Commit(context.Background(), []Line{
		{ItemID: good.ID, QtyFromStock: qty("10")},
		{ItemID: bad.ID, QtyFromStock: qty("6")}, // exceeds quantidade=5
	}, "ana")

	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientBalance(err))

	// Atomicity: the valid line was rolled back with the batch.
	assert.Empty(t, f.store.items[good.ID].HistoricoEmpenhos)
	assert.Empty(t, f.store.items[bad.ID].HistoricoEmpenhos)
	assert.Equal(t, items.StatusIndefinido, f.store.items[good.ID].StatusItem)
}

func TestCommit_ReceivedCapValidated(t *testing.T) {
	f := newFixture(nil)
	pedido := f.seedPedido()
	item := f.seedItem(pedido.ID, "10")
	stored := f.store.items[item.ID]
	stored.HistoricoRecebimentos = []items.ReceiptEvent{
		items.NewReceiptEvent(item.ID, qty("3"), items.ReceiptInicial),
	}

	_, err := f.service.Commit(context.Background(), []Line{
		{ItemID: item.ID, QtyFromReceived: qty("4")}, // only 3 received
	}, "ana")

	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientBalance(err))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "recebido", appErr.Details["source"])
}

func TestCommit_MissingItemFailsBatch(t *testing.T) {
	f := newFixture(nil)
	pedido := f.seedPedido()
	item := f.seedItem(pedido.ID, "10")

	_, err := f.service.Commit(context.Background(), []Line{
		{ItemID: item.ID, QtyFromStock: qty("5")},
		{ItemID: id.New(), QtyFromStock: qty("1")},
	}, "ana")

	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, f.store.items[item.ID].HistoricoEmpenhos)
}

func TestCommit_NoopLinesExcluded(t *testing.T) {
	f := newFixture(nil)
	pedido := f.seedPedido()
	active := f.seedItem(pedido.ID, "10")
	idle := f.seedItem(pedido.ID, "10")

	result, err := f.service.Commit(context.Background(), []Line{
		{ItemID: active.ID, QtyFromStock: qty("10")},
		{ItemID: idle.ID}, // zero on both sources
	}, "ana")
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, active.ID, result.Items[0].ItemID)

	// The no-op line left no trace: no event, no status change.
	assert.Empty(t, f.store.items[idle.ID].HistoricoEmpenhos)
	assert.Equal(t, items.StatusIndefinido, f.store.items[idle.ID].StatusItem)
	assert.Equal(t, 1, f.store.items[idle.ID].Version)
}

func TestCommit_AllZeroLinesIsEmptyCommit(t *testing.T) {
	f := newFixture(nil)
	pedido := f.seedPedido()
	item := f.seedItem(pedido.ID, "10")

	_, err := f.service.Commit(context.Background(), []Line{
		{ItemID: item.ID},
	}, "ana")

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeEmptyCommit, appErr.Code)
}

func TestCommit_ValidationErrors(t *testing.T) {
	f := newFixture(nil)
	pedido := f.seedPedido()
	item := f.seedItem(pedido.ID, "10")

	t.Run("nil item id", func(t *testing.T) {
		_, err := f.service.Commit(context.Background(), []Line{
			{QtyFromStock: qty("1")},
		}, "ana")
		require.Error(t, err)
	})

	t.Run("negative quantity", func(t *testing.T) {
		_, err := f.service.Commit(context.Background(), []Line{
			{ItemID: item.ID, QtyFromStock: qty("-1")},
		}, "ana")
		require.Error(t, err)
	})

	t.Run("duplicate item", func(t *testing.T) {
		_, err := f.service.Commit(context.Background(), []Line{
			{ItemID: item.ID, QtyFromStock: qty("1")},
			{ItemID: item.ID, QtyFromStock: qty("2")},
		}, "ana")
		require.Error(t, err)
	})
}

func TestCommit_StatusNeverRegresses(t *testing.T) {
	f := newFixture(nil)
	pedido := f.seedPedido()
	item := f.seedItem(pedido.ID, "10")

	// Production already separated this item; a later partial allocation
	// must not pull it back.
	stored := f.store.items[item.ID]
	stored.StatusItem = items.StatusSeparadoParaProducao
	stored.HistoricoRecebimentos = []items.ReceiptEvent{
		items.NewReceiptEvent(item.ID, qty("5"), items.ReceiptInicial),
	}

	result, err := f.service.Commit(context.Background(), []Line{
		{ItemID: item.ID, QtyFromReceived: qty("2")},
	}, "ana")
	require.NoError(t, err)

	assert.Equal(t, items.StatusSeparadoParaProducao, result.Items[0].Status)
	assert.Equal(t, items.StatusSeparadoParaProducao, f.store.items[item.ID].StatusItem)
}

func TestCommit_SequentialOverAllocationRejected(t *testing.T) {
	// Item quantidade=10, received 4, first allocation {estoque:3, recebido:2}.
	f := newFixture(nil)
	pedido := f.seedPedido()
	item := f.seedItem(pedido.ID, "10")
	stored := f.store.items[item.ID]
	stored.HistoricoRecebimentos = []items.ReceiptEvent{
		items.NewReceiptEvent(item.ID, qty("4"), items.ReceiptInicial),
	}
	stored.HistoricoEmpenhos = []items.AllocationEvent{
		items.NewAllocationEvent(item.ID, qty("3"), qty("2"), "ana"),
	}

	// Second commit of 7 from stock is legal per the stock cap (3+7=10) and
	// pushes totalAllocated to 12 > quantidade.
	result, err := f.service.Commit(context.Background(), []Line{
		{ItemID: item.ID, QtyFromStock: qty("7")},
	}, "ana")
	require.NoError(t, err)
	assert.Equal(t, items.StatusEmpenhado, result.Items[0].Status)

	final, err := f.repo.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	bal := items.CalculateBalance(final)
	assert.True(t, bal.TotalAllocated.Equal(qty("12")))
	assert.True(t, bal.OverAllocated(final.Quantidade), "over-allocation is detectable")

	// The stock budget is exhausted (3+7 = quantidade); any further stock
	// allocation is rejected. The received pool still has 4-2 = 2 by the
	// per-source cap.
	_, err = f.service.Commit(context.Background(), []Line{
		{ItemID: item.ID, QtyFromStock: qty("1")},
	}, "ana")
	assert.True(t, apperror.IsInsufficientBalance(err))

	_, err = f.service.Commit(context.Background(), []Line{
		{ItemID: item.ID, QtyFromReceived: qty("3")},
	}, "ana")
	assert.True(t, apperror.IsInsufficientBalance(err))
}

func TestCommit_MultipleOrdersAggregatedIndependently(t *testing.T) {
	f := newFixture(nil)
	pedidoA := f.seedPedido()
	pedidoB := f.seedPedido()
	itemA := f.seedItem(pedidoA.ID, "10")
	itemB1 := f.seedItem(pedidoB.ID, "5")
	f.seedItem(pedidoB.ID, "8") // untouched sibling keeps pedidoB open

	result, err := f.service.Commit(context.Background(), []Line{
		{ItemID: itemA.ID, QtyFromStock: qty("10")},
		{ItemID: itemB1.ID, QtyFromStock: qty("5")},
	}, "ana")
	require.NoError(t, err)

	assert.Contains(t, result.PedidosEmpenhados, pedidoA.ID)
	assert.NotContains(t, result.PedidosEmpenhados, pedidoB.ID)
	assert.Equal(t, orders.StatusEmpenhado, f.store.pedidos[pedidoA.ID].StatusPedido)
	assert.Equal(t, orders.StatusAberto, f.store.pedidos[pedidoB.ID].StatusPedido)
}

func TestCommit_AggregationFailureDoesNotRollBack(t *testing.T) {
	f := newFixture(nil)
	pedido := f.seedPedido()
	item := f.seedItem(pedido.ID, "10")

	// Aggregation's fresh read fails after the commit transaction closed.
	f.store.failListPedido = true

	result, err := f.service.Commit(context.Background(), []Line{
		{ItemID: item.ID, QtyFromStock: qty("10")},
	}, "ana")
	require.NoError(t, err, "aggregation failure is non-fatal")

	assert.NotEmpty(t, result.AggregationWarnings)
	assert.Len(t, f.store.items[item.ID].HistoricoEmpenhos, 1, "allocation stays committed")
	assert.Equal(t, orders.StatusAberto, f.store.pedidos[pedido.ID].StatusPedido)
}

func TestCommit_ResponsavelFallsBackToOperator(t *testing.T) {
	f := newFixture(nil)
	pedido := f.seedPedido()
	item := f.seedItem(pedido.ID, "10")

	ctx := appctx.WithOperator(context.Background(), &appctx.Operator{Name: "rui"})
	result, err := f.service.Commit(ctx, []Line{
		{ItemID: item.ID, QtyFromStock: qty("1")},
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "rui", result.Responsavel)
	assert.Equal(t, "rui", f.store.items[item.ID].HistoricoEmpenhos[0].Responsavel)
}

func TestCommit_AuditEntriesRideTheCommit(t *testing.T) {
	auditor := &recordingAuditor{}
	f := newFixture(auditor)
	pedido := f.seedPedido()
	item := f.seedItem(pedido.ID, "10")

	_, err := f.service.Commit(context.Background(), []Line{
		{ItemID: item.ID, QtyFromStock: qty("4")},
	}, "ana")
	require.NoError(t, err)

	require.Len(t, auditor.entries, 1)
	assert.Equal(t, "4", auditor.entries[0]["qtdeEmpenhadaDoEstoque"])
	assert.Equal(t, string(items.StatusParcialmenteEmpenhado), auditor.entries[0]["statusItem"])
}

func TestCommit_AuditFailureRollsBackBatch(t *testing.T) {
	auditor := &recordingAuditor{fail: true}
	f := newFixture(auditor)
	pedido := f.seedPedido()
	item := f.seedItem(pedido.ID, "10")

	_, err := f.service.Commit(context.Background(), []Line{
		{ItemID: item.ID, QtyFromStock: qty("4")},
	}, "ana")

	require.Error(t, err)
	assert.Empty(t, f.store.items[item.ID].HistoricoEmpenhos)
	assert.Equal(t, items.StatusIndefinido, f.store.items[item.ID].StatusItem)
}
