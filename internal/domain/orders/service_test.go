package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/id"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/types"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/items"
)

// stubItems overrides only ListByPedido; the embedded interface panics on
// anything else, which is what we want in these tests.
type stubItems struct {
	items.Repository
	byPedido map[id.ID][]*items.Item
	err      error
}

func (s *stubItems) ListByPedido(ctx context.Context, pedidoID id.ID) ([]*items.Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byPedido[pedidoID], nil
}

type stubPedidos struct {
	pedidos map[id.ID]*Pedido
	updates []Status
}

func (s *stubPedidos) Create(ctx context.Context, pedido *Pedido) error {
	s.pedidos[pedido.ID] = pedido
	return nil
}

func (s *stubPedidos) GetByID(ctx context.Context, pedidoID id.ID) (*Pedido, error) {
	p, ok := s.pedidos[pedidoID]
	if !ok {
		return nil, errors.New("pedido not found")
	}
	c := *p
	return &c, nil
}

func (s *stubPedidos) UpdateStatus(ctx context.Context, pedidoID id.ID, status Status) error {
	s.pedidos[pedidoID].StatusPedido = status
	s.updates = append(s.updates, status)
	return nil
}

func itemWithStatus(pedidoID id.ID, status items.Status) *items.Item {
	it := items.NewItem(pedidoID, types.MustQuantity("10"))
	it.StatusItem = status
	return it
}

func TestRecalculateStatus_AllTerminalMarksEmpenhado(t *testing.T) {
	pedido := NewPedido("Cliente", "industrial")
	repo := &stubPedidos{pedidos: map[id.ID]*Pedido{pedido.ID: pedido}}
	itemsRepo := &stubItems{byPedido: map[id.ID][]*items.Item{
		pedido.ID: {
			itemWithStatus(pedido.ID, items.StatusEmpenhado),
			itemWithStatus(pedido.ID, items.StatusSeparadoParaProducao),
		},
	}}

	svc := NewService(repo, itemsRepo)
	status, err := svc.RecalculateStatus(context.Background(), pedido.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusEmpenhado, status)
	assert.Len(t, repo.updates, 1)
}

func TestRecalculateStatus_NonTerminalItemKeepsOrderOpen(t *testing.T) {
	pedido := NewPedido("Cliente", "industrial")
	repo := &stubPedidos{pedidos: map[id.ID]*Pedido{pedido.ID: pedido}}
	itemsRepo := &stubItems{byPedido: map[id.ID][]*items.Item{
		pedido.ID: {
			itemWithStatus(pedido.ID, items.StatusEmpenhado),
			itemWithStatus(pedido.ID, items.StatusParcialmenteEmpenhado),
		},
	}}

	svc := NewService(repo, itemsRepo)
	status, err := svc.RecalculateStatus(context.Background(), pedido.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusAberto, status)
	assert.Empty(t, repo.updates, "no write when the order stays open")
}

func TestRecalculateStatus_Idempotent(t *testing.T) {
	pedido := NewPedido("Cliente", "industrial")
	pedido.StatusPedido = StatusEmpenhado
	repo := &stubPedidos{pedidos: map[id.ID]*Pedido{pedido.ID: pedido}}
	itemsRepo := &stubItems{byPedido: map[id.ID][]*items.Item{
		pedido.ID: {itemWithStatus(pedido.ID, items.StatusEmpenhado)},
	}}

	svc := NewService(repo, itemsRepo)
	status, err := svc.RecalculateStatus(context.Background(), pedido.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusEmpenhado, status)
	assert.Empty(t, repo.updates, "already Empenhado, write skipped")
}

func TestRecalculateStatus_EmptyOrderNeverTerminal(t *testing.T) {
	pedido := NewPedido("Cliente", "industrial")
	repo := &stubPedidos{pedidos: map[id.ID]*Pedido{pedido.ID: pedido}}
	itemsRepo := &stubItems{byPedido: map[id.ID][]*items.Item{}}

	svc := NewService(repo, itemsRepo)
	status, err := svc.RecalculateStatus(context.Background(), pedido.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusAberto, status)
	assert.Empty(t, repo.updates)
}

func TestRecalculateStatus_ItemsReadFailurePropagates(t *testing.T) {
	pedido := NewPedido("Cliente", "industrial")
	repo := &stubPedidos{pedidos: map[id.ID]*Pedido{pedido.ID: pedido}}
	itemsRepo := &stubItems{err: errors.New("storage unavailable")}

	svc := NewService(repo, itemsRepo)
	_, err := svc.RecalculateStatus(context.Background(), pedido.ID)
	assert.Error(t, err)
}

func TestPedidoValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p := NewPedido("Cliente", "industrial")
		assert.NoError(t, p.Validate(context.Background()))
	})

	t.Run("missing cliente", func(t *testing.T) {
		p := NewPedido("", "industrial")
		assert.Error(t, p.Validate(context.Background()))
	})
}
