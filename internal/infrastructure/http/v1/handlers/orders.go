package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/items"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/orders"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/infrastructure/http/v1/dto"
)

// OrdersHandler serves order creation and lookup.
type OrdersHandler struct {
	*BaseHandler
	service *orders.Service
	items   *items.Service
}

// NewOrdersHandler creates an orders handler.
func NewOrdersHandler(base *BaseHandler, service *orders.Service, itemsSvc *items.Service) *OrdersHandler {
	return &OrdersHandler{BaseHandler: base, service: service, items: itemsSvc}
}

// Create handles POST /pedidos.
func (h *OrdersHandler) Create(c *gin.Context) {
	var req dto.CreatePedidoRequest
	if !h.BindJSON(c, &req) {
		return
	}

	pedido := orders.NewPedido(req.ClienteNome, req.TipoProjeto)
	if err := h.service.Create(c.Request.Context(), pedido); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, pedido.ID.String())
}

// Get handles GET /pedidos/:id, returning the order with its items.
func (h *OrdersHandler) Get(c *gin.Context) {
	pedidoID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	pedido, err := h.service.GetByID(ctx, pedidoID)
	if err != nil {
		h.Error(c, err)
		return
	}

	f := items.DefaultListFilter()
	f.PedidoID = &pedidoID
	f.Limit = 0 // all items of the order
	group, err := h.items.List(ctx, f)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.PedidoDetailResponse{
		Pedido: pedido,
		Items:  group,
	})
}
