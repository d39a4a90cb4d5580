package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/apperror"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/id"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/items"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/infrastructure/http/v1/dto"
)

// ItemsHandler serves item ingestion, lookup, balances and the event write
// paths for receipts and final purchases.
type ItemsHandler struct {
	*BaseHandler
	service *items.Service
}

// NewItemsHandler creates an items handler.
func NewItemsHandler(base *BaseHandler, service *items.Service) *ItemsHandler {
	return &ItemsHandler{BaseHandler: base, service: service}
}

// Create handles POST /items.
func (h *ItemsHandler) Create(c *gin.Context) {
	var req dto.CreateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	pedidoID, err := id.Parse(req.PedidoID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid pedido id").
			WithDetail("pedidoId", req.PedidoID))
		return
	}

	item := req.ToItem(pedidoID)
	if err := h.service.Create(c.Request.Context(), item); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, item.ID.String())
}

// Get handles GET /items/:id.
func (h *ItemsHandler) Get(c *gin.Context) {
	itemID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.service.GetByID(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, item)
}

// GetBalance handles GET /items/:id/balance.
func (h *ItemsHandler) GetBalance(c *gin.Context) {
	itemID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	item, bal, suggestion, err := h.service.GetBalance(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.BalanceResponse{
		Item:       item,
		Balance:    bal,
		Suggestion: suggestion,
	})
}

// List handles GET /items.
func (h *ItemsHandler) List(c *gin.Context) {
	var q dto.ListItemsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	f := items.DefaultListFilter()
	if q.PedidoID != "" {
		pedidoID, err := id.Parse(q.PedidoID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid pedido id").
				WithDetail("pedidoId", q.PedidoID))
			return
		}
		f.PedidoID = &pedidoID
	}
	if q.ListaMaterial != "" {
		f.ListaMaterial = &q.ListaMaterial
	}
	if q.Status != "" {
		status := items.Status(q.Status)
		if !status.Valid() {
			h.Error(c, apperror.NewValidation("unknown item status").
				WithDetail("status", q.Status))
			return
		}
		f.Status = &status
	}
	if q.OrderBy != "" {
		f.OrderBy = q.OrderBy
	}
	if q.Limit > 0 {
		f.Limit = q.Limit
	}
	if q.Offset > 0 {
		f.Offset = q.Offset
	}

	result, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:  result,
		Count:  len(result),
		Limit:  f.Limit,
		Offset: f.Offset,
	})
}

// Search handles POST /items/search: listing with arbitrary field
// comparisons.
func (h *ItemsHandler) Search(c *gin.Context) {
	var req dto.SearchItemsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	f := items.DefaultListFilter()
	f.AdvancedFilters = req.Filters
	if req.OrderBy != "" {
		f.OrderBy = req.OrderBy
	}
	if req.Limit > 0 {
		f.Limit = req.Limit
	}
	if req.Offset > 0 {
		f.Offset = req.Offset
	}

	result, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:  result,
		Count:  len(result),
		Limit:  f.Limit,
		Offset: f.Offset,
	})
}

// RecordReceipt handles POST /items/:id/receipts.
func (h *ItemsHandler) RecordReceipt(c *gin.Context) {
	itemID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.RecordReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}

	event, err := h.service.RecordReceipt(c.Request.Context(), itemID,
		req.Qtde, items.ReceiptType(req.TipoRecebimento))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, event.ID.String())
}

// RecordFinalPurchase handles POST /items/:id/final-purchases.
func (h *ItemsHandler) RecordFinalPurchase(c *gin.Context) {
	itemID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.RecordFinalPurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	event, err := h.service.RecordFinalPurchase(c.Request.Context(), itemID,
		req.QtdeComprada, req.Fornecedor)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, event.ID.String())
}
