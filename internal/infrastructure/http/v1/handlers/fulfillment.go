package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/fulfillment"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/infrastructure/http/v1/dto"
)

// FulfillmentHandler serves the material-list rollup.
type FulfillmentHandler struct {
	*BaseHandler
	service *fulfillment.Service
}

// NewFulfillmentHandler creates a fulfillment handler.
func NewFulfillmentHandler(base *BaseHandler, service *fulfillment.Service) *FulfillmentHandler {
	return &FulfillmentHandler{BaseHandler: base, service: service}
}

// MaterialListStatus handles GET /material-lists/:lista/status.
func (h *FulfillmentHandler) MaterialListStatus(c *gin.Context) {
	lista := c.Param("lista")

	report, err := h.service.MaterialListStatus(c.Request.Context(), lista)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromReport(lista, report))
}
