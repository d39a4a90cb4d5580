package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/allocation"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/infrastructure/http/v1/dto"
)

// AllocationsHandler serves the allocation commit endpoint.
type AllocationsHandler struct {
	*BaseHandler
	service *allocation.Service
}

// NewAllocationsHandler creates an allocations handler.
func NewAllocationsHandler(base *BaseHandler, service *allocation.Service) *AllocationsHandler {
	return &AllocationsHandler{BaseHandler: base, service: service}
}

// Commit handles POST /allocations. The whole batch commits atomically;
// a single invalid line fails everything with nothing written.
func (h *AllocationsHandler) Commit(c *gin.Context) {
	var req dto.CommitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lines, err := req.ToLines()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.Commit(c.Request.Context(), lines, req.Responsavel)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}
