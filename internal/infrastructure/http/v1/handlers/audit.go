package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/oliverlleo/SistemaCompras-sub001/internal/infrastructure/storage/postgres"
)

// AuditHandler serves audit history lookups.
type AuditHandler struct {
	*BaseHandler
	audit *postgres.AuditService
}

// NewAuditHandler creates an audit handler.
func NewAuditHandler(base *BaseHandler, audit *postgres.AuditService) *AuditHandler {
	return &AuditHandler{BaseHandler: base, audit: audit}
}

// ItemHistory handles GET /items/:id/audit.
func (h *AuditHandler) ItemHistory(c *gin.Context) {
	itemID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	entries, err := h.audit.GetEntityHistory(c.Request.Context(), "item", itemID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"entries": entries, "count": len(entries)})
}
