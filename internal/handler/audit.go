package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fleetledger/internal/service"
)

// AuditHandler handles HTTP requests for the audit trail.
type AuditHandler struct {
	auditService *service.AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// ListByEntity handles GET /v1/audit?entity_id=...&limit=...
func (h *AuditHandler) ListByEntity(c *gin.Context) {
	entityID := c.Query("entity_id")
	if entityID == "" {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: "entity_id query parameter is required"})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	entries, err := h.auditService.ListByEntity(c.Request.Context(), entityID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"entity_id": entityID, "entries": entries})
}
