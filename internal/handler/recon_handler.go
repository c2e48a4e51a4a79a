package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gstrecon/internal/domain"
	"gstrecon/internal/service"
)

// ReconHandler handles record loading and reconciliation endpoints.
type ReconHandler struct {
	svc service.ReconService
}

// NewReconHandler creates a new ReconHandler.
func NewReconHandler(svc service.ReconService) *ReconHandler {
	return &ReconHandler{svc: svc}
}

// LoadExtractionRequest is the body for POST /sessions/:id/invoices.
// Records are loosely typed on purpose; the normalizer absorbs whatever
// fields the upstream extractor managed to populate.
type LoadExtractionRequest struct {
	Invoices []domain.RawRecord `json:"invoices" binding:"required"`
}

// LoadExtraction handles POST /sessions/:id/invoices
func (h *ReconHandler) LoadExtraction(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req LoadExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invoices array is required")
		return
	}
	total, err := h.svc.LoadExtraction(id, req.Invoices)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"session_id": id, "loaded": len(req.Invoices), "total": total})
}

// LoadStatement handles POST /sessions/:id/statement
func (h *ReconHandler) LoadStatement(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var payload domain.StatementPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "malformed statement payload")
		return
	}
	if err := h.svc.LoadStatement(id, &payload); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"session_id": id, "invoices": len(payload.Invoices), "period": payload.Period})
}

// Reconcile handles POST /sessions/:id/reconcile
func (h *ReconHandler) Reconcile(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	result, err := h.svc.Reconcile(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"session_id": id, "report_card": result.ReportCard})
}

// Result handles GET /sessions/:id/result
func (h *ReconHandler) Result(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	result, err := h.svc.Result(id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// ListRuns handles GET /runs
func (h *ReconHandler) ListRuns(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			RespondError(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be between 1 and 200")
			return
		}
		limit = n
	}
	runs, err := h.svc.ListRuns(c.Request.Context(), limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, runs)
}
