package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gstrecon/internal/service"
)

// SessionHandler handles reconciliation session lifecycle endpoints.
type SessionHandler struct {
	svc service.ReconService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(svc service.ReconService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// CreateSessionRequest is the body for POST /sessions.
type CreateSessionRequest struct {
	ClientName string `json:"client_name" binding:"required"`
	Period     string `json:"period" binding:"required"`
}

// Create handles POST /sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "client_name and period are required")
		return
	}
	sess := h.svc.CreateSession(req.ClientName, req.Period)
	RespondCreated(c, sess)
}

// Get handles GET /sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	sess, err := h.svc.GetSession(id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, sess)
}

// Progress handles GET /sessions/:id/progress
func (h *SessionHandler) Progress(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	sess, err := h.svc.GetSession(id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"session_id": sess.ID,
		"status":     sess.Status,
		"progress":   sess.Progress,
		"error":      sess.Error,
	})
}

// Delete handles DELETE /sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteSession(id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": id})
}

// sessionID parses the :id path parameter, responding 400 on garbage.
func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_SESSION_ID", "session id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
