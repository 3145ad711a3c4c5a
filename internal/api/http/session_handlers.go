package http

import (
	"net/http"

	"github.com/GriffinCanCode/WebOS/internal/shared/id"
	"github.com/GriffinCanCode/WebOS/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// SaveSessionRequest names a layout snapshot
type SaveSessionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SaveSession saves the current desktop layout
func (h *Handlers) SaveSession(c *gin.Context) {
	var req SaveSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateName(req.Name, "name"); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateString(req.Description, "description", 0, utils.MaxNameLength*4, false); err != nil {
		badRequest(c, err)
		return
	}

	session, err := h.sessions.Save(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": session.ToMetadata(),
	})
}

// ListSessions lists all saved sessions
func (h *Handlers) ListSessions(c *gin.Context) {
	ctx := c.Request.Context()

	sessions, err := h.sessions.List(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	stats, err := h.sessions.Stats(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"stats":    stats,
	})
}

// GetSession returns a session with its layout
func (h *Handlers) GetSession(c *gin.Context) {
	sid, ok := sessionParam(c)
	if !ok {
		return
	}

	session, err := h.sessions.Load(c.Request.Context(), sid)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// RestoreSession replaces the open windows with a saved layout
func (h *Handlers) RestoreSession(c *gin.Context) {
	sid, ok := sessionParam(c)
	if !ok {
		return
	}

	result, err := h.sessions.Restore(c.Request.Context(), sid)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
		"desktop": h.desktop.Snapshot(),
	})
}

// DeleteSession deletes a saved session
func (h *Handlers) DeleteSession(c *gin.Context) {
	sid, ok := sessionParam(c)
	if !ok {
		return
	}

	if err := h.sessions.Delete(c.Request.Context(), sid); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": sid,
	})
}

func sessionParam(c *gin.Context) (id.SessionID, bool) {
	raw := c.Param("id")
	if err := utils.ValidateID(raw, "session_id", true); err != nil {
		badRequest(c, err)
		return "", false
	}
	return id.SessionID(raw), true
}
