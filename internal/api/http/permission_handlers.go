package http

import (
	"net/http"

	"github.com/GriffinCanCode/WebOS/internal/shared/id"
	"github.com/GriffinCanCode/WebOS/internal/shared/types"
	"github.com/GriffinCanCode/WebOS/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// ResolveRequest answers a permission prompt
type ResolveRequest struct {
	Decision types.Decision `json:"decision"`
}

// GetPermissions returns the prompt queue and every channel's decision
func (h *Handlers) GetPermissions(c *gin.Context) {
	snap := h.broker.Snapshot()
	head, _ := h.broker.Head()

	c.JSON(http.StatusOK, gin.H{
		"pending":  snap.Pending,
		"channels": snap.Channels,
		"head":     head,
	})
}

// ResolvePrompt records the user's answer for a prompt
func (h *Handlers) ResolvePrompt(c *gin.Context) {
	raw := c.Param("id")
	if err := utils.ValidateID(raw, "prompt_id", true); err != nil {
		badRequest(c, err)
		return
	}

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.broker.Resolve(id.PromptID(raw), req.Decision); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"prompt_id": raw,
		"decision":  req.Decision,
	})
}
