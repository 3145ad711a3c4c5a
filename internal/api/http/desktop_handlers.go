package http

import (
	"net/http"

	"github.com/GriffinCanCode/WebOS/internal/domain/desktop"
	"github.com/GriffinCanCode/WebOS/internal/domain/geometry"
	"github.com/GriffinCanCode/WebOS/internal/shared/id"
	"github.com/GriffinCanCode/WebOS/internal/shared/types"
	"github.com/GriffinCanCode/WebOS/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// LaunchRequest opens a window for an app
type LaunchRequest struct {
	AppID     string `json:"app_id"`
	Focus     *bool  `json:"focus,omitempty"`
	Minimized bool   `json:"minimized,omitempty"`
}

// ListApps lists every registered app
func (h *Handlers) ListApps(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"apps":  h.catalog.List(),
		"total": h.catalog.Len(),
	})
}

// GetApp returns one app definition
func (h *Handlers) GetApp(c *gin.Context) {
	appID := c.Param("id")
	if err := utils.ValidateID(appID, "app_id", true); err != nil {
		badRequest(c, err)
		return
	}

	def, ok := h.catalog.Get(appID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "app not found"})
		return
	}
	c.JSON(http.StatusOK, def)
}

// GetDesktop returns the full window manager state
func (h *Handlers) GetDesktop(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"desktop": h.desktop.Snapshot(),
		"stats":   h.desktop.Stats(),
	})
}

// ListWindows lists open windows bottom to top
func (h *Handlers) ListWindows(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"windows": h.desktop.Windows(),
		"stats":   h.desktop.Stats(),
	})
}

// LaunchWindow opens (or, for singletons, reuses) a window
func (h *Handlers) LaunchWindow(c *gin.Context) {
	var req LaunchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateID(req.AppID, "app_id", true); err != nil {
		badRequest(c, err)
		return
	}

	wid, err := h.desktop.Launch(req.AppID, desktop.LaunchOptions{
		Focus:     req.Focus,
		Minimized: req.Minimized,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	win, _ := h.desktop.Get(wid)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"window":  win,
	})
}

// GetWindow returns one window and its state
func (h *Handlers) GetWindow(c *gin.Context) {
	wid, ok := windowParam(c)
	if !ok {
		return
	}

	snap := h.desktop.Snapshot()
	for _, win := range snap.Windows {
		if win.ID == wid {
			c.JSON(http.StatusOK, gin.H{
				"window": win,
				"state":  snap.State(win),
			})
			return
		}
	}
	h.respondError(c, desktop.ErrWindowNotFound)
}

// CloseWindow closes a window
func (h *Handlers) CloseWindow(c *gin.Context) {
	h.windowOp(c, h.desktop.Close)
}

// FocusWindow raises a window and gives it focus
func (h *Handlers) FocusWindow(c *gin.Context) {
	h.windowOp(c, h.desktop.Focus)
}

// MinimizeWindow hides a window
func (h *Handlers) MinimizeWindow(c *gin.Context) {
	h.windowOp(c, h.desktop.Minimize)
}

// ToggleWindow is the taskbar click: restore a minimized window, minimize an open one
func (h *Handlers) ToggleWindow(c *gin.Context) {
	h.windowOp(c, h.desktop.ToggleMinimize)
}

// MoveWindow sets a window's position
func (h *Handlers) MoveWindow(c *gin.Context) {
	wid, ok := windowParam(c)
	if !ok {
		return
	}

	var pos types.Position
	if err := c.ShouldBindJSON(&pos); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.desktop.Move(wid, pos); err != nil {
		h.respondError(c, err)
		return
	}
	h.respondWindow(c, wid)
}

// ResizeWindow sets a window's full geometry. Sizes below the minimum are raised to it.
func (h *Handlers) ResizeWindow(c *gin.Context) {
	wid, ok := windowParam(c)
	if !ok {
		return
	}

	var rect types.Rect
	if err := c.ShouldBindJSON(&rect); err != nil {
		badRequest(c, err)
		return
	}
	rect.Width = max(rect.Width, geometry.MinWidth)
	rect.Height = max(rect.Height, geometry.MinHeight)

	if err := h.desktop.Resize(wid, rect); err != nil {
		h.respondError(c, err)
		return
	}
	h.respondWindow(c, wid)
}

func (h *Handlers) windowOp(c *gin.Context, op func(id.WindowID) error) {
	wid, ok := windowParam(c)
	if !ok {
		return
	}
	if err := op(wid); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"desktop": h.desktop.Snapshot(),
	})
}

func (h *Handlers) respondWindow(c *gin.Context, wid id.WindowID) {
	win, ok := h.desktop.Get(wid)
	if !ok {
		h.respondError(c, desktop.ErrWindowNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"window":  win,
	})
}

func windowParam(c *gin.Context) (id.WindowID, bool) {
	raw := c.Param("id")
	if err := utils.ValidateID(raw, "window_id", true); err != nil {
		badRequest(c, err)
		return "", false
	}
	return id.WindowID(raw), true
}
