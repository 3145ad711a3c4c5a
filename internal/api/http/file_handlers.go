package http

import (
	"net/http"
	"strings"

	"github.com/GriffinCanCode/WebOS/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// WriteFileRequest carries the new file body
type WriteFileRequest struct {
	Content string `json:"content"`
}

// RenameFileRequest names the destination of a rename
type RenameFileRequest struct {
	Path string `json:"path"`
}

// ListFiles lists stored files, newest first, optionally filtered by ?pattern=
func (h *Handlers) ListFiles(c *gin.Context) {
	files, err := h.files.ListFiles(c.Request.Context(), c.Query("pattern"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"files": files,
		"total": len(files),
	})
}

// ReadFile returns one file
func (h *Handlers) ReadFile(c *gin.Context) {
	path, ok := filePath(c)
	if !ok {
		return
	}

	file, found, err := h.files.ReadFile(c.Request.Context(), path)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.JSON(http.StatusOK, file)
}

// WriteFile creates or overwrites a file
func (h *Handlers) WriteFile(c *gin.Context) {
	path, ok := filePath(c)
	if !ok {
		return
	}

	var req WriteFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateContentSize(req.Content); err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	}

	file, err := h.files.WriteFile(c.Request.Context(), path, req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"file":    file,
	})
}

// DeleteFile removes a file
func (h *Handlers) DeleteFile(c *gin.Context) {
	path, ok := filePath(c)
	if !ok {
		return
	}

	existed, err := h.files.DeleteFile(c.Request.Context(), path)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !existed {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"path":    path,
	})
}

// RenameFile moves a file to the path in the body
func (h *Handlers) RenameFile(c *gin.Context) {
	from, ok := filePath(c)
	if !ok {
		return
	}

	var req RenameFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	to := strings.TrimPrefix(req.Path, "/")
	if err := utils.ValidatePath(to); err != nil {
		badRequest(c, err)
		return
	}

	file, err := h.files.RenameFile(c.Request.Context(), from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if file == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"file":    file,
	})
}

// ClearFiles removes every stored file
func (h *Handlers) ClearFiles(c *gin.Context) {
	removed, err := h.files.Clear(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"removed": removed,
	})
}

// StorageUsage reports stored bytes against the quota
func (h *Handlers) StorageUsage(c *gin.Context) {
	usage, err := h.files.Usage(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"usage":     usage,
		"available": usage.Available(),
	})
}

// filePath reads the catch-all path parameter. REST paths are relative to
// the store root, so the leading slash is dropped.
func filePath(c *gin.Context) (string, bool) {
	path := strings.TrimPrefix(c.Param("path"), "/")
	if err := utils.ValidatePath(path); err != nil {
		badRequest(c, err)
		return "", false
	}
	return path, true
}
