package http

import "github.com/gin-gonic/gin"

// Register mounts every REST route on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/metrics/json", h.MetricsSnapshot)

	// App registry
	r.GET("/apps", h.ListApps)
	r.GET("/apps/:id", h.GetApp)

	// Window manager
	r.GET("/desktop", h.GetDesktop)
	r.GET("/windows", h.ListWindows)
	r.POST("/windows", h.LaunchWindow)
	r.GET("/windows/:id", h.GetWindow)
	r.DELETE("/windows/:id", h.CloseWindow)
	r.POST("/windows/:id/focus", h.FocusWindow)
	r.POST("/windows/:id/minimize", h.MinimizeWindow)
	r.POST("/windows/:id/toggle", h.ToggleWindow)
	r.PUT("/windows/:id/position", h.MoveWindow)
	r.PUT("/windows/:id/geometry", h.ResizeWindow)

	// Permission gateway
	r.GET("/permissions", h.GetPermissions)
	r.POST("/permissions/:id/resolve", h.ResolvePrompt)

	// Virtual file store
	r.GET("/files", h.ListFiles)
	r.DELETE("/files", h.ClearFiles)
	r.GET("/files/*path", h.ReadFile)
	r.PUT("/files/*path", h.WriteFile)
	r.DELETE("/files/*path", h.DeleteFile)
	r.PATCH("/files/*path", h.RenameFile)
	r.GET("/storage", h.StorageUsage)

	// Worker pool
	r.GET("/jobs", h.ListJobs)
	r.POST("/jobs", h.SubmitJob)
	r.GET("/jobs/:id", h.GetJob)

	// Sessions
	r.GET("/sessions", h.ListSessions)
	r.POST("/sessions", h.SaveSession)
	r.GET("/sessions/:id", h.GetSession)
	r.POST("/sessions/:id/restore", h.RestoreSession)
	r.DELETE("/sessions/:id", h.DeleteSession)

	// Frontend log shipping
	r.POST("/logs", h.StreamLogs)
}
