package types

import "github.com/GriffinCanCode/WebOS/internal/shared/id"

// WindowState is the per-window state machine position
type WindowState string

const (
	WindowFocused   WindowState = "open-focused"
	WindowUnfocused WindowState = "open-unfocused"
	WindowMinimized WindowState = "minimized"
)

// Window represents a live window instance
type Window struct {
	ID        id.WindowID `json:"id"`
	AppID     string      `json:"app_id"`
	Title     string      `json:"title"`
	Icon      string      `json:"icon"`
	Component string      `json:"component"`
	Size      Size        `json:"size"`
	Position  Position    `json:"position"`
	Minimized bool        `json:"minimized"`
	ZIndex    int64       `json:"z_index"`
}

// Rect returns the window geometry
func (w Window) Rect() Rect {
	return NewRect(w.Position, w.Size)
}

// DesktopSnapshot is a consistent view of the window manager
type DesktopSnapshot struct {
	Windows []Window    `json:"windows"`
	Taskbar []string    `json:"taskbar"`
	Focused id.WindowID `json:"focused,omitempty"`
	Version uint64      `json:"version"`
}

// State reports the state machine position of a window in this snapshot
func (s DesktopSnapshot) State(w Window) WindowState {
	switch {
	case w.Minimized:
		return WindowMinimized
	case w.ID == s.Focused:
		return WindowFocused
	default:
		return WindowUnfocused
	}
}

// DesktopStats contains window manager statistics
type DesktopStats struct {
	TotalWindows     int         `json:"total_windows"`
	MinimizedWindows int         `json:"minimized_windows"`
	TaskbarEntries   int         `json:"taskbar_entries"`
	FocusedWindowID  id.WindowID `json:"focused_window_id,omitempty"`
}
