package types

import (
	"time"

	"github.com/GriffinCanCode/WebOS/internal/shared/id"
)

// WindowSnapshot is one window as stored in a saved layout
type WindowSnapshot struct {
	AppID     string   `json:"app_id"`
	Title     string   `json:"title"`
	Position  Position `json:"position"`
	Size      Size     `json:"size"`
	Minimized bool     `json:"minimized"`
	Focused   bool     `json:"focused,omitempty"`
}

// Layout is the desktop arrangement. Windows are ordered bottom to top.
type Layout struct {
	Windows []WindowSnapshot `json:"windows"`
	Taskbar []string         `json:"taskbar"`
}

// Session is a named, saved layout
type Session struct {
	ID          id.SessionID `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Layout      Layout       `json:"layout"`
}

// SessionMetadata is a session without its layout
type SessionMetadata struct {
	ID          id.SessionID `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	WindowCount int          `json:"window_count"`
}

// ToMetadata strips the layout
func (s *Session) ToMetadata() SessionMetadata {
	return SessionMetadata{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		WindowCount: len(s.Layout.Windows),
	}
}

// SessionStats contains session manager statistics
type SessionStats struct {
	TotalSessions int        `json:"total_sessions"`
	LastSaved     *time.Time `json:"last_saved,omitempty"`
	LastRestored  *time.Time `json:"last_restored,omitempty"`
}

// RestoreResult reports what a restore brought back
type RestoreResult struct {
	Session  SessionMetadata `json:"session"`
	Restored int             `json:"restored"`
	Skipped  []string        `json:"skipped,omitempty"`
}
