// Package session saves and restores desktop layouts.
//
// A session records every open window (app, geometry, minimized flag,
// stacking order and focus) and is stored as JSON in the same key-value
// backend the file store uses, under its own key namespace.
//
// Restoration Process:
//  1. Load the session from the backend
//  2. Close every open window
//  3. Relaunch windows bottom to top so stacking order is preserved
//  4. Reapply saved geometry and minimized state
//  5. Refocus the window that was focused
//
// Apps that are no longer registered are skipped and reported.
//
// Example Usage:
//
//	manager := session.NewManager(desktopMgr, backend)
//	saved, err := manager.Save(ctx, "Work", "calculator and notes")
//	result, err := manager.Restore(ctx, saved.ID)
package session
