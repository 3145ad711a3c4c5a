// Package types provides shared data structures for the desktop backend.
//
// Core Types:
//   - AppDefinition: launchable application and its default presentation
//   - Window: live on-screen occurrence of an app
//   - DesktopSnapshot: windows, taskbar and focus at one instant
//   - StoredFile: a file held by the virtual file store
//   - Prompt, Channel, Decision: permission broker vocabulary
//   - TaskRequest, TaskResponse, PoolSnapshot: worker pool protocol
//
// Geometry:
//   - Position, Size, Rect: window placement in desktop pixels
//
// Example Usage:
//
//	def := types.AppDefinition{
//	    ID:          "calculator",
//	    Title:       "Calculator",
//	    Singleton:   true,
//	    DefaultSize: types.Size{Width: 320, Height: 480},
//	}
package types
