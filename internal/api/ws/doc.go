// Package ws provides the real-time stream between the desktop views and
// the backend.
//
// Each connection gets its own gesture tracker, so pointer drags and resizes
// started on a connection are released when it closes. The same stream is
// the permission gateway: pending prompts are pushed to every view and any
// view may answer the head prompt.
//
// Message Types (Client → Server):
//   - drag_start, resize_start: begin a gesture on window_id at (x, y)
//   - pointer_move: continue the gesture
//   - pointer_up: finish it (answered with gesture_end)
//   - gesture_cancel: drop it without a final update
//   - resolve_prompt: answer prompt_id with decision
//   - ping: keep-alive
//
// Message Types (Server → Client):
//   - hello: sent once on connect
//   - desktop: window manager snapshot
//   - workers: pool queue and active jobs
//   - prompt: permission queue, with the head prompt in "prompt"
//   - gesture_end, prompt_resolved, pong: replies
//   - error: a request failed; "request" names its type
//
// State events are coalesced: a view always receives the newest state, not
// necessarily every intermediate one. Desktop snapshots carry a version.
//
// Example Usage:
//
//	handler := ws.NewHandler(desktopMgr, broker, pool, ws.WithLogger(logger))
//	router.GET("/stream", handler.HandleConnection)
package ws
