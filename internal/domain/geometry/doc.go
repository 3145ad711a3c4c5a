// Package geometry turns pointer gestures into window geometry.
//
// Resize and Drag are pure functions over rectangles. A Tracker holds the
// gestures of one view (one websocket connection) and forwards every frame
// to a Sink without smoothing or throttling, so the window manager always
// holds the latest frame.
package geometry
