package ws

import (
	"time"

	"github.com/GriffinCanCode/WebOS/internal/domain/geometry"
	"github.com/GriffinCanCode/WebOS/internal/shared/id"
	"github.com/GriffinCanCode/WebOS/internal/shared/types"
)

// Client → server message types
const (
	TypeDragStart     = "drag_start"
	TypeResizeStart   = "resize_start"
	TypePointerMove   = "pointer_move"
	TypePointerUp     = "pointer_up"
	TypeGestureCancel = "gesture_cancel"
	TypeResolvePrompt = "resolve_prompt"
	TypePing          = "ping"
)

// Server → client message types
const (
	TypeHello          = "hello"
	TypeDesktop        = "desktop"
	TypeWorkers        = "workers"
	TypePrompt         = "prompt"
	TypeGestureEnd     = "gesture_end"
	TypePromptResolved = "prompt_resolved"
	TypePong           = "pong"
	TypeError          = "error"
)

// ClientMessage is anything a view sends. Pointer coordinates are in
// desktop space.
type ClientMessage struct {
	Type      string         `json:"type"`
	WindowID  id.WindowID    `json:"window_id,omitempty"`
	Direction string         `json:"direction,omitempty"`
	X         int            `json:"x"`
	Y         int            `json:"y"`
	PromptID  id.PromptID    `json:"prompt_id,omitempty"`
	Decision  types.Decision `json:"decision,omitempty"`
}

func (m ClientMessage) pointer() geometry.Point {
	return geometry.Point{X: m.X, Y: m.Y}
}

// ServerMessage is anything pushed to a view. Only the fields relevant to
// Type are set.
type ServerMessage struct {
	Type        string                    `json:"type"`
	Desktop     *types.DesktopSnapshot    `json:"desktop,omitempty"`
	Workers     *types.PoolSnapshot       `json:"workers,omitempty"`
	Permissions *types.PermissionSnapshot `json:"permissions,omitempty"`
	Prompt      *types.Prompt             `json:"prompt,omitempty"`
	WindowID    id.WindowID               `json:"window_id,omitempty"`
	Rect        *types.Rect               `json:"rect,omitempty"`
	Request     string                    `json:"request,omitempty"`
	Message     string                    `json:"message,omitempty"`
	Timestamp   int64                     `json:"timestamp"`
}

func newMessage(msgType string) ServerMessage {
	return ServerMessage{Type: msgType, Timestamp: time.Now().Unix()}
}

func errorMessage(request string, wid id.WindowID, err error) ServerMessage {
	msg := newMessage(TypeError)
	msg.Request = request
	msg.WindowID = wid
	msg.Message = err.Error()
	return msg
}
