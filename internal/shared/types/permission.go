package types

import (
	"time"

	"github.com/GriffinCanCode/WebOS/internal/shared/id"
)

// Channel is a named category of sensitive capability
type Channel string

const (
	ChannelStorage   Channel = "storage"
	ChannelNetwork   Channel = "network"
	ChannelClipboard Channel = "clipboard"
)

// Decision is the cached outcome for a channel
type Decision string

const (
	DecisionUnset   Decision = "unset"
	DecisionGranted Decision = "granted"
	DecisionDenied  Decision = "denied"
)

// Prompt is a pending authorization request as shown to the user
type Prompt struct {
	ID          id.PromptID `json:"id"`
	Channel     Channel     `json:"channel"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ChannelInfo describes a channel and its decision so far
type ChannelInfo struct {
	Channel     Channel  `json:"channel"`
	Description string   `json:"description"`
	Decision    Decision `json:"decision"`
}

// PermissionSnapshot is what gateway observers receive on every change.
// Pending is in FIFO order; the gateway presents only the first entry.
type PermissionSnapshot struct {
	Pending  []Prompt      `json:"pending"`
	Channels []ChannelInfo `json:"channels"`
}
