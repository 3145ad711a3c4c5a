package types

// Position represents a window's top-left corner on the desktop
type Position struct {
	X int `json:"x" yaml:"x" toml:"x"`
	Y int `json:"y" yaml:"y" toml:"y"`
}

// Size represents window dimensions
type Size struct {
	Width  int `json:"width" yaml:"width" toml:"width"`
	Height int `json:"height" yaml:"height" toml:"height"`
}

// Rect is a position and size taken together
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Position returns the rect's top-left corner
func (r Rect) Position() Position {
	return Position{X: r.X, Y: r.Y}
}

// Size returns the rect's dimensions
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// NewRect combines a position and size
func NewRect(pos Position, size Size) Rect {
	return Rect{X: pos.X, Y: pos.Y, Width: size.Width, Height: size.Height}
}

// AppDefinition identifies a launchable application
type AppDefinition struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Icon        string `json:"icon"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`

	// Component names the frontend unit that renders the app. The backend
	// never interprets it; views call it with the window id.
	Component string `json:"component"`

	Singleton       bool      `json:"singleton"`
	AutoStart       bool      `json:"auto_start"`
	AutoMinimized   bool      `json:"auto_minimized,omitempty"`
	DefaultSize     Size      `json:"default_size"`
	DefaultPosition *Position `json:"default_position,omitempty"`
}
