package geometry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/WebOS/internal/shared/id"
	"github.com/GriffinCanCode/WebOS/internal/shared/types"
	"go.uber.org/zap"
)

var (
	// ErrGestureActive is returned when a window already has a gesture in progress
	ErrGestureActive = errors.New("gesture already active for window")

	// ErrNoGesture is returned for pointer events on a window with no gesture
	ErrNoGesture = errors.New("no active gesture for window")

	// ErrTrackerClosed is returned once the owning view has gone away
	ErrTrackerClosed = errors.New("gesture tracker closed")
)

// Sink receives geometry updates. The window manager satisfies it.
type Sink interface {
	Move(wid id.WindowID, pos types.Position) error
	Resize(wid id.WindowID, rect types.Rect) error
}

// Kind distinguishes drags from resizes
type Kind string

const (
	KindDrag   Kind = "drag"
	KindResize Kind = "resize"
)

type gesture struct {
	kind   Kind
	dir    Direction
	anchor Point // pointer offset inside the window for drags, start pointer for resizes
	start  types.Rect
}

// frame computes the geometry for a pointer location
func (g *gesture) frame(p Point, bounds *Bounds) types.Rect {
	if g.kind == KindDrag {
		pos := Drag(p, g.anchor, g.start.Size(), bounds)
		return types.NewRect(pos, g.start.Size())
	}
	return Resize(g.dir, p.Sub(g.anchor), g.start, bounds)
}

// TrackerOption configures a Tracker
type TrackerOption func(*Tracker)

// WithBounds keeps every reported frame inside b
func WithBounds(b Bounds) TrackerOption {
	return func(t *Tracker) {
		t.bounds = &b
	}
}

// WithTrackerLogger sets the tracker logger
func WithTrackerLogger(logger *zap.Logger) TrackerOption {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// Tracker turns one view's pointer stream into geometry updates. A gesture
// exists only between Begin* and End/Cancel; an idle tracker holds nothing.
// Close releases every gesture and must be called when the view goes away.
type Tracker struct {
	sink   Sink
	bounds *Bounds
	logger *zap.Logger

	mu       sync.Mutex
	gestures map[id.WindowID]*gesture
	closed   bool
}

// NewTracker creates a tracker reporting to sink
func NewTracker(sink Sink, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		sink:     sink,
		logger:   zap.NewNop(),
		gestures: make(map[id.WindowID]*gesture),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// BeginDrag starts dragging wid. The pointer's offset from the window's
// top-left corner is kept for the rest of the gesture.
func (t *Tracker) BeginDrag(wid id.WindowID, pointer Point, start types.Rect) error {
	return t.begin(wid, &gesture{
		kind:   KindDrag,
		anchor: Point{X: pointer.X - start.X, Y: pointer.Y - start.Y},
		start:  start,
	})
}

// BeginResize starts resizing wid from the given handle
func (t *Tracker) BeginResize(wid id.WindowID, dir Direction, pointer Point, start types.Rect) error {
	if !dir.Valid() {
		return fmt.Errorf("unknown resize direction %q", dir)
	}
	return t.begin(wid, &gesture{
		kind:   KindResize,
		dir:    dir,
		anchor: pointer,
		start:  start,
	})
}

func (t *Tracker) begin(wid id.WindowID, g *gesture) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrTrackerClosed
	}
	if _, busy := t.gestures[wid]; busy {
		return fmt.Errorf("%w: %s", ErrGestureActive, wid)
	}
	t.gestures[wid] = g

	t.logger.Debug("Gesture started",
		zap.String("window_id", wid.String()),
		zap.String("kind", string(g.kind)),
		zap.String("direction", string(g.dir)))
	return nil
}

// Pointer reports the frame for a pointer move. If the window is gone the
// gesture is dropped.
func (t *Tracker) Pointer(wid id.WindowID, p Point) (types.Rect, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, ok := t.gestures[wid]
	if !ok {
		return types.Rect{}, fmt.Errorf("%w: %s", ErrNoGesture, wid)
	}

	rect := g.frame(p, t.bounds)
	if err := t.report(wid, g, rect); err != nil {
		delete(t.gestures, wid)
		return types.Rect{}, err
	}
	return rect, nil
}

// End reports the final frame and releases the gesture on every path
func (t *Tracker) End(wid id.WindowID, p Point) (types.Rect, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, ok := t.gestures[wid]
	if !ok {
		return types.Rect{}, fmt.Errorf("%w: %s", ErrNoGesture, wid)
	}
	delete(t.gestures, wid)

	rect := g.frame(p, t.bounds)
	if err := t.report(wid, g, rect); err != nil {
		return types.Rect{}, err
	}

	t.logger.Debug("Gesture ended", zap.String("window_id", wid.String()))
	return rect, nil
}

// Cancel releases a gesture without reporting. Reports whether one existed.
func (t *Tracker) Cancel(wid id.WindowID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.gestures[wid]
	delete(t.gestures, wid)
	return ok
}

// Active reports whether wid has a gesture in progress
func (t *Tracker) Active(wid id.WindowID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.gestures[wid]
	return ok
}

// Len returns the number of gestures in progress
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.gestures)
}

// Close releases all gestures and rejects new ones
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n := len(t.gestures); n > 0 {
		t.logger.Debug("Releasing gestures on close", zap.Int("count", n))
	}
	clear(t.gestures)
	t.closed = true
}

func (t *Tracker) report(wid id.WindowID, g *gesture, rect types.Rect) error {
	if g.kind == KindDrag {
		return t.sink.Move(wid, rect.Position())
	}
	return t.sink.Resize(wid, rect)
}
