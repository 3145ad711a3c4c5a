package desktop

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/GriffinCanCode/WebOS/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/WebOS/internal/shared/id"
	"github.com/GriffinCanCode/WebOS/internal/shared/types"
	"go.uber.org/zap"
)

var (
	// ErrUnknownApp is returned when launching an app id the catalog does not know
	ErrUnknownApp = errors.New("app not registered")

	// ErrWindowNotFound is returned for operations on a closed or unknown window
	ErrWindowNotFound = errors.New("window not found")
)

// Cascade offsets for windows whose app has no default position
const (
	cascadeOrigin = 48
	cascadeStep   = 32
	cascadeSlots  = 8
)

// Catalog is the read side of the app registry
type Catalog interface {
	Get(id string) (types.AppDefinition, bool)
	ListAutoStart() []types.AppDefinition
}

// Listener receives a snapshot after every transition
type Listener func(types.DesktopSnapshot)

// LaunchOptions tunes a single launch
type LaunchOptions struct {
	// Focus defaults to true when nil
	Focus *bool
	// Minimized opens a new window minimized. Ignored when a singleton is reused.
	Minimized bool
	// KeepOpen overrides the app's AutoMinimized flag for a new window
	KeepOpen bool
}

func (o LaunchOptions) focus() bool {
	return o.Focus == nil || *o.Focus
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the manager logger
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics records transitions on the given collector
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// WithIDSource replaces the window id generator
func WithIDSource(next func() id.WindowID) Option {
	return func(m *Manager) {
		if next != nil {
			m.newID = next
		}
	}
}

// Manager is the desktop state machine
type Manager struct {
	catalog Catalog
	logger  *zap.Logger
	metrics *monitoring.Metrics
	newID   func() id.WindowID

	mu      sync.Mutex
	windows map[id.WindowID]*types.Window
	taskbar []string
	focused id.WindowID
	topZ    int64
	version uint64

	// notifyMu is taken before mu is released so listeners observe
	// transitions in the order they were applied.
	notifyMu     sync.Mutex
	listeners    map[int]Listener
	nextListener int
}

// NewManager creates a window manager backed by the given catalog
func NewManager(catalog Catalog, opts ...Option) *Manager {
	m := &Manager{
		catalog:   catalog,
		logger:    zap.NewNop(),
		newID:     id.NewWindowID,
		windows:   make(map[id.WindowID]*types.Window),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Launch opens a window for appID. A singleton app that already has a
// window gets that window back, restored and optionally focused.
func (m *Manager) Launch(appID string, opts LaunchOptions) (id.WindowID, error) {
	def, ok := m.catalog.Get(appID)
	if !ok {
		m.logger.Warn("Launch of unregistered app ignored", zap.String("app_id", appID))
		return "", fmt.Errorf("%w: %s", ErrUnknownApp, appID)
	}

	m.mu.Lock()

	if def.Singleton {
		if existing := m.findByApp(appID); existing != nil {
			if opts.focus() {
				m.raise(existing)
			} else {
				existing.Minimized = false
				m.reconcileFocus()
			}
			m.commit("launch_reuse")
			return existing.ID, nil
		}
	}

	m.topZ++
	win := &types.Window{
		ID:        m.newID(),
		AppID:     def.ID,
		Title:     def.Title,
		Icon:      def.Icon,
		Component: def.Component,
		Size:      def.DefaultSize,
		Position:  m.placement(def),
		Minimized: opts.Minimized || (def.AutoMinimized && !opts.KeepOpen),
		ZIndex:    m.topZ,
	}
	m.windows[win.ID] = win

	if !win.Minimized && opts.focus() {
		m.focused = win.ID
	}
	m.reconcileFocus()

	if !slices.Contains(m.taskbar, def.ID) {
		m.taskbar = append(m.taskbar, def.ID)
	}

	m.logger.Debug("Window launched",
		zap.String("window_id", win.ID.String()),
		zap.String("app_id", def.ID),
		zap.Int64("z_index", win.ZIndex))

	m.commit("launch")
	return win.ID, nil
}

// LaunchAutoStart launches every auto-start app in registration order
func (m *Manager) LaunchAutoStart() []id.WindowID {
	var launched []id.WindowID
	for _, def := range m.catalog.ListAutoStart() {
		wid, err := m.Launch(def.ID, LaunchOptions{Minimized: def.AutoMinimized})
		if err != nil {
			continue
		}
		launched = append(launched, wid)
	}
	return launched
}

// Close removes a window. Focus is not handed to another window.
func (m *Manager) Close(wid id.WindowID) error {
	m.mu.Lock()
	win, ok := m.windows[wid]
	if !ok {
		m.mu.Unlock()
		return m.notFound("close", wid)
	}

	delete(m.windows, wid)
	if m.focused == wid {
		m.focused = ""
	}
	if m.findByApp(win.AppID) == nil {
		m.taskbar = slices.DeleteFunc(m.taskbar, func(appID string) bool { return appID == win.AppID })
	}

	m.commit("close")
	return nil
}

// CloseAll removes every window and empties the taskbar
func (m *Manager) CloseAll() int {
	m.mu.Lock()
	count := len(m.windows)
	clear(m.windows)
	m.taskbar = nil
	m.focused = ""
	m.commit("close_all")
	return count
}

// ReorderTaskbar moves the listed apps to the front of the taskbar in the
// given order. Apps without a window are ignored; unlisted apps keep their
// relative order after the listed ones.
func (m *Manager) ReorderTaskbar(order []string) {
	m.mu.Lock()

	next := make([]string, 0, len(m.taskbar))
	for _, appID := range order {
		if slices.Contains(m.taskbar, appID) && !slices.Contains(next, appID) {
			next = append(next, appID)
		}
	}
	for _, appID := range m.taskbar {
		if !slices.Contains(next, appID) {
			next = append(next, appID)
		}
	}
	m.taskbar = next

	m.commit("reorder_taskbar")
}

// Minimize hides a window and drops focus from it
func (m *Manager) Minimize(wid id.WindowID) error {
	m.mu.Lock()
	win, ok := m.windows[wid]
	if !ok {
		m.mu.Unlock()
		return m.notFound("minimize", wid)
	}

	win.Minimized = true
	if m.focused == wid {
		m.focused = ""
	}

	m.commit("minimize")
	return nil
}

// ToggleMinimize is the taskbar click: a minimized window is restored and
// focused, an open one is minimized.
func (m *Manager) ToggleMinimize(wid id.WindowID) error {
	m.mu.Lock()
	win, ok := m.windows[wid]
	if !ok {
		m.mu.Unlock()
		return m.notFound("toggle_minimize", wid)
	}

	if win.Minimized {
		m.raise(win)
	} else {
		win.Minimized = true
		if m.focused == wid {
			m.focused = ""
		}
	}

	m.commit("toggle_minimize")
	return nil
}

// Focus brings a window to the front, restoring it if minimized
func (m *Manager) Focus(wid id.WindowID) error {
	m.mu.Lock()
	win, ok := m.windows[wid]
	if !ok {
		m.mu.Unlock()
		return m.notFound("focus", wid)
	}

	m.raise(win)
	m.commit("focus")
	return nil
}

// Move sets a window position without bounds checks
func (m *Manager) Move(wid id.WindowID, pos types.Position) error {
	m.mu.Lock()
	win, ok := m.windows[wid]
	if !ok {
		m.mu.Unlock()
		return m.notFound("move", wid)
	}

	win.Position = pos
	m.commit("move")
	return nil
}

// Resize sets a window's position and size together
func (m *Manager) Resize(wid id.WindowID, rect types.Rect) error {
	m.mu.Lock()
	win, ok := m.windows[wid]
	if !ok {
		m.mu.Unlock()
		return m.notFound("resize", wid)
	}

	win.Position = rect.Position()
	win.Size = rect.Size()
	m.commit("resize")
	return nil
}

// Get returns a copy of a window
func (m *Manager) Get(wid id.WindowID) (types.Window, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	win, ok := m.windows[wid]
	if !ok {
		return types.Window{}, false
	}
	return *win, true
}

// Windows returns all windows ordered bottom to top
func (m *Manager) Windows() []types.Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedLocked()
}

// Taskbar returns app ids in first-launch order
func (m *Manager) Taskbar() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.taskbar)
}

// Focused returns the focused window, if any
func (m *Manager) Focused() (id.WindowID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focused, m.focused != ""
}

// Snapshot returns a consistent copy of the desktop
func (m *Manager) Snapshot() types.DesktopSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Stats returns window manager statistics
func (m *Manager) Stats() types.DesktopStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	minimized := 0
	for _, win := range m.windows {
		if win.Minimized {
			minimized++
		}
	}

	return types.DesktopStats{
		TotalWindows:     len(m.windows),
		MinimizedWindows: minimized,
		TaskbarEntries:   len(m.taskbar),
		FocusedWindowID:  m.focused,
	}
}

// Subscribe registers a listener and returns its unsubscribe function
func (m *Manager) Subscribe(fn Listener) func() {
	m.notifyMu.Lock()
	key := m.nextListener
	m.nextListener++
	m.listeners[key] = fn
	m.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.notifyMu.Lock()
			delete(m.listeners, key)
			m.notifyMu.Unlock()
		})
	}
}

// raise assigns the next z-index, restores and focuses
func (m *Manager) raise(win *types.Window) {
	m.topZ++
	win.ZIndex = m.topZ
	win.Minimized = false
	m.focused = win.ID
}

// reconcileFocus drops focus when a visible window now sits above it
func (m *Manager) reconcileFocus() {
	if m.focused == "" {
		return
	}
	current, ok := m.windows[m.focused]
	if !ok || current.Minimized {
		m.focused = ""
		return
	}
	for _, win := range m.windows {
		if !win.Minimized && win.ZIndex > current.ZIndex {
			m.focused = ""
			return
		}
	}
}

func (m *Manager) findByApp(appID string) *types.Window {
	for _, win := range m.windows {
		if win.AppID == appID {
			return win
		}
	}
	return nil
}

func (m *Manager) placement(def types.AppDefinition) types.Position {
	if def.DefaultPosition != nil {
		return *def.DefaultPosition
	}
	k := len(m.windows) % cascadeSlots
	offset := cascadeOrigin + cascadeStep*k
	return types.Position{X: offset, Y: offset}
}

func (m *Manager) sortedLocked() []types.Window {
	out := make([]types.Window, 0, len(m.windows))
	for _, win := range m.windows {
		out = append(out, *win)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ZIndex < out[j].ZIndex })
	return out
}

func (m *Manager) snapshotLocked() types.DesktopSnapshot {
	return types.DesktopSnapshot{
		Windows: m.sortedLocked(),
		Taskbar: slices.Clone(m.taskbar),
		Focused: m.focused,
		Version: m.version,
	}
}

// commit publishes the current state. Must be called with mu held; it
// releases mu before running listeners.
func (m *Manager) commit(op string) {
	m.version++
	snap := m.snapshotLocked()
	open := len(m.windows)

	m.notifyMu.Lock()
	m.mu.Unlock()
	defer m.notifyMu.Unlock()

	m.metrics.RecordWindowOp(op, open)

	for _, fn := range m.listeners {
		fn(snap)
	}
}

func (m *Manager) notFound(op string, wid id.WindowID) error {
	m.logger.Warn("Window operation on unknown window",
		zap.String("op", op),
		zap.String("window_id", wid.String()))
	return fmt.Errorf("%w: %s", ErrWindowNotFound, wid)
}
