package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/WebOS/internal/domain/desktop"
	"github.com/GriffinCanCode/WebOS/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/WebOS/internal/shared/id"
	"github.com/GriffinCanCode/WebOS/internal/shared/types"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// KeyPrefix namespaces sessions inside a shared backend
const KeyPrefix = "session:"

var (
	// ErrSessionNotFound is returned for unknown session ids
	ErrSessionNotFound = errors.New("session not found")

	// ErrEmptyName is returned when saving without a name
	ErrEmptyName = errors.New("session name is required")
)

// Desktop is the part of the window manager sessions drive
type Desktop interface {
	Snapshot() types.DesktopSnapshot
	CloseAll() int
	Launch(appID string, opts desktop.LaunchOptions) (id.WindowID, error)
	Resize(wid id.WindowID, rect types.Rect) error
	Minimize(wid id.WindowID) error
	Focus(wid id.WindowID) error
	ReorderTaskbar(order []string)
}

// Store is the key-value backend sessions are persisted in. vfs.Backend
// satisfies it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
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

// WithMetrics records saves and restores on the given collector
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// Manager handles session persistence
type Manager struct {
	desktop Desktop
	store   Store
	logger  *zap.Logger
	metrics *monitoring.Metrics

	mu           sync.RWMutex
	lastSaved    *time.Time
	lastRestored *time.Time
}

// NewManager creates a new session manager
func NewManager(d Desktop, store Store, opts ...Option) *Manager {
	m := &Manager{
		desktop: d,
		store:   store,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Save captures the current layout under a new session id
func (m *Manager) Save(ctx context.Context, name, description string) (*types.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	now := time.Now()
	session := &types.Session{
		ID:          id.NewSessionID(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Layout:      captureLayout(m.desktop.Snapshot()),
	}

	if err := m.put(ctx, session); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.lastSaved = &now
	m.mu.Unlock()

	m.metrics.IncSessionsSaved()
	m.logger.Info("Session saved",
		zap.String("session_id", session.ID.String()),
		zap.String("name", name),
		zap.Int("windows", len(session.Layout.Windows)))

	return session, nil
}

// Load reads a session
func (m *Manager) Load(ctx context.Context, sid id.SessionID) (*types.Session, error) {
	data, ok, err := m.store.Get(ctx, KeyPrefix+string(sid))
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sid)
	}

	var session types.Session
	if err := sonic.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", sid, err)
	}
	if session.ID == "" {
		return nil, fmt.Errorf("session %s has empty ID field", sid)
	}
	return &session, nil
}

// Restore replaces the open windows with a saved layout
func (m *Manager) Restore(ctx context.Context, sid id.SessionID) (types.RestoreResult, error) {
	session, err := m.Load(ctx, sid)
	if err != nil {
		return types.RestoreResult{}, fmt.Errorf("failed to load session: %w", err)
	}

	result := types.RestoreResult{Session: session.ToMetadata()}

	m.desktop.CloseAll()

	unfocused := false
	var focus id.WindowID
	for _, snap := range session.Layout.Windows {
		wid, err := m.desktop.Launch(snap.AppID, desktop.LaunchOptions{
			Focus:     &unfocused,
			Minimized: snap.Minimized,
			KeepOpen:  !snap.Minimized,
		})
		if err != nil {
			m.logger.Warn("Skipping window during restore",
				zap.String("session_id", sid.String()),
				zap.String("app_id", snap.AppID),
				zap.Error(err))
			result.Skipped = append(result.Skipped, snap.AppID)
			continue
		}

		if err := m.desktop.Resize(wid, types.NewRect(snap.Position, snap.Size)); err != nil {
			return result, fmt.Errorf("failed to restore geometry for %s: %w", snap.AppID, err)
		}
		if snap.Minimized {
			if err := m.desktop.Minimize(wid); err != nil {
				return result, fmt.Errorf("failed to minimize %s: %w", snap.AppID, err)
			}
		}
		if snap.Focused {
			focus = wid
		}
		result.Restored++
	}

	m.desktop.ReorderTaskbar(session.Layout.Taskbar)

	if focus != "" {
		if err := m.desktop.Focus(focus); err != nil {
			return result, fmt.Errorf("failed to restore focus: %w", err)
		}
	}

	now := time.Now()
	m.mu.Lock()
	m.lastRestored = &now
	m.mu.Unlock()

	m.metrics.IncSessionsRestored()
	m.logger.Info("Session restored",
		zap.String("session_id", sid.String()),
		zap.Int("restored", result.Restored),
		zap.Int("skipped", len(result.Skipped)))

	return result, nil
}

// List returns all saved sessions, most recently updated first
func (m *Manager) List(ctx context.Context) ([]types.SessionMetadata, error) {
	keys, err := m.store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var metadata []types.SessionMetadata
	for _, key := range keys {
		sid, ok := strings.CutPrefix(key, KeyPrefix)
		if !ok {
			continue
		}
		session, err := m.Load(ctx, id.SessionID(sid))
		if err != nil {
			m.logger.Warn("Skipping unreadable session", zap.String("key", key), zap.Error(err))
			continue
		}
		metadata = append(metadata, session.ToMetadata())
	}

	sort.Slice(metadata, func(i, j int) bool {
		return metadata[i].UpdatedAt.After(metadata[j].UpdatedAt)
	})
	return metadata, nil
}

// Delete removes a session
func (m *Manager) Delete(ctx context.Context, sid id.SessionID) error {
	key := KeyPrefix + string(sid)
	_, ok, err := m.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sid)
	}

	if err := m.store.Remove(ctx, key); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Stats returns session manager statistics
func (m *Manager) Stats(ctx context.Context) (types.SessionStats, error) {
	keys, err := m.store.Keys(ctx)
	if err != nil {
		return types.SessionStats{}, err
	}

	total := 0
	for _, key := range keys {
		if strings.HasPrefix(key, KeyPrefix) {
			total++
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return types.SessionStats{
		TotalSessions: total,
		LastSaved:     m.lastSaved,
		LastRestored:  m.lastRestored,
	}, nil
}

func (m *Manager) put(ctx context.Context, session *types.Session) error {
	data, err := sonic.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := m.store.Set(ctx, KeyPrefix+string(session.ID), data); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// captureLayout converts a desktop snapshot, already ordered bottom to top
func captureLayout(snap types.DesktopSnapshot) types.Layout {
	layout := types.Layout{
		Windows: make([]types.WindowSnapshot, len(snap.Windows)),
		Taskbar: snap.Taskbar,
	}
	for i, w := range snap.Windows {
		layout.Windows[i] = types.WindowSnapshot{
			AppID:     w.AppID,
			Title:     w.Title,
			Position:  w.Position,
			Size:      w.Size,
			Minimized: w.Minimized,
			Focused:   w.ID == snap.Focused,
		}
	}
	return layout
}
