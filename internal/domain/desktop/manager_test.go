package desktop

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/GriffinCanCode/WebOS/internal/domain/registry"
	"github.com/GriffinCanCode/WebOS/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/WebOS/internal/shared/id"
	"github.com/GriffinCanCode/WebOS/internal/shared/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	b := registry.NewBuilder()
	registry.RegisterBuiltins(b)
	return NewManager(b.Build(), opts...)
}

func noFocus() *bool {
	f := false
	return &f
}

// assertInvariants checks the stacking and focus rules on a snapshot
func assertInvariants(t *testing.T, snap types.DesktopSnapshot) {
	t.Helper()

	seen := make(map[int64]bool)
	var top *types.Window
	for i := range snap.Windows {
		win := snap.Windows[i]
		require.False(t, seen[win.ZIndex], "duplicate z-index %d", win.ZIndex)
		seen[win.ZIndex] = true
		if !win.Minimized && (top == nil || win.ZIndex > top.ZIndex) {
			top = &snap.Windows[i]
		}
	}

	if snap.Focused != "" {
		require.NotNil(t, top)
		assert.Equal(t, top.ID, snap.Focused, "focused window must be the highest visible window")
	}

	for _, appID := range snap.Taskbar {
		found := false
		for _, win := range snap.Windows {
			if win.AppID == appID {
				found = true
				break
			}
		}
		assert.True(t, found, "taskbar entry %s has no window", appID)
	}
}

func TestLaunch(t *testing.T) {
	mgr := newTestManager(t)

	wid, err := mgr.Launch(registry.AppCalculator, LaunchOptions{})
	require.NoError(t, err)

	win, ok := mgr.Get(wid)
	require.True(t, ok)
	assert.Equal(t, registry.AppCalculator, win.AppID)
	assert.Equal(t, "Calculator", win.Title)
	assert.Equal(t, types.Size{Width: 320, Height: 480}, win.Size)
	assert.Equal(t, types.Position{X: 48, Y: 48}, win.Position)
	assert.Equal(t, int64(1), win.ZIndex)
	assert.False(t, win.Minimized)

	focused, ok := mgr.Focused()
	assert.True(t, ok)
	assert.Equal(t, wid, focused)
	assert.Equal(t, []string{registry.AppCalculator}, mgr.Taskbar())
}

func TestLaunchUnknownApp(t *testing.T) {
	mgr := newTestManager(t)

	wid, err := mgr.Launch("missing", LaunchOptions{})
	assert.ErrorIs(t, err, ErrUnknownApp)
	assert.Empty(t, wid)
	assert.Empty(t, mgr.Windows())
	assert.Empty(t, mgr.Taskbar())
}

func TestLaunchUsesDefaultPosition(t *testing.T) {
	mgr := newTestManager(t)

	wid, err := mgr.Launch(registry.AppWelcome, LaunchOptions{})
	require.NoError(t, err)

	win, _ := mgr.Get(wid)
	assert.Equal(t, types.Position{X: 120, Y: 80}, win.Position)
}

func TestLaunchCascades(t *testing.T) {
	mgr := newTestManager(t)

	for k := 0; k < 3; k++ {
		wid, err := mgr.Launch(registry.AppWorkerConsole, LaunchOptions{})
		require.NoError(t, err)
		win, _ := mgr.Get(wid)
		offset := 48 + 32*k
		assert.Equal(t, types.Position{X: offset, Y: offset}, win.Position)
	}
}

func TestSingletonLaunchReusesWindow(t *testing.T) {
	mgr := newTestManager(t)

	first, err := mgr.Launch(registry.AppCalculator, LaunchOptions{})
	require.NoError(t, err)
	require.NoError(t, mgr.Minimize(first))

	second, err := mgr.Launch(registry.AppCalculator, LaunchOptions{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, mgr.Windows(), 1)

	win, _ := mgr.Get(second)
	assert.False(t, win.Minimized)
	focused, ok := mgr.Focused()
	assert.True(t, ok)
	assert.Equal(t, first, focused)
}

func TestSingletonLaunchWithoutFocus(t *testing.T) {
	mgr := newTestManager(t)

	calc, _ := mgr.Launch(registry.AppCalculator, LaunchOptions{})
	require.NoError(t, mgr.Minimize(calc))
	other, _ := mgr.Launch(registry.AppStorage, LaunchOptions{})

	again, err := mgr.Launch(registry.AppCalculator, LaunchOptions{Focus: noFocus()})
	require.NoError(t, err)
	assert.Equal(t, calc, again)

	win, _ := mgr.Get(calc)
	assert.False(t, win.Minimized)

	focused, _ := mgr.Focused()
	assert.Equal(t, other, focused)
	assertInvariants(t, mgr.Snapshot())
}

func TestMultiInstanceApp(t *testing.T) {
	mgr := newTestManager(t)

	a, err := mgr.Launch(registry.AppWorkerConsole, LaunchOptions{})
	require.NoError(t, err)
	b, err := mgr.Launch(registry.AppWorkerConsole, LaunchOptions{})
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, mgr.Windows(), 2)
	assert.Equal(t, []string{registry.AppWorkerConsole}, mgr.Taskbar())

	require.NoError(t, mgr.Close(a))
	assert.Equal(t, []string{registry.AppWorkerConsole}, mgr.Taskbar(), "entry stays while an instance remains")

	require.NoError(t, mgr.Close(b))
	assert.Empty(t, mgr.Taskbar())
}

func TestLaunchUnfocusedClearsFocus(t *testing.T) {
	mgr := newTestManager(t)

	_, _ = mgr.Launch(registry.AppCalculator, LaunchOptions{})
	wid, err := mgr.Launch(registry.AppStorage, LaunchOptions{Focus: noFocus()})
	require.NoError(t, err)

	win, _ := mgr.Get(wid)
	assert.Equal(t, int64(2), win.ZIndex)

	_, ok := mgr.Focused()
	assert.False(t, ok, "a window opened above the focused one takes focus away")
	assertInvariants(t, mgr.Snapshot())
}

func TestLaunchMinimizedKeepsFocus(t *testing.T) {
	mgr := newTestManager(t)

	calc, _ := mgr.Launch(registry.AppCalculator, LaunchOptions{})
	_, err := mgr.Launch(registry.AppStorage, LaunchOptions{Minimized: true})
	require.NoError(t, err)

	focused, ok := mgr.Focused()
	assert.True(t, ok)
	assert.Equal(t, calc, focused)
}

func TestLaunchAutoStart(t *testing.T) {
	mgr := newTestManager(t)

	ids := mgr.LaunchAutoStart()
	require.Len(t, ids, 2)

	welcome, _ := mgr.Get(ids[0])
	assert.Equal(t, registry.AppWelcome, welcome.AppID)
	assert.False(t, welcome.Minimized)

	gateway, _ := mgr.Get(ids[1])
	assert.Equal(t, registry.AppPermissions, gateway.AppID)
	assert.True(t, gateway.Minimized)

	assert.Equal(t, []string{registry.AppWelcome, registry.AppPermissions}, mgr.Taskbar())

	focused, _ := mgr.Focused()
	assert.Equal(t, ids[0], focused)
}

func TestLaunchKeepOpen(t *testing.T) {
	mgr := newTestManager(t)

	wid, err := mgr.Launch(registry.AppPermissions, LaunchOptions{KeepOpen: true})
	require.NoError(t, err)

	win, _ := mgr.Get(wid)
	assert.False(t, win.Minimized)
	focused, ok := mgr.Focused()
	assert.True(t, ok)
	assert.Equal(t, wid, focused)

	calc, err := mgr.Launch(registry.AppCalculator, LaunchOptions{KeepOpen: true, Minimized: true})
	require.NoError(t, err)
	win, _ = mgr.Get(calc)
	assert.True(t, win.Minimized, "an explicit minimize wins over KeepOpen")
	assertInvariants(t, mgr.Snapshot())
}

func TestFocusRaises(t *testing.T) {
	mgr := newTestManager(t)

	a, _ := mgr.Launch(registry.AppCalculator, LaunchOptions{})
	b, _ := mgr.Launch(registry.AppStorage, LaunchOptions{})
	c, _ := mgr.Launch(registry.AppWorkerConsole, LaunchOptions{})

	require.NoError(t, mgr.Focus(a))

	winA, _ := mgr.Get(a)
	for _, other := range []id.WindowID{b, c} {
		win, _ := mgr.Get(other)
		assert.Greater(t, winA.ZIndex, win.ZIndex)
	}
	assert.Equal(t, int64(4), winA.ZIndex, "z-index is allocated, never reused")

	focused, _ := mgr.Focused()
	assert.Equal(t, a, focused)
}

func TestFocusRestoresMinimized(t *testing.T) {
	mgr := newTestManager(t)

	a, _ := mgr.Launch(registry.AppCalculator, LaunchOptions{})
	require.NoError(t, mgr.Minimize(a))

	_, ok := mgr.Focused()
	assert.False(t, ok)

	require.NoError(t, mgr.Focus(a))
	win, _ := mgr.Get(a)
	assert.False(t, win.Minimized)
	assert.Equal(t, types.WindowFocused, mgr.Snapshot().State(win))
}

func TestCloseDoesNotRefocus(t *testing.T) {
	mgr := newTestManager(t)

	a, _ := mgr.Launch(registry.AppCalculator, LaunchOptions{})
	b, _ := mgr.Launch(registry.AppStorage, LaunchOptions{})

	require.NoError(t, mgr.Close(b))

	_, ok := mgr.Focused()
	assert.False(t, ok)
	_, ok = mgr.Get(b)
	assert.False(t, ok)
	assert.Equal(t, []string{registry.AppCalculator}, mgr.Taskbar())

	win, _ := mgr.Get(a)
	assert.Equal(t, types.WindowUnfocused, mgr.Snapshot().State(win))
}

func TestToggleMinimize(t *testing.T) {
	mgr := newTestManager(t)

	a, _ := mgr.Launch(registry.AppCalculator, LaunchOptions{})
	b, _ := mgr.Launch(registry.AppStorage, LaunchOptions{})

	require.NoError(t, mgr.ToggleMinimize(a))
	win, _ := mgr.Get(a)
	assert.True(t, win.Minimized)
	focused, _ := mgr.Focused()
	assert.Equal(t, b, focused)

	require.NoError(t, mgr.ToggleMinimize(a))
	win, _ = mgr.Get(a)
	assert.False(t, win.Minimized)
	focused, _ = mgr.Focused()
	assert.Equal(t, a, focused)
	assertInvariants(t, mgr.Snapshot())
}

func TestMoveAndResize(t *testing.T) {
	mgr := newTestManager(t)

	wid, _ := mgr.Launch(registry.AppCalculator, LaunchOptions{})
	before, _ := mgr.Get(wid)

	require.NoError(t, mgr.Move(wid, types.Position{X: -50, Y: 5000}))
	win, _ := mgr.Get(wid)
	assert.Equal(t, types.Position{X: -50, Y: 5000}, win.Position, "no bounds validation")
	assert.Equal(t, before.ZIndex, win.ZIndex)

	require.NoError(t, mgr.Resize(wid, types.Rect{X: 10, Y: 20, Width: 300, Height: 200}))
	win, _ = mgr.Get(wid)
	assert.Equal(t, types.Rect{X: 10, Y: 20, Width: 300, Height: 200}, win.Rect())
}

func TestUnknownWindowOperations(t *testing.T) {
	mgr := newTestManager(t)
	missing := id.WindowID("win_missing")

	ops := map[string]func() error{
		"close":    func() error { return mgr.Close(missing) },
		"minimize": func() error { return mgr.Minimize(missing) },
		"toggle":   func() error { return mgr.ToggleMinimize(missing) },
		"focus":    func() error { return mgr.Focus(missing) },
		"move":     func() error { return mgr.Move(missing, types.Position{}) },
		"resize":   func() error { return mgr.Resize(missing, types.Rect{}) },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, op(), ErrWindowNotFound)
		})
	}
	assert.Equal(t, uint64(0), mgr.Snapshot().Version)
}

func TestCloseAll(t *testing.T) {
	mgr := newTestManager(t)
	mgr.LaunchAutoStart()

	assert.Equal(t, 2, mgr.CloseAll())
	assert.Empty(t, mgr.Windows())
	assert.Empty(t, mgr.Taskbar())
	_, ok := mgr.Focused()
	assert.False(t, ok)
}

func TestReorderTaskbar(t *testing.T) {
	calc, storage, console := registry.AppCalculator, registry.AppStorage, registry.AppWorkerConsole

	tests := []struct {
		name  string
		order []string
		want  []string
	}{
		{name: "full order", order: []string{console, calc, storage}, want: []string{console, calc, storage}},
		{name: "partial order keeps the rest", order: []string{storage}, want: []string{storage, calc, console}},
		{name: "unknown apps ignored", order: []string{"retired-app", console}, want: []string{console, calc, storage}},
		{name: "duplicates collapse", order: []string{storage, storage, calc}, want: []string{storage, calc, console}},
		{name: "empty order", order: nil, want: []string{calc, storage, console}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := newTestManager(t)
			for _, appID := range []string{calc, storage, console} {
				_, err := mgr.Launch(appID, LaunchOptions{})
				require.NoError(t, err)
			}
			before := mgr.Snapshot()

			mgr.ReorderTaskbar(tt.order)

			after := mgr.Snapshot()
			assert.Equal(t, tt.want, after.Taskbar)
			assert.Equal(t, before.Windows, after.Windows, "reordering the taskbar leaves stacking alone")
			assert.Equal(t, before.Focused, after.Focused)
			assert.Equal(t, before.Version+1, after.Version)
			assertInvariants(t, after)
		})
	}
}

func TestSubscribeSeesEveryTransitionInOrder(t *testing.T) {
	mgr := newTestManager(t)

	var versions []uint64
	var windows []int
	unsubscribe := mgr.Subscribe(func(s types.DesktopSnapshot) {
		versions = append(versions, s.Version)
		windows = append(windows, len(s.Windows))
	})

	a, _ := mgr.Launch(registry.AppCalculator, LaunchOptions{})
	_, _ = mgr.Launch(registry.AppStorage, LaunchOptions{})
	_ = mgr.Close(a)

	assert.Equal(t, []uint64{1, 2, 3}, versions)
	assert.Equal(t, []int{1, 2, 1}, windows)

	unsubscribe()
	unsubscribe()
	_, _ = mgr.Launch(registry.AppCalculator, LaunchOptions{})
	assert.Len(t, versions, 3)
}

func TestListenerMayReadManager(t *testing.T) {
	mgr := newTestManager(t)

	var stats types.DesktopStats
	mgr.Subscribe(func(types.DesktopSnapshot) {
		stats = mgr.Stats()
	})

	_, err := mgr.Launch(registry.AppCalculator, LaunchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalWindows)
}

func TestConcurrentTransitionsDeliverOrderedVersions(t *testing.T) {
	mgr := newTestManager(t)

	var mu sync.Mutex
	var versions []uint64
	mgr.Subscribe(func(s types.DesktopSnapshot) {
		mu.Lock()
		versions = append(versions, s.Version)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wid, err := mgr.Launch(registry.AppWorkerConsole, LaunchOptions{})
			if err == nil {
				_ = mgr.Focus(wid)
			}
		}()
	}
	wg.Wait()

	require.Len(t, versions, 40)
	for i, v := range versions {
		assert.Equal(t, uint64(i+1), v)
	}
	assertInvariants(t, mgr.Snapshot())
}

func TestRandomTransitionsKeepInvariants(t *testing.T) {
	mgr := newTestManager(t)
	rng := rand.New(rand.NewSource(42))
	apps := []string{registry.AppCalculator, registry.AppStorage, registry.AppWorkerConsole, registry.AppWelcome}

	mgr.Subscribe(func(s types.DesktopSnapshot) {
		assertInvariants(t, s)

		count := make(map[string]int)
		for _, win := range s.Windows {
			count[win.AppID]++
		}
		for _, app := range []string{registry.AppCalculator, registry.AppStorage, registry.AppWelcome} {
			assert.LessOrEqual(t, count[app], 1, "singleton %s has multiple windows", app)
		}
	})

	for i := 0; i < 500; i++ {
		windows := mgr.Windows()
		var target id.WindowID
		if len(windows) > 0 {
			target = windows[rng.Intn(len(windows))].ID
		}

		switch rng.Intn(6) {
		case 0:
			opts := LaunchOptions{Minimized: rng.Intn(4) == 0}
			if rng.Intn(3) == 0 {
				opts.Focus = noFocus()
			}
			_, _ = mgr.Launch(apps[rng.Intn(len(apps))], opts)
		case 1:
			_ = mgr.Close(target)
		case 2:
			_ = mgr.Minimize(target)
		case 3:
			_ = mgr.ToggleMinimize(target)
		case 4:
			if target != "" {
				require.NoError(t, mgr.Focus(target))
				win, _ := mgr.Get(target)
				for _, other := range mgr.Windows() {
					if other.ID != target {
						assert.Greater(t, win.ZIndex, other.ZIndex)
					}
				}
			}
		case 5:
			_ = mgr.Move(target, types.Position{X: rng.Intn(800), Y: rng.Intn(600)})
		}
	}
}

func TestMetricsRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	mgr := newTestManager(t, WithMetrics(metrics))

	a, _ := mgr.Launch(registry.AppCalculator, LaunchOptions{})
	_, _ = mgr.Launch(registry.AppStorage, LaunchOptions{})
	_ = mgr.Close(a)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.WindowsOpen))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.WindowOps.WithLabelValues("launch")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.WindowOps.WithLabelValues("close")))
}

func TestWithIDSource(t *testing.T) {
	n := 0
	mgr := newTestManager(t, WithIDSource(func() id.WindowID {
		n++
		return id.WindowID("win_" + string(rune('a'+n-1)))
	}))

	wid, err := mgr.Launch(registry.AppCalculator, LaunchOptions{})
	require.NoError(t, err)
	assert.Equal(t, id.WindowID("win_a"), wid)
}
