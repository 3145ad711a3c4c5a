/*
Package desktop implements the window manager.

The Manager owns every open window, the taskbar and the focus order. Each
window is in one of three states: open-focused, open-unfocused or
minimized. Stacking is decided by a z-index counter that only ever grows;
focusing a window is the only way its z-index changes after launch.

Transitions are applied under a single lock and published to subscribers
synchronously, in the order they happened, before the mutating call
returns. Listeners may read from the Manager but must not mutate it.

	catalog := registry.NewBuilder()
	registry.RegisterBuiltins(catalog)

	mgr := desktop.NewManager(catalog.Build(), desktop.WithLogger(logger))
	unsubscribe := mgr.Subscribe(func(s types.DesktopSnapshot) { render(s) })
	defer unsubscribe()

	win, err := mgr.Launch(registry.AppCalculator, desktop.LaunchOptions{})
*/
package desktop
