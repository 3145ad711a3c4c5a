package registry

import "github.com/GriffinCanCode/WebOS/internal/shared/types"

// Built-in app ids
const (
	AppWelcome       = "welcome"
	AppCalculator    = "calculator"
	AppStorage       = "storage-manager"
	AppWorkerConsole = "worker-console"
	AppPermissions   = "permissions"
)

// Builtins returns the apps every desktop ships with
func Builtins() []types.AppDefinition {
	return []types.AppDefinition{
		{
			ID:              AppWelcome,
			Title:           "Welcome",
			Icon:            "👋",
			Description:     "About this desktop",
			Category:        "system",
			Component:       "WelcomeApp",
			Singleton:       true,
			AutoStart:       true,
			DefaultSize:     types.Size{Width: 520, Height: 360},
			DefaultPosition: &types.Position{X: 120, Y: 80},
		},
		{
			ID:          AppCalculator,
			Title:       "Calculator",
			Icon:        "🧮",
			Description: "Basic calculator with standard operations",
			Category:    "productivity",
			Component:   "CalculatorApp",
			Singleton:   true,
			DefaultSize: types.Size{Width: 320, Height: 480},
		},
		{
			ID:          AppStorage,
			Title:       "Storage Manager",
			Icon:        "🗂️",
			Description: "Browse and edit files in browser storage",
			Category:    "system",
			Component:   "StorageManagerApp",
			Singleton:   true,
			DefaultSize: types.Size{Width: 640, Height: 420},
		},
		{
			ID:          AppWorkerConsole,
			Title:       "Worker Console",
			Icon:        "⚙️",
			Description: "Dispatch tasks to the background worker pool",
			Category:    "developer",
			Component:   "WorkerConsoleApp",
			Singleton:   false,
			DefaultSize: types.Size{Width: 560, Height: 380},
		},
		{
			ID:            AppPermissions,
			Title:         "Permissions",
			Icon:          "🔐",
			Description:   "Pending permission prompts and channel decisions",
			Category:      "system",
			Component:     "PermissionGateway",
			Singleton:     true,
			AutoStart:     true,
			AutoMinimized: true,
			DefaultSize:   types.Size{Width: 420, Height: 260},
		},
	}
}

// RegisterBuiltins registers Builtins into b
func RegisterBuiltins(b *Builder) {
	for _, def := range Builtins() {
		// Builtin ids are never empty.
		_ = b.Register(def)
	}
}
