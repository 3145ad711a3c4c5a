// Package registry provides the catalog of launchable desktop applications.
//
// Definitions are registered once at startup through a Builder and frozen
// into an immutable Catalog that the window manager reads from. Registering
// an id twice replaces the earlier definition; the id keeps its original
// position in listing order.
//
// Components:
//   - Builder: collects definitions (RegisterBuiltins, Seeder)
//   - Catalog: read-only lookup by id, full listing, autostart listing
//   - Seeder: loads YAML, TOML and JSON manifests from an apps directory
//
// Example Usage:
//
//	b := registry.NewBuilder()
//	registry.RegisterBuiltins(b)
//	registry.NewSeeder(os.DirFS(appsDir), logger).Seed(b)
//	catalog := b.Build()
//	def, ok := catalog.Get("calculator")
package registry
