package registry

import (
	"errors"
	"sync"

	"github.com/GriffinCanCode/WebOS/internal/shared/types"
)

// ErrEmptyID is returned when a definition has no id
var ErrEmptyID = errors.New("app definition id is required")

// Builder collects app definitions before the catalog is frozen
type Builder struct {
	mu    sync.Mutex
	defs  map[string]types.AppDefinition
	order []string
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{
		defs: make(map[string]types.AppDefinition),
	}
}

// Register inserts or replaces the definition at def.ID
func (b *Builder) Register(def types.AppDefinition) error {
	if def.ID == "" {
		return ErrEmptyID
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.defs[def.ID]; !exists {
		b.order = append(b.order, def.ID)
	}
	b.defs[def.ID] = cloneDefinition(def)
	return nil
}

// Len returns the number of distinct ids registered so far
func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.order)
}

// Build freezes the registered definitions into a Catalog. The builder
// stays usable; later registrations do not affect catalogs already built.
func (b *Builder) Build() *Catalog {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := &Catalog{
		defs:  make(map[string]types.AppDefinition, len(b.defs)),
		order: make([]string, len(b.order)),
	}
	copy(c.order, b.order)
	for id, def := range b.defs {
		c.defs[id] = cloneDefinition(def)
	}
	return c
}

// Catalog is an immutable set of app definitions
type Catalog struct {
	defs  map[string]types.AppDefinition
	order []string
}

// Get returns the definition for id
func (c *Catalog) Get(id string) (types.AppDefinition, bool) {
	def, ok := c.defs[id]
	if !ok {
		return types.AppDefinition{}, false
	}
	return cloneDefinition(def), true
}

// List returns every definition in registration order
func (c *Catalog) List() []types.AppDefinition {
	out := make([]types.AppDefinition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, cloneDefinition(c.defs[id]))
	}
	return out
}

// ListAutoStart returns the definitions flagged AutoStart, in registration order
func (c *Catalog) ListAutoStart() []types.AppDefinition {
	var out []types.AppDefinition
	for _, id := range c.order {
		if def := c.defs[id]; def.AutoStart {
			out = append(out, cloneDefinition(def))
		}
	}
	return out
}

// Len returns the number of definitions
func (c *Catalog) Len() int {
	return len(c.order)
}

func cloneDefinition(def types.AppDefinition) types.AppDefinition {
	if def.DefaultPosition != nil {
		pos := *def.DefaultPosition
		def.DefaultPosition = &pos
	}
	return def
}
