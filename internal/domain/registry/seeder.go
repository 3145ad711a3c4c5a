package registry

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/WebOS/internal/domain/geometry"
	"github.com/GriffinCanCode/WebOS/internal/shared/types"
)

// ManifestPattern matches every manifest the seeder understands
const ManifestPattern = "**/*.{yaml,yml,toml,json}"

// manifest is the on-disk form of an app definition
type manifest struct {
	ID              string          `json:"id" yaml:"id" toml:"id"`
	Title           string          `json:"title" yaml:"title" toml:"title"`
	Icon            string          `json:"icon" yaml:"icon" toml:"icon"`
	Description     string          `json:"description" yaml:"description" toml:"description"`
	Category        string          `json:"category" yaml:"category" toml:"category"`
	Component       string          `json:"component" yaml:"component" toml:"component"`
	Singleton       *bool           `json:"singleton" yaml:"singleton" toml:"singleton"`
	AutoStart       bool            `json:"auto_start" yaml:"auto_start" toml:"auto_start"`
	AutoMinimized   bool            `json:"auto_minimized" yaml:"auto_minimized" toml:"auto_minimized"`
	DefaultSize     types.Size      `json:"default_size" yaml:"default_size" toml:"default_size"`
	DefaultPosition *types.Position `json:"default_position" yaml:"default_position" toml:"default_position"`
}

// definition fills in manifest defaults. A missing or undersized default_size
// is raised to the minimum window size.
func (m manifest) definition() types.AppDefinition {
	singleton := true
	if m.Singleton != nil {
		singleton = *m.Singleton
	}
	title := m.Title
	if title == "" {
		title = m.ID
	}
	return types.AppDefinition{
		ID:            m.ID,
		Title:         title,
		Icon:          m.Icon,
		Description:   m.Description,
		Category:      m.Category,
		Component:     m.Component,
		Singleton:     singleton,
		AutoStart:     m.AutoStart,
		AutoMinimized: m.AutoMinimized,
		DefaultSize: types.Size{
			Width:  max(m.DefaultSize.Width, geometry.MinWidth),
			Height: max(m.DefaultSize.Height, geometry.MinHeight),
		},
		DefaultPosition: m.DefaultPosition,
	}
}

// SeedResult counts what a seeding pass did
type SeedResult struct {
	Loaded int
	Failed int
}

// Seeder loads app manifests from a filesystem
type Seeder struct {
	fsys   fs.FS
	logger *zap.Logger
}

// NewSeeder creates a seeder over fsys
func NewSeeder(fsys fs.FS, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{fsys: fsys, logger: logger}
}

// Seed registers every valid manifest into b. A manifest that fails to
// parse is logged and counted, never fatal.
func (s *Seeder) Seed(b *Builder) (SeedResult, error) {
	var result SeedResult

	matches, err := doublestar.Glob(s.fsys, ManifestPattern)
	if err != nil {
		return result, fmt.Errorf("failed to scan manifests: %w", err)
	}

	for _, name := range matches {
		def, err := s.load(name)
		if err == nil {
			err = b.Register(def)
		}
		if err != nil {
			s.logger.Warn("Failed to load app manifest", zap.String("file", name), zap.Error(err))
			result.Failed++
			continue
		}
		s.logger.Debug("Loaded app manifest", zap.String("file", name), zap.String("app_id", def.ID))
		result.Loaded++
	}

	s.logger.Info("Seeding complete", zap.Int("loaded", result.Loaded), zap.Int("failed", result.Failed))
	return result, nil
}

func (s *Seeder) load(name string) (types.AppDefinition, error) {
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return types.AppDefinition{}, err
	}

	var m manifest
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	case ".toml":
		err = toml.Unmarshal(data, &m)
	case ".json":
		err = sonic.Unmarshal(data, &m)
	default:
		err = fmt.Errorf("unsupported manifest format: %s", name)
	}
	if err != nil {
		return types.AppDefinition{}, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	if m.ID == "" {
		return types.AppDefinition{}, ErrEmptyID
	}
	return m.definition(), nil
}
