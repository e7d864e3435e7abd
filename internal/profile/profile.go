// Package profile loads named watch presets from a YAML file, so frequently
// monitored quantities don't need their flags repeated on every invocation.
package profile

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/slok/etc/internal/model"
)

// Profile is a named watch preset. Zero values mean "not set", the CLI only
// applies a profile field when the corresponding flag wasn't given.
type Profile struct {
	Goal      *float64
	Field     int
	Delimiter string
	Output    string
	Label     string
}

// YAMLRepository loads watch profiles from YAML files.
type YAMLRepository struct {
	fs fs.FS
}

// NewYAMLRepository creates a new YAML profile repository.
func NewYAMLRepository(filesystem fs.FS) *YAMLRepository {
	return &YAMLRepository{fs: filesystem}
}

// GetProfile loads the named profile from a YAML file.
func (r *YAMLRepository) GetProfile(ctx context.Context, path, name string) (Profile, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return Profile{}, fmt.Errorf("reading profiles file: %w", err)
	}

	if ctx.Err() != nil {
		return Profile{}, ctx.Err()
	}

	var file profilesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Profile{}, fmt.Errorf("parsing YAML: %w", err)
	}

	p, ok := file.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q: %w", name, model.ErrNotFound)
	}

	if err := p.validate(); err != nil {
		return Profile{}, fmt.Errorf("invalid profile %q: %w", name, err)
	}

	return p.toProfile(), nil
}

// profilesFile represents the YAML structure of the profiles file.
type profilesFile struct {
	Profiles map[string]profileYAML `yaml:"profiles"`
}

// profileYAML represents the YAML structure of a single profile.
type profileYAML struct {
	Goal      *float64 `yaml:"goal,omitempty"`
	Field     int      `yaml:"field,omitempty"`
	Delimiter string   `yaml:"delimiter,omitempty"`
	Output    string   `yaml:"output,omitempty"`
	Label     string   `yaml:"label,omitempty"`
}

func (p profileYAML) validate() error {
	if p.Field < 0 {
		return fmt.Errorf("field can't be negative")
	}

	switch p.Output {
	case "", "line", "screen", "plain", "json":
	default:
		return fmt.Errorf("unknown output %q", p.Output)
	}

	return nil
}

func (p profileYAML) toProfile() Profile {
	return Profile{
		Goal:      p.Goal,
		Field:     p.Field,
		Delimiter: p.Delimiter,
		Output:    p.Output,
		Label:     p.Label,
	}
}
