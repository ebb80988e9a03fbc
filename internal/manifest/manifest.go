// Package manifest handles girgen.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file girgen looks for.
const FileName = "girgen.toml"

// Manifest represents a girgen.toml project configuration.
type Manifest struct {
	Namespaces []string `toml:"namespaces"`
	Skip       []string `toml:"skip"`
	Gir        Gir      `toml:"gir"`
	Output     Output   `toml:"output"`
	JSX        JSX      `toml:"jsx"`

	// Dir is the directory containing the girgen.toml file (set at load time).
	Dir string `toml:"-"`
}

// Gir configures where introspection data comes from.
type Gir struct {
	Dirs  []string `toml:"dirs"`
	Cache string   `toml:"cache"`
}

// Output configures the generated package tree.
type Output struct {
	Dir     string `toml:"dir"`
	Runtime string `toml:"runtime"`
}

// JSX configures the component layer.
type JSX struct {
	RootWidget string   `toml:"root-widget"`
	BaseProps  []string `toml:"base-props"`
}

// Load parses a girgen.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find a girgen.toml file, then
// loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// GirDirPaths returns absolute paths for the configured gir directories.
func (m *Manifest) GirDirPaths() []string {
	var paths []string
	for _, d := range m.Gir.Dirs {
		paths = append(paths, m.resolve(d))
	}
	return paths
}

// OutPath returns the absolute output directory, or "" when unset.
func (m *Manifest) OutPath() string {
	if m.Output.Dir == "" {
		return ""
	}
	return m.resolve(m.Output.Dir)
}

// CachePath returns the absolute typelib cache directory, or "" when unset.
func (m *Manifest) CachePath() string {
	if m.Gir.Cache == "" {
		return ""
	}
	return m.resolve(m.Gir.Cache)
}

func (m *Manifest) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.Dir, path)
}
