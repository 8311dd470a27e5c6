// Package manifest handles kestrel.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents a kestrel.toml project configuration.
type Manifest struct {
	Project     Project     `toml:"project"`
	Interpreter Interpreter `toml:"interpreter"`
	Pool        Pool        `toml:"pool"`
	Image       ImageConfig `toml:"image"`

	// Dir is the directory containing the kestrel.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Interpreter configures execution limits.
type Interpreter struct {
	MaxFrameDepth int `toml:"max-frame-depth"`
	MaxInstances  int `toml:"max-instances"`
}

// Pool configures string pool preloading.
type Pool struct {
	Preload []string `toml:"preload"`
}

// ImageConfig configures class-metadata image output.
type ImageConfig struct {
	Output string `toml:"output"`
}

// DefaultMaxFrameDepth is applied when the manifest does not set a limit.
const DefaultMaxFrameDepth = 1024

// Load parses a kestrel.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "kestrel.toml")
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

	// Defaults
	if m.Interpreter.MaxFrameDepth == 0 {
		m.Interpreter.MaxFrameDepth = DefaultMaxFrameDepth
	}
	if m.Image.Output == "" {
		m.Image.Output = "kestrel.image"
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a kestrel.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "kestrel.toml")
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

// ImagePath returns the absolute path of the configured image output.
func (m *Manifest) ImagePath() string {
	if filepath.IsAbs(m.Image.Output) {
		return m.Image.Output
	}
	return filepath.Join(m.Dir, m.Image.Output)
}
