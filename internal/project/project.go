// Package project loads loadable.toml, the description of a build the CLI
// can run: where module sources live, how modules are layered and flagged,
// and what the chunking layer produced for them.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the project manifest filename.
const ManifestName = "loadable.toml"

var (
	// ErrBuildSectionMissing indicates that [build] is missing.
	ErrBuildSectionMissing = errors.New("missing [build]")
	// ErrWrapperMissing indicates that [build].wrapper is missing.
	ErrWrapperMissing = errors.New("missing [build].wrapper")
)

// Config mirrors loadable.toml.
type Config struct {
	Build   BuildSection          `toml:"build"`
	Modules map[string]ModuleSpec `toml:"modules"`
	Chunks  map[string]ChunkSpec  `toml:"chunks"`
}

// BuildSection is the [build] table.
type BuildSection struct {
	// Wrapper is the import source providing the lazy-load wrapper.
	Wrapper string `toml:"wrapper"`
	// ClientRoot is the client output root, slash-separated.
	ClientRoot string `toml:"client_root"`
	// Manifest is where the manifest document is written.
	Manifest string `toml:"manifest"`
	// Fingerprint names the chunking context; it feeds derived entry ids.
	Fingerprint string `toml:"fingerprint"`
	// SourceRoot is the directory module source files live under,
	// relative to the project root.
	SourceRoot string `toml:"source_root"`
}

// ModuleSpec describes one graph node.
type ModuleSpec struct {
	Layer    string            `toml:"layer"`
	Lazy     bool              `toml:"lazy"`
	Boundary bool              `toml:"boundary"`
	File     string            `toml:"file"`
	Parent   string            `toml:"parent"`
	Chunks   []string          `toml:"chunks"`
	Covered  []string          `toml:"covered"`
	ID       string            `toml:"id"`
	Resolves map[string]string `toml:"resolves"`
}

// ChunkSpec describes one chunk reference's output.
type ChunkSpec struct {
	Assets []string `toml:"assets"`
}

// Load parses a loadable.toml file.
func Load(path string) (*Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("build") {
		return nil, fmt.Errorf("%s: %w", path, ErrBuildSectionMissing)
	}
	if strings.TrimSpace(cfg.Build.Wrapper) == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrWrapperMissing)
	}
	if cfg.Build.SourceRoot == "" {
		cfg.Build.SourceRoot = "."
	}
	for name, spec := range cfg.Modules {
		if spec.Parent != "" {
			parent, ok := cfg.Modules[spec.Parent]
			if !ok {
				return nil, fmt.Errorf("%s: module %q has unknown parent %q", path, name, spec.Parent)
			}
			if !parent.Boundary {
				return nil, fmt.Errorf("%s: module %q parent %q is not a boundary module", path, name, spec.Parent)
			}
		}
	}
	return &cfg, nil
}

// Find walks up from startDir looking for loadable.toml. ok=false when no
// manifest exists up to the filesystem root.
func Find(startDir string) (string, bool, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, err
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// ModulePaths returns the configured module paths in sorted order, which is
// the graph's enumeration order. TOML tables have no order of their own; a
// stable order keeps classification and manifests deterministic.
func (c *Config) ModulePaths() []string {
	paths := make([]string, 0, len(c.Modules))
	for p := range c.Modules {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
