package config

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/photobatch/pkg/editor"
	"github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/arthur-debert/photobatch/pkg/metadata"
	"github.com/arthur-debert/photobatch/pkg/types"
)

// AppName names the config and data directories
const AppName = "photobatch"

// Config is the decoded configuration
type Config struct {
	Engine   Engine            `koanf:"engine" toml:"engine"`
	Sidecars Sidecars          `koanf:"sidecars" toml:"sidecars"`
	Confirm  map[string]bool   `koanf:"confirm" toml:"confirm"`
	External map[string]string `koanf:"external" toml:"external"`
	Editors  Editors           `koanf:"editors" toml:"editors"`
	Metadata Metadata          `koanf:"metadata" toml:"metadata"`
}

// Engine holds batch engine settings
type Engine struct {
	MaxScanDepth int  `koanf:"max_scan_depth" toml:"max_scan_depth"`
	WithSidecars bool `koanf:"with_sidecars" toml:"with_sidecars"`
}

// Sidecars lists the extensions recognised as sidecar files
type Sidecars struct {
	Extensions []string `koanf:"extensions" toml:"extensions"`
}

// Editors configures external commands
type Editors struct {
	Dir      string                       `koanf:"dir" toml:"dir"`
	Commands map[string]editor.Descriptor `koanf:"commands" toml:"commands,omitempty"`
}

// Metadata configures sidecar writing
type Metadata struct {
	SidecarStyle string `koanf:"sidecar_style" toml:"sidecar_style"`
}

// DefaultPath returns the user config file location
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}

// EditorsDir returns the directory scanned for editor descriptors
func (c *Config) EditorsDir() string {
	if c.Editors.Dir != "" {
		return c.Editors.Dir
	}
	return filepath.Join(xdg.ConfigHome, AppName, "editors")
}

// ExternalKinds returns the operations routed to an external command
func (c *Config) ExternalKinds() map[types.Kind]string {
	out := make(map[types.Kind]string)
	for k, key := range c.External {
		if key != "" {
			out[types.Kind(k)] = key
		}
	}
	return out
}

// ConfirmClean returns the operations confirmed even when validation
// finds nothing to warn about
func (c *Config) ConfirmClean() map[types.Kind]bool {
	out := make(map[types.Kind]bool)
	for k, on := range c.Confirm {
		if on {
			out[types.Kind(k)] = true
		}
	}
	return out
}

// SidecarStyle returns the naming style for new XMP sidecars
func (c *Config) SidecarStyle() metadata.SidecarStyle {
	return metadata.SidecarStyle(c.Metadata.SidecarStyle)
}

// Descriptors returns the inline editor commands sorted by key. A command
// without an explicit key takes its table name.
func (c *Config) Descriptors() []*editor.Descriptor {
	keys := make([]string, 0, len(c.Editors.Commands))
	for k := range c.Editors.Commands {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*editor.Descriptor, 0, len(keys))
	for _, k := range keys {
		d := c.Editors.Commands[k]
		if d.Key == "" {
			d.Key = k
		}
		out = append(out, &d)
	}
	return out
}

// Validate checks values the decoder cannot and normalises extensions
func (c *Config) Validate() error {
	if c.Engine.MaxScanDepth < 1 {
		return errors.Newf(errors.ErrConfigValid, "engine.max_scan_depth must be at least 1, got %d", c.Engine.MaxScanDepth)
	}

	switch metadata.SidecarStyle(c.Metadata.SidecarStyle) {
	case metadata.StyleAppend, metadata.StyleReplace:
	default:
		return errors.Newf(errors.ErrConfigValid, "metadata.sidecar_style must be append or replace, got %q", c.Metadata.SidecarStyle)
	}

	for k := range c.Confirm {
		if !types.Kind(k).Valid() {
			return errors.Newf(errors.ErrConfigValid, "confirm.%s is not an operation", k)
		}
	}
	for k := range c.External {
		kind := types.Kind(k)
		if !kind.Valid() {
			return errors.Newf(errors.ErrConfigValid, "external.%s is not an operation", k)
		}
		if kind.IsFolder() || kind == types.KindWriteMetadata || kind == types.KindRunExternalFilter {
			return errors.Newf(errors.ErrConfigValid, "external.%s cannot be run by an external command", k)
		}
	}

	exts := make([]string, 0, len(c.Sidecars.Extensions))
	for _, ext := range c.Sidecars.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	c.Sidecars.Extensions = exts
	return nil
}
