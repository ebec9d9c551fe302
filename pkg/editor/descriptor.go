package editor

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Descriptor is one configured external command
type Descriptor struct {
	Key     string `yaml:"key" koanf:"key"`
	Name    string `yaml:"name" koanf:"name"`
	Command string `yaml:"command" koanf:"command"`
	// Patterns restricts the files the command accepts, matched against
	// the base name. Empty accepts everything.
	Patterns       []string `yaml:"patterns" koanf:"patterns"`
	Terminal       bool     `yaml:"terminal" koanf:"terminal"`
	KeepFullscreen bool     `yaml:"keep_fullscreen" koanf:"keep_fullscreen"`
	Blocking       bool     `yaml:"blocking" koanf:"blocking"`
	Filter         bool     `yaml:"filter" koanf:"filter"`

	tmpl *Template
}

// Template returns the parsed command template, parsing it on first use
func (d *Descriptor) Template() (*Template, Failure) {
	if d.tmpl != nil {
		return d.tmpl, 0
	}
	t, fail := ParseTemplate(d.Command)
	if fail != 0 {
		return nil, fail
	}
	d.tmpl = t
	return t, 0
}

// Flags combines the template's placeholders with the declared flags
func (d *Descriptor) Flags() OperationalFlags {
	var flags OperationalFlags
	if t, fail := d.Template(); fail == 0 {
		flags = t.Flags()
	}
	if d.Terminal {
		flags |= FlagTerminal
	}
	if d.KeepFullscreen {
		flags |= FlagKeepFullscreen
	}
	if d.Blocking {
		flags |= FlagBlocking
	}
	if d.Filter {
		flags |= FlagFilter
	}
	return flags
}

// DisplayName returns Name, falling back to Key
func (d *Descriptor) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Key
}

// Accepts reports whether path matches one of the descriptor's patterns
func (d *Descriptor) Accepts(path string) bool {
	if len(d.Patterns) == 0 {
		return true
	}
	base := strings.ToLower(filepath.Base(path))
	for _, p := range d.Patterns {
		if ok, err := doublestar.Match(strings.ToLower(p), base); err == nil && ok {
			return true
		}
	}
	return false
}
