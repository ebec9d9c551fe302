package editor

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/arthur-debert/photobatch/pkg/logging"
	"github.com/arthur-debert/photobatch/pkg/types"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Registry resolves editor keys to descriptors
type Registry struct {
	editors map[string]*Descriptor
	logger  zerolog.Logger
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		editors: make(map[string]*Descriptor),
		logger:  logging.GetLogger("editor.registry"),
	}
}

// Register adds or replaces a descriptor after checking its template
func (r *Registry) Register(d *Descriptor) error {
	if d.Key == "" {
		return errors.New(errors.ErrEditorInvalid, "editor key is empty")
	}
	if _, fail := d.Template(); fail != 0 {
		return errors.Newf(errors.ErrEditorInvalid, "editor %s: %s", d.Key, fail).
			WithDetail("key", d.Key).
			WithDetail("command", d.Command)
	}

	if _, exists := r.editors[d.Key]; exists {
		r.logger.Debug().Str("key", d.Key).Msg("Editor overridden")
	}
	r.editors[d.Key] = d
	return nil
}

// Lookup returns the descriptor registered under key
func (r *Registry) Lookup(key string) (*Descriptor, error) {
	d, ok := r.editors[key]
	if !ok {
		return nil, errors.Newf(errors.ErrEditorNotFound, "no editor named %q", key).
			WithDetail("key", key)
	}
	return d, nil
}

// List returns every descriptor sorted by key
func (r *Registry) List() []*Descriptor {
	out := make([]*Descriptor, 0, len(r.editors))
	for _, d := range r.editors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// LoadDir registers every *.yaml and *.yml descriptor file in dir. A
// missing directory is not an error. A descriptor without a key takes the
// file's base name.
func (r *Registry) LoadDir(fsys types.FS, dir string) error {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		if _, statErr := fsys.Stat(dir); statErr != nil {
			r.logger.Debug().Str("dir", dir).Msg("No editor directory")
			return nil
		}
		return errors.Wrapf(err, errors.ErrConfigLoad, "cannot read editor directory %s", dir)
	}

	for _, entry := range entries {
		name := entry.Name()
		ext := filepath.Ext(name)
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}

		path := filepath.Join(dir, name)
		data, err := fsys.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrConfigLoad, "cannot read %s", path)
		}

		var d Descriptor
		if err := yaml.Unmarshal(data, &d); err != nil {
			return errors.Wrapf(err, errors.ErrConfigParse, "cannot parse %s", path)
		}
		if d.Key == "" {
			d.Key = strings.TrimSuffix(name, ext)
		}
		if err := r.Register(&d); err != nil {
			return err
		}
		r.logger.Debug().Str("key", d.Key).Str("file", path).Msg("Editor loaded")
	}
	return nil
}
