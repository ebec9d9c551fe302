package metadata

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/arthur-debert/photobatch/pkg/types"
	"github.com/beevik/etree"
)

// Namespaces known to the writer, by prefix
var Namespaces = map[string]string{
	"dc":        "http://purl.org/dc/elements/1.1/",
	"xmp":       "http://ns.adobe.com/xap/1.0/",
	"photoshop": "http://ns.adobe.com/photoshop/1.0/",
	"exif":      "http://ns.adobe.com/exif/1.0/",
	"tiff":      "http://ns.adobe.com/tiff/1.0/",
	"lr":        "http://ns.adobe.com/lightroom/1.0/",
}

const (
	nsX   = "adobe:ns:meta/"
	nsRDF = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)

// SidecarStyle selects how a new sidecar is named
type SidecarStyle string

const (
	// StyleAppend names the sidecar photo.jpg.xmp
	StyleAppend SidecarStyle = "append"
	// StyleReplace names the sidecar photo.xmp
	StyleReplace SidecarStyle = "replace"
)

// Writer flushes queued edits into XMP sidecars
type Writer struct {
	fs    types.FS
	queue *Queue
	style SidecarStyle
}

// NewWriter creates a writer for the edits held in queue
func NewWriter(fsys types.FS, queue *Queue, style SidecarStyle) *Writer {
	if style != StyleReplace {
		style = StyleAppend
	}
	return &Writer{fs: fsys, queue: queue, style: style}
}

// SidecarPath returns the sidecar used for path: an existing one in either
// naming style, otherwise the configured style
func (w *Writer) SidecarPath(path string) string {
	appended := path + ".xmp"
	replaced := strings.TrimSuffix(path, filepath.Ext(path)) + ".xmp"

	for _, candidate := range []string{appended, replaced} {
		if _, err := w.fs.Lstat(candidate); err == nil {
			return candidate
		}
	}
	if w.style == StyleReplace {
		return replaced
	}
	return appended
}

// Flush writes the queued edits of path into its sidecar, merging with the
// properties already there. The queue is left untouched.
func (w *Writer) Flush(path string) error {
	edits := w.queue.Edits(path)
	if len(edits) == 0 {
		return nil
	}

	sidecar := w.SidecarPath(path)
	doc, desc, err := w.load(sidecar)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(edits))
	for k := range edits {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := setProperty(desc, key, edits[key]); err != nil {
			return err
		}
	}

	doc.Indent(1)
	data, err := doc.WriteToBytes()
	if err != nil {
		return errors.Wrapf(err, errors.ErrMetadataWrite, "cannot encode %s", sidecar)
	}
	if err := w.fs.WriteFile(sidecar, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrMetadataWrite, "cannot write %s", sidecar)
	}
	return nil
}

// Read returns the simple properties stored in the sidecar of path
func (w *Writer) Read(path string) (map[string]string, error) {
	_, desc, err := w.load(w.SidecarPath(path))
	if err != nil {
		return nil, err
	}

	props := make(map[string]string)
	for _, attr := range desc.Attr {
		if _, ok := Namespaces[attr.Space]; ok {
			props[attr.Space+":"+attr.Key] = attr.Value
		}
	}
	for _, child := range desc.ChildElements() {
		if len(child.ChildElements()) > 0 {
			continue
		}
		props[child.FullTag()] = child.Text()
	}
	return props, nil
}

// load parses an existing sidecar or builds an empty XMP skeleton
func (w *Writer) load(sidecar string) (*etree.Document, *etree.Element, error) {
	doc := etree.NewDocument()

	data, err := w.fs.ReadFile(sidecar)
	switch {
	case err == nil:
		if err := doc.ReadFromBytes(data); err != nil {
			return nil, nil, errors.Wrapf(err, errors.ErrMetadataRead, "cannot parse %s", sidecar)
		}
	case os.IsNotExist(err):
		meta := doc.CreateElement("x:xmpmeta")
		meta.CreateAttr("xmlns:x", nsX)
		rdf := meta.CreateElement("rdf:RDF")
		rdf.CreateAttr("xmlns:rdf", nsRDF)
		desc := rdf.CreateElement("rdf:Description")
		desc.CreateAttr("rdf:about", "")
	default:
		return nil, nil, errors.Wrapf(err, errors.ErrMetadataRead, "cannot read %s", sidecar)
	}

	desc := doc.FindElement("//rdf:Description")
	if desc == nil {
		return nil, nil, errors.Newf(errors.ErrMetadataRead, "%s has no rdf:Description", sidecar)
	}
	return doc, desc, nil
}

func setProperty(desc *etree.Element, key, value string) error {
	prefix, name, ok := strings.Cut(key, ":")
	if !ok || name == "" {
		return errors.Newf(errors.ErrInvalidInput, "metadata key %q must look like prefix:Name", key)
	}
	ns, known := Namespaces[prefix]
	if !known {
		return errors.Newf(errors.ErrInvalidInput, "unknown metadata namespace %q", prefix)
	}

	if desc.SelectAttr("xmlns:"+prefix) == nil {
		desc.CreateAttr("xmlns:"+prefix, ns)
	}
	// a property may be stored as an attribute; the element form wins
	desc.RemoveAttr(key)

	el := desc.SelectElement(key)
	if el == nil {
		el = desc.CreateElement(key)
	}
	el.SetText(value)
	return nil
}
