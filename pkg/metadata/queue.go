package metadata

import (
	"sort"
	"sync"

	"github.com/arthur-debert/photobatch/pkg/logging"
	"github.com/arthur-debert/photobatch/pkg/types"
	"github.com/rs/zerolog"
)

// Queue holds pending metadata edits keyed by file path. Values are XMP
// properties written as "prefix:Name", for example "xmp:Rating".
type Queue struct {
	mu      sync.Mutex
	pending map[string]map[string]string
	logger  zerolog.Logger
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{
		pending: make(map[string]map[string]string),
		logger:  logging.GetLogger("metadata"),
	}
}

// Set records an edit for path
func (q *Queue) Set(path, key, value string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	edits, ok := q.pending[path]
	if !ok {
		edits = make(map[string]string)
		q.pending[path] = edits
	}
	edits[key] = value
}

// Pending reports whether path has unsaved edits
func (q *Queue) Pending(path string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending[path]) > 0
}

// Edits returns a copy of the unsaved edits of path
func (q *Queue) Edits(path string) map[string]string {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make(map[string]string, len(q.pending[path]))
	for k, v := range q.pending[path] {
		out[k] = v
	}
	return out
}

// Remove drops every edit of path
func (q *Queue) Remove(path string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, path)
}

// Paths returns the files with unsaved edits, sorted
func (q *Queue) Paths() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]string, 0, len(q.pending))
	for p := range q.pending {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// FinalizeHook is run for every file of a successful batch: its edits are
// on disk now, so they leave the queue
func (q *Queue) FinalizeHook(path string) {
	if q.Pending(path) {
		q.logger.Debug().Str("path", path).Msg("Metadata written, dropping from queue")
	}
	q.Remove(path)
}

// DiscardHook is run for every file of a batch that did not succeed. Only
// an explicit user discard throws the edits away; after a failure or a
// cancel they stay queued for another attempt.
func (q *Queue) DiscardHook(path string, cause types.DiscardCause) {
	if cause != types.DiscardUser {
		q.logger.Debug().
			Str("path", path).
			Str("cause", cause.String()).
			Msg("Keeping unsaved metadata")
		return
	}
	q.logger.Info().Str("path", path).Msg("Discarding unsaved metadata")
	q.Remove(path)
}
