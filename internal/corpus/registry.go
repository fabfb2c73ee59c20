package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"musemind/internal/embedding"
)

// Registry manages the loaded corpus indexes. A corpus can be known
// (configured) without being available (loaded): missing or corrupt
// index files are logged and skipped so the rest of the system keeps
// serving.
type Registry struct {
	mu       sync.RWMutex
	indexes  map[string]*Index
	known    map[string]string // name -> index path
	embedder embedding.Embedder
	logger   *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(embedder embedding.Embedder, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		indexes:  make(map[string]*Index),
		known:    make(map[string]string),
		embedder: embedder,
		logger:   logger,
	}
}

// LoadAll loads every configured corpus index. Load failures are
// logged, not returned: a corpus with a broken index stays known but
// unavailable.
func (r *Registry) LoadAll(corpora map[string]string) {
	for name, path := range corpora {
		r.Load(name, path)
	}
}

// Load registers a corpus and attempts to load its index from disk.
func (r *Registry) Load(name, path string) {
	r.mu.Lock()
	r.known[name] = path
	r.mu.Unlock()

	idx, err := Open(path, name, r.embedder)
	if err != nil {
		r.logger.Warn("corpus index not loaded", "corpus", name, "path", path, "error", err)
		return
	}

	r.mu.Lock()
	r.indexes[name] = idx
	r.mu.Unlock()
	r.logger.Info("corpus index loaded", "corpus", name, "chunks", idx.Size())
}

// Get returns the loaded index for a corpus, if available.
func (r *Registry) Get(name string) (*Index, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.indexes[name]
	return idx, ok
}

// Known reports whether a corpus name is configured, loaded or not.
func (r *Registry) Known(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.known[name]
	return ok
}

// ListKnown returns all configured corpus names, sorted.
func (r *Registry) ListKnown() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.known))
	for name := range r.known {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListAvailable returns the names of corpora with a loaded index, sorted.
func (r *Registry) ListAvailable() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.indexes))
	for name := range r.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Search runs a similarity query against one corpus. It returns
// ErrIndexUnavailable when the corpus has no loaded index.
func (r *Registry) Search(ctx context.Context, name, query string, k int) ([]DocumentChunk, error) {
	idx, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("corpus %q: %w", name, ErrIndexUnavailable)
	}
	return idx.Search(ctx, query, k)
}
