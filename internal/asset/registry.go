package asset

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Registry is the in-memory index over the asset filesystem. It is shared
// mutable state across all request-handling goroutines and guarded by a
// single coarse lock; per-asset fields are only mutated through Update so
// the same guard covers them.
//
// The registry is a cache, not the source of truth: a Lookup miss falls
// back to scanning the upload directory for the id prefix and reconstructs
// a minimal asset, which keeps the system working across a restart at the
// cost of recomputing any richer metadata (duration, codec probe).
type Registry struct {
	mu      sync.Mutex
	assets  map[string]*Asset
	locator Locator
	logger  *slog.Logger
}

// NewRegistry creates an empty registry over the given artifact layout.
func NewRegistry(locator Locator, logger *slog.Logger) *Registry {
	return &Registry{
		assets:  make(map[string]*Asset),
		locator: locator,
		logger:  logger,
	}
}

// Register inserts a new asset. An already-present id is rejected with
// ErrDuplicateID.
func (r *Registry) Register(a *Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.assets[a.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, a.ID)
	}
	r.assets[a.ID] = a
	return nil
}

// Lookup returns a snapshot of the asset for id. On an in-memory miss it
// scans the upload directory and, when a source file with the id prefix
// exists, reconstructs and re-registers a minimal asset (duration unknown,
// playability defaulting to true) so later mutations stick.
func (r *Registry) Lookup(id string) (Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.assets[id]; ok {
		return *a, nil
	}

	path, filename, ok := r.locator.ScanSource(id)
	if !ok {
		return Asset{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	recovered := &Asset{
		ID:               id,
		OriginalFilename: filename,
		SourcePath:       path,
		BrowserPlayable:  true,
		PreviewState:     PreviewAbsent,
		CreatedAt:        time.Now(),
	}
	r.assets[id] = recovered

	if r.logger != nil {
		r.logger.Info("asset recovered from disk", "asset_id", id, "filename", filename)
	}
	return *recovered, nil
}

// Update applies fn to the asset under the registry lock. Unknown ids
// (including ids whose files are gone) return ErrNotFound.
func (r *Registry) Update(id string, fn func(*Asset)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.assets[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	fn(a)
	return nil
}

// Remove deletes the in-memory entry only. File removal belongs to
// Cleanup so a registry swap never silently deletes data.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.assets, id)
}

// Count returns the number of indexed assets.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.assets)
}
