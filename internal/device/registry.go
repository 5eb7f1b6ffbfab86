package device

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry provides cached access to TV records.
//
// The registry loads all TVs into memory at startup and serves reads
// from the cache. Writes go through to the repository and update the
// cache on success. The session layer reads TV config on every
// reconnect attempt, so cache reads keep that path off the database.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Returned TVs are copies; mutations do not affect the cache.
type Registry struct {
	repo  Repository
	cache map[string]*TV
	mu    sync.RWMutex
}

// NewRegistry creates a registry backed by the given repository.
// Call Load before first use to populate the cache.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:  repo,
		cache: make(map[string]*TV),
	}
}

// Load populates the cache from the repository.
// Any existing cache contents are replaced.
func (r *Registry) Load(ctx context.Context) error {
	tvs, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading devices: %w", err)
	}

	cache := make(map[string]*TV, len(tvs))
	for i := range tvs {
		tv := tvs[i]
		cache[tv.ID] = &tv
	}

	r.mu.Lock()
	r.cache = cache
	r.mu.Unlock()

	return nil
}

// Get retrieves a TV by ID from the cache.
// Returns ErrDeviceNotFound if the TV does not exist.
func (r *Registry) Get(id string) (*TV, error) {
	r.mu.RLock()
	tv, ok := r.cache[id]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrDeviceNotFound
	}

	return tv.Clone(), nil
}

// All returns all cached TVs sorted by ID.
func (r *Registry) All() []TV {
	r.mu.RLock()
	tvs := make([]TV, 0, len(r.cache))
	for _, tv := range r.cache {
		tvs = append(tvs, *tv.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(tvs, func(i, j int) bool { return tvs[i].ID < tvs[j].ID })

	return tvs
}

// Count returns the number of cached TVs.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// Create persists a new TV and adds it to the cache.
func (r *Registry) Create(ctx context.Context, tv *TV) error {
	if err := r.repo.Create(ctx, tv); err != nil {
		return err
	}

	r.mu.Lock()
	r.cache[tv.ID] = tv.Clone()
	r.mu.Unlock()

	return nil
}

// Update persists changes to a TV and refreshes the cache entry.
func (r *Registry) Update(ctx context.Context, tv *TV) error {
	if err := r.repo.Update(ctx, tv); err != nil {
		return err
	}

	r.mu.Lock()
	r.cache[tv.ID] = tv.Clone()
	r.mu.Unlock()

	return nil
}

// Delete removes a TV from the repository and the cache.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.cache, id)
	r.mu.Unlock()

	return nil
}

// SetAuthToken stores a pairing token and refreshes the cache entry.
func (r *Registry) SetAuthToken(ctx context.Context, id string, token string) error {
	if err := r.repo.UpdateAuthToken(ctx, id, token); err != nil {
		return err
	}

	r.mu.Lock()
	if tv, ok := r.cache[id]; ok {
		tv.AuthToken = token
	}
	r.mu.Unlock()

	return nil
}

// SaveState persists the last known state for a TV.
// State is write-through only; it is not cached here because the
// session layer holds the live view.
func (r *Registry) SaveState(ctx context.Context, id string, state PowerState, source string) error {
	return r.repo.SaveState(ctx, id, state, source)
}

// LastState retrieves the persisted last known state for a TV.
func (r *Registry) LastState(ctx context.Context, id string) (*StoredState, error) {
	return r.repo.GetState(ctx, id)
}
