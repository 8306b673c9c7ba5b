package cart

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const defaultSweepInterval = time.Minute

type entry struct {
	store    *Store
	lastSeen time.Time
}

// Registry hands out one Store per session so concurrent requests of a
// session share the same in-memory cart. Stores idle for longer than the
// configured timeout are dropped; the slot stays authoritative and the next
// request reloads it.
type Registry struct {
	slot        Slot
	logger      *slog.Logger
	idleTimeout time.Duration
	now         func() time.Time

	mu     sync.Mutex
	stores map[string]*entry
}

// NewRegistry creates a registry backed by slot.
func NewRegistry(slot Slot, idleTimeout time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		slot:        slot,
		logger:      logger,
		idleTimeout: idleTimeout,
		now:         time.Now,
		stores:      make(map[string]*entry),
	}
}

// Get returns the loaded Store for sessionID, creating and loading it on
// first use.
func (r *Registry) Get(ctx context.Context, sessionID string) *Store {
	r.mu.Lock()
	e, ok := r.stores[sessionID]
	if !ok {
		e = &entry{store: NewStore(r.slot, sessionID, r.logger)}
		r.stores[sessionID] = e
		activeStores.Inc()
	}
	e.lastSeen = r.now()
	r.mu.Unlock()

	// Load outside the registry lock; the store serializes it.
	e.store.Load(ctx)
	return e.store
}

// Len returns the number of stores held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Sweep drops stores idle for longer than the idle timeout.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idleTimeout)
	removed := 0
	for id, e := range r.stores {
		if e.lastSeen.Before(cutoff) {
			delete(r.stores, id)
			removed++
		}
	}
	activeStores.Sub(float64(removed))
	return removed
}

// Run sweeps periodically until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) {
	interval := defaultSweepInterval
	if r.idleTimeout > 0 && r.idleTimeout < interval {
		interval = r.idleTimeout
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Debug("evicted idle cart stores", slog.Int("count", n))
			}
		}
	}
}
