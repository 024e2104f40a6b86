package cache

import (
	"context"
	"sync"
	"time"

	"grocery-pricing-engine/internal/pkg/common"
)

// Entry is one cached price record. Consistency unit is a single upsert
// keyed by (IngredientKey, LocationKey); the backing store's own upsert
// semantics provide mutual exclusion, no application locking.
type Entry struct {
	IngredientKey string                      `json:"ingredientKey"`
	LocationKey   string                      `json:"locationKey"`
	Option        common.SanitizedPriceOption `json:"option"`
	CachedAt      time.Time                   `json:"cachedAt"`
	ExpiresAt     time.Time                   `json:"expiresAt"`
}

// Store is the persistence collaborator behind the price cache. Get returns
// (nil, nil) on a miss.
type Store interface {
	Get(ctx context.Context, ingredientKey, locationKey string) (*Entry, error)
	Upsert(ctx context.Context, entry Entry) error
	// DeleteBefore removes entries cached before the cutoff and reports how
	// many were purged. Backends with native expiry may report 0.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int, error)
	Close() error
}

// MemoryStore is the in-process Store used in development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func memoryKey(ingredientKey, locationKey string) string {
	return ingredientKey + "|" + locationKey
}

// Get implements Store.
func (m *MemoryStore) Get(ctx context.Context, ingredientKey, locationKey string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[memoryKey(ingredientKey, locationKey)]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// Upsert implements Store.
func (m *MemoryStore) Upsert(ctx context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[memoryKey(entry.IngredientKey, entry.LocationKey)] = entry
	return nil
}

// DeleteBefore implements Store.
func (m *MemoryStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	purged := 0
	for key, entry := range m.entries {
		if entry.CachedAt.Before(cutoff) {
			delete(m.entries, key)
			purged++
		}
	}
	return purged, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]Entry)
	return nil
}
