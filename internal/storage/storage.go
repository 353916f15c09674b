package storage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/eugenenazirov/maxweight/internal/food"
	"github.com/eugenenazirov/maxweight/internal/metrics"
)

// DefaultMaxItems bounds the catalog size accepted by SetCatalog.
const DefaultMaxItems = 100_000

var (
	// ErrCatalogTooLarge indicates the provided catalog exceeds the configured maximum.
	ErrCatalogTooLarge = errors.New("catalog exceeds the maximum number of items")
)

// Storage provides access to the active food catalog.
type Storage interface {
	GetCatalog() (food.Catalog, time.Time, error)
	SetCatalog(catalog food.Catalog) error
}

// MemoryStorage keeps the catalog in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu        sync.RWMutex
	catalog   food.Catalog
	updatedAt time.Time
	maxItems  int
	clock     func() time.Time
}

// Option configures MemoryStorage.
type Option func(*MemoryStorage)

// WithMaxItems overrides DefaultMaxItems.
func WithMaxItems(n int) Option {
	return func(s *MemoryStorage) {
		if n > 0 {
			s.maxItems = n
		}
	}
}

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *MemoryStorage) {
		s.clock = clock
	}
}

// NewMemoryStorage initialises an empty catalog store.
func NewMemoryStorage(opts ...Option) *MemoryStorage {
	s := &MemoryStorage{
		catalog:  food.Catalog{},
		maxItems: DefaultMaxItems,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.updatedAt = s.clock()
	return s
}

// GetCatalog returns a copy of the active catalog and when it was last replaced.
func (s *MemoryStorage) GetCatalog() (food.Catalog, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.catalog.Clone(), s.updatedAt, nil
}

// SetCatalog validates and stores a copy of the provided catalog.
func (s *MemoryStorage) SetCatalog(catalog food.Catalog) error {
	if len(catalog) > s.maxItems {
		return fmt.Errorf("%w: %d items, limit is %d", ErrCatalogTooLarge, len(catalog), s.maxItems)
	}

	cloned := catalog.Clone()
	s.mu.Lock()
	s.catalog = cloned
	s.updatedAt = s.clock()
	s.mu.Unlock()

	metrics.SetCatalogSize(len(cloned))
	return nil
}
