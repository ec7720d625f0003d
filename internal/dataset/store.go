package dataset

import (
	"sync/atomic"
	"time"

	"github.com/stwalsh4118/ll97/internal/models"
)

// Store holds the index currently being served. It is empty until the
// first build finishes and can be swapped atomically on rebuild.
type Store struct {
	current atomic.Pointer[loaded]
}

type loaded struct {
	index   *Index
	builtAt time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Set replaces the served index.
func (s *Store) Set(idx *Index) {
	s.current.Store(&loaded{index: idx, builtAt: time.Now()})
}

// Ready reports whether an index has been loaded.
func (s *Store) Ready() bool {
	return s.current.Load() != nil
}

// BuiltAt returns when the served index was loaded, or the zero time.
func (s *Store) BuiltAt() time.Time {
	if l := s.current.Load(); l != nil {
		return l.builtAt
	}
	return time.Time{}
}

// Lookup returns the projection for an already normalized key.
func (s *Store) Lookup(key string) (models.Projection, bool) {
	l := s.current.Load()
	if l == nil {
		return models.Projection{}, false
	}
	return l.index.Lookup(key)
}

// Len returns the number of loaded records, or 0 before the first build.
func (s *Store) Len() int {
	if l := s.current.Load(); l != nil {
		return l.index.Len()
	}
	return 0
}

// Projections returns the loaded projections in output row order.
func (s *Store) Projections() []models.Projection {
	if l := s.current.Load(); l != nil {
		return l.index.Projections()
	}
	return nil
}
