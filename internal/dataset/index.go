package dataset

import "github.com/stwalsh4118/ll97/internal/models"

// Index is a read-only key lookup over the projections of one build.
// It is immutable after construction and safe for concurrent readers.
type Index struct {
	projections []models.Projection
	byKey       map[string]int
}

// NewIndex indexes projections by normalized key. When the primary source
// listed a building twice, the first row in key order is served.
func NewIndex(projections []models.Projection) *Index {
	idx := &Index{
		projections: projections,
		byKey:       make(map[string]int, len(projections)),
	}
	for i, p := range projections {
		if _, exists := idx.byKey[p.Record.Key]; !exists {
			idx.byKey[p.Record.Key] = i
		}
	}
	return idx
}

// Lookup returns the projection for an already normalized key.
func (idx *Index) Lookup(key string) (models.Projection, bool) {
	i, ok := idx.byKey[key]
	if !ok {
		return models.Projection{}, false
	}
	return idx.projections[i], true
}

// Len returns the number of indexed projections, duplicates included.
func (idx *Index) Len() int {
	return len(idx.projections)
}

// Projections returns every projection in output row order. Callers must not modify it.
func (idx *Index) Projections() []models.Projection {
	return idx.projections
}
