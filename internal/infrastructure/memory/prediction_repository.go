// Package memory keeps a bounded prediction history in process.
package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"

	"github.com/vi31/anxiety-predictor/internal/domain/model"
	"github.com/vi31/anxiety-predictor/internal/domain/port"
)

// PredictionRepository implements port.PredictionRepository on an LRU
// cache. Once full, the oldest record is evicted on each save. Lookups do
// not refresh recency, so ListRecent reflects save order.
type PredictionRepository struct {
	cache *lru.Cache
}

var _ port.PredictionRepository = (*PredictionRepository)(nil)

// NewPredictionRepository creates a repository holding at most size records.
func NewPredictionRepository(size int) (*PredictionRepository, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create history cache: %w", err)
	}
	return &PredictionRepository{cache: cache}, nil
}

// Save stores the record, evicting the oldest one when full.
func (r *PredictionRepository) Save(_ context.Context, record *model.PredictionRecord) error {
	r.cache.Add(record.ID(), record)
	return nil
}

// FindByID returns the record stored under id.
func (r *PredictionRepository) FindByID(_ context.Context, id uuid.UUID) (*model.PredictionRecord, error) {
	v, ok := r.cache.Peek(id)
	if !ok {
		return nil, port.ErrPredictionNotFound
	}
	return v.(*model.PredictionRecord), nil
}

// ListRecent returns up to limit records, newest first.
func (r *PredictionRepository) ListRecent(_ context.Context, limit int) ([]*model.PredictionRecord, error) {
	keys := r.cache.Keys()
	out := make([]*model.PredictionRecord, 0, min(limit, len(keys)))
	for i := len(keys) - 1; i >= 0 && len(out) < limit; i-- {
		// Evicted between Keys and Peek.
		v, ok := r.cache.Peek(keys[i])
		if !ok {
			continue
		}
		out = append(out, v.(*model.PredictionRecord))
	}
	return out, nil
}

// Len returns the number of stored records.
func (r *PredictionRepository) Len() int { return r.cache.Len() }
