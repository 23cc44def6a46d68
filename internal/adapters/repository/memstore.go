package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/frostline/restcurve/internal/domain/model"

	"github.com/frostline/restcurve/pkg/metrics"
)

// MemStore is an in-memory Store keyed by entity id. Reads return copies so
// concurrent pipeline runs can never observe a mutation.
type MemStore struct {
	mu      sync.RWMutex
	byID    map[string][]model.GameRecord
	count   int
	ordered []string // entity ids in first-seen order, re-sorted on read
}

// NewMemStore creates an empty in-memory store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		byID: make(map[string][]model.GameRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithInitialCapacity pre-sizes the entity map.
func WithInitialCapacity(entities int) Option {
	return func(s *MemStore) {
		if entities > 0 {
			s.byID = make(map[string][]model.GameRecord, entities)
		}
	}
}

// Add appends records to the log.
func (s *MemStore) Add(_ context.Context, records ...model.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if _, ok := s.byID[r.EntityID]; !ok {
			s.ordered = append(s.ordered, r.EntityID)
		}
		s.byID[r.EntityID] = append(s.byID[r.EntityID], r)
		s.count++
	}
	metrics.UpdateStoredRecords(s.count)
	metrics.UpdateStoredEntities(len(s.byID))
	return nil
}

// All returns a copy of every stored record, grouped by entity in sorted
// entity order so repeated calls are byte-identical.
func (s *MemStore) All(_ context.Context) ([]model.GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.sortedIDs()
	out := make([]model.GameRecord, 0, s.count)
	for _, id := range ids {
		out = append(out, s.byID[id]...)
	}
	return out, nil
}

// Entity returns one entity's records in insertion order.
func (s *MemStore) Entity(_ context.Context, entityID string) ([]model.GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.byID[entityID]
	if !ok {
		return nil, ErrEntityNotFound
	}
	out := make([]model.GameRecord, len(records))
	copy(out, records)
	return out, nil
}

// Entities lists all entity ids, sorted ascending.
func (s *MemStore) Entities(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedIDs(), nil
}

// Count returns the number of stored records.
func (s *MemStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count, nil
}

func (s *MemStore) sortedIDs() []string {
	ids := make([]string, len(s.ordered))
	copy(ids, s.ordered)
	sort.Strings(ids)
	return ids
}
