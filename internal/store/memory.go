package store

import (
	"context"
	"sync"

	"timelock.keep/internal/models"
)

// Compile-time interface check
var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps records in a plain map. It is the default store and the
// substitute used by tests. Records are cloned on the way in and out so a
// caller never shares memory with the stored copy.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.SecretRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*models.SecretRecord)}
}

func (s *MemoryStore) Create(ctx context.Context, rec *models.SecretRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.ID]; ok {
		return ErrConflict
	}

	clone := *rec
	s.records[rec.ID] = &clone
	return nil
}

func (s *MemoryStore) FindActive(ctx context.Context, id string) (*models.SecretRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok || !rec.Active {
		return nil, ErrNotFound
	}

	clone := *rec
	return &clone, nil
}

func (s *MemoryStore) ListActive(ctx context.Context) ([]*models.SecretRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]*models.SecretRecord, 0, len(s.records))
	for _, rec := range s.records {
		if !rec.Active {
			continue
		}
		clone := *rec
		recs = append(recs, &clone)
	}
	return recs, nil
}

func (s *MemoryStore) Retire(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return false, ErrNotFound
	}
	if !rec.Active {
		return false, nil
	}

	rec.Active = false
	return true, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	return nil
}
