package store

import (
	"context"
	"sort"
	"sync"

	"censusdesk/internal/census/models"
	id "censusdesk/pkg/domain"
	"censusdesk/pkg/platform/sentinel"
)

// InMemoryStore keeps census records in process memory. The identity index is
// maintained under the write lock, so the uniqueness check and the write are atomic.
type InMemoryStore struct {
	mu         sync.RWMutex
	records    map[id.RecordID]*models.Record
	byIdentity map[models.IdentityKey]id.RecordID
}

// NewInMemory constructs an empty in-memory census store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		records:    make(map[id.RecordID]*models.Record),
		byIdentity: make(map[models.IdentityKey]id.RecordID),
	}
}

func (s *InMemoryStore) FindByID(_ context.Context, recordID id.RecordID) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[recordID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copyRecord := *record
	return &copyRecord, nil
}

func (s *InMemoryStore) List(_ context.Context, spec models.QuerySpec) ([]*models.Record, error) {
	if spec.Deny {
		return []*models.Record{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Record, 0, len(s.records))
	for _, record := range s.records {
		if spec.SubmittedBy != nil && record.SubmittedByID != *spec.SubmittedBy {
			continue
		}
		copyRecord := *record
		out = append(out, &copyRecord)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

func (s *InMemoryStore) FindByIdentity(_ context.Context, key models.IdentityKey) ([]id.RecordID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if recordID, ok := s.byIdentity[key]; ok {
		return []id.RecordID{recordID}, nil
	}
	return nil, nil
}

func (s *InMemoryStore) Insert(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byIdentity[record.Key()]; ok {
		return sentinel.ErrAlreadyUsed
	}
	if _, ok := s.records[record.ID]; ok {
		return sentinel.ErrConflict
	}
	copyRecord := *record
	s.records[record.ID] = &copyRecord
	s.byIdentity[record.Key()] = record.ID
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.records[record.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if owner, ok := s.byIdentity[record.Key()]; ok && owner != record.ID {
		return sentinel.ErrAlreadyUsed
	}
	delete(s.byIdentity, existing.Key())
	copyRecord := *record
	s.records[record.ID] = &copyRecord
	s.byIdentity[record.Key()] = record.ID
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, recordID id.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.records[recordID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byIdentity, existing.Key())
	delete(s.records, recordID)
	return nil
}
