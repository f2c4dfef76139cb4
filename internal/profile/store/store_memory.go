// Package store persists actor profiles.
//
// Error contract: sentinel.ErrNotFound for a missing profile,
// sentinel.ErrAlreadyUsed when the e-mail belongs to another profile and
// sentinel.ErrConflict when the id is already registered.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"censusdesk/internal/profile/models"
	id "censusdesk/pkg/domain"
	"censusdesk/pkg/platform/sentinel"
)

// InMemoryStore keeps profiles in process memory.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[id.ActorID]*models.Profile
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[id.ActorID]*models.Profile)}
}

func (s *InMemoryStore) FindByID(_ context.Context, actorID id.ActorID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[actorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(p), nil
}

func (s *InMemoryStore) Insert(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.ID]; ok {
		return sentinel.ErrConflict
	}
	if s.emailTaken(p.Email, p.ID) {
		return sentinel.ErrAlreadyUsed
	}
	s.profiles[p.ID] = clone(p)
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	if s.emailTaken(p.Email, p.ID) {
		return sentinel.ErrAlreadyUsed
	}
	s.profiles[p.ID] = clone(p)
	return nil
}

func (s *InMemoryStore) ListByRole(_ context.Context, role models.Role) ([]*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Profile, 0)
	for _, p := range s.profiles {
		if p.Role == role {
			out = append(out, clone(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}


// emailTaken must be called with the lock held.
func (s *InMemoryStore) emailTaken(email string, except id.ActorID) bool {
	for otherID, other := range s.profiles {
		if otherID != except && strings.EqualFold(other.Email, email) {
			return true
		}
	}
	return false
}

func clone(p *models.Profile) *models.Profile {
	c := *p
	if p.Territory != nil {
		t := *p.Territory
		c.Territory = &t
	}
	return &c
}
