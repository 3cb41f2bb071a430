package memory

import (
	"context"
	"sync"

	"history-quiz-service/internal/domain"
)

// BadgeStore is an in-memory implementation of app.BadgeStore.
type BadgeStore struct {
	mu      sync.RWMutex
	catalog map[string]domain.Badge // by name
	held    map[string][]domain.Badge
}

func NewBadgeStore(catalog []domain.Badge) *BadgeStore {
	byName := make(map[string]domain.Badge, len(catalog))
	for _, b := range catalog {
		byName[b.Name] = b
	}
	return &BadgeStore{
		catalog: byName,
		held:    make(map[string][]domain.Badge),
	}
}

func (s *BadgeStore) BadgeByName(_ context.Context, name string) (domain.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.catalog[name]; ok {
		return b, nil
	}
	return domain.Badge{}, domain.ErrBadgeNotFound
}

func (s *BadgeStore) UserBadges(_ context.Context, userID string) ([]domain.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	badges := make([]domain.Badge, len(s.held[userID]))
	copy(badges, s.held[userID])
	return badges, nil
}

func (s *BadgeStore) AddBadge(_ context.Context, userID string, badge domain.Badge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held[userID] = append(s.held[userID], badge)
	return nil
}
