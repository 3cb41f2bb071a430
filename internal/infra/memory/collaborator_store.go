package memory

import (
	"context"
	"sync"

	"history-quiz-service/internal/domain"
)

// CollaboratorStore is an in-memory implementation of app.CollaboratorStore.
type CollaboratorStore struct {
	mu    sync.RWMutex
	roles map[string][]domain.QuizCollaborator // by quiz ID
}

func NewCollaboratorStore() *CollaboratorStore {
	return &CollaboratorStore{roles: make(map[string][]domain.QuizCollaborator)}
}

func (s *CollaboratorStore) AddCollaborator(_ context.Context, c domain.QuizCollaborator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[c.QuizID] = append(s.roles[c.QuizID], c)
	return nil
}

func (s *CollaboratorStore) FindCollaborator(_ context.Context, quizID, userID string) (*domain.QuizCollaborator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.roles[quizID] {
		if c.UserID == userID {
			out := c
			return &out, nil
		}
	}
	return nil, nil
}
