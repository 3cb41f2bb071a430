package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"history-quiz-service/internal/domain"
)

// ProgressStore is an in-memory implementation of app.ProgressStore.
// A single mutex covers answers and progress so SaveSubmission is atomic.
type ProgressStore struct {
	mu       sync.RWMutex
	answers  map[answerKey]domain.UserAnswer
	progress map[progressKey]domain.UserProgress
}

type answerKey struct {
	userID, quizID, questionID string
}

type progressKey struct {
	userID, quizID string
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		answers:  make(map[answerKey]domain.UserAnswer),
		progress: make(map[progressKey]domain.UserProgress),
	}
}

func (s *ProgressStore) FindAnswer(_ context.Context, userID, quizID, questionID string) (*domain.UserAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.answers[answerKey{userID, quizID, questionID}]; ok {
		return &a, nil
	}
	return nil, nil
}

func (s *ProgressStore) ListAnswers(_ context.Context, userID, quizID string) ([]domain.UserAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.UserAnswer
	for k, a := range s.answers {
		if k.userID == userID && k.quizID == quizID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *ProgressStore) FindProgress(_ context.Context, userID, quizID string) (*domain.UserProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.progress[progressKey{userID, quizID}]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *ProgressStore) SaveSubmission(_ context.Context, answer domain.UserAnswer, awardPoint bool) (domain.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ak := answerKey{answer.UserID, answer.QuizID, answer.QuestionID}
	if existing, ok := s.answers[ak]; ok {
		existing.Selected = answer.Selected
		s.answers[ak] = existing
	} else {
		s.answers[ak] = answer
	}

	pk := progressKey{answer.UserID, answer.QuizID}
	p, ok := s.progress[pk]
	if !ok {
		p = domain.UserProgress{
			ID:     uuid.NewString(),
			UserID: answer.UserID,
			QuizID: answer.QuizID,
			Score:  0,
		}
	}
	if awardPoint {
		p.Score++
	}
	s.progress[pk] = p
	return p, nil
}
