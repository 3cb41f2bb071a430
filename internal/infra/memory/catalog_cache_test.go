package memory

import (
	"context"
	"testing"
	"time"

	"history-quiz-service/internal/domain"
)

func TestCatalogCacheCaches(t *testing.T) {
	loader := &countingLoader{
		CatalogLoader: NewStaticCatalogLoader(sampleQuestions()),
	}
	cache := NewCatalogCache(loader, time.Minute)

	if _, err := cache.Question(context.Background(), "quiz-1", "q1"); err != nil {
		t.Fatalf("get question: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.QuestionsByTier(context.Background(), "quiz-1", domain.DifficultyEasy); err != nil {
		t.Fatalf("get tier: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestCatalogCacheFiltersTier(t *testing.T) {
	cache := NewCatalogCache(NewStaticCatalogLoader(sampleQuestions()), time.Minute)

	questions, err := cache.QuestionsByTier(context.Background(), "quiz-1", domain.DifficultyMedium)
	if err != nil {
		t.Fatalf("get tier: %v", err)
	}
	if len(questions) != 1 || questions[0].ID != "q2" {
		t.Fatalf("expected only the medium question, got %+v", questions)
	}

	hard, err := cache.QuestionsByTier(context.Background(), "quiz-1", domain.DifficultyHard)
	if err != nil {
		t.Fatalf("get tier: %v", err)
	}
	if len(hard) != 0 {
		t.Fatalf("expected empty hard tier, got %+v", hard)
	}
}

func TestCatalogCacheUnknownQuestion(t *testing.T) {
	cache := NewCatalogCache(NewStaticCatalogLoader(sampleQuestions()), time.Minute)

	if _, err := cache.Question(context.Background(), "quiz-1", "missing"); err != domain.ErrQuestionNotFound {
		t.Fatalf("expected question-not-found, got %v", err)
	}
}

type countingLoader struct {
	CatalogLoader
	calls int
}

func (l *countingLoader) LoadQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	l.calls++
	return l.CatalogLoader.LoadQuestions(ctx, quizID)
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:         "q1",
			QuizID:     "quiz-1",
			Prompt:     "Which city was the capital of the Roman Empire?",
			Options:    []string{"Rome", "Athens"},
			Answer:     "Rome",
			Difficulty: domain.DifficultyEasy,
		},
		{
			ID:         "q2",
			QuizID:     "quiz-1",
			Prompt:     "Who was the first Roman emperor?",
			Options:    []string{"Julius Caesar", "Augustus"},
			Answer:     "Augustus",
			Difficulty: domain.DifficultyMedium,
		},
	}
}
