package app_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"history-quiz-service/internal/app"
	"history-quiz-service/internal/domain"
	"history-quiz-service/internal/infra/memory"
)

func TestSubmitAnswerTrimsAndIgnoresCase(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(defaultQuestions())

	result, err := engine.SubmitAnswer(ctx, "u1", "quiz-1", "q1", " Rome ")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !result.Correct || result.Awarded != 1 || result.TotalScore != 1 {
		t.Fatalf("expected correct submission worth 1 point, got %+v", result)
	}
}

func TestIdempotentResubmission(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(defaultQuestions())

	if _, err := engine.SubmitAnswer(ctx, "u1", "quiz-1", "q1", "rome"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	result, err := engine.SubmitAnswer(ctx, "u1", "quiz-1", "q1", "rome")
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if !result.Correct || result.Awarded != 0 || result.TotalScore != 1 {
		t.Fatalf("expected no double increment, got %+v", result)
	}
}

func TestResubmissionOverwritesSingleRow(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(defaultQuestions())

	if _, err := engine.SubmitAnswer(ctx, "u1", "quiz-1", "q1", "Athens"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := engine.SubmitAnswer(ctx, "u1", "quiz-1", "q1", "Carthage"); err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}

	answers, err := store.ListAnswers(ctx, "u1", "quiz-1")
	if err != nil {
		t.Fatalf("list answers: %v", err)
	}
	if len(answers) != 1 {
		t.Fatalf("expected exactly one answer row, got %d", len(answers))
	}
	if answers[0].Selected != "Carthage" {
		t.Fatalf("expected last submission to win, got %q", answers[0].Selected)
	}
}

func TestWrongAfterCorrectKeepsPoint(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(defaultQuestions())

	if _, err := engine.SubmitAnswer(ctx, "u1", "quiz-1", "q1", "Rome"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	result, err := engine.SubmitAnswer(ctx, "u1", "quiz-1", "q1", "Athens")
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if result.Correct {
		t.Fatalf("expected wrong answer, got %+v", result)
	}
	if result.TotalScore != 1 {
		t.Fatalf("expected earlier point kept, got score %d", result.TotalScore)
	}

	// Answering correctly again must not double-count either.
	result, err = engine.SubmitAnswer(ctx, "u1", "quiz-1", "q1", "Rome")
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if result.TotalScore != 2 {
		t.Fatalf("expected a point for the new correct transition, got %d", result.TotalScore)
	}
}

func TestSubmitUnknownQuestionFails(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(defaultQuestions())

	_, err := engine.SubmitAnswer(ctx, "u1", "quiz-1", "q-missing", "Rome")
	if err != domain.ErrQuestionNotFound {
		t.Fatalf("expected question-not-found, got %v", err)
	}
	answers, _ := store.ListAnswers(ctx, "u1", "quiz-1")
	if len(answers) != 0 {
		t.Fatalf("expected no partial write, got %d answers", len(answers))
	}
}

func TestAdaptiveTierProgression(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(tieredQuestions())

	assertTier := func(want domain.Difficulty) {
		t.Helper()
		questions, err := engine.AdaptiveQuestionSet(ctx, "quiz-1", "u1")
		if err != nil {
			t.Fatalf("adaptive set: %v", err)
		}
		if len(questions) == 0 {
			t.Fatalf("expected questions at tier %s", want)
		}
		for _, q := range questions {
			if q.Difficulty != want {
				t.Fatalf("expected tier %s, got %s", want, q.Difficulty)
			}
		}
	}

	// Fresh user: score 0, Easy.
	assertTier(domain.DifficultyEasy)

	pumpScore(t, store, "u1", "quiz-1", 6)
	assertTier(domain.DifficultyMedium)

	pumpScore(t, store, "u1", "quiz-1", 5) // total 11
	assertTier(domain.DifficultyHard)
}

func TestTierForScoreThresholds(t *testing.T) {
	cases := []struct {
		score int
		want  domain.Difficulty
	}{
		{0, domain.DifficultyEasy},
		{5, domain.DifficultyEasy},
		{6, domain.DifficultyMedium},
		{10, domain.DifficultyMedium},
		{11, domain.DifficultyHard},
		{15, domain.DifficultyHard},
	}
	for _, c := range cases {
		if got := app.TierForScore(c.score); got != c.want {
			t.Fatalf("score %d: expected %s, got %s", c.score, c.want, got)
		}
	}
}

func TestAdaptiveEmptyTierIsNotAnError(t *testing.T) {
	ctx := context.Background()
	// Only Easy questions exist.
	engine, store := newTestEngine(defaultQuestions())

	pumpScore(t, store, "u1", "quiz-1", 15)

	questions, err := engine.AdaptiveQuestionSet(ctx, "quiz-1", "u1")
	if err != nil {
		t.Fatalf("adaptive set: %v", err)
	}
	if len(questions) != 0 {
		t.Fatalf("expected empty hard tier, got %d questions", len(questions))
	}
}

func TestAwardBadgeIdempotent(t *testing.T) {
	ctx := context.Background()
	badges := memory.NewBadgeStore([]domain.Badge{{ID: "b1", Name: "Historian"}})
	engine := app.NewEngine(memory.NewProgressStore(), newCatalog(defaultQuestions()), badges)

	if err := engine.AwardBadge(ctx, "u1", "Historian"); err != nil {
		t.Fatalf("award failed: %v", err)
	}
	if err := engine.AwardBadge(ctx, "u1", "Historian"); err != nil {
		t.Fatalf("repeat award failed: %v", err)
	}

	held, _ := badges.UserBadges(ctx, "u1")
	if len(held) != 1 || held[0].Name != "Historian" {
		t.Fatalf("expected exactly one Historian badge, got %+v", held)
	}
}

func TestAwardUnknownBadgeIsSilent(t *testing.T) {
	ctx := context.Background()
	badges := memory.NewBadgeStore(nil)
	engine := app.NewEngine(memory.NewProgressStore(), newCatalog(defaultQuestions()), badges)

	if err := engine.AwardBadge(ctx, "u1", "Nonexistent"); err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
	held, _ := badges.UserBadges(ctx, "u1")
	if len(held) != 0 {
		t.Fatalf("expected no badges, got %+v", held)
	}
}

func TestConcurrentSubmissionsToDifferentQuestions(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(defaultQuestions())

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, questionID := range []string{"q1", "q2"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			answer := map[string]string{"q1": "Rome", "q2": "Augustus"}[id]
			if _, err := engine.SubmitAnswer(ctx, "u1", "quiz-1", id, answer); err != nil {
				errs <- err
			}
		}(questionID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent submit failed: %v", err)
	}

	score, err := engine.UserScore(ctx, "u1", "quiz-1")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if score != 2 {
		t.Fatalf("expected both increments applied, got score %d", score)
	}
}

func TestUserScoreAndAnswersAccessors(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(defaultQuestions())

	score, err := engine.UserScore(ctx, "fresh", "quiz-1")
	if err != nil || score != 0 {
		t.Fatalf("expected fresh user score 0, got %d (%v)", score, err)
	}

	if _, err := engine.SubmitAnswer(ctx, "u1", "quiz-1", "q1", "Rome"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := engine.SubmitAnswer(ctx, "u1", "quiz-1", "q2", "Nero"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	answers, err := engine.UserAnswers(ctx, "u1", "quiz-1")
	if err != nil {
		t.Fatalf("answers: %v", err)
	}
	if len(answers) != 2 || answers["q1"] != "Rome" || answers["q2"] != "Nero" {
		t.Fatalf("unexpected answers map: %+v", answers)
	}
}

func newTestEngine(questions []domain.Question) (*app.Engine, *memory.ProgressStore) {
	store := memory.NewProgressStore()
	badges := memory.NewBadgeStore([]domain.Badge{{ID: "b1", Name: "Historian"}})
	return app.NewEngine(store, newCatalog(questions), badges), store
}

func newCatalog(questions []domain.Question) app.QuestionCatalog {
	return memory.NewCatalogCache(memory.NewStaticCatalogLoader(questions), time.Minute)
}

func defaultQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:         "q1",
			QuizID:     "quiz-1",
			Prompt:     "Which city was the capital of the Roman Empire?",
			Options:    []string{"Rome", "Athens", "Carthage"},
			Answer:     "rome",
			Difficulty: domain.DifficultyEasy,
		},
		{
			ID:         "q2",
			QuizID:     "quiz-1",
			Prompt:     "Who was the first Roman emperor?",
			Options:    []string{"Julius Caesar", "Augustus", "Nero"},
			Answer:     "Augustus",
			Difficulty: domain.DifficultyEasy,
		},
	}
}

func tieredQuestions() []domain.Question {
	questions := defaultQuestions()
	questions = append(questions,
		domain.Question{
			ID:         "q3",
			QuizID:     "quiz-1",
			Prompt:     "Which battle ended the Second Punic War?",
			Options:    []string{"Zama", "Cannae", "Actium"},
			Answer:     "Zama",
			Difficulty: domain.DifficultyMedium,
		},
		domain.Question{
			ID:         "q4",
			QuizID:     "quiz-1",
			Prompt:     "In which year was the Western Empire's last emperor deposed?",
			Options:    []string{"410", "476", "1453"},
			Answer:     "476",
			Difficulty: domain.DifficultyHard,
		},
	)
	return questions
}

// pumpScore raises the user's cumulative score by n via synthetic correct
// submissions to distinct questions.
func pumpScore(t *testing.T, store *memory.ProgressStore, userID, quizID string, n int) {
	t.Helper()
	start := time.Now().UnixNano()
	for i := 0; i < n; i++ {
		answer := domain.UserAnswer{
			ID:         fmt.Sprintf("a-%d-%d", start, i),
			UserID:     userID,
			QuizID:     quizID,
			QuestionID: fmt.Sprintf("pump-%d-%d", start, i),
			Selected:   "x",
		}
		if _, err := store.SaveSubmission(context.Background(), answer, true); err != nil {
			t.Fatalf("pump score: %v", err)
		}
	}
}
