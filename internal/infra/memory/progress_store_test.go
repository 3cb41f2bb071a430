package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"history-quiz-service/internal/domain"
)

func TestSaveSubmissionUpsertsSingleRow(t *testing.T) {
	ctx := context.Background()
	store := NewProgressStore()

	first := domain.UserAnswer{ID: "a1", UserID: "u1", QuizID: "quiz-1", QuestionID: "q1", Selected: "Athens"}
	if _, err := store.SaveSubmission(ctx, first, false); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := first
	second.Selected = "Rome"
	progress, err := store.SaveSubmission(ctx, second, true)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if progress.Score != 1 {
		t.Fatalf("expected score 1, got %d", progress.Score)
	}

	answers, err := store.ListAnswers(ctx, "u1", "quiz-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(answers) != 1 || answers[0].Selected != "Rome" {
		t.Fatalf("expected single overwritten row, got %+v", answers)
	}
}

func TestFindProgressAbsent(t *testing.T) {
	store := NewProgressStore()
	progress, err := store.FindProgress(context.Background(), "u1", "quiz-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if progress != nil {
		t.Fatalf("expected no progress, got %+v", progress)
	}
}

func TestConcurrentSubmissionsKeepAllIncrements(t *testing.T) {
	ctx := context.Background()
	store := NewProgressStore()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			answer := domain.UserAnswer{
				ID:         fmt.Sprintf("a%d", i),
				UserID:     "u1",
				QuizID:     "quiz-1",
				QuestionID: fmt.Sprintf("q%d", i),
				Selected:   "x",
			}
			if _, err := store.SaveSubmission(ctx, answer, true); err != nil {
				t.Errorf("save: %v", err)
			}
		}(i)
	}
	wg.Wait()

	progress, err := store.FindProgress(ctx, "u1", "quiz-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if progress == nil || progress.Score != n {
		t.Fatalf("expected score %d, got %+v", n, progress)
	}
	answers, _ := store.ListAnswers(ctx, "u1", "quiz-1")
	if len(answers) != n {
		t.Fatalf("expected %d answers, got %d", n, len(answers))
	}
}
