package app

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"history-quiz-service/internal/domain"
)

// ProgressStore persists per-user answers and cumulative scores.
// SaveSubmission must apply the answer upsert and the optional score
// increment atomically: no reader may observe one without the other.
type ProgressStore interface {
	FindAnswer(ctx context.Context, userID, quizID, questionID string) (*domain.UserAnswer, error)
	ListAnswers(ctx context.Context, userID, quizID string) ([]domain.UserAnswer, error)
	FindProgress(ctx context.Context, userID, quizID string) (*domain.UserProgress, error)
	SaveSubmission(ctx context.Context, answer domain.UserAnswer, awardPoint bool) (domain.UserProgress, error)
}

// QuestionCatalog resolves questions (from cache/backing store).
type QuestionCatalog interface {
	Question(ctx context.Context, quizID, questionID string) (domain.Question, error)
	QuestionsByTier(ctx context.Context, quizID string, tier domain.Difficulty) ([]domain.Question, error)
}

// BadgeStore resolves the badge catalog and per-user badge sets.
type BadgeStore interface {
	BadgeByName(ctx context.Context, name string) (domain.Badge, error)
	UserBadges(ctx context.Context, userID string) ([]domain.Badge, error)
	AddBadge(ctx context.Context, userID string, badge domain.Badge) error
}

// Engine contains the quiz progression use cases: scoring, adaptive
// difficulty selection, and badge awarding.
type Engine struct {
	progress ProgressStore
	catalog  QuestionCatalog
	badges   BadgeStore
}

func NewEngine(progress ProgressStore, catalog QuestionCatalog, badges BadgeStore) *Engine {
	return &Engine{progress: progress, catalog: catalog, badges: badges}
}

// SubmitAnswer records a user's answer to a question, overwriting any earlier
// submission for the same question, and awards a point when the answer is
// correct and the previously stored one was not. The answer and the score
// update land atomically.
func (e *Engine) SubmitAnswer(ctx context.Context, userID, quizID, questionID, answer string) (domain.SubmissionResult, error) {
	question, err := e.catalog.Question(ctx, quizID, questionID)
	if err != nil {
		return domain.SubmissionResult{}, err
	}

	correct := answerMatches(question, answer)

	previous, err := e.progress.FindAnswer(ctx, userID, quizID, questionID)
	if err != nil {
		return domain.SubmissionResult{}, err
	}

	record := domain.UserAnswer{
		ID:         uuid.NewString(),
		UserID:     userID,
		QuizID:     quizID,
		QuestionID: questionID,
		Selected:   answer,
	}
	if previous != nil {
		record.ID = previous.ID
	}

	// A point is granted only on the transition into a correct answer.
	// Identical resubmissions stay flat, and overwriting a correct answer
	// with a wrong one never revokes the earlier point.
	award := correct && (previous == nil || !answerMatches(question, previous.Selected))

	progress, err := e.progress.SaveSubmission(ctx, record, award)
	if err != nil {
		return domain.SubmissionResult{}, err
	}

	awarded := 0
	if award {
		awarded = 1
	}
	return domain.SubmissionResult{
		QuestionID: questionID,
		Correct:    correct,
		Awarded:    awarded,
		TotalScore: progress.Score,
	}, nil
}

// AdaptiveQuestionSet returns the quiz's questions at the tier implied by the
// user's score. An empty slice means the catalog has no questions at that
// tier, not an error.
func (e *Engine) AdaptiveQuestionSet(ctx context.Context, quizID, userID string) ([]domain.Question, error) {
	progress, err := e.progress.FindProgress(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	score := 0
	if progress != nil {
		score = progress.Score
	}
	return e.catalog.QuestionsByTier(ctx, quizID, TierForScore(score))
}

// AwardBadge grants the named badge to the user at most once. An unknown
// badge name and an already-held badge are both silent no-ops.
func (e *Engine) AwardBadge(ctx context.Context, userID, badgeName string) error {
	badge, err := e.badges.BadgeByName(ctx, badgeName)
	if err != nil {
		if errors.Is(err, domain.ErrBadgeNotFound) {
			return nil
		}
		return err
	}

	held, err := e.badges.UserBadges(ctx, userID)
	if err != nil {
		return err
	}
	for _, b := range held {
		if b.ID == badge.ID {
			return nil
		}
	}
	return e.badges.AddBadge(ctx, userID, badge)
}

// UserScore returns the user's cumulative score for a quiz, zero when the
// user has no progress yet.
func (e *Engine) UserScore(ctx context.Context, userID, quizID string) (int, error) {
	progress, err := e.progress.FindProgress(ctx, userID, quizID)
	if err != nil {
		return 0, err
	}
	if progress == nil {
		return 0, nil
	}
	return progress.Score, nil
}

// UserAnswers returns the user's recorded answers for a quiz keyed by
// question ID.
func (e *Engine) UserAnswers(ctx context.Context, userID, quizID string) (map[string]string, error) {
	answers, err := e.progress.ListAnswers(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[string]string, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a.Selected
	}
	return byQuestion, nil
}

// TierForScore maps a cumulative score to a difficulty tier:
// 0–5 Easy, 6–10 Medium, 11+ Hard.
func TierForScore(score int) domain.Difficulty {
	switch {
	case score <= 5:
		return domain.DifficultyEasy
	case score <= 10:
		return domain.DifficultyMedium
	default:
		return domain.DifficultyHard
	}
}

// answerMatches compares a submission against the question's answer key,
// ignoring case and surrounding whitespace.
func answerMatches(q domain.Question, submitted string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(q.Answer))
}
