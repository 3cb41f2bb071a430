package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"history-quiz-service/internal/domain"
)

// ProgressStore is a bun-backed implementation of app.ProgressStore.
// SaveSubmission runs answer and score writes in one transaction; the
// conditional increment happens inside the upsert so concurrent submissions
// for the same (user, quiz) never lose points.
type ProgressStore struct {
	db *bun.DB
}

func NewProgressStore(db *bun.DB) *ProgressStore {
	return &ProgressStore{db: db}
}

func (s *ProgressStore) FindAnswer(ctx context.Context, userID, quizID, questionID string) (*domain.UserAnswer, error) {
	var row answerRow
	err := s.db.NewSelect().Model(&row).
		Where("user_id = ?", userID).
		Where("quiz_id = ?", quizID).
		Where("question_id = ?", questionID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find answer: %w", err)
	}
	return &domain.UserAnswer{
		ID:         row.ID,
		UserID:     row.UserID,
		QuizID:     row.QuizID,
		QuestionID: row.QuestionID,
		Selected:   row.Selected,
	}, nil
}

func (s *ProgressStore) ListAnswers(ctx context.Context, userID, quizID string) ([]domain.UserAnswer, error) {
	var rows []answerRow
	err := s.db.NewSelect().Model(&rows).
		Where("user_id = ?", userID).
		Where("quiz_id = ?", quizID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	answers := make([]domain.UserAnswer, 0, len(rows))
	for _, r := range rows {
		answers = append(answers, domain.UserAnswer{
			ID:         r.ID,
			UserID:     r.UserID,
			QuizID:     r.QuizID,
			QuestionID: r.QuestionID,
			Selected:   r.Selected,
		})
	}
	return answers, nil
}

func (s *ProgressStore) FindProgress(ctx context.Context, userID, quizID string) (*domain.UserProgress, error) {
	var row progressRow
	err := s.db.NewSelect().Model(&row).
		Where("user_id = ?", userID).
		Where("quiz_id = ?", quizID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find progress: %w", err)
	}
	return &domain.UserProgress{
		ID:     row.ID,
		UserID: row.UserID,
		QuizID: row.QuizID,
		Score:  row.Score,
	}, nil
}

func (s *ProgressStore) SaveSubmission(ctx context.Context, answer domain.UserAnswer, awardPoint bool) (domain.UserProgress, error) {
	var saved progressRow
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		ar := answerRow{
			ID:         answer.ID,
			UserID:     answer.UserID,
			QuizID:     answer.QuizID,
			QuestionID: answer.QuestionID,
			Selected:   answer.Selected,
		}
		if _, err := tx.NewInsert().Model(&ar).
			On("CONFLICT (user_id, quiz_id, question_id) DO UPDATE").
			Set("selected_answer = EXCLUDED.selected_answer").
			Exec(ctx); err != nil {
			return fmt.Errorf("upsert answer: %w", err)
		}

		increment := 0
		if awardPoint {
			increment = 1
		}
		pr := progressRow{
			ID:     uuid.NewString(),
			UserID: answer.UserID,
			QuizID: answer.QuizID,
			Score:  increment,
		}
		if _, err := tx.NewInsert().Model(&pr).
			On("CONFLICT (user_id, quiz_id) DO UPDATE").
			Set("score = up.score + ?", increment).
			Exec(ctx); err != nil {
			return fmt.Errorf("upsert progress: %w", err)
		}

		return tx.NewSelect().Model(&saved).
			Where("user_id = ?", answer.UserID).
			Where("quiz_id = ?", answer.QuizID).
			Scan(ctx)
	})
	if err != nil {
		return domain.UserProgress{}, err
	}
	return domain.UserProgress{
		ID:     saved.ID,
		UserID: saved.UserID,
		QuizID: saved.QuizID,
		Score:  saved.Score,
	}, nil
}
