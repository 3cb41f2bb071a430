package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"history-quiz-service/internal/domain"
)

// QuizStore is a bun-backed implementation of app.QuizStore.
type QuizStore struct {
	db *bun.DB
}

func NewQuizStore(db *bun.DB) *QuizStore {
	return &QuizStore{db: db}
}

func (s *QuizStore) Quiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var row quizRow
	err := s.db.NewSelect().Model(&row).Where("qz.id = ?", quizID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	var qrows []questionRow
	err = s.db.NewSelect().Model(&qrows).
		Where("quiz_id = ?", quizID).
		Order("id").
		Scan(ctx)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	questions := make([]domain.Question, 0, len(qrows))
	for _, qr := range qrows {
		q, err := questionFromRow(qr)
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("decode question %s: %w", qr.ID, err)
		}
		questions = append(questions, q)
	}
	return quizFromRow(row, questions), nil
}

func (s *QuizStore) InsertQuiz(ctx context.Context, quiz domain.Quiz) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		row := quizRow{
			ID:        quiz.ID,
			Title:     quiz.Title,
			Published: quiz.Published,
			CreatedBy: quiz.CreatedBy,
			PlayCount: quiz.PlayCount,
			CreatedAt: quiz.CreatedAt,
		}
		if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
			return fmt.Errorf("insert quiz: %w", err)
		}
		for _, q := range quiz.Questions {
			qr, err := questionToRow(q)
			if err != nil {
				return err
			}
			if _, err := tx.NewInsert().Model(&qr).Exec(ctx); err != nil {
				return fmt.Errorf("insert question: %w", err)
			}
		}
		return nil
	})
}

func (s *QuizStore) UpdateQuiz(ctx context.Context, quiz domain.Quiz) error {
	res, err := s.db.NewUpdate().Model((*quizRow)(nil)).
		Set("title = ?", quiz.Title).
		Set("published = ?", quiz.Published).
		Where("id = ?", quiz.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

// DeleteQuiz removes the quiz row; owned questions go with it via the
// ON DELETE CASCADE constraint. Progress and answer rows survive.
func (s *QuizStore) DeleteQuiz(ctx context.Context, quizID string) error {
	if _, err := s.db.NewDelete().Model((*quizRow)(nil)).Where("id = ?", quizID).Exec(ctx); err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	return nil
}

func (s *QuizStore) AddQuestion(ctx context.Context, question domain.Question) error {
	qr, err := questionToRow(question)
	if err != nil {
		return err
	}
	if _, err := s.db.NewInsert().Model(&qr).Exec(ctx); err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (s *QuizStore) PublishedQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	var rows []quizRow
	err := s.db.NewSelect().Model(&rows).
		Where("published").
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list published quizzes: %w", err)
	}
	quizzes := make([]domain.Quiz, 0, len(rows))
	for _, r := range rows {
		quizzes = append(quizzes, quizFromRow(r, nil))
	}
	return quizzes, nil
}

func (s *QuizStore) QuizzesByUser(ctx context.Context, userID string) ([]domain.Quiz, error) {
	var rows []quizRow
	err := s.db.NewSelect().Model(&rows).
		Where("created_by = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes by user: %w", err)
	}
	quizzes := make([]domain.Quiz, 0, len(rows))
	for _, r := range rows {
		quizzes = append(quizzes, quizFromRow(r, nil))
	}
	return quizzes, nil
}

func (s *QuizStore) IncrementPlayCount(ctx context.Context, quizID string) error {
	res, err := s.db.NewUpdate().Model((*quizRow)(nil)).
		Set("play_count = play_count + 1").
		Where("id = ?", quizID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("increment play count: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}
