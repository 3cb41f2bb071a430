package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"history-quiz-service/internal/domain"
)

// CollaboratorStore is a bun-backed implementation of app.CollaboratorStore.
type CollaboratorStore struct {
	db *bun.DB
}

func NewCollaboratorStore(db *bun.DB) *CollaboratorStore {
	return &CollaboratorStore{db: db}
}

func (s *CollaboratorStore) AddCollaborator(ctx context.Context, c domain.QuizCollaborator) error {
	row := collaboratorRow{
		ID:     c.ID,
		QuizID: c.QuizID,
		UserID: c.UserID,
		Role:   string(c.Role),
	}
	if _, err := s.db.NewInsert().Model(&row).
		On("CONFLICT (quiz_id, user_id) DO UPDATE").
		Set("role = EXCLUDED.role").
		Exec(ctx); err != nil {
		return fmt.Errorf("add collaborator: %w", err)
	}
	return nil
}

func (s *CollaboratorStore) FindCollaborator(ctx context.Context, quizID, userID string) (*domain.QuizCollaborator, error) {
	var row collaboratorRow
	err := s.db.NewSelect().Model(&row).
		Where("quiz_id = ?", quizID).
		Where("user_id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find collaborator: %w", err)
	}
	return &domain.QuizCollaborator{
		ID:     row.ID,
		QuizID: row.QuizID,
		UserID: row.UserID,
		Role:   domain.Role(row.Role),
	}, nil
}
