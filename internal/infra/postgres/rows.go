package postgres

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"

	"history-quiz-service/internal/domain"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:qz"`

	ID        string    `bun:"id,pk"`
	Title     string    `bun:"title"`
	Published bool      `bun:"published"`
	CreatedBy string    `bun:"created_by"`
	PlayCount int       `bun:"play_count"`
	CreatedAt time.Time `bun:"created_at"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:qn"`

	ID         string          `bun:"id,pk"`
	QuizID     string          `bun:"quiz_id"`
	Prompt     string          `bun:"prompt"`
	Options    json.RawMessage `bun:"options,type:jsonb"`
	Answer     string          `bun:"answer"`
	Difficulty string          `bun:"difficulty"`
}

type progressRow struct {
	bun.BaseModel `bun:"table:user_progress,alias:up"`

	ID     string `bun:"id,pk"`
	UserID string `bun:"user_id"`
	QuizID string `bun:"quiz_id"`
	Score  int    `bun:"score"`
}

type answerRow struct {
	bun.BaseModel `bun:"table:user_answers,alias:ua"`

	ID         string `bun:"id,pk"`
	UserID     string `bun:"user_id"`
	QuizID     string `bun:"quiz_id"`
	QuestionID string `bun:"question_id"`
	Selected   string `bun:"selected_answer"`
}

type badgeRow struct {
	bun.BaseModel `bun:"table:badges,alias:b"`

	ID   string `bun:"id,pk"`
	Name string `bun:"name"`
}

type userBadgeRow struct {
	bun.BaseModel `bun:"table:user_badges,alias:ub"`

	UserID  string `bun:"user_id,pk"`
	BadgeID string `bun:"badge_id,pk"`
}

type collaboratorRow struct {
	bun.BaseModel `bun:"table:quiz_collaborators,alias:qc"`

	ID     string `bun:"id,pk"`
	QuizID string `bun:"quiz_id"`
	UserID string `bun:"user_id"`
	Role   string `bun:"role"`
}

func quizFromRow(r quizRow, questions []domain.Question) domain.Quiz {
	return domain.Quiz{
		ID:        r.ID,
		Title:     r.Title,
		Questions: questions,
		Published: r.Published,
		CreatedBy: r.CreatedBy,
		PlayCount: r.PlayCount,
		CreatedAt: r.CreatedAt,
	}
}

func questionToRow(q domain.Question) (questionRow, error) {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return questionRow{}, err
	}
	return questionRow{
		ID:         q.ID,
		QuizID:     q.QuizID,
		Prompt:     q.Prompt,
		Options:    options,
		Answer:     q.Answer,
		Difficulty: string(q.Difficulty),
	}, nil
}

func questionFromRow(r questionRow) (domain.Question, error) {
	var options []string
	if len(r.Options) > 0 {
		if err := json.Unmarshal(r.Options, &options); err != nil {
			return domain.Question{}, err
		}
	}
	return domain.Question{
		ID:         r.ID,
		QuizID:     r.QuizID,
		Prompt:     r.Prompt,
		Options:    options,
		Answer:     r.Answer,
		Difficulty: domain.Difficulty(r.Difficulty),
	}, nil
}
