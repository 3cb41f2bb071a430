package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"history-quiz-service/internal/domain"
)

// QuizStore persists quizzes and their owned questions.
type QuizStore interface {
	Quiz(ctx context.Context, quizID string) (domain.Quiz, error)
	InsertQuiz(ctx context.Context, quiz domain.Quiz) error
	UpdateQuiz(ctx context.Context, quiz domain.Quiz) error
	// DeleteQuiz removes the quiz and its questions. Progress and answer
	// rows for the quiz are left in place.
	DeleteQuiz(ctx context.Context, quizID string) error
	AddQuestion(ctx context.Context, question domain.Question) error
	PublishedQuizzes(ctx context.Context) ([]domain.Quiz, error)
	QuizzesByUser(ctx context.Context, userID string) ([]domain.Quiz, error)
	IncrementPlayCount(ctx context.Context, quizID string) error
}

// CollaboratorStore persists quiz roles.
type CollaboratorStore interface {
	AddCollaborator(ctx context.Context, c domain.QuizCollaborator) error
	FindCollaborator(ctx context.Context, quizID, userID string) (*domain.QuizCollaborator, error)
}

// Authoring contains the quiz lifecycle use cases: creation, editing,
// publication, and collaborator roles.
type Authoring struct {
	quizzes       QuizStore
	collaborators CollaboratorStore
	now           func() time.Time
}

func NewAuthoring(quizzes QuizStore, collaborators CollaboratorStore) *Authoring {
	return &Authoring{quizzes: quizzes, collaborators: collaborators, now: time.Now}
}

// NewAuthoringWithClock is test-only for deterministic timestamps.
func NewAuthoringWithClock(quizzes QuizStore, collaborators CollaboratorStore, now func() time.Time) *Authoring {
	return &Authoring{quizzes: quizzes, collaborators: collaborators, now: now}
}

// CreateQuiz persists a new unpublished quiz owned by creatorID and registers
// the creator as its Owner collaborator. The returned quiz carries the
// generated ID.
func (a *Authoring) CreateQuiz(ctx context.Context, creatorID string, quiz domain.Quiz) (domain.Quiz, error) {
	quiz.ID = uuid.NewString()
	quiz.CreatedBy = creatorID
	quiz.Published = false
	quiz.PlayCount = 0
	quiz.CreatedAt = a.now()
	for i := range quiz.Questions {
		quiz.Questions[i].ID = uuid.NewString()
		quiz.Questions[i].QuizID = quiz.ID
	}

	if err := a.quizzes.InsertQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	err := a.collaborators.AddCollaborator(ctx, domain.QuizCollaborator{
		ID:     uuid.NewString(),
		QuizID: quiz.ID,
		UserID: creatorID,
		Role:   domain.RoleOwner,
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// Quiz returns a quiz with its questions.
func (a *Authoring) Quiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return a.quizzes.Quiz(ctx, quizID)
}

// UpdateQuiz saves quiz edits after checking the editor's role.
func (a *Authoring) UpdateQuiz(ctx context.Context, userID string, quiz domain.Quiz) error {
	allowed, err := a.CanEditOrDelete(ctx, userID, quiz.ID)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.ErrNotAllowed
	}
	return a.quizzes.UpdateQuiz(ctx, quiz)
}

// DeleteQuiz removes a quiz and its questions after checking the role.
func (a *Authoring) DeleteQuiz(ctx context.Context, userID, quizID string) error {
	allowed, err := a.CanEditOrDelete(ctx, userID, quizID)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.ErrNotAllowed
	}
	return a.quizzes.DeleteQuiz(ctx, quizID)
}

// AddQuestion appends a question to a quiz after checking the role.
func (a *Authoring) AddQuestion(ctx context.Context, userID, quizID string, question domain.Question) (domain.Question, error) {
	allowed, err := a.CanEditOrDelete(ctx, userID, quizID)
	if err != nil {
		return domain.Question{}, err
	}
	if !allowed {
		return domain.Question{}, domain.ErrNotAllowed
	}
	question.ID = uuid.NewString()
	question.QuizID = quizID
	if err := a.quizzes.AddQuestion(ctx, question); err != nil {
		return domain.Question{}, err
	}
	return question, nil
}

// PublishQuiz marks a quiz visible to everyone.
func (a *Authoring) PublishQuiz(ctx context.Context, userID, quizID string) error {
	allowed, err := a.CanEditOrDelete(ctx, userID, quizID)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.ErrNotAllowed
	}
	quiz, err := a.quizzes.Quiz(ctx, quizID)
	if err != nil {
		return err
	}
	quiz.Published = true
	return a.quizzes.UpdateQuiz(ctx, quiz)
}

// PublishedQuizzes lists quizzes visible to everyone.
func (a *Authoring) PublishedQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return a.quizzes.PublishedQuizzes(ctx)
}

// QuizzesByUser lists quizzes created by the given user.
func (a *Authoring) QuizzesByUser(ctx context.Context, userID string) ([]domain.Quiz, error) {
	return a.quizzes.QuizzesByUser(ctx, userID)
}

// IncrementPlayCount bumps the quiz's play counter by one.
func (a *Authoring) IncrementPlayCount(ctx context.Context, quizID string) error {
	return a.quizzes.IncrementPlayCount(ctx, quizID)
}

// AddCollaborator grants a role on a quiz. Only existing editors may grant.
func (a *Authoring) AddCollaborator(ctx context.Context, grantorID, quizID, userID string, role domain.Role) error {
	allowed, err := a.CanEditOrDelete(ctx, grantorID, quizID)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.ErrNotAllowed
	}
	return a.collaborators.AddCollaborator(ctx, domain.QuizCollaborator{
		ID:     uuid.NewString(),
		QuizID: quizID,
		UserID: userID,
		Role:   role,
	})
}

// CanEditOrDelete reports whether the user holds a role on the quiz that
// permits editing or deleting it.
func (a *Authoring) CanEditOrDelete(ctx context.Context, userID, quizID string) (bool, error) {
	c, err := a.collaborators.FindCollaborator(ctx, quizID, userID)
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, nil
	}
	return c.Role.CanEdit(), nil
}
