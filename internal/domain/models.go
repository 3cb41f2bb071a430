package domain

import "time"

// Difficulty classifies a question for adaptive selection.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Role is the permission a collaborator holds on a quiz.
type Role string

const (
	RoleOwner        Role = "Owner"
	RoleCollaborator Role = "Collaborator"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleCollaborator
}

// CanEdit reports whether the role permits editing or deleting the quiz.
// Both roles can edit; holding no role cannot.
func (r Role) CanEdit() bool {
	return r.Valid()
}

// Question models an MCQ question with a single canonical answer string.
type Question struct {
	ID         string     `json:"id"`
	QuizID     string     `json:"quizId"`
	Prompt     string     `json:"prompt"`
	Options    []string   `json:"options"`
	Answer     string     `json:"answer"`
	Difficulty Difficulty `json:"difficulty"`
}

// Quiz is a titled collection of questions owned by its creator.
// Deleting a quiz removes its questions; progress rows survive.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
	Published bool       `json:"published"`
	CreatedBy string     `json:"createdBy"`
	PlayCount int        `json:"playCount"`
	CreatedAt time.Time  `json:"createdAt"`
}

// UserAnswer records one user's selected answer to one question of one quiz.
// At most one row exists per (user, quiz, question); resubmission overwrites.
type UserAnswer struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	QuizID     string `json:"quizId"`
	QuestionID string `json:"questionId"`
	Selected   string `json:"selected"`
}

// UserProgress is a user's cumulative score within one quiz.
// At most one row exists per (user, quiz); the score never decreases.
type UserProgress struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	QuizID string `json:"quizId"`
	Score  int    `json:"score"`
}

// Badge is a shared catalog entry referenced, never owned, by users.
type Badge struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// QuizCollaborator grants a user a role on a quiz.
type QuizCollaborator struct {
	ID     string `json:"id"`
	QuizID string `json:"quizId"`
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

// SubmissionResult summarizes the outcome of an answer submission.
type SubmissionResult struct {
	QuestionID string `json:"questionId"`
	Correct    bool   `json:"correct"`
	Awarded    int    `json:"awarded"`
	TotalScore int    `json:"totalScore"`
}
