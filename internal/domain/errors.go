package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrBadgeNotFound indicates a badge name has no catalog entry.
	ErrBadgeNotFound = errors.New("badge not found")
	// ErrNotAllowed indicates the user holds no role permitting the action.
	ErrNotAllowed = errors.New("user may not edit or delete this quiz")
)
