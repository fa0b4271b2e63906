package coursechat

import (
	"fmt"
	"strings"
)

// Generation limits.
const (
	DefaultQuizQuestions = 5
	MaxQuizQuestions     = 20
	DefaultFlashcards    = 10
	MaxFlashcards        = 50
)

// ValidateQuestion checks that a user question has content.
func ValidateQuestion(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("question must not be empty: %w", ErrValidation)
	}
	return nil
}

// Validate checks the request and fills in the default question count.
func (r *QuizRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return fmt.Errorf("topic must not be empty: %w", ErrValidation)
	}
	if r.NumQuestions == 0 {
		r.NumQuestions = DefaultQuizQuestions
	}
	if r.NumQuestions < 1 || r.NumQuestions > MaxQuizQuestions {
		return fmt.Errorf("num_questions must be in [1, %d], got %d: %w", MaxQuizQuestions, r.NumQuestions, ErrValidation)
	}
	return nil
}

// Validate checks the request and fills in the default card count.
func (r *FlashcardRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return fmt.Errorf("topic must not be empty: %w", ErrValidation)
	}
	if r.NumCards == 0 {
		r.NumCards = DefaultFlashcards
	}
	if r.NumCards < 1 || r.NumCards > MaxFlashcards {
		return fmt.Errorf("num_cards must be in [1, %d], got %d: %w", MaxFlashcards, r.NumCards, ErrValidation)
	}
	return nil
}
