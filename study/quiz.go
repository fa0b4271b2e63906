// Package study implements the quiz and flashcard flows: linear state
// machines over content produced by a [coursechat.Generator].
package study

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/coursechat"
)

// ErrPhase is returned when an action is not valid in the current phase.
var ErrPhase = errors.New("action not valid in current phase")

// QuizPhase is the position in the quiz flow.
type QuizPhase int

const (
	QuizSetup QuizPhase = iota
	QuizTaking
	QuizResults
)

func (p QuizPhase) String() string {
	switch p {
	case QuizSetup:
		return "setup"
	case QuizTaking:
		return "taking"
	case QuizResults:
		return "results"
	default:
		return "unknown"
	}
}

// Outcome is the graded answer to one question.
type Outcome struct {
	Selected      string
	Correct       bool
	CorrectAnswer string
	Explanation   string
}

// Quiz walks through a generated quiz one question at a time.
// It is not safe for concurrent use.
type Quiz struct {
	gen coursechat.Generator

	phase    QuizPhase
	request  coursechat.QuizRequest
	quiz     coursechat.Quiz
	current  int
	outcomes []Outcome
}

// NewQuiz returns a Quiz in the setup phase.
func NewQuiz(gen coursechat.Generator) *Quiz {
	return &Quiz{gen: gen}
}

// Start generates a quiz for req and begins it. On failure the quiz stays in
// setup.
func (q *Quiz) Start(ctx context.Context, req coursechat.QuizRequest) error {
	if q.phase != QuizSetup {
		return fmt.Errorf("start quiz in %s: %w", q.phase, ErrPhase)
	}
	if err := req.Validate(); err != nil {
		return err
	}
	quiz, err := q.gen.GenerateQuiz(ctx, req)
	if err != nil {
		return fmt.Errorf("start quiz: %w", err)
	}
	if len(quiz.Questions) == 0 {
		return fmt.Errorf("start quiz: no questions: %w", coursechat.ErrGeneration)
	}
	q.request = req
	q.begin(quiz)
	return nil
}

func (q *Quiz) begin(quiz coursechat.Quiz) {
	q.quiz = quiz
	q.phase = QuizTaking
	q.current = 0
	q.outcomes = nil
}

// Phase returns the current phase.
func (q *Quiz) Phase() QuizPhase { return q.phase }

// Request returns the request the current quiz was generated from.
func (q *Quiz) Request() coursechat.QuizRequest { return q.request }

// Position returns the zero-based index of the current question and the
// number of questions.
func (q *Quiz) Position() (int, int) { return q.current, len(q.quiz.Questions) }

// Current returns the question being answered.
func (q *Quiz) Current() (coursechat.QuizQuestion, bool) {
	if q.phase != QuizTaking {
		return coursechat.QuizQuestion{}, false
	}
	return q.quiz.Questions[q.current], true
}

// Answered reports whether the current question has been submitted.
func (q *Quiz) Answered() bool {
	return len(q.outcomes) > q.current
}

// Submit grades option, a letter naming one of the current question's
// options ("A" for the first). Each question accepts one submission.
func (q *Quiz) Submit(option string) (Outcome, error) {
	if q.phase != QuizTaking {
		return Outcome{}, fmt.Errorf("submit in %s: %w", q.phase, ErrPhase)
	}
	if q.Answered() {
		return Outcome{}, fmt.Errorf("question %d already answered: %w", q.current+1, ErrPhase)
	}
	question := q.quiz.Questions[q.current]
	letter := strings.ToUpper(strings.TrimSpace(option))
	if len(letter) != 1 || letter[0] < 'A' || int(letter[0]-'A') >= len(question.Options) {
		return Outcome{}, fmt.Errorf("option %q: must be one of A-%c: %w", option, 'A'+len(question.Options)-1, coursechat.ErrValidation)
	}

	out := Outcome{
		Selected:      letter,
		Correct:       letter == strings.ToUpper(strings.TrimSpace(question.CorrectAnswer)),
		CorrectAnswer: question.CorrectAnswer,
		Explanation:   question.Explanation,
	}
	q.outcomes = append(q.outcomes, out)
	return out, nil
}

// Next moves past an answered question. After the last question the quiz
// moves to results and Next returns false.
func (q *Quiz) Next() (bool, error) {
	if q.phase != QuizTaking {
		return false, fmt.Errorf("next in %s: %w", q.phase, ErrPhase)
	}
	if !q.Answered() {
		return false, fmt.Errorf("question %d not answered: %w", q.current+1, ErrPhase)
	}
	if q.current == len(q.quiz.Questions)-1 {
		q.phase = QuizResults
		return false, nil
	}
	q.current++
	return true, nil
}

// Score returns the number of correct answers so far and the quiz length.
func (q *Quiz) Score() (int, int) {
	correct := 0
	for _, o := range q.outcomes {
		if o.Correct {
			correct++
		}
	}
	return correct, len(q.quiz.Questions)
}

// Outcomes returns the graded answers in question order.
func (q *Quiz) Outcomes() []Outcome {
	return append([]Outcome(nil), q.outcomes...)
}

// Verdict summarizes a score for the results screen.
func Verdict(correct, total int) string {
	if total == 0 {
		return ""
	}
	ratio := float64(correct) / float64(total)
	switch {
	case ratio >= 0.9:
		return "Excellent! Outstanding knowledge!"
	case ratio >= 0.7:
		return "Great job! Very good understanding!"
	case ratio >= 0.5:
		return "Good work! Keep studying!"
	default:
		return "Keep practicing! You'll improve!"
	}
}

// Retry restarts the same quiz from its first question.
func (q *Quiz) Retry() error {
	if q.phase != QuizResults {
		return fmt.Errorf("retry in %s: %w", q.phase, ErrPhase)
	}
	q.begin(q.quiz)
	return nil
}

// Restart discards the quiz and returns to setup.
func (q *Quiz) Restart() {
	*q = Quiz{gen: q.gen}
}
