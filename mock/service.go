// Package mock provides test doubles for coursechat interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/coursechat"
)

// Interface compliance checks.
var (
	_ coursechat.Service   = (*Service)(nil)
	_ coursechat.Generator = (*Generator)(nil)
)

// Service is a test double for coursechat.Service.
// Set the function fields for the methods you need; calling a method whose
// field is nil panics to catch missing setup.
type Service struct {
	ListSessionsFn  func(ctx context.Context) ([]coursechat.SessionSummary, error)
	CreateSessionFn func(ctx context.Context) (string, error)
	GetSessionFn    func(ctx context.Context, id string) (coursechat.Session, error)
	DeleteSessionFn func(ctx context.Context, id string) error
	AskFn           func(ctx context.Context, sessionID string, q coursechat.Question) (coursechat.Answer, error)
}

// ListSessions delegates to ListSessionsFn.
func (s *Service) ListSessions(ctx context.Context) ([]coursechat.SessionSummary, error) {
	return s.ListSessionsFn(ctx)
}

// CreateSession delegates to CreateSessionFn.
func (s *Service) CreateSession(ctx context.Context) (string, error) {
	return s.CreateSessionFn(ctx)
}

// GetSession delegates to GetSessionFn.
func (s *Service) GetSession(ctx context.Context, id string) (coursechat.Session, error) {
	return s.GetSessionFn(ctx, id)
}

// DeleteSession delegates to DeleteSessionFn.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	return s.DeleteSessionFn(ctx, id)
}

// Ask delegates to AskFn.
func (s *Service) Ask(ctx context.Context, sessionID string, q coursechat.Question) (coursechat.Answer, error) {
	return s.AskFn(ctx, sessionID, q)
}

// Generator is a test double for coursechat.Generator.
type Generator struct {
	GenerateQuizFn       func(ctx context.Context, req coursechat.QuizRequest) (coursechat.Quiz, error)
	GenerateFlashcardsFn func(ctx context.Context, req coursechat.FlashcardRequest) ([]coursechat.Flashcard, error)
}

// GenerateQuiz delegates to GenerateQuizFn.
func (g *Generator) GenerateQuiz(ctx context.Context, req coursechat.QuizRequest) (coursechat.Quiz, error) {
	return g.GenerateQuizFn(ctx, req)
}

// GenerateFlashcards delegates to GenerateFlashcardsFn.
func (g *Generator) GenerateFlashcards(ctx context.Context, req coursechat.FlashcardRequest) ([]coursechat.Flashcard, error) {
	return g.GenerateFlashcardsFn(ctx, req)
}
