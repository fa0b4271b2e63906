// Package prometheus instruments a coursechat.Service and a
// coursechat.Generator with Prometheus metrics.
package prometheus

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/coursechat"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation label values.
const (
	OpListSessions  = "list_sessions"
	OpCreateSession = "create_session"
	OpGetSession    = "get_session"
	OpDeleteSession = "delete_session"
	OpAsk           = "ask"

	OpGenerateQuiz       = "generate_quiz"
	OpGenerateFlashcards = "generate_flashcards"
)

// Outcome label values.
const (
	OutcomeOK             = "ok"
	OutcomeTransport      = "transport_error"
	OutcomeMalformed      = "malformed_response"
	OutcomeUnknownSession = "unknown_session"
	OutcomeGeneration     = "generation_failed"
	OutcomeCanceled       = "canceled"
	OutcomeError          = "error"
)

var (
	_ coursechat.Service   = (*Service)(nil)
	_ coursechat.Generator = (*Generator)(nil)
)

// Service wraps a coursechat.Service and records a request counter, a
// latency histogram and an in-flight gauge for every call.
type Service struct {
	next coursechat.Service

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// New registers the metrics with reg and returns a Service delegating to
// next. Registering twice with the same registerer panics.
func New(next coursechat.Service, reg prometheus.Registerer) *Service {
	f := promauto.With(reg)
	return &Service{
		next: next,
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursechat_backend_requests_total",
				Help: "Total number of backend requests by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coursechat_backend_request_duration_seconds",
				Help:    "Duration of backend requests in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"op"},
		),
		inFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "coursechat_backend_requests_in_flight",
				Help: "Number of backend requests currently outstanding",
			},
		),
	}
}

// ListSessions implements coursechat.Service.
func (s *Service) ListSessions(ctx context.Context) ([]coursechat.SessionSummary, error) {
	defer s.observe(OpListSessions)()
	out, err := s.next.ListSessions(ctx)
	s.count(OpListSessions, err)
	return out, err
}

// CreateSession implements coursechat.Service.
func (s *Service) CreateSession(ctx context.Context) (string, error) {
	defer s.observe(OpCreateSession)()
	id, err := s.next.CreateSession(ctx)
	s.count(OpCreateSession, err)
	return id, err
}

// GetSession implements coursechat.Service.
func (s *Service) GetSession(ctx context.Context, id string) (coursechat.Session, error) {
	defer s.observe(OpGetSession)()
	session, err := s.next.GetSession(ctx, id)
	s.count(OpGetSession, err)
	return session, err
}

// DeleteSession implements coursechat.Service.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	defer s.observe(OpDeleteSession)()
	err := s.next.DeleteSession(ctx, id)
	s.count(OpDeleteSession, err)
	return err
}

// Ask implements coursechat.Service.
func (s *Service) Ask(ctx context.Context, sessionID string, q coursechat.Question) (coursechat.Answer, error) {
	defer s.observe(OpAsk)()
	answer, err := s.next.Ask(ctx, sessionID, q)
	s.count(OpAsk, err)
	return answer, err
}

// Generator returns a coursechat.Generator delegating to next that records
// into the same metrics as s.
func (s *Service) Generator(next coursechat.Generator) *Generator {
	return &Generator{next: next, metrics: s}
}

// Generator wraps a coursechat.Generator. Create one with Service.Generator.
type Generator struct {
	next    coursechat.Generator
	metrics *Service
}

// GenerateQuiz implements coursechat.Generator.
func (g *Generator) GenerateQuiz(ctx context.Context, req coursechat.QuizRequest) (coursechat.Quiz, error) {
	defer g.metrics.observe(OpGenerateQuiz)()
	quiz, err := g.next.GenerateQuiz(ctx, req)
	g.metrics.count(OpGenerateQuiz, err)
	return quiz, err
}

// GenerateFlashcards implements coursechat.Generator.
func (g *Generator) GenerateFlashcards(ctx context.Context, req coursechat.FlashcardRequest) ([]coursechat.Flashcard, error) {
	defer g.metrics.observe(OpGenerateFlashcards)()
	cards, err := g.next.GenerateFlashcards(ctx, req)
	g.metrics.count(OpGenerateFlashcards, err)
	return cards, err
}

func (s *Service) observe(op string) func() {
	start := time.Now()
	s.inFlight.Inc()
	return func() {
		s.inFlight.Dec()
		s.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

func (s *Service) count(op string, err error) {
	s.requests.WithLabelValues(op, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	case errors.Is(err, coursechat.ErrUnknownSession):
		return OutcomeUnknownSession
	case errors.Is(err, coursechat.ErrGeneration):
		return OutcomeGeneration
	case errors.Is(err, coursechat.ErrMalformedResponse):
		return OutcomeMalformed
	case errors.Is(err, coursechat.ErrTransport):
		return OutcomeTransport
	default:
		return OutcomeError
	}
}
