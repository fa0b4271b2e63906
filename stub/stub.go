// Package stub implements the course assistant HTTP API in memory. It backs
// local development through cmd/coursechat-stub and end-to-end tests of the
// HTTP client. Answers, quizzes and flashcards are canned.
package stub

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/coursechat"
	chatjson "github.com/fwojciec/coursechat/json"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AnswerFunc produces the reply to a question. Returning an error makes the
// server answer 500.
type AnswerFunc func(q coursechat.Question) (coursechat.Answer, error)

// Server is an in-memory backend. It is safe for concurrent use.
type Server struct {
	router *chi.Mux
	logger zerolog.Logger
	answer AnswerFunc

	mu       sync.Mutex
	order    []string
	sessions map[string]*session
}

type session struct {
	createdAt time.Time
	subject   coursechat.Subject
	messages  []coursechat.Message
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithAnswer replaces the canned answer generator.
func WithAnswer(fn AnswerFunc) Option {
	return func(s *Server) { s.answer = fn }
}

// NewServer returns a Server with its routes mounted under /api.
func NewServer(opts ...Option) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   zerolog.Nop(),
		answer:   CannedAnswer,
		sessions: make(map[string]*session),
	}
	for _, o := range opts {
		o(s)
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.health)
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/chat/sessions", s.listSessions)
		r.Post("/chat/session", s.createSession)
		r.Get("/chat/session/{id}", s.getSession)
		r.Delete("/chat/session/{id}", s.deleteSession)
		r.Post("/chat/session/{id}/message", s.askInSession)
		r.Post("/chat/message", s.ask)
		r.Post("/quiz/generate", s.generateQuiz)
		r.Post("/flashcard/generate", s.generateFlashcards)
	})
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listSessions(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	summaries := make([]coursechat.SessionSummary, 0, len(s.order))
	for _, id := range s.order {
		sess := s.sessions[id]
		created := sess.createdAt
		summaries = append(summaries, coursechat.SessionSummary{
			ID:           id,
			MessageCount: len(sess.messages),
			CreatedAt:    &created,
			Subject:      sess.subject,
		})
	}
	s.mu.Unlock()
	writeEncoded(w, http.StatusOK, summaries, chatjson.MarshalSessions)
}

func (s *Server) createSession(w http.ResponseWriter, _ *http.Request) {
	id := uuid.NewString()
	s.mu.Lock()
	s.order = append(s.order, id)
	s.sessions[id] = &session{createdAt: time.Now().UTC()}
	s.mu.Unlock()
	writeEncoded(w, http.StatusOK, id, chatjson.MarshalSessionID)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	s.mu.Lock()
	sess, ok := s.sessions[id]
	var msgs []coursechat.Message
	if ok {
		msgs = append(msgs, sess.messages...)
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	writeEncoded(w, http.StatusOK, coursechat.Session{ID: id, Messages: msgs}, chatjson.MarshalSession)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	s.mu.Lock()
	_, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session deleted"})
}

func (s *Server) askInSession(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	q, ok := readQuestion(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	sess, found := s.sessions[id]
	if found {
		if sess.subject == "" {
			sess.subject = q.Subject
		}
		sess.messages = append(sess.messages, coursechat.NewUserMessage(q.Text))
	}
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	answer, err := s.answer(q)
	reply := coursechat.NewFailureMessage()
	if err == nil {
		reply = coursechat.NewAssistantMessage(answer)
	}
	s.mu.Lock()
	if sess, ok := s.sessions[id]; ok {
		sess.messages = append(sess.messages, reply)
	}
	s.mu.Unlock()

	s.writeAnswer(w, answer, err)
}

func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	q, ok := readQuestion(w, r)
	if !ok {
		return
	}
	answer, err := s.answer(q)
	s.writeAnswer(w, answer, err)
}

func (s *Server) writeAnswer(w http.ResponseWriter, answer coursechat.Answer, err error) {
	if err != nil {
		s.logger.Warn().Err(err).Msg("answer failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeEncoded(w, http.StatusOK, answer, chatjson.MarshalAnswer)
}

func (s *Server) generateQuiz(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	req, err := chatjson.UnmarshalQuizRequest(body)
	if err == nil {
		err = req.Validate()
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeEncoded(w, http.StatusOK, CannedQuiz(req), chatjson.MarshalQuiz)
}

func (s *Server) generateFlashcards(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	req, err := chatjson.UnmarshalFlashcardRequest(body)
	if err == nil {
		err = req.Validate()
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeEncoded(w, http.StatusOK, CannedFlashcards(req), chatjson.MarshalFlashcards)
}

func sessionID(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body")
		return nil, false
	}
	return body, true
}

func readQuestion(w http.ResponseWriter, r *http.Request) (coursechat.Question, bool) {
	body, ok := readBody(w, r)
	if !ok {
		return coursechat.Question{}, false
	}
	q, err := chatjson.UnmarshalQuestion(body)
	if err == nil {
		err = coursechat.ValidateQuestion(q.Text)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return coursechat.Question{}, false
	}
	return q, true
}

func writeEncoded[T any](w http.ResponseWriter, status int, v T, marshal func(T) ([]byte, error)) {
	body, err := marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("encode response: %v", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": strings.TrimSpace(detail)})
}
