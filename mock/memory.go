package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/coursechat"
)

// Backend is a stateful in-memory Service for tests that need consistent
// list/get/ask behavior. Answer decides the reply to each question; when nil
// the question is echoed back. Hooks run before the corresponding call reads
// state and may block to simulate latency.
type Backend struct {
	Answer func(q coursechat.Question) (coursechat.Answer, error)

	// Optional failure injection.
	ListErr   error
	CreateErr error

	// BeforeGet runs at the start of GetSession.
	BeforeGet func(id string)

	mu       sync.Mutex
	nextID   int
	order    []string
	sessions map[string]*backendSession
}

type backendSession struct {
	createdAt time.Time
	subject   coursechat.Subject
	messages  []coursechat.Message
}

var _ coursechat.Service = (*Backend)(nil)

// NewBackend returns an empty Backend.
func NewBackend() *Backend {
	return &Backend{sessions: make(map[string]*backendSession)}
}

// Seed adds a session with the given history and returns its ID.
func (b *Backend) Seed(msgs ...coursechat.Message) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.createLocked(msgs)
}

func (b *Backend) createLocked(msgs []coursechat.Message) string {
	b.nextID++
	id := fmt.Sprintf("s%d", b.nextID)
	b.order = append(b.order, id)
	b.sessions[id] = &backendSession{createdAt: time.Now(), messages: msgs}
	return id
}

// Len returns the number of live sessions.
func (b *Backend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

// ListSessions implements coursechat.Service.
func (b *Backend) ListSessions(_ context.Context) ([]coursechat.SessionSummary, error) {
	if b.ListErr != nil {
		return nil, b.ListErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]coursechat.SessionSummary, 0, len(b.order))
	for _, id := range b.order {
		s := b.sessions[id]
		created := s.createdAt
		out = append(out, coursechat.SessionSummary{
			ID:           id,
			MessageCount: len(s.messages),
			CreatedAt:    &created,
			Subject:      s.subject,
		})
	}
	return out, nil
}

// CreateSession implements coursechat.Service.
func (b *Backend) CreateSession(_ context.Context) (string, error) {
	if b.CreateErr != nil {
		return "", b.CreateErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.createLocked(nil), nil
}

// GetSession implements coursechat.Service.
func (b *Backend) GetSession(_ context.Context, id string) (coursechat.Session, error) {
	if b.BeforeGet != nil {
		b.BeforeGet(id)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[id]
	if !ok {
		return coursechat.Session{}, fmt.Errorf("session %s: %w", id, coursechat.ErrUnknownSession)
	}
	return coursechat.Session{ID: id, Messages: append([]coursechat.Message(nil), s.messages...)}, nil
}

// DeleteSession implements coursechat.Service.
func (b *Backend) DeleteSession(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, coursechat.ErrUnknownSession)
	}
	delete(b.sessions, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return nil
}

// Ask implements coursechat.Service. Session-scoped questions record the user
// message before answering, mirroring a backend that persists the question
// even when generation fails.
func (b *Backend) Ask(_ context.Context, sessionID string, q coursechat.Question) (coursechat.Answer, error) {
	if sessionID != "" {
		b.mu.Lock()
		s, ok := b.sessions[sessionID]
		if !ok {
			b.mu.Unlock()
			return coursechat.Answer{}, fmt.Errorf("session %s: %w", sessionID, coursechat.ErrUnknownSession)
		}
		if s.subject == "" {
			s.subject = q.Subject
		}
		s.messages = append(s.messages, coursechat.NewUserMessage(q.Text))
		b.mu.Unlock()
	}

	answer := coursechat.Answer{Generation: "echo: " + q.Text}
	var err error
	if b.Answer != nil {
		answer, err = b.Answer(q)
	}

	if sessionID != "" {
		reply := coursechat.NewFailureMessage()
		if err == nil {
			reply = coursechat.NewAssistantMessage(answer)
		}
		b.mu.Lock()
		if s, ok := b.sessions[sessionID]; ok {
			s.messages = append(s.messages, reply)
		}
		b.mu.Unlock()
	}
	return answer, err
}
