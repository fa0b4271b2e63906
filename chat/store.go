package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/fwojciec/coursechat"
)

// Store holds the message history of the active session. An empty ID means
// the store is unbound: no session is active, though messages sent through
// the session-less endpoint may still accumulate.
type Store struct {
	svc coursechat.Service

	mu       sync.Mutex
	id       string
	messages []coursechat.Message
	// gen increments on every Load, Reset, Clear and Bind so a load can tell
	// whether it is still the latest request when it completes.
	gen uint64
}

// NewStore returns an unbound Store backed by svc.
func NewStore(svc coursechat.Service) *Store {
	return &Store{svc: svc}
}

// Load fetches the history of id, replaces the held messages with it and
// binds the store to id. On failure the store is unchanged and the error
// wraps coursechat.ErrFetch along with the cause. A load overtaken by a newer
// Load, Reset, Clear or Bind returns ErrSuperseded and changes nothing.
func (s *Store) Load(ctx context.Context, id string) (coursechat.Session, error) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	session, err := s.svc.GetSession(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return coursechat.Session{}, fmt.Errorf("load session %s: %w", id, ErrSuperseded)
	}
	if err != nil {
		return coursechat.Session{}, fmt.Errorf("%w %s: %w", coursechat.ErrFetch, id, err)
	}
	s.id = id
	s.messages = append([]coursechat.Message(nil), session.Messages...)
	return session, nil
}

// AppendLocal appends a message authored on this client, before any backend
// confirmation. It applies only while the store is bound to id and reports
// whether it did.
func (s *Store) AppendLocal(id string, msg coursechat.Message) bool {
	return s.append(id, msg)
}

// AppendRemote appends a message produced by the backend. Like AppendLocal
// it applies only while the store is bound to id.
func (s *Store) AppendRemote(id string, msg coursechat.Message) bool {
	return s.append(id, msg)
}

func (s *Store) append(id string, msg coursechat.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id != id {
		return false
	}
	s.messages = append(s.messages, msg)
	return true
}

// Bind binds an unbound store to id with an empty history, dropping any
// session-less messages it held. A store already bound elsewhere is left
// alone. It reports whether the store is bound to id afterwards.
func (s *Store) Bind(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id != "" {
		return s.id == id
	}
	s.gen++
	s.id = id
	s.messages = nil
	return true
}

// Reset binds the store to id with an empty history.
func (s *Store) Reset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.id = id
	s.messages = nil
}

// Clear empties and unbinds the store.
func (s *Store) Clear() {
	s.Reset("")
}

// ClearIfBound clears the store when it is bound to id.
func (s *Store) ClearIfBound(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" || s.id != id {
		return false
	}
	s.gen++
	s.id = ""
	s.messages = nil
	return true
}

// SessionID returns the ID the store is bound to, or "" when unbound.
func (s *Store) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Messages returns a snapshot of the held messages in append order.
func (s *Store) Messages() []coursechat.Message {
	_, msgs := s.Snapshot()
	return msgs
}

// Snapshot returns the bound ID and the held messages read together.
func (s *Store) Snapshot() (string, []coursechat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, append([]coursechat.Message(nil), s.messages...)
}
