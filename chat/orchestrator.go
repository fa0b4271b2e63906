package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/fwojciec/coursechat"
	"github.com/rs/zerolog"
)

// Orchestrator performs every remote call of the conversation and reconciles
// the result into the Directory and the Store. Each remote call is a single
// attempt.
type Orchestrator struct {
	svc    coursechat.Service
	dir    *Directory
	store  *Store
	logger zerolog.Logger
}

// NewOrchestrator returns an Orchestrator reconciling into dir and store.
func NewOrchestrator(svc coursechat.Service, dir *Directory, store *Store, opts ...Option) *Orchestrator {
	cfg := newConfig(opts)
	return &Orchestrator{svc: svc, dir: dir, store: store, logger: cfg.logger}
}

// CreateSession allocates a new session and makes sure the Directory lists
// it. Failures wrap coursechat.ErrSessionCreate.
func (o *Orchestrator) CreateSession(ctx context.Context) (string, error) {
	id, err := o.svc.CreateSession(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", coursechat.ErrSessionCreate, err)
	}
	o.refresh(ctx)
	o.dir.Ensure(id)
	o.logger.Debug().Str("session_id", id).Msg("session created")
	return id, nil
}

// DeleteSession removes id on the backend and locally. A session the backend
// no longer knows counts as deleted. The Store is cleared when it holds id.
// Other failures wrap coursechat.ErrSessionDelete and change nothing.
func (o *Orchestrator) DeleteSession(ctx context.Context, id string) error {
	if err := o.svc.DeleteSession(ctx, id); err != nil {
		if !errors.Is(err, coursechat.ErrUnknownSession) {
			return fmt.Errorf("%w: %w", coursechat.ErrSessionDelete, err)
		}
		o.logger.Debug().Str("session_id", id).Msg("session already gone")
	}
	o.dir.Remove(id)
	if o.store.ClearIfBound(id) {
		o.logger.Debug().Str("session_id", id).Msg("active session deleted")
	}
	o.refresh(ctx)
	return nil
}

// Adopt makes a session created by a send active when no other session is.
// A session deleted in the meantime is never adopted. It reports whether the
// Store is bound to id afterwards.
func (o *Orchestrator) Adopt(id string) bool {
	if id == "" || o.dir.Removed(id) || !o.store.Bind(id) {
		return false
	}
	// DeleteSession removes before it clears, so a delete racing the bind
	// is caught either here or by its own ClearIfBound.
	if o.dir.Removed(id) {
		o.store.ClearIfBound(id)
		return false
	}
	return true
}

// FetchSession loads id into the Store.
func (o *Orchestrator) FetchSession(ctx context.Context, id string) (coursechat.Session, error) {
	return o.store.Load(ctx, id)
}

// SendMessage posts question to the session id, creating a session first
// when id is empty. The user message is appended before the call and the
// reply, or the failure notice, after it, so every call adds exactly two
// messages to a store still bound to the resolved session. The returned
// error is reserved for invalid input; answer failures are reported in
// Exchange.Err.
func (o *Orchestrator) SendMessage(ctx context.Context, id, question string, subject coursechat.Subject) (Exchange, error) {
	if err := coursechat.ValidateQuestion(question); err != nil {
		return Exchange{}, err
	}

	var created bool
	if id == "" {
		newID, err := o.CreateSession(ctx)
		if err != nil {
			o.logger.Warn().Err(err).Msg("lazy session creation failed, sending without a session")
		} else {
			id, created = newID, true
			o.Adopt(id)
		}
	}

	o.store.AppendLocal(id, coursechat.NewUserMessage(question))

	answer, err := o.svc.Ask(ctx, id, coursechat.Question{Text: question, Subject: subject})
	reply := coursechat.NewAssistantMessage(answer)
	if err != nil {
		o.logger.Warn().Err(err).Str("session_id", id).Msg("answer failed")
		reply = coursechat.NewFailureMessage()
	}
	if !o.store.AppendRemote(id, reply) {
		o.logger.Debug().Str("session_id", id).Msg("reply arrived for an inactive session")
	}

	o.refresh(ctx)
	if created && subject != coursechat.AllSubjects {
		o.dir.UpsertSubject(id, subject)
	}

	return Exchange{SessionID: id, Created: created, Reply: reply, Err: err}, nil
}

func (o *Orchestrator) refresh(ctx context.Context) {
	if err := o.dir.Refresh(ctx); err != nil {
		o.logger.Warn().Err(err).Msg("directory refresh failed")
	}
}
