package chat

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/coursechat"
	"github.com/rs/zerolog"
)

// State is the Controller's position in the conversation lifecycle.
type State int

const (
	NoActiveSession State = iota
	SessionActive
)

func (s State) String() string {
	switch s {
	case NoActiveSession:
		return "no active session"
	case SessionActive:
		return "session active"
	default:
		return "unknown"
	}
}

// View is a render-ready snapshot of the conversation.
type View struct {
	ActiveSessionID string
	State           State
	Messages        []coursechat.Message
	Sessions        []coursechat.SessionSummary
	Pending         bool
}

// Controller composes the Directory, Store and Orchestrator into the
// conversation state machine. The active session is whatever the Store is
// bound to. Methods may be called from multiple goroutines; each blocks for
// the duration of its remote calls.
type Controller struct {
	dir    *Directory
	store  *Store
	orch   *Orchestrator
	logger zerolog.Logger
	policy SendPolicy

	sendMu  sync.Mutex
	pending atomic.Int64
}

// NewController returns a Controller with no active session.
func NewController(svc coursechat.Service, opts ...Option) *Controller {
	cfg := newConfig(opts)
	dir := NewDirectory(svc)
	store := NewStore(svc)
	return &Controller{
		dir:    dir,
		store:  store,
		orch:   NewOrchestrator(svc, dir, store, opts...),
		logger: cfg.logger,
		policy: cfg.policy,
	}
}

// Start performs the initial Directory refresh.
func (c *Controller) Start(ctx context.Context) error {
	defer c.track()()
	return c.dir.Refresh(ctx)
}

// Refresh re-reads the Directory.
func (c *Controller) Refresh(ctx context.Context) error {
	defer c.track()()
	return c.dir.Refresh(ctx)
}

// NewSession creates a session and makes it active with an empty history.
// On failure the current state is kept.
func (c *Controller) NewSession(ctx context.Context) (string, error) {
	defer c.track()()
	id, err := c.orch.CreateSession(ctx)
	if err != nil {
		return "", err
	}
	c.store.Reset(id)
	return id, nil
}

// Send posts text to the active session, creating one when none is active,
// and adopts the session when the send created it.
func (c *Controller) Send(ctx context.Context, text string, subject coursechat.Subject) (Exchange, error) {
	defer c.track()()
	if c.policy == SendSerialized {
		c.sendMu.Lock()
		defer c.sendMu.Unlock()
	}

	ex, err := c.orch.SendMessage(ctx, c.store.SessionID(), text, subject)
	if err != nil {
		return ex, err
	}
	if ex.Created && !c.orch.Adopt(ex.SessionID) {
		c.logger.Debug().Str("session_id", ex.SessionID).Msg("created session not adopted")
	}
	return ex, nil
}

// Select makes id the active session. When the fetch fails the previous
// session stays active and the error is returned; a session the backend no
// longer knows also triggers a Directory refresh. A fetch overtaken by a
// newer selection returns nil without changing anything.
func (c *Controller) Select(ctx context.Context, id string) error {
	defer c.track()()
	_, err := c.orch.FetchSession(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrSuperseded):
		c.logger.Debug().Str("session_id", id).Msg("selection superseded")
		return nil
	case errors.Is(err, coursechat.ErrUnknownSession):
		if rerr := c.dir.Refresh(ctx); rerr != nil {
			c.logger.Warn().Err(rerr).Msg("directory refresh failed")
		}
	}
	return err
}

// Delete removes id. Deleting the active session leaves no session active.
func (c *Controller) Delete(ctx context.Context, id string) error {
	defer c.track()()
	return c.orch.DeleteSession(ctx, id)
}

// ActiveSessionID returns the active session, or "" when none is active.
func (c *Controller) ActiveSessionID() string {
	return c.store.SessionID()
}

// Pending reports whether any call is outstanding.
func (c *Controller) Pending() bool {
	return c.pending.Load() > 0
}

// View returns a snapshot for rendering.
func (c *Controller) View() View {
	id, msgs := c.store.Snapshot()
	v := View{
		ActiveSessionID: id,
		Messages:        msgs,
		Sessions:        c.dir.Entries(),
		Pending:         c.Pending(),
	}
	if id != "" {
		v.State = SessionActive
	}
	return v
}

func (c *Controller) track() func() {
	c.pending.Add(1)
	return func() { c.pending.Add(-1) }
}
