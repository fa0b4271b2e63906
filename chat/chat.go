// Package chat implements the session-scoped conversation state machine: the
// Directory of session summaries, the Store holding the active session's
// history, the Orchestrator that reconciles remote calls into both, and the
// Controller that composes them for a presentation layer.
package chat

import (
	"errors"

	"github.com/fwojciec/coursechat"
	"github.com/rs/zerolog"
)

// ErrSuperseded is returned by a load whose result arrived after a newer
// load, bind or clear of the same Store. The result was discarded.
var ErrSuperseded = errors.New("superseded by a newer request")

// SendPolicy decides whether Controller.Send calls may overlap.
type SendPolicy int

const (
	// SendSerialized runs sends one at a time. A second send waits for the
	// first to resolve and then targets the session the first one resolved.
	SendSerialized SendPolicy = iota

	// SendConcurrent lets sends overlap. Replies land in completion order,
	// and two sends issued with no active session may each create a session.
	SendConcurrent
)

// Exchange is the outcome of one send.
type Exchange struct {
	// SessionID is the session the exchange was posted to. Empty when
	// session creation failed and the session-less endpoint was used.
	SessionID string

	// Created reports whether the send lazily created SessionID.
	Created bool

	// Reply is the assistant message appended for this send: the mapped
	// answer, or the failure notice when Err is set.
	Reply coursechat.Message

	// Err is the answer failure, if any. It is informational: the failure is
	// already visible in the conversation as Reply.
	Err error
}

// Option configures an Orchestrator or a Controller.
type Option func(*config)

type config struct {
	logger zerolog.Logger
	policy SendPolicy
}

func newConfig(opts []Option) config {
	cfg := config{logger: zerolog.Nop(), policy: SendSerialized}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// WithLogger sets the logger for lifecycle events and swallowed failures.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithSendPolicy sets how overlapping sends are handled. Only the Controller
// reads it.
func WithSendPolicy(p SendPolicy) Option {
	return func(c *config) { c.policy = p }
}
