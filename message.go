package coursechat

import (
	"slices"
	"time"
)

// FailureNotice is the assistant reply shown in place of an answer when the
// answer request fails for any reason.
const FailureNotice = "Sorry, I encountered an error. Please make sure the backend is running and try again."

// Message is one immutable turn in a conversation.
type Message struct {
	Role      Role
	Content   string
	Timestamp time.Time

	// Sources lists the retrieved excerpts the answer was grounded on.
	// Only assistant messages produced by retrieval carry sources.
	Sources []Source

	// IsConversational is set when the backend handled the turn as small
	// talk instead of a retrieval-grounded answer.
	IsConversational bool
}

// Source is a retrieved course-material excerpt backing an answer.
// Metadata is opaque and passed through unmodified.
type Source struct {
	Excerpt  string
	Metadata map[string]any
}

// MessageOption configures optional Message fields at construction.
type MessageOption func(*Message)

// WithSources attaches a copy of sources to the message.
func WithSources(sources []Source) MessageOption {
	return func(m *Message) {
		m.Sources = slices.Clone(sources)
	}
}

// WithConversational marks the message as a small-talk reply.
func WithConversational(v bool) MessageOption {
	return func(m *Message) {
		m.IsConversational = v
	}
}

// NewMessage creates a Message stamped with the current local time.
func NewMessage(role Role, content string, opts ...MessageOption) Message {
	m := Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// NewUserMessage creates a user-authored message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage maps a backend Answer onto an assistant message.
func NewAssistantMessage(a Answer) Message {
	return NewMessage(RoleAssistant, a.Generation,
		WithSources(a.Sources),
		WithConversational(a.IsConversational),
	)
}

// NewFailureMessage creates the assistant message that stands in for an
// answer that could not be obtained.
func NewFailureMessage() Message {
	return NewMessage(RoleAssistant, FailureNotice)
}
