package coursechat

import "context"

// Service is the remote answering backend as seen by the client.
// Every method is a single attempt; implementations do not retry.
type Service interface {
	// ListSessions returns the summaries of all live sessions in backend order.
	ListSessions(ctx context.Context) ([]SessionSummary, error)

	// CreateSession allocates a new, empty session and returns its ID.
	CreateSession(ctx context.Context) (string, error)

	// GetSession returns the full history of a session. It fails with
	// ErrUnknownSession when the backend does not know the ID.
	GetSession(ctx context.Context, id string) (Session, error)

	// DeleteSession removes a session. It fails with ErrUnknownSession when
	// the session is already gone.
	DeleteSession(ctx context.Context, id string) error

	// Ask posts a question. An empty sessionID targets the session-less
	// endpoint.
	Ask(ctx context.Context, sessionID string, q Question) (Answer, error)
}

// Question is the body of an answer request.
type Question struct {
	Text    string
	Subject Subject
}

// Answer is the backend's reply to a Question.
type Answer struct {
	Generation       string
	Sources          []Source
	IsConversational bool
}
