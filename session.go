package coursechat

import "time"

// SessionSummary is a directory entry describing a server-side session.
type SessionSummary struct {
	ID           string
	MessageCount int
	CreatedAt    *time.Time // nil when the backend did not report it
	Subject      Subject
}

// Session is the full message history of one session.
type Session struct {
	ID       string
	Messages []Message
}
