// Package httpapi implements [coursechat.Service] and [coursechat.Generator]
// against the course assistant's JSON-over-HTTP API.
package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/coursechat"
	chatjson "github.com/fwojciec/coursechat/json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "http://localhost:8000/api"

	sessionsPath   = "/chat/sessions"
	sessionPath    = "/chat/session"
	messagePath    = "/chat/message"
	quizPath       = "/quiz/generate"
	flashcardsPath = "/flashcard/generate"

	// RequestIDHeader carries a per-request UUID for log correlation.
	RequestIDHeader = "X-Request-Id"

	// maxErrorBody bounds how much of a failed response is kept in errors.
	maxErrorBody = 512
)

// Interface compliance checks.
var (
	_ coursechat.Service   = (*Client)(nil)
	_ coursechat.Generator = (*Client)(nil)
)

// Client talks to the course assistant backend. Each call is a single
// attempt; there are no retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API root. Useful for testing with httptest.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for per-request debug logs.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a new [Client].
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		logger:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ListSessions implements [coursechat.Service].
func (c *Client) ListSessions(ctx context.Context) ([]coursechat.SessionSummary, error) {
	body, err := c.do(ctx, http.MethodGet, sessionsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return chatjson.UnmarshalSessions(body)
}

// CreateSession implements [coursechat.Service].
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodPost, sessionPath, nil)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return chatjson.UnmarshalSessionID(body)
}

// GetSession implements [coursechat.Service].
func (c *Client) GetSession(ctx context.Context, id string) (coursechat.Session, error) {
	body, err := c.do(ctx, http.MethodGet, sessionPath+"/"+url.PathEscape(id), nil)
	if err != nil {
		return coursechat.Session{}, fmt.Errorf("get session %s: %w", id, err)
	}
	return chatjson.UnmarshalSession(body)
}

// DeleteSession implements [coursechat.Service]. The response body is ignored.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	if _, err := c.do(ctx, http.MethodDelete, sessionPath+"/"+url.PathEscape(id), nil); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// Ask implements [coursechat.Service]. An empty sessionID posts to the
// session-less endpoint.
func (c *Client) Ask(ctx context.Context, sessionID string, q coursechat.Question) (coursechat.Answer, error) {
	payload, err := chatjson.MarshalQuestion(q)
	if err != nil {
		return coursechat.Answer{}, fmt.Errorf("ask: %w", err)
	}
	path := messagePath
	if sessionID != "" {
		path = sessionPath + "/" + url.PathEscape(sessionID) + "/message"
	}
	body, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return coursechat.Answer{}, fmt.Errorf("ask: %w", err)
	}
	return chatjson.UnmarshalAnswer(body)
}

// GenerateQuiz implements [coursechat.Generator].
func (c *Client) GenerateQuiz(ctx context.Context, req coursechat.QuizRequest) (coursechat.Quiz, error) {
	if err := req.Validate(); err != nil {
		return coursechat.Quiz{}, err
	}
	payload, err := chatjson.MarshalQuizRequest(req)
	if err != nil {
		return coursechat.Quiz{}, fmt.Errorf("generate quiz: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, quizPath, payload)
	if err != nil {
		return coursechat.Quiz{}, fmt.Errorf("generate quiz: %w", err)
	}
	return chatjson.UnmarshalQuiz(body)
}

// GenerateFlashcards implements [coursechat.Generator].
func (c *Client) GenerateFlashcards(ctx context.Context, req coursechat.FlashcardRequest) ([]coursechat.Flashcard, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	payload, err := chatjson.MarshalFlashcardRequest(req)
	if err != nil {
		return nil, fmt.Errorf("generate flashcards: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, flashcardsPath, payload)
	if err != nil {
		return nil, fmt.Errorf("generate flashcards: %w", err)
	}
	return chatjson.UnmarshalFlashcards(body)
}

// do performs one request and returns the response body of a 2xx response.
// Network failures and non-2xx statuses map to coursechat.ErrTransport; 404
// maps to coursechat.ErrUnknownSession.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	reqID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, reqID)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug().Err(err).
			Str("method", method).Str("path", path).Str("request_id", reqID).
			Dur("duration", time.Since(start)).
			Msg("request failed")
		return nil, fmt.Errorf("%w: %w", coursechat.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.logger.Debug().
		Str("method", method).Str("path", path).Str("request_id", reqID).
		Int("status", resp.StatusCode).Dur("duration", time.Since(start)).
		Msg("request completed")
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", coursechat.ErrTransport, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("HTTP %d: %w", resp.StatusCode, coursechat.ErrUnknownSession)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("HTTP %d: %s: %w", resp.StatusCode, truncate(body, maxErrorBody), coursechat.ErrTransport)
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
