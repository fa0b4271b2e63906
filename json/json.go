// Package json implements the JSON wire format of the course assistant API
// and the on-disk transcript format.
//
// Decoders are strict about the fields the client depends on: a response
// missing one of them is reported as coursechat.ErrMalformedResponse rather
// than silently producing zero values.
package json

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/coursechat"
)

// sourceDTO is a retrieved excerpt. The backend names the text field after
// its document model.
type sourceDTO struct {
	PageContent string         `json:"page_content"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// messageDTO is a conversation turn as returned by GET /chat/session/{id}.
type messageDTO struct {
	Role             *string     `json:"role"`
	Content          *string     `json:"content"`
	Timestamp        *time.Time  `json:"timestamp,omitempty"`
	Sources          []sourceDTO `json:"sources,omitempty"`
	IsConversational bool        `json:"is_conversational,omitempty"`
}

type summaryDTO struct {
	SessionID    *string    `json:"session_id"`
	MessageCount int        `json:"message_count"`
	CreatedAt    *time.Time `json:"created_at"`
	Subject      string     `json:"subject,omitempty"`
}

type sessionsResponse struct {
	Sessions *[]summaryDTO `json:"sessions"`
}

type createSessionResponse struct {
	SessionID *string `json:"session_id"`
}

type sessionResponse struct {
	SessionID *string       `json:"session_id"`
	Messages  *[]messageDTO `json:"messages"`
}

type questionRequest struct {
	Question string `json:"question"`
	Subject  string `json:"subject,omitempty"`
}

type answerResponse struct {
	Generation       *string     `json:"generation"`
	Sources          []sourceDTO `json:"sources,omitempty"`
	IsConversational bool        `json:"is_conversational,omitempty"`
}

func malformed(what string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w: %w", what, coursechat.ErrMalformedResponse, err)
	}
	return fmt.Errorf("%s: %w", what, coursechat.ErrMalformedResponse)
}

// UnmarshalSessions decodes a GET /chat/sessions response.
func UnmarshalSessions(data []byte) ([]coursechat.SessionSummary, error) {
	var resp sessionsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, malformed("decode sessions", err)
	}
	if resp.Sessions == nil {
		return nil, malformed("sessions field missing", nil)
	}
	out := make([]coursechat.SessionSummary, len(*resp.Sessions))
	for i, dto := range *resp.Sessions {
		if dto.SessionID == nil || *dto.SessionID == "" {
			return nil, malformed(fmt.Sprintf("session %d: session_id missing", i), nil)
		}
		if dto.MessageCount < 0 {
			return nil, malformed(fmt.Sprintf("session %d: negative message_count %d", i, dto.MessageCount), nil)
		}
		out[i] = coursechat.SessionSummary{
			ID:           *dto.SessionID,
			MessageCount: dto.MessageCount,
			CreatedAt:    dto.CreatedAt,
			Subject:      coursechat.Subject(dto.Subject),
		}
	}
	return out, nil
}

// MarshalSessions encodes summaries as a GET /chat/sessions response.
func MarshalSessions(summaries []coursechat.SessionSummary) ([]byte, error) {
	dtos := make([]summaryDTO, len(summaries))
	for i, s := range summaries {
		id := s.ID
		dtos[i] = summaryDTO{
			SessionID:    &id,
			MessageCount: s.MessageCount,
			CreatedAt:    s.CreatedAt,
			Subject:      string(s.Subject),
		}
	}
	return json.Marshal(sessionsResponse{Sessions: &dtos})
}

// UnmarshalSessionID decodes a POST /chat/session response.
func UnmarshalSessionID(data []byte) (string, error) {
	var resp createSessionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", malformed("decode session id", err)
	}
	if resp.SessionID == nil || *resp.SessionID == "" {
		return "", malformed("session_id missing", nil)
	}
	return *resp.SessionID, nil
}

// MarshalSessionID encodes a POST /chat/session response.
func MarshalSessionID(id string) ([]byte, error) {
	return json.Marshal(createSessionResponse{SessionID: &id})
}

// UnmarshalSession decodes a GET /chat/session/{id} response.
func UnmarshalSession(data []byte) (coursechat.Session, error) {
	var resp sessionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return coursechat.Session{}, malformed("decode session", err)
	}
	if resp.SessionID == nil || *resp.SessionID == "" {
		return coursechat.Session{}, malformed("session_id missing", nil)
	}
	if resp.Messages == nil {
		return coursechat.Session{}, malformed("messages missing", nil)
	}
	msgs, err := unmarshalMessages(*resp.Messages)
	if err != nil {
		return coursechat.Session{}, err
	}
	return coursechat.Session{ID: *resp.SessionID, Messages: msgs}, nil
}

// MarshalSession encodes a GET /chat/session/{id} response.
func MarshalSession(s coursechat.Session) ([]byte, error) {
	id := s.ID
	msgs := marshalMessages(s.Messages)
	return json.Marshal(sessionResponse{SessionID: &id, Messages: &msgs})
}

// MarshalQuestion encodes the body of a question request. AllSubjects is
// omitted from the body.
func MarshalQuestion(q coursechat.Question) ([]byte, error) {
	return json.Marshal(questionRequest{Question: q.Text, Subject: string(q.Subject)})
}

// UnmarshalQuestion decodes the body of a question request.
func UnmarshalQuestion(data []byte) (coursechat.Question, error) {
	var req questionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return coursechat.Question{}, malformed("decode question", err)
	}
	return coursechat.Question{Text: req.Question, Subject: coursechat.Subject(req.Subject)}, nil
}

// UnmarshalAnswer decodes an answer response. A missing generation field is
// malformed; an empty string is accepted.
func UnmarshalAnswer(data []byte) (coursechat.Answer, error) {
	var resp answerResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return coursechat.Answer{}, malformed("decode answer", err)
	}
	if resp.Generation == nil {
		return coursechat.Answer{}, malformed("generation missing", nil)
	}
	return coursechat.Answer{
		Generation:       *resp.Generation,
		Sources:          unmarshalSources(resp.Sources),
		IsConversational: resp.IsConversational,
	}, nil
}

// MarshalAnswer encodes an answer response.
func MarshalAnswer(a coursechat.Answer) ([]byte, error) {
	gen := a.Generation
	return json.Marshal(answerResponse{
		Generation:       &gen,
		Sources:          marshalSources(a.Sources),
		IsConversational: a.IsConversational,
	})
}

func unmarshalMessages(dtos []messageDTO) ([]coursechat.Message, error) {
	msgs := make([]coursechat.Message, len(dtos))
	for i, dto := range dtos {
		if dto.Role == nil || !coursechat.Role(*dto.Role).Valid() {
			return nil, malformed(fmt.Sprintf("message %d: missing or unknown role", i), nil)
		}
		if dto.Content == nil {
			return nil, malformed(fmt.Sprintf("message %d: content missing", i), nil)
		}
		msg := coursechat.Message{
			Role:             coursechat.Role(*dto.Role),
			Content:          *dto.Content,
			Sources:          unmarshalSources(dto.Sources),
			IsConversational: dto.IsConversational,
		}
		if dto.Timestamp != nil {
			msg.Timestamp = *dto.Timestamp
		}
		msgs[i] = msg
	}
	return msgs, nil
}

func marshalMessages(msgs []coursechat.Message) []messageDTO {
	dtos := make([]messageDTO, len(msgs))
	for i, m := range msgs {
		role := string(m.Role)
		content := m.Content
		dto := messageDTO{
			Role:             &role,
			Content:          &content,
			Sources:          marshalSources(m.Sources),
			IsConversational: m.IsConversational,
		}
		if !m.Timestamp.IsZero() {
			ts := m.Timestamp
			dto.Timestamp = &ts
		}
		dtos[i] = dto
	}
	return dtos
}

func unmarshalSources(dtos []sourceDTO) []coursechat.Source {
	if len(dtos) == 0 {
		return nil
	}
	out := make([]coursechat.Source, len(dtos))
	for i, dto := range dtos {
		out[i] = coursechat.Source{Excerpt: dto.PageContent, Metadata: dto.Metadata}
	}
	return out
}

func marshalSources(sources []coursechat.Source) []sourceDTO {
	if len(sources) == 0 {
		return nil
	}
	out := make([]sourceDTO, len(sources))
	for i, s := range sources {
		out[i] = sourceDTO{PageContent: s.Excerpt, Metadata: s.Metadata}
	}
	return out
}
