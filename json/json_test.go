package json_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/coursechat"
	chatjson "github.com/fwojciec/coursechat/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalSessions(t *testing.T) {
	t.Parallel()

	t.Run("preserves backend order and nullable created_at", func(t *testing.T) {
		t.Parallel()
		data := []byte(`{"sessions":[
			{"session_id":"b","message_count":2,"created_at":"2025-01-02T03:04:05Z","subject":"Network"},
			{"session_id":"a","message_count":0,"created_at":null}
		]}`)
		got, err := chatjson.UnmarshalSessions(data)
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.Equal(t, "b", got[0].ID)
		assert.Equal(t, 2, got[0].MessageCount)
		require.NotNil(t, got[0].CreatedAt)
		assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), got[0].CreatedAt.UTC())
		assert.Equal(t, coursechat.Network, got[0].Subject)

		assert.Equal(t, "a", got[1].ID)
		assert.Nil(t, got[1].CreatedAt)
		assert.Equal(t, coursechat.AllSubjects, got[1].Subject)
	})

	t.Run("empty list", func(t *testing.T) {
		t.Parallel()
		got, err := chatjson.UnmarshalSessions([]byte(`{"sessions":[]}`))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	malformedCases := map[string]string{
		"not json":           `<html>`,
		"sessions missing":   `{}`,
		"session id missing": `{"sessions":[{"message_count":1}]}`,
		"negative count":     `{"sessions":[{"session_id":"a","message_count":-1}]}`,
	}
	for name, body := range malformedCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := chatjson.UnmarshalSessions([]byte(body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, coursechat.ErrMalformedResponse))
		})
	}
}

func TestUnmarshalSessionID(t *testing.T) {
	t.Parallel()

	id, err := chatjson.UnmarshalSessionID([]byte(`{"session_id":"abc"}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	_, err = chatjson.UnmarshalSessionID([]byte(`{"session_id":""}`))
	assert.True(t, errors.Is(err, coursechat.ErrMalformedResponse))

	_, err = chatjson.UnmarshalSessionID([]byte(`{"id":"abc"}`))
	assert.True(t, errors.Is(err, coursechat.ErrMalformedResponse))
}

func TestUnmarshalSession(t *testing.T) {
	t.Parallel()

	t.Run("maps messages", func(t *testing.T) {
		t.Parallel()
		data := []byte(`{"session_id":"s1","messages":[
			{"role":"user","content":"What is TCP?","timestamp":"2025-01-02T03:04:05Z"},
			{"role":"assistant","content":"A protocol.","sources":[{"page_content":"TCP ...","metadata":{"page":7}}]},
			{"role":"assistant","content":"Hi!","is_conversational":true}
		]}`)
		s, err := chatjson.UnmarshalSession(data)
		require.NoError(t, err)
		assert.Equal(t, "s1", s.ID)
		require.Len(t, s.Messages, 3)

		assert.Equal(t, coursechat.RoleUser, s.Messages[0].Role)
		assert.Equal(t, "What is TCP?", s.Messages[0].Content)
		assert.False(t, s.Messages[0].Timestamp.IsZero())

		require.Len(t, s.Messages[1].Sources, 1)
		assert.Equal(t, "TCP ...", s.Messages[1].Sources[0].Excerpt)
		assert.Equal(t, float64(7), s.Messages[1].Sources[0].Metadata["page"])
		assert.True(t, s.Messages[1].Timestamp.IsZero())

		assert.True(t, s.Messages[2].IsConversational)
	})

	t.Run("empty history", func(t *testing.T) {
		t.Parallel()
		s, err := chatjson.UnmarshalSession([]byte(`{"session_id":"s1","messages":[]}`))
		require.NoError(t, err)
		assert.Empty(t, s.Messages)
	})

	malformedCases := map[string]string{
		"messages missing": `{"session_id":"s1"}`,
		"unknown role":     `{"session_id":"s1","messages":[{"role":"system","content":"x"}]}`,
		"content missing":  `{"session_id":"s1","messages":[{"role":"user"}]}`,
		"id missing":       `{"messages":[]}`,
	}
	for name, body := range malformedCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := chatjson.UnmarshalSession([]byte(body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, coursechat.ErrMalformedResponse))
		})
	}
}

func TestMarshalQuestion(t *testing.T) {
	t.Parallel()

	data, err := chatjson.MarshalQuestion(coursechat.Question{Text: "What is TCP?", Subject: coursechat.Network})
	require.NoError(t, err)
	assert.JSONEq(t, `{"question":"What is TCP?","subject":"Network"}`, string(data))

	data, err = chatjson.MarshalQuestion(coursechat.Question{Text: "hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"question":"hi"}`, string(data), "AllSubjects must be omitted")
}

func TestUnmarshalAnswer(t *testing.T) {
	t.Parallel()

	t.Run("full answer", func(t *testing.T) {
		t.Parallel()
		a, err := chatjson.UnmarshalAnswer([]byte(`{"generation":"TCP is reliable.","sources":[{"page_content":"p","metadata":{"k":"v"}}],"is_conversational":false}`))
		require.NoError(t, err)
		assert.Equal(t, "TCP is reliable.", a.Generation)
		require.Len(t, a.Sources, 1)
		assert.Equal(t, map[string]any{"k": "v"}, a.Sources[0].Metadata)
	})

	t.Run("conversational answer without sources", func(t *testing.T) {
		t.Parallel()
		a, err := chatjson.UnmarshalAnswer([]byte(`{"generation":"Hello!","is_conversational":true}`))
		require.NoError(t, err)
		assert.True(t, a.IsConversational)
		assert.Nil(t, a.Sources)
	})

	t.Run("missing generation is malformed", func(t *testing.T) {
		t.Parallel()
		_, err := chatjson.UnmarshalAnswer([]byte(`{"detail":"Internal error"}`))
		require.Error(t, err)
		assert.True(t, errors.Is(err, coursechat.ErrMalformedResponse))
	})
}

func TestUnmarshalQuiz(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		q, err := chatjson.UnmarshalQuiz([]byte(`{"success":true,"quiz_id":"q1","quiz_data":[
			{"question":"Q?","options":["A. x","B. y"],"correct_answer":"A","explanation":"because","difficulty":"easy"}
		]}`))
		require.NoError(t, err)
		assert.Equal(t, "q1", q.ID)
		require.Len(t, q.Questions, 1)
		assert.Equal(t, "A", q.Questions[0].CorrectAnswer)
		assert.Equal(t, []string{"A. x", "B. y"}, q.Questions[0].Options)
	})

	t.Run("success false", func(t *testing.T) {
		t.Parallel()
		_, err := chatjson.UnmarshalQuiz([]byte(`{"success":false,"error":"no documents"}`))
		require.Error(t, err)
		assert.True(t, errors.Is(err, coursechat.ErrGeneration))
		assert.Contains(t, err.Error(), "no documents")
	})

	t.Run("incomplete question", func(t *testing.T) {
		t.Parallel()
		_, err := chatjson.UnmarshalQuiz([]byte(`{"success":true,"quiz_data":[{"question":"Q?"}]}`))
		assert.True(t, errors.Is(err, coursechat.ErrMalformedResponse))
	})
}

func TestUnmarshalFlashcards(t *testing.T) {
	t.Parallel()

	cards, err := chatjson.UnmarshalFlashcards([]byte(`{"success":true,"flashcard_data":[
		{"front":"k-means?","back":"a clustering method","category":"clustering","difficulty":"easy","tags":["ml"]}
	]}`))
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, []string{"ml"}, cards[0].Tags)

	_, err = chatjson.UnmarshalFlashcards([]byte(`{"success":false}`))
	assert.True(t, errors.Is(err, coursechat.ErrGeneration))

	_, err = chatjson.UnmarshalFlashcards([]byte(`{"success":true,"flashcard_data":[]}`))
	assert.True(t, errors.Is(err, coursechat.ErrMalformedResponse))
}

func TestRequestBodies(t *testing.T) {
	t.Parallel()

	data, err := chatjson.MarshalQuizRequest(coursechat.QuizRequest{Topic: "routing", NumQuestions: 5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"topic":"routing","num_questions":5}`, string(data))

	data, err = chatjson.MarshalFlashcardRequest(coursechat.FlashcardRequest{Topic: "trees", Subject: coursechat.DataMining, NumCards: 10})
	require.NoError(t, err)
	assert.JSONEq(t, `{"topic":"trees","subject":"DataMining","num_cards":10}`, string(data))
}

func TestTranscript_SaveLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "s1.json")
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	session := coursechat.Session{
		ID: "s1",
		Messages: []coursechat.Message{
			{Role: coursechat.RoleUser, Content: "What is TCP?", Timestamp: ts},
			{Role: coursechat.RoleAssistant, Content: "A protocol.", Timestamp: ts.Add(time.Second),
				Sources: []coursechat.Source{{Excerpt: "excerpt", Metadata: map[string]any{"page": "3"}}}},
		},
	}
	require.NoError(t, chatjson.Save(path, session))

	loaded, err := chatjson.Load(path)
	require.NoError(t, err)
	assert.Equal(t, session.ID, loaded.ID)
	require.Len(t, loaded.Messages, 2)
	assert.True(t, ts.Equal(loaded.Messages[0].Timestamp))
	assert.Equal(t, "excerpt", loaded.Messages[1].Sources[0].Excerpt)
}

func TestUnmarshalTranscript_UnsupportedVersion(t *testing.T) {
	t.Parallel()
	_, err := chatjson.UnmarshalTranscript([]byte(`{"version":2,"id":"s1","messages":[]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported envelope version")
}
