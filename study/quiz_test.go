package study_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/coursechat"
	"github.com/fwojciec/coursechat/mock"
	"github.com/fwojciec/coursechat/study"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuiz() coursechat.Quiz {
	return coursechat.Quiz{
		ID: "q1",
		Questions: []coursechat.QuizQuestion{
			{Question: "Which layer does TCP live in?", Options: []string{"A. Network", "B. Transport", "C. Link"}, CorrectAnswer: "B", Explanation: "TCP is a transport protocol."},
			{Question: "Is UDP reliable?", Options: []string{"A. Yes", "B. No"}, CorrectAnswer: "B", Explanation: "UDP does not retransmit."},
		},
	}
}

func quizGenerator(t *testing.T, quiz coursechat.Quiz, err error) *mock.Generator {
	t.Helper()
	return &mock.Generator{
		GenerateQuizFn: func(_ context.Context, req coursechat.QuizRequest) (coursechat.Quiz, error) {
			assert.Equal(t, "transport", req.Topic)
			return quiz, err
		},
	}
}

func TestQuiz_FullRun(t *testing.T) {
	t.Parallel()

	q := study.NewQuiz(quizGenerator(t, sampleQuiz(), nil))
	require.NoError(t, q.Start(context.Background(), coursechat.QuizRequest{Topic: "transport", Subject: coursechat.Network}))
	assert.Equal(t, study.QuizTaking, q.Phase())
	assert.Equal(t, coursechat.DefaultQuizQuestions, q.Request().NumQuestions)

	question, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, "Which layer does TCP live in?", question.Question)

	out, err := q.Submit("b")
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.Equal(t, "B", out.Selected)
	assert.Equal(t, "TCP is a transport protocol.", out.Explanation)

	more, err := q.Next()
	require.NoError(t, err)
	assert.True(t, more)
	i, n := q.Position()
	assert.Equal(t, 1, i)
	assert.Equal(t, 2, n)

	out, err = q.Submit("A")
	require.NoError(t, err)
	assert.False(t, out.Correct)
	assert.Equal(t, "B", out.CorrectAnswer)

	more, err = q.Next()
	require.NoError(t, err)
	assert.False(t, more)
	assert.Equal(t, study.QuizResults, q.Phase())

	correct, total := q.Score()
	assert.Equal(t, 1, correct)
	assert.Equal(t, 2, total)
	assert.Len(t, q.Outcomes(), 2)
	_, ok = q.Current()
	assert.False(t, ok)
}

func TestQuiz_Start(t *testing.T) {
	t.Parallel()

	t.Run("generation failure stays in setup", func(t *testing.T) {
		t.Parallel()
		q := study.NewQuiz(quizGenerator(t, coursechat.Quiz{}, coursechat.ErrGeneration))

		err := q.Start(context.Background(), coursechat.QuizRequest{Topic: "transport"})

		assert.True(t, errors.Is(err, coursechat.ErrGeneration))
		assert.Equal(t, study.QuizSetup, q.Phase())
	})

	t.Run("empty quiz is a generation failure", func(t *testing.T) {
		t.Parallel()
		q := study.NewQuiz(quizGenerator(t, coursechat.Quiz{ID: "x"}, nil))

		err := q.Start(context.Background(), coursechat.QuizRequest{Topic: "transport"})

		assert.True(t, errors.Is(err, coursechat.ErrGeneration))
		assert.Equal(t, study.QuizSetup, q.Phase())
	})

	t.Run("invalid request", func(t *testing.T) {
		t.Parallel()
		q := study.NewQuiz(&mock.Generator{})

		err := q.Start(context.Background(), coursechat.QuizRequest{Topic: "x", NumQuestions: 21})

		assert.True(t, errors.Is(err, coursechat.ErrValidation))
	})

	t.Run("only from setup", func(t *testing.T) {
		t.Parallel()
		q := study.NewQuiz(quizGenerator(t, sampleQuiz(), nil))
		require.NoError(t, q.Start(context.Background(), coursechat.QuizRequest{Topic: "transport"}))

		err := q.Start(context.Background(), coursechat.QuizRequest{Topic: "transport"})
		assert.True(t, errors.Is(err, study.ErrPhase))
	})
}

func TestQuiz_Submit(t *testing.T) {
	t.Parallel()

	q := study.NewQuiz(quizGenerator(t, sampleQuiz(), nil))
	_, err := q.Submit("A")
	assert.True(t, errors.Is(err, study.ErrPhase), "submit before start")

	require.NoError(t, q.Start(context.Background(), coursechat.QuizRequest{Topic: "transport"}))

	for _, bad := range []string{"", "D", "AB", "1"} {
		_, err := q.Submit(bad)
		assert.True(t, errors.Is(err, coursechat.ErrValidation), "option %q", bad)
	}
	assert.False(t, q.Answered())

	_, err = q.Next()
	assert.True(t, errors.Is(err, study.ErrPhase), "next before answering")

	_, err = q.Submit("C")
	require.NoError(t, err)
	_, err = q.Submit("B")
	assert.True(t, errors.Is(err, study.ErrPhase), "second submission")
}

func TestQuiz_RetryAndRestart(t *testing.T) {
	t.Parallel()

	q := study.NewQuiz(quizGenerator(t, sampleQuiz(), nil))
	require.NoError(t, q.Start(context.Background(), coursechat.QuizRequest{Topic: "transport"}))
	assert.True(t, errors.Is(q.Retry(), study.ErrPhase))

	for range 2 {
		_, err := q.Submit("B")
		require.NoError(t, err)
		_, err = q.Next()
		require.NoError(t, err)
	}
	require.Equal(t, study.QuizResults, q.Phase())

	require.NoError(t, q.Retry())
	assert.Equal(t, study.QuizTaking, q.Phase())
	correct, total := q.Score()
	assert.Equal(t, 0, correct)
	assert.Equal(t, 2, total)

	q.Restart()
	assert.Equal(t, study.QuizSetup, q.Phase())
	_, total = q.Score()
	assert.Equal(t, 0, total)
}

func TestVerdict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		correct, total int
		want           string
	}{
		{9, 10, "Excellent! Outstanding knowledge!"},
		{7, 10, "Great job! Very good understanding!"},
		{1, 2, "Good work! Keep studying!"},
		{0, 5, "Keep practicing! You'll improve!"},
		{0, 0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, study.Verdict(tt.correct, tt.total), "%d/%d", tt.correct, tt.total)
	}
}

func TestQuizPhase_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "setup", study.QuizSetup.String())
	assert.Equal(t, "taking", study.QuizTaking.String())
	assert.Equal(t, "results", study.QuizResults.String())
}
