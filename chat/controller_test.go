package chat_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fwojciec/coursechat"
	"github.com/fwojciec/coursechat/chat"
	"github.com/fwojciec/coursechat/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Start(t *testing.T) {
	t.Parallel()

	backend := mock.NewBackend()
	a := backend.Seed()
	b := backend.Seed()
	c := chat.NewController(backend)

	require.NoError(t, c.Start(context.Background()))

	v := c.View()
	assert.Equal(t, chat.NoActiveSession, v.State)
	assert.Empty(t, v.ActiveSessionID)
	assert.Equal(t, []string{a, b}, ids(v.Sessions))
	assert.False(t, v.Pending)
}

func TestController_Send(t *testing.T) {
	t.Parallel()

	t.Run("adopts the lazily created session", func(t *testing.T) {
		t.Parallel()
		backend := mock.NewBackend()
		c := chat.NewController(backend)

		ex, err := c.Send(context.Background(), "What is TCP?", coursechat.Network)
		require.NoError(t, err)

		v := c.View()
		assert.Equal(t, chat.SessionActive, v.State)
		assert.Equal(t, ex.SessionID, v.ActiveSessionID)
		assert.Equal(t, []string{"user:What is TCP?", "assistant:echo: What is TCP?"}, transcript(v.Messages))

		_, err = c.Send(context.Background(), "And UDP?", coursechat.Network)
		require.NoError(t, err)
		assert.Equal(t, 1, backend.Len(), "follow-up reuses the active session")
		assert.Len(t, c.View().Messages, 4)
	})

	t.Run("session becomes active even when the answer fails", func(t *testing.T) {
		t.Parallel()
		backend := mock.NewBackend()
		backend.Answer = func(coursechat.Question) (coursechat.Answer, error) {
			return coursechat.Answer{}, coursechat.ErrTransport
		}
		c := chat.NewController(backend)

		ex, err := c.Send(context.Background(), "q", coursechat.AllSubjects)
		require.NoError(t, err)

		assert.Error(t, ex.Err)
		assert.Equal(t, chat.SessionActive, c.View().State)
		assert.Equal(t, ex.SessionID, c.ActiveSessionID())
	})

	t.Run("validation error changes nothing", func(t *testing.T) {
		t.Parallel()
		backend := mock.NewBackend()
		c := chat.NewController(backend)

		_, err := c.Send(context.Background(), "", coursechat.AllSubjects)

		assert.True(t, errors.Is(err, coursechat.ErrValidation))
		assert.Equal(t, chat.NoActiveSession, c.View().State)
		assert.Equal(t, 0, backend.Len())
	})

	t.Run("session-less history is not carried into a created session", func(t *testing.T) {
		t.Parallel()
		backend := mock.NewBackend()
		backend.CreateErr = coursechat.ErrTransport
		c := chat.NewController(backend)

		ex, err := c.Send(context.Background(), "q1", coursechat.AllSubjects)
		require.NoError(t, err)
		require.Empty(t, ex.SessionID)
		assert.Len(t, c.View().Messages, 2)

		backend.CreateErr = nil
		ex, err = c.Send(context.Background(), "q2", coursechat.AllSubjects)
		require.NoError(t, err)
		require.True(t, ex.Created)

		v := c.View()
		assert.Equal(t, ex.SessionID, v.ActiveSessionID)
		assert.Equal(t, []string{"user:q2", "assistant:echo: q2"}, transcript(v.Messages))
		require.Len(t, v.Sessions, 1)
		assert.Equal(t, len(v.Messages), v.Sessions[0].MessageCount)
	})
}

func TestController_NewSession(t *testing.T) {
	t.Parallel()

	backend := mock.NewBackend()
	a := backend.Seed(coursechat.NewUserMessage("old"))
	c := chat.NewController(backend)
	require.NoError(t, c.Select(context.Background(), a))

	id, err := c.NewSession(context.Background())
	require.NoError(t, err)

	v := c.View()
	assert.NotEqual(t, a, id)
	assert.Equal(t, id, v.ActiveSessionID)
	assert.Empty(t, v.Messages)
	assert.Equal(t, []string{a, id}, ids(v.Sessions))

	backend.CreateErr = coursechat.ErrTransport
	_, err = c.NewSession(context.Background())
	assert.True(t, errors.Is(err, coursechat.ErrSessionCreate))
	assert.Equal(t, id, c.ActiveSessionID())
}

func TestController_Select(t *testing.T) {
	t.Parallel()

	t.Run("replaces the history", func(t *testing.T) {
		t.Parallel()
		backend := mock.NewBackend()
		a := backend.Seed(coursechat.NewUserMessage("in a"))
		b := backend.Seed(coursechat.NewUserMessage("in b"))
		c := chat.NewController(backend)

		require.NoError(t, c.Select(context.Background(), a))
		require.NoError(t, c.Select(context.Background(), b))

		v := c.View()
		assert.Equal(t, b, v.ActiveSessionID)
		assert.Equal(t, []string{"user:in b"}, transcript(v.Messages))
	})

	t.Run("failure keeps the active session and refreshes", func(t *testing.T) {
		t.Parallel()
		backend := mock.NewBackend()
		a := backend.Seed(coursechat.NewUserMessage("in a"))
		lists := 0
		c := chat.NewController(&countingLister{Service: backend, calls: &lists})
		require.NoError(t, c.Select(context.Background(), a))

		err := c.Select(context.Background(), "gone")

		assert.True(t, errors.Is(err, coursechat.ErrFetch))
		assert.True(t, errors.Is(err, coursechat.ErrUnknownSession))
		assert.Equal(t, a, c.ActiveSessionID())
		assert.Equal(t, []string{"user:in a"}, transcript(c.View().Messages))
		assert.Equal(t, 1, lists)
	})

	t.Run("late arrival does not overwrite the newer selection", func(t *testing.T) {
		t.Parallel()
		backend := mock.NewBackend()
		a := backend.Seed(coursechat.NewUserMessage("in a"))
		b := backend.Seed(coursechat.NewUserMessage("in b"))
		entered := make(chan struct{})
		release := make(chan struct{})
		backend.BeforeGet = func(id string) {
			if id == b {
				close(entered)
				<-release
			}
		}
		c := chat.NewController(backend)
		require.NoError(t, c.Select(context.Background(), a))

		errc := make(chan error, 1)
		go func() { errc <- c.Select(context.Background(), b) }()
		<-entered
		assert.True(t, c.View().Pending)

		require.NoError(t, c.Select(context.Background(), a))
		close(release)
		require.NoError(t, <-errc)

		v := c.View()
		assert.Equal(t, a, v.ActiveSessionID)
		assert.Equal(t, []string{"user:in a"}, transcript(v.Messages))
		assert.False(t, v.Pending)
	})
}

func TestController_Delete(t *testing.T) {
	t.Parallel()

	t.Run("active session", func(t *testing.T) {
		t.Parallel()
		backend := mock.NewBackend()
		a := backend.Seed(coursechat.NewUserMessage("x"))
		c := chat.NewController(backend)
		require.NoError(t, c.Select(context.Background(), a))

		require.NoError(t, c.Delete(context.Background(), a))

		v := c.View()
		assert.Equal(t, chat.NoActiveSession, v.State)
		assert.Empty(t, v.Messages)
		assert.Empty(t, v.Sessions)
	})

	t.Run("other session", func(t *testing.T) {
		t.Parallel()
		backend := mock.NewBackend()
		a := backend.Seed(coursechat.NewUserMessage("x"))
		b := backend.Seed()
		c := chat.NewController(backend)
		require.NoError(t, c.Start(context.Background()))
		require.NoError(t, c.Select(context.Background(), a))

		require.NoError(t, c.Delete(context.Background(), b))

		v := c.View()
		assert.Equal(t, a, v.ActiveSessionID)
		assert.Equal(t, []string{"user:x"}, transcript(v.Messages))
		assert.Equal(t, []string{a}, ids(v.Sessions))
	})

	t.Run("deleted while a send is pending stays deleted", func(t *testing.T) {
		t.Parallel()
		backend, entered, release := blockingBackend()
		a := backend.Seed()
		c := chat.NewController(backend)
		require.NoError(t, c.Select(context.Background(), a))

		done := make(chan chat.Exchange)
		go func() {
			ex, _ := c.Send(context.Background(), "first", coursechat.AllSubjects)
			done <- ex
		}()
		<-entered
		require.NoError(t, c.Delete(context.Background(), a))
		close(release)
		ex := <-done

		assert.Equal(t, a, ex.SessionID)
		v := c.View()
		assert.Equal(t, chat.NoActiveSession, v.State)
		assert.Empty(t, v.ActiveSessionID)
		assert.Empty(t, v.Messages)
		assert.Empty(t, v.Sessions)
	})

	t.Run("session created by a pending send is not adopted once deleted", func(t *testing.T) {
		t.Parallel()
		backend, entered, release := blockingBackend()
		c := chat.NewController(backend)

		done := make(chan chat.Exchange)
		go func() {
			ex, _ := c.Send(context.Background(), "first", coursechat.Network)
			done <- ex
		}()
		<-entered
		id := c.ActiveSessionID()
		require.NotEmpty(t, id)
		require.NoError(t, c.Delete(context.Background(), id))
		close(release)
		ex := <-done

		assert.True(t, ex.Created)
		assert.Equal(t, id, ex.SessionID)
		v := c.View()
		assert.Equal(t, chat.NoActiveSession, v.State)
		assert.Empty(t, v.Messages)
		assert.Empty(t, v.Sessions, "a deleted session gets no subject placeholder")
	})
}

// blockingBackend returns a Backend whose answer to "first" waits for
// release; entered is closed once that answer has started.
func blockingBackend() (backend *mock.Backend, entered, release chan struct{}) {
	backend = mock.NewBackend()
	entered = make(chan struct{})
	release = make(chan struct{})
	backend.Answer = func(q coursechat.Question) (coursechat.Answer, error) {
		if q.Text == "first" {
			close(entered)
			<-release
		}
		return coursechat.Answer{Generation: "re " + q.Text}, nil
	}
	return backend, entered, release
}

func TestController_SendPolicy(t *testing.T) {
	t.Parallel()

	t.Run("serialized sends keep issue order", func(t *testing.T) {
		t.Parallel()
		backend, entered, release := blockingBackend()
		id := backend.Seed()
		c := chat.NewController(backend)
		require.NoError(t, c.Select(context.Background(), id))

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Send(context.Background(), "first", coursechat.AllSubjects)
			assert.NoError(t, err)
		}()
		<-entered
		assert.True(t, c.Pending())

		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Send(context.Background(), "second", coursechat.AllSubjects)
			assert.NoError(t, err)
		}()
		close(release)
		wg.Wait()

		assert.Equal(t, []string{
			"user:first", "assistant:re first",
			"user:second", "assistant:re second",
		}, transcript(c.View().Messages))
		assert.False(t, c.Pending())
	})

	t.Run("serialized sends create one session", func(t *testing.T) {
		t.Parallel()
		backend, entered, release := blockingBackend()
		c := chat.NewController(backend)

		results := make(chan chat.Exchange, 2)
		go func() {
			ex, _ := c.Send(context.Background(), "first", coursechat.AllSubjects)
			results <- ex
		}()
		<-entered
		go func() {
			ex, _ := c.Send(context.Background(), "second", coursechat.AllSubjects)
			results <- ex
		}()
		close(release)
		first, second := <-results, <-results

		assert.Equal(t, 1, backend.Len())
		assert.Equal(t, first.SessionID, second.SessionID)
		assert.Len(t, c.View().Messages, 4)
	})

	t.Run("concurrent sends land in completion order", func(t *testing.T) {
		t.Parallel()
		backend, entered, release := blockingBackend()
		id := backend.Seed()
		c := chat.NewController(backend, chat.WithSendPolicy(chat.SendConcurrent))
		require.NoError(t, c.Select(context.Background(), id))

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, err := c.Send(context.Background(), "first", coursechat.AllSubjects)
			assert.NoError(t, err)
		}()
		<-entered

		_, err := c.Send(context.Background(), "second", coursechat.AllSubjects)
		require.NoError(t, err)
		assert.True(t, c.Pending(), "first send is still outstanding")
		close(release)
		<-done

		assert.Equal(t, []string{
			"user:first", "user:second",
			"assistant:re second", "assistant:re first",
		}, transcript(c.View().Messages))
	})
}

func TestState_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "no active session", chat.NoActiveSession.String())
	assert.Equal(t, "session active", chat.SessionActive.String())
	assert.Equal(t, "unknown", chat.State(7).String())
}
