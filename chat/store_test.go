package chat_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/coursechat"
	"github.com/fwojciec/coursechat/chat"
	"github.com/fwojciec/coursechat/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// transcript renders messages as "role:content" for compact assertions.
func transcript(msgs []coursechat.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = string(m.Role) + ":" + m.Content
	}
	return out
}

func TestStore_AppendPreservesOrder(t *testing.T) {
	t.Parallel()

	store := chat.NewStore(mock.NewBackend())
	store.Reset("s1")

	var want []string
	for i := range 20 {
		content := fmt.Sprintf("m%d", i)
		if i%3 == 0 {
			require.True(t, store.AppendRemote("s1", coursechat.NewMessage(coursechat.RoleAssistant, content)))
			want = append(want, "assistant:"+content)
		} else {
			require.True(t, store.AppendLocal("s1", coursechat.NewUserMessage(content)))
			want = append(want, "user:"+content)
		}
	}

	assert.Equal(t, want, transcript(store.Messages()))
}

func TestStore_AppendRequiresBinding(t *testing.T) {
	t.Parallel()

	store := chat.NewStore(mock.NewBackend())
	store.Reset("s1")

	assert.False(t, store.AppendLocal("s2", coursechat.NewUserMessage("stray")))
	assert.False(t, store.AppendRemote("", coursechat.NewUserMessage("stray")))
	assert.Empty(t, store.Messages())
}

func TestStore_Load(t *testing.T) {
	t.Parallel()

	t.Run("replaces history and binds", func(t *testing.T) {
		t.Parallel()
		backend := mock.NewBackend()
		id := backend.Seed(coursechat.NewUserMessage("hi"), coursechat.NewMessage(coursechat.RoleAssistant, "hello"))
		store := chat.NewStore(backend)
		store.Reset("other")
		store.AppendLocal("other", coursechat.NewUserMessage("old"))

		_, err := store.Load(context.Background(), id)
		require.NoError(t, err)

		assert.Equal(t, id, store.SessionID())
		assert.Equal(t, []string{"user:hi", "assistant:hello"}, transcript(store.Messages()))
	})

	t.Run("failure leaves store untouched", func(t *testing.T) {
		t.Parallel()
		store := chat.NewStore(mock.NewBackend())
		store.Reset("s9")
		store.AppendLocal("s9", coursechat.NewUserMessage("kept"))

		_, err := store.Load(context.Background(), "missing")
		require.Error(t, err)
		assert.True(t, errors.Is(err, coursechat.ErrFetch))
		assert.True(t, errors.Is(err, coursechat.ErrUnknownSession))
		assert.Equal(t, "s9", store.SessionID())
		assert.Equal(t, []string{"user:kept"}, transcript(store.Messages()))
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()
		svc := &mock.Service{
			GetSessionFn: func(_ context.Context, _ string) (coursechat.Session, error) {
				return coursechat.Session{}, coursechat.ErrTransport
			},
		}
		_, err := chat.NewStore(svc).Load(context.Background(), "s1")
		assert.True(t, errors.Is(err, coursechat.ErrFetch))
		assert.True(t, errors.Is(err, coursechat.ErrTransport))
	})

	t.Run("late arrival is discarded", func(t *testing.T) {
		t.Parallel()
		entered := make(chan struct{})
		release := make(chan struct{})
		svc := &mock.Service{
			GetSessionFn: func(_ context.Context, id string) (coursechat.Session, error) {
				close(entered)
				<-release
				return coursechat.Session{ID: id, Messages: []coursechat.Message{coursechat.NewUserMessage("late")}}, nil
			},
		}
		store := chat.NewStore(svc)

		errc := make(chan error, 1)
		go func() {
			_, err := store.Load(context.Background(), "b")
			errc <- err
		}()
		<-entered
		store.Reset("a")
		store.AppendLocal("a", coursechat.NewUserMessage("current"))
		close(release)

		err := <-errc
		assert.True(t, errors.Is(err, chat.ErrSuperseded))
		assert.Equal(t, "a", store.SessionID())
		assert.Equal(t, []string{"user:current"}, transcript(store.Messages()))
	})
}

func TestStore_Bind(t *testing.T) {
	t.Parallel()

	store := chat.NewStore(mock.NewBackend())
	require.True(t, store.AppendLocal("", coursechat.NewUserMessage("before session")))

	assert.True(t, store.Bind("s1"))
	assert.Equal(t, "s1", store.SessionID())
	assert.Empty(t, store.Messages(), "a new binding starts with an empty history")

	require.True(t, store.AppendLocal("s1", coursechat.NewUserMessage("in session")))
	assert.True(t, store.Bind("s1"), "rebinding the same id is a no-op")
	assert.Equal(t, []string{"user:in session"}, transcript(store.Messages()))
	assert.False(t, store.Bind("s2"))
	assert.Equal(t, "s1", store.SessionID())
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()

	store := chat.NewStore(mock.NewBackend())
	store.Reset("s1")
	store.AppendLocal("s1", coursechat.NewUserMessage("x"))

	assert.False(t, store.ClearIfBound("s2"))
	assert.Equal(t, "s1", store.SessionID())

	assert.True(t, store.ClearIfBound("s1"))
	assert.Empty(t, store.SessionID())
	assert.Empty(t, store.Messages())

	store.Reset("s3")
	store.Clear()
	assert.Empty(t, store.SessionID())
}
