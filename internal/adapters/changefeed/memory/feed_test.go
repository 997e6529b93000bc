package memory

import (
	"context"
	"testing"
	"time"

	"petora-connect/internal/ports/changefeed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func recv(t *testing.T, sub changefeed.Subscription) changefeed.Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
		return changefeed.Event{}
	}
}

func TestFeed_DeliversByTopic(t *testing.T) {
	f := NewFeed(4)
	ctx := context.Background()

	posts, err := f.Subscribe(ctx, changefeed.TopicPosts)
	require.NoError(t, err)
	defer posts.Close()
	groups, err := f.Subscribe(ctx, changefeed.TopicGroups)
	require.NoError(t, err)
	defer groups.Close()

	require.NoError(t, f.Publish(ctx, changefeed.Event{Topic: changefeed.TopicPosts, Type: changefeed.Created, ID: "p1"}))

	ev := recv(t, posts)
	assert.Equal(t, "p1", ev.ID)
	select {
	case <-groups.Events():
		t.Fatal("groups subscriber got a posts event")
	default:
	}
}

func TestFeed_CancelClosesSubscription(t *testing.T) {
	f := NewFeed(1)
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := f.Subscribe(ctx, changefeed.TopicListings)
	require.NoError(t, err)
	cancel()

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-sub.Events():
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	// Close después de cancelar no rompe, y publicar sin suscriptores tampoco.
	require.NoError(t, sub.Close())
	require.NoError(t, f.Publish(context.Background(), changefeed.Event{Topic: changefeed.TopicListings}))
}

func TestFeed_DropsWhenFull(t *testing.T) {
	f := NewFeed(1)
	sub, err := f.Subscribe(context.Background(), "groups/g1")
	require.NoError(t, err)
	defer sub.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, f.Publish(context.Background(), changefeed.Event{Topic: "groups/g1", ID: "m"}))
	}
	recv(t, sub)
	select {
	case <-sub.Events():
		t.Fatal("expected the overflow to be dropped")
	default:
	}
}
