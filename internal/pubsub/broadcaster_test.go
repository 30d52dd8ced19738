package pubsub

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkboard/internal/models"
)

func newTestBroadcaster(buffer int) *Broadcaster {
	return NewBroadcaster(buffer, zerolog.New(io.Discard))
}

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func assertEmpty(t *testing.T, ch <-chan Event) {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if ok {
			t.Fatalf("unexpected event %+v", ev)
		}
	default:
	}
}

func TestPublishFansOutToEverySubscriber(t *testing.T) {
	b := newTestBroadcaster(4)
	first, stopFirst := b.Subscribe(context.Background(), TopicNewLink)
	defer stopFirst()
	second, stopSecond := b.Subscribe(context.Background(), TopicNewLink)
	defer stopSecond()

	link := &models.Link{ID: 7, URL: "https://go.dev"}
	b.Publish(TopicNewLink, NewLinkEvent(link))

	assert.Equal(t, link, receive(t, first).Link)
	assert.Equal(t, link, receive(t, second).Link)
	assertEmpty(t, first)
	assertEmpty(t, second)
}

func TestPublishIsTopicScoped(t *testing.T) {
	b := newTestBroadcaster(4)
	votes, stop := b.Subscribe(context.Background(), TopicNewVote)
	defer stop()

	b.Publish(TopicNewLink, NewLinkEvent(&models.Link{ID: 1}))

	assertEmpty(t, votes)
}

func TestPublishWithoutSubscribersIsDropped(t *testing.T) {
	b := newTestBroadcaster(4)
	b.Publish(TopicNewLink, NewLinkEvent(&models.Link{ID: 1}))

	ch, stop := b.Subscribe(context.Background(), TopicNewLink)
	defer stop()

	assertEmpty(t, ch)
}

func TestSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	b := newTestBroadcaster(1)
	slow, stopSlow := b.Subscribe(context.Background(), TopicNewVote)
	defer stopSlow()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= 3; i++ {
			b.Publish(TopicNewVote, NewVoteEvent(&models.Vote{ID: uint(i)}))
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	assert.EqualValues(t, 1, receive(t, slow).Vote.ID)
	assertEmpty(t, slow)

	b.Publish(TopicNewVote, NewVoteEvent(&models.Vote{ID: 4}))
	assert.EqualValues(t, 4, receive(t, slow).Vote.ID)
}

func TestCleanupClosesChannelAndIsIdempotent(t *testing.T) {
	b := newTestBroadcaster(4)
	ch, stop := b.Subscribe(context.Background(), TopicNewLink)
	require.Equal(t, 1, b.SubscriberCount(TopicNewLink))

	stop()
	stop()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, b.SubscriberCount(TopicNewLink))

	// publishing after cleanup must not panic on the closed channel
	b.Publish(TopicNewLink, NewLinkEvent(&models.Link{ID: 1}))
}

func TestContextCancellationUnsubscribes(t *testing.T) {
	b := newTestBroadcaster(4)
	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := b.Subscribe(ctx, TopicNewLink)
	other, stopOther := b.Subscribe(context.Background(), TopicNewLink)
	defer stopOther()

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed after cancellation")
	}
	assert.Equal(t, 1, b.SubscriberCount(TopicNewLink))

	b.Publish(TopicNewLink, NewLinkEvent(&models.Link{ID: 3}))
	assert.EqualValues(t, 3, receive(t, other).Link.ID)
}

func TestConcurrentSubscribeAndPublish(t *testing.T) {
	b := newTestBroadcaster(64)
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ch, stop := b.Subscribe(context.Background(), TopicNewLink)
			defer stop()
			select {
			case <-ch:
			case <-time.After(10 * time.Millisecond):
			}
		}()
		go func(i int) {
			defer wg.Done()
			b.Publish(TopicNewLink, NewLinkEvent(&models.Link{ID: uint(i)}))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, b.SubscriberCount(TopicNewLink))
}

func TestTopicValid(t *testing.T) {
	assert.True(t, TopicNewLink.Valid())
	assert.True(t, TopicNewVote.Valid())
	assert.False(t, Topic("newComment").Valid())
}
